package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Config holds the gateway credentials and the guild commands are registered in.
// An empty GuildID registers commands globally.
type Config struct {
	Token   string
	GuildID string
}

// Client owns the gateway session.
type Client struct {
	session *discordgo.Session
	guildID string
	logger  *zap.Logger
}

// New prepares a session without connecting it.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord: token is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.ShouldReconnectOnError = true

	c := &Client{session: session, guildID: cfg.GuildID, logger: logger}
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		c.logger.Info("gateway ready",
			zap.String("user", r.User.Username),
			zap.Int("guilds", len(r.Guilds)))
	})
	session.AddHandler(func(_ *discordgo.Session, _ *discordgo.Disconnect) {
		c.logger.Warn("gateway disconnected")
	})
	return c, nil
}

// Session exposes the underlying session for REST adapters.
func (c *Client) Session() *discordgo.Session { return c.session }

// OnInteraction registers fn for every interaction. Each call runs on its own goroutine.
func (c *Client) OnInteraction(fn func(i *discordgo.Interaction)) {
	c.session.AddHandler(func(_ *discordgo.Session, ev *discordgo.InteractionCreate) {
		go fn(ev.Interaction)
	})
}

// Open connects to the gateway and waits for the first READY event.
func (c *Client) Open(ctx context.Context) error {
	ready := make(chan struct{})
	c.session.AddHandlerOnce(func(_ *discordgo.Session, _ *discordgo.Ready) { close(ready) })
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		_ = c.session.Close()
		return fmt.Errorf("discord: waiting for ready: %w", ctx.Err())
	}
}

// RegisterCommands replaces the registered command set with commands.
func (c *Client) RegisterCommands(ctx context.Context, commands []*discordgo.ApplicationCommand) error {
	if c.session.State == nil || c.session.State.User == nil {
		return errors.New("discord: session is not ready")
	}
	registered, err := c.session.ApplicationCommandBulkOverwrite(c.session.State.User.ID, c.guildID, commands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: register commands: %w", err)
	}
	c.logger.Info("commands registered", zap.Int("count", len(registered)), zap.String("guild_id", c.guildID))
	return nil
}

// IsOnline reports whether the gateway is connected and ready.
func (c *Client) IsOnline() bool {
	return c.session.DataReady
}

// Latency returns the last measured heartbeat round trip.
func (c *Client) Latency() time.Duration {
	return c.session.HeartbeatLatency()
}

// Close disconnects from the gateway.
func (c *Client) Close(_ context.Context) error {
	return c.session.Close()
}
