package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/fastygo/shopbot/pkg/logger"
)

var errNoGuild = errors.New("discord: no guild to act in")

// Guild performs member and channel operations. Without a fixed guild id the guild of the
// interaction being served is used.
type Guild struct {
	session *discordgo.Session
	guildID string
}

func NewGuild(session *discordgo.Session, guildID string) *Guild {
	return &Guild{session: session, guildID: guildID}
}

func (g *Guild) resolve(ctx context.Context) (string, error) {
	if g.guildID != "" {
		return g.guildID, nil
	}
	if in, ok := logger.InteractionFromContext(ctx); ok && in.GuildID != "" {
		return in.GuildID, nil
	}
	return "", errNoGuild
}

// AddRole grants roleID to userID.
func (g *Guild) AddRole(ctx context.Context, userID, roleID string) error {
	guildID, err := g.resolve(ctx)
	if err != nil {
		return err
	}
	if err := g.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("grant role %s: %w", roleID, err)
	}
	return nil
}

// Send posts content to channelID without pinging anyone it mentions.
func (g *Guild) Send(ctx context.Context, channelID, content string) error {
	_, err := g.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: noMentions,
	}, discordgo.WithContext(ctx))
	return err
}
