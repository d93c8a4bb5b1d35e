package command

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
	"github.com/fastygo/shopbot/pkg/logger"
)

const genericError = "Something went wrong, please try again later."

// InteractionRouter delivers component and modal interactions to live interfaces.
type InteractionRouter interface {
	Handle(ctx context.Context, i *discordgo.Interaction) bool
}

// Server is the entry point of every interaction. Each interaction runs as an isolated
// task: a panic or error is logged and reported to the user without affecting others.
type Server struct {
	base       context.Context
	router     InteractionRouter
	dispatcher *Dispatcher
	responder  ui.Responder
	timeout    time.Duration
	logger     *zap.Logger
}

func NewServer(base context.Context, router InteractionRouter, dispatcher *Dispatcher, responder ui.Responder, timeout time.Duration, log *zap.Logger) *Server {
	if base == nil {
		base = context.Background()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		base:       base,
		router:     router,
		dispatcher: dispatcher,
		responder:  responder,
		timeout:    timeout,
		logger:     log,
	}
}

// Serve handles one interaction to completion.
func (h *Server) Serve(i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(h.base, h.timeout)
	defer cancel()
	ctx = logger.ContextWithInteraction(ctx, logger.Interaction{ID: i.ID, UserID: ui.UserID(i), GuildID: i.GuildID})
	log := logger.FromContext(ctx, h.logger)

	defer func() {
		if r := recover(); r != nil {
			log.Error("interaction panicked", zap.Any("panic", r), zap.Stack("stack"))
			h.report(ctx, i, genericError)
		}
	}()

	if h.router.Handle(ctx, i) {
		return
	}
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	inv, err := Parse(i)
	if err == nil {
		log.Debug("command received", zap.String("path", inv.Path))
		err = h.dispatcher.Execute(ctx, inv)
	}
	if err != nil {
		h.report(ctx, i, "❌ "+UserMessage(ctx, h.logger, err))
	}
}

// report answers i with an ephemeral line, or follows up when it was already answered.
func (h *Server) report(ctx context.Context, i *discordgo.Interaction, content string) {
	if err := h.responder.Notice(ctx, i, content); err == nil {
		return
	}
	if err := h.responder.Followup(ctx, i, content); err != nil {
		logger.FromContext(ctx, h.logger).Warn("failed to report error to user", zap.Error(err))
	}
}

// UserMessage maps err to the text shown to the user. Only errors without a user-facing
// message are logged.
func UserMessage(ctx context.Context, log *zap.Logger, err error) string {
	if msg, ok := domain.UserFacing(err); ok {
		logger.FromContext(ctx, log).Debug("command rejected", zap.String("reason", msg))
		return msg
	}
	logger.FromContext(ctx, log).Error("command failed", zap.Error(err))
	return genericError
}
