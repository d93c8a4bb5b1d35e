package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/pkg/logger"
)

const (
	noticeExpired  = "This menu has expired. Run the command again."
	noticeNotOwner = "This menu belongs to someone else."
	noticeFormOpen = "Finish or close the open form first."
)

// Config holds the collector windows. Both are fixed from creation and never slide.
type Config struct {
	ComponentTimeout time.Duration
	ModalTimeout     time.Duration
}

// Router owns the table of live interfaces keyed by session id and delivers every
// component activation and modal submission to its interface.
type Router struct {
	responder Responder
	cfg       Config
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Interface
}

func NewRouter(responder Responder, cfg Config, log *zap.Logger) *Router {
	if cfg.ComponentTimeout <= 0 {
		cfg.ComponentTimeout = 120 * time.Second
	}
	if cfg.ModalTimeout <= 0 {
		cfg.ModalTimeout = 120 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		responder: responder,
		cfg:       cfg,
		logger:    log,
		sessions:  map[string]*Interface{},
	}
}

// InterfaceOption customizes a new Interface.
type InterfaceOption func(*Interface)

// Ephemeral makes the first reply visible to the invoking user only.
func Ephemeral() InterfaceOption {
	return func(ui *Interface) { ui.ephemeral = true }
}

// New creates an interface named name, owned by ownerID. Only the owner may use its controls.
func (r *Router) New(name, ownerID string, opts ...InterfaceOption) *Interface {
	ui := &Interface{
		router:  r,
		name:    name,
		session: strings.ReplaceAll(uuid.NewString(), "-", ""),
		owner:   ownerID,
		logger:  r.logger.With(zap.String("ui", name)),
		view:    func() View { return View{} },
	}
	for _, opt := range opts {
		opt(ui)
	}
	return ui
}

// Len returns the number of live interfaces.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Router) register(ui *Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[ui.session] = ui
}

func (r *Router) unregister(ui *Interface) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[ui.session] == ui {
		delete(r.sessions, ui.session)
	}
}

func (r *Router) lookup(session string) *Interface {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[session]
}

// Handle routes component and modal interactions. It reports false for other
// interaction types so the caller can dispatch them elsewhere.
func (r *Router) Handle(ctx context.Context, i *discordgo.Interaction) bool {
	var customID string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		customID = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		customID = i.ModalSubmitData().CustomID
	default:
		return false
	}

	name, session, role, ok := ParseCustomID(customID)
	if !ok {
		r.notice(ctx, i, noticeExpired)
		return true
	}
	ui := r.lookup(session)
	if ui == nil || ui.name != name {
		r.notice(ctx, i, noticeExpired)
		return true
	}
	if UserID(i) != ui.owner {
		r.notice(ctx, i, noticeNotOwner)
		return true
	}

	if i.Type == discordgo.InteractionModalSubmit {
		if !ui.deliverModal(role, i) {
			r.notice(ctx, i, noticeExpired)
		}
		return true
	}
	ui.dispatch(ctx, i, role)
	return true
}

func (r *Router) notice(ctx context.Context, i *discordgo.Interaction, content string) {
	if err := r.responder.Notice(ctx, i, content); err != nil {
		logger.FromContext(ctx, r.logger).Warn("failed to send notice", zap.Error(err))
	}
}
