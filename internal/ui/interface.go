package ui

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/pkg/logger"
)

const (
	genericFailure = "Something went wrong, please try again later."
	expiredBanner  = "⌛ This menu has expired. Run the command again to continue."
)

var (
	ErrNotStarted       = errors.New("ui: interface was not started")
	ErrAlreadyStarted   = errors.New("ui: interface was already started")
	ErrModalUnavailable = errors.New("ui: a form can only answer an unanswered interaction")
	ErrModalTimeout     = errors.New("ui: form was not submitted in time")
)

// State is the lifecycle position of an Interface.
type State int

const (
	StateCreated State = iota
	StateRendered
	StateFinished
	StateFailed
	StateExpired
)

func (s State) Terminal() bool {
	return s >= StateFinished
}

// View is the non-interactive part of a message.
type View struct {
	Content string
	Embeds  []*discordgo.MessageEmbed
}

type pendingState int

const (
	unanswered pendingState = iota
	updated
	answeredOther
)

// Interface is one live message with interactive controls bound to a single command
// invocation. Component callbacks run one at a time under the interface lock; methods
// other than Start are meant to be called from those callbacks.
type Interface struct {
	router    *Router
	name      string
	session   string
	owner     string
	ephemeral bool
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	view       func() View
	components []Component
	collectors map[string]Component
	deadline   time.Time
	timer      *time.Timer
	generation int
	disabled   bool

	origin    *discordgo.Interaction
	messageID string
	pending   *discordgo.Interaction
	answer    pendingState

	modalMu   sync.Mutex
	modalSeq  int
	modalRole string
	modalCh   chan *discordgo.Interaction
	awaiting  atomic.Bool

	completing atomic.Bool
}

func (ui *Interface) Name() string    { return ui.name }
func (ui *Interface) Session() string { return ui.session }
func (ui *Interface) Owner() string   { return ui.owner }
func (ui *Interface) State() State    { return ui.state }

// SetView sets the function producing content and embeds on every render.
func (ui *Interface) SetView(fn func() View) {
	if fn == nil {
		fn = func() View { return View{} }
	}
	ui.view = fn
}

// SetComponents replaces the component set. Collectors follow on the next Start or stage change.
func (ui *Interface) SetComponents(components ...Component) {
	ui.components = components
}

// Start renders the first reply to the command interaction i and begins collecting.
func (ui *Interface) Start(ctx context.Context, i *discordgo.Interaction) error {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if ui.state != StateCreated {
		return ErrAlreadyStarted
	}
	ui.origin = i
	ui.pending, ui.answer = i, unanswered
	defer func() { ui.pending = nil }()

	if err := ui.Render(ctx); err != nil {
		return err
	}
	ui.state = StateRendered
	ui.createCollectors()
	return nil
}

// Render pushes the current view and components. The first response to a command is a
// reply, the first response to a component or form is an in-place update, anything
// later edits the existing response.
func (ui *Interface) Render(ctx context.Context) error {
	if ui.origin == nil {
		return ErrNotStarted
	}
	msg, err := ui.compose()
	if err != nil {
		return err
	}
	responder := ui.router.responder
	switch {
	case ui.pending != nil && ui.answer == unanswered:
		if ui.pending.Type == discordgo.InteractionApplicationCommand {
			id, err := responder.Reply(ctx, ui.pending, msg)
			if err != nil {
				return err
			}
			if id != "" {
				ui.messageID = id
			}
		} else if err := responder.Update(ctx, ui.pending, msg); err != nil {
			return err
		}
		ui.answer = updated
		return nil
	case ui.pending != nil && ui.answer == updated:
		return responder.EditReply(ctx, ui.pending, msg)
	default:
		return responder.EditReply(ctx, ui.origin, msg)
	}
}

func (ui *Interface) compose() (Message, error) {
	v := ui.view()
	rows, err := Layout(ui.components, func(c Component) discordgo.MessageComponent {
		return c.Render(CustomID(ui.name, ui.session, c.Role()), ui.disabled)
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Content:    v.Content,
		Embeds:     v.Embeds,
		Components: rows,
		Ephemeral:  ui.ephemeral,
	}, nil
}

// Notice sends a short ephemeral line to the user without touching the message.
func (ui *Interface) Notice(ctx context.Context, content string) error {
	responder := ui.router.responder
	target := ui.pending
	if target == nil {
		target = ui.origin
	}
	if target == nil {
		return ErrNotStarted
	}
	if ui.pending != nil && ui.answer == unanswered {
		ui.answer = answeredOther
		return responder.Notice(ctx, target, content)
	}
	return responder.Followup(ctx, target, content)
}

// Begin marks the interface as completing and reports false if it already was. Terminal
// handlers check it first, since a disabled control can still be clicked once.
func (ui *Interface) Begin() bool {
	return ui.completing.CompareAndSwap(false, true)
}

// Release clears the completing mark after a terminal handler backed out.
func (ui *Interface) Release() {
	ui.completing.Store(false)
}

// Finish renders the terminal success view with every control disabled.
func (ui *Interface) Finish(ctx context.Context, v View) error {
	if ui.state.Terminal() {
		return nil
	}
	return ui.terminate(ctx, StateFinished, v)
}

// Fail renders err in place of the view. Domain errors show their own message; anything
// else shows a generic message and is logged.
func (ui *Interface) Fail(ctx context.Context, err error) error {
	if ui.state.Terminal() {
		return nil
	}
	msg, ok := domain.UserFacing(err)
	if !ok {
		logger.FromContext(ctx, ui.logger).Error("interface failed", zap.Error(err))
		msg = genericFailure
	}
	return ui.terminate(ctx, StateFailed, View{Content: "❌ " + msg})
}

func (ui *Interface) terminate(ctx context.Context, state State, v View) error {
	ui.state = state
	ui.disabled = true
	ui.view = func() View { return v }
	ui.destroyCollectors()
	ui.router.unregister(ui)
	return ui.Render(ctx)
}

// AwaitModal answers the pending interaction with a form and waits for its submission.
// The submission becomes the pending interaction, so a following Render updates the
// message in place. ErrModalTimeout means the form was closed or left unanswered.
func (ui *Interface) AwaitModal(ctx context.Context, modal Modal) (map[string]string, error) {
	if ui.pending == nil || ui.answer != unanswered || ui.pending.Type == discordgo.InteractionModalSubmit {
		return nil, ErrModalUnavailable
	}

	ch := make(chan *discordgo.Interaction, 1)
	ui.modalMu.Lock()
	ui.modalSeq++
	role := "modal-" + strconv.Itoa(ui.modalSeq)
	ui.modalRole, ui.modalCh = role, ch
	ui.modalMu.Unlock()
	ui.awaiting.Store(true)
	defer func() {
		ui.awaiting.Store(false)
		ui.modalMu.Lock()
		if ui.modalRole == role {
			ui.modalRole, ui.modalCh = "", nil
		}
		ui.modalMu.Unlock()
	}()

	modal.CustomID = CustomID(ui.name, ui.session, role)
	if err := ui.router.responder.Modal(ctx, ui.pending, modal); err != nil {
		return nil, err
	}
	ui.answer = answeredOther

	timer := time.NewTimer(ui.router.cfg.ModalTimeout)
	defer timer.Stop()
	select {
	case sub := <-ch:
		ui.pending, ui.answer = sub, unanswered
		return ModalValues(sub.ModalSubmitData()), nil
	case <-timer.C:
		return nil, ErrModalTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ui *Interface) deliverModal(role string, i *discordgo.Interaction) bool {
	ui.modalMu.Lock()
	defer ui.modalMu.Unlock()
	if ui.modalCh == nil || ui.modalRole != role {
		return false
	}
	ui.modalCh <- i
	ui.modalRole, ui.modalCh = "", nil
	return true
}

func (ui *Interface) dispatch(ctx context.Context, i *discordgo.Interaction, role string) {
	log := logger.FromContext(ctx, ui.logger)
	if ui.awaiting.Load() {
		ui.router.notice(ctx, i, noticeFormOpen)
		return
	}

	ui.mu.Lock()
	defer ui.mu.Unlock()

	c, ok := ui.collectors[role]
	foreign := ui.messageID != "" && i.Message != nil && i.Message.ID != ui.messageID
	if !ok || foreign || ui.state.Terminal() || time.Now().After(ui.deadline) {
		ui.router.notice(ctx, i, noticeExpired)
		return
	}
	if ui.messageID == "" && i.Message != nil {
		ui.messageID = i.Message.ID
	}

	ui.pending, ui.answer = i, unanswered
	defer func() { ui.pending = nil }()

	err := c.Handle(ctx, &Activation{
		Interaction: i,
		UserID:      UserID(i),
		Values:      i.MessageComponentData().Values,
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrOptionGone):
		msg, _ := domain.UserFacing(err)
		if nerr := ui.Notice(ctx, msg); nerr != nil {
			log.Warn("failed to send notice", zap.Error(nerr))
		}
		if rerr := ui.Render(ctx); rerr != nil {
			log.Warn("failed to refresh interface", zap.Error(rerr))
		}
	default:
		if ferr := ui.Fail(ctx, err); ferr != nil {
			log.Error("failed to render failure", zap.Error(ferr))
		}
	}

	if ui.pending != nil && ui.answer == unanswered {
		if err := ui.router.responder.Ack(ctx, ui.pending); err != nil {
			log.Warn("failed to acknowledge interaction", zap.Error(err))
		}
	}
}

// createCollectors binds the current components to this message for one timeout window.
func (ui *Interface) createCollectors() {
	ui.collectors = make(map[string]Component, len(ui.components))
	for _, c := range ui.components {
		ui.collectors[c.Role()] = c
	}
	ui.generation++
	gen := ui.generation
	timeout := ui.router.cfg.ComponentTimeout
	ui.deadline = time.Now().Add(timeout)
	if ui.timer != nil {
		ui.timer.Stop()
	}
	ui.timer = time.AfterFunc(timeout, func() { ui.expire(gen) })
	ui.router.register(ui)
}

// destroyCollectors stops routing activations to the current components.
func (ui *Interface) destroyCollectors() {
	ui.collectors = nil
	if ui.timer != nil {
		ui.timer.Stop()
		ui.timer = nil
	}
}

func (ui *Interface) expire(gen int) {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if gen != ui.generation || ui.state.Terminal() || ui.collectors == nil {
		return
	}
	ui.state = StateExpired
	ui.disabled = true
	ui.destroyCollectors()
	ui.router.unregister(ui)

	last := ui.view
	ui.view = func() View {
		v := last()
		if v.Content == "" {
			v.Content = expiredBanner
		} else {
			v.Content = expiredBanner + "\n" + v.Content
		}
		return v
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ui.Render(ctx); err != nil {
		ui.logger.Warn("failed to render expired interface", zap.Error(err))
	}
}
