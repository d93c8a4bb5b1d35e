package flow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
	"github.com/fastygo/shopbot/repository/jsonstore"
	"github.com/fastygo/shopbot/usecase/economy"
)

type call struct {
	op      string
	msg     ui.Message
	content string
}

type fakeResponder struct {
	mu     sync.Mutex
	calls  []call
	modals chan ui.Modal
}

func (f *fakeResponder) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeResponder) Reply(_ context.Context, _ *discordgo.Interaction, msg ui.Message) (string, error) {
	f.record(call{op: "reply", msg: msg})
	return "m1", nil
}

func (f *fakeResponder) Update(_ context.Context, _ *discordgo.Interaction, msg ui.Message) error {
	f.record(call{op: "update", msg: msg})
	return nil
}

func (f *fakeResponder) EditReply(_ context.Context, _ *discordgo.Interaction, msg ui.Message) error {
	f.record(call{op: "edit", msg: msg})
	return nil
}

func (f *fakeResponder) Modal(_ context.Context, _ *discordgo.Interaction, modal ui.Modal) error {
	f.record(call{op: "modal"})
	f.modals <- modal
	return nil
}

func (f *fakeResponder) Ack(_ context.Context, _ *discordgo.Interaction) error {
	f.record(call{op: "ack"})
	return nil
}

func (f *fakeResponder) Notice(_ context.Context, _ *discordgo.Interaction, content string) error {
	f.record(call{op: "notice", content: content})
	return nil
}

func (f *fakeResponder) Followup(_ context.Context, _ *discordgo.Interaction, content string) error {
	f.record(call{op: "followup", content: content})
	return nil
}

// rendered returns the latest message pushed to Discord.
func (f *fakeResponder) rendered() ui.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		switch f.calls[i].op {
		case "reply", "update", "edit":
			return f.calls[i].msg
		}
	}
	return ui.Message{}
}

func (f *fakeResponder) lastOf(op string) call {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].op == op {
			return f.calls[i]
		}
	}
	return call{}
}

type harness struct {
	t          *testing.T
	uc         *economy.UseCase
	store      *jsonstore.Store
	fake       *fakeResponder
	router     *ui.Router
	dispatcher *command.Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store, err := jsonstore.Open(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	uc := economy.New(economy.Deps{
		Currencies: store.Currencies,
		Shops:      store.Shops,
		Accounts:   store.Accounts,
		Settings:   store.Settings,
	}, logger)
	fake := &fakeResponder{modals: make(chan ui.Modal, 4)}
	router := ui.NewRouter(fake, ui.Config{ComponentTimeout: time.Minute, ModalTimeout: 2 * time.Second}, logger)
	d := command.NewDispatcher()
	New(Deps{Economy: uc, Router: router, Responder: fake, Appearance: store.Settings, PageSize: 2}, logger).Register(d)
	return &harness{t: t, uc: uc, store: store, fake: fake, router: router, dispatcher: d}
}

func member(user string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: user}}
}

func str(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func integer(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func ref(t discordgo.ApplicationCommandOptionType, name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: t, Value: id}
}

// run executes a slash command path such as "shop edit name" as user.
func (h *harness) run(user, path string, opts ...*discordgo.ApplicationCommandInteractionDataOption) error {
	h.t.Helper()
	names := strings.Fields(path)
	for n := len(names) - 1; n >= 1; n-- {
		kind := discordgo.ApplicationCommandOptionSubCommand
		if n < len(names)-1 {
			kind = discordgo.ApplicationCommandOptionSubCommandGroup
		}
		opts = []*discordgo.ApplicationCommandInteractionDataOption{{Name: names[n], Type: kind, Options: opts}}
	}
	i := &discordgo.Interaction{
		ID:     "cmd",
		Type:   discordgo.InteractionApplicationCommand,
		Member: member(user),
		Data:   discordgo.ApplicationCommandInteractionData{Name: names[0], Options: opts},
	}
	inv, err := command.Parse(i)
	if err != nil {
		h.t.Fatalf("parse: %v", err)
	}
	if inv.Path != path {
		h.t.Fatalf("parsed path %q, want %q", inv.Path, path)
	}
	return h.dispatcher.Execute(context.Background(), inv)
}

func (h *harness) mustRun(user, path string, opts ...*discordgo.ApplicationCommandInteractionDataOption) {
	h.t.Helper()
	if err := h.run(user, path, opts...); err != nil {
		h.t.Fatalf("%s: %v", path, err)
	}
}

type control struct {
	customID string
	disabled bool
	options  []string
}

// control finds the rendered component whose custom id ends with role.
func (h *harness) control(role string) (control, bool) {
	for _, r := range h.fake.rendered().Components {
		for _, c := range r.(discordgo.ActionsRow).Components {
			switch v := c.(type) {
			case discordgo.Button:
				if strings.HasSuffix(v.CustomID, "+"+role) {
					return control{customID: v.CustomID, disabled: v.Disabled}, true
				}
			case discordgo.SelectMenu:
				if strings.HasSuffix(v.CustomID, "+"+role) {
					var keys []string
					for _, o := range v.Options {
						keys = append(keys, o.Value)
					}
					return control{customID: v.CustomID, disabled: v.Disabled, options: keys}, true
				}
			}
		}
	}
	return control{}, false
}

func (h *harness) mustControl(role string) control {
	h.t.Helper()
	c, ok := h.control(role)
	if !ok {
		h.t.Fatalf("no %q control rendered", role)
	}
	return c
}

func (h *harness) click(user, role string, values ...string) {
	h.t.Helper()
	h.activate(user, h.mustControl(role).customID, values...)
}

func (h *harness) activate(user, customID string, values ...string) {
	h.router.Handle(context.Background(), &discordgo.Interaction{
		ID:      "click",
		Type:    discordgo.InteractionMessageComponent,
		Member:  member(user),
		Message: &discordgo.Message{ID: "m1"},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	})
}

// clickForm clicks a control that opens a form, then submits answer to field.
func (h *harness) clickForm(user, role, field, answer string) {
	h.t.Helper()
	customID := h.mustControl(role).customID
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		h.activate(user, customID)
	}()
	var modal ui.Modal
	select {
	case modal = <-h.fake.modals:
	case <-time.After(2 * time.Second):
		h.t.Fatal("form was not shown")
	}
	h.router.Handle(context.Background(), &discordgo.Interaction{
		ID:     "submit",
		Type:   discordgo.InteractionModalSubmit,
		Member: member(user),
		Data: discordgo.ModalSubmitInteractionData{CustomID: modal.CustomID, Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{&discordgo.TextInput{CustomID: field, Value: answer}}},
		}},
	})
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		h.t.Fatal("callback did not return")
	}
}

func (h *harness) text() string {
	msg := h.fake.rendered()
	parts := []string{msg.Content}
	for _, e := range msg.Embeds {
		parts = append(parts, e.Title, e.Description)
		if e.Footer != nil {
			parts = append(parts, e.Footer.Text)
		}
		for _, fld := range e.Fields {
			parts = append(parts, fld.Value)
		}
	}
	return strings.Join(parts, "\n")
}

func (h *harness) currency(name string) *domain.Currency {
	h.t.Helper()
	cur, err := h.uc.CreateCurrency(context.Background(), "admin", name, "")
	if err != nil {
		h.t.Fatalf("create currency: %v", err)
	}
	return cur
}

func (h *harness) shop(name string, cur *domain.Currency) *domain.Shop {
	h.t.Helper()
	shop, err := h.uc.CreateShop(context.Background(), "admin", domain.ShopFields{Name: name, CurrencyID: cur.ID})
	if err != nil {
		h.t.Fatalf("create shop: %v", err)
	}
	return shop
}

func (h *harness) product(shop *domain.Shop, name, price string) *domain.Product {
	h.t.Helper()
	p, err := h.uc.AddProduct(context.Background(), "admin", shop.ID, domain.ProductFields{Name: name, Price: decimal.RequireFromString(price)})
	if err != nil {
		h.t.Fatalf("add product: %v", err)
	}
	return p
}

func userMessage(t *testing.T, err error) string {
	t.Helper()
	msg, ok := domain.UserFacing(err)
	if !ok {
		t.Fatalf("expected a user facing error, got %v", err)
	}
	return msg
}
