package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/shopbot/domain"
)

type call struct {
	op      string
	i       *discordgo.Interaction
	msg     Message
	modal   Modal
	content string
}

type fakeResponder struct {
	mu     sync.Mutex
	calls  []call
	modals chan Modal
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{modals: make(chan Modal, 4)}
}

func (f *fakeResponder) record(c call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeResponder) Reply(_ context.Context, i *discordgo.Interaction, msg Message) (string, error) {
	f.record(call{op: "reply", i: i, msg: msg})
	return "m1", nil
}

func (f *fakeResponder) Update(_ context.Context, i *discordgo.Interaction, msg Message) error {
	f.record(call{op: "update", i: i, msg: msg})
	return nil
}

func (f *fakeResponder) EditReply(_ context.Context, i *discordgo.Interaction, msg Message) error {
	f.record(call{op: "edit", i: i, msg: msg})
	return nil
}

func (f *fakeResponder) Modal(_ context.Context, i *discordgo.Interaction, modal Modal) error {
	f.record(call{op: "modal", i: i, modal: modal})
	f.modals <- modal
	return nil
}

func (f *fakeResponder) Ack(_ context.Context, i *discordgo.Interaction) error {
	f.record(call{op: "ack", i: i})
	return nil
}

func (f *fakeResponder) Notice(_ context.Context, i *discordgo.Interaction, content string) error {
	f.record(call{op: "notice", i: i, content: content})
	return nil
}

func (f *fakeResponder) Followup(_ context.Context, i *discordgo.Interaction, content string) error {
	f.record(call{op: "followup", i: i, content: content})
	return nil
}

func (f *fakeResponder) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return call{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeResponder) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeResponder) waitFor(t *testing.T, op string, n int) call {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.count(op) >= n {
			return f.lastOf(op)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d %q calls", n, op)
	return call{}
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

func member(user string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: user}}
}

func command(user string) *discordgo.Interaction {
	return &discordgo.Interaction{ID: "cmd", Type: discordgo.InteractionApplicationCommand, Member: member(user)}
}

func click(user, customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:      "click",
		Type:    discordgo.InteractionMessageComponent,
		Member:  member(user),
		Message: &discordgo.Message{ID: "m1"},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}
}

func submit(user, customID string, fields map[string]string) *discordgo.Interaction {
	rows := make([]discordgo.MessageComponent, 0, len(fields))
	for k, v := range fields {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: k, Value: v},
		}})
	}
	return &discordgo.Interaction{
		ID:     "submit",
		Type:   discordgo.InteractionModalSubmit,
		Member: member(user),
		Data:   discordgo.ModalSubmitInteractionData{CustomID: customID, Components: rows},
	}
}

// disabledStates maps each rendered custom id to its disabled flag.
func disabledStates(msg Message) map[string]bool {
	out := map[string]bool{}
	for _, r := range msg.Components {
		for _, c := range r.(discordgo.ActionsRow).Components {
			switch v := c.(type) {
			case discordgo.Button:
				out[v.CustomID] = v.Disabled
			case discordgo.SelectMenu:
				out[v.CustomID] = v.Disabled
			}
		}
	}
	return out
}

func newTestRouter(t *testing.T, cfg Config) (*Router, *fakeResponder) {
	t.Helper()
	fake := newFakeResponder()
	return NewRouter(fake, cfg, zaptest.NewLogger(t)), fake
}

func TestStartRepliesAndClicksUpdate(t *testing.T) {
	router, fake := newTestRouter(t, Config{})
	ctx := context.Background()
	ui := router.New("demo", "u1", Ephemeral())
	clicks := 0
	ui.SetView(func() View { return View{Content: strings.Repeat("x", clicks)} })
	ui.SetComponents(
		&Button{ID: "render", OnClick: func(ctx context.Context, _ *Activation) error {
			clicks++
			return ui.Render(ctx)
		}},
		&Button{ID: "silent"},
	)

	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}
	first := fake.last()
	if first.op != "reply" || !first.msg.Ephemeral {
		t.Fatalf("expected an ephemeral reply, got %+v", first)
	}
	if err := ui.Start(ctx, command("u1")); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}

	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "render")))
	if got := fake.last(); got.op != "update" || got.msg.Content != "x" {
		t.Fatalf("expected update with content x, got %+v", got)
	}

	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "silent")))
	if got := fake.last(); got.op != "ack" {
		t.Fatalf("callback without render should be acknowledged, got %q", got.op)
	}

	router.Handle(ctx, click("intruder", CustomID("demo", ui.Session(), "render")))
	if got := fake.last(); got.op != "notice" || got.content != noticeNotOwner {
		t.Fatalf("foreign user should get a notice, got %+v", got)
	}
	if clicks != 1 {
		t.Fatalf("foreign click ran the callback")
	}

	router.Handle(ctx, click("u1", CustomID("demo", "unknown", "render")))
	if got := fake.last(); got.op != "notice" || got.content != noticeExpired {
		t.Fatalf("unknown session should get the expired notice, got %+v", got)
	}
}

func TestHandleIgnoresCommands(t *testing.T) {
	router, _ := newTestRouter(t, Config{})
	if router.Handle(context.Background(), command("u1")) {
		t.Fatal("commands are not routed by the ui router")
	}
}

func TestCallbackErrorFailsInterface(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "domain error", err: domain.ErrShopNotFound, want: "❌ shop does not exist"},
		{name: "internal error", err: errors.New("disk full"), want: "❌ " + genericFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, fake := newTestRouter(t, Config{})
			ctx := context.Background()
			ui := router.New("demo", "u1")
			ui.SetComponents(&Button{ID: "go", OnClick: func(context.Context, *Activation) error { return tc.err }})
			if err := ui.Start(ctx, command("u1")); err != nil {
				t.Fatalf("start: %v", err)
			}

			router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "go")))
			got := fake.last()
			if got.op != "update" || got.msg.Content != tc.want {
				t.Fatalf("unexpected render %+v", got)
			}
			for id, disabled := range disabledStates(got.msg) {
				if !disabled {
					t.Fatalf("%s should be disabled", id)
				}
			}
			if router.Len() != 0 {
				t.Fatal("failed interface should be unregistered")
			}

			router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "go")))
			if got := fake.last(); got.op != "notice" || got.content != noticeExpired {
				t.Fatalf("click after failure should be expired, got %+v", got)
			}
		})
	}
}

func TestFinishDisablesControls(t *testing.T) {
	router, fake := newTestRouter(t, Config{})
	ctx := context.Background()
	ui := router.New("demo", "u1")
	runs := 0
	ui.SetComponents(&Button{ID: "submit", OnClick: func(ctx context.Context, _ *Activation) error {
		if !ui.Begin() {
			return nil
		}
		runs++
		return ui.Finish(ctx, View{Content: "done"})
	}})
	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}
	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "submit")))
	got := fake.last()
	if got.msg.Content != "done" || !disabledStates(got.msg)[CustomID("demo", ui.Session(), "submit")] {
		t.Fatalf("unexpected finish render %+v", got)
	}
	if ui.State() != StateFinished || runs != 1 {
		t.Fatalf("state=%v runs=%d", ui.State(), runs)
	}
}

func TestBeginGuard(t *testing.T) {
	router, _ := newTestRouter(t, Config{})
	ui := router.New("demo", "u1")
	if !ui.Begin() {
		t.Fatal("first Begin should succeed")
	}
	if ui.Begin() {
		t.Fatal("second Begin should fail")
	}
	ui.Release()
	if !ui.Begin() {
		t.Fatal("Begin after Release should succeed")
	}
}

func TestSelectResolvesAtCallbackTime(t *testing.T) {
	router, fake := newTestRouter(t, Config{})
	ctx := context.Background()
	ui := router.New("demo", "u1")

	backing := []Option[string]{{Key: "a", Label: "A", Value: "stale"}}
	var picked string
	ui.SetComponents(&Select[string]{
		ID:      "pick",
		Options: func() []Option[string] { return backing },
		OnSelect: func(ctx context.Context, _ *Activation, value string) error {
			picked = value
			return ui.Render(ctx)
		},
	})
	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}

	backing = []Option[string]{{Key: "a", Label: "A", Value: "fresh"}}
	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "pick"), "a"))
	if picked != "fresh" {
		t.Fatalf("picked %q, want the value resolved at callback time", picked)
	}

	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "pick"), "gone"))
	notice := fake.lastOf("notice")
	if msg, _ := domain.UserFacing(ErrOptionGone); notice.content != msg {
		t.Fatalf("expected option gone notice, got %+v", notice)
	}
	if got := fake.last(); got.op != "edit" {
		t.Fatalf("interface should refresh after a stale option, got %q", got.op)
	}
	if ui.State() != StateRendered {
		t.Fatalf("stale option must not end the interface, state %v", ui.State())
	}
}

func TestExpiryDisablesControls(t *testing.T) {
	router, fake := newTestRouter(t, Config{ComponentTimeout: 30 * time.Millisecond})
	ctx := context.Background()
	ui := router.New("demo", "u1")
	ui.SetView(func() View { return View{Content: "pick something"} })
	ui.SetComponents(&Button{ID: "go"})
	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}

	got := fake.waitFor(t, "edit", 1)
	if got.i.ID != "cmd" {
		t.Fatalf("expiry should edit the original reply, edited %q", got.i.ID)
	}
	if !strings.HasPrefix(got.msg.Content, expiredBanner) || !strings.Contains(got.msg.Content, "pick something") {
		t.Fatalf("unexpected expired content %q", got.msg.Content)
	}
	for id, disabled := range disabledStates(got.msg) {
		if !disabled {
			t.Fatalf("%s should be disabled after expiry", id)
		}
	}
	if router.Len() != 0 {
		t.Fatal("expired interface should be unregistered")
	}

	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "go")))
	if got := fake.last(); got.op != "notice" || got.content != noticeExpired {
		t.Fatalf("click after expiry should get the expired notice, got %+v", got)
	}
}

func TestStagesSwapCollectors(t *testing.T) {
	router, fake := newTestRouter(t, Config{})
	ctx := context.Background()
	ui := router.New("demo", "u1")
	selection := ""
	var stages *Stages
	stages = NewStages(ui, "first", func() []Component {
		return []Component{&Button{ID: "next", OnClick: func(ctx context.Context, _ *Activation) error {
			selection = "chosen"
			return stages.Change(ctx, "second")
		}}}
	}).Add("second", func() []Component {
		return []Component{&Button{ID: "back", OnClick: func(ctx context.Context, _ *Activation) error {
			return stages.Reset(ctx)
		}}}
	}).OnReset(func() { selection = "" })

	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}
	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "next")))
	if stages.Current() != "second" || selection != "chosen" {
		t.Fatalf("stage %q selection %q", stages.Current(), selection)
	}
	rendered := disabledStates(fake.last().msg)
	if _, ok := rendered[CustomID("demo", ui.Session(), "back")]; !ok {
		t.Fatalf("second stage not rendered: %v", rendered)
	}

	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "next")))
	if got := fake.last(); got.op != "notice" || got.content != noticeExpired {
		t.Fatalf("stale stage control should be expired, got %+v", got)
	}

	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "back")))
	if stages.Current() != "first" || selection != "" {
		t.Fatalf("reset should return to first stage and clear selection, got %q %q", stages.Current(), selection)
	}
}

func TestPagerBounds(t *testing.T) {
	router, fake := newTestRouter(t, Config{})
	ctx := context.Background()
	ui := router.New("demo", "u1")
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	pager := NewPager(ui, 5, func() int { return len(items) })
	ui.SetComponents(pager.Buttons()...)
	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}

	id := func(role string) string { return CustomID("demo", ui.Session(), role) }
	states := disabledStates(fake.last().msg)
	if !states[id("page-first")] || !states[id("page-prev")] || states[id("page-next")] || states[id("page-last")] {
		t.Fatalf("unexpected states on first page %v", states)
	}

	router.Handle(ctx, click("u1", id("page-last")))
	if pager.Page != 2 || pager.Footer() != "Page 3/3" {
		t.Fatalf("page %d footer %q", pager.Page, pager.Footer())
	}
	if got := PageOf(pager, items); len(got) != 2 || got[0] != 10 {
		t.Fatalf("last page items %v", got)
	}
	states = disabledStates(fake.last().msg)
	if states[id("page-prev")] || !states[id("page-next")] || !states[id("page-last")] {
		t.Fatalf("unexpected states on last page %v", states)
	}

	router.Handle(ctx, click("u1", id("page-prev")))
	if start, end := pager.Bounds(); start != 5 || end != 10 {
		t.Fatalf("bounds %d-%d", start, end)
	}

	items = items[:3]
	if pager.Footer() != "Page 1/1" {
		t.Fatalf("pager should clamp after shrink, got %q", pager.Footer())
	}
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Confirmation
	}{
		{name: "uppercase yes", input: "YES please", want: Confirmed},
		{name: "no", input: "no", want: Declined},
		{name: "too short", input: "ye", want: Declined},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, fake := newTestRouter(t, Config{})
			ctx := context.Background()
			ui := router.New("demo", "u1")
			result := make(chan Confirmation, 1)
			ui.SetComponents(&Button{ID: "remove", OnClick: func(ctx context.Context, _ *Activation) error {
				res, err := Confirm(ctx, ui, "Remove", "Type yes to confirm")
				if err != nil {
					return err
				}
				result <- res
				return nil
			}})
			if err := ui.Start(ctx, command("u1")); err != nil {
				t.Fatalf("start: %v", err)
			}

			done := make(chan struct{})
			go func() {
				defer close(done)
				router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "remove")))
			}()
			modal := <-fake.modals

			router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "remove")))
			if got := fake.lastOf("notice"); got.content != noticeFormOpen {
				t.Fatalf("click during an open form should be refused, got %+v", got)
			}

			router.Handle(ctx, submit("u1", modal.CustomID, map[string]string{confirmField: tc.input}))
			<-done
			if got := <-result; got != tc.want {
				t.Fatalf("confirmation = %v, want %v", got, tc.want)
			}
			if got := fake.last(); got.op != "ack" || got.i.ID != "submit" {
				t.Fatalf("unrendered submission should be acknowledged, got %+v", got)
			}
		})
	}
}

func TestConfirmAbandoned(t *testing.T) {
	router, fake := newTestRouter(t, Config{ModalTimeout: 20 * time.Millisecond})
	ctx := context.Background()
	ui := router.New("demo", "u1")
	result := make(chan Confirmation, 1)
	ui.SetComponents(&Button{ID: "remove", OnClick: func(ctx context.Context, _ *Activation) error {
		res, err := Confirm(ctx, ui, "Remove", "Type yes")
		result <- res
		return err
	}})
	if err := ui.Start(ctx, command("u1")); err != nil {
		t.Fatalf("start: %v", err)
	}
	router.Handle(ctx, click("u1", CustomID("demo", ui.Session(), "remove")))
	if got := <-result; got != Abandoned {
		t.Fatalf("confirmation = %v, want Abandoned", got)
	}
	modal := <-fake.modals

	router.Handle(ctx, submit("u1", modal.CustomID, map[string]string{confirmField: "yes"}))
	if got := fake.last(); got.op != "notice" || got.content != noticeExpired {
		t.Fatalf("late submission should be expired, got %+v", got)
	}
	if ui.State() != StateRendered {
		t.Fatalf("abandoned form must leave the interface usable, state %v", ui.State())
	}
}

func TestIsYes(t *testing.T) {
	for in, want := range map[string]bool{"yes": true, "Yes": true, " YESSS ": true, "ye": false, "no": false, "": false, "y e s": false} {
		if got := IsYes(in); got != want {
			t.Errorf("IsYes(%q) = %v, want %v", in, got, want)
		}
	}
}
