package ui

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/pkg/textutil"
)

// Kind is the layout class of a component.
type Kind int

const (
	KindButton Kind = iota + 1
	KindSelect
)

// Discord limits.
const (
	MaxOptions        = 25
	maxButtonLabel    = 80
	maxOptionLabel    = 100
	maxPlaceholderLen = 150
)

// ErrOptionGone is returned when a selected key no longer resolves to a backing value.
var ErrOptionGone = domain.NewError(domain.ErrCodeNotFound, "that option is no longer available, pick another one")

// Activation is one click or selection delivered to a component callback.
type Activation struct {
	Interaction *discordgo.Interaction
	UserID      string
	Values      []string
}

// Component is one interactive control of an Interface. Enabled is evaluated on every
// render, so predicates always reflect the current flow state.
type Component interface {
	Role() string
	Kind() Kind
	Enabled() bool
	Render(customID string, disabled bool) discordgo.MessageComponent
	Handle(ctx context.Context, a *Activation) error
}

// Button is a clickable control. When, if set, gates the enabled state.
type Button struct {
	ID      string
	Label   string
	Style   discordgo.ButtonStyle
	When    func() bool
	OnClick func(ctx context.Context, a *Activation) error

	off bool
}

func (b *Button) Role() string { return b.ID }
func (b *Button) Kind() Kind   { return KindButton }

func (b *Button) Enabled() bool {
	return !b.off && (b.When == nil || b.When())
}

// Toggle flips the forced enabled state, or sets it when a value is given. It only
// changes how the button renders: a late click on a disabled button still arrives.
func (b *Button) Toggle(enabled ...bool) {
	if len(enabled) == 0 {
		b.off = !b.off
		return
	}
	b.off = !enabled[0]
}

func (b *Button) Render(customID string, disabled bool) discordgo.MessageComponent {
	style := b.Style
	if style == 0 {
		style = discordgo.SecondaryButton
	}
	return discordgo.Button{
		CustomID: customID,
		Label:    textutil.Ellipsis(b.Label, maxButtonLabel),
		Style:    style,
		Disabled: disabled || !b.Enabled(),
	}
}

func (b *Button) Handle(ctx context.Context, a *Activation) error {
	if b.OnClick == nil {
		return nil
	}
	return b.OnClick(ctx, a)
}

// Option is one entry of a Select, keyed by Key and backed by Value.
type Option[T any] struct {
	Key         string
	Label       string
	Description string
	Value       T
}

// Select is a string select menu backed by typed values. Options is resolved both when
// rendering and when a selection arrives, so the backing set may change between renders
// without changing the control identifier.
type Select[T any] struct {
	ID          string
	Placeholder string
	Options     func() []Option[T]
	Selected    func() string
	When        func() bool
	OnSelect    func(ctx context.Context, a *Activation, value T) error

	off bool
}

func (s *Select[T]) Role() string { return s.ID }
func (s *Select[T]) Kind() Kind   { return KindSelect }

func (s *Select[T]) Enabled() bool {
	return !s.off && (s.When == nil || s.When()) && len(s.options()) > 0
}

func (s *Select[T]) Toggle(enabled ...bool) {
	if len(enabled) == 0 {
		s.off = !s.off
		return
	}
	s.off = !enabled[0]
}

func (s *Select[T]) options() []Option[T] {
	if s.Options == nil {
		return nil
	}
	return s.Options()
}

func (s *Select[T]) Render(customID string, disabled bool) discordgo.MessageComponent {
	opts := s.options()
	if len(opts) > MaxOptions {
		opts = opts[:MaxOptions]
	}
	selected := ""
	if s.Selected != nil {
		selected = s.Selected()
	}
	menuOptions := make([]discordgo.SelectMenuOption, 0, len(opts))
	for _, o := range opts {
		menuOptions = append(menuOptions, discordgo.SelectMenuOption{
			Label:       textutil.Ellipsis(o.Label, maxOptionLabel),
			Value:       o.Key,
			Description: textutil.Ellipsis(o.Description, maxOptionLabel),
			Default:     o.Key == selected,
		})
	}
	if len(menuOptions) == 0 {
		// Discord rejects empty menus
		menuOptions = append(menuOptions, discordgo.SelectMenuOption{Label: "Nothing to choose", Value: "-"})
	}
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    customID,
		Placeholder: textutil.Ellipsis(s.Placeholder, maxPlaceholderLen),
		Options:     menuOptions,
		Disabled:    disabled || !s.Enabled(),
	}
}

func (s *Select[T]) Handle(ctx context.Context, a *Activation) error {
	if len(a.Values) == 0 || s.OnSelect == nil {
		return nil
	}
	key := a.Values[0]
	for _, o := range s.options() {
		if o.Key == key {
			return s.OnSelect(ctx, a, o.Value)
		}
	}
	return ErrOptionGone
}
