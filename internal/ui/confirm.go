package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fastygo/shopbot/pkg/textutil"
)

// Confirmation is the outcome of a Confirm step.
type Confirmation int

const (
	Declined Confirmation = iota
	Confirmed
	Abandoned
)

const (
	confirmField  = "confirm"
	maxModalTitle = 45
	maxModalLabel = 45
)

// Confirm asks the user to type "yes" in a form before a destructive step. Anything
// else, or closing the form, leaves the message as it was.
func Confirm(ctx context.Context, ui *Interface, title, prompt string) (Confirmation, error) {
	values, err := ui.AwaitModal(ctx, Modal{
		Title: textutil.Ellipsis(title, maxModalTitle),
		Fields: []TextField{{
			ID:          confirmField,
			Label:       textutil.Ellipsis(prompt, maxModalLabel),
			Placeholder: "yes",
			Style:       discordgo.TextInputShort,
			Required:    true,
			MaxLength:   16,
		}},
	})
	if errors.Is(err, ErrModalTimeout) {
		return Abandoned, nil
	}
	if err != nil {
		return Abandoned, err
	}
	if IsYes(values[confirmField]) {
		return Confirmed, nil
	}
	return Declined, nil
}

// IsYes matches "yes" case-insensitively on the first three characters.
func IsYes(s string) bool {
	r := []rune(strings.TrimSpace(s))
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.EqualFold(string(r), "yes")
}
