package ui

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Message is one rendered state of an Interface.
type Message struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// TextField is one short or paragraph input of a Modal.
type TextField struct {
	ID          string
	Label       string
	Placeholder string
	Value       string
	Style       discordgo.TextInputStyle
	Required    bool
	MinLength   int
	MaxLength   int
}

// Modal is a form overlay. CustomID is assigned by the Interface.
type Modal struct {
	CustomID string
	Title    string
	Fields   []TextField
}

// Responder answers interactions. Reply is the first response to a command, Update the
// in-place response to a component or modal submission, EditReply edits a response that
// was already sent. Reply returns the id of the created message when it is known.
type Responder interface {
	Reply(ctx context.Context, i *discordgo.Interaction, msg Message) (string, error)
	Update(ctx context.Context, i *discordgo.Interaction, msg Message) error
	EditReply(ctx context.Context, i *discordgo.Interaction, msg Message) error
	Modal(ctx context.Context, i *discordgo.Interaction, modal Modal) error
	Ack(ctx context.Context, i *discordgo.Interaction) error
	Notice(ctx context.Context, i *discordgo.Interaction, content string) error
	Followup(ctx context.Context, i *discordgo.Interaction, content string) error
}

// UserID returns the id of the member or user behind i.
func UserID(i *discordgo.Interaction) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// ModalValues collects the text inputs of a modal submission by field id.
func ModalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := map[string]string{}
	for _, comp := range data.Components {
		var inner []discordgo.MessageComponent
		switch row := comp.(type) {
		case *discordgo.ActionsRow:
			if row != nil {
				inner = row.Components
			}
		case discordgo.ActionsRow:
			inner = row.Components
		}
		for _, c := range inner {
			switch ti := c.(type) {
			case *discordgo.TextInput:
				if ti != nil {
					values[ti.CustomID] = ti.Value
				}
			case discordgo.TextInput:
				values[ti.CustomID] = ti.Value
			}
		}
	}
	return values
}
