package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/fastygo/shopbot/internal/ui"
)

// Responder answers interactions over the REST API.
type Responder struct {
	session *discordgo.Session
}

func NewResponder(session *discordgo.Session) *Responder {
	return &Responder{session: session}
}

// noMentions keeps audit lines and replies from pinging the users they name.
var noMentions = &discordgo.MessageAllowedMentions{}

func responseData(msg ui.Message) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:         msg.Content,
		Embeds:          msg.Embeds,
		Components:      msg.Components,
		AllowedMentions: noMentions,
	}
	if data.Components == nil {
		data.Components = []discordgo.MessageComponent{}
	}
	if msg.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func (r *Responder) Reply(ctx context.Context, i *discordgo.Interaction, msg ui.Message) (string, error) {
	err := r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: responseData(msg),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	sent, err := r.session.InteractionResponse(i, discordgo.WithContext(ctx))
	if err != nil {
		// the reply is out; the message id is learned from the first click instead
		return "", nil
	}
	return sent.ID, nil
}

func (r *Responder) Update(ctx context.Context, i *discordgo.Interaction, msg ui.Message) error {
	data := responseData(msg)
	data.Flags = 0
	return r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, discordgo.WithContext(ctx))
}

func (r *Responder) EditReply(ctx context.Context, i *discordgo.Interaction, msg ui.Message) error {
	components := msg.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	embeds := msg.Embeds
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	content := msg.Content
	_, err := r.session.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content:         &content,
		Embeds:          &embeds,
		Components:      &components,
		AllowedMentions: noMentions,
	}, discordgo.WithContext(ctx))
	return err
}

func (r *Responder) Modal(ctx context.Context, i *discordgo.Interaction, modal ui.Modal) error {
	rows := make([]discordgo.MessageComponent, 0, len(modal.Fields))
	for _, f := range modal.Fields {
		style := f.Style
		if style == 0 {
			style = discordgo.TextInputShort
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    f.ID,
				Label:       f.Label,
				Style:       style,
				Placeholder: f.Placeholder,
				Value:       f.Value,
				Required:    f.Required,
				MinLength:   f.MinLength,
				MaxLength:   f.MaxLength,
			},
		}})
	}
	return r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modal.CustomID,
			Title:      modal.Title,
			Components: rows,
		},
	}, discordgo.WithContext(ctx))
}

func (r *Responder) Ack(ctx context.Context, i *discordgo.Interaction) error {
	return r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx))
}

func (r *Responder) Notice(ctx context.Context, i *discordgo.Interaction, content string) error {
	return r.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: noMentions,
		},
	}, discordgo.WithContext(ctx))
}

func (r *Responder) Followup(ctx context.Context, i *discordgo.Interaction, content string) error {
	_, err := r.session.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content:         content,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: noMentions,
	}, discordgo.WithContext(ctx))
	return err
}

var _ ui.Responder = (*Responder)(nil)
