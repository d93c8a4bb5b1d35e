package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
)

func (f *Flows) currencyCreate(ctx context.Context, inv *command.Invocation) error {
	cur, err := f.uc.CreateCurrency(ctx, inv.UserID, inv.String(command.OptName), inv.String(command.OptEmoji))
	if err != nil {
		return err
	}
	return f.reply(ctx, inv, fmt.Sprintf("✅ Created currency %s.", bold(cur.Label())))
}

func (f *Flows) currencyRemove(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireCurrencies(); err != nil {
		return err
	}
	iface := f.newInterface("currency-remove", inv)
	var selected *domain.Currency
	iface.SetView(func() ui.View {
		desc := "Choose the currency to remove. Every account loses its balance in it."
		if selected != nil {
			desc += "\n\nSelected: " + bold(selected.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Remove a currency", desc)}}
	})
	iface.SetComponents(
		choose(iface, "currency", "Choose a currency", f.currencyOptions, currencyKey, &selected, nil),
		submit(iface, "Remove", discordgo.DangerButton, func() bool { return selected != nil }, func(ctx context.Context) (ui.View, error) {
			ok, err := confirmed(ctx, iface, "Remove "+selected.Name, "Type yes to remove the currency")
			if err != nil || !ok {
				return ui.View{}, cancelled(err)
			}
			stripped, err := f.uc.RemoveCurrency(ctx, inv.UserID, selected.ID)
			if err != nil {
				return ui.View{}, err
			}
			return done("Removed currency %s. %d accounts were affected.", bold(selected.Label()), stripped), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) currencyList(ctx context.Context, inv *command.Invocation) error {
	return f.listing(ctx, inv, "currency-list", "Currencies", "", "There are no currencies yet.", func() []string {
		list := f.uc.ListCurrencies()
		lines := make([]string, 0, len(list))
		for _, c := range list {
			lines = append(lines, "• "+bold(c.Label()))
		}
		return lines
	})
}

func (f *Flows) currencyEditName(ctx context.Context, inv *command.Invocation) error {
	name, err := domain.CleanName("currency name", inv.String(command.OptValue), domain.CurrencyNameMax)
	if err != nil {
		return err
	}
	return f.currencyEdit(ctx, inv, "currency-edit-name", "renamed to "+bold(name), domain.CurrencyPatch{Name: &name})
}

func (f *Flows) currencyEditEmoji(ctx context.Context, inv *command.Invocation) error {
	emoji := strings.TrimSpace(inv.String(command.OptValue))
	change := "emoji cleared"
	if emoji != "" {
		change = "emoji set to " + emoji
	}
	return f.currencyEdit(ctx, inv, "currency-edit-emoji", change, domain.CurrencyPatch{Emoji: &emoji})
}

func (f *Flows) currencyEdit(ctx context.Context, inv *command.Invocation, name, change string, patch domain.CurrencyPatch) error {
	if err := f.requireCurrencies(); err != nil {
		return err
	}
	iface := f.newInterface(name, inv)
	var selected *domain.Currency
	iface.SetView(func() ui.View {
		desc := "Choose the currency to edit: " + change + "."
		if selected != nil {
			desc += "\n\nSelected: " + bold(selected.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Edit a currency", desc)}}
	})
	iface.SetComponents(
		choose(iface, "currency", "Choose a currency", f.currencyOptions, currencyKey, &selected, nil),
		submit(iface, "Save", discordgo.SuccessButton, func() bool { return selected != nil }, func(ctx context.Context) (ui.View, error) {
			updated, err := f.uc.UpdateCurrency(ctx, inv.UserID, selected.ID, patch)
			if err != nil {
				return ui.View{}, err
			}
			return done("Currency %s %s.", bold(updated.Label()), change), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}
