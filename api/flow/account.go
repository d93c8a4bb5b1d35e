package flow

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
)

func (f *Flows) accountView(ctx context.Context, inv *command.Invocation) error {
	userID := inv.Snowflake(command.OptUser)
	if userID == "" {
		userID = inv.UserID
	}
	return f.showAccount(ctx, inv, "account-view", userID)
}

func (f *Flows) inventory(ctx context.Context, inv *command.Invocation) error {
	return f.showAccount(ctx, inv, "inventory", inv.UserID)
}

func (f *Flows) showAccount(ctx context.Context, inv *command.Invocation, name, userID string) error {
	if _, err := f.uc.GetAccount(ctx, userID); err != nil {
		return err
	}
	return f.listing(ctx, inv, name, "Account", "<@"+userID+">", "Nothing here yet.", func() []string {
		account, err := f.uc.FindAccount(userID)
		if err != nil {
			return nil
		}
		return accountLines(account)
	})
}

// accountLines lists balances first, then items.
func accountLines(account *domain.Account) []string {
	var lines []string
	for _, b := range account.SortedCurrencies() {
		lines = append(lines, fmt.Sprintf("💰 %s: **%s**", b.Item.Label(), domain.FormatAmount(b.Amount)))
	}
	for _, it := range account.SortedInventory() {
		lines = append(lines, fmt.Sprintf("📦 %s × **%d**", it.Item.Label(), it.Amount))
	}
	return lines
}

func (f *Flows) accountGive(ctx context.Context, inv *command.Invocation) error {
	return f.transfer(ctx, inv, "account-give", "Give currency", "Give", f.uc.Give, "Gave %s %s to <@%s>.")
}

func (f *Flows) accountTake(ctx context.Context, inv *command.Invocation) error {
	return f.transfer(ctx, inv, "account-take", "Take currency", "Take", f.uc.Take, "Took %s %s from <@%s>.")
}

type transferFunc func(ctx context.Context, actorID, userID, currencyID string, amount decimal.Decimal) (decimal.Decimal, error)

func (f *Flows) transfer(ctx context.Context, inv *command.Invocation, name, title, label string, apply transferFunc, result string) error {
	if err := f.requireCurrencies(); err != nil {
		return err
	}
	userID := inv.Snowflake(command.OptUser)
	amount, err := inv.Amount(command.OptAmount)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return domain.Invalidf("the amount must be greater than zero")
	}

	iface := f.newInterface(name, inv)
	var currency *domain.Currency
	iface.SetView(func() ui.View {
		desc := fmt.Sprintf("Member: <@%s>\nAmount: **%s**\n\nChoose the currency.", userID, domain.FormatAmount(amount))
		if currency != nil {
			desc += "\n\nSelected: " + bold(currency.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed(title, desc)}}
	})
	iface.SetComponents(
		choose(iface, "currency", "Choose a currency", f.currencyOptions, currencyKey, &currency, nil),
		submit(iface, label, discordgo.PrimaryButton, func() bool { return currency != nil }, func(ctx context.Context) (ui.View, error) {
			balance, err := apply(ctx, inv.UserID, userID, currency.ID, amount)
			if err != nil {
				return ui.View{}, err
			}
			v := done(result, domain.FormatAmount(amount), currency.Label(), userID)
			v.Content += fmt.Sprintf(" New balance: **%s**.", domain.FormatAmount(balance))
			return v, nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) accountEmpty(ctx context.Context, inv *command.Invocation) error {
	userID := inv.Snowflake(command.OptUser)
	iface := f.newInterface("account-empty", inv)
	iface.SetView(func() ui.View {
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Empty an account",
			fmt.Sprintf("Every balance and item of <@%s> will be removed.", userID))}}
	})
	iface.SetComponents(
		submit(iface, "Empty", discordgo.DangerButton, func() bool { return true }, func(ctx context.Context) (ui.View, error) {
			ok, err := confirmed(ctx, iface, "Empty account", "Type yes to empty the account")
			if err != nil || !ok {
				return ui.View{}, cancelled(err)
			}
			if err := f.uc.Empty(ctx, inv.UserID, userID); err != nil {
				return ui.View{}, err
			}
			return done("Emptied the account of <@%s>.", userID), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}
