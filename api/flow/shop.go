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

func (f *Flows) shopCreate(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireCurrencies(); err != nil {
		return err
	}
	name, err := domain.CleanName("shop name", inv.String(command.OptName), domain.ShopNameMax)
	if err != nil {
		return err
	}
	desc, err := domain.CleanDescription(inv.String(command.OptDescription))
	if err != nil {
		return err
	}
	fields := domain.ShopFields{
		Name:        name,
		Emoji:       inv.String(command.OptEmoji),
		Description: desc,
		ReservedTo:  inv.Snowflake(command.OptReservedTo),
	}

	iface := f.newInterface("shop-create", inv)
	var currency *domain.Currency
	iface.SetView(func() ui.View {
		e := f.embed("Create a shop", "Choose the currency the shop sells in.")
		e.Fields = shopFieldsView(fields, currency)
		return ui.View{Embeds: []*discordgo.MessageEmbed{e}}
	})
	iface.SetComponents(
		choose(iface, "currency", "Choose a currency", f.currencyOptions, currencyKey, &currency, nil),
		submit(iface, "Create", discordgo.SuccessButton, func() bool { return currency != nil }, func(ctx context.Context) (ui.View, error) {
			fields.CurrencyID = currency.ID
			shop, err := f.uc.CreateShop(ctx, inv.UserID, fields)
			if err != nil {
				return ui.View{}, err
			}
			return done("Created shop %s selling in %s.", bold(shop.Label()), bold(shop.Currency.Label())), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func shopFieldsView(fields domain.ShopFields, currency *domain.Currency) []*discordgo.MessageEmbedField {
	out := []*discordgo.MessageEmbedField{{Name: "Name", Value: labelOf(fields.Emoji, fields.Name), Inline: true}}
	cur := "Not chosen"
	if currency != nil {
		cur = currency.Label()
	}
	out = append(out, &discordgo.MessageEmbedField{Name: "Currency", Value: cur, Inline: true})
	if fields.ReservedTo != "" {
		out = append(out, &discordgo.MessageEmbedField{Name: "Reserved to", Value: "<@&" + fields.ReservedTo + ">", Inline: true})
	}
	if fields.Description != "" {
		out = append(out, &discordgo.MessageEmbedField{Name: "Description", Value: fields.Description})
	}
	return out
}

func labelOf(emoji, name string) string {
	if emoji != "" {
		return emoji + " " + name
	}
	return name
}

func (f *Flows) shopRemove(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	iface := f.newInterface("shop-remove", inv)
	var shop *domain.Shop
	iface.SetView(func() ui.View {
		desc := "Choose the shop to remove. Its products leave every inventory."
		if shop != nil {
			desc += fmt.Sprintf("\n\nSelected: %s with %d products", bold(shop.Label()), len(f.live(shop).Products))
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Remove a shop", desc)}}
	})
	iface.SetComponents(
		choose(iface, "shop", "Choose a shop", f.shopOptions, shopKey, &shop, nil),
		submit(iface, "Remove", discordgo.DangerButton, func() bool { return shop != nil }, func(ctx context.Context) (ui.View, error) {
			ok, err := confirmed(ctx, iface, "Remove "+shop.Name, "Type yes to remove the shop")
			if err != nil || !ok {
				return ui.View{}, cancelled(err)
			}
			if err := f.uc.RemoveShop(ctx, inv.UserID, shop.ID); err != nil {
				return ui.View{}, err
			}
			return done("Removed shop %s.", bold(shop.Label())), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) shopList(ctx context.Context, inv *command.Invocation) error {
	return f.listing(ctx, inv, "shop-list", "Shops", "", "There are no shops yet.", func() []string {
		shops := f.uc.ListShops()
		lines := make([]string, 0, len(shops))
		for n, s := range shops {
			lines = append(lines, shopLine(n+1, s))
		}
		return lines
	})
}

func shopLine(position int, s *domain.Shop) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d.** %s · %s · %d products", position, bold(s.Label()), s.Currency.Label(), len(s.Products))
	if s.ReservedTo != "" {
		b.WriteString(" · 🔒 <@&" + s.ReservedTo + ">")
	}
	if s.Description != "" {
		b.WriteString("\n> " + s.Description)
	}
	return b.String()
}

func (f *Flows) shopReorder(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	position := int(inv.Int(command.OptPosition))
	if n := len(f.uc.ListShops()); position < 1 || position > n {
		return domain.Invalidf("the position must be between 1 and %d", n)
	}
	iface := f.newInterface("shop-reorder", inv)
	var shop *domain.Shop
	iface.SetView(func() ui.View {
		desc := fmt.Sprintf("Choose the shop to move to position %d.", position)
		if shop != nil {
			desc += "\n\nSelected: " + bold(shop.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Reorder shops", desc)}}
	})
	iface.SetComponents(
		choose(iface, "shop", "Choose a shop", f.shopOptions, shopKey, &shop, nil),
		submit(iface, "Move", discordgo.PrimaryButton, func() bool { return shop != nil }, func(ctx context.Context) (ui.View, error) {
			if err := f.uc.ReorderShop(ctx, shop.ID, position-1); err != nil {
				return ui.View{}, err
			}
			return done("Moved %s to position %d.", bold(shop.Label()), position), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) shopEditName(ctx context.Context, inv *command.Invocation) error {
	name, err := domain.CleanName("shop name", inv.String(command.OptValue), domain.ShopNameMax)
	if err != nil {
		return err
	}
	return f.shopEdit(ctx, inv, "shop-edit-name", "renamed to "+bold(name), domain.ShopPatch{Name: &name})
}

func (f *Flows) shopEditDescription(ctx context.Context, inv *command.Invocation) error {
	desc, err := domain.CleanDescription(inv.String(command.OptValue))
	if err != nil {
		return err
	}
	change := "description cleared"
	if desc != "" {
		change = "description changed"
	}
	return f.shopEdit(ctx, inv, "shop-edit-description", change, domain.ShopPatch{Description: &desc})
}

func (f *Flows) shopEditEmoji(ctx context.Context, inv *command.Invocation) error {
	emoji := strings.TrimSpace(inv.String(command.OptValue))
	change := "emoji cleared"
	if emoji != "" {
		change = "emoji set to " + emoji
	}
	return f.shopEdit(ctx, inv, "shop-edit-emoji", change, domain.ShopPatch{Emoji: &emoji})
}

func (f *Flows) shopEditReservedTo(ctx context.Context, inv *command.Invocation) error {
	role := inv.Snowflake(command.OptValue)
	change := "opened to every member"
	if role != "" {
		change = "reserved to <@&" + role + ">"
	}
	return f.shopEdit(ctx, inv, "shop-edit-reserved", change, domain.ShopPatch{ReservedTo: &role})
}

// shopEdit applies a patch given at invocation to the chosen shop.
func (f *Flows) shopEdit(ctx context.Context, inv *command.Invocation, name, change string, patch domain.ShopPatch) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	iface := f.newInterface(name, inv)
	var shop *domain.Shop
	iface.SetView(func() ui.View {
		desc := "Choose the shop to edit: " + change + "."
		if shop != nil {
			desc += "\n\nSelected: " + bold(shop.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Edit a shop", desc)}}
	})
	iface.SetComponents(
		choose(iface, "shop", "Choose a shop", f.shopOptions, shopKey, &shop, nil),
		submit(iface, "Save", discordgo.SuccessButton, func() bool { return shop != nil }, func(ctx context.Context) (ui.View, error) {
			updated, err := f.uc.UpdateShop(ctx, inv.UserID, shop.ID, patch)
			if err != nil {
				return ui.View{}, err
			}
			return done("Shop %s %s.", bold(updated.Label()), change), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) shopEditCurrency(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	if err := f.requireCurrencies(); err != nil {
		return err
	}
	iface := f.newInterface("shop-edit-currency", inv)
	var (
		shop     *domain.Shop
		currency *domain.Currency
		stages   *ui.Stages
	)
	iface.SetView(func() ui.View {
		if shop == nil {
			return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Change a shop currency", "Choose the shop.")}}
		}
		current := f.live(shop)
		desc := fmt.Sprintf("Shop: %s\nCurrent currency: %s\n\nChoose the new currency. Prices keep their amounts.",
			bold(current.Label()), current.Currency.Label())
		if currency != nil {
			desc += "\n\nNew currency: " + bold(currency.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Change a shop currency", desc)}}
	})
	stages = ui.NewStages(iface, "shop", func() []ui.Component {
		return []ui.Component{
			choose(iface, "shop", "Choose a shop", f.shopOptions, shopKey, &shop, func(ctx context.Context) error {
				return stages.Change(ctx, "currency")
			}),
		}
	})
	stages.Add("currency", func() []ui.Component {
		return []ui.Component{
			choose(iface, "currency", "Choose a currency", f.currencyOptions, currencyKey, &currency, nil),
			back(stages, "Change shop"),
			submit(iface, "Save", discordgo.SuccessButton, func() bool { return shop != nil && currency != nil }, func(ctx context.Context) (ui.View, error) {
				id := currency.ID
				updated, err := f.uc.UpdateShop(ctx, inv.UserID, shop.ID, domain.ShopPatch{CurrencyID: &id})
				if err != nil {
					return ui.View{}, err
				}
				return done("Shop %s now sells in %s.", bold(updated.Label()), bold(updated.Currency.Label())), nil
			}),
		}
	}).OnReset(func() { shop, currency = nil, nil })
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) discountCreate(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	pct := int(inv.Int(command.OptPercent))
	code, err := domain.CheckDiscount(inv.String(command.OptCode), pct)
	if err != nil {
		return err
	}
	iface := f.newInterface("discount-create", inv)
	var shop *domain.Shop
	iface.SetView(func() ui.View {
		desc := fmt.Sprintf("Choose the shop for code `%s` (%s).", code, percent(pct))
		if shop != nil {
			desc += "\n\nSelected: " + bold(shop.Label())
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Create a discount code", desc)}}
	})
	iface.SetComponents(
		choose(iface, "shop", "Choose a shop", f.shopOptions, shopKey, &shop, nil),
		submit(iface, "Save", discordgo.SuccessButton, func() bool { return shop != nil }, func(ctx context.Context) (ui.View, error) {
			if err := f.uc.CreateDiscountCode(ctx, inv.UserID, shop.ID, code, pct); err != nil {
				return ui.View{}, err
			}
			return done("Code `%s` now gives %s at %s.", code, percent(pct), bold(shop.Label())), nil
		}),
	)
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) shopsWithCodes() []*domain.Shop {
	var out []*domain.Shop
	for _, s := range f.uc.ListShops() {
		if len(s.DiscountCodes) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func (f *Flows) discountRemove(ctx context.Context, inv *command.Invocation) error {
	if len(f.shopsWithCodes()) == 0 {
		return domain.Invalidf("no shop has a discount code")
	}
	iface := f.newInterface("discount-remove", inv)
	var (
		shop   *domain.Shop
		code   string
		stages *ui.Stages
	)
	iface.SetView(func() ui.View {
		desc := "Choose the shop."
		if shop != nil {
			desc = "Shop: " + bold(shop.Label()) + "\n\nChoose the code to remove."
			if code != "" {
				desc += "\n\nSelected: `" + code + "`"
			}
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Remove a discount code", desc)}}
	})
	stages = ui.NewStages(iface, "shop", func() []ui.Component {
		return []ui.Component{
			choose(iface, "shop", "Choose a shop", func() []ui.Option[*domain.Shop] {
				return shopOptionsOf(f.shopsWithCodes())
			}, shopKey, &shop, func(ctx context.Context) error {
				return stages.Change(ctx, "code")
			}),
		}
	})
	stages.Add("code", func() []ui.Component {
		return []ui.Component{
			choose(iface, "code", "Choose a code", func() []ui.Option[string] {
				return discountOptions(f.live(shop))
			}, codeKey, &code, nil),
			back(stages, "Change shop"),
			submit(iface, "Remove", discordgo.DangerButton, func() bool { return shop != nil && code != "" }, func(ctx context.Context) (ui.View, error) {
				if err := f.uc.RemoveDiscountCode(ctx, inv.UserID, shop.ID, code); err != nil {
					return ui.View{}, err
				}
				return done("Removed code `%s` from %s.", code, bold(shop.Label())), nil
			}),
		}
	}).OnReset(func() { shop, code = nil, "" })
	return iface.Start(ctx, inv.Interaction)
}
