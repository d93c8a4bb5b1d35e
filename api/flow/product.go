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

// productDraft holds the invocation parameters of /product add.
type productDraft struct {
	fields domain.ProductFields
	kind   domain.ActionKind
	roleID string
	amount decimal.Decimal
}

func parseProductDraft(inv *command.Invocation) (*productDraft, error) {
	name, err := domain.CleanName("product name", inv.String(command.OptName), domain.ProductNameMax)
	if err != nil {
		return nil, err
	}
	desc, err := domain.CleanDescription(inv.String(command.OptDescription))
	if err != nil {
		return nil, err
	}
	price, err := inv.Amount(command.OptPrice)
	if err != nil {
		return nil, err
	}
	d := &productDraft{
		fields: domain.ProductFields{
			Name:        name,
			Emoji:       inv.String(command.OptEmoji),
			Description: desc,
			Price:       price,
		},
		kind: domain.ActionKind(inv.String(command.OptAction)),
	}
	switch d.kind {
	case "":
	case domain.ActionGiveRole:
		d.roleID = inv.Snowflake(command.OptRole)
		if d.roleID == "" {
			return nil, domain.Invalidf("a give-role product needs the role option")
		}
		d.fields.Action = domain.GiveRole{RoleID: d.roleID}
	case domain.ActionGiveCurrency:
		amount, err := inv.Amount(command.OptAmount)
		if err != nil {
			return nil, err
		}
		if !amount.IsPositive() {
			return nil, domain.Invalidf("the amount must be greater than zero")
		}
		d.amount = amount
	default:
		return nil, domain.Invalidf("unknown action %q", d.kind)
	}
	return d, nil
}

func (d *productDraft) summary(lookup func(string) (*domain.Currency, bool)) string {
	s := fmt.Sprintf("Product: %s\nPrice: %s", bold(labelOf(d.fields.Emoji, d.fields.Name)), domain.FormatAmount(d.fields.Price))
	if d.fields.Action != nil {
		s += "\nOn purchase: " + domain.DescribeAction(d.fields.Action, lookup)
	}
	return s
}

func (f *Flows) productAdd(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	draft, err := parseProductDraft(inv)
	if err != nil {
		return err
	}
	needsCurrency := draft.kind == domain.ActionGiveCurrency
	if needsCurrency {
		if err := f.requireCurrencies(); err != nil {
			return err
		}
	}

	iface := f.newInterface("product-add", inv)
	var (
		shop     *domain.Shop
		currency *domain.Currency
		stages   *ui.Stages
	)
	iface.SetView(func() ui.View {
		desc := draft.summary(f.uc.LookupCurrency)
		if shop != nil {
			desc += "\nShop: " + bold(shop.Label())
		}
		switch {
		case shop == nil:
			desc += "\n\nChoose the shop."
		case needsCurrency && currency == nil:
			desc += "\n\nChoose the currency the product gives."
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed("Add a product", desc)}}
	})

	add := func() ui.Component {
		return submit(iface, "Add", discordgo.SuccessButton, func() bool {
			return shop != nil && (!needsCurrency || currency != nil)
		}, func(ctx context.Context) (ui.View, error) {
			fields := draft.fields
			if needsCurrency {
				fields.Action = domain.GiveCurrency{CurrencyID: currency.ID, Amount: draft.amount}
			}
			product, err := f.uc.AddProduct(ctx, inv.UserID, shop.ID, fields)
			if err != nil {
				return ui.View{}, err
			}
			return done("Added %s to %s for %s %s.", bold(product.Label()), bold(shop.Label()),
				domain.FormatAmount(product.Price), shop.Currency.Label()), nil
		})
	}

	stages = ui.NewStages(iface, "shop", func() []ui.Component {
		pick := choose(iface, "shop", "Choose a shop", f.shopOptions, shopKey, &shop, func(ctx context.Context) error {
			if needsCurrency {
				return stages.Change(ctx, "currency")
			}
			return iface.Render(ctx)
		})
		if needsCurrency {
			return []ui.Component{pick}
		}
		return []ui.Component{pick, add()}
	})
	stages.Add("currency", func() []ui.Component {
		return []ui.Component{
			choose(iface, "currency", "Choose a currency", f.currencyOptions, currencyKey, &currency, nil),
			back(stages, "Change shop"),
			add(),
		}
	}).OnReset(func() { shop, currency = nil, nil })
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) shopsWithProducts() []*domain.Shop {
	var out []*domain.Shop
	for _, s := range f.uc.ListShops() {
		if len(s.Products) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// pickProduct runs the shop then product selection shared by remove and update.
// label and style describe the terminal button; apply performs the change.
func (f *Flows) pickProduct(ctx context.Context, inv *command.Invocation, name, title, label string, style discordgo.ButtonStyle,
	apply func(ctx context.Context, shop *domain.Shop, product *domain.Product) (ui.View, error)) error {
	if len(f.shopsWithProducts()) == 0 {
		return domain.Invalidf("no shop has any products")
	}
	iface := f.newInterface(name, inv)
	var (
		shop    *domain.Shop
		product *domain.Product
		stages  *ui.Stages
	)
	iface.SetView(func() ui.View {
		desc := "Choose the shop."
		if shop != nil {
			desc = "Shop: " + bold(shop.Label()) + "\n\nChoose the product."
		}
		if product != nil {
			desc += "\n\nSelected: " + bold(product.Label()) + " for " + domain.FormatAmount(product.Price)
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.embed(title, desc)}}
	})
	stages = ui.NewStages(iface, "shop", func() []ui.Component {
		return []ui.Component{
			choose(iface, "shop", "Choose a shop", func() []ui.Option[*domain.Shop] {
				return shopOptionsOf(f.shopsWithProducts())
			}, shopKey, &shop, func(ctx context.Context) error {
				return stages.Change(ctx, "product")
			}),
		}
	})
	stages.Add("product", func() []ui.Component {
		return []ui.Component{
			choose(iface, "product", "Choose a product", func() []ui.Option[*domain.Product] {
				return f.productOptionsOf(f.live(shop).Products)
			}, productKey, &product, nil),
			back(stages, "Change shop"),
			submit(iface, label, style, func() bool { return shop != nil && product != nil }, func(ctx context.Context) (ui.View, error) {
				return apply(ctx, f.live(shop), product)
			}),
		}
	}).OnReset(func() { shop, product = nil, nil })
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) productRemove(ctx context.Context, inv *command.Invocation) error {
	return f.pickProduct(ctx, inv, "product-remove", "Remove a product", "Remove", discordgo.DangerButton,
		func(ctx context.Context, shop *domain.Shop, product *domain.Product) (ui.View, error) {
			if err := f.uc.RemoveProduct(ctx, inv.UserID, shop.ID, product.ID); err != nil {
				return ui.View{}, err
			}
			return done("Removed %s from %s.", bold(product.Label()), bold(shop.Label())), nil
		})
}

func (f *Flows) productUpdate(ctx context.Context, inv *command.Invocation) error {
	patch, err := parseProductPatch(inv)
	if err != nil {
		return err
	}
	return f.pickProduct(ctx, inv, "product-update", "Update a product", "Save", discordgo.SuccessButton,
		func(ctx context.Context, shop *domain.Shop, product *domain.Product) (ui.View, error) {
			updated, err := f.uc.UpdateProduct(ctx, inv.UserID, shop.ID, product.ID, patch)
			if err != nil {
				return ui.View{}, err
			}
			return done("Updated %s in %s, now %s %s.", bold(updated.Label()), bold(shop.Label()),
				domain.FormatAmount(updated.Price), shop.Currency.Label()), nil
		})
}

func parseProductPatch(inv *command.Invocation) (domain.ProductPatch, error) {
	var patch domain.ProductPatch
	if inv.Has(command.OptName) {
		name, err := domain.CleanName("product name", inv.String(command.OptName), domain.ProductNameMax)
		if err != nil {
			return patch, err
		}
		patch.Name = &name
	}
	if inv.Has(command.OptDescription) {
		desc, err := domain.CleanDescription(inv.String(command.OptDescription))
		if err != nil {
			return patch, err
		}
		patch.Description = &desc
	}
	patch.Emoji = inv.OptionalString(command.OptEmoji)
	price, err := inv.OptionalAmount(command.OptPrice)
	if err != nil {
		return patch, err
	}
	patch.Price = price
	if patch.Name == nil && patch.Description == nil && patch.Emoji == nil && patch.Price == nil {
		return patch, domain.Invalidf("give at least one field to update")
	}
	return patch, nil
}
