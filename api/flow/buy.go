package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
	"github.com/fastygo/shopbot/pkg/logger"
	"github.com/fastygo/shopbot/usecase/economy"
)

const (
	stageShops    = "shops"
	stageProducts = "products"
	codeField     = "code"
)

// buy walks the member through a shop catalog and performs the purchase.
func (f *Flows) buy(ctx context.Context, inv *command.Invocation) error {
	if err := f.requireShops(); err != nil {
		return err
	}
	iface := f.newInterface("buy", inv)
	var (
		shop    *domain.Shop
		product *domain.Product
		code    string
		stages  *ui.Stages
	)
	products := func() []*domain.Product {
		if shop == nil {
			return nil
		}
		return f.live(shop).Products
	}
	inCatalog := func() bool { return stages != nil && stages.Current() == stageProducts }
	pager := ui.NewPager(iface, f.pageSize, func() int {
		if inCatalog() {
			return len(products())
		}
		return len(f.uc.ListShops())
	})

	iface.SetView(func() ui.View {
		if !inCatalog() {
			return ui.View{Embeds: []*discordgo.MessageEmbed{f.shopsEmbed(pager)}}
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{f.catalogEmbed(inv.UserID, f.live(shop), pager, product, code)}}
	})

	stages = ui.NewStages(iface, stageShops, func() []ui.Component {
		pick := choose(iface, "shop", "Choose a shop", func() []ui.Option[*domain.Shop] {
			return shopOptionsOf(ui.PageOf(pager, f.uc.ListShops()))
		}, shopKey, &shop, func(ctx context.Context) error {
			product, code, pager.Page = nil, "", 0
			return stages.Change(ctx, stageProducts)
		})
		return append([]ui.Component{pick}, pager.Buttons()...)
	})
	stages.Add(stageProducts, func() []ui.Component {
		pick := choose(iface, "product", "Choose a product", func() []ui.Option[*domain.Product] {
			return f.productOptionsOf(ui.PageOf(pager, products()))
		}, productKey, &product, nil)
		discount := &ui.Button{
			ID:    "discount",
			Label: "Discount code",
			Style: discordgo.SecondaryButton,
			OnClick: func(ctx context.Context, _ *ui.Activation) error {
				values, err := iface.AwaitModal(ctx, ui.Modal{
					Title: "Discount code",
					Fields: []ui.TextField{{
						ID:        codeField,
						Label:     "Code",
						Value:     code,
						Style:     discordgo.TextInputShort,
						MaxLength: domain.DiscountCodeMax,
					}},
				})
				if errors.Is(err, ui.ErrModalTimeout) {
					return nil
				}
				if err != nil {
					return err
				}
				code = strings.TrimSpace(values[codeField])
				return iface.Render(ctx)
			},
		}
		buy := submit(iface, "Buy", discordgo.SuccessButton, func() bool {
			if shop == nil || product == nil {
				return false
			}
			_, ok := f.live(shop).Product(product.ID)
			return ok
		}, func(ctx context.Context) (ui.View, error) {
			receipt, err := f.uc.Purchase(ctx, economy.PurchaseRequest{
				Buyer:        inv.Buyer(),
				ShopID:       shop.ID,
				ProductID:    product.ID,
				DiscountCode: code,
			})
			if err != nil {
				return ui.View{}, err
			}
			logger.FromContext(ctx, f.logger).Info("purchase completed",
				zap.String("shop_id", receipt.Shop.ID),
				zap.String("product_id", receipt.Product.ID),
				zap.String("price", domain.FormatAmount(receipt.Price)),
				zap.Int("discount", receipt.Discount))
			return ui.View{Content: receiptText(receipt)}, nil
		})
		components := []ui.Component{pick}
		components = append(components, pager.Buttons()...)
		return append(components, back(stages, "Change shop"), discount, buy)
	}).OnReset(func() {
		shop, product, code, pager.Page = nil, nil, "", 0
	})
	return iface.Start(ctx, inv.Interaction)
}

func (f *Flows) shopsEmbed(pager *ui.Pager) *discordgo.MessageEmbed {
	shops := f.uc.ListShops()
	start, _ := pager.Bounds()
	lines := make([]string, 0, pager.PageSize)
	for n, s := range ui.PageOf(pager, shops) {
		lines = append(lines, shopLine(start+n+1, s))
	}
	body := "There are no shops."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n") + "\n\nChoose a shop to browse its products."
	}
	e := f.embed("Shops", body)
	e.Footer = &discordgo.MessageEmbedFooter{Text: pager.Footer()}
	return e
}

func (f *Flows) catalogEmbed(userID string, shop *domain.Shop, pager *ui.Pager, selected *domain.Product, code string) *discordgo.MessageEmbed {
	discount := shop.Discount(code)
	var b strings.Builder
	if shop.Description != "" {
		b.WriteString(shop.Description + "\n\n")
	}
	page := ui.PageOf(pager, shop.Products)
	if len(page) == 0 {
		b.WriteString("This shop has no products yet.")
	}
	for _, p := range page {
		b.WriteString(f.productLine(shop, p, discount) + "\n")
	}
	if discount > 0 {
		fmt.Fprintf(&b, "\nCode `%s` applied: %s", code, percent(discount))
	}
	if selected != nil {
		fmt.Fprintf(&b, "\nSelected: %s", bold(selected.Label()))
	}

	balance := "0.00"
	if account, err := f.uc.FindAccount(userID); err == nil {
		balance = domain.FormatAmount(account.Balance(shop.Currency.ID))
	}
	e := f.embed(shop.Label(), b.String())
	e.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s · Your balance: %s %s", pager.Footer(), balance, shop.Currency.Label()),
	}
	return e
}

func (f *Flows) productLine(shop *domain.Shop, p *domain.Product, discount int) string {
	price := domain.FormatAmount(p.Price)
	if discount > 0 {
		price = fmt.Sprintf("~~%s~~ %s", price, domain.FormatAmount(domain.ApplyDiscount(p.Price, discount)))
	}
	line := fmt.Sprintf("%s · %s %s", bold(p.Label()), price, shop.Currency.Label())
	if p.Description != "" {
		line += "\n> " + p.Description
	}
	if p.Action != nil {
		line += "\n> " + domain.DescribeAction(p.Action, f.uc.LookupCurrency)
	}
	return line
}

func receiptText(r *economy.Receipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ You bought %s from %s for **%s** %s", bold(r.Product.Label()), bold(r.Shop.Label()),
		domain.FormatAmount(r.Price), r.Shop.Currency.Label())
	if r.Discount > 0 {
		fmt.Fprintf(&b, " (%s)", percent(r.Discount))
	}
	b.WriteString(".")
	switch act := r.Product.Action.(type) {
	case nil:
		fmt.Fprintf(&b, "\nYou now own %d.", r.Owned)
	case domain.GiveRole:
		fmt.Fprintf(&b, "\nYou received the role <@&%s>.", act.RoleID)
	case domain.GiveCurrency:
		if r.Credited != nil {
			fmt.Fprintf(&b, "\nYou received %s %s, you now hold %s.", domain.FormatAmount(act.Amount),
				r.Credited.Item.Label(), domain.FormatAmount(r.Credited.Amount))
		}
	}
	fmt.Fprintf(&b, "\nBalance: **%s** %s", domain.FormatAmount(r.Balance), r.Shop.Currency.Label())
	return b.String()
}
