// Package flow implements the interactive slash-command workflows on top of the ui engine.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/api/command"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/ui"
	"github.com/fastygo/shopbot/pkg/textutil"
	"github.com/fastygo/shopbot/usecase/economy"
)

const defaultColor = 0x5865F2

// Appearance reads the cosmetic settings.
type Appearance interface {
	String(id, fallback string) string
	Number(id string, fallback float64) float64
}

type Deps struct {
	Economy    *economy.UseCase
	Router     *ui.Router
	Responder  ui.Responder
	Appearance Appearance
	PageSize   int
}

// Flows serves every command of the bot.
type Flows struct {
	uc         *economy.UseCase
	router     *ui.Router
	responder  ui.Responder
	appearance Appearance
	pageSize   int
	logger     *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *Flows {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.PageSize <= 0 || deps.PageSize > ui.MaxOptions {
		deps.PageSize = 5
	}
	return &Flows{
		uc:         deps.Economy,
		router:     deps.Router,
		responder:  deps.Responder,
		appearance: deps.Appearance,
		pageSize:   deps.PageSize,
		logger:     logger,
	}
}

// Register binds every command path to its flow.
func (f *Flows) Register(d *command.Dispatcher) {
	d.Register("currency create", f.currencyCreate)
	d.Register("currency remove", f.currencyRemove)
	d.Register("currency list", f.currencyList)
	d.Register("currency edit name", f.currencyEditName)
	d.Register("currency edit emoji", f.currencyEditEmoji)

	d.Register("shop create", f.shopCreate)
	d.Register("shop remove", f.shopRemove)
	d.Register("shop list", f.shopList)
	d.Register("shop reorder", f.shopReorder)
	d.Register("shop edit name", f.shopEditName)
	d.Register("shop edit description", f.shopEditDescription)
	d.Register("shop edit emoji", f.shopEditEmoji)
	d.Register("shop edit reserved-to", f.shopEditReservedTo)
	d.Register("shop edit currency", f.shopEditCurrency)
	d.Register("shop discount-create", f.discountCreate)
	d.Register("shop discount-remove", f.discountRemove)

	d.Register("product add", f.productAdd)
	d.Register("product remove", f.productRemove)
	d.Register("product update", f.productUpdate)

	d.Register("account view", f.accountView)
	d.Register("account give", f.accountGive)
	d.Register("account take", f.accountTake)
	d.Register("account empty", f.accountEmpty)
	d.Register("inventory", f.inventory)

	d.Register("settings view", f.settingsView)
	for _, t := range []domain.SettingType{
		domain.SettingString, domain.SettingBool, domain.SettingNumber,
		domain.SettingChannel, domain.SettingRole, domain.SettingUser,
	} {
		d.Register("settings set "+string(t), f.settingsSet(t))
	}
	d.Register("settings reset", f.settingsReset)

	d.Register("buy", f.buy)
}

// reply answers a command that needs no interactive step.
func (f *Flows) reply(ctx context.Context, inv *command.Invocation, content string, embeds ...*discordgo.MessageEmbed) error {
	_, err := f.responder.Reply(ctx, inv.Interaction, ui.Message{Content: content, Embeds: embeds, Ephemeral: true})
	return err
}

func (f *Flows) newInterface(name string, inv *command.Invocation) *ui.Interface {
	return f.router.New(name, inv.UserID, ui.Ephemeral())
}

func (f *Flows) embed(title, description string) *discordgo.MessageEmbed {
	color, name := defaultColor, ""
	if f.appearance != nil {
		color = int(f.appearance.Number(domain.SettingEmbedColor, defaultColor))
		name = f.appearance.String(domain.SettingBotName, "")
	}
	e := &discordgo.MessageEmbed{
		Title:       textutil.Ellipsis(title, 256),
		Description: textutil.Ellipsis(description, 4096),
		Color:       color,
	}
	if name != "" {
		e.Author = &discordgo.MessageEmbedAuthor{Name: textutil.Ellipsis(name, 256)}
	}
	return e
}

func (f *Flows) requireCurrencies() error {
	if len(f.uc.ListCurrencies()) == 0 {
		return domain.Invalidf("there are no currencies yet, create one with /currency create")
	}
	return nil
}

func (f *Flows) requireShops() error {
	if len(f.uc.ListShops()) == 0 {
		return domain.Invalidf("there are no shops yet, create one with /shop create")
	}
	return nil
}

// choose builds a select storing the chosen value in current. then runs after the choice,
// re-rendering by default.
func choose[T comparable](iface *ui.Interface, id, placeholder string, options func() []ui.Option[T], key func(T) string, current *T, then func(ctx context.Context) error) *ui.Select[T] {
	return &ui.Select[T]{
		ID:          id,
		Placeholder: placeholder,
		Options:     options,
		Selected: func() string {
			var zero T
			if *current == zero {
				return ""
			}
			return key(*current)
		},
		OnSelect: func(ctx context.Context, _ *ui.Activation, value T) error {
			*current = value
			if then != nil {
				return then(ctx)
			}
			return iface.Render(ctx)
		},
	}
}

func currencyKey(c *domain.Currency) string { return c.ID }
func shopKey(s *domain.Shop) string         { return s.ID }
func productKey(p *domain.Product) string   { return p.ID }
func codeKey(c string) string               { return c }

func (f *Flows) currencyOptions() []ui.Option[*domain.Currency] {
	list := f.uc.ListCurrencies()
	out := make([]ui.Option[*domain.Currency], 0, len(list))
	for _, c := range list {
		out = append(out, ui.Option[*domain.Currency]{Key: c.ID, Label: c.Label(), Value: c})
	}
	return out
}

func (f *Flows) shopOptions() []ui.Option[*domain.Shop] {
	return shopOptionsOf(f.uc.ListShops())
}

func shopOptionsOf(shops []*domain.Shop) []ui.Option[*domain.Shop] {
	out := make([]ui.Option[*domain.Shop], 0, len(shops))
	for _, s := range shops {
		out = append(out, ui.Option[*domain.Shop]{
			Key:         s.ID,
			Label:       s.Label(),
			Description: textutil.StripCustomEmoji(s.Description),
			Value:       s,
		})
	}
	return out
}

func (f *Flows) productOptionsOf(products []*domain.Product) []ui.Option[*domain.Product] {
	out := make([]ui.Option[*domain.Product], 0, len(products))
	for _, p := range products {
		out = append(out, ui.Option[*domain.Product]{
			Key:         p.ID,
			Label:       p.Label(),
			Description: domain.FormatAmount(p.Price),
			Value:       p,
		})
	}
	return out
}

func discountOptions(shop *domain.Shop) []ui.Option[string] {
	if shop == nil {
		return nil
	}
	codes := sortedCodes(shop)
	out := make([]ui.Option[string], 0, len(codes))
	for _, c := range codes {
		out = append(out, ui.Option[string]{Key: c, Label: c, Description: percent(shop.DiscountCodes[c]), Value: c})
	}
	return out
}

// confirmed runs the confirmation form. A declined form re-renders the message unchanged;
// an abandoned one leaves it as it was.
func confirmed(ctx context.Context, iface *ui.Interface, title, prompt string) (bool, error) {
	res, err := ui.Confirm(ctx, iface, title, prompt)
	if err != nil {
		return false, err
	}
	switch res {
	case ui.Confirmed:
		return true, nil
	case ui.Declined:
		if err := iface.Render(ctx); err != nil {
			return false, err
		}
		return false, iface.Notice(ctx, "Cancelled, nothing was changed.")
	default:
		return false, nil
	}
}

// submit builds the terminal button of a flow. ready gates it; run performs the mutation
// and returns the success view.
func submit(iface *ui.Interface, label string, style discordgo.ButtonStyle, ready func() bool, run func(ctx context.Context) (ui.View, error)) *ui.Button {
	return &ui.Button{
		ID:    "submit",
		Label: label,
		Style: style,
		When:  ready,
		OnClick: func(ctx context.Context, _ *ui.Activation) error {
			if !iface.Begin() {
				return nil
			}
			if !ready() {
				iface.Release()
				return iface.Notice(ctx, "Complete the form first.")
			}
			view, err := run(ctx)
			if err != nil {
				if errors.Is(err, errCancelled) {
					iface.Release()
					return nil
				}
				return err
			}
			return iface.Finish(ctx, view)
		},
	}
}

// errCancelled backs out of a submit without ending the flow.
var errCancelled = errors.New("flow: cancelled")

// cancelled maps a declined confirmation to errCancelled and keeps real errors.
func cancelled(err error) error {
	if err != nil {
		return err
	}
	return errCancelled
}

// back returns to the first stage.
func back(stages *ui.Stages, label string) *ui.Button {
	return &ui.Button{
		ID:    "back",
		Label: label,
		Style: discordgo.SecondaryButton,
		OnClick: func(ctx context.Context, _ *ui.Activation) error {
			return stages.Reset(ctx)
		},
	}
}

func done(format string, args ...any) ui.View {
	return ui.View{Content: "✅ " + fmt.Sprintf(format, args...)}
}

// sortedCodes returns the discount codes of shop in lexical order.
func sortedCodes(shop *domain.Shop) []string {
	codes := make([]string, 0, len(shop.DiscountCodes))
	for c := range shop.DiscountCodes {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

func percent(p int) string {
	return strconv.Itoa(p) + "% off"
}

// live re-reads a shop so a flow sees edits made since it was selected.
func (f *Flows) live(shop *domain.Shop) *domain.Shop {
	if shop == nil {
		return nil
	}
	if fresh, err := f.uc.GetShop(shop.ID); err == nil {
		return fresh
	}
	return shop
}

func bold(s string) string {
	return "**" + strings.ReplaceAll(s, "*", "\\*") + "**"
}

// listing renders a read-only paginated embed. entries is re-read on every render.
func (f *Flows) listing(ctx context.Context, inv *command.Invocation, name, title, header, empty string, entries func() []string) error {
	iface := f.newInterface(name, inv)
	pager := ui.NewPager(iface, f.pageSize, func() int { return len(entries()) })
	iface.SetView(func() ui.View {
		all := entries()
		body := empty
		if len(all) > 0 {
			body = strings.Join(ui.PageOf(pager, all), "\n")
		}
		if header != "" {
			body = header + "\n\n" + body
		}
		e := f.embed(title, body)
		if len(all) > 0 {
			e.Footer = &discordgo.MessageEmbedFooter{Text: pager.Footer()}
		}
		return ui.View{Embeds: []*discordgo.MessageEmbed{e}}
	})
	iface.SetComponents(pager.Buttons()...)
	return iface.Start(ctx, inv.Interaction)
}
