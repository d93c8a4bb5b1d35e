package handler

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/pkg/httpcontext"
	"github.com/fastygo/shopbot/pkg/logger"
	"github.com/fastygo/shopbot/usecase/economy"
)

// EconomyReader is the read side of the economy exposed to operators.
type EconomyReader interface {
	Stats() economy.Stats
	FindAccount(userID string) (*domain.Account, error)
}

type StatsHandler struct {
	baseHandler
	economy EconomyReader
}

func NewStatsHandler(uc EconomyReader, adapter *httpcontext.Adapter, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		baseHandler: newBaseHandler(adapter, logger),
		economy:     uc,
	}
}

func (h *StatsHandler) Stats(ctx *fasthttp.RequestCtx) {
	h.respondSuccess(ctx, h.economy.Stats())
}

type balanceView struct {
	CurrencyID string `json:"currency_id"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
}

type itemView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
}

type accountView struct {
	UserID    string        `json:"user_id"`
	Balances  []balanceView `json:"balances"`
	Inventory []itemView    `json:"inventory"`
}

// Account returns the balances and inventory of the user in the path.
func (h *StatsHandler) Account(ctx *fasthttp.RequestCtx) {
	reqCtx, cancel := h.requestContext(ctx)
	defer cancel()

	userID, _ := ctx.UserValue("user_id").(string)
	account, err := h.economy.FindAccount(userID)
	if err != nil {
		h.respondError(reqCtx, ctx, err)
		return
	}

	view := accountView{UserID: account.UserID, Balances: []balanceView{}, Inventory: []itemView{}}
	for _, b := range account.SortedCurrencies() {
		view.Balances = append(view.Balances, balanceView{CurrencyID: b.Item.ID, Name: b.Item.Name, Amount: domain.FormatAmount(b.Amount)})
	}
	for _, it := range account.SortedInventory() {
		view.Inventory = append(view.Inventory, itemView{ProductID: it.Item.ID, Name: it.Item.Name, Count: it.Amount})
	}
	logger.FromContext(reqCtx, h.logger).Debug("account served", zap.String("user_id", userID))
	h.respondSuccess(ctx, view)
}
