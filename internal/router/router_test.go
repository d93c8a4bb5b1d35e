package router

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"

	apiHandler "github.com/fastygo/shopbot/api/handler"
	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/infrastructure/monitor"
	"github.com/fastygo/shopbot/internal/middleware"
	"github.com/fastygo/shopbot/pkg/httpcontext"
	"github.com/fastygo/shopbot/usecase/economy"
)

type fakeStatus struct{ status monitor.Status }

func (f fakeStatus) GetStatus() monitor.Status { return f.status }

type fakeEconomy struct{ accounts map[string]*domain.Account }

func (f fakeEconomy) Stats() economy.Stats {
	return economy.Stats{Currencies: 1, Shops: 2, Products: 3, Accounts: len(f.accounts)}
}

func (f fakeEconomy) FindAccount(userID string) (*domain.Account, error) {
	if a, ok := f.accounts[userID]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func newHandler(t *testing.T, online bool, token string) fasthttp.RequestHandler {
	t.Helper()
	log := zaptest.NewLogger(t)
	adapter := httpcontext.NewAdapter(nil, time.Second)

	gold := &domain.Currency{ID: "c1", Name: "Gold"}
	account := domain.NewAccount("u1")
	account.Currencies["c1"] = &domain.CurrencyBalance{Item: gold, Amount: decimal.RequireFromString("12.5")}

	handlers := Handlers{
		Health: apiHandler.NewHealthHandler(fakeStatus{monitor.Status{Gateway: online, BufferSize: 2}}, adapter, log),
		Stats:  apiHandler.NewStatsHandler(fakeEconomy{accounts: map[string]*domain.Account{"u1": account}}, adapter, log),
	}
	return New(handlers, middleware.StaticToken(token, log), middleware.AccessLog(log))
}

func do(h fasthttp.RequestHandler, path, auth string) (int, map[string]any) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(path)
	if auth != "" {
		ctx.Request.Header.Set("Authorization", auth)
	}
	h(&ctx)
	var body map[string]any
	_ = json.Unmarshal(ctx.Response.Body(), &body)
	return ctx.Response.StatusCode(), body
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		online bool
		code   int
		status string
	}{
		{name: "online", online: true, code: fasthttp.StatusOK, status: "success"},
		{name: "offline", online: false, code: fasthttp.StatusServiceUnavailable, status: "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(newHandler(t, tc.online, ""), "/health", "")
			if code != tc.code || body["status"] != tc.status {
				t.Fatalf("got %d %v", code, body)
			}
		})
	}
}

func TestStatsRequiresToken(t *testing.T) {
	h := newHandler(t, true, "secret")

	if code, _ := do(h, "/stats", ""); code != fasthttp.StatusUnauthorized {
		t.Fatalf("missing token: got %d", code)
	}
	if code, _ := do(h, "/stats", "Bearer wrong"); code != fasthttp.StatusUnauthorized {
		t.Fatalf("wrong token: got %d", code)
	}
	code, body := do(h, "/stats", "Bearer secret")
	if code != fasthttp.StatusOK {
		t.Fatalf("valid token: got %d", code)
	}
	data := body["data"].(map[string]any)
	if data["shops"] != float64(2) || data["accounts"] != float64(1) {
		t.Fatalf("unexpected stats %v", data)
	}
	if code, _ := do(h, "/health", ""); code != fasthttp.StatusOK {
		t.Fatalf("health must stay open, got %d", code)
	}
}

func TestAccountEndpoint(t *testing.T) {
	h := newHandler(t, true, "")

	code, body := do(h, "/stats/accounts/u1", "")
	if code != fasthttp.StatusOK {
		t.Fatalf("got %d %v", code, body)
	}
	balances := body["data"].(map[string]any)["balances"].([]any)
	if len(balances) != 1 || balances[0].(map[string]any)["amount"] != "12.50" {
		t.Fatalf("unexpected balances %v", balances)
	}

	code, body = do(h, "/stats/accounts/nobody", "")
	if code != fasthttp.StatusNotFound || body["code"] != "NOT_FOUND" || body["error"] != "account does not exist" {
		t.Fatalf("got %d %v", code, body)
	}
}
