package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/domain"
)

type AccountRepository interface {
	Get(userID string) (*domain.Account, bool)
	GetOrCreate(ctx context.Context, userID string) (*domain.Account, error)
	List() []*domain.Account
	Balance(userID, currencyID string) decimal.Decimal

	SetBalance(ctx context.Context, userID string, currency *domain.Currency, amount decimal.Decimal) (decimal.Decimal, error)
	AddBalance(ctx context.Context, userID string, currency *domain.Currency, amount decimal.Decimal) (decimal.Decimal, error)
	TakeBalance(ctx context.Context, userID string, currency *domain.Currency, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, userID string, currencyID string, amount decimal.Decimal) (decimal.Decimal, error)

	AddItem(ctx context.Context, userID string, product *domain.Product, count int) (int, error)
	Empty(ctx context.Context, userID string) error

	StripCurrency(ctx context.Context, currencyID string) (int, error)
	StripProducts(ctx context.Context, productIDs ...string) (int, error)
}
