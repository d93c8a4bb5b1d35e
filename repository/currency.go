package repository

import (
	"context"

	"github.com/fastygo/shopbot/domain"
)

type CurrencyRepository interface {
	List() []*domain.Currency
	Get(id string) (*domain.Currency, error)
	FindByName(name string) (*domain.Currency, bool)
	Create(ctx context.Context, name, emoji string) (*domain.Currency, error)
	Update(ctx context.Context, id string, patch domain.CurrencyPatch) error
	Remove(ctx context.Context, id string) error
	Len() int
}
