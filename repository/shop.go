package repository

import (
	"context"

	"github.com/fastygo/shopbot/domain"
)

type ShopRepository interface {
	List() []*domain.Shop
	Get(id string) (*domain.Shop, error)
	Create(ctx context.Context, fields domain.ShopFields) (*domain.Shop, error)
	Update(ctx context.Context, id string, patch domain.ShopPatch) error
	Remove(ctx context.Context, id string) error
	Reorder(ctx context.Context, id string, index int) error
	UsesCurrency(currencyID string) bool
	Len() int

	AddProduct(ctx context.Context, shopID string, fields domain.ProductFields) (*domain.Product, error)
	UpdateProduct(ctx context.Context, shopID, productID string, patch domain.ProductPatch) error
	RemoveProduct(ctx context.Context, shopID, productID string) error
	FindProduct(shopID, productID string) (*domain.Product, error)

	CreateDiscountCode(ctx context.Context, shopID, code string, percent int) error
	RemoveDiscountCode(ctx context.Context, shopID, code string) error
}
