package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/repository"
	"github.com/fastygo/shopbot/usecase"
)

// Deps lists the collaborators of the economy use case. Roles and Audit are optional.
type Deps struct {
	Currencies repository.CurrencyRepository
	Shops      repository.ShopRepository
	Accounts   repository.AccountRepository
	Settings   repository.SettingRepository
	Roles      usecase.RoleGranter
	Audit      usecase.AuditLog
}

type UseCase struct {
	currencies repository.CurrencyRepository
	shops      repository.ShopRepository
	accounts   repository.AccountRepository
	settings   repository.SettingRepository
	roles      usecase.RoleGranter
	audit      usecase.AuditLog
	logger     *zap.Logger
}

func New(deps Deps, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		currencies: deps.Currencies,
		shops:      deps.Shops,
		accounts:   deps.Accounts,
		settings:   deps.Settings,
		roles:      deps.Roles,
		audit:      deps.Audit,
		logger:     logger,
	}
}

func (uc *UseCase) ListCurrencies() []*domain.Currency {
	return uc.currencies.List()
}

func (uc *UseCase) GetCurrency(id string) (*domain.Currency, error) {
	return uc.currencies.Get(id)
}

// LookupCurrency adapts the currency repository to domain.DescribeAction.
func (uc *UseCase) LookupCurrency(id string) (*domain.Currency, bool) {
	cur, err := uc.currencies.Get(id)
	return cur, err == nil
}

func (uc *UseCase) CreateCurrency(ctx context.Context, actorID, name, emoji string) (*domain.Currency, error) {
	cur, err := uc.currencies.Create(ctx, name, emoji)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> created currency %s", actorID, cur.Label())
	return cur, nil
}

// RemoveCurrency refuses while a shop still prices in or gives the currency. Otherwise
// the currency is stripped from every account before it is removed.
func (uc *UseCase) RemoveCurrency(ctx context.Context, actorID, id string) (int, error) {
	cur, err := uc.currencies.Get(id)
	if err != nil {
		return 0, err
	}
	if uc.shops.UsesCurrency(id) {
		return 0, domain.ErrCurrencyInUse
	}
	stripped, err := uc.accounts.StripCurrency(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := uc.currencies.Remove(ctx, id); err != nil {
		return stripped, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> removed currency %s (%d accounts affected)", actorID, cur.Label(), stripped)
	return stripped, nil
}

// UpdateCurrency renames a currency or changes its emoji. Names stay unique.
func (uc *UseCase) UpdateCurrency(ctx context.Context, actorID, id string, patch domain.CurrencyPatch) (*domain.Currency, error) {
	before, err := uc.currencies.Get(id)
	if err != nil {
		return nil, err
	}
	previous := before.Label()
	if err := uc.currencies.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	cur, err := uc.currencies.Get(id)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> edited currency %s, now %s", actorID, previous, cur.Label())
	return cur, nil
}

func (uc *UseCase) ListShops() []*domain.Shop {
	return uc.shops.List()
}

func (uc *UseCase) GetShop(id string) (*domain.Shop, error) {
	return uc.shops.Get(id)
}

func (uc *UseCase) CreateShop(ctx context.Context, actorID string, fields domain.ShopFields) (*domain.Shop, error) {
	shop, err := uc.shops.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> created shop %s", actorID, shop.Label())
	return shop, nil
}

func (uc *UseCase) UpdateShop(ctx context.Context, actorID, id string, patch domain.ShopPatch) (*domain.Shop, error) {
	if err := uc.shops.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	shop, err := uc.shops.Get(id)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> edited shop %s", actorID, shop.Label())
	return shop, nil
}

// RemoveShop strips every product of the shop from all inventories, then removes it.
func (uc *UseCase) RemoveShop(ctx context.Context, actorID, id string) error {
	shop, err := uc.shops.Get(id)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(shop.Products))
	for _, p := range shop.Products {
		ids = append(ids, p.ID)
	}
	if _, err := uc.accounts.StripProducts(ctx, ids...); err != nil {
		return err
	}
	if err := uc.shops.Remove(ctx, id); err != nil {
		return err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> removed shop %s", actorID, shop.Label())
	return nil
}

func (uc *UseCase) ReorderShop(ctx context.Context, id string, index int) error {
	return uc.shops.Reorder(ctx, id, index)
}

func (uc *UseCase) CreateDiscountCode(ctx context.Context, actorID, shopID, code string, percent int) error {
	if err := uc.shops.CreateDiscountCode(ctx, shopID, code, percent); err != nil {
		return err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> created a %d%% discount code on shop %s", actorID, percent, uc.shopLabel(shopID))
	return nil
}

func (uc *UseCase) RemoveDiscountCode(ctx context.Context, actorID, shopID, code string) error {
	if err := uc.shops.RemoveDiscountCode(ctx, shopID, code); err != nil {
		return err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> removed a discount code from shop %s", actorID, uc.shopLabel(shopID))
	return nil
}

func (uc *UseCase) AddProduct(ctx context.Context, actorID, shopID string, fields domain.ProductFields) (*domain.Product, error) {
	product, err := uc.shops.AddProduct(ctx, shopID, fields)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> added %s to shop %s", actorID, product.Label(), uc.shopLabel(shopID))
	return product, nil
}

func (uc *UseCase) UpdateProduct(ctx context.Context, actorID, shopID, productID string, patch domain.ProductPatch) (*domain.Product, error) {
	if err := uc.shops.UpdateProduct(ctx, shopID, productID, patch); err != nil {
		return nil, err
	}
	product, err := uc.shops.FindProduct(shopID, productID)
	if err != nil {
		return nil, err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> updated %s in shop %s", actorID, product.Label(), uc.shopLabel(shopID))
	return product, nil
}

// RemoveProduct strips the product from every inventory, then removes it from its shop.
func (uc *UseCase) RemoveProduct(ctx context.Context, actorID, shopID, productID string) error {
	product, err := uc.shops.FindProduct(shopID, productID)
	if err != nil {
		return err
	}
	if _, err := uc.accounts.StripProducts(ctx, productID); err != nil {
		return err
	}
	if err := uc.shops.RemoveProduct(ctx, shopID, productID); err != nil {
		return err
	}
	uc.record(ctx, domain.AuditCatalog, actorID, "<@%s> removed %s from shop %s", actorID, product.Label(), uc.shopLabel(shopID))
	return nil
}

func (uc *UseCase) ListSettings() []*domain.Setting {
	return uc.settings.List()
}

func (uc *UseCase) SetSetting(ctx context.Context, id string, value domain.SettingValue) (*domain.Setting, error) {
	if err := uc.settings.Set(ctx, id, value); err != nil {
		return nil, err
	}
	return uc.settings.Get(id)
}

func (uc *UseCase) ResetSetting(ctx context.Context, id string) (*domain.Setting, error) {
	if err := uc.settings.Reset(ctx, id); err != nil {
		return nil, err
	}
	return uc.settings.Get(id)
}

func (uc *UseCase) shopLabel(id string) string {
	shop, err := uc.shops.Get(id)
	if err != nil {
		return id
	}
	return shop.Label()
}

func (uc *UseCase) record(ctx context.Context, kind domain.AuditKind, actorID, format string, args ...any) {
	if uc.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		Kind:      kind,
		ActorID:   actorID,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.logger.Warn("failed to record audit entry", zap.String("kind", string(kind)), zap.Error(err))
	}
}

// Stats counts the entities of the store.
type Stats struct {
	Currencies int `json:"currencies"`
	Shops      int `json:"shops"`
	Products   int `json:"products"`
	Accounts   int `json:"accounts"`
}

func (uc *UseCase) Stats() Stats {
	shops := uc.shops.List()
	products := 0
	for _, s := range shops {
		products += len(s.Products)
	}
	return Stats{
		Currencies: len(uc.currencies.List()),
		Shops:      len(shops),
		Products:   products,
		Accounts:   len(uc.accounts.List()),
	}
}
