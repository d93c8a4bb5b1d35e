package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/repository"
)

type currencyBalanceDTO struct {
	Item   string `json:"item"`
	Amount number `json:"amount"`
}

type itemRefDTO struct {
	ID     string `json:"id"`
	ShopID string `json:"shopId"`
}

type itemBalanceDTO struct {
	Item   itemRefDTO `json:"item"`
	Amount int        `json:"amount"`
}

type accountDTO struct {
	Currencies map[string]currencyBalanceDTO `json:"currencies"`
	Inventory  map[string]itemBalanceDTO     `json:"inventory"`
}

func toAccountDTO(a *domain.Account) any {
	dto := accountDTO{
		Currencies: make(map[string]currencyBalanceDTO, len(a.Currencies)),
		Inventory:  make(map[string]itemBalanceDTO, len(a.Inventory)),
	}
	for id, b := range a.Currencies {
		dto.Currencies[id] = currencyBalanceDTO{Item: id, Amount: number(b.Amount)}
	}
	for id, b := range a.Inventory {
		dto.Inventory[id] = itemBalanceDTO{Item: itemRefDTO{ID: id, ShopID: b.Item.ShopID}, Amount: b.Amount}
	}
	return dto
}

// keepAccount saves the balance maps and the amount held in each entry.
func keepAccount(a *domain.Account) func() {
	saved := *a
	currencies := maps.Clone(a.Currencies)
	amounts := make(map[string]decimal.Decimal, len(currencies))
	for id, b := range currencies {
		amounts[id] = b.Amount
	}
	inventory := maps.Clone(a.Inventory)
	counts := make(map[string]int, len(inventory))
	for id, b := range inventory {
		counts[id] = b.Amount
	}
	return func() {
		*a = saved
		a.Currencies, a.Inventory = currencies, inventory
		for id, b := range currencies {
			b.Amount = amounts[id]
		}
		for id, b := range inventory {
			b.Amount = counts[id]
		}
	}
}

// Accounts is the per-user balance collection backed by accounts.json.
type Accounts struct {
	*collection[domain.Account]
	currencies *Currencies
	shops      *Shops
}

func newAccounts(dir string, currencies *Currencies, shops *Shops) *Accounts {
	return &Accounts{
		collection: newCollection("accounts", document{path: docPath(dir, "accounts.json")}, toAccountDTO, keepAccount),
		currencies: currencies,
		shops:      shops,
	}
}

// load always keeps the account; balance entries pointing at a missing currency or
// product are dropped one by one.
func (a *Accounts) load() (dropped int, err error) {
	data, err := a.doc.read()
	if err != nil {
		return 0, err
	}
	keys, raws, err := decodeOrdered(data)
	if err != nil {
		return 0, fmt.Errorf("accounts.json: %w", err)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, userID := range keys {
		var dto accountDTO
		if err := json.Unmarshal(raws[userID], &dto); err != nil {
			return dropped, fmt.Errorf("accounts.json %q: %w", userID, err)
		}
		acc := domain.NewAccount(userID)
		for id, b := range dto.Currencies {
			cur, ok := a.currencies.lookup(id)
			if !ok {
				dropped++
				continue
			}
			acc.Currencies[id] = &domain.CurrencyBalance{Item: cur, Amount: domain.RoundAmount(decimal.Decimal(b.Amount))}
		}
		for id, b := range dto.Inventory {
			product, err := a.shops.FindProduct(b.Item.ShopID, id)
			if err != nil {
				dropped++
				continue
			}
			acc.Inventory[id] = &domain.ItemBalance{Item: product, Amount: b.Amount}
		}
		a.insertLocked(userID, acc)
	}
	return dropped, nil
}

func (a *Accounts) Get(userID string) (*domain.Account, bool) {
	var (
		acc *domain.Account
		ok  bool
	)
	a.read(func() { acc, ok = a.getLocked(userID) })
	return acc, ok
}

// GetOrCreate returns the stored account, creating and persisting an empty one on first access.
func (a *Accounts) GetOrCreate(ctx context.Context, userID string) (*domain.Account, error) {
	if acc, ok := a.Get(userID); ok {
		return acc, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.getLocked(userID); ok {
		return existing, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acc := domain.NewAccount(userID)
	a.insertLocked(userID, acc)
	if err := a.persistLocked(); err != nil {
		a.deleteLocked(userID)
		return nil, err
	}
	return acc, nil
}

func (a *Accounts) List() []*domain.Account {
	var out []*domain.Account
	a.read(func() { out = a.listLocked() })
	return out
}

// Balance reads the amount of currencyID held by userID under the collection lock.
func (a *Accounts) Balance(userID, currencyID string) decimal.Decimal {
	amount := decimal.Zero
	a.read(func() {
		if acc, ok := a.getLocked(userID); ok {
			amount = acc.Balance(currencyID)
		}
	})
	return amount
}

// mutate runs fn against the account of userID, creating it when needed, and persists.
func (a *Accounts) mutate(ctx context.Context, userID string, fn func(acc *domain.Account) error) error {
	return a.write(ctx, func() error {
		acc, ok := a.getLocked(userID)
		if !ok {
			acc = domain.NewAccount(userID)
			a.insertLocked(userID, acc)
		}
		return fn(acc)
	})
}

func balanceOf(acc *domain.Account, currency *domain.Currency) *domain.CurrencyBalance {
	b, ok := acc.Currencies[currency.ID]
	if !ok {
		b = &domain.CurrencyBalance{Item: currency, Amount: decimal.Zero}
		acc.Currencies[currency.ID] = b
	}
	return b
}

func (a *Accounts) SetBalance(ctx context.Context, userID string, currency *domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, domain.Invalidf("amount must not be negative")
	}
	var result decimal.Decimal
	err := a.mutate(ctx, userID, func(acc *domain.Account) error {
		b := balanceOf(acc, currency)
		b.Amount = domain.RoundAmount(amount)
		result = b.Amount
		return nil
	})
	return result, err
}

func (a *Accounts) AddBalance(ctx context.Context, userID string, currency *domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, domain.Invalidf("amount must not be negative")
	}
	var result decimal.Decimal
	err := a.mutate(ctx, userID, func(acc *domain.Account) error {
		b := balanceOf(acc, currency)
		b.Amount = domain.RoundAmount(b.Amount.Add(amount))
		result = b.Amount
		return nil
	})
	return result, err
}

// TakeBalance removes amount, flooring the balance at zero.
func (a *Accounts) TakeBalance(ctx context.Context, userID string, currency *domain.Currency, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, domain.Invalidf("amount must not be negative")
	}
	var result decimal.Decimal
	err := a.mutate(ctx, userID, func(acc *domain.Account) error {
		b := balanceOf(acc, currency)
		next := domain.RoundAmount(b.Amount.Sub(amount))
		if next.IsNegative() {
			next = decimal.Zero
		}
		b.Amount = next
		result = next
		return nil
	})
	return result, err
}

// Debit removes amount and fails without mutation when the balance is too low.
func (a *Accounts) Debit(ctx context.Context, userID string, currencyID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var result decimal.Decimal
	err := a.write(ctx, func() error {
		acc, ok := a.getLocked(userID)
		if !ok {
			return domain.ErrAccountNotFound
		}
		current := acc.Balance(currencyID)
		if current.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		b, ok := acc.Currencies[currencyID]
		if !ok {
			// zero amount debit on a currency the user never held
			return nil
		}
		b.Amount = domain.RoundAmount(b.Amount.Sub(amount))
		result = b.Amount
		return nil
	})
	return result, err
}

func (a *Accounts) AddItem(ctx context.Context, userID string, product *domain.Product, count int) (int, error) {
	if count <= 0 {
		return 0, domain.Invalidf("count must be positive")
	}
	var result int
	err := a.mutate(ctx, userID, func(acc *domain.Account) error {
		b, ok := acc.Inventory[product.ID]
		if !ok {
			b = &domain.ItemBalance{Item: product}
			acc.Inventory[product.ID] = b
		}
		b.Amount += count
		result = b.Amount
		return nil
	})
	return result, err
}

// Empty clears every balance and the inventory of userID.
func (a *Accounts) Empty(ctx context.Context, userID string) error {
	return a.write(ctx, func() error {
		acc, ok := a.getLocked(userID)
		if !ok {
			return domain.ErrAccountNotFound
		}
		acc.Currencies = map[string]*domain.CurrencyBalance{}
		acc.Inventory = map[string]*domain.ItemBalance{}
		return nil
	})
}

// StripCurrency removes the currency entry from every account and returns how many held it.
func (a *Accounts) StripCurrency(ctx context.Context, currencyID string) (int, error) {
	affected := 0
	err := a.write(ctx, func() error {
		for _, acc := range a.items {
			if _, ok := acc.Currencies[currencyID]; ok {
				delete(acc.Currencies, currencyID)
				affected++
			}
		}
		return nil
	})
	return affected, err
}

// StripProducts removes the given products from every inventory.
func (a *Accounts) StripProducts(ctx context.Context, productIDs ...string) (int, error) {
	affected := 0
	if len(productIDs) == 0 {
		return 0, nil
	}
	err := a.write(ctx, func() error {
		for _, acc := range a.items {
			for _, id := range productIDs {
				if _, ok := acc.Inventory[id]; ok {
					delete(acc.Inventory, id)
					affected++
				}
			}
		}
		return nil
	})
	return affected, err
}

var _ repository.AccountRepository = (*Accounts)(nil)
