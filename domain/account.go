package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencyBalance is an account's holding of one currency.
type CurrencyBalance struct {
	Item   *Currency
	Amount decimal.Decimal
}

// ItemBalance is an account's holding of one product.
type ItemBalance struct {
	Item   *Product
	Amount int
}

// Account holds the balances and inventory of one guild member.
type Account struct {
	UserID     string
	Currencies map[string]*CurrencyBalance
	Inventory  map[string]*ItemBalance
}

// NewAccount returns an empty account for userID.
func NewAccount(userID string) *Account {
	return &Account{
		UserID:     userID,
		Currencies: map[string]*CurrencyBalance{},
		Inventory:  map[string]*ItemBalance{},
	}
}

// Balance returns the amount held in currencyID, zero when absent.
func (a *Account) Balance(currencyID string) decimal.Decimal {
	if a == nil {
		return decimal.Zero
	}
	if b, ok := a.Currencies[currencyID]; ok {
		return b.Amount
	}
	return decimal.Zero
}

// SortedCurrencies returns the currency balances ordered by currency name.
func (a *Account) SortedCurrencies() []*CurrencyBalance {
	out := make([]*CurrencyBalance, 0, len(a.Currencies))
	for _, b := range a.Currencies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Name < out[j].Item.Name })
	return out
}

// SortedInventory returns the inventory ordered by product name.
func (a *Account) SortedInventory() []*ItemBalance {
	out := make([]*ItemBalance, 0, len(a.Inventory))
	for _, b := range a.Inventory {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Name < out[j].Item.Name })
	return out
}
