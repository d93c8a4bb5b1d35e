package domain

import "github.com/shopspring/decimal"

// Shop owns its products and discount codes. Currency points at a live entry of the currency store.
type Shop struct {
	ID            string
	Name          string
	Emoji         string
	Description   string
	Currency      *Currency
	DiscountCodes map[string]int
	ReservedTo    string
	Products      []*Product
}

// Label renders the shop with its emoji when one is set.
func (s *Shop) Label() string {
	if s == nil {
		return ""
	}
	if s.Emoji != "" {
		return s.Emoji + " " + s.Name
	}
	return s.Name
}

// Product returns the product with the given id.
func (s *Shop) Product(id string) (*Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Discount returns the percentage for code. Unknown codes yield zero.
func (s *Shop) Discount(code string) int {
	if code == "" || s.DiscountCodes == nil {
		return 0
	}
	return s.DiscountCodes[code]
}

// ShopFields carries the values for a new shop.
type ShopFields struct {
	Name        string
	Emoji       string
	Description string
	CurrencyID  string
	ReservedTo  string
}

// ShopPatch lists the fields an update may change. Nil fields stay untouched.
type ShopPatch struct {
	Name        *string
	Emoji       *string
	Description *string
	CurrencyID  *string
	ReservedTo  *string
}

// Product is an item of a shop. A product with an action applies it at purchase time
// instead of being added to the inventory.
type Product struct {
	ID          string
	ShopID      string
	Name        string
	Emoji       string
	Description string
	Price       decimal.Decimal
	Action      Action
}

// Label renders the product with its emoji when one is set.
func (p *Product) Label() string {
	if p == nil {
		return ""
	}
	if p.Emoji != "" {
		return p.Emoji + " " + p.Name
	}
	return p.Name
}

// ProductFields carries the values for a new product.
type ProductFields struct {
	Name        string
	Emoji       string
	Description string
	Price       decimal.Decimal
	Action      Action
}

// ProductPatch lists the fields an update may change. Nil fields stay untouched.
type ProductPatch struct {
	Name        *string
	Emoji       *string
	Description *string
	Price       *decimal.Decimal
}
