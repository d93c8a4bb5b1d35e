package domain

// Currency is a named unit of balance. It is shared by reference between shops and accounts.
type Currency struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

// Label renders the currency with its emoji when one is set.
func (c *Currency) Label() string {
	if c == nil {
		return ""
	}
	if c.Emoji != "" {
		return c.Emoji + " " + c.Name
	}
	return c.Name
}

// CurrencyPatch lists the fields an update may change. Nil fields stay untouched.
type CurrencyPatch struct {
	Name  *string
	Emoji *string
}

const (
	CurrencyNameMax = 40
	ShopNameMax     = 120
	ProductNameMax  = 70
	DescriptionMax  = 300
	DiscountCodeMax = 40
)
