package domain

import "github.com/shopspring/decimal"

// ActionKind is the persisted tag of an Action variant.
type ActionKind string

const (
	ActionGiveRole     ActionKind = "give-role"
	ActionGiveCurrency ActionKind = "give-currency"
)

// Action is a closed set of purchase side effects. The unexported marker keeps the set
// closed to this package; ActionVisitor forces callers to handle every variant.
type Action interface {
	Kind() ActionKind
	Accept(v ActionVisitor) error
	isAction()
}

// ActionVisitor handles every Action variant.
type ActionVisitor interface {
	VisitGiveRole(a GiveRole) error
	VisitGiveCurrency(a GiveCurrency) error
}

// GiveRole grants a guild role to the buyer.
type GiveRole struct {
	RoleID string
}

func (GiveRole) Kind() ActionKind               { return ActionGiveRole }
func (a GiveRole) Accept(v ActionVisitor) error { return v.VisitGiveRole(a) }
func (GiveRole) isAction()                      {}

// GiveCurrency credits Amount of a currency to the buyer.
type GiveCurrency struct {
	CurrencyID string
	Amount     decimal.Decimal
}

func (GiveCurrency) Kind() ActionKind               { return ActionGiveCurrency }
func (a GiveCurrency) Accept(v ActionVisitor) error { return v.VisitGiveCurrency(a) }
func (GiveCurrency) isAction()                      {}

// DescribeAction renders a short human description of a, resolving currency names through lookup.
func DescribeAction(a Action, lookup func(id string) (*Currency, bool)) string {
	switch act := a.(type) {
	case GiveRole:
		return "gives role <@&" + act.RoleID + ">"
	case GiveCurrency:
		name := act.CurrencyID
		if c, ok := lookup(act.CurrencyID); ok {
			name = c.Label()
		}
		return "gives " + FormatAmount(act.Amount) + " " + name
	default:
		return ""
	}
}
