package economy

import (
	"context"
	"errors"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fastygo/shopbot/domain"
)

// Buyer is the guild member making a purchase.
type Buyer struct {
	UserID string
	Roles  []string
	// Admin is set when the member has the Administrator permission.
	Admin bool
}

type PurchaseRequest struct {
	Buyer        Buyer
	ShopID       string
	ProductID    string
	DiscountCode string
}

// Receipt describes a completed, or partially completed, purchase.
type Receipt struct {
	Shop     *domain.Shop
	Product  *domain.Product
	Discount int
	Price    decimal.Decimal
	Balance  decimal.Decimal
	// Owned is the inventory count after a plain product purchase.
	Owned int
	// Credited is the new balance of the rewarded currency for a give-currency product.
	Credited *domain.CurrencyBalance
}

// Purchase charges the buyer and applies the product reward. The debit is persisted
// before the reward is applied and is not rolled back: when the reward fails the receipt
// is still returned together with an error matching domain.ErrGrantFailed.
func (uc *UseCase) Purchase(ctx context.Context, req PurchaseRequest) (*Receipt, error) {
	shop, err := uc.shops.Get(req.ShopID)
	if err != nil {
		return nil, err
	}
	product, ok := shop.Product(req.ProductID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	userID := req.Buyer.UserID
	if _, err := uc.accounts.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	// unknown codes are ignored
	discount := shop.Discount(req.DiscountCode)
	price := domain.ApplyDiscount(product.Price, discount)

	if uc.accounts.Balance(userID, shop.Currency.ID).LessThan(price) {
		return nil, domain.ErrInsufficientFunds
	}
	if shop.ReservedTo != "" && !uc.mayEnter(req.Buyer, shop.ReservedTo) {
		return nil, domain.ErrShopReserved
	}

	balance, err := uc.accounts.Debit(ctx, userID, shop.Currency.ID, price)
	if err != nil {
		return nil, err
	}
	receipt := &Receipt{
		Shop:     shop,
		Product:  product,
		Discount: discount,
		Price:    price,
		Balance:  balance,
	}

	if err := uc.reward(ctx, userID, receipt); err != nil {
		uc.logger.Error("purchase reward failed after debit",
			zap.String("user_id", userID),
			zap.String("shop_id", shop.ID),
			zap.String("product_id", product.ID),
			zap.String("charged", domain.FormatAmount(price)),
			zap.Error(err))
		return receipt, domain.WrapError(domain.ErrGrantFailed.Code, domain.ErrGrantFailed.Message, err)
	}

	if discount > 0 {
		uc.record(ctx, domain.AuditPurchase, userID, "<@%s> bought %s from %s for %s %s (%d%% off)",
			userID, product.Label(), shop.Label(), domain.FormatAmount(price), shop.Currency.Label(), discount)
	} else {
		uc.record(ctx, domain.AuditPurchase, userID, "<@%s> bought %s from %s for %s %s",
			userID, product.Label(), shop.Label(), domain.FormatAmount(price), shop.Currency.Label())
	}
	return receipt, nil
}

// mayEnter reports whether the buyer holds the reserved role or an admin override.
func (uc *UseCase) mayEnter(buyer Buyer, roleID string) bool {
	if buyer.Admin || slices.Contains(buyer.Roles, roleID) {
		return true
	}
	if uc.settings == nil {
		return false
	}
	setting, err := uc.settings.Get(domain.SettingShopAdminRole)
	if err != nil || !setting.IsSet() {
		return false
	}
	adminRole, ok := setting.Value.(domain.RoleValue)
	return ok && adminRole != "" && slices.Contains(buyer.Roles, string(adminRole))
}

func (uc *UseCase) reward(ctx context.Context, userID string, receipt *Receipt) error {
	if receipt.Product.Action == nil {
		owned, err := uc.accounts.AddItem(ctx, userID, receipt.Product, 1)
		if err != nil {
			return err
		}
		receipt.Owned = owned
		return nil
	}
	return receipt.Product.Action.Accept(rewarder{uc: uc, ctx: ctx, userID: userID, receipt: receipt})
}

var errNoRoleGranter = errors.New("role rewards are not configured")

// rewarder applies a product action to the buyer.
type rewarder struct {
	uc      *UseCase
	ctx     context.Context
	userID  string
	receipt *Receipt
}

func (r rewarder) VisitGiveRole(a domain.GiveRole) error {
	if r.uc.roles == nil {
		return errNoRoleGranter
	}
	return r.uc.roles.AddRole(r.ctx, r.userID, a.RoleID)
}

func (r rewarder) VisitGiveCurrency(a domain.GiveCurrency) error {
	cur, err := r.uc.currencies.Get(a.CurrencyID)
	if err != nil {
		return err
	}
	balance, err := r.uc.accounts.AddBalance(r.ctx, r.userID, cur, a.Amount)
	if err != nil {
		return err
	}
	r.receipt.Credited = &domain.CurrencyBalance{Item: cur, Amount: balance}
	return nil
}
