package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/repository"
)

type actionDTO struct {
	Type       domain.ActionKind `json:"type"`
	RoleID     string            `json:"roleId,omitempty"`
	CurrencyID string            `json:"currencyId,omitempty"`
	Amount     *number           `json:"amount,omitempty"`
}

type productDTO struct {
	ID          string          `json:"id"`
	ShopID      string          `json:"shopId"`
	Name        string          `json:"name"`
	Emoji       string          `json:"emoji"`
	Description string          `json:"description"`
	Price       number     `json:"price"`
	Action      *actionDTO `json:"action,omitempty"`
}

// productList keeps the products of a shop ordered inside a JSON object keyed by id.
type productList []productDTO

func (l productList) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(l))
	values := make(map[string]any, len(l))
	for _, p := range l {
		keys = append(keys, p.ID)
		values[p.ID] = p
	}
	return encodeOrdered(keys, values)
}

func (l *productList) UnmarshalJSON(data []byte) error {
	keys, raws, err := decodeOrdered(data)
	if err != nil {
		return err
	}
	out := make(productList, 0, len(keys))
	for _, id := range keys {
		var p productDTO
		if err := json.Unmarshal(raws[id], &p); err != nil {
			return fmt.Errorf("product %q: %w", id, err)
		}
		p.ID = id
		out = append(out, p)
	}
	*l = out
	return nil
}

type shopDTO struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Emoji         string         `json:"emoji"`
	Description   string         `json:"description"`
	CurrencyID    string         `json:"currencyId"`
	DiscountCodes map[string]int `json:"discountCodes"`
	ReservedTo    string         `json:"reservedTo,omitempty"`
	Products      productList    `json:"products"`
}

func toActionDTO(a domain.Action) *actionDTO {
	switch act := a.(type) {
	case domain.GiveRole:
		return &actionDTO{Type: domain.ActionGiveRole, RoleID: act.RoleID}
	case domain.GiveCurrency:
		amount := number(act.Amount)
		return &actionDTO{Type: domain.ActionGiveCurrency, CurrencyID: act.CurrencyID, Amount: &amount}
	default:
		return nil
	}
}

func toShopDTO(s *domain.Shop) any {
	products := make(productList, 0, len(s.Products))
	for _, p := range s.Products {
		products = append(products, productDTO{
			ID:          p.ID,
			ShopID:      p.ShopID,
			Name:        p.Name,
			Emoji:       p.Emoji,
			Description: p.Description,
			Price:       number(p.Price),
			Action:      toActionDTO(p.Action),
		})
	}
	codes := s.DiscountCodes
	if codes == nil {
		codes = map[string]int{}
	}
	currencyID := ""
	if s.Currency != nil {
		currencyID = s.Currency.ID
	}
	return shopDTO{
		ID:            s.ID,
		Name:          s.Name,
		Emoji:         s.Emoji,
		Description:   s.Description,
		CurrencyID:    currencyID,
		DiscountCodes: codes,
		ReservedTo:    s.ReservedTo,
		Products:      products,
	}
}

// keepShop saves the shop together with its codes and the fields of every product.
func keepShop(s *domain.Shop) func() {
	saved := *s
	codes := maps.Clone(s.DiscountCodes)
	products := slices.Clone(s.Products)
	values := make([]domain.Product, len(products))
	for i, p := range products {
		values[i] = *p
	}
	return func() {
		*s = saved
		s.DiscountCodes, s.Products = codes, products
		for i, p := range products {
			*p = values[i]
		}
	}
}

// Shops is the ordered shop collection backed by shops.json.
type Shops struct {
	*collection[domain.Shop]
	currencies *Currencies
}

func newShops(dir string, currencies *Currencies) *Shops {
	return &Shops{
		collection: newCollection("shops", document{path: docPath(dir, "shops.json")}, toShopDTO, keepShop),
		currencies: currencies,
	}
}

// load skips shops whose currency no longer exists, and products whose action cannot be
// restored, such as a give-currency reward in a removed currency.
func (s *Shops) load() (droppedShops, droppedProducts int, err error) {
	data, err := s.doc.read()
	if err != nil {
		return 0, 0, err
	}
	keys, raws, err := decodeOrdered(data)
	if err != nil {
		return 0, 0, fmt.Errorf("shops.json: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range keys {
		var dto shopDTO
		if err := json.Unmarshal(raws[id], &dto); err != nil {
			return droppedShops, droppedProducts, fmt.Errorf("shops.json %q: %w", id, err)
		}
		cur, ok := s.currencies.lookup(dto.CurrencyID)
		if !ok {
			droppedShops++
			continue
		}
		shop := &domain.Shop{
			ID:            id,
			Name:          dto.Name,
			Emoji:         dto.Emoji,
			Description:   dto.Description,
			Currency:      cur,
			DiscountCodes: dto.DiscountCodes,
			ReservedTo:    dto.ReservedTo,
		}
		if shop.DiscountCodes == nil {
			shop.DiscountCodes = map[string]int{}
		}
		for _, p := range dto.Products {
			action, ok := s.fromActionDTO(p.Action)
			if !ok {
				droppedProducts++
				continue
			}
			shop.Products = append(shop.Products, &domain.Product{
				ID:          p.ID,
				ShopID:      id,
				Name:        p.Name,
				Emoji:       p.Emoji,
				Description: p.Description,
				Price:       domain.RoundAmount(decimal.Decimal(p.Price)),
				Action:      action,
			})
		}
		s.insertLocked(id, shop)
	}
	return droppedShops, droppedProducts, nil
}

// fromActionDTO reports false when the stored action is malformed or points at a
// currency that no longer exists.
func (s *Shops) fromActionDTO(a *actionDTO) (domain.Action, bool) {
	if a == nil {
		return nil, true
	}
	switch a.Type {
	case domain.ActionGiveRole:
		if a.RoleID == "" {
			return nil, false
		}
		return domain.GiveRole{RoleID: a.RoleID}, true
	case domain.ActionGiveCurrency:
		if _, ok := s.currencies.lookup(a.CurrencyID); !ok || a.Amount == nil {
			return nil, false
		}
		return domain.GiveCurrency{CurrencyID: a.CurrencyID, Amount: domain.RoundAmount(decimal.Decimal(*a.Amount))}, true
	default:
		return nil, false
	}
}

func (s *Shops) List() []*domain.Shop {
	var out []*domain.Shop
	s.read(func() { out = s.listLocked() })
	return out
}

func (s *Shops) Get(id string) (*domain.Shop, error) {
	var (
		shop *domain.Shop
		ok   bool
	)
	s.read(func() { shop, ok = s.getLocked(id) })
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	return shop, nil
}

func (s *Shops) findByNameLocked(name string) *domain.Shop {
	for _, id := range s.order {
		if shop := s.items[id]; shop.Name == name {
			return shop
		}
	}
	return nil
}

func (s *Shops) Create(ctx context.Context, fields domain.ShopFields) (*domain.Shop, error) {
	name, err := domain.CleanName("shop name", fields.Name, domain.ShopNameMax)
	if err != nil {
		return nil, err
	}
	desc, err := domain.CleanDescription(fields.Description)
	if err != nil {
		return nil, err
	}
	cur, err := s.currencies.Get(fields.CurrencyID)
	if err != nil {
		return nil, err
	}
	shop := &domain.Shop{
		ID:            uuid.NewString(),
		Name:          name,
		Emoji:         strings.TrimSpace(fields.Emoji),
		Description:   desc,
		Currency:      cur,
		DiscountCodes: map[string]int{},
		ReservedTo:    fields.ReservedTo,
	}
	err = s.write(ctx, func() error {
		if s.findByNameLocked(name) != nil {
			return domain.ErrShopExists
		}
		s.insertLocked(shop.ID, shop)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *Shops) Update(ctx context.Context, id string, patch domain.ShopPatch) error {
	var (
		name string
		desc string
		cur  *domain.Currency
		err  error
	)
	if patch.Name != nil {
		if name, err = domain.CleanName("shop name", *patch.Name, domain.ShopNameMax); err != nil {
			return err
		}
	}
	if patch.Description != nil {
		if desc, err = domain.CleanDescription(*patch.Description); err != nil {
			return err
		}
	}
	if patch.CurrencyID != nil {
		if cur, err = s.currencies.Get(*patch.CurrencyID); err != nil {
			return err
		}
	}
	return s.write(ctx, func() error {
		shop, ok := s.getLocked(id)
		if !ok {
			return domain.ErrShopNotFound
		}
		if patch.Name != nil {
			if other := s.findByNameLocked(name); other != nil && other.ID != id {
				return domain.ErrShopExists
			}
			shop.Name = name
		}
		if patch.Description != nil {
			shop.Description = desc
		}
		if patch.Emoji != nil {
			shop.Emoji = strings.TrimSpace(*patch.Emoji)
		}
		if cur != nil {
			shop.Currency = cur
		}
		if patch.ReservedTo != nil {
			shop.ReservedTo = *patch.ReservedTo
		}
		return nil
	})
}

// Remove deletes the shop together with its products and discount codes.
func (s *Shops) Remove(ctx context.Context, id string) error {
	return s.write(ctx, func() error {
		if !s.deleteLocked(id) {
			return domain.ErrShopNotFound
		}
		return nil
	})
}

// Reorder moves the shop to index, bounded to [0, Len()-1].
func (s *Shops) Reorder(ctx context.Context, id string, index int) error {
	return s.write(ctx, func() error {
		return s.moveLocked(id, index, domain.ErrShopNotFound)
	})
}

// UsesCurrency reports whether a shop is priced in currencyID or one of its products gives it.
func (s *Shops) UsesCurrency(currencyID string) bool {
	used := false
	s.read(func() {
		for _, shop := range s.items {
			if shop.Currency != nil && shop.Currency.ID == currencyID {
				used = true
				return
			}
			for _, p := range shop.Products {
				if act, ok := p.Action.(domain.GiveCurrency); ok && act.CurrencyID == currencyID {
					used = true
					return
				}
			}
		}
	})
	return used
}

func (s *Shops) checkAction(a domain.Action) error {
	switch act := a.(type) {
	case nil:
		return nil
	case domain.GiveRole:
		if act.RoleID == "" {
			return domain.Invalidf("a role is required for this action")
		}
	case domain.GiveCurrency:
		if _, err := s.currencies.Get(act.CurrencyID); err != nil {
			return err
		}
		if act.Amount.IsNegative() {
			return domain.Invalidf("amount must not be negative")
		}
	}
	return nil
}

func (s *Shops) AddProduct(ctx context.Context, shopID string, fields domain.ProductFields) (*domain.Product, error) {
	name, err := domain.CleanName("product name", fields.Name, domain.ProductNameMax)
	if err != nil {
		return nil, err
	}
	desc, err := domain.CleanDescription(fields.Description)
	if err != nil {
		return nil, err
	}
	if fields.Price.IsNegative() {
		return nil, domain.Invalidf("the price must not be negative")
	}
	if err := s.checkAction(fields.Action); err != nil {
		return nil, err
	}
	action := fields.Action
	if act, ok := action.(domain.GiveCurrency); ok {
		act.Amount = domain.RoundAmount(act.Amount)
		action = act
	}
	product := &domain.Product{
		ID:          uuid.NewString(),
		ShopID:      shopID,
		Name:        name,
		Emoji:       strings.TrimSpace(fields.Emoji),
		Description: desc,
		Price:       domain.RoundAmount(fields.Price),
		Action:      action,
	}
	err = s.write(ctx, func() error {
		shop, ok := s.getLocked(shopID)
		if !ok {
			return domain.ErrShopNotFound
		}
		for _, p := range shop.Products {
			if p.Name == name {
				return domain.ErrProductExists
			}
		}
		shop.Products = append(shop.Products, product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Shops) UpdateProduct(ctx context.Context, shopID, productID string, patch domain.ProductPatch) error {
	var (
		name string
		desc string
		err  error
	)
	if patch.Name != nil {
		if name, err = domain.CleanName("product name", *patch.Name, domain.ProductNameMax); err != nil {
			return err
		}
	}
	if patch.Description != nil {
		if desc, err = domain.CleanDescription(*patch.Description); err != nil {
			return err
		}
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		return domain.Invalidf("the price must not be negative")
	}
	return s.write(ctx, func() error {
		shop, ok := s.getLocked(shopID)
		if !ok {
			return domain.ErrShopNotFound
		}
		product, ok := shop.Product(productID)
		if !ok {
			return domain.ErrProductNotFound
		}
		if patch.Name != nil {
			for _, p := range shop.Products {
				if p.Name == name && p.ID != productID {
					return domain.ErrProductExists
				}
			}
			product.Name = name
		}
		if patch.Description != nil {
			product.Description = desc
		}
		if patch.Emoji != nil {
			product.Emoji = strings.TrimSpace(*patch.Emoji)
		}
		if patch.Price != nil {
			product.Price = domain.RoundAmount(*patch.Price)
		}
		return nil
	})
}

func (s *Shops) RemoveProduct(ctx context.Context, shopID, productID string) error {
	return s.write(ctx, func() error {
		shop, ok := s.getLocked(shopID)
		if !ok {
			return domain.ErrShopNotFound
		}
		i := slices.IndexFunc(shop.Products, func(p *domain.Product) bool { return p.ID == productID })
		if i < 0 {
			return domain.ErrProductNotFound
		}
		shop.Products = slices.Delete(shop.Products, i, i+1)
		return nil
	})
}

func (s *Shops) FindProduct(shopID, productID string) (*domain.Product, error) {
	var (
		product *domain.Product
		err     error
	)
	s.read(func() {
		shop, ok := s.getLocked(shopID)
		if !ok {
			err = domain.ErrShopNotFound
			return
		}
		if product, ok = shop.Product(productID); !ok {
			err = domain.ErrProductNotFound
		}
	})
	return product, err
}

func (s *Shops) CreateDiscountCode(ctx context.Context, shopID, code string, percent int) error {
	code, err := domain.CheckDiscount(code, percent)
	if err != nil {
		return err
	}
	return s.write(ctx, func() error {
		shop, ok := s.getLocked(shopID)
		if !ok {
			return domain.ErrShopNotFound
		}
		if shop.DiscountCodes == nil {
			shop.DiscountCodes = map[string]int{}
		}
		shop.DiscountCodes[code] = percent
		return nil
	})
}

func (s *Shops) RemoveDiscountCode(ctx context.Context, shopID, code string) error {
	return s.write(ctx, func() error {
		shop, ok := s.getLocked(shopID)
		if !ok {
			return domain.ErrShopNotFound
		}
		if _, ok := shop.DiscountCodes[code]; !ok {
			return domain.ErrDiscountCodeNotFound
		}
		delete(shop.DiscountCodes, code)
		return nil
	})
}

var _ repository.ShopRepository = (*Shops)(nil)
