package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/repository"
)

type currencyDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Currencies is the currency collection backed by currencies.json.
type Currencies struct {
	*collection[domain.Currency]
}

func newCurrencies(dir string) *Currencies {
	return &Currencies{newCollection(
		"currencies",
		document{path: docPath(dir, "currencies.json")},
		func(c *domain.Currency) any {
			return currencyDTO{ID: c.ID, Name: c.Name, Emoji: c.Emoji}
		},
		nil,
	)}
}

func (c *Currencies) load() error {
	data, err := c.doc.read()
	if err != nil {
		return err
	}
	keys, raws, err := decodeOrdered(data)
	if err != nil {
		return fmt.Errorf("currencies.json: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range keys {
		var dto currencyDTO
		if err := json.Unmarshal(raws[id], &dto); err != nil {
			return fmt.Errorf("currencies.json %q: %w", id, err)
		}
		c.insertLocked(id, &domain.Currency{ID: id, Name: dto.Name, Emoji: dto.Emoji})
	}
	return nil
}

func (c *Currencies) List() []*domain.Currency {
	var out []*domain.Currency
	c.read(func() { out = c.listLocked() })
	return out
}

func (c *Currencies) Get(id string) (*domain.Currency, error) {
	var (
		cur *domain.Currency
		ok  bool
	)
	c.read(func() { cur, ok = c.getLocked(id) })
	if !ok {
		return nil, domain.ErrCurrencyNotFound
	}
	return cur, nil
}

func (c *Currencies) lookup(id string) (*domain.Currency, bool) {
	cur, err := c.Get(id)
	return cur, err == nil
}

// FindByName matches the exact, case-sensitive name.
func (c *Currencies) FindByName(name string) (*domain.Currency, bool) {
	var found *domain.Currency
	c.read(func() { found = c.findByNameLocked(name) })
	return found, found != nil
}

func (c *Currencies) findByNameLocked(name string) *domain.Currency {
	for _, id := range c.order {
		if cur := c.items[id]; cur.Name == name {
			return cur
		}
	}
	return nil
}

func (c *Currencies) Create(ctx context.Context, name, emoji string) (*domain.Currency, error) {
	name, err := domain.CleanName("currency name", name, domain.CurrencyNameMax)
	if err != nil {
		return nil, err
	}
	cur := &domain.Currency{ID: uuid.NewString(), Name: name, Emoji: strings.TrimSpace(emoji)}
	err = c.write(ctx, func() error {
		if c.findByNameLocked(name) != nil {
			return domain.ErrCurrencyExists
		}
		c.insertLocked(cur.ID, cur)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (c *Currencies) Update(ctx context.Context, id string, patch domain.CurrencyPatch) error {
	var name string
	if patch.Name != nil {
		cleaned, err := domain.CleanName("currency name", *patch.Name, domain.CurrencyNameMax)
		if err != nil {
			return err
		}
		name = cleaned
	}
	return c.write(ctx, func() error {
		cur, ok := c.getLocked(id)
		if !ok {
			return domain.ErrCurrencyNotFound
		}
		if patch.Name != nil {
			if other := c.findByNameLocked(name); other != nil && other.ID != id {
				return domain.ErrCurrencyExists
			}
			cur.Name = name
		}
		if patch.Emoji != nil {
			cur.Emoji = strings.TrimSpace(*patch.Emoji)
		}
		return nil
	})
}

// Remove deletes the currency. Stripping it from accounts is the caller's job.
func (c *Currencies) Remove(ctx context.Context, id string) error {
	return c.write(ctx, func() error {
		if !c.deleteLocked(id) {
			return domain.ErrCurrencyNotFound
		}
		return nil
	})
}

var _ repository.CurrencyRepository = (*Currencies)(nil)
