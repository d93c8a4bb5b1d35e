package jsonstore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/fastygo/shopbot/domain"
)

// collection is the ordered in-memory map shared by every store. Entities are kept by
// pointer: callers receive the stored object, so in-place edits are visible everywhere.
type collection[T any] struct {
	name string
	doc  document
	dto  func(*T) any
	// keep captures the owned state of an entity and returns a func putting it back in place.
	keep func(*T) func()

	mu    sync.RWMutex
	order []string
	items map[string]*T
}

func newCollection[T any](name string, doc document, dto func(*T) any, keep func(*T) func()) *collection[T] {
	if keep == nil {
		keep = keepValue[T]
	}
	return &collection[T]{
		name:  name,
		doc:   doc,
		dto:   dto,
		keep:  keep,
		items: map[string]*T{},
	}
}

// keepValue restores a flat entity by copying its fields back.
func keepValue[T any](item *T) func() {
	saved := *item
	return func() { *item = saved }
}

func (c *collection[T]) read(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn()
}

// write runs fn under the write lock and persists the whole collection. When fn or the
// save fails, memory is rolled back to the state before fn, so a later flush cannot
// commit a change the caller was told had failed.
func (c *collection[T]) write(ctx context.Context, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	undo := c.checkpointLocked()
	if err := fn(); err != nil {
		undo()
		return err
	}
	if err := c.persistLocked(); err != nil {
		undo()
		return err
	}
	return nil
}

// checkpointLocked records the order, the membership and every entity in place. Entities
// keep their pointer identity on rollback since other collections reference them.
func (c *collection[T]) checkpointLocked() func() {
	order := slices.Clone(c.order)
	items := maps.Clone(c.items)
	restores := make([]func(), 0, len(items))
	for _, item := range items {
		restores = append(restores, c.keep(item))
	}
	return func() {
		c.order, c.items = order, items
		for _, restore := range restores {
			restore()
		}
	}
}

func (c *collection[T]) persistLocked() error {
	values := make(map[string]any, len(c.items))
	for id, item := range c.items {
		values[id] = c.dto(item)
	}
	if err := c.doc.write(c.order, values); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to save "+c.name, err)
	}
	return nil
}

func (c *collection[T]) getLocked(id string) (*T, bool) {
	item, ok := c.items[id]
	return item, ok
}

func (c *collection[T]) listLocked() []*T {
	out := make([]*T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *collection[T]) insertLocked(id string, item *T) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

func (c *collection[T]) deleteLocked(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
	return true
}

// moveLocked reinserts id at index, keeping the relative order of every other entry.
func (c *collection[T]) moveLocked(id string, index int, notFound error) error {
	from := slices.Index(c.order, id)
	if from < 0 {
		return notFound
	}
	if index < 0 || index >= len(c.order) {
		return domain.ErrInvalidPosition
	}
	c.order = slices.Delete(c.order, from, from+1)
	c.order = slices.Insert(c.order, index, id)
	return nil
}

// Len returns the number of entries.
func (c *collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Save persists the collection, logging through report instead of returning the error.
func (c *collection[T]) Save(report func(name string, err error)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.persistLocked(); err != nil {
		if report != nil {
			report(c.name, err)
		}
		return false
	}
	return true
}
