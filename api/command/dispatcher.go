package command

import (
	"context"
	"sort"
	"sync"

	"github.com/fastygo/shopbot/domain"
)

// Handler serves one sub-command path.
type Handler func(ctx context.Context, inv *Invocation) error

type Dispatcher struct {
	handlers map[string]Handler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
	}
}

// Register binds handler to a path such as "shop edit name". A later registration for the
// same path replaces the earlier one.
func (d *Dispatcher) Register(path string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[path] = handler
}

// Execute runs the handler registered for inv.Path.
func (d *Dispatcher) Execute(ctx context.Context, inv *Invocation) error {
	d.mu.RLock()
	handler, ok := d.handlers[inv.Path]
	d.mu.RUnlock()
	if !ok {
		return domain.Invalidf("unknown command %q", inv.Path)
	}
	return handler(ctx, inv)
}

// Paths lists the registered paths in lexical order.
func (d *Dispatcher) Paths() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	paths := make([]string, 0, len(d.handlers))
	for p := range d.handlers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
