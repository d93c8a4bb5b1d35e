package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// StopFunc releases one component during shutdown.
type StopFunc func(ctx context.Context) error

type component struct {
	name string
	stop StopFunc
}

// Manager starts the long-running tasks of the bot and stops its components in reverse
// registration order. The first task failure or termination signal cancels the run.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
	cancel     context.CancelCauseFunc
	tasks      sync.WaitGroup
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Context derives the run context. Cancel it through Listen, Go failures or Stop.
func (m *Manager) Context(parent context.Context) context.Context {
	ctx, cancel := context.WithCancelCause(parent)
	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	return ctx
}

// Register adds a component to stop on shutdown.
func (m *Manager) Register(name string, stop StopFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, stop: stop})
}

// Go runs a blocking task. A task returning an error ends the run.
func (m *Manager) Go(name string, task func() error) {
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		if err := task(); err != nil {
			m.logger.Error("task failed", zap.String("task", name), zap.Error(err))
			m.Stop(err)
		}
	}()
}

// Stop cancels the run context with cause.
func (m *Manager) Stop(cause error) {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel(cause)
	}
}

// Listen cancels the run on SIGINT or SIGTERM.
func (m *Manager) Listen() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		m.Stop(errors.New("signal: " + sig.String()))
	}()
}

// Shutdown stops every component within the configured timeout, newest first, then
// waits for the tasks to return.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	components := m.components
	m.components = nil
	m.mu.Unlock()

	var result error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.stop(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", c.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", c.name))
	}

	done := make(chan struct{})
	go func() {
		m.tasks.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		result = errors.Join(result, errors.New("lifecycle: tasks did not return before the shutdown timeout"))
	}
	return result
}
