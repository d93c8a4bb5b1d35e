package monitor

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Gateway is the part of the Discord client the monitor probes.
type Gateway interface {
	IsOnline() bool
	Latency() time.Duration
}

// BufferSizer reports how many audit lines wait for delivery.
type BufferSizer interface {
	Size() (int, error)
}

// SessionCounter reports the number of live interactive menus.
type SessionCounter interface {
	Len() int
}

type Monitor struct {
	gateway  Gateway
	buffer   BufferSizer
	sessions SessionCounter
	started  time.Time

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(gateway Gateway, buf BufferSizer, sessions SessionCounter, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		gateway:  gateway,
		buffer:   buf,
		sessions: sessions,
		started:  time.Now(),
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports the gateway state of the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Gateway
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes every dependency once.
func (m *Monitor) Refresh() {
	bufferOK, bufferSize := m.checkBuffer()
	online, latency := m.checkGateway()
	status := Status{
		Gateway:    online,
		LatencyMS:  latency.Milliseconds(),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		Sessions:   m.countSessions(),
		Uptime:     time.Since(m.started).Round(time.Second).String(),
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Gateway != status.Gateway {
		m.logger.Info("gateway state changed", zap.Bool("online", status.Gateway))
	}
}

func (m *Monitor) checkGateway() (bool, time.Duration) {
	if m.gateway == nil {
		return false, 0
	}
	return m.gateway.IsOnline(), m.gateway.Latency()
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}

func (m *Monitor) countSessions() int {
	if m.sessions == nil {
		return 0
	}
	return m.sessions.Len()
}
