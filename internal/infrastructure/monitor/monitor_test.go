package monitor

import (
	"errors"
	"testing"
	"time"
)

type fakeGateway struct{ online bool }

func (g *fakeGateway) IsOnline() bool         { return g.online }
func (g *fakeGateway) Latency() time.Duration { return 42 * time.Millisecond }

type fakeBuffer struct {
	size int
	err  error
}

func (b fakeBuffer) Size() (int, error) { return b.size, b.err }

type fakeSessions int

func (s fakeSessions) Len() int { return int(s) }

func TestRefreshReportsDependencies(t *testing.T) {
	gw := &fakeGateway{online: true}
	m := New(gw, fakeBuffer{size: 7}, fakeSessions(3), time.Minute, nil)

	m.Refresh()
	status := m.GetStatus()
	if !m.IsOnline() || status.LatencyMS != 42 || !status.Buffer || status.BufferSize != 7 || status.Sessions != 3 {
		t.Fatalf("unexpected status %+v", status)
	}

	gw.online = false
	m.Refresh()
	if m.IsOnline() {
		t.Fatal("monitor should follow the gateway state")
	}
}

func TestRefreshWithFailingBuffer(t *testing.T) {
	m := New(nil, fakeBuffer{err: errors.New("closed")}, nil, 0, nil)
	m.Refresh()
	status := m.GetStatus()
	if status.Gateway || status.Buffer || status.Sessions != 0 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(&fakeGateway{}, nil, nil, time.Millisecond, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
