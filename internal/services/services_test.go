package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/fastygo/shopbot/domain"
	"github.com/fastygo/shopbot/internal/infrastructure/buffer"
)

type fakeMonitor struct{ online bool }

func (m *fakeMonitor) IsOnline() bool { return m.online }

type sent struct{ channel, content string }

type fakeSender struct {
	mu   sync.Mutex
	fail bool
	sent []sent
}

func (s *fakeSender) Send(_ context.Context, channelID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("gateway refused")
	}
	s.sent = append(s.sent, sent{channelID, content})
	return nil
}

type fakeSettings struct {
	channel     string
	purchaseLog bool
}

func (f fakeSettings) Ref(id string) (string, bool) {
	if id == domain.SettingLogChannel && f.channel != "" {
		return f.channel, true
	}
	return "", false
}

func (f fakeSettings) Bool(id string, fallback bool) bool {
	if id == domain.SettingPurchaseLog {
		return f.purchaseLog
	}
	return fallback
}

func newProcessor(t *testing.T, mon *fakeMonitor, sender *fakeSender, maxRetries int) (*AuditProcessor, *buffer.Store) {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "audit.db"), "")
	if err != nil {
		t.Fatalf("open buffer: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewAuditProcessor(store, mon, sender, zaptest.NewLogger(t), ProcessorConfig{MaxRetries: maxRetries}), store
}

func TestDeliverSendsWhenOnline(t *testing.T) {
	sender := &fakeSender{}
	ap, _ := newProcessor(t, &fakeMonitor{online: true}, sender, 3)

	if err := ap.Deliver(context.Background(), buffer.Item{ChannelID: "c1", Content: "hello"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(sender.sent) != 1 || ap.Size() != 0 {
		t.Fatalf("sent %v, buffered %d", sender.sent, ap.Size())
	}
}

func TestDeliverBuffersWhileOfflineAndDrainsLater(t *testing.T) {
	mon := &fakeMonitor{}
	sender := &fakeSender{}
	ap, _ := newProcessor(t, mon, sender, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := ap.Deliver(ctx, buffer.Item{ChannelID: "c1", Content: fmt.Sprintf("line %d", i)}); err != nil {
			t.Fatalf("deliver: %v", err)
		}
	}
	if ap.Size() != 3 || len(sender.sent) != 0 {
		t.Fatalf("expected 3 buffered lines, got %d (sent %d)", ap.Size(), len(sender.sent))
	}

	if err := ap.Drain(ctx); err != nil {
		t.Fatalf("offline drain: %v", err)
	}
	if ap.Size() != 3 {
		t.Fatal("offline drain must not touch the buffer")
	}

	mon.online = true
	if err := ap.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if ap.Size() != 0 || len(sender.sent) != 3 || sender.sent[0].content != "line 0" {
		t.Fatalf("unexpected drain result: size %d sent %v", ap.Size(), sender.sent)
	}
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	mon := &fakeMonitor{}
	sender := &fakeSender{fail: true}
	ap, store := newProcessor(t, mon, sender, 2)
	ctx := context.Background()
	_ = ap.Deliver(ctx, buffer.Item{ChannelID: "c1", Content: "x"})
	mon.online = true

	if err := ap.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	batch, _ := store.GetBatch(1)
	if len(batch) != 1 || batch[0].Retries != 1 {
		t.Fatalf("expected one retried line, got %+v", batch)
	}

	_ = ap.Drain(ctx)
	if ap.Size() != 0 {
		t.Fatal("line should be dropped after max retries")
	}
}

func TestAuditLogRouting(t *testing.T) {
	cases := []struct {
		name     string
		settings fakeSettings
		kind     domain.AuditKind
		wantSent bool
	}{
		{name: "no log channel", settings: fakeSettings{}, kind: domain.AuditBalance},
		{name: "balance line", settings: fakeSettings{channel: "c1"}, kind: domain.AuditBalance, wantSent: true},
		{name: "purchase logged", settings: fakeSettings{channel: "c1", purchaseLog: true}, kind: domain.AuditPurchase, wantSent: true},
		{name: "purchase logging off", settings: fakeSettings{channel: "c1"}, kind: domain.AuditPurchase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &fakeSender{}
			ap, _ := newProcessor(t, &fakeMonitor{online: true}, sender, 3)
			log := NewAuditLog(ap, tc.settings, zaptest.NewLogger(t))

			err := log.Record(context.Background(), domain.AuditEntry{
				ID: "e1", Kind: tc.kind, ActorID: "u1", Message: "<@u1> did a thing", Timestamp: time.Now(),
			})
			if err != nil {
				t.Fatalf("record: %v", err)
			}
			if got := len(sender.sent) == 1; got != tc.wantSent {
				t.Fatalf("sent=%v, want %v", got, tc.wantSent)
			}
			if tc.wantSent && sender.sent[0].channel != "c1" {
				t.Fatalf("sent to %q", sender.sent[0].channel)
			}
		})
	}
}

type fakeSnapshotter struct {
	dir     string
	n       int
	flushed int
}

func (f *fakeSnapshotter) Flush() bool {
	f.flushed++
	return true
}

func (f *fakeSnapshotter) Backup(dest string) (string, error) {
	f.n++
	path := filepath.Join(dest, fmt.Sprintf("20260101-0000%02d", f.n))
	return path, os.MkdirAll(path, 0o755)
}

func TestBackupsRunPrunesOldSnapshots(t *testing.T) {
	dir := t.TempDir()
	snap := &fakeSnapshotter{}
	b := NewBackups(snap, BackupConfig{Dir: dir, Keep: 2}, zaptest.NewLogger(t))

	for i := 0; i < 4; i++ {
		if _, err := b.Run(); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 || entries[0].Name() != "20260101-000003" || entries[1].Name() != "20260101-000004" {
		t.Fatalf("unexpected snapshots %v", entries)
	}
	if snap.flushed != 4 {
		t.Fatalf("each run should flush first, flushed %d", snap.flushed)
	}
}
