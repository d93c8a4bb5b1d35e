package buffer

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "audit.db"), "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreDeliversByPriorityThenAge(t *testing.T) {
	store := openTestStore(t)
	base := time.Now()
	items := []Item{
		{ID: "late", ChannelID: "c", Content: "balance 2", Timestamp: base.Add(2 * time.Second)},
		{ID: "buy", ChannelID: "c", Content: "purchase", Priority: PriorityPurchase, Timestamp: base.Add(3 * time.Second)},
		{ID: "early", ChannelID: "c", Content: "balance 1", Timestamp: base},
	}
	for _, item := range items {
		if err := store.Enqueue(item); err != nil {
			t.Fatalf("enqueue %s: %v", item.ID, err)
		}
	}

	batch, err := store.GetBatch(10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	var order []string
	for _, item := range batch {
		order = append(order, item.ID)
	}
	if len(order) != 3 || order[0] != "buy" || order[1] != "early" || order[2] != "late" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestStoreRejectsItemWithoutChannel(t *testing.T) {
	store := openTestStore(t)
	if err := store.Enqueue(Item{Content: "x"}); err == nil {
		t.Fatal("expected an error for an item without channel")
	}
}

func TestStoreRequeueAndRemove(t *testing.T) {
	store := openTestStore(t)
	base := time.Now().Add(-time.Minute)
	for _, id := range []string{"a", "b"} {
		if err := store.Enqueue(Item{ID: id, ChannelID: "c", Timestamp: base}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		base = base.Add(time.Second)
	}

	batch, _ := store.GetBatch(1)
	if len(batch) != 1 || batch[0].ID != "a" {
		t.Fatalf("unexpected head %+v", batch)
	}
	head := batch[0]
	head.Retries++
	if err := store.Requeue(head); err != nil {
		t.Fatalf("requeue: %v", err)
	}
	if size, _ := store.Size(); size != 2 {
		t.Fatalf("requeue must not duplicate, size %d", size)
	}

	batch, _ = store.GetBatch(0)
	if len(batch) != 2 || batch[0].ID != "b" || batch[1].ID != "a" || batch[1].Retries != 1 {
		t.Fatalf("requeued item should move to the back, got %+v", batch)
	}

	if err := store.Remove(batch[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(Item{ID: "a"}); err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	if size, _ := store.Size(); size != 0 {
		t.Fatalf("expected empty buffer, size %d", size)
	}
}

func TestStoreCleanup(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	_ = store.Enqueue(Item{ID: "old", ChannelID: "c", Timestamp: now.Add(-48 * time.Hour)})
	_ = store.Enqueue(Item{ID: "new", ChannelID: "c", Timestamp: now})

	removed, err := store.Cleanup(now.Add(-24 * time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("cleanup removed %d, err %v", removed, err)
	}
	batch, _ := store.GetBatch(10)
	if len(batch) != 1 || batch[0].ID != "new" {
		t.Fatalf("unexpected remaining items %+v", batch)
	}
}

func TestNilStoreIsClosed(t *testing.T) {
	var store *Store
	if _, err := store.Size(); err == nil {
		t.Fatal("nil store should report a closed database")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("closing a nil store: %v", err)
	}
}
