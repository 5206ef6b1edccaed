package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fileswarm/fileswarm/pkg/userservice"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Config{
		Type:       userservice.DatabaseTypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendInsertsRow(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	record := DecisionRecord{
		ID:         "d1",
		Username:   "alice",
		Filename:   "f1",
		Group:      "default",
		Strategy:   "FirstInFirstOut",
		EnqueuedAt: now,
		ReadyAt:    now,
		StartedAt:  now.Add(time.Second),
		QueueWait:  time.Second,
		RecordedAt: now.Add(time.Second),
	}
	if err := store.Append(context.Background(), record); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM decisions WHERE id = ?`, "d1").Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestStore_AppendIsAppendOnly(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		record := DecisionRecord{
			ID:         uuidFor(i),
			Username:   "bob",
			Filename:   "f",
			Group:      "default",
			Strategy:   "FirstInFirstOut",
			EnqueuedAt: now,
			ReadyAt:    now,
			StartedAt:  now,
			RecordedAt: now,
		}
		if err := store.Append(context.Background(), record); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM decisions`).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
}

func uuidFor(i int) string {
	return "00000000-0000-0000-0000-00000000000" + string(rune('0'+i))
}
