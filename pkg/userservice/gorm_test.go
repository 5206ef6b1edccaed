package userservice

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(Config{
		Type:       DatabaseTypeSQLite,
		SQLitePath: filepath.Join(dir, "userservice.db"),
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestStore_GroupOfUnassignedReturnsEmpty(t *testing.T) {
	store := newTestStore(t)
	group, err := store.GroupOf(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "" {
		t.Fatalf("expected empty group, got %q", group)
	}
}

func TestStore_AssignCreatesRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.Assign(ctx, "bob", "leechers"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	group, err := store.GroupOf(ctx, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "leechers" {
		t.Fatalf("expected leechers, got %q", group)
	}
}

func TestStore_AssignTwiceUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.Assign(ctx, "carol", "default"); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if err := store.Assign(ctx, "carol", "privileged"); err != nil {
		t.Fatalf("second assign: %v", err)
	}
	group, err := store.GroupOf(ctx, "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "privileged" {
		t.Fatalf("expected privileged after reassignment, got %q", group)
	}

	var count int64
	if err := store.db.Model(&PeerAssignment{}).Where("username = ?", "carol").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one row for carol, got %d", count)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "userservice.db")
	ctx := context.Background()

	first, err := NewStore(Config{Type: DatabaseTypeSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := first.Assign(ctx, "dan", "leechers"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	second, err := NewStore(Config{Type: DatabaseTypeSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("reopen NewStore: %v", err)
	}
	group, err := second.GroupOf(ctx, "dan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "leechers" {
		t.Fatalf("expected leechers to survive reopen, got %q", group)
	}
}
