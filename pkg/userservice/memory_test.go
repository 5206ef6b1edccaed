package userservice

import (
	"context"
	"testing"
)

func TestMemory_GroupOfUnassigned(t *testing.T) {
	m := NewMemory(nil)
	group, err := m.GroupOf(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "" {
		t.Fatalf("expected empty group for unassigned user, got %q", group)
	}
}

func TestMemory_SeededInitial(t *testing.T) {
	m := NewMemory(map[string]string{"alice": "privileged"})
	group, err := m.GroupOf(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "privileged" {
		t.Fatalf("expected privileged, got %q", group)
	}
}

func TestMemory_AssignThenGroupOf(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()
	if err := m.Assign(ctx, "bob", "leechers"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	group, err := m.GroupOf(ctx, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "leechers" {
		t.Fatalf("expected leechers, got %q", group)
	}
}

func TestMemory_ReassignReplacesGroup(t *testing.T) {
	m := NewMemory(map[string]string{"carol": "default"})
	ctx := context.Background()
	if err := m.Assign(ctx, "carol", "privileged"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	group, err := m.GroupOf(ctx, "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if group != "privileged" {
		t.Fatalf("expected privileged after reassignment, got %q", group)
	}
}
