package scheduler

import (
	"context"
	"testing"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

func testOptions() groups.Options {
	return groups.Options{
		GlobalSlots: 10,
		Default:     groups.Spec{Name: "default", Priority: 10, Slots: 4, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 20, Slots: 2, Strategy: groups.RoundRobin},
	}
}

func TestStatus_ReportsGlobalAndPerGroupAccounting(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, testOptions())

	ctx := context.Background()
	s.Enqueue(ctx, "alice", "movie.mkv")
	if _, err := s.AwaitStart(ctx, "alice", "movie.mkv"); err != nil {
		t.Fatalf("AwaitStart: %v", err)
	}

	snap := s.Status(ctx)
	if snap.GlobalSlots != 10 {
		t.Fatalf("GlobalSlots = %d, want 10", snap.GlobalSlots)
	}
	if snap.UsedSlots != 1 {
		t.Fatalf("UsedSlots = %d, want 1", snap.UsedSlots)
	}

	var defaultGroup *GroupStatus
	for i := range snap.Groups {
		if snap.Groups[i].Name == "default" {
			defaultGroup = &snap.Groups[i]
		}
	}
	if defaultGroup == nil {
		t.Fatal("expected a default group in status")
	}
	if defaultGroup.UsedSlots != 1 {
		t.Fatalf("default.UsedSlots = %d, want 1", defaultGroup.UsedSlots)
	}
}

func TestStatus_CountsReadyUploadsAwaitingAdmission(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "leechers", "bob": "leechers"})
	s := newTestScheduler(users)
	opts := testOptions()
	opts.Leechers.Slots = 1
	mustConfigure(t, s, opts)

	ctx := context.Background()
	s.Enqueue(ctx, "alice", "a.iso")
	s.Enqueue(ctx, "bob", "b.iso")
	if _, err := s.AwaitStart(ctx, "alice", "a.iso"); err != nil {
		t.Fatalf("AwaitStart alice: %v", err)
	}
	if _, err := s.AwaitStart(ctx, "bob", "b.iso"); err != nil {
		t.Fatalf("AwaitStart bob: %v", err)
	}

	snap := s.Status(ctx)
	var leechers GroupStatus
	for _, g := range snap.Groups {
		if g.Name == "leechers" {
			leechers = g
		}
	}
	// One slot, so one upload is released (used) and the other still ready.
	if leechers.UsedSlots != 1 {
		t.Fatalf("leechers.UsedSlots = %d, want 1", leechers.UsedSlots)
	}
	if leechers.Ready != 1 {
		t.Fatalf("leechers.Ready = %d, want 1", leechers.Ready)
	}
}

func TestStatus_OrdersGroupsByPriorityThenName(t *testing.T) {
	users := newStaticUserService(nil)
	s := newTestScheduler(users)
	mustConfigure(t, s, testOptions())

	snap := s.Status(context.Background())
	if len(snap.Groups) < 2 {
		t.Fatalf("expected at least 2 groups, got %d", len(snap.Groups))
	}
	for i := 1; i < len(snap.Groups); i++ {
		prev, cur := snap.Groups[i-1], snap.Groups[i]
		if prev.Priority > cur.Priority {
			t.Fatalf("groups out of priority order: %+v before %+v", prev, cur)
		}
	}
}
