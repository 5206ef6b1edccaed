package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// staticUserService is a minimal, test-local UserService stub backed
// by a map guarded by a mutex so Configure/Assign races in tests
// don't trip the race detector.
type staticUserService struct {
	mu     sync.RWMutex
	groups map[string]string
}

func newStaticUserService(assignments map[string]string) *staticUserService {
	copied := make(map[string]string, len(assignments))
	for k, v := range assignments {
		copied[k] = v
	}
	return &staticUserService{groups: copied}
}

func (s *staticUserService) GroupOf(_ context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.groups[username], nil
}

func (s *staticUserService) assign(username, group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[username] = group
}

// fakeClock hands out strictly increasing timestamps so tests that
// assert ordering (enqueued_at, ready_at) are not at the mercy of the
// real clock's resolution.
type fakeClock struct {
	mu   sync.Mutex
	next time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{next: time.Unix(0, 0)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(time.Millisecond)
	return t
}

func newTestScheduler(users UserService) *Scheduler {
	return New(users, WithClock(newFakeClock().now))
}

func mustConfigure(t *testing.T, s *Scheduler, opts groups.Options) {
	t.Helper()
	if err := s.Configure(context.Background(), opts); err != nil {
		t.Fatalf("Configure: %v", err)
	}
}

func awaitResolved(t *testing.T, f *Future) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(time.Second):
		t.Fatal("future did not resolve")
	}
}

func assertPending(t *testing.T, f *Future) {
	t.Helper()
	select {
	case <-f.done:
		t.Fatal("future resolved but should still be pending")
	case <-time.After(20 * time.Millisecond):
	}
}

// Scenario A — single slot, FIFO across users.
func TestScenarioA_SingleSlotFIFO(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default", "bob": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 1, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()

	s.Enqueue(ctx, "alice", "f1")
	s.Enqueue(ctx, "bob", "f2")

	fa, err := s.AwaitStart(ctx, "alice", "f1")
	if err != nil {
		t.Fatal(err)
	}
	fb, err := s.AwaitStart(ctx, "bob", "f2")
	if err != nil {
		t.Fatal(err)
	}

	awaitResolved(t, fa)
	assertPending(t, fb)

	if err := s.Complete(ctx, "alice", "f1"); err != nil {
		t.Fatal(err)
	}
	awaitResolved(t, fb)
}

// Scenario B — priority wins over arrival order.
func TestScenarioB_PriorityWins(t *testing.T) {
	users := newStaticUserService(map[string]string{
		"bob": "default", "carol": "privileged", "dan": "default",
	})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 2,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 2, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()

	s.Enqueue(ctx, "bob", "f1")
	fb1, _ := s.AwaitStart(ctx, "bob", "f1")
	awaitResolved(t, fb1)

	s.Enqueue(ctx, "carol", "f2")
	fc2, _ := s.AwaitStart(ctx, "carol", "f2")
	awaitResolved(t, fc2)

	if err := s.Complete(ctx, "bob", "f1"); err != nil {
		t.Fatal(err)
	}

	// Both new uploads are enqueued (but not yet "ready") before
	// either AwaitStart runs, so the Admission Loop pass triggered by
	// carol's AwaitStart sees only carol's upload as ready and admits
	// it into the still-unsaturated privileged group. Only once the
	// global cap is exhausted does dan's later AwaitStart find no
	// capacity left, even though dan's request reached `default`
	// first — reproducing spec.md's "priority wins over arrival
	// order" scenario deterministically.
	s.Enqueue(ctx, "dan", "f3")
	s.Enqueue(ctx, "carol", "f4")

	fc4, _ := s.AwaitStart(ctx, "carol", "f4")
	awaitResolved(t, fc4)

	fd3, _ := s.AwaitStart(ctx, "dan", "f3")
	assertPending(t, fd3)
}

// Scenario C — RoundRobin fairness interleaves users by ready_at.
func TestScenarioC_RoundRobinFairness(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default", "bob": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.RoundRobin},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 1, Strategy: groups.RoundRobin},
	})
	ctx := context.Background()

	// bob becomes ready between alice's f1 and f2 so that, once f1
	// completes, RoundRobin (smallest ready_at wins) releases g1
	// ahead of f2 — spec.md's "bob is interleaved because he became
	// ready before alice's f2 did".
	s.Enqueue(ctx, "alice", "f1")
	f1, _ := s.AwaitStart(ctx, "alice", "f1")
	awaitResolved(t, f1)

	s.Enqueue(ctx, "alice", "f2")

	s.Enqueue(ctx, "bob", "g1")
	g1, _ := s.AwaitStart(ctx, "bob", "g1")

	f2, _ := s.AwaitStart(ctx, "alice", "f2")

	s.Enqueue(ctx, "alice", "f3")
	f3, _ := s.AwaitStart(ctx, "alice", "f3")

	assertPending(t, f2)
	assertPending(t, g1)
	assertPending(t, f3)

	if err := s.Complete(ctx, "alice", "f1"); err != nil {
		t.Fatal(err)
	}
	awaitResolved(t, g1)
	assertPending(t, f2)

	if err := s.Complete(ctx, "bob", "g1"); err != nil {
		t.Fatal(err)
	}
	awaitResolved(t, f2)
	assertPending(t, f3)
}

// Scenario D — reconfiguration preserves in-flight accounting.
func TestScenarioD_ReconfigurationPreservesAccounting(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default", "bob": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()

	s.Enqueue(ctx, "alice", "f1")
	fa, _ := s.AwaitStart(ctx, "alice", "f1")
	awaitResolved(t, fa)

	mustConfigure(t, s, groups.Options{
		GlobalSlots: 2,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 2, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})

	s.Enqueue(ctx, "bob", "g1")
	fb, _ := s.AwaitStart(ctx, "bob", "g1")
	awaitResolved(t, fb)

	s.mu.Lock()
	used := s.reg.groups["default"].usedSlots
	s.mu.Unlock()
	if used != 2 {
		t.Fatalf("expected used_slots=2 while both in flight, got %d", used)
	}

	if err := s.Complete(ctx, "alice", "f1"); err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	used = s.reg.groups["default"].usedSlots
	s.mu.Unlock()
	if used != 1 {
		t.Fatalf("expected used_slots=1 after one Complete, got %d", used)
	}
}

// Scenario E — a group disappearing must not panic or decrement a
// surviving group.
func TestScenarioE_GroupDisappears(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "experimental", "bob": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 2,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
		UserDefined: map[string]groups.Spec{
			"experimental": {Name: "experimental", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		},
	})
	ctx := context.Background()

	s.Enqueue(ctx, "alice", "f1")
	fa, _ := s.AwaitStart(ctx, "alice", "f1")
	awaitResolved(t, fa)

	mustConfigure(t, s, groups.Options{
		GlobalSlots: 2,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})

	if err := s.Complete(ctx, "alice", "f1"); err != nil {
		t.Fatalf("Complete after group removal must not error: %v", err)
	}

	s.Enqueue(ctx, "bob", "g1")
	fb, err := s.AwaitStart(ctx, "bob", "g1")
	if err != nil {
		t.Fatal(err)
	}
	awaitResolved(t, fb)
}

// Scenario F — FIFO position estimate.
func TestScenarioF_PositionEstimateFIFO(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default", "bob": "default", "carol": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 0,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 0, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()

	s.Enqueue(ctx, "alice", "f1")
	s.Enqueue(ctx, "bob", "g1")
	s.Enqueue(ctx, "alice", "f2")
	s.Enqueue(ctx, "carol", "h1")

	pos, err := s.EstimatePositionForUpload(ctx, "alice", "f2")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 2 {
		t.Fatalf("EstimatePosition(alice, f2) = %d, want 2", pos)
	}

	pos, err = s.EstimatePositionForUpload(ctx, "carol", "h1")
	if err != nil {
		t.Fatal(err)
	}
	if pos != 3 {
		t.Fatalf("EstimatePosition(carol, h1) = %d, want 3", pos)
	}
}

// Boundary: max_slots = 0 releases nothing.
func TestBoundary_ZeroGlobalSlots(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 0,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 0, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()
	s.Enqueue(ctx, "alice", "f1")
	f, err := s.AwaitStart(ctx, "alice", "f1")
	if err != nil {
		t.Fatal(err)
	}
	assertPending(t, f)
}

// Boundary: Complete for an unknown pinned group must not panic.
func TestBoundary_CompleteUnknownPinnedGroupDoesNotPanic(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()
	s.Enqueue(ctx, "alice", "f1")
	f, _ := s.AwaitStart(ctx, "alice", "f1")
	awaitResolved(t, f)

	s.mu.Lock()
	u := s.reg.find("alice", "f1")
	u.PinnedGroup = "nonexistent"
	s.mu.Unlock()

	if err := s.Complete(ctx, "alice", "f1"); err != nil {
		t.Fatalf("Complete must not error on unknown pinned group: %v", err)
	}
}

func TestAwaitStart_NotEnqueued(t *testing.T) {
	users := newStaticUserService(nil)
	s := newTestScheduler(users)
	_, err := s.AwaitStart(context.Background(), "alice", "ghost")
	if err == nil {
		t.Fatal("expected ErrNotEnqueued")
	}
}

func TestAwaitStart_Twice(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()
	s.Enqueue(ctx, "alice", "f1")
	if _, err := s.AwaitStart(ctx, "alice", "f1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AwaitStart(ctx, "alice", "f1"); err == nil {
		t.Fatal("expected ErrAlreadyReady on second AwaitStart")
	}
}

func TestAwaitStart_ContextCancelDoesNotJumpQueue(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default", "bob": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()

	s.Enqueue(ctx, "alice", "f1")
	fa, _ := s.AwaitStart(ctx, "alice", "f1")
	awaitResolved(t, fa)

	s.Enqueue(ctx, "bob", "g1")
	fb, _ := s.AwaitStart(ctx, "bob", "g1")

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := fb.Wait(cancelCtx); err == nil {
		t.Fatal("expected ctx.Err() from a cancelled wait")
	}

	// bob's upload still occupies its request; completing alice's
	// transfer must release bob, proving cancellation did not remove
	// bob from the queue.
	if err := s.Complete(ctx, "alice", "f1"); err != nil {
		t.Fatal(err)
	}
	awaitResolved(t, fb)
}

func TestConfigure_Idempotent(t *testing.T) {
	users := newStaticUserService(nil)
	s := newTestScheduler(users)
	opts := groups.Options{
		GlobalSlots: 4,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 2, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 2, Strategy: groups.RoundRobin},
	}
	mustConfigure(t, s, opts)

	s.mu.Lock()
	hashBefore := s.reg.lastOptionsHash
	s.mu.Unlock()

	mustConfigure(t, s, opts)

	s.mu.Lock()
	hashAfter := s.reg.lastOptionsHash
	s.mu.Unlock()
	if hashBefore != hashAfter {
		t.Fatal("idempotent Configure changed the options hash")
	}
}

func TestConfigure_RejectsReservedName(t *testing.T) {
	s := newTestScheduler(newStaticUserService(nil))
	err := s.Configure(context.Background(), groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: groups.Privileged, Priority: 1, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 1, Strategy: groups.FirstInFirstOut},
	})
	if err == nil {
		t.Fatal("expected misconfiguration error for reserved name collision")
	}
}

func TestConfigure_RejectsPriorityZeroCollision(t *testing.T) {
	s := newTestScheduler(newStaticUserService(nil))
	err := s.Configure(context.Background(), groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 0, Slots: 1, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 1, Strategy: groups.FirstInFirstOut},
	})
	if err == nil {
		t.Fatal("expected misconfiguration error for priority-0 collision")
	}
}

func TestInvariant_UsedSlotsNeverExceedsMax(t *testing.T) {
	users := newStaticUserService(map[string]string{"alice": "default", "bob": "default", "carol": "default"})
	s := newTestScheduler(users)
	mustConfigure(t, s, groups.Options{
		GlobalSlots: 1,
		Default:     groups.Spec{Name: "default", Priority: 1, Slots: 5, Strategy: groups.FirstInFirstOut},
		Leechers:    groups.Spec{Name: "leechers", Priority: 2, Slots: 0, Strategy: groups.FirstInFirstOut},
	})
	ctx := context.Background()
	for _, u := range []string{"alice", "bob", "carol"} {
		s.Enqueue(ctx, u, "f")
		if _, err := s.AwaitStart(ctx, u, "f"); err != nil {
			t.Fatal(err)
		}
	}
	s.mu.Lock()
	total := s.reg.usedSlotsTotal()
	max := s.reg.maxSlots
	s.mu.Unlock()
	if total > max {
		t.Fatalf("invariant I1 violated: used=%d max=%d", total, max)
	}
}

func TestInvariant_CompletionSignaledAtMostOnce(t *testing.T) {
	u := &Upload{completion: newCompletion()}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.completion.signal()
		}()
	}
	wg.Wait()
	select {
	case <-u.completion.ch:
	default:
		t.Fatal("completion channel never closed")
	}
}
