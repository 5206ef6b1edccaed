package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// completion is the one-shot signal primitive an Upload's waiter
// blocks on. It must be resolvable exactly once (invariant I3),
// safely awaitable from a goroutine distinct from the resolver, and
// must never require holding the scheduler's lock to await — the
// resolving close(c.ch) call happens after the scheduler's mutex is
// released (see admission.go), mirroring the teacher's
// signal-outside-the-lock discipline in pkg/payload/offloader.
type completion struct {
	once sync.Once
	ch   chan struct{}
}

func newCompletion() *completion {
	return &completion{ch: make(chan struct{})}
}

// signal releases the waiter. Safe to call more than once; only the
// first call has effect.
func (c *completion) signal() {
	c.once.Do(func() { close(c.ch) })
}

// Future is returned by AwaitStart. It resolves when the Admission
// Loop releases the associated Upload, or earlier with ctx.Err() if
// the caller's context is cancelled first. A context-cancelled wait
// does not remove the Upload from the queue or return its requested
// slot; the caller must still call Complete to release it.
type Future struct {
	done <-chan struct{}
}

// Wait blocks until the upload is released or ctx is done, whichever
// comes first.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Upload is a pending or active transfer, identified by the pair
// (username, filename). See spec.md §3 for the full invariant list.
type Upload struct {
	Username string
	Filename string

	EnqueuedAt time.Time
	ReadyAt    time.Time // zero until AwaitStart
	StartedAt  time.Time // zero until released

	// PinnedGroup records which group donated the slot, set together
	// with StartedAt. It is never cleared once set, even if the group
	// is later removed from configuration (spec.md §4.3).
	PinnedGroup string

	completion *completion
}

// ready reports whether this upload is waiting for admission: its
// waiter has called AwaitStart but the Admission Loop has not yet
// released it.
func (u *Upload) ready() bool {
	return !u.ReadyAt.IsZero() && u.StartedAt.IsZero()
}

// started reports whether the Admission Loop has already released
// this upload.
func (u *Upload) started() bool {
	return !u.StartedAt.IsZero()
}

// group is the scheduler's live accounting record for one scheduling
// class. Unlike groups.Spec, it carries the used_slots counter that
// must survive a Configure rebuild for any group name that persists
// (spec.md invariant I7).
type group struct {
	name      string
	priority  int
	slots     int
	strategy  groups.Strategy
	usedSlots int
}

func (g *group) hasCapacity() bool {
	return g.usedSlots < g.slots
}
