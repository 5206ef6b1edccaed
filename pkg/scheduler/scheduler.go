// Package scheduler implements the upload admission and dispatch
// core for a FileSwarm node: a multi-level priority scheduler that
// decides which pending upload may begin transferring bytes, enforces
// a global concurrency cap and per-group caps, and applies a
// per-group ordering strategy (first-in-first-out or round-robin
// fairness across users). It also answers "where am I in the queue?"
// without simulating a release.
//
// The scheduler owns no sockets, no disk, and no subprocess; it is a
// single in-memory component protected by one mutex, consumed by a
// transfer engine through three narrow operations (Enqueue,
// AwaitStart, Complete) and reconfigured by an edge-triggered
// configuration snapshot (Configure).
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/groups"
)

// UserService resolves a peer username to its current group name. The
// scheduler treats it as an opaque lookup, consulted fresh on every
// Admission Loop pass so that a user reclassified between Enqueue and
// release is scheduled under their current group (spec.md §4.2).
type UserService interface {
	GroupOf(ctx context.Context, username string) (string, error)
}

// Decision describes one Admission Loop release, reported to an
// AuditSink and to the metrics recorder. It is not used internally by
// the scheduler beyond being constructed for these two hooks.
type Decision struct {
	Username   string
	Filename   string
	Group      string
	Strategy   groups.Strategy
	EnqueuedAt time.Time
	ReadyAt    time.Time
	StartedAt  time.Time
}

// QueueWait is the duration the released upload waited between
// becoming ready and being released.
func (d Decision) QueueWait() time.Duration {
	return d.StartedAt.Sub(d.ReadyAt)
}

// AuditSink records admission decisions for operational visibility.
// It must not block or fail the Admission Loop; implementations
// should treat RecordDecision as best-effort (see pkg/audit).
type AuditSink interface {
	RecordDecision(ctx context.Context, d Decision)
}

// nopAuditSink is the default AuditSink: it does nothing.
type nopAuditSink struct{}

func (nopAuditSink) RecordDecision(context.Context, Decision) {}

// MetricsRecorder receives scheduler accounting updates. All methods
// must be safe to call under the scheduler's lock-release path; the
// default recorder does nothing.
type MetricsRecorder interface {
	SetUsedSlots(group string, used int)
	SetGroupCapacity(group string, capacity int)
	SetReadyUploads(group string, ready int)
	IncAdmissions(group string, strategy groups.Strategy)
	ObserveQueueWait(group string, wait time.Duration)
}

type nopMetricsRecorder struct{}

func (nopMetricsRecorder) SetUsedSlots(string, int)               {}
func (nopMetricsRecorder) SetGroupCapacity(string, int)           {}
func (nopMetricsRecorder) SetReadyUploads(string, int)            {}
func (nopMetricsRecorder) IncAdmissions(string, groups.Strategy)  {}
func (nopMetricsRecorder) ObserveQueueWait(string, time.Duration) {}

// Scheduler is the Upload Scheduler core described by spec.md. It
// must be constructed explicitly with its collaborators rather than
// located statically (spec.md §9's "global mutable state" note), to
// ease testing.
type Scheduler struct {
	userService UserService
	audit       AuditSink
	metrics     MetricsRecorder
	now         func() time.Time

	mu  sync.Mutex
	reg *registry
}

// New constructs a Scheduler with no groups configured; callers must
// call Configure at least once before any upload can be released
// (spec.md's boundary case: an empty group table behaves like
// max_slots = 0).
func New(userService UserService, opts ...Option) *Scheduler {
	s := &Scheduler{
		userService: userService,
		audit:       nopAuditSink{},
		metrics:     nopMetricsRecorder{},
		now:         time.Now,
		reg:         newRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures optional Scheduler collaborators.
type Option func(*Scheduler)

// WithAuditSink installs a non-default AuditSink. A nil sink leaves
// the default nopAuditSink in place, so callers that conditionally
// build a sink (e.g. only when auditing is enabled) don't need to
// guard the call themselves.
func WithAuditSink(sink AuditSink) Option {
	return func(s *Scheduler) {
		if sink != nil {
			s.audit = sink
		}
	}
}

// WithMetricsRecorder installs a non-default MetricsRecorder. A nil
// recorder leaves the default nopMetricsRecorder in place, the same
// as WithAuditSink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the scheduler's time source. Intended for
// tests that need deterministic enqueued_at/ready_at ordering beyond
// what the monotonic clock's resolution guarantees.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Enqueue registers a new upload for username/filename and runs the
// Admission Loop. It cannot fail under normal conditions (spec.md
// §4.3) — a duplicate (username, filename) pair is a distinct queue
// entry, not an error.
func (s *Scheduler) Enqueue(ctx context.Context, username, filename string) {
	ctx, span := telemetry.StartSchedulerSpan(ctx, telemetry.SpanSchedulerEnqueue, username, "", telemetry.Filename(filename))
	defer span.End()

	s.mu.Lock()
	s.reg.add(username, filename, s.now)
	queueDepth := len(s.reg.uploads[username])
	release := s.runAdmissionLoop(ctx)
	s.mu.Unlock()

	logger.DebugCtx(ctx, "upload enqueued",
		"username", username,
		"filename", filename,
		"queue_depth", queueDepth,
		"group", release.decision.Group)
	release.fire(ctx, s)
}

// AwaitStart marks username/filename ready and returns a Future that
// resolves when the Admission Loop releases it, or earlier with
// ctx.Err() if ctx is cancelled first. Calling AwaitStart twice for
// the same upload is a caller error (ErrAlreadyReady); the Admission
// Loop still runs so accounting stays consistent.
func (s *Scheduler) AwaitStart(ctx context.Context, username, filename string) (*Future, error) {
	ctx, span := telemetry.StartSchedulerSpan(ctx, telemetry.SpanSchedulerPosition, username, "", telemetry.Filename(filename))
	defer span.End()

	s.mu.Lock()
	u := s.reg.find(username, filename)
	if u == nil {
		s.mu.Unlock()
		err := newNotEnqueuedError("await_start", username, filename)
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "await_start on unknown upload", "username", username, "filename", filename)
		return nil, err
	}
	if u.started() || !u.ReadyAt.IsZero() {
		s.mu.Unlock()
		err := &SchedulerError{Op: "await_start", Username: username, Filename: filename, Err: ErrAlreadyReady}
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "await_start called twice", "username", username, "filename", filename)
		return nil, err
	}
	u.ReadyAt = s.now()
	future := &Future{done: u.completion.ch}
	release := s.runAdmissionLoop(ctx)
	s.mu.Unlock()

	logger.DebugCtx(ctx, "upload ready",
		"username", username,
		"filename", filename,
		"group", release.decision.Group)
	release.fire(ctx, s)
	return future, nil
}

// Complete removes the upload from the Registry, returns its slot to
// the pinned group if that group still exists, and runs the Admission
// Loop. Complete must be called exactly once per successful
// AwaitStart regardless of transfer outcome; the scheduler does not
// distinguish success, failure, or cancellation.
func (s *Scheduler) Complete(ctx context.Context, username, filename string) error {
	ctx, span := telemetry.StartSchedulerSpan(ctx, telemetry.SpanSchedulerRelease, username, "", telemetry.Filename(filename))
	defer span.End()

	s.mu.Lock()
	u := s.reg.find(username, filename)
	if u == nil {
		s.mu.Unlock()
		err := newNotEnqueuedError("complete", username, filename)
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "complete on unknown upload", "username", username, "filename", filename)
		return err
	}
	pinnedGroup := u.PinnedGroup
	s.reg.remove(u)
	if pinnedGroup != "" {
		if g, ok := s.reg.groups[pinnedGroup]; ok && g.usedSlots > 0 {
			g.usedSlots--
			s.metrics.SetUsedSlots(g.name, g.usedSlots)
		}
	}
	release := s.runAdmissionLoop(ctx)
	s.mu.Unlock()

	logger.InfoCtx(ctx, "upload completed",
		"username", username,
		"filename", filename,
		"group", pinnedGroup)
	release.fire(ctx, s)
	return nil
}

// IsSlotAvailable looks up username's current group and reports
// whether it exists and has spare capacity. It is a pure,
// side-effect-free query taken under the lock. Per spec.md §6's
// operation table, IsSlotAvailable has no error outcome: a
// UserService lookup failure is treated the same as "no group",
// i.e. false.
func (s *Scheduler) IsSlotAvailable(ctx context.Context, username string) (bool, error) {
	groupName, err := s.userService.GroupOf(ctx, username)
	if err != nil {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.reg.groups[groupName]
	if !ok {
		return false, nil
	}
	return g.hasCapacity(), nil
}
