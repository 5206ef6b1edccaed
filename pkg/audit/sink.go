// Package audit implements the append-only admission decision ledger
// described as an explicit supplement to spec.md's persistence
// non-goal: the scheduler core still owns no database, but every
// Admission Loop release can be durably recorded through the narrow
// AuditSink interface it already depends on.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fileswarm/fileswarm/pkg/scheduler"
)

// appender is the subset of *Store that Sink needs, narrowed so Sink
// can be tested against a fake without a real database.
type appender interface {
	Append(ctx context.Context, r DecisionRecord) error
}

// Sink is a bounded, worker-pool-backed scheduler.AuditSink. It never
// blocks the Admission Loop: RecordDecision enqueues onto an internal
// channel and returns immediately, dropping the decision (and logging
// the drop) if the channel is full. Grounded on
// pkg/payload/transfer.TransferQueue's bounded-channel worker pool and
// its Stop(timeout)-with-drain shutdown shape.
type Sink struct {
	store appender
	log   *slog.Logger

	queue   chan DecisionRecord
	workers int

	wg        sync.WaitGroup
	stopCh    chan struct{}
	stoppedCh chan struct{}

	mu      sync.Mutex
	started bool
	dropped int
}

var _ scheduler.AuditSink = (*Sink)(nil)

// SinkConfig controls Sink's queue depth and worker count.
type SinkConfig struct {
	QueueSize int
	Workers   int
}

// DefaultSinkConfig mirrors the teacher's transfer queue defaults.
func DefaultSinkConfig() SinkConfig {
	return SinkConfig{QueueSize: 1000, Workers: 4}
}

// NewSink builds a Sink writing through store. Start must be called
// before decisions are durably written; RecordDecision calls before
// Start are dropped.
func NewSink(store *Store, cfg SinkConfig, log *slog.Logger) *Sink {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sink{
		store:     store,
		log:       log,
		queue:     make(chan DecisionRecord, cfg.QueueSize),
		workers:   cfg.Workers,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start launches the worker pool.
func (s *Sink) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.log.Info("starting audit sink", "workers", s.workers)
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	go func() {
		s.wg.Wait()
		close(s.stoppedCh)
	}()
}

// Stop signals workers to drain the queue and exit, waiting up to
// timeout for them to finish.
func (s *Sink) Stop(timeout time.Duration) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	close(s.stopCh)
	select {
	case <-s.stoppedCh:
		s.log.Info("audit sink stopped gracefully")
	case <-time.After(timeout):
		s.log.Warn("audit sink stop timed out", "pending", len(s.queue))
	}
}

// RecordDecision implements scheduler.AuditSink. It never blocks.
func (s *Sink) RecordDecision(_ context.Context, d scheduler.Decision) {
	record := DecisionRecord{
		ID:         uuid.New().String(),
		Username:   d.Username,
		Filename:   d.Filename,
		Group:      d.Group,
		Strategy:   d.Strategy.String(),
		EnqueuedAt: d.EnqueuedAt,
		ReadyAt:    d.ReadyAt,
		StartedAt:  d.StartedAt,
		QueueWait:  d.QueueWait(),
		RecordedAt: time.Now(),
	}

	select {
	case s.queue <- record:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
		s.log.Warn("audit sink queue full, dropping decision",
			"username", d.Username, "filename", d.Filename)
	}
}

// Dropped returns the number of decisions dropped due to a full
// queue, for tests and operator diagnostics.
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Sink) worker() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			s.drain()
			return
		case record, ok := <-s.queue:
			if !ok {
				return
			}
			s.write(record)
		}
	}
}

func (s *Sink) drain() {
	for {
		select {
		case record, ok := <-s.queue:
			if !ok {
				return
			}
			s.write(record)
		default:
			return
		}
	}
}

func (s *Sink) write(record DecisionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Append(ctx, record); err != nil {
		s.log.Error("audit sink write failed", "username", record.Username, "error", err)
	}
}
