package scheduler

import (
	"context"
	"sort"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// admissionResult captures the outcome of one Admission Loop pass.
// Selection happens under the scheduler's lock; the resulting signal
// and audit/metrics dispatch happen after the lock is released, via
// fire, so that awaiters never have to contend with the scheduler
// mutex to observe their release (spec.md §5).
type admissionResult struct {
	released bool
	winner   *Upload
	decision Decision
}

// fire signals the winning upload's waiter and dispatches the
// decision to the audit sink and metrics recorder. It is a no-op if
// the Admission Loop pass released nothing.
func (r admissionResult) fire(ctx context.Context, s *Scheduler) {
	if !r.released {
		return
	}
	r.winner.completion.signal()
	s.metrics.IncAdmissions(r.decision.Group, r.decision.Strategy)
	s.metrics.ObserveQueueWait(r.decision.Group, r.decision.QueueWait())
	go s.audit.RecordDecision(ctx, r.decision)
}

// runAdmissionLoop is the Admission Loop described in spec.md §4.2.
// It must be called with s.mu held, and releases at most one upload
// per invocation — a burst of ready uploads drains only as fast as
// new triggering operations (Enqueue/AwaitStart/Complete/Configure)
// re-enter this function (spec.md §9's documented limitation; not
// addressed here by design).
func (s *Scheduler) runAdmissionLoop(ctx context.Context) admissionResult {
	if s.reg.usedSlotsTotal() >= s.reg.maxSlots {
		return admissionResult{}
	}

	readyByGroup := s.buildReadyByGroup(ctx)
	if len(readyByGroup) == 0 {
		return admissionResult{}
	}

	for _, g := range s.orderedGroups() {
		if !g.hasCapacity() {
			continue
		}
		bucket := readyByGroup[g.name]
		if len(bucket) == 0 {
			continue
		}

		winner := selectWinner(g.strategy, bucket)
		now := s.now()
		winner.StartedAt = now
		winner.PinnedGroup = g.name
		g.usedSlots++
		s.metrics.SetUsedSlots(g.name, g.usedSlots)

		return admissionResult{
			released: true,
			winner:   winner,
			decision: Decision{
				Username:   winner.Username,
				Filename:   winner.Filename,
				Group:      g.name,
				Strategy:   g.strategy,
				EnqueuedAt: winner.EnqueuedAt,
				ReadyAt:    winner.ReadyAt,
				StartedAt:  now,
			},
		}
	}
	return admissionResult{}
}

// buildReadyByGroup resolves, for every user with at least one ready
// upload, their current group via the UserService, and buckets their
// ready uploads under it. Users whose group no longer exists are
// silently skipped — their work waits until they are reassigned
// (spec.md §4.2 step 2).
func (s *Scheduler) buildReadyByGroup(ctx context.Context) map[string][]*Upload {
	byGroup := make(map[string][]*Upload)
	for username, list := range s.reg.uploads {
		var ready []*Upload
		for _, u := range list {
			if u.ready() {
				ready = append(ready, u)
			}
		}
		if len(ready) == 0 {
			continue
		}
		groupName, err := s.userService.GroupOf(ctx, username)
		if err != nil {
			continue
		}
		if _, ok := s.reg.groups[groupName]; !ok {
			continue
		}
		byGroup[groupName] = append(byGroup[groupName], ready...)
	}
	return byGroup
}

// orderedGroups returns the registry's groups sorted by ascending
// (priority, name) — spec.md §4.2 step 3's deterministic, policy-free
// tie-break.
func (s *Scheduler) orderedGroups() []*group {
	out := make([]*group, 0, len(s.reg.groups))
	for _, g := range s.reg.groups {
		out = append(out, g)
	}
	sortGroups(out)
	return out
}

func sortGroups(gs []*group) {
	sort.Slice(gs, func(i, j int) bool {
		if gs[i].priority != gs[j].priority {
			return gs[i].priority < gs[j].priority
		}
		return gs[i].name < gs[j].name
	})
}

// selectWinner picks the release candidate from a non-empty bucket
// per spec.md §4.2 step 3: FIFO picks smallest enqueued_at, RoundRobin
// picks smallest ready_at.
func selectWinner(strategy groups.Strategy, bucket []*Upload) *Upload {
	winner := bucket[0]
	for _, u := range bucket[1:] {
		if strategy == groups.FirstInFirstOut {
			if u.EnqueuedAt.Before(winner.EnqueuedAt) {
				winner = u
			}
		} else if u.ReadyAt.Before(winner.ReadyAt) {
			winner = u
		}
	}
	return winner
}
