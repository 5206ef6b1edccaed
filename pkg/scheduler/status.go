package scheduler

import (
	"context"
	"sort"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

// GroupStatus is one group's live accounting, reported by Status for
// the management API's status endpoint.
type GroupStatus struct {
	Name      string
	Priority  int
	Slots     int
	Strategy  groups.Strategy
	UsedSlots int
	Ready     int
}

// StatusSnapshot is a point-in-time view of the scheduler's
// configuration and accounting.
type StatusSnapshot struct {
	GlobalSlots int
	UsedSlots   int
	Groups      []GroupStatus
}

// Status reports current global slot usage and per-group accounting,
// including how many ready uploads are currently waiting in each
// group. Ready counts are resolved the same way the Admission Loop
// resolves them (via the UserService), so a Status call made
// concurrently with Enqueue/AwaitStart/Complete reflects one
// consistent, lock-protected view but is not itself an Admission Loop
// pass — it releases nothing.
func (s *Scheduler) Status(ctx context.Context) StatusSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	readyByGroup := s.buildReadyByGroup(ctx)

	groupsOut := make([]GroupStatus, 0, len(s.reg.groups))
	for _, g := range s.reg.groups {
		groupsOut = append(groupsOut, GroupStatus{
			Name:      g.name,
			Priority:  g.priority,
			Slots:     g.slots,
			Strategy:  g.strategy,
			UsedSlots: g.usedSlots,
			Ready:     len(readyByGroup[g.name]),
		})
	}
	sort.Slice(groupsOut, func(i, j int) bool {
		if groupsOut[i].Priority != groupsOut[j].Priority {
			return groupsOut[i].Priority < groupsOut[j].Priority
		}
		return groupsOut[i].Name < groupsOut[j].Name
	})

	return StatusSnapshot{
		GlobalSlots: s.reg.maxSlots,
		UsedSlots:   s.reg.usedSlotsTotal(),
		Groups:      groupsOut,
	}
}
