package scheduler

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/internal/telemetry"
	"github.com/fileswarm/fileswarm/pkg/groups"
)

// Configure ingests a configuration snapshot (spec.md §4.4). It is
// idempotent: if the snapshot is equivalent to the last one accepted
// (same group definitions and the same global slot count), Configure
// returns without changing any observable state. An invalid snapshot
// (bad strategy string, negative slots, a priority-0 collision with
// the privileged group) leaves the scheduler in its last-good state
// and returns ErrMisconfiguration; it never partially applies.
func (s *Scheduler) Configure(ctx context.Context, opts groups.Options) error {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSchedulerApplyOptions,
		telemetry.GlobalSlots(opts.GlobalSlots))
	defer span.End()

	specs := opts.Specs()
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			err = newMisconfigurationError(spec.Name, err)
			telemetry.RecordError(ctx, err)
			logger.WarnCtx(ctx, "configure rejected", "group", spec.Name, "error", err)
			return err
		}
	}
	if opts.GlobalSlots < 0 {
		err := newMisconfigurationError("", fmt.Errorf("negative global slot count %d", opts.GlobalSlots))
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "configure rejected", "error", err)
		return err
	}
	if err := checkDuplicateNames(specs); err != nil {
		err = newMisconfigurationError("", err)
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "configure rejected", "error", err)
		return err
	}

	hash := hashSpecs(specs)

	s.mu.Lock()
	if s.reg.haveLastOptions && hash == s.reg.lastOptionsHash && opts.GlobalSlots == s.reg.lastGlobalSlots {
		s.mu.Unlock()
		logger.DebugCtx(ctx, "configure no-op, snapshot unchanged", "global_slots", opts.GlobalSlots)
		return nil
	}

	fresh := make(map[string]*group, len(specs)+1)
	fresh[groups.Privileged] = &group{
		name:      groups.Privileged,
		priority:  0,
		slots:     opts.GlobalSlots,
		strategy:  groups.FirstInFirstOut,
		usedSlots: carryOverUsedSlots(s.reg.groups, groups.Privileged),
	}
	for _, spec := range specs {
		fresh[spec.Name] = &group{
			name:      spec.Name,
			priority:  spec.Priority,
			slots:     spec.Slots,
			strategy:  spec.Strategy,
			usedSlots: carryOverUsedSlots(s.reg.groups, spec.Name),
		}
	}

	s.reg.groups = fresh
	s.reg.maxSlots = opts.GlobalSlots
	s.reg.lastOptionsHash = hash
	s.reg.lastGlobalSlots = opts.GlobalSlots
	s.reg.haveLastOptions = true

	for _, g := range fresh {
		s.metrics.SetGroupCapacity(g.name, g.slots)
		s.metrics.SetUsedSlots(g.name, g.usedSlots)
	}

	release := s.runAdmissionLoop(ctx)
	s.mu.Unlock()

	logger.InfoCtx(ctx, "configuration applied",
		"global_slots", opts.GlobalSlots,
		"group_count", len(fresh))
	release.fire(ctx, s)
	return nil
}

// carryOverUsedSlots preserves invariant I7: a group whose name
// survives a rebuild keeps its used_slots unchanged. A group that
// disappears simply has its count dropped; in-flight uploads pinned
// to it still run to Complete, which will find no surviving group to
// credit (spec.md §4.4's "leaked" slot note).
func carryOverUsedSlots(previous map[string]*group, name string) int {
	if g, ok := previous[name]; ok {
		return g.usedSlots
	}
	return 0
}

func checkDuplicateNames(specs []groups.Spec) error {
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Name == groups.Privileged {
			return fmt.Errorf("group name %q is reserved for the privileged group", groups.Privileged)
		}
		if _, dup := seen[spec.Name]; dup {
			return fmt.Errorf("duplicate group name %q", spec.Name)
		}
		seen[spec.Name] = struct{}{}
	}
	return nil
}

// hashSpecs computes a stable hash over the group portion of an
// Options value, used as the Configurator's idempotence guard
// (spec.md §4.4 step 1). Specs() already returns a deterministic
// order (default, leechers, then user-defined sorted by name), so the
// hash is order-independent with respect to map iteration.
func hashSpecs(specs []groups.Spec) uint64 {
	h := fnv.New64a()
	for _, spec := range specs {
		fmt.Fprintf(h, "%s|%d|%d|%d;", spec.Name, spec.Priority, spec.Slots, spec.Strategy)
	}
	return h.Sum64()
}
