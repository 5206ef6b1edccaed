package audit

import (
	"context"

	"github.com/fileswarm/fileswarm/pkg/scheduler"
)

// NopAuditSink discards every decision. It exists so callers can wire
// an explicit, named no-op rather than leaving the scheduler's
// WithAuditSink option unset, which is useful when a config flag
// toggles auditing on and off at startup.
type NopAuditSink struct{}

var _ scheduler.AuditSink = NopAuditSink{}

func (NopAuditSink) RecordDecision(context.Context, scheduler.Decision) {}
