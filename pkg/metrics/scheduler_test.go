package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/fileswarm/fileswarm/pkg/groups"
)

func TestNewSchedulerRecorder_NilWhenDisabled(t *testing.T) {
	mu.Lock()
	registry, enabled = nil, false
	mu.Unlock()

	if rec := NewSchedulerRecorder(); rec != nil {
		t.Fatalf("expected nil recorder when registry is not initialized")
	}
}

func TestSchedulerRecorder_PublishesLabeledMetrics(t *testing.T) {
	InitRegistry()
	rec := NewSchedulerRecorder().(*SchedulerRecorder)

	rec.SetUsedSlots("default", 3)
	rec.SetGroupCapacity("default", 10)
	rec.SetReadyUploads("default", 2)
	rec.IncAdmissions("default", groups.FirstInFirstOut)
	rec.ObserveQueueWait("default", 250*time.Millisecond)

	if got := testutil.ToFloat64(rec.usedSlots.WithLabelValues("default")); got != 3 {
		t.Fatalf("expected used_slots 3, got %v", got)
	}
	if got := testutil.ToFloat64(rec.groupCapacity.WithLabelValues("default")); got != 10 {
		t.Fatalf("expected capacity 10, got %v", got)
	}
	if got := testutil.ToFloat64(rec.admissions.WithLabelValues("default", "FirstInFirstOut")); got != 1 {
		t.Fatalf("expected 1 admission, got %v", got)
	}
}
