package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fileswarm/fileswarm/pkg/groups"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
)

// SchedulerRecorder is the Prometheus-backed scheduler.MetricsRecorder,
// grounded on the teacher's pkg/metrics/prometheus/cache.go: one
// struct field per collector, all built with promauto.With(reg) so
// registration failures panic at startup instead of being silently
// swallowed.
type SchedulerRecorder struct {
	usedSlots     *prometheus.GaugeVec
	groupCapacity *prometheus.GaugeVec
	readyUploads  *prometheus.GaugeVec
	admissions    *prometheus.CounterVec
	queueWait     *prometheus.HistogramVec
}

var _ scheduler.MetricsRecorder = (*SchedulerRecorder)(nil)

// NewSchedulerRecorder returns a nil scheduler.MetricsRecorder if
// InitRegistry has not been called, matching the teacher's
// NewCacheMetrics nil-on-disabled contract. The return type is the
// interface, not *SchedulerRecorder, so the nil case is a true nil
// interface value rather than a non-nil interface wrapping a nil
// pointer — scheduler.WithMetricsRecorder(nil) is then safe to call
// unconditionally.
func NewSchedulerRecorder() scheduler.MetricsRecorder {
	if !IsEnabled() {
		return nil
	}
	reg := GetRegistry()

	return &SchedulerRecorder{
		usedSlots: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fileswarm_scheduler_used_slots",
				Help: "Number of upload slots currently in use, by group.",
			},
			[]string{"group"},
		),
		groupCapacity: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fileswarm_scheduler_group_capacity",
				Help: "Configured slot capacity, by group.",
			},
			[]string{"group"},
		),
		readyUploads: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fileswarm_scheduler_ready_uploads",
				Help: "Number of uploads ready to start but not yet admitted, by group.",
			},
			[]string{"group"},
		),
		admissions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileswarm_scheduler_admissions_total",
				Help: "Total number of Admission Loop releases, by group and strategy.",
			},
			[]string{"group", "strategy"},
		),
		queueWait: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "fileswarm_scheduler_queue_wait_seconds",
				Help: "Time between an upload becoming ready and being admitted, by group.",
				Buckets: []float64{
					0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300,
				},
			},
			[]string{"group"},
		),
	}
}

func (r *SchedulerRecorder) SetUsedSlots(group string, used int) {
	r.usedSlots.WithLabelValues(group).Set(float64(used))
}

func (r *SchedulerRecorder) SetGroupCapacity(group string, capacity int) {
	r.groupCapacity.WithLabelValues(group).Set(float64(capacity))
}

func (r *SchedulerRecorder) SetReadyUploads(group string, ready int) {
	r.readyUploads.WithLabelValues(group).Set(float64(ready))
}

func (r *SchedulerRecorder) IncAdmissions(group string, strategy groups.Strategy) {
	r.admissions.WithLabelValues(group, strategy.String()).Inc()
}

func (r *SchedulerRecorder) ObserveQueueWait(group string, wait time.Duration) {
	r.queueWait.WithLabelValues(group).Observe(wait.Seconds())
}
