// Package metrics owns the process-wide Prometheus registry and the
// scheduler.MetricsRecorder implementation that publishes the five
// gauges/counter/histogram named for the Upload Scheduler.
//
// The teacher's own pkg/metrics splits into an interface-only package
// plus a pkg/metrics/prometheus implementation registered through a
// constructor-variable indirection, to avoid an import cycle between
// domain packages (cache, s3) and their metrics. No such cycle exists
// here: pkg/scheduler already defines MetricsRecorder itself and
// never imports this package, so Recorder below implements that
// interface directly without the indirection layer.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide registry. Calling it more
// than once replaces the previous registry; existing collectors
// registered against the old one are not carried over, mirroring the
// teacher's "call once at startup" usage (metrics.InitRegistry()
// before any NewXMetrics() call).
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if
// InitRegistry has not been called.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}
