package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for scheduler, API, and config-source spans.
// These follow OpenTelemetry semantic conventions where applicable.
const (
	// ========================================================================
	// Peer and upload attributes
	// ========================================================================
	AttrUsername = "peer.username"   // Peer username
	AttrFilename = "upload.filename" // Upload filename/content identifier

	// ========================================================================
	// Scheduler attributes
	// ========================================================================
	AttrGroup       = "scheduler.group"         // Scheduling group name
	AttrPriority    = "scheduler.priority"      // Group priority (lower admits first)
	AttrStrategy    = "scheduler.strategy"      // Ordering discipline: fifo, round_robin
	AttrSlots       = "scheduler.slots"         // Configured slot count
	AttrUsedSlots   = "scheduler.used_slots"    // Currently occupied slots in a group
	AttrGlobalSlots = "scheduler.global_slots"  // Process-wide concurrency cap
	AttrQueueWaitMs = "scheduler.queue_wait_ms" // Time between ready and admitted, in milliseconds
	AttrPosition    = "scheduler.position"      // Estimated queue position

	// ========================================================================
	// API / auth attributes
	// ========================================================================
	AttrHTTPMethod     = "http.method"      // HTTP method
	AttrHTTPPath       = "http.path"        // HTTP request path
	AttrHTTPStatusCode = "http.status_code" // HTTP response status code
	AttrAuthSubject    = "auth.subject"     // JWT subject (authenticated peer or operator)

	// ========================================================================
	// Config source attributes
	// ========================================================================
	AttrConfigSource = "config.source" // file, s3, cache-fallback
	AttrCacheHit     = "cache.hit"     // Snapshot cache hit indicator
	AttrBucket       = "storage.bucket"
	AttrStorageKey   = "storage.key"
)

// Span names for scheduler and API operations.
const (
	// ========================================================================
	// Scheduler spans
	// ========================================================================
	SpanSchedulerEnqueue      = "scheduler.enqueue"
	SpanSchedulerAdmit        = "scheduler.admit"
	SpanSchedulerRelease      = "scheduler.release"
	SpanSchedulerPosition     = "scheduler.position"
	SpanSchedulerApplyOptions = "scheduler.apply_options"

	// ========================================================================
	// API spans
	// ========================================================================
	SpanAPIRequest      = "api.request"
	SpanAPIStatus       = "api.status"
	SpanAPIAvailability = "api.availability"
	SpanAPIPosition     = "api.position"
	SpanAPIAssignGroup  = "api.assign_group"
	SpanAPIConfigReload = "api.config_reload"

	// ========================================================================
	// Config source spans
	// ========================================================================
	SpanConfigSnapshot = "configsource.snapshot"
	SpanConfigWatch    = "configsource.watch"
	SpanCacheLoad      = "configsource.cache_load"
	SpanCacheStore     = "configsource.cache_store"

	// ========================================================================
	// Persistence spans
	// ========================================================================
	SpanUserServiceGroupOf = "userservice.group_of"
	SpanUserServiceAssign  = "userservice.assign"
	SpanAuditAppend        = "audit.append"
)

// Username returns an attribute for a peer username.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Filename returns an attribute for an upload filename.
func Filename(name string) attribute.KeyValue {
	return attribute.String(AttrFilename, name)
}

// Group returns an attribute for a scheduling group name.
func Group(name string) attribute.KeyValue {
	return attribute.String(AttrGroup, name)
}

// Priority returns an attribute for a group's priority.
func Priority(p int) attribute.KeyValue {
	return attribute.Int(AttrPriority, p)
}

// Strategy returns an attribute for an ordering strategy name.
func Strategy(name string) attribute.KeyValue {
	return attribute.String(AttrStrategy, name)
}

// Slots returns an attribute for a slot count.
func Slots(n int) attribute.KeyValue {
	return attribute.Int(AttrSlots, n)
}

// UsedSlots returns an attribute for a group's currently used slots.
func UsedSlots(n int) attribute.KeyValue {
	return attribute.Int(AttrUsedSlots, n)
}

// GlobalSlots returns an attribute for the process-wide slot cap.
func GlobalSlots(n int) attribute.KeyValue {
	return attribute.Int(AttrGlobalSlots, n)
}

// QueueWaitMs returns an attribute for a queue wait duration in milliseconds.
func QueueWaitMs(ms float64) attribute.KeyValue {
	return attribute.Float64(AttrQueueWaitMs, ms)
}

// Position returns an attribute for an estimated queue position.
func Position(p int) attribute.KeyValue {
	return attribute.Int(AttrPosition, p)
}

// HTTPMethod returns an attribute for an HTTP method.
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPPath returns an attribute for an HTTP request path.
func HTTPPath(path string) attribute.KeyValue {
	return attribute.String(AttrHTTPPath, path)
}

// HTTPStatusCode returns an attribute for an HTTP response status code.
func HTTPStatusCode(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatusCode, code)
}

// AuthSubject returns an attribute for the authenticated JWT subject.
func AuthSubject(sub string) attribute.KeyValue {
	return attribute.String(AttrAuthSubject, sub)
}

// ConfigSource returns an attribute for the config source identifier.
func ConfigSource(src string) attribute.KeyValue {
	return attribute.String(AttrConfigSource, src)
}

// CacheHit returns an attribute for a snapshot cache hit indicator.
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an S3 object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrStorageKey, key)
}

// StartSchedulerSpan starts a span for a scheduler operation, tagging it
// with the peer and group involved.
func StartSchedulerSpan(ctx context.Context, name, username, group string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{Username(username)}
	if group != "" {
		allAttrs = append(allAttrs, Group(group))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, name, trace.WithAttributes(allAttrs...))
}

// StartAPISpan starts a span for an HTTP handler, tagging it with the
// method and path.
func StartAPISpan(ctx context.Context, method, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		HTTPMethod(method),
		HTTPPath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, fmt.Sprintf("%s %s", method, path), trace.WithAttributes(allAttrs...))
}

// StartConfigSourceSpan starts a span for a config source operation.
func StartConfigSourceSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, name, trace.WithAttributes(attrs...))
}
