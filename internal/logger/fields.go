package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across the scheduler,
// its collaborators, and the management API. Use these keys
// consistently so log aggregation and querying doesn't have to
// reconcile ad-hoc key names between packages.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Scheduling domain
	// ========================================================================
	KeyUsername    = "username"      // Peer username
	KeyFilename    = "filename"      // Upload filename/content identifier
	KeyGroup       = "group"         // Scheduling group name
	KeyPriority    = "priority"      // Group priority (lower admits first)
	KeyStrategy    = "strategy"      // Ordering discipline: fifo, round_robin
	KeySlots       = "slots"         // Configured or used slot count
	KeyUsedSlots   = "used_slots"    // Currently occupied slots in a group
	KeyGlobalSlots = "global_slots"  // Process-wide concurrency cap
	KeyQueueWait   = "queue_wait_ms" // Time between ready and admitted, in milliseconds
	KeyPosition    = "position"      // Estimated queue position

	// ========================================================================
	// API & auth
	// ========================================================================
	KeyOperation  = "operation"   // HTTP handler or scheduler operation name
	KeyMethod     = "method"      // HTTP method
	KeyPath       = "path"        // HTTP request path
	KeyStatusCode = "status_code" // HTTP response status code
	KeySubject    = "subject"     // JWT subject (authenticated peer or operator)

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeySource     = "source"      // Config source: file, s3, cache-fallback
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Username returns a slog.Attr for a peer username
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Filename returns a slog.Attr for an upload filename
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Group returns a slog.Attr for a scheduling group name
func Group(name string) slog.Attr {
	return slog.String(KeyGroup, name)
}

// Priority returns a slog.Attr for a group's priority
func Priority(p int) slog.Attr {
	return slog.Int(KeyPriority, p)
}

// Strategy returns a slog.Attr for an ordering strategy name
func Strategy(name string) slog.Attr {
	return slog.String(KeyStrategy, name)
}

// Slots returns a slog.Attr for a slot count
func Slots(n int) slog.Attr {
	return slog.Int(KeySlots, n)
}

// UsedSlots returns a slog.Attr for a group's currently used slots
func UsedSlots(n int) slog.Attr {
	return slog.Int(KeyUsedSlots, n)
}

// GlobalSlots returns a slog.Attr for the process-wide slot cap
func GlobalSlots(n int) slog.Attr {
	return slog.Int(KeyGlobalSlots, n)
}

// QueueWaitMs returns a slog.Attr for a queue wait duration in milliseconds
func QueueWaitMs(ms float64) slog.Attr {
	return slog.Float64(KeyQueueWait, ms)
}

// Position returns a slog.Attr for an estimated queue position
func Position(p int) slog.Attr {
	return slog.Int(KeyPosition, p)
}

// Operation returns a slog.Attr for an operation or handler name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Method returns a slog.Attr for an HTTP method
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path returns a slog.Attr for an HTTP request path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// StatusCode returns a slog.Attr for an HTTP status code
func StatusCode(code int) slog.Attr {
	return slog.Int(KeyStatusCode, code)
}

// Subject returns a slog.Attr for a JWT subject
func Subject(sub string) slog.Attr {
	return slog.String(KeySubject, sub)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error. Returns an empty attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Source returns a slog.Attr for a configuration source identifier
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}
