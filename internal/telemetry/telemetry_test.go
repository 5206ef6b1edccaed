package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "fileswarmd", cfg.ServiceName)
	assert.Equal(t, "dev", cfg.ServiceVersion)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Should be able to call shutdown without error
	err = shutdown(ctx)
	assert.NoError(t, err)

	// Should not be enabled
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	// Reset state
	tracer = nil
	enabled = false

	// Without initialization, should return no-op tracer
	tr := Tracer()
	require.NotNil(t, tr)
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Even without initialization, StartSpan should work (no-op)
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)

	// Should be able to end the span
	span.End()
}

func TestSpanFromContext(t *testing.T) {
	ctx := context.Background()

	// Should return a span even without active span
	span := SpanFromContext(ctx)
	require.NotNil(t, span)
}

func TestAddEvent(t *testing.T) {
	ctx := context.Background()

	// Should not panic with no active span
	require.NotPanics(t, func() {
		AddEvent(ctx, "test.event")
	})
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	// Should not panic with nil error
	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})

	// Should not panic with error
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Ok, "success")
	})

	require.NotPanics(t, func() {
		SetStatus(ctx, codes.Error, "failed")
	})
}

func TestSetAttributes(t *testing.T) {
	ctx := context.Background()

	// Should not panic
	require.NotPanics(t, func() {
		SetAttributes(ctx, Username("alice"))
	})
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	traceID := TraceID(ctx)
	assert.Equal(t, "", traceID)
}

func TestSpanID(t *testing.T) {
	ctx := context.Background()

	// Without active span, should return empty string
	spanID := SpanID(ctx)
	assert.Equal(t, "", spanID)
}

func TestAttributeHelpers(t *testing.T) {
	t.Run("Username", func(t *testing.T) {
		attr := Username("alice")
		assert.Equal(t, AttrUsername, string(attr.Key))
		assert.Equal(t, "alice", attr.Value.AsString())
	})

	t.Run("Filename", func(t *testing.T) {
		attr := Filename("movie.mkv")
		assert.Equal(t, AttrFilename, string(attr.Key))
		assert.Equal(t, "movie.mkv", attr.Value.AsString())
	})

	t.Run("Group", func(t *testing.T) {
		attr := Group("default")
		assert.Equal(t, AttrGroup, string(attr.Key))
		assert.Equal(t, "default", attr.Value.AsString())
	})

	t.Run("Priority", func(t *testing.T) {
		attr := Priority(5)
		assert.Equal(t, AttrPriority, string(attr.Key))
		assert.Equal(t, int64(5), attr.Value.AsInt64())
	})

	t.Run("Strategy", func(t *testing.T) {
		attr := Strategy("round_robin")
		assert.Equal(t, AttrStrategy, string(attr.Key))
		assert.Equal(t, "round_robin", attr.Value.AsString())
	})

	t.Run("Slots", func(t *testing.T) {
		attr := Slots(10)
		assert.Equal(t, AttrSlots, string(attr.Key))
		assert.Equal(t, int64(10), attr.Value.AsInt64())
	})

	t.Run("UsedSlots", func(t *testing.T) {
		attr := UsedSlots(3)
		assert.Equal(t, AttrUsedSlots, string(attr.Key))
		assert.Equal(t, int64(3), attr.Value.AsInt64())
	})

	t.Run("GlobalSlots", func(t *testing.T) {
		attr := GlobalSlots(100)
		assert.Equal(t, AttrGlobalSlots, string(attr.Key))
		assert.Equal(t, int64(100), attr.Value.AsInt64())
	})

	t.Run("QueueWaitMs", func(t *testing.T) {
		attr := QueueWaitMs(1234.5)
		assert.Equal(t, AttrQueueWaitMs, string(attr.Key))
		assert.Equal(t, 1234.5, attr.Value.AsFloat64())
	})

	t.Run("Position", func(t *testing.T) {
		attr := Position(2)
		assert.Equal(t, AttrPosition, string(attr.Key))
		assert.Equal(t, int64(2), attr.Value.AsInt64())
	})

	t.Run("HTTPMethod", func(t *testing.T) {
		attr := HTTPMethod("POST")
		assert.Equal(t, AttrHTTPMethod, string(attr.Key))
		assert.Equal(t, "POST", attr.Value.AsString())
	})

	t.Run("HTTPPath", func(t *testing.T) {
		attr := HTTPPath("/v1/status")
		assert.Equal(t, AttrHTTPPath, string(attr.Key))
		assert.Equal(t, "/v1/status", attr.Value.AsString())
	})

	t.Run("HTTPStatusCode", func(t *testing.T) {
		attr := HTTPStatusCode(200)
		assert.Equal(t, AttrHTTPStatusCode, string(attr.Key))
		assert.Equal(t, int64(200), attr.Value.AsInt64())
	})

	t.Run("AuthSubject", func(t *testing.T) {
		attr := AuthSubject("alice")
		assert.Equal(t, AttrAuthSubject, string(attr.Key))
		assert.Equal(t, "alice", attr.Value.AsString())
	})

	t.Run("ConfigSource", func(t *testing.T) {
		attr := ConfigSource("file")
		assert.Equal(t, AttrConfigSource, string(attr.Key))
		assert.Equal(t, "file", attr.Value.AsString())
	})

	t.Run("CacheHit", func(t *testing.T) {
		attr := CacheHit(true)
		assert.Equal(t, AttrCacheHit, string(attr.Key))
		assert.True(t, attr.Value.AsBool())
	})

	t.Run("Bucket", func(t *testing.T) {
		attr := Bucket("my-bucket")
		assert.Equal(t, AttrBucket, string(attr.Key))
		assert.Equal(t, "my-bucket", attr.Value.AsString())
	})

	t.Run("StorageKey", func(t *testing.T) {
		attr := StorageKey("path/to/object")
		assert.Equal(t, AttrStorageKey, string(attr.Key))
		assert.Equal(t, "path/to/object", attr.Value.AsString())
	})
}

func TestStartSchedulerSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSchedulerSpan(ctx, SpanSchedulerEnqueue, "alice", "default")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With empty group
	newCtx2, span2 := StartSchedulerSpan(ctx, SpanSchedulerPosition, "bob", "")
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()

	// With additional attributes
	newCtx3, span3 := StartSchedulerSpan(ctx, SpanSchedulerAdmit, "carol", "leechers", Strategy("fifo"), Slots(10))
	require.NotNil(t, newCtx3)
	require.NotNil(t, span3)
	span3.End()
}

func TestStartAPISpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartAPISpan(ctx, "GET", "/v1/status")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartAPISpan(ctx, "POST", "/v1/peers/alice/group", AuthSubject("operator"))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}

func TestStartConfigSourceSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartConfigSourceSpan(ctx, SpanConfigSnapshot)
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()

	// With additional attributes
	newCtx2, span2 := StartConfigSourceSpan(ctx, SpanCacheLoad, CacheHit(false))
	require.NotNil(t, newCtx2)
	require.NotNil(t, span2)
	span2.End()
}
