package correlation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestEnsureCorrelationIDKeepsExisting(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "cid-1")
	ctx, cid := EnsureCorrelationID(ctx)
	assert.Equal(t, "cid-1", cid)
	assert.Equal(t, "cid-1", ExtractCorrelationID(ctx))

	_, fresh := EnsureCorrelationID(context.Background())
	assert.NotEmpty(t, fresh)
}

func TestInjectTrace(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))
	ctx = ContextWithCorrelationID(ctx, "cid-2")

	md := InjectTrace(ctx, nil)
	assert.Equal(t, "cid-2", md["correlation_id"])
	assert.Equal(t, traceID.String(), md["trace_id"])
	assert.Equal(t, spanID.String(), md["span_id"])
	assert.NotEmpty(t, md["published_at"])

	md = InjectTrace(context.Background(), map[string]string{"correlation_id": "keep"})
	assert.Equal(t, "keep", md["correlation_id"])
	_, hasTrace := md["trace_id"]
	assert.False(t, hasTrace)
}
