package correlation

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	obscontext "github.com/smallbiznis/voltshop/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
)

// HeaderName carries the correlation id on inbound requests and responses.
const HeaderName = "X-Correlation-Id"

// ExtractCorrelationID fetches a correlation ID from the context if present.
func ExtractCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	return obscontext.CorrelationIDFromContext(ctx)
}

// ContextWithCorrelationID sets the correlation ID onto the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return obscontext.WithCorrelationID(ctx, id)
}

// EnsureCorrelationID guarantees a correlation ID on the context, generating one when missing.
func EnsureCorrelationID(ctx context.Context) (context.Context, string) {
	cid := ExtractCorrelationID(ctx)
	if cid == "" {
		cid = ulid.Make().String()
	}
	return ContextWithCorrelationID(ctx, cid), cid
}

// InjectTrace stamps correlation and tracing identifiers into outbound message metadata.
// An existing correlation_id is kept; otherwise the context's or a fresh one is used.
func InjectTrace(ctx context.Context, metadata map[string]string) map[string]string {
	if metadata == nil {
		metadata = map[string]string{}
	}

	cid := metadata["correlation_id"]
	if cid == "" {
		cid = ExtractCorrelationID(ctx)
	}
	if cid == "" {
		cid = ulid.Make().String()
	}
	metadata["correlation_id"] = cid

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
		metadata["span_id"] = sc.SpanID().String()
	}
	metadata["published_at"] = time.Now().UTC().Format(time.RFC3339)
	return metadata
}
