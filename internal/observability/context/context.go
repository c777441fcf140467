package context

import (
	"context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	actorKey
	correlationIDKey
)

type actor struct {
	typ string
	id  string
}

// WithRequestID stores the inbound request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithActor records who is acting, e.g. ("staff", keyID) or ("stripe", eventID).
func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	return context.WithValue(ctx, actorKey, actor{
		typ: strings.TrimSpace(actorType),
		id:  strings.TrimSpace(actorID),
	})
}

func ActorFromContext(ctx context.Context) (string, string) {
	if ctx == nil {
		return "", ""
	}
	value, ok := ctx.Value(actorKey).(actor)
	if !ok {
		return "", ""
	}
	return value.typ, value.id
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, strings.TrimSpace(correlationID))
}

func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(correlationIDKey).(string)
	return value
}

// Request surfaces. Logs, spans and rate limits are keyed by them.
const (
	SurfaceStorefront = "storefront"
	SurfaceWebhook    = "webhook"
	SurfaceAdmin      = "admin"
	SurfaceOps        = "ops"
)

// SurfaceForPath classifies a request path into one of the request surfaces.
func SurfaceForPath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/webhooks/"):
		return SurfaceWebhook
	case strings.HasPrefix(path, "/api/"):
		return SurfaceStorefront
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return SurfaceAdmin
	default:
		return SurfaceOps
	}
}
