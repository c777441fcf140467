package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/voltshop/internal/observability/context"
	"github.com/smallbiznis/voltshop/pkg/telemetry/correlation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to (error_type, error_code).
	ErrorClassifier func(err error) (string, string)
}

const headerRequestID = "X-Request-Id"

// GinMiddleware assigns request and correlation ids, then writes one
// http_request line per request once the handler chain has finished.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := requestIDFromHeader(c.Request)
		c.Set("request_id", requestID)
		c.Header(headerRequestID, requestID)

		ctx := obscontext.WithRequestID(c.Request.Context(), requestID)
		ctx = correlation.ContextWithCorrelationID(ctx, c.GetHeader(correlation.HeaderName))
		ctx, correlationID := correlation.EnsureCorrelationID(ctx)
		c.Header(correlation.HeaderName, correlationID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		line := requestLine{
			surface: obscontext.SurfaceForPath(c.Request.URL.Path),
			route:   c.FullPath(),
			status:  c.Writer.Status(),
		}
		if line.route == "" {
			line.route = "unknown"
		}
		fields := []zap.Field{
			zap.String("surface", line.surface),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", line.route),
			zap.Int("status", line.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}

		if lastErr := c.Errors.Last(); lastErr != nil && cfg.ErrorClassifier != nil {
			line.errorType, line.errorCode = cfg.ErrorClassifier(lastErr.Err)
			fields = append(fields,
				zap.String("error_type", line.errorType),
				zap.String("error_code", line.errorCode),
			)
			if cfg.Debug {
				fields = append(fields, zap.Stack("stack"))
			}
		}

		// The staff auth middleware replaces the request context, so the
		// actor is only visible here after the chain has run.
		if ce := FromContext(c.Request.Context()).Check(line.level(), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestIDFromHeader(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(headerRequestID)); id != "" {
		return id
	}
	return uuid.NewString()
}

type requestLine struct {
	surface   string
	route     string
	status    int
	errorType string
	errorCode string
}

func (l requestLine) level() zapcore.Level {
	switch {
	case l.status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case l.surface == obscontext.SurfaceOps:
		return zapcore.DebugLevel
	case l.surface == obscontext.SurfaceAdmin && (l.status == http.StatusUnauthorized || l.status == http.StatusForbidden):
		return zapcore.WarnLevel
	case l.surface == obscontext.SurfaceWebhook && l.status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case l.surface == obscontext.SurfaceStorefront && l.status < http.StatusInternalServerError && l.errorType == "validation_error":
		// shopper typos on cart and discount forms
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
