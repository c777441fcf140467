package observability

import (
	"github.com/smallbiznis/voltshop/internal/observability/logger"
	"github.com/smallbiznis/voltshop/internal/observability/metrics"
	"github.com/smallbiznis/voltshop/internal/observability/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
)

// Module wires logging, tracing and metrics for every binary. Providers are
// forced at startup so exporters and collectors register before traffic.
var Module = fx.Module("observability",
	fx.Provide(LoadConfig),
	fx.Provide(
		Config.LoggerConfig,
		Config.TracingConfig,
		Config.MetricsConfig,
	),
	fx.Provide(
		logger.New,
		tracing.NewProvider,
		metrics.NewProvider,
		metrics.New,
		metrics.NewHTTPMetrics,
		metrics.FulfillmentWithConfig,
	),
	fx.Invoke(func(*sdktrace.TracerProvider, *metrics.FulfillmentMetrics) {}),
)
