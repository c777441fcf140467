package observability

import (
	"testing"

	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigNormalizesTelemetry(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppName:     " ",
		AppVersion:  "1.2.0",
		Environment: "production",
		Telemetry: config.TelemetryConfig{
			LogLevel:      "warn",
			OtelEnabled:   true,
			OtelEndpoint:  "collector:4317",
			OtelProtocol:  "thrift",
			SamplingRatio: 4,
		},
	})

	assert.Equal(t, "voltshop", cfg.ServiceName)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
	assert.Equal(t, 1.0, cfg.OtelSamplingRatio)
	assert.True(t, cfg.OtelEnabled)
	assert.False(t, cfg.Debug())
	assert.False(t, cfg.LoggerConfig().IncludeStackOnError)
	assert.Equal(t, "1.2.0", cfg.TracingConfig().ServiceVersion)
}

func TestLoadConfigDisablesOtelWithoutEndpoint(t *testing.T) {
	cfg := LoadConfig(config.Config{
		Environment: "local",
		Telemetry:   config.TelemetryConfig{OtelEnabled: true, OtelProtocol: "http"},
	})

	assert.False(t, cfg.OtelEnabled)
	assert.False(t, cfg.MetricsConfig().Enabled)
	assert.Equal(t, "http", cfg.OtelExporterProtocol)
	assert.True(t, cfg.Debug())
}
