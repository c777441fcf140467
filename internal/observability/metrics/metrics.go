package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
	// ExportInterval defaults to 10s.
	ExportInterval time.Duration
}

func (c Config) serviceName() string {
	if name := strings.TrimSpace(c.ServiceName); name != "" {
		return name
	}
	return "voltshop"
}

// Metrics holds the OTLP counters for storefront and fulfillment events.
// A nil *Metrics drops every record.
type Metrics struct {
	checkoutSessions metric.Int64Counter
	webhookEvents    metric.Int64Counter
	ordersIngested   metric.Int64Counter
	emailsSent       metric.Int64Counter
	campaignSends    metric.Int64Counter
	rateLimitDenied  metric.Int64Counter
}

// NewProvider installs the global meter provider. Disabled config yields a
// noop provider so instruments can still be created.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, fmt.Errorf("metrics exporter: %w", err)
	}
	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.serviceName()),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		)),
	)
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	if log != nil {
		log.Info("otlp metrics enabled",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
			zap.Duration("interval", interval),
		)
	}
	return provider, nil
}

// New creates the domain counters on the service meter.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(cfg.serviceName())
	m := &Metrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.checkoutSessions, "voltshop_checkout_sessions_total", "Checkout sessions by outcome and discount use."},
		{&m.webhookEvents, "voltshop_webhook_events_total", "Payment webhook deliveries by event type and outcome."},
		{&m.ordersIngested, "voltshop_orders_ingested_total", "Orders persisted from paid checkout sessions."},
		{&m.emailsSent, "voltshop_emails_sent_total", "Transactional and campaign emails by kind and outcome."},
		{&m.campaignSends, "voltshop_campaign_sends_total", "Campaign recipients by segment and outcome."},
		{&m.rateLimitDenied, "voltshop_rate_limit_denied_total", "Public requests rejected by the rate limiter."},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

func add(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	counter.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

func label(key, value string) attribute.KeyValue {
	return attribute.String(key, strings.TrimSpace(value))
}

// RecordCheckoutSession counts checkout sessions by whether a discount was applied.
func (m *Metrics) RecordCheckoutSession(ctx context.Context, outcome string, discounted bool) {
	if m == nil {
		return
	}
	add(ctx, m.checkoutSessions, label("outcome", outcome), attribute.Bool("discounted", discounted))
}

// RecordWebhookEvent counts webhook deliveries by event type and outcome.
func (m *Metrics) RecordWebhookEvent(ctx context.Context, provider, eventType, outcome string) {
	if m == nil {
		return
	}
	add(ctx, m.webhookEvents, label("provider", provider), label("event_type", eventType), label("outcome", outcome))
}

func (m *Metrics) RecordOrderIngested(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	add(ctx, m.ordersIngested, label("currency", strings.ToLower(currency)))
}

// RecordEmail counts transactional and campaign emails by kind and outcome.
func (m *Metrics) RecordEmail(ctx context.Context, kind, outcome string) {
	if m == nil {
		return
	}
	add(ctx, m.emailsSent, label("kind", kind), label("outcome", outcome))
}

func (m *Metrics) RecordCampaignRecipient(ctx context.Context, segment, outcome string) {
	if m == nil {
		return
	}
	add(ctx, m.campaignSends, label("segment", segment), label("outcome", outcome))
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	add(ctx, m.rateLimitDenied, label("endpoint", endpoint), label("reason", reason))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		if endpoint == "" {
			return otlpmetrichttp.New(ctx)
		}
		return otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(endpoint))
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Only these label keys reach the exporter. Anything per-customer or
// per-order would explode cardinality.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"provider":    {},
	"event_type":  {},
	"outcome":     {},
	"discounted":  {},
	"currency":    {},
	"kind":        {},
	"segment":     {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; ok {
			filtered = append(filtered, attr)
		}
	}
	return filtered
}
