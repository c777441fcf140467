package metrics

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("segment", "has_orders"),
		attribute.String("customer_email", "a@example.com"),
		attribute.String("outcome", "sent"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "segment" && attrs[1].Key != "segment" {
		t.Fatalf("expected segment to be retained")
	}
	if attrs[0].Key != "outcome" && attrs[1].Key != "outcome" {
		t.Fatalf("expected outcome to be retained")
	}
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	m.RecordWebhookEvent(context.Background(), "stripe", "checkout.session.completed", "processed")
	m.RecordCampaignRecipient(context.Background(), "all", "sent")
	m.RecordEmail(context.Background(), "confirmation", "failed")
}

func TestNewCreatesCountersOnNoopProvider(t *testing.T) {
	provider, err := NewProvider(nil, Config{}, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	m, err := New(Config{ServiceName: "voltshop"}, provider)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.RecordCheckoutSession(context.Background(), "created", true)
	m.RecordOrderIngested(context.Background(), "USD")
	m.RecordRateLimitDenied(context.Background(), "checkout", "exceeded")
}

func TestNewExporterRejectsUnknownProtocol(t *testing.T) {
	if _, err := newExporter("thrift", "collector:4317"); err == nil {
		t.Fatalf("expected an error for an unknown protocol")
	}
}
