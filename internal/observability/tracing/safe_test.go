package tracing

import (
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPII(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/webhooks/stripe"),
		attribute.String("email", "shopper@example.com"),
	)
	if len(attrs) != 1 || attrs[0].Key != "http.route" {
		t.Fatalf("expected only http.route to survive, got %v", attrs)
	}
}

func TestSafeErrorRedactsEmails(t *testing.T) {
	err := SafeError(errors.New("send to shopper@example.com failed"))
	if err.Error() != "send to [redacted] failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if SafeError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}
