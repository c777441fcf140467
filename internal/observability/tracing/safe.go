package tracing

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// Attribute keys that may carry shopper PII are never exported on spans.
var forbiddenAttributeKeys = map[attribute.Key]struct{}{
	"email":           {},
	"customer_email":  {},
	"phone":           {},
	"address":         {},
	"tracking_number": {},
}

// ExtractContext pulls upstream trace context from carrier headers.
func ExtractContext(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// SafeAttributes drops attributes whose keys may carry shopper PII.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, forbidden := forbiddenAttributeKeys[attr.Key]; forbidden {
			continue
		}
		out = append(out, attr)
	}
	return out
}

// SafeError returns an error suitable for span recording with email addresses redacted.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(redactEmails(err.Error()))
}

func redactEmails(msg string) string {
	fields := strings.Fields(msg)
	for i, field := range fields {
		if strings.Contains(field, "@") {
			fields[i] = "[redacted]"
		}
	}
	return strings.Join(fields, " ")
}
