// Package events publishes domain events for downstream consumers such as
// fulfillment tooling and analytics.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/voltshop/pkg/telemetry/correlation"
)

const (
	TypeOrderConfirmed    = "order.confirmed"
	TypeOrderDispatched   = "order.dispatched"
	TypeOrderDelivered    = "order.delivered"
	TypeCampaignCompleted = "campaign.completed"
)

// Event is the published envelope. Data is marshalled as JSON.
type Event struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Subject    string            `json:"subject"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       any               `json:"data"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

var ErrInvalidEvent = errors.New("invalid_event")

// New builds an envelope carrying the context's correlation and trace ids.
func New(ctx context.Context, eventType, subject string, data any) Event {
	return Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
		Metadata:   correlation.InjectTrace(ctx, nil),
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, evt Event) error {
	return nil
}
