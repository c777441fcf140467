package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventRecord is the receipt of a webhook delivery. ProcessedAt is set only after
// ingestion succeeds so a failed attempt is retried on redelivery.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	SessionID       string         `json:"session_id" gorm:"type:text;index"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

type Repository interface {
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, provider string, providerEventID string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}

// SessionIngestor turns a paid checkout session into an order.
type SessionIngestor interface {
	IngestCheckoutSession(ctx context.Context, sessionID string) error
}

type Service interface {
	IngestWebhook(ctx context.Context, payload []byte, signatureHeader string) error
}

var (
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
	ErrSessionNotFound       = errors.New("session_not_found")
	ErrProviderUnavailable   = errors.New("payment_provider_unavailable")
	ErrProviderNotConfigured = errors.New("payment_provider_not_configured")

	// ErrSessionRejected marks a paid session that can never become an order;
	// redelivering the event will not change the outcome.
	ErrSessionRejected = errors.New("session_rejected")
)
