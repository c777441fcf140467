package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltshop/pkg/db/pagination"
)

// Notifier sends the buyer-facing order emails. Implementations do not retry.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order Order) error
	SendDispatchNotice(ctx context.Context, order Order) error
}

type DispatchRequest struct {
	OrderID        string
	TrackingNumber string
	Carrier        string
}

// DispatchResult reports the stored order and whether the dispatch email went out.
// The fulfillment update stands even when the email fails.
type DispatchResult struct {
	Order      Order  `json:"order"`
	EmailSent  bool   `json:"email_sent"`
	EmailError string `json:"email_error,omitempty"`
}

type ListRequest struct {
	PageToken         string
	PageSize          int
	FulfillmentStatus string
	Email             string
}

type ListResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type SweepResult struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

type Stats struct {
	OrderCount           int64 `json:"order_count"`
	Revenue              int64 `json:"revenue"`
	Unfulfilled          int64 `json:"unfulfilled"`
	PendingConfirmations int64 `json:"pending_confirmations"`
}

type Service interface {
	// IngestCheckoutSession turns a paid provider session into exactly one order
	// and sends its confirmation once. Replays are no-ops.
	IngestCheckoutSession(ctx context.Context, sessionID string) error
	Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error)
	Deliver(ctx context.Context, orderID string) (Order, error)
	Get(ctx context.Context, orderID string) (Order, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	// ResendPendingConfirmations retries confirmations for paid orders never stamped as sent.
	ResendPendingConfirmations(ctx context.Context, limit int) (SweepResult, error)
	Stats(ctx context.Context) (Stats, error)
}

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
	ErrInvalidSession        = errors.New("invalid_session")
	ErrInvalidLineItem       = errors.New("invalid_line_item")
	ErrNoLineItems           = errors.New("no_line_items")
	ErrMissingCustomerEmail  = errors.New("missing_customer_email")
	ErrInvalidTrackingNumber = errors.New("invalid_tracking_number")
	ErrInvalidCarrier        = errors.New("invalid_carrier")
	ErrInvalidTransition     = errors.New("invalid_fulfillment_transition")
	ErrInvalidStatus         = errors.New("invalid_fulfillment_status")
	ErrOrderNumberExhausted  = errors.New("order_number_retry_exhausted")
)
