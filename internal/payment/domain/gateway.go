package domain

import (
	"context"
	"time"
)

const (
	LineKindMetadataKey = "line_kind"
	LineKindShipping    = "shipping"
	LineKindProduct     = "product"

	VariantMetadataKey = "variant_id"
	SlugMetadataKey    = "product_slug"

	MetadataDiscountCode   = "discount_code"
	MetadataDiscountAmount = "discount_amount"

	PaymentStatusPaid = "paid"

	// Stripe completes a fully discounted session without charging.
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// Gateway is the hosted payment provider as seen by checkout and ingestion.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (CheckoutSession, error)
	CreateCoupon(ctx context.Context, params CouponParams) (Coupon, error)
	// FetchSession re-reads a session with line items, product metadata, customer and
	// shipping details. Webhook payloads are never trusted for amounts.
	FetchSession(ctx context.Context, sessionID string) (*Session, error)
	// ParseEvent authenticates a raw webhook body against its signature header.
	ParseEvent(payload []byte, signatureHeader string) (Event, error)
}

type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
	ImageURL   string
	Metadata   map[string]string
}

type CheckoutSessionParams struct {
	Currency          string
	LineItems         []LineItem
	CouponID          string
	SuccessURL        string
	CancelURL         string
	ShippingCountries []string
	CollectPhone      bool
	Metadata          map[string]string
	IdempotencyKey    string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type CouponParams struct {
	Name           string
	AmountOff      int64
	Currency       string
	IdempotencyKey string
}

type Coupon struct {
	ID string
}

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// SessionLineItem is one authoritative line as recorded by the provider.
type SessionLineItem struct {
	Description     string
	Quantity        int64
	AmountTotal     int64
	ProductMetadata map[string]string
}

type Session struct {
	ID              string
	PaymentStatus   string
	PaymentIntentID string
	Currency        string
	AmountTotal     int64
	AmountSubtotal  int64
	AmountDiscount  int64
	CustomerEmail   string
	CustomerName    string
	CustomerPhone   string
	ShippingName    string
	ShippingAddress *Address
	Metadata        map[string]string
	LineItems       []SessionLineItem
	CreatedAt       time.Time
}

// Paid reports whether the session is settled and should become an order.
func (s Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid || s.PaymentStatus == PaymentStatusNoPaymentRequired
}

const (
	EventCheckoutSessionCompleted      = "checkout.session.completed"
	EventCheckoutAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// Event is an authenticated provider event reduced to what ingestion needs.
type Event struct {
	ID        string
	Type      string
	SessionID string
	Created   time.Time
}

// Handled reports whether the event type results in order ingestion.
func (e Event) Handled() bool {
	return e.Type == EventCheckoutSessionCompleted || e.Type == EventCheckoutAsyncPaymentSucceeded
}
