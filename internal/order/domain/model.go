package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusNoPaymentRequired PaymentStatus = "no_payment_required"
)

type Status string

const StatusConfirmed Status = "confirmed"

type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentShipped     FulfillmentStatus = "shipped"
	FulfillmentDelivered   FulfillmentStatus = "delivered"
)

// FirstOrderNumber is the number given to the first order a store ever takes.
const FirstOrderNumber int64 = 1001

// Order is one paid checkout session. Customer and address fields are a
// snapshot taken at payment time.
type Order struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderNumber     int64        `gorm:"not null;uniqueIndex:ux_orders_order_number" json:"order_number"`
	StripeSessionID string       `gorm:"type:text;not null;uniqueIndex:ux_orders_stripe_session_id" json:"stripe_session_id"`
	PaymentIntentID *string      `gorm:"type:text" json:"payment_intent_id,omitempty"`

	CustomerEmail string  `gorm:"type:text;not null;index" json:"customer_email"`
	CustomerName  string  `gorm:"type:text" json:"customer_name"`
	CustomerPhone *string `gorm:"type:text" json:"customer_phone,omitempty"`

	ShippingName       *string `gorm:"type:text" json:"shipping_name,omitempty"`
	ShippingLine1      *string `gorm:"type:text" json:"shipping_line1,omitempty"`
	ShippingLine2      *string `gorm:"type:text" json:"shipping_line2,omitempty"`
	ShippingCity       *string `gorm:"type:text" json:"shipping_city,omitempty"`
	ShippingState      *string `gorm:"type:text" json:"shipping_state,omitempty"`
	ShippingPostalCode *string `gorm:"type:text" json:"shipping_postal_code,omitempty"`
	ShippingCountry    *string `gorm:"type:text" json:"shipping_country,omitempty"`

	Currency       string  `gorm:"type:text;not null" json:"currency"`
	SubtotalAmount int64   `gorm:"not null" json:"subtotal_amount"`
	ShippingAmount int64   `gorm:"not null" json:"shipping_amount"`
	TotalAmount    int64   `gorm:"not null" json:"total_amount"`
	DiscountCode   *string `gorm:"type:text" json:"discount_code,omitempty"`
	DiscountAmount *int64  `json:"discount_amount,omitempty"`

	PaymentStatus     PaymentStatus     `gorm:"type:text;not null" json:"payment_status"`
	Status            Status            `gorm:"type:text;not null" json:"status"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:text;not null;index" json:"fulfillment_status"`
	TrackingNumber    *string           `gorm:"type:text" json:"tracking_number,omitempty"`
	Carrier           *string           `gorm:"type:text" json:"carrier,omitempty"`
	ShippedAt         *time.Time        `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`

	ConfirmationEmailSentAt *time.Time `json:"confirmation_email_sent_at,omitempty"`
	DispatchEmailSentAt     *time.Time `json:"dispatch_email_sent_at,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is a product line owned by an order. Position preserves provider line order.
type OrderItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID     snowflake.ID `gorm:"not null;index" json:"order_id"`
	Position    int          `gorm:"not null" json:"position"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	Quantity    int64        `gorm:"not null" json:"quantity"`
	UnitPrice   int64        `gorm:"not null" json:"unit_price"`
	LineTotal   int64        `gorm:"not null" json:"line_total"`
	VariantID   *string      `gorm:"type:text" json:"variant_id,omitempty"`
	ProductSlug *string      `gorm:"type:text" json:"product_slug,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

func (o Order) ConfirmationSent() bool {
	return o.ConfirmationEmailSentAt != nil
}

// ShippingAddressLines renders the destination for emails and receipts, skipping blanks.
func (o Order) ShippingAddressLines() []string {
	var lines []string
	add := func(parts ...*string) {
		var vals []string
		for _, p := range parts {
			if v := deref(p); v != "" {
				vals = append(vals, v)
			}
		}
		if len(vals) > 0 {
			lines = append(lines, strings.Join(vals, " "))
		}
	}
	add(o.ShippingLine1)
	add(o.ShippingLine2)
	add(o.ShippingCity, o.ShippingState, o.ShippingPostalCode)
	add(o.ShippingCountry)
	return lines
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// NullString maps blank strings to nil so optional columns stay NULL.
func NullString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
