package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is the latest contact snapshot seen for an email address.
// Order history is derived from orders, never stored here.
type Customer struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex:ux_customers_email" json:"email"`
	Name         string       `gorm:"type:text" json:"name"`
	Phone        string       `gorm:"type:text" json:"phone,omitempty"`
	AddressLine1 string       `gorm:"type:text" json:"address_line1,omitempty"`
	AddressLine2 string       `gorm:"type:text" json:"address_line2,omitempty"`
	City         string       `gorm:"type:text" json:"city,omitempty"`
	State        string       `gorm:"type:text" json:"state,omitempty"`
	PostalCode   string       `gorm:"type:text" json:"postal_code,omitempty"`
	Country      string       `gorm:"type:text" json:"country,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// Summary is a customer with aggregate order stats.
type Summary struct {
	Customer
	OrderCount    int64      `json:"order_count"`
	LifetimeSpend int64      `json:"lifetime_spend"`
	LastOrderAt   *time.Time `json:"last_order_at,omitempty"`
}

type Segment string

const (
	SegmentAll       Segment = "all"
	SegmentHasOrders Segment = "has_orders"
	SegmentNoOrders  Segment = "no_orders"
)

// ParseSegment accepts the segment names case-insensitively; empty means all.
func ParseSegment(value string) (Segment, error) {
	switch Segment(strings.ToLower(strings.TrimSpace(value))) {
	case "", SegmentAll:
		return SegmentAll, nil
	case SegmentHasOrders:
		return SegmentHasOrders, nil
	case SegmentNoOrders:
		return SegmentNoOrders, nil
	default:
		return "", ErrInvalidSegment
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail is a shape check only; deliverability is the email provider's problem.
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
