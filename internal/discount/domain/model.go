package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/voltshop/pkg/money"
)

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFixed      Kind = "fixed"
)

type DiscountCode struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Kind        Kind            `gorm:"type:text;not null" json:"kind"`
	PercentOff  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"percent_off"`
	AmountOff   int64           `gorm:"not null;default:0" json:"amount_off"`
	MinSubtotal int64           `gorm:"not null;default:0" json:"min_subtotal"`
	StartsAt    *time.Time      `json:"starts_at,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

func (DiscountCode) TableName() string { return "discount_codes" }

// NormalizeCode upper-cases and trims a shopper-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Amount returns the discount in minor units for a subtotal. Percentages round half up;
// fixed amounts never exceed the subtotal.
func (d DiscountCode) Amount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	switch d.Kind {
	case KindPercentage:
		amount := money.Percent(subtotal, d.PercentOff)
		if amount > subtotal {
			return subtotal
		}
		if amount < 0 {
			return 0
		}
		return amount
	case KindFixed:
		if d.AmountOff > subtotal {
			return subtotal
		}
		if d.AmountOff < 0 {
			return 0
		}
		return d.AmountOff
	default:
		return 0
	}
}

// Evaluate checks a looked-up code against a subtotal at a point in time.
// A nil code evaluates as not found.
func Evaluate(code *DiscountCode, subtotal int64, now time.Time) Validation {
	if code == nil || !code.Active {
		return Validation{Valid: false, Reason: ReasonNotFound}
	}
	out := Validation{Code: code.Code, Kind: code.Kind}
	if code.StartsAt != nil && now.Before(*code.StartsAt) {
		out.Reason = ReasonNotStarted
		return out
	}
	if code.ExpiresAt != nil && !now.Before(*code.ExpiresAt) {
		out.Reason = ReasonExpired
		return out
	}
	if subtotal < code.MinSubtotal {
		out.Reason = ReasonBelowMinimum
		out.MinSubtotal = code.MinSubtotal
		return out
	}
	out.Valid = true
	out.DiscountAmount = code.Amount(subtotal)
	return out
}
