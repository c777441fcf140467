package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReasonMissingCode  = "missing_code"
	ReasonNotFound     = "not_found"
	ReasonNotStarted   = "not_started"
	ReasonExpired      = "expired"
	ReasonBelowMinimum = "below_minimum"
)

type ValidateRequest struct {
	Code           string
	SubtotalAmount int64
}

// Validation is the outcome of checking a code against a cart subtotal.
// DiscountAmount is always in minor units, never a percentage.
type Validation struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code,omitempty"`
	Kind           Kind   `json:"kind,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	MinSubtotal    int64  `json:"min_subtotal,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

type CreateRequest struct {
	Code        string
	Kind        string
	PercentOff  decimal.Decimal
	AmountOff   int64
	MinSubtotal int64
	StartsAt    *time.Time
	ExpiresAt   *time.Time
	Description string
}

type ListRequest struct {
	ActiveOnly bool
}

type Service interface {
	Validate(ctx context.Context, req ValidateRequest) (Validation, error)
	Create(ctx context.Context, req CreateRequest) (DiscountCode, error)
	List(ctx context.Context, req ListRequest) ([]DiscountCode, error)
	Deactivate(ctx context.Context, code string) error
}

var (
	ErrInvalidCode     = errors.New("invalid_code")
	ErrInvalidKind     = errors.New("invalid_kind")
	ErrInvalidValue    = errors.New("invalid_value")
	ErrInvalidSubtotal = errors.New("invalid_subtotal")
	ErrInvalidWindow   = errors.New("invalid_window")
	ErrCodeExists      = errors.New("code_exists")
	ErrNotFound        = errors.New("not_found")
)
