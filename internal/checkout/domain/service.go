package domain

import (
	"context"
	"errors"
	"strings"
)

// Per-line bounds. MaxUnitAmount is the provider's eight digit unit amount
// limit; together they keep a cart subtotal well inside int64.
const (
	MaxItemQuantity int64 = 999
	MaxUnitAmount   int64 = 99_999_999
)

// CartItem is one storefront cart line. Prices are minor units.
type CartItem struct {
	Title       string
	Price       int64
	Quantity    int64
	OnSale      bool
	SalePrice   *int64
	Image       string
	Color       string
	Size        string
	VariantID   string
	ProductSlug string
}

// Valid reports whether the line can be priced.
func (i CartItem) Valid() bool {
	if strings.TrimSpace(i.Title) == "" {
		return false
	}
	if i.Quantity <= 0 || i.Quantity > MaxItemQuantity {
		return false
	}
	price := i.EffectivePrice()
	return price > 0 && price <= MaxUnitAmount
}

// EffectivePrice is the unit price the buyer pays before any order-level discount.
func (i CartItem) EffectivePrice() int64 {
	if i.OnSale && i.SalePrice != nil && *i.SalePrice > 0 {
		return *i.SalePrice
	}
	return i.Price
}

// DisplayName appends color and size descriptors to the title, e.g. "Cable (Black, 2m)".
func (i CartItem) DisplayName() string {
	name := strings.TrimSpace(i.Title)
	var parts []string
	if color := strings.TrimSpace(i.Color); color != "" {
		parts = append(parts, color)
	}
	if size := strings.TrimSpace(i.Size); size != "" {
		parts = append(parts, size)
	}
	if len(parts) == 0 {
		return name
	}
	return name + " (" + strings.Join(parts, ", ") + ")"
}

func Subtotal(items []CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.EffectivePrice() * item.Quantity
	}
	return total
}

type CreateSessionRequest struct {
	Items          []CartItem
	ShippingAmount int64
	DiscountCode   string
}

// Session is the hosted checkout the buyer is redirected to, with the amounts it was built from.
type Session struct {
	ID             string `json:"sessionId"`
	URL            string `json:"url"`
	Subtotal       int64  `json:"-"`
	DiscountCode   string `json:"-"`
	DiscountAmount int64  `json:"-"`
	ShippingAmount int64  `json:"-"`
}

// Total is what the provider will charge.
func (s Session) Total() int64 {
	return s.Subtotal - s.DiscountAmount + s.ShippingAmount
}

type Service interface {
	CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error)
}

var (
	ErrEmptyCart            = errors.New("empty_cart")
	ErrInvalidItem          = errors.New("invalid_item")
	ErrInvalidShipping      = errors.New("invalid_shipping")
	ErrInvalidDiscountCode  = errors.New("invalid_discount_code")
	ErrCheckoutNotAvailable = errors.New("checkout_not_available")
)
