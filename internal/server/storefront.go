package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	checkoutdomain "github.com/smallbiznis/voltshop/internal/checkout/domain"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	"github.com/smallbiznis/voltshop/internal/observability/logger"
	"github.com/smallbiznis/voltshop/pkg/money"
	"go.uber.org/zap"
)

type cartItemRequest struct {
	Title       string           `json:"title"`
	Price       decimal.Decimal  `json:"price"`
	Quantity    int64            `json:"quantity"`
	OnSale      bool             `json:"onSale"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	Image       string           `json:"image"`
	Color       string           `json:"color"`
	Size        string           `json:"size"`
	VariantID   string           `json:"variantId"`
	ProductSlug string           `json:"productSlug"`
}

type createCheckoutSessionRequest struct {
	Items        []cartItemRequest `json:"items"`
	ShippingCost *decimal.Decimal  `json:"shippingCost"`
	DiscountCode string            `json:"discountCode"`
}

// CreateCheckoutSession answers {url, sessionId} or {error}; the storefront
// reads this shape directly, so it bypasses the shared error envelope.
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	items := make([]checkoutdomain.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		cartItem := checkoutdomain.CartItem{
			Title:       item.Title,
			Price:       money.ToMinor(item.Price),
			Quantity:    item.Quantity,
			OnSale:      item.OnSale,
			Image:       strings.TrimSpace(item.Image),
			Color:       item.Color,
			Size:        item.Size,
			VariantID:   strings.TrimSpace(item.VariantID),
			ProductSlug: strings.TrimSpace(item.ProductSlug),
		}
		if item.SalePrice != nil {
			sale := money.ToMinor(*item.SalePrice)
			cartItem.SalePrice = &sale
		}
		items = append(items, cartItem)
	}

	var shipping int64
	if req.ShippingCost != nil {
		shipping = money.ToMinor(*req.ShippingCost)
	}

	session, err := s.checkoutSvc.CreateSession(c.Request.Context(), checkoutdomain.CreateSessionRequest{
		Items:          items,
		ShippingAmount: shipping,
		DiscountCode:   req.DiscountCode,
	})
	if err != nil {
		status, payload := mapError(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("checkout session failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": checkoutErrorMessage(err, payload)})
		return
	}

	c.JSON(http.StatusOK, session)
}

func checkoutErrorMessage(err error, payload errorPayload) string {
	switch validationErrorCode(err) {
	case "empty_cart":
		return "Cart is empty"
	case "invalid_item":
		return "Cart contains an invalid item"
	case "invalid_shipping":
		return "Invalid shipping cost"
	case "invalid_discount_code":
		return "Invalid discount code"
	}
	switch payload.Type {
	case "bad_gateway":
		return "Payment provider unavailable, please try again"
	case "service_unavailable":
		return "Checkout is not available right now"
	default:
		return "Failed to create checkout session"
	}
}

type validateDiscountRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// ValidateDiscount previews a code against a cart subtotal. Unknown or
// ineligible codes are a normal answer ({valid:false}), not an HTTP error.
func (s *Server) ValidateDiscount(c *gin.Context) {
	var req validateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "Invalid request body"})
		return
	}

	result, err := s.discountSvc.Validate(c.Request.Context(), discountdomain.ValidateRequest{
		Code:           req.Code,
		SubtotalAmount: money.ToMinor(req.Subtotal),
	})
	if err != nil {
		status, _ := mapError(err)
		message := "Failed to validate discount code"
		if status == http.StatusBadRequest {
			message = "Invalid subtotal"
		}
		c.JSON(status, gin.H{"valid": false, "error": message})
		return
	}

	if !result.Valid {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": discountReasonMessage(result, s.cfg.Store.Currency),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":          true,
		"code":           result.Code,
		"kind":           result.Kind,
		"discountAmount": decimalAmount(result.DiscountAmount),
	})
}

func discountReasonMessage(v discountdomain.Validation, currency string) string {
	switch v.Reason {
	case discountdomain.ReasonMissingCode:
		return "Discount code is required"
	case discountdomain.ReasonNotStarted:
		return "This discount code is not active yet"
	case discountdomain.ReasonExpired:
		return "This discount code has expired"
	case discountdomain.ReasonBelowMinimum:
		return "Minimum order of " + money.FormatWithSymbol(v.MinSubtotal, currency) + " required"
	default:
		return "Invalid discount code"
	}
}

// decimalAmount renders minor units as an unquoted two-place JSON number.
func decimalAmount(minor int64) json.Number {
	return json.Number(money.Format(minor))
}
