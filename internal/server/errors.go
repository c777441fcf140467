package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/voltshop/internal/authorization"
	campaigndomain "github.com/smallbiznis/voltshop/internal/campaign/domain"
	checkoutdomain "github.com/smallbiznis/voltshop/internal/checkout/domain"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrBadGateway         = errors.New("bad_gateway")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, staffdomain.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, discountdomain.ErrCodeExists),
		errors.Is(err, orderdomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrBadGateway),
		errors.Is(err, paymentdomain.ErrProviderUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "bad_gateway",
			Message: "payment provider unavailable",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, paymentdomain.ErrProviderNotConfigured),
		errors.Is(err, checkoutdomain.ErrCheckoutNotAvailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, discountdomain.ErrCodeExists):
		return "discount code already exists"
	case errors.Is(err, orderdomain.ErrInvalidTransition):
		return "order is not in a state that allows this change"
	default:
		return "conflict"
	}
}

// classifyErrorForLog returns the error type and code logged with each failed request.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "server", code
	}
	return "client", code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isDiscountValidationError(err),
		isCheckoutValidationError(err),
		isOrderValidationError(err),
		isCustomerValidationError(err),
		isCampaignValidationError(err),
		isStaffValidationError(err),
		isPaymentValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, discountdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, campaigndomain.ErrNotFound),
		errors.Is(err, staffdomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isDiscountValidationError(err error) bool {
	for _, target := range []error{
		discountdomain.ErrInvalidCode,
		discountdomain.ErrInvalidKind,
		discountdomain.ErrInvalidValue,
		discountdomain.ErrInvalidSubtotal,
		discountdomain.ErrInvalidWindow,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isCheckoutValidationError(err error) bool {
	for _, target := range []error{
		checkoutdomain.ErrEmptyCart,
		checkoutdomain.ErrInvalidItem,
		checkoutdomain.ErrInvalidShipping,
		checkoutdomain.ErrInvalidDiscountCode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isOrderValidationError(err error) bool {
	for _, target := range []error{
		orderdomain.ErrInvalidID,
		orderdomain.ErrInvalidTrackingNumber,
		orderdomain.ErrInvalidCarrier,
		orderdomain.ErrInvalidStatus,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isCustomerValidationError(err error) bool {
	for _, target := range []error{
		customerdomain.ErrInvalidEmail,
		customerdomain.ErrInvalidSegment,
		customerdomain.ErrInvalidID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isCampaignValidationError(err error) bool {
	for _, target := range []error{
		campaigndomain.ErrInvalidName,
		campaigndomain.ErrInvalidSubject,
		campaigndomain.ErrInvalidBody,
		campaigndomain.ErrInvalidTestEmail,
		campaigndomain.ErrInvalidRecipient,
		campaigndomain.ErrNoRecipients,
		campaigndomain.ErrInvalidID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isStaffValidationError(err error) bool {
	for _, target := range []error{
		staffdomain.ErrInvalidName,
		staffdomain.ErrInvalidRole,
		staffdomain.ErrInvalidKeyID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isPaymentValidationError(err error) bool {
	return errors.Is(err, paymentdomain.ErrInvalidSignature) ||
		errors.Is(err, paymentdomain.ErrInvalidPayload) ||
		errors.Is(err, paymentdomain.ErrInvalidEvent)
}

// validationErrorCode returns the sentinel's code, unwrapping "%w: detail" wraps.
func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	code := err.Error()
	if idx := strings.Index(code, ":"); idx > 0 {
		code = code[:idx]
	}
	return code
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "empty_cart":
		return "cart is empty"
	case "no_recipients":
		return "no recipients matched"
	default:
		return "invalid value"
	}
}
