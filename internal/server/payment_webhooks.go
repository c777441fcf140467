package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/voltshop/internal/observability/logger"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 1 << 20

// HandleStripeWebhook acknowledges every authenticated delivery it has durably
// handled. Stripe retries any non-2xx, so only failures worth retrying get a 5xx.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	err = s.paymentSvc.IngestWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil, errors.Is(err, paymentdomain.ErrEventAlreadyProcessed):
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, paymentdomain.ErrSessionRejected):
		// Retrying cannot fix the session, so the delivery is acknowledged.
		logger.FromContext(c.Request.Context()).Error("stripe webhook session rejected", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, paymentdomain.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
	case errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event"})
	default:
		logger.FromContext(c.Request.Context()).Error("stripe webhook processing failed", zap.Error(err))
		AbortWithError(c, err)
	}
}
