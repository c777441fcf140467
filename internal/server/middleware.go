package server

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/voltshop/internal/observability/context"
	"github.com/smallbiznis/voltshop/internal/observability/logger"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"go.uber.org/zap"
)

const (
	HeaderAPIKey          = "X-Api-Key"
	contextStaffPrincipal = "staff_principal"
	actorTypeStaff        = "staff"
	rateLimitReasonPerIP  = "client-rate"
)

// StaffAuthRequired authenticates admin requests with a staff API key sent as
// "Authorization: Bearer <key>" or in the X-Api-Key header.
func (s *Server) StaffAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := staffKeyFromRequest(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.staffSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, staffdomain.ErrUnauthorized) {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithActor(c.Request.Context(), actorTypeStaff, principal.KeyID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextStaffPrincipal, principal)
		c.Next()
	}
}

func staffKeyFromRequest(c *gin.Context) string {
	if header := strings.TrimSpace(c.GetHeader("Authorization")); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.GetHeader(HeaderAPIKey))
}

func principalFromContext(c *gin.Context) (staffdomain.Principal, bool) {
	value, ok := c.Get(contextStaffPrincipal)
	if !ok {
		return staffdomain.Principal{}, false
	}
	principal, ok := value.(staffdomain.Principal)
	return principal, ok
}

func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := principalFromContext(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if s.authzSvc == nil {
			AbortWithError(c, ErrForbidden)
			return
		}
		if err := s.authzSvc.Authorize(c.Request.Context(), principal, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// PublicRateLimit throttles anonymous endpoints per client IP.
func (s *Server) PublicRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.publicLimiter == nil || !s.publicLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := s.publicLimiter.AllowClient(ctx, endpoint, c.ClientIP())
		if err != nil {
			// Shoppers are never blocked because the limiter is broken.
			logger.FromContext(ctx).Warn("public rate limit check failed", zap.String("endpoint", endpoint), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			logger.FromContext(ctx).Warn("public rate limit exceeded", zap.String("endpoint", endpoint))
			s.obsMetrics.RecordRateLimitDenied(ctx, endpoint, rateLimitReasonPerIP)
			retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
