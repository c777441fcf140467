package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/voltshop/internal/observability/logger"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"go.uber.org/zap"
)

func (s *Server) ListStaffKeys(c *gin.Context) {
	resp, err := s.staffSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CreateStaffKey returns the plaintext key. It is never retrievable again.
func (s *Server) CreateStaffKey(c *gin.Context) {
	var req staffdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.staffSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if principal, ok := principalFromContext(c); ok {
		logger.FromContext(c.Request.Context()).Info("staff key created",
			zap.String("key_id", resp.KeyID),
			zap.String("role", string(resp.Role)),
			zap.String("created_by", principal.KeyID),
		)
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) RevokeStaffKey(c *gin.Context) {
	keyID := strings.TrimSpace(c.Param("key_id"))
	if principal, ok := principalFromContext(c); ok && principal.KeyID == keyID {
		AbortWithError(c, newValidationError("key_id", "cannot_revoke_self", "a key cannot revoke itself"))
		return
	}

	if err := s.staffSvc.Revoke(c.Request.Context(), keyID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
