package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	"github.com/smallbiznis/voltshop/pkg/money"
)

type createDiscountRequest struct {
	Code        string           `json:"code"`
	Kind        string           `json:"kind"`
	PercentOff  decimal.Decimal  `json:"percentOff"`
	AmountOff   decimal.Decimal  `json:"amountOff"`
	MinSubtotal *decimal.Decimal `json:"minSubtotal"`
	StartsAt    string           `json:"startsAt"`
	ExpiresAt   string           `json:"expiresAt"`
	Description string           `json:"description"`
}

func (s *Server) CreateDiscount(c *gin.Context) {
	var req createDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startsAt, expiresAt, err := parseDiscountWindow(req.StartsAt, req.ExpiresAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var minSubtotal int64
	if req.MinSubtotal != nil {
		minSubtotal = money.ToMinor(*req.MinSubtotal)
	}

	resp, err := s.discountSvc.Create(c.Request.Context(), discountdomain.CreateRequest{
		Code:        req.Code,
		Kind:        strings.TrimSpace(req.Kind),
		PercentOff:  req.PercentOff,
		AmountOff:   money.ToMinor(req.AmountOff),
		MinSubtotal: minSubtotal,
		StartsAt:    startsAt,
		ExpiresAt:   expiresAt,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListDiscounts(c *gin.Context) {
	var query struct {
		Active *bool `form:"active"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("active", "invalid_active", "invalid active"))
		return
	}

	req := discountdomain.ListRequest{}
	if query.Active != nil {
		req.ActiveOnly = *query.Active
	}

	resp, err := s.discountSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateDiscount(c *gin.Context) {
	if err := s.discountSvc.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
