package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
)

const maxResendBatch = 500

func (s *Server) ListOrders(c *gin.Context) {
	var query struct {
		pagination.Pagination
		FulfillmentStatus string `form:"fulfillment_status"`
		Email             string `form:"email"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		PageToken:         query.PageToken,
		PageSize:          query.PageSize,
		FulfillmentStatus: strings.TrimSpace(query.FulfillmentStatus),
		Email:             strings.TrimSpace(query.Email),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrderByID(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type dispatchOrderRequest struct {
	TrackingNumber string `json:"trackingNumber"`
	Carrier        string `json:"carrier"`
}

// DispatchOrder marks an order shipped. A failed dispatch email does not fail
// the request; the response says whether it went out.
func (s *Server) DispatchOrder(c *gin.Context) {
	var req dispatchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Dispatch(c.Request.Context(), orderdomain.DispatchRequest{
		OrderID:        strings.TrimSpace(c.Param("id")),
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeliverOrder(c *gin.Context) {
	resp, err := s.orderSvc.Deliver(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResendConfirmations(c *gin.Context) {
	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil || query.Limit < 0 || query.Limit > maxResendBatch {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be between 0 and 500"))
		return
	}

	resp, err := s.orderSvc.ResendPendingConfirmations(c.Request.Context(), query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
