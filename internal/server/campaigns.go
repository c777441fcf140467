package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/smallbiznis/voltshop/internal/campaign/domain"
	"github.com/smallbiznis/voltshop/internal/observability/logger"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"go.uber.org/zap"
)

type sendCampaignRequest struct {
	CampaignName      string   `json:"campaignName"`
	Subject           string   `json:"subject"`
	BodyHTML          string   `json:"bodyHtml"`
	BodyText          string   `json:"bodyText"`
	TestMode          bool     `json:"testMode"`
	TestEmail         string   `json:"testEmail"`
	FilterSegment     string   `json:"filterSegment"`
	SelectedCustomers []string `json:"selectedCustomers"`
}

// SendCampaign blocks until every recipient has been attempted. The admin UI
// reads {success, campaignId, sentCount, failedCount, errors} directly.
func (s *Server) SendCampaign(c *gin.Context) {
	var req sendCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	result, err := s.campaignSvc.Send(c.Request.Context(), campaigndomain.SendRequest{
		Name:           req.CampaignName,
		Subject:        req.Subject,
		BodyHTML:       req.BodyHTML,
		BodyText:       req.BodyText,
		TestMode:       req.TestMode,
		TestEmail:      req.TestEmail,
		Segment:        req.FilterSegment,
		SelectedEmails: req.SelectedCustomers,
	})
	if err != nil {
		status, payload := mapError(err)
		message := payload.Message
		if len(payload.Errors) > 0 {
			message = payload.Errors[0].Code
		}
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("campaign send failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"success": false, "error": message})
		return
	}

	errs := result.Errors
	if errs == nil {
		errs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"campaignId":     result.CampaignID,
		"recipientCount": result.RecipientCount,
		"sentCount":      result.SentCount,
		"failedCount":    result.FailedCount,
		"errors":         errs,
	})
}

func (s *Server) ListCampaigns(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.campaignSvc.List(c.Request.Context(), campaigndomain.ListRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCampaignByID(c *gin.Context) {
	resp, err := s.campaignSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
