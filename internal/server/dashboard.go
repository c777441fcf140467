package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	campaigndomain "github.com/smallbiznis/voltshop/internal/campaign/domain"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"golang.org/x/sync/errgroup"
)

type DashboardResponse struct {
	orderdomain.Stats
	Currency       string                      `json:"currency"`
	CustomerCount  int64                       `json:"customer_count"`
	LatestCampaign *campaigndomain.CampaignLog `json:"latest_campaign"`
}

func (s *Server) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	resp := DashboardResponse{Currency: s.cfg.Store.Currency}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.orderSvc.Stats(gctx)
		resp.Stats = stats
		return err
	})
	g.Go(func() error {
		count, err := s.customerSvc.Count(gctx)
		resp.CustomerCount = count
		return err
	})
	g.Go(func() error {
		latest, err := s.campaignSvc.Latest(gctx)
		resp.LatestCampaign = latest
		return err
	})
	if err := g.Wait(); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
