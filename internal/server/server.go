package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/voltshop/internal/authorization"
	"github.com/smallbiznis/voltshop/internal/campaign"
	campaigndomain "github.com/smallbiznis/voltshop/internal/campaign/domain"
	"github.com/smallbiznis/voltshop/internal/checkout"
	checkoutdomain "github.com/smallbiznis/voltshop/internal/checkout/domain"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/customer"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
	"github.com/smallbiznis/voltshop/internal/discount"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	"github.com/smallbiznis/voltshop/internal/events"
	"github.com/smallbiznis/voltshop/internal/notification"
	"github.com/smallbiznis/voltshop/internal/observability"
	obsmiddleware "github.com/smallbiznis/voltshop/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	obstracing "github.com/smallbiznis/voltshop/internal/observability/tracing"
	"github.com/smallbiznis/voltshop/internal/order"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"github.com/smallbiznis/voltshop/internal/payment"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"github.com/smallbiznis/voltshop/internal/providers"
	"github.com/smallbiznis/voltshop/internal/ratelimit"
	"github.com/smallbiznis/voltshop/internal/staff"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module wires every domain service the HTTP surface depends on. Binaries pick
// which route groups to register.
var Module = fx.Module("http.server",
	authorization.Module,
	events.Module,
	providers.Module,
	ratelimit.Module,
	staff.Module,
	customer.Module,
	discount.Module,
	checkout.Module,
	notification.Module,
	order.Module,
	payment.Module,
	campaign.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	authzSvc      authorization.Service
	staffSvc      staffdomain.Service
	discountSvc   discountdomain.Service
	checkoutSvc   checkoutdomain.Service
	orderSvc      orderdomain.Service
	customerSvc   customerdomain.Service
	campaignSvc   campaigndomain.Service
	paymentSvc    paymentdomain.Service
	obsMetrics    *obsmetrics.Metrics
	publicLimiter *ratelimit.PublicLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	AuthzSvc      authorization.Service
	StaffSvc      staffdomain.Service
	DiscountSvc   discountdomain.Service
	CheckoutSvc   checkoutdomain.Service
	OrderSvc      orderdomain.Service
	CustomerSvc   customerdomain.Service
	CampaignSvc   campaigndomain.Service
	PaymentSvc    paymentdomain.Service
	ObsMetrics    *obsmetrics.Metrics      `optional:"true"`
	PublicLimiter *ratelimit.PublicLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		authzSvc:      p.AuthzSvc,
		staffSvc:      p.StaffSvc,
		discountSvc:   p.DiscountSvc,
		checkoutSvc:   p.CheckoutSvc,
		orderSvc:      p.OrderSvc,
		customerSvc:   p.CustomerSvc,
		campaignSvc:   p.CampaignSvc,
		paymentSvc:    p.PaymentSvc,
		obsMetrics:    p.ObsMetrics,
		publicLimiter: p.PublicLimiter,
	}

	svc.engine.GET("/health", svc.Health)

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// RegisterStorefrontRoutes exposes the anonymous cart endpoints.
func (s *Server) RegisterStorefrontRoutes() {
	api := s.engine.Group("/api")

	api.POST("/checkout/sessions", s.PublicRateLimit("checkout"), s.CreateCheckoutSession)
	api.POST("/discounts/validate", s.PublicRateLimit("discount_validate"), s.ValidateDiscount)
}

// RegisterWebhookRoutes exposes provider callbacks. They authenticate by signature, not by key.
func (s *Server) RegisterWebhookRoutes() {
	api := s.engine.Group("/api")

	api.POST("/webhooks/stripe", s.HandleStripeWebhook)
}

func (s *Server) RegisterAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.Use(s.StaffAuthRequired())

	admin.GET("/dashboard", s.authorize(authorization.ObjectDashboard, authorization.ActionDashboardView), s.GetDashboard)

	// -------- Orders --------
	admin.GET("/orders", s.authorize(authorization.ObjectOrder, authorization.ActionOrderView), s.ListOrders)
	admin.GET("/orders/:id", s.authorize(authorization.ObjectOrder, authorization.ActionOrderView), s.GetOrderByID)
	admin.POST("/orders/:id/dispatch", s.authorize(authorization.ObjectOrder, authorization.ActionOrderDispatch), s.DispatchOrder)
	admin.POST("/orders/:id/deliver", s.authorize(authorization.ObjectOrder, authorization.ActionOrderDeliver), s.DeliverOrder)
	admin.POST("/orders/confirmations/resend", s.authorize(authorization.ObjectOrder, authorization.ActionOrderResendConfirmation), s.ResendConfirmations)

	// -------- Customers --------
	admin.GET("/customers", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerView), s.ListCustomers)
	admin.GET("/customers/:id", s.authorize(authorization.ObjectCustomer, authorization.ActionCustomerView), s.GetCustomerByID)

	// -------- Discounts --------
	admin.GET("/discounts", s.authorize(authorization.ObjectDiscount, authorization.ActionDiscountView), s.ListDiscounts)
	admin.POST("/discounts", s.authorize(authorization.ObjectDiscount, authorization.ActionDiscountCreate), s.CreateDiscount)
	admin.POST("/discounts/:code/deactivate", s.authorize(authorization.ObjectDiscount, authorization.ActionDiscountDeactivate), s.DeactivateDiscount)

	// -------- Campaigns --------
	admin.GET("/campaigns", s.authorize(authorization.ObjectCampaign, authorization.ActionCampaignView), s.ListCampaigns)
	admin.GET("/campaigns/:id", s.authorize(authorization.ObjectCampaign, authorization.ActionCampaignView), s.GetCampaignByID)
	admin.POST("/campaigns/send", s.authorize(authorization.ObjectCampaign, authorization.ActionCampaignSend), s.SendCampaign)

	// -------- Staff keys --------
	admin.GET("/staff-keys", s.authorize(authorization.ObjectStaffKey, authorization.ActionStaffKeyView), s.ListStaffKeys)
	admin.POST("/staff-keys", s.authorize(authorization.ObjectStaffKey, authorization.ActionStaffKeyCreate), s.CreateStaffKey)
	admin.POST("/staff-keys/:key_id/revoke", s.authorize(authorization.ObjectStaffKey, authorization.ActionStaffKeyRevoke), s.RevokeStaffKey)
}

func (s *Server) Health(c *gin.Context) {
	status := "ok"
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
		}
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}
