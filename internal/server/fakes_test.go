package server

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/voltshop/internal/authorization"
	campaigndomain "github.com/smallbiznis/voltshop/internal/campaign/domain"
	checkoutdomain "github.com/smallbiznis/voltshop/internal/checkout/domain"
	"github.com/smallbiznis/voltshop/internal/config"
	customerdomain "github.com/smallbiznis/voltshop/internal/customer/domain"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	staffdomain "github.com/smallbiznis/voltshop/internal/staff/domain"
)

// Fakes embed the service interface so a test only implements what it calls.

type fakeStaff struct {
	staffdomain.Service
	keys map[string]staffdomain.Principal
}

func (f *fakeStaff) Authenticate(_ context.Context, raw string) (staffdomain.Principal, error) {
	if principal, ok := f.keys[raw]; ok {
		return principal, nil
	}
	return staffdomain.Principal{}, staffdomain.ErrUnauthorized
}

// fakeAuthz grants by role using a flat object.action allow list.
type fakeAuthz struct {
	grants map[staffdomain.Role][]string
}

func (f *fakeAuthz) Authorize(_ context.Context, principal staffdomain.Principal, object, action string) error {
	for _, grant := range f.grants[principal.Role] {
		if grant == object+":"+action {
			return nil
		}
	}
	return authorization.ErrForbidden
}

type fakePayments struct {
	paymentdomain.Service
	err       error
	payloads  [][]byte
	signature string
}

func (f *fakePayments) IngestWebhook(_ context.Context, payload []byte, signatureHeader string) error {
	f.payloads = append(f.payloads, payload)
	f.signature = signatureHeader
	return f.err
}

type fakeCheckout struct {
	checkoutdomain.Service
	got     checkoutdomain.CreateSessionRequest
	session checkoutdomain.Session
	err     error
}

func (f *fakeCheckout) CreateSession(_ context.Context, req checkoutdomain.CreateSessionRequest) (checkoutdomain.Session, error) {
	f.got = req
	return f.session, f.err
}

type fakeDiscounts struct {
	discountdomain.Service
	got    discountdomain.ValidateRequest
	result discountdomain.Validation
	err    error
}

func (f *fakeDiscounts) Validate(_ context.Context, req discountdomain.ValidateRequest) (discountdomain.Validation, error) {
	f.got = req
	return f.result, f.err
}

type fakeOrders struct {
	orderdomain.Service
	dispatched []orderdomain.DispatchRequest
	result     orderdomain.DispatchResult
	err        error
	stats      orderdomain.Stats
}

func (f *fakeOrders) Dispatch(_ context.Context, req orderdomain.DispatchRequest) (orderdomain.DispatchResult, error) {
	f.dispatched = append(f.dispatched, req)
	return f.result, f.err
}

func (f *fakeOrders) Stats(context.Context) (orderdomain.Stats, error) {
	return f.stats, nil
}

type fakeCampaigns struct {
	campaigndomain.Service
	got    campaigndomain.SendRequest
	result campaigndomain.SendResult
	err    error
	latest *campaigndomain.CampaignLog
}

func (f *fakeCampaigns) Send(_ context.Context, req campaigndomain.SendRequest) (campaigndomain.SendResult, error) {
	f.got = req
	return f.result, f.err
}

func (f *fakeCampaigns) Latest(context.Context) (*campaigndomain.CampaignLog, error) {
	return f.latest, nil
}

type fakeCustomers struct {
	customerdomain.Service
	count int64
}

func (f *fakeCustomers) Count(context.Context) (int64, error) {
	return f.count, nil
}

type testServerOptions struct {
	payments  *fakePayments
	checkout  *fakeCheckout
	discounts *fakeDiscounts
	orders    *fakeOrders
	campaigns *fakeCampaigns
	customers *fakeCustomers
}

const (
	testOwnerKey       = "vsk_owner.0123456789abcdef0123"
	testFulfillmentKey = "vsk_ship.0123456789abcdef0123"
)

func newTestServer(opts testServerOptions) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	if opts.payments == nil {
		opts.payments = &fakePayments{}
	}
	if opts.checkout == nil {
		opts.checkout = &fakeCheckout{}
	}
	if opts.discounts == nil {
		opts.discounts = &fakeDiscounts{}
	}
	if opts.orders == nil {
		opts.orders = &fakeOrders{}
	}
	if opts.campaigns == nil {
		opts.campaigns = &fakeCampaigns{}
	}
	if opts.customers == nil {
		opts.customers = &fakeCustomers{}
	}

	staff := &fakeStaff{keys: map[string]staffdomain.Principal{
		testOwnerKey:       {KeyID: "owner", Name: "Owner", Role: staffdomain.RoleOwner},
		testFulfillmentKey: {KeyID: "ship", Name: "Warehouse", Role: staffdomain.RoleFulfillment},
	}}
	authz := &fakeAuthz{grants: map[staffdomain.Role][]string{
		staffdomain.RoleOwner: {
			authorization.ObjectOrder + ":" + authorization.ActionOrderDispatch,
			authorization.ObjectCampaign + ":" + authorization.ActionCampaignSend,
			authorization.ObjectDashboard + ":" + authorization.ActionDashboardView,
		},
		staffdomain.RoleFulfillment: {
			authorization.ObjectOrder + ":" + authorization.ActionOrderDispatch,
		},
	}}

	srv := NewServer(ServerParams{
		Gin: engine,
		Cfg: config.Config{
			Store: config.StoreConfig{Currency: "usd"},
		},
		AuthzSvc:    authz,
		StaffSvc:    staff,
		DiscountSvc: opts.discounts,
		CheckoutSvc: opts.checkout,
		OrderSvc:    opts.orders,
		CustomerSvc: opts.customers,
		CampaignSvc: opts.campaigns,
		PaymentSvc:  opts.payments,
	})
	srv.RegisterStorefrontRoutes()
	srv.RegisterWebhookRoutes()
	srv.RegisterAdminRoutes()
	return srv, engine
}

func bearer(key string) string {
	return "Bearer " + strings.TrimSpace(key)
}
