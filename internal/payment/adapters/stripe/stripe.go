package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/smallbiznis/voltshop/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

const providerName = "stripe"

// Adapter implements domain.Gateway on top of the Stripe API.
type Adapter struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) domain.Gateway {
	var api *client.API
	if key := strings.TrimSpace(cfg.Stripe.SecretKey); key != "" {
		api = client.New(key, nil)
	}
	return &Adapter{
		api:           api,
		webhookSecret: strings.TrimSpace(cfg.Stripe.WebhookSecret),
		log:           log.Named("payment.stripe"),
	}
}

func (a *Adapter) Name() string { return providerName }

func (a *Adapter) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (domain.CheckoutSession, error) {
	if a.api == nil {
		return domain.CheckoutSession{}, domain.ErrProviderNotConfigured
	}
	sp := buildSessionParams(params)
	sp.Context = ctx

	sess, err := a.api.CheckoutSessions.New(sp)
	if err != nil {
		return domain.CheckoutSession{}, a.wrapErr("create checkout session", err)
	}
	return domain.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (a *Adapter) CreateCoupon(ctx context.Context, params domain.CouponParams) (domain.Coupon, error) {
	if a.api == nil {
		return domain.Coupon{}, domain.ErrProviderNotConfigured
	}
	cp := buildCouponParams(params)
	cp.Context = ctx

	coupon, err := a.api.Coupons.New(cp)
	if err != nil {
		return domain.Coupon{}, a.wrapErr("create coupon", err)
	}
	return domain.Coupon{ID: coupon.ID}, nil
}

func (a *Adapter) FetchSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if a.api == nil {
		return nil, domain.ErrProviderNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	sess, err := a.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, a.wrapErr("fetch checkout session", err)
	}

	listParams := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	listParams.Context = ctx
	listParams.Limit = stripe.Int64(100)
	listParams.AddExpand("data.price.product")

	var lines []*stripe.LineItem
	iter := a.api.CheckoutSessions.ListLineItems(listParams)
	for iter.Next() {
		lines = append(lines, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, a.wrapErr("list session line items", err)
	}

	out := toSession(sess, lines)
	return &out, nil
}

func (a *Adapter) ParseEvent(payload []byte, signatureHeader string) (domain.Event, error) {
	if a.webhookSecret == "" {
		return domain.Event{}, domain.ErrProviderNotConfigured
	}
	if strings.TrimSpace(signatureHeader) == "" {
		return domain.Event{}, domain.ErrInvalidSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, a.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return domain.Event{}, domain.ErrInvalidSignature
	}

	return parseEvent(event)
}

func parseEvent(event stripe.Event) (domain.Event, error) {
	out := domain.Event{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if event.Created > 0 {
		out.Created = time.Unix(event.Created, 0).UTC()
	}
	if out.ID == "" || out.Type == "" {
		return domain.Event{}, domain.ErrInvalidEvent
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}

	if strings.HasPrefix(out.Type, "checkout.session.") {
		var obj struct {
			ID     string `json:"id"`
			Object string `json:"object"`
		}
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return domain.Event{}, domain.ErrInvalidPayload
		}
		out.SessionID = obj.ID
	}
	return out, nil
}

func (a *Adapter) wrapErr(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound {
			return domain.ErrSessionNotFound
		}
		a.log.Warn("stripe request failed",
			zap.String("op", op),
			zap.String("code", string(stripeErr.Code)),
			zap.Int("status", stripeErr.HTTPStatusCode),
			zap.String("request_id", stripeErr.RequestID),
		)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrProviderUnavailable, err)
}
