// Package paymenttest provides an in-memory payment gateway for tests.
package paymenttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/smallbiznis/voltshop/internal/payment/domain"
)

// Gateway records calls and serves canned sessions.
type Gateway struct {
	mu sync.Mutex

	Sessions       map[string]*domain.Session
	CreatedParams  []domain.CheckoutSessionParams
	CreatedCoupons []domain.CouponParams
	FetchCalls     []string
	Events         map[string]domain.Event

	CreateErr error
	CouponErr error
	FetchErr  error
}

func NewGateway() *Gateway {
	return &Gateway{
		Sessions: map[string]*domain.Session{},
		Events:   map[string]domain.Event{},
	}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (domain.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateErr != nil {
		return domain.CheckoutSession{}, g.CreateErr
	}
	g.CreatedParams = append(g.CreatedParams, params)
	id := fmt.Sprintf("cs_test_%d", len(g.CreatedParams))
	return domain.CheckoutSession{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (g *Gateway) CreateCoupon(ctx context.Context, params domain.CouponParams) (domain.Coupon, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CouponErr != nil {
		return domain.Coupon{}, g.CouponErr
	}
	g.CreatedCoupons = append(g.CreatedCoupons, params)
	return domain.Coupon{ID: fmt.Sprintf("co_test_%d", len(g.CreatedCoupons))}, nil
}

func (g *Gateway) FetchSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.FetchCalls = append(g.FetchCalls, sessionID)
	if g.FetchErr != nil {
		return nil, g.FetchErr
	}
	sess, ok := g.Sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copy := *sess
	return &copy, nil
}

// ParseEvent treats the signature header as a lookup key into Events; unknown keys fail verification.
func (g *Gateway) ParseEvent(payload []byte, signatureHeader string) (domain.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	event, ok := g.Events[signatureHeader]
	if !ok {
		return domain.Event{}, domain.ErrInvalidSignature
	}
	return event, nil
}

func (g *Gateway) FetchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.FetchCalls)
}
