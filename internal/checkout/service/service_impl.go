package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	checkoutdomain "github.com/smallbiznis/voltshop/internal/checkout/domain"
	"github.com/smallbiznis/voltshop/internal/config"
	discountdomain "github.com/smallbiznis/voltshop/internal/discount/domain"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     config.Config
	Settings   *config.StoreSettingsHolder `optional:"true"`
	Gateway    paymentdomain.Gateway
	Discounts  discountdomain.Service
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	store      config.StoreConfig
	settings   *config.StoreSettingsHolder
	gateway    paymentdomain.Gateway
	discounts  discountdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func New(p Params) checkoutdomain.Service {
	return &Service{
		log:        p.Log.Named("checkout.service"),
		store:      p.Config.Store,
		settings:   p.Settings,
		gateway:    p.Gateway,
		discounts:  p.Discounts,
		obsMetrics: p.ObsMetrics,
	}
}

// CreateSession prices the cart locally and asks the provider for a hosted checkout.
// Nothing is persisted; the order only exists once the provider confirms payment.
func (s *Service) CreateSession(ctx context.Context, req checkoutdomain.CreateSessionRequest) (checkoutdomain.Session, error) {
	if len(req.Items) == 0 {
		return checkoutdomain.Session{}, checkoutdomain.ErrEmptyCart
	}
	for _, item := range req.Items {
		if !item.Valid() {
			return checkoutdomain.Session{}, checkoutdomain.ErrInvalidItem
		}
	}
	if req.ShippingAmount < 0 {
		return checkoutdomain.Session{}, checkoutdomain.ErrInvalidShipping
	}

	result := checkoutdomain.Session{
		Subtotal:       checkoutdomain.Subtotal(req.Items),
		ShippingAmount: req.ShippingAmount,
	}

	var couponID string
	if strings.TrimSpace(req.DiscountCode) != "" {
		validation, err := s.discounts.Validate(ctx, discountdomain.ValidateRequest{
			Code:           req.DiscountCode,
			SubtotalAmount: result.Subtotal,
		})
		if err != nil {
			return checkoutdomain.Session{}, err
		}
		if !validation.Valid {
			s.obsMetrics.RecordCheckoutSession(ctx, "invalid_discount", true)
			return checkoutdomain.Session{}, fmt.Errorf("%w: %s", checkoutdomain.ErrInvalidDiscountCode, validation.Reason)
		}
		result.DiscountCode = validation.Code
		if validation.DiscountAmount > 0 {
			coupon, err := s.gateway.CreateCoupon(ctx, paymentdomain.CouponParams{
				Name:           "Discount " + validation.Code,
				AmountOff:      validation.DiscountAmount,
				Currency:       s.store.Currency,
				IdempotencyKey: uuid.NewString(),
			})
			if err != nil {
				s.obsMetrics.RecordCheckoutSession(ctx, "provider_error", true)
				s.log.Error("failed to create checkout coupon", zap.String("code", validation.Code), zap.Error(err))
				return checkoutdomain.Session{}, err
			}
			couponID = coupon.ID
			result.DiscountAmount = validation.DiscountAmount
		}
	}

	params := paymentdomain.CheckoutSessionParams{
		Currency:          s.store.Currency,
		LineItems:         buildLineItems(req.Items, req.ShippingAmount, result.DiscountCode),
		CouponID:          couponID,
		SuccessURL:        s.store.SuccessURL,
		CancelURL:         s.store.CancelURL,
		ShippingCountries: s.settings.Get().ShippingCountries,
		CollectPhone:      true,
		Metadata:          map[string]string{},
		IdempotencyKey:    uuid.NewString(),
	}
	if result.DiscountCode != "" {
		params.Metadata[paymentdomain.MetadataDiscountCode] = result.DiscountCode
		params.Metadata[paymentdomain.MetadataDiscountAmount] = strconv.FormatInt(result.DiscountAmount, 10)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.obsMetrics.RecordCheckoutSession(ctx, "provider_error", result.DiscountAmount > 0)
		s.log.Error("failed to create checkout session", zap.Error(err))
		return checkoutdomain.Session{}, err
	}

	result.ID = session.ID
	result.URL = session.URL
	s.obsMetrics.RecordCheckoutSession(ctx, "created", result.DiscountAmount > 0)
	s.log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("subtotal", result.Subtotal),
		zap.Int64("discount_amount", result.DiscountAmount),
		zap.Int64("shipping_amount", result.ShippingAmount),
	)
	return result, nil
}

// buildLineItems keeps every product at its own unit price; the discount travels as a coupon.
func buildLineItems(items []checkoutdomain.CartItem, shipping int64, discountCode string) []paymentdomain.LineItem {
	lines := make([]paymentdomain.LineItem, 0, len(items)+1)
	for _, item := range items {
		metadata := map[string]string{
			paymentdomain.LineKindMetadataKey: paymentdomain.LineKindProduct,
		}
		if item.VariantID != "" {
			metadata[paymentdomain.VariantMetadataKey] = item.VariantID
		}
		if s := slug.Make(item.ProductSlug); s != "" {
			metadata[paymentdomain.SlugMetadataKey] = s
		}
		lines = append(lines, paymentdomain.LineItem{
			Name:       item.DisplayName(),
			UnitAmount: item.EffectivePrice(),
			Quantity:   item.Quantity,
			ImageURL:   strings.TrimSpace(item.Image),
			Metadata:   metadata,
		})
	}

	if shipping > 0 {
		name := "Shipping"
		if discountCode != "" {
			name = fmt.Sprintf("Shipping (%s)", discountCode)
		}
		lines = append(lines, paymentdomain.LineItem{
			Name:       name,
			UnitAmount: shipping,
			Quantity:   1,
			Metadata: map[string]string{
				paymentdomain.LineKindMetadataKey: paymentdomain.LineKindShipping,
			},
		})
	}
	return lines
}
