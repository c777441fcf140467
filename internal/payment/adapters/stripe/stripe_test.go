package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/voltshop/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

func TestParseEventVerifiesSignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","object":"event","type":"checkout.session.completed","created":1700000000,"api_version":"2020-08-27","data":{"object":{"id":"cs_test_1","object":"checkout.session"}}}`)
	timestamp := time.Now().Unix()

	adapter := &Adapter{webhookSecret: secret, log: zap.NewNop()}

	event, err := adapter.ParseEvent(payload, buildStripeSignatureHeader(secret, payload, timestamp))
	if err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}
	if event.SessionID != "cs_test_1" {
		t.Fatalf("expected session id cs_test_1, got %q", event.SessionID)
	}
	if !event.Handled() {
		t.Fatalf("expected checkout.session.completed to be handled")
	}

	_, err = adapter.ParseEvent(payload, buildStripeSignatureHeader("wrong", payload, timestamp))
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected invalid signature error, got %v", err)
	}

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-3] = ' '
	_, err = adapter.ParseEvent(tampered, buildStripeSignatureHeader(secret, payload, timestamp))
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected tampered body to fail, got %v", err)
	}

	_, err = adapter.ParseEvent(payload, "")
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("expected missing header to fail, got %v", err)
	}
}

func TestParseEventWithoutSecret(t *testing.T) {
	adapter := &Adapter{log: zap.NewNop()}
	if _, err := adapter.ParseEvent([]byte(`{}`), "t=1,v1=abc"); !errors.Is(err, domain.ErrProviderNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestParseEventIgnoresNonSessionObjects(t *testing.T) {
	event := stripe.Event{
		ID:   "evt_pi",
		Type: "payment_intent.succeeded",
		Data: &stripe.EventData{Raw: []byte(`{"id":"pi_1","object":"payment_intent"}`)},
	}
	out, err := parseEvent(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.SessionID != "" || out.Handled() {
		t.Fatalf("expected unhandled event without session id, got %+v", out)
	}
}

func TestBuildSessionParams(t *testing.T) {
	params := buildSessionParams(domain.CheckoutSessionParams{
		Currency: "USD",
		LineItems: []domain.LineItem{
			{Name: "USB-C Cable (Black, 2m)", UnitAmount: 1299, Quantity: 2, ImageURL: "https://cdn.example.com/a.png", Metadata: map[string]string{"variant_id": "v_1"}},
			{Name: "Shipping (SAVE10)", UnitAmount: 500, Quantity: 1, ImageURL: "/relative.png", Metadata: map[string]string{"line_kind": "shipping"}},
		},
		CouponID:          "co_1",
		SuccessURL:        "https://shop.example.com/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         "https://shop.example.com/cart",
		ShippingCountries: []string{"US"},
		CollectPhone:      true,
		Metadata:          map[string]string{"discount_code": "SAVE10", "discount_amount": "259"},
		IdempotencyKey:    "idem-1",
	})

	if *params.Mode != "payment" {
		t.Fatalf("expected payment mode, got %s", *params.Mode)
	}
	if len(params.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(params.LineItems))
	}
	first := params.LineItems[0]
	if *first.PriceData.Currency != "usd" || *first.PriceData.UnitAmount != 1299 || *first.Quantity != 2 {
		t.Fatalf("unexpected first line %+v", first.PriceData)
	}
	if len(first.PriceData.ProductData.Images) != 1 {
		t.Fatalf("expected absolute image to be sent")
	}
	if len(params.LineItems[1].PriceData.ProductData.Images) != 0 {
		t.Fatalf("expected relative image to be dropped")
	}
	if params.LineItems[1].PriceData.ProductData.Metadata["line_kind"] != "shipping" {
		t.Fatalf("expected shipping line tag")
	}
	if len(params.Discounts) != 1 || *params.Discounts[0].Coupon != "co_1" {
		t.Fatalf("expected coupon to be attached")
	}
	if params.Metadata["discount_code"] != "SAVE10" {
		t.Fatalf("expected discount metadata")
	}
	if !*params.PhoneNumberCollection.Enabled {
		t.Fatalf("expected phone collection")
	}
	if params.IdempotencyKey == nil || *params.IdempotencyKey != "idem-1" {
		t.Fatalf("expected idempotency key")
	}
}

func TestBuildCouponParams(t *testing.T) {
	params := buildCouponParams(domain.CouponParams{
		Name:      "A-VERY-LONG-DISCOUNT-CODE-NAME-THAT-EXCEEDS-FORTY",
		AmountOff: 259,
		Currency:  "USD",
	})
	if *params.AmountOff != 259 || *params.Currency != "usd" {
		t.Fatalf("unexpected coupon params")
	}
	if *params.Duration != "once" || *params.MaxRedemptions != 1 {
		t.Fatalf("expected single-use coupon")
	}
	if len(*params.Name) != maxCouponName {
		t.Fatalf("expected name to be truncated, got %d", len(*params.Name))
	}
}

func TestToSession(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:             "cs_1",
		PaymentStatus:  stripe.CheckoutSessionPaymentStatusPaid,
		Currency:       "USD",
		AmountTotal:    2830,
		AmountSubtotal: 3089,
		Created:        1700000000,
		Metadata:       map[string]string{"discount_code": "SAVE10"},
		PaymentIntent:  &stripe.PaymentIntent{ID: "pi_1"},
		TotalDetails:   &stripe.CheckoutSessionTotalDetails{AmountDiscount: 259},
		CustomerDetails: &stripe.CheckoutSessionCustomerDetails{
			Email: " shopper@example.com ",
			Name:  "Sam Shopper",
			Address: &stripe.Address{
				Line1:   "1 Billing Rd",
				Country: "US",
			},
		},
	}
	lines := []*stripe.LineItem{
		{
			Description: "USB-C Cable",
			Quantity:    2,
			AmountTotal: 2598,
			Price: &stripe.Price{Product: &stripe.Product{
				Name:     "USB-C Cable",
				Metadata: map[string]string{"variant_id": "v_1"},
			}},
		},
		nil,
	}

	out := toSession(sess, lines)
	if !out.Paid() {
		t.Fatalf("expected paid session")
	}
	if out.Currency != "usd" || out.PaymentIntentID != "pi_1" || out.AmountDiscount != 259 {
		t.Fatalf("unexpected session mapping %+v", out)
	}
	if out.CustomerEmail != "shopper@example.com" {
		t.Fatalf("expected trimmed email, got %q", out.CustomerEmail)
	}
	if out.ShippingAddress == nil || out.ShippingAddress.Line1 != "1 Billing Rd" {
		t.Fatalf("expected billing address fallback")
	}
	if len(out.LineItems) != 1 || out.LineItems[0].ProductMetadata["variant_id"] != "v_1" {
		t.Fatalf("unexpected line items %+v", out.LineItems)
	}
}

func buildStripeSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signedPayload := fmt.Sprintf("%d.%s", timestamp, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, signature)
}
