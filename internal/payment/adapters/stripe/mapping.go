package stripe

import (
	"strings"
	"time"

	"github.com/smallbiznis/voltshop/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v80"
)

// Coupon names are capped by Stripe at 40 characters.
const maxCouponName = 40

func buildSessionParams(in domain.CheckoutSessionParams) *stripe.CheckoutSessionParams {
	currency := strings.ToLower(strings.TrimSpace(in.Currency))

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}

	for _, item := range in.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if isAbsoluteURL(item.ImageURL) {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		if len(item.Metadata) > 0 {
			productData.Metadata = copyMetadata(item.Metadata)
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				UnitAmount:  stripe.Int64(item.UnitAmount),
				ProductData: productData,
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	if in.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(in.CouponID)},
		}
	}
	if len(in.ShippingCountries) > 0 {
		params.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(in.ShippingCountries),
		}
	}
	if in.CollectPhone {
		params.PhoneNumberCollection = &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		}
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	return params
}

func buildCouponParams(in domain.CouponParams) *stripe.CouponParams {
	name := strings.TrimSpace(in.Name)
	if len(name) > maxCouponName {
		name = name[:maxCouponName]
	}
	params := &stripe.CouponParams{
		AmountOff:      stripe.Int64(in.AmountOff),
		Currency:       stripe.String(strings.ToLower(strings.TrimSpace(in.Currency))),
		Duration:       stripe.String(string(stripe.CouponDurationOnce)),
		MaxRedemptions: stripe.Int64(1),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	if in.IdempotencyKey != "" {
		params.SetIdempotencyKey(in.IdempotencyKey)
	}
	return params
}

func toSession(sess *stripe.CheckoutSession, lines []*stripe.LineItem) domain.Session {
	out := domain.Session{
		ID:             sess.ID,
		PaymentStatus:  string(sess.PaymentStatus),
		Currency:       strings.ToLower(string(sess.Currency)),
		AmountTotal:    sess.AmountTotal,
		AmountSubtotal: sess.AmountSubtotal,
		Metadata:       copyMetadata(sess.Metadata),
	}
	if sess.Created > 0 {
		out.CreatedAt = time.Unix(sess.Created, 0).UTC()
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.TotalDetails != nil {
		out.AmountDiscount = sess.TotalDetails.AmountDiscount
	}
	if details := sess.CustomerDetails; details != nil {
		out.CustomerEmail = strings.TrimSpace(details.Email)
		out.CustomerName = strings.TrimSpace(details.Name)
		out.CustomerPhone = strings.TrimSpace(details.Phone)
	}
	if shipping := sess.ShippingDetails; shipping != nil {
		out.ShippingName = strings.TrimSpace(shipping.Name)
		out.ShippingAddress = toAddress(shipping.Address)
	}
	if out.ShippingAddress == nil && sess.CustomerDetails != nil {
		out.ShippingAddress = toAddress(sess.CustomerDetails.Address)
	}

	for _, line := range lines {
		if line == nil {
			continue
		}
		item := domain.SessionLineItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			AmountTotal: line.AmountTotal,
		}
		if line.Price != nil && line.Price.Product != nil {
			item.ProductMetadata = copyMetadata(line.Price.Product.Metadata)
			if item.Description == "" {
				item.Description = line.Price.Product.Name
			}
		}
		out.LineItems = append(out.LineItems, item)
	}
	return out
}

func toAddress(addr *stripe.Address) *domain.Address {
	if addr == nil {
		return nil
	}
	return &domain.Address{
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

func copyMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func isAbsoluteURL(value string) bool {
	value = strings.TrimSpace(value)
	return strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://")
}
