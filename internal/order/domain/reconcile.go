package domain

import (
	"strings"

	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"github.com/smallbiznis/voltshop/pkg/money"
)

type ReconciledItem struct {
	Name        string
	Quantity    int64
	UnitPrice   int64
	LineTotal   int64
	VariantID   string
	ProductSlug string
}

// Reconciliation is the order's money derived from provider-confirmed lines.
type Reconciliation struct {
	Items          []ReconciledItem
	ItemsTotal     int64
	SubtotalAmount int64
	ShippingAmount int64
	TotalAmount    int64
}

// Balanced reports whether the item lines plus shipping add up to the captured total.
func (r Reconciliation) Balanced() bool {
	return r.ItemsTotal+r.ShippingAmount == r.TotalAmount
}

// Reconcile splits provider line items into product lines and shipping.
// Lines tagged line_kind are trusted when any line carries the tag; otherwise a
// line whose description contains one of shippingKeywords counts as shipping.
func Reconcile(lines []paymentdomain.SessionLineItem, total int64, shippingKeywords []string) (Reconciliation, error) {
	if total < 0 {
		return Reconciliation{}, ErrInvalidSession
	}

	tagged := false
	for _, line := range lines {
		if line.ProductMetadata[paymentdomain.LineKindMetadataKey] != "" {
			tagged = true
			break
		}
	}

	out := Reconciliation{TotalAmount: total}
	for _, line := range lines {
		if isShippingLine(line, tagged, shippingKeywords) {
			out.ShippingAmount += line.AmountTotal
			continue
		}
		if line.Quantity <= 0 || line.AmountTotal < 0 {
			return Reconciliation{}, ErrInvalidLineItem
		}
		out.Items = append(out.Items, ReconciledItem{
			Name:        strings.TrimSpace(line.Description),
			Quantity:    line.Quantity,
			UnitPrice:   money.DivideRound(line.AmountTotal, line.Quantity),
			LineTotal:   line.AmountTotal,
			VariantID:   line.ProductMetadata[paymentdomain.VariantMetadataKey],
			ProductSlug: line.ProductMetadata[paymentdomain.SlugMetadataKey],
		})
		out.ItemsTotal += line.AmountTotal
	}
	if len(out.Items) == 0 {
		return Reconciliation{}, ErrNoLineItems
	}

	out.SubtotalAmount = total - out.ShippingAmount
	return out, nil
}

func isShippingLine(line paymentdomain.SessionLineItem, tagged bool, keywords []string) bool {
	if tagged {
		return line.ProductMetadata[paymentdomain.LineKindMetadataKey] == paymentdomain.LineKindShipping
	}
	desc := strings.ToLower(line.Description)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
