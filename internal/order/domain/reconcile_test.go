package domain

import (
	"testing"

	paymentdomain "github.com/smallbiznis/voltshop/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keywords = []string{"shipping", "delivery"}

func TestReconcileHappyPath(t *testing.T) {
	lines := []paymentdomain.SessionLineItem{
		{Description: "Cable", Quantity: 2, AmountTotal: 2000},
		{Description: "Shipping", Quantity: 1, AmountTotal: 399},
	}

	rec, err := Reconcile(lines, 2399, keywords)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), rec.SubtotalAmount)
	assert.Equal(t, int64(399), rec.ShippingAmount)
	assert.Equal(t, int64(2399), rec.TotalAmount)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, ReconciledItem{Name: "Cable", Quantity: 2, UnitPrice: 1000, LineTotal: 2000}, rec.Items[0])
	assert.True(t, rec.Balanced())
}

func TestReconcilePrefersTagsOverKeywords(t *testing.T) {
	lines := []paymentdomain.SessionLineItem{
		{
			Description:     "Free Shipping Sticker Pack",
			Quantity:        1,
			AmountTotal:     500,
			ProductMetadata: map[string]string{paymentdomain.LineKindMetadataKey: paymentdomain.LineKindProduct, paymentdomain.VariantMetadataKey: "var_9"},
		},
		{
			Description:     "Shipping (SAVE10)",
			Quantity:        1,
			AmountTotal:     399,
			ProductMetadata: map[string]string{paymentdomain.LineKindMetadataKey: paymentdomain.LineKindShipping},
		},
	}

	rec, err := Reconcile(lines, 899, keywords)
	require.NoError(t, err)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, "Free Shipping Sticker Pack", rec.Items[0].Name)
	assert.Equal(t, "var_9", rec.Items[0].VariantID)
	assert.Equal(t, int64(399), rec.ShippingAmount)
	assert.Equal(t, int64(500), rec.SubtotalAmount)
}

func TestReconcileKeywordFallbackIsCaseInsensitive(t *testing.T) {
	lines := []paymentdomain.SessionLineItem{
		{Description: "Wall Charger", Quantity: 1, AmountTotal: 2500},
		{Description: "Express DELIVERY", Quantity: 1, AmountTotal: 999},
	}

	rec, err := Reconcile(lines, 3499, keywords)
	require.NoError(t, err)
	assert.Equal(t, int64(999), rec.ShippingAmount)
	assert.Equal(t, int64(2500), rec.SubtotalAmount)
}

func TestReconcileUnitPriceRoundsHalfUp(t *testing.T) {
	lines := []paymentdomain.SessionLineItem{
		{Description: "Cable", Quantity: 3, AmountTotal: 2000},
	}

	rec, err := Reconcile(lines, 2000, keywords)
	require.NoError(t, err)
	assert.Equal(t, int64(667), rec.Items[0].UnitPrice)
	assert.Equal(t, int64(2000), rec.Items[0].LineTotal, "line total stays authoritative")
	assert.Equal(t, int64(0), rec.ShippingAmount)
}

func TestReconcileRejectsBadLines(t *testing.T) {
	_, err := Reconcile([]paymentdomain.SessionLineItem{{Description: "Cable", Quantity: 0, AmountTotal: 100}}, 100, keywords)
	assert.ErrorIs(t, err, ErrInvalidLineItem)

	_, err = Reconcile([]paymentdomain.SessionLineItem{{Description: "Shipping", Quantity: 1, AmountTotal: 100}}, 100, keywords)
	assert.ErrorIs(t, err, ErrNoLineItems)

	_, err = Reconcile(nil, -1, keywords)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestShippingAddressLines(t *testing.T) {
	o := Order{
		ShippingLine1:      NullString("1 Main St"),
		ShippingLine2:      NullString(" "),
		ShippingCity:       NullString("Springfield"),
		ShippingState:      NullString("IL"),
		ShippingPostalCode: NullString("62701"),
		ShippingCountry:    NullString("US"),
	}
	assert.Equal(t, []string{"1 Main St", "Springfield IL 62701", "US"}, o.ShippingAddressLines())
	assert.Nil(t, Order{}.ShippingAddressLines())
}
