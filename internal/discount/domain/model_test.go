package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		name     string
		code     DiscountCode
		subtotal int64
		want     int64
	}{
		{name: "percentage", code: DiscountCode{Kind: KindPercentage, PercentOff: decimal.NewFromInt(10)}, subtotal: 10000, want: 1000},
		{name: "percentage_rounds_half_up", code: DiscountCode{Kind: KindPercentage, PercentOff: decimal.NewFromInt(15)}, subtotal: 1990, want: 299},
		{name: "fixed", code: DiscountCode{Kind: KindFixed, AmountOff: 500}, subtotal: 2000, want: 500},
		{name: "fixed_capped_at_subtotal", code: DiscountCode{Kind: KindFixed, AmountOff: 5000}, subtotal: 2000, want: 2000},
		{name: "zero_subtotal", code: DiscountCode{Kind: KindFixed, AmountOff: 500}, subtotal: 0, want: 0},
		{name: "unknown_kind", code: DiscountCode{Kind: "bogus", AmountOff: 500}, subtotal: 2000, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.code.Amount(tc.subtotal); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	base := DiscountCode{Code: "SAVE10", Kind: KindPercentage, PercentOff: decimal.NewFromInt(10), Active: true}

	if got := Evaluate(nil, 1000, now); got.Valid || got.Reason != ReasonNotFound {
		t.Fatalf("expected not_found, got %+v", got)
	}

	inactive := base
	inactive.Active = false
	if got := Evaluate(&inactive, 1000, now); got.Valid || got.Reason != ReasonNotFound {
		t.Fatalf("expected inactive code to read as not_found, got %+v", got)
	}

	expired := base
	expired.ExpiresAt = &past
	if got := Evaluate(&expired, 1000, now); got.Valid || got.Reason != ReasonExpired {
		t.Fatalf("expected expired, got %+v", got)
	}

	expiresNow := base
	expiresNow.ExpiresAt = &now
	if got := Evaluate(&expiresNow, 1000, now); got.Reason != ReasonExpired {
		t.Fatalf("expected code expiring exactly now to be expired, got %+v", got)
	}

	notStarted := base
	notStarted.StartsAt = &future
	if got := Evaluate(&notStarted, 1000, now); got.Valid || got.Reason != ReasonNotStarted {
		t.Fatalf("expected not_started, got %+v", got)
	}

	minimum := base
	minimum.MinSubtotal = 5000
	if got := Evaluate(&minimum, 4999, now); got.Valid || got.Reason != ReasonBelowMinimum || got.MinSubtotal != 5000 {
		t.Fatalf("expected below_minimum, got %+v", got)
	}
	if got := Evaluate(&minimum, 5000, now); !got.Valid || got.DiscountAmount != 500 {
		t.Fatalf("expected valid at exact minimum, got %+v", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  save10 "); got != "SAVE10" {
		t.Fatalf("expected SAVE10, got %q", got)
	}
}
