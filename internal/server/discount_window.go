package server

import (
	"strings"
	"time"
)

// parseDiscountWindow reads the optional startsAt/expiresAt pair of a new
// discount code. Either field may be RFC3339 or a bare date; a bare expiry
// date covers that whole day in UTC.
func parseDiscountWindow(startsAt, expiresAt string) (*time.Time, *time.Time, error) {
	start, ok := parseWindowBound(startsAt, false)
	if !ok {
		return nil, nil, newValidationError("starts_at", "invalid_starts_at", "invalid startsAt")
	}
	end, ok := parseWindowBound(expiresAt, true)
	if !ok {
		return nil, nil, newValidationError("expires_at", "invalid_expires_at", "invalid expiresAt")
	}
	if start != nil && end != nil && !end.After(*start) {
		return nil, nil, newValidationError("expires_at", "expires_before_start", "expiresAt must be after startsAt")
	}
	return start, end, nil
}

func parseWindowBound(value string, endOfDay bool) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, true
	}
	day, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, true
}
