package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyFailureReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: FailureReasonDeadlineExceeded},
		{name: "gorm_duplicate", err: gorm.ErrDuplicatedKey, want: FailureReasonUniqueViolation},
		{name: "pg_unique", err: &pgconn.PgError{Code: "23505"}, want: FailureReasonUniqueViolation},
		{name: "pg_lock", err: &pgconn.PgError{Code: "55P03"}, want: FailureReasonDBLockTimeout},
		{name: "upstream", err: fmt.Errorf("stripe: %w", ErrUpstream), want: FailureReasonUpstream},
		{name: "unknown", err: errors.New("boom"), want: FailureReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyFailureReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestObserveCampaign(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newFulfillmentMetrics(registry, Config{ServiceName: "voltshop", Environment: "test"})

	m.ObserveCampaign("has_orders", false, 3*time.Second)
	m.ObserveCampaign("has_orders", false, time.Second)
	m.IncIngestFailure(StagePersist, &pgconn.PgError{Code: "23505"})

	if got := testutil.ToFloat64(m.campaignRuns.WithLabelValues("has_orders", "false")); got != 2 {
		t.Fatalf("expected 2 campaign runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.ingestFailures.WithLabelValues(StagePersist, FailureReasonUniqueViolation)); got != 1 {
		t.Fatalf("expected 1 ingest failure, got %v", got)
	}
}
