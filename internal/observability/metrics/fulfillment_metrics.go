package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	FailureReasonDeadlineExceeded = "deadline_exceeded"
	FailureReasonUniqueViolation  = "unique_violation"
	FailureReasonDBLockTimeout    = "db_lock_timeout"
	FailureReasonUpstream         = "upstream"
	FailureReasonUnknown          = "unknown"
)

const (
	StageVerify    = "verify"
	StageFetch     = "fetch"
	StageReconcile = "reconcile"
	StagePersist   = "persist"
	StageNotify    = "notify"
)

// FulfillmentMetrics exposes pipeline health for order ingestion and campaigns on /metrics.
type FulfillmentMetrics struct {
	ingestDuration   *prometheus.HistogramVec
	ingestFailures   *prometheus.CounterVec
	campaignDuration prometheus.Observer
	campaignRuns     *prometheus.CounterVec
	pendingSweep     *prometheus.CounterVec
	sweepRuns        *prometheus.CounterVec
}

var (
	fulfillmentMetricsOnce sync.Once
	fulfillmentMetrics     *FulfillmentMetrics
)

// Fulfillment returns the singleton fulfillment metrics registry.
func Fulfillment() *FulfillmentMetrics {
	return FulfillmentWithConfig(Config{})
}

// FulfillmentWithConfig returns the singleton fulfillment metrics registry using config labels.
func FulfillmentWithConfig(cfg Config) *FulfillmentMetrics {
	fulfillmentMetricsOnce.Do(func() {
		fulfillmentMetrics = newFulfillmentMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return fulfillmentMetrics
}

func newFulfillmentMetrics(registerer prometheus.Registerer, cfg Config) *FulfillmentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "voltshop"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	ingestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "voltshop_order_ingest_duration_seconds",
		Help:        "Webhook-to-order latency by outcome.",
		Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"outcome"})
	ingestFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "voltshop_order_ingest_failures_total",
		Help:        "Order ingestion failures by stage and low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"stage", "reason"})
	campaignDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "voltshop_campaign_run_duration_seconds",
		Help:        "Wall time of a bulk campaign send.",
		Buckets:     []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		ConstLabels: constLabels,
	})
	campaignRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "voltshop_campaign_runs_total",
		Help:        "Campaign runs by segment and test mode.",
		ConstLabels: constLabels,
	}, []string{"segment", "test_mode"})
	pendingSweep := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "voltshop_confirmation_sweep_total",
		Help:        "Unsent confirmations retried by the sweep, by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	sweepRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "voltshop_confirmation_sweep_runs_total",
		Help:        "Confirmation sweep runs by result (ok, locked, error).",
		ConstLabels: constLabels,
	}, []string{"result"})

	registerer.MustRegister(
		ingestDuration,
		ingestFailures,
		campaignDuration,
		campaignRuns,
		pendingSweep,
		sweepRuns,
	)

	return &FulfillmentMetrics{
		ingestDuration:   ingestDuration,
		ingestFailures:   ingestFailures,
		campaignDuration: campaignDuration,
		campaignRuns:     campaignRuns,
		pendingSweep:     pendingSweep,
		sweepRuns:        sweepRuns,
	}
}

func (m *FulfillmentMetrics) ObserveIngest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ingestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *FulfillmentMetrics) IncIngestFailure(stage string, err error) {
	if m == nil {
		return
	}
	m.ingestFailures.WithLabelValues(stage, ClassifyFailureReason(err)).Inc()
}

func (m *FulfillmentMetrics) ObserveCampaign(segment string, testMode bool, d time.Duration) {
	if m == nil {
		return
	}
	mode := "false"
	if testMode {
		mode = "true"
	}
	m.campaignRuns.WithLabelValues(segment, mode).Inc()
	m.campaignDuration.Observe(d.Seconds())
}

func (m *FulfillmentMetrics) IncSweep(outcome string) {
	if m == nil {
		return
	}
	m.pendingSweep.WithLabelValues(outcome).Inc()
}

func (m *FulfillmentMetrics) IncSweepRun(result string) {
	if m == nil {
		return
	}
	m.sweepRuns.WithLabelValues(result).Inc()
}

// ResetFulfillmentMetricsForTest drops the singleton so the next call registers
// against the current default registerer.
func ResetFulfillmentMetricsForTest() {
	fulfillmentMetricsOnce = sync.Once{}
	fulfillmentMetrics = nil
}

// ClassifyFailureReason maps errors onto a bounded label set.
func ClassifyFailureReason(err error) string {
	if err == nil {
		return FailureReasonUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return FailureReasonUniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return FailureReasonUniqueViolation
		case "55P03":
			return FailureReasonDBLockTimeout
		}
	}
	if errors.Is(err, ErrUpstream) {
		return FailureReasonUpstream
	}
	return FailureReasonUnknown
}

// ErrUpstream marks failures caused by an external provider so they classify as upstream.
var ErrUpstream = errors.New("upstream_failure")
