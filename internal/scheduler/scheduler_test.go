package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/smallbiznis/voltshop/internal/clock"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrders struct {
	orderdomain.Service
	calls  int
	limits []int
	result orderdomain.SweepResult
	err    error
	block  bool
}

func (f *fakeOrders) ResendPendingConfirmations(ctx context.Context, limit int) (orderdomain.SweepResult, error) {
	f.calls++
	f.limits = append(f.limits, limit)
	if f.block {
		<-ctx.Done()
		return orderdomain.SweepResult{}, ctx.Err()
	}
	return f.result, f.err
}

type fakeLocker struct {
	held     bool
	err      error
	released []string
	ttl      time.Duration
}

func (l *fakeLocker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	l.ttl = ttl
	return "token-" + key, true, nil
}

func (l *fakeLocker) Release(_ context.Context, key, token string) error {
	l.released = append(l.released, token)
	return nil
}

func newTestScheduler(t *testing.T, orders *fakeOrders, locker Locker, cfg Config) (*Scheduler, *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()
	restore := swapPrometheusRegistry(registry)
	t.Cleanup(restore)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	s, err := New(Params{
		Log:         zap.NewNop(),
		OrderSvc:    orders,
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		Locker:      locker,
		Fulfillment: obsmetrics.FulfillmentWithConfig(obsmetrics.Config{ServiceName: "voltshop", Environment: "test"}),
		Config:      cfg,
	})
	require.NoError(t, err)
	return s, registry
}

func TestRunOnceSweepsAndReleasesLock(t *testing.T) {
	orders := &fakeOrders{result: orderdomain.SweepResult{Attempted: 3, Sent: 2, Failed: 1}}
	locker := &fakeLocker{}
	s, registry := newTestScheduler(t, orders, locker, Config{BatchSize: 25})

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, orderdomain.SweepResult{Attempted: 3, Sent: 2, Failed: 1}, result)
	assert.Equal(t, []int{25}, orders.limits)
	assert.Equal(t, []string{"token-" + SweepLockKey}, locker.released)
	assert.Equal(t, float64(1), getCounterValue(t, registry, "voltshop_confirmation_sweep_runs_total", runLabels(runResultOK)))
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	orders := &fakeOrders{}
	s, registry := newTestScheduler(t, orders, &fakeLocker{held: true}, Config{})

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.Attempted)
	assert.Equal(t, 0, orders.calls)
	assert.Equal(t, float64(1), getCounterValue(t, registry, "voltshop_confirmation_sweep_runs_total", runLabels(runResultLocked)))
}

func TestRunOnceLockErrorIsReturned(t *testing.T) {
	orders := &fakeOrders{}
	s, _ := newTestScheduler(t, orders, &fakeLocker{err: errors.New("redis down")}, Config{})

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, orders.calls)
}

func TestRunOnceWithoutLockerStillSweeps(t *testing.T) {
	orders := &fakeOrders{result: orderdomain.SweepResult{Attempted: 1, Sent: 1}}
	s, _ := newTestScheduler(t, orders, nil, Config{})

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, []int{0}, orders.limits)
}

func TestRunOnceWrapsServiceError(t *testing.T) {
	orders := &fakeOrders{err: errors.New("db gone")}
	s, registry := newTestScheduler(t, orders, &fakeLocker{}, Config{})

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), jobConfirmationSweep)
	assert.Equal(t, float64(1), getCounterValue(t, registry, "voltshop_confirmation_sweep_runs_total", runLabels(runResultError)))
}

func TestRunJobTimeoutIsNotAnError(t *testing.T) {
	orders := &fakeOrders{block: true}
	s, _ := newTestScheduler(t, orders, &fakeLocker{}, Config{JobTimeout: 5 * time.Millisecond})

	_, err := s.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{JobTimeout: 10 * time.Minute}.withDefaults()
	assert.Equal(t, 10*time.Minute, cfg.LockTTL)

	cfg = Config{BatchSize: -4}.withDefaults()
	assert.Equal(t, 0, cfg.BatchSize)
	assert.Equal(t, DefaultConfig().JobTimeout, cfg.JobTimeout)
}

func runLabels(result string) map[string]string {
	return map[string]string{
		"service": "voltshop",
		"env":     "test",
		"result":  result,
	}
}

func swapPrometheusRegistry(registry *prometheus.Registry) func() {
	oldRegisterer := prometheus.DefaultRegisterer
	oldGatherer := prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
	obsmetrics.ResetFulfillmentMetricsForTest()
	return func() {
		prometheus.DefaultRegisterer = oldRegisterer
		prometheus.DefaultGatherer = oldGatherer
		obsmetrics.ResetFulfillmentMetricsForTest()
	}
}

func getCounterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	metricFamilies, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range metricFamilies {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if !labelsMatch(metric, labels) {
				continue
			}
			require.NotNil(t, metric.Counter, "metric %s is not a counter", name)
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.Label) != len(labels) {
		return false
	}
	for _, label := range metric.Label {
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
	}
	return true
}
