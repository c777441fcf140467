package metricspush

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/smallbiznis/voltshop/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sweepRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	registry := prometheus.NewRegistry()
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voltshop_confirmation_sweep_total",
		Help: "test",
	}, []string{"outcome"})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "voltshop_pending_confirmations",
		Help: "test",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "voltshop_sweep_seconds",
		Help: "test",
	})
	registry.MustRegister(sent, pending, latency)

	sent.WithLabelValues("sent").Add(3)
	sent.WithLabelValues("failed").Inc()
	pending.Set(2)
	latency.Observe(1.5)
	return registry
}

func TestRemoteWritePusherSendsCountersAndGauges(t *testing.T) {
	var got prompb.WriteRequest
	var headers http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, got.Unmarshal(decoded))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pusher := NewRemoteWritePusher(srv.URL, "secret")
	pusher.now = func() time.Time { return time.UnixMilli(1700000000000) }

	require.NoError(t, pusher.Push(context.Background(), sweepRegistry(t)))

	assert.Equal(t, "snappy", headers.Get("Content-Encoding"))
	assert.Equal(t, "Bearer secret", headers.Get("Authorization"))

	// two counter series plus one gauge; the histogram is skipped
	require.Len(t, got.Timeseries, 3)
	values := map[string]float64{}
	for _, ts := range got.Timeseries {
		require.Len(t, ts.Samples, 1)
		assert.Equal(t, int64(1700000000000), ts.Samples[0].Timestamp)
		key := ""
		for _, label := range ts.Labels {
			if label.Name == "__name__" || label.Name == "outcome" {
				key += label.Value + "|"
			}
		}
		values[key] = ts.Samples[0].Value
	}
	assert.Equal(t, map[string]float64{
		"voltshop_confirmation_sweep_total|failed|": 1,
		"voltshop_confirmation_sweep_total|sent|":   3,
		"voltshop_pending_confirmations|":           2,
	}, values)
}

func TestRemoteWritePusherReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), sweepRegistry(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestBuildRemoteWriteSeriesSortsLabels(t *testing.T) {
	families, err := sweepRegistry(t).Gather()
	require.NoError(t, err)

	for _, ts := range buildRemoteWriteSeries(families, 1) {
		for i := 1; i < len(ts.Labels); i++ {
			assert.Less(t, ts.Labels[i-1].Name, ts.Labels[i].Name)
		}
	}
}

func TestNewPusher(t *testing.T) {
	log := zap.NewNop()

	assert.Nil(t, NewPusher(config.Config{}, log))
	assert.Nil(t, NewPusher(config.Config{Push: config.MetricsPushConfig{Exporter: ExporterRemoteWrite}}, log))
	assert.Nil(t, NewPusher(config.Config{Push: config.MetricsPushConfig{Exporter: "statsd", Endpoint: "http://x"}}, log))

	p := NewPusher(config.Config{Push: config.MetricsPushConfig{Exporter: ExporterRemoteWrite, Endpoint: "http://prom:9090/api/v1/write"}}, log)
	assert.IsType(t, &RemoteWritePusher{}, p)

	p = NewPusher(config.Config{AppName: "voltshop", Push: config.MetricsPushConfig{Exporter: ExporterPushgateway, Endpoint: "http://pushgateway:9091"}}, log)
	assert.IsType(t, &PushgatewayPusher{}, p)
}
