// Package metrics exposes Prometheus collectors for the HTTP API, the backtest
// pipeline and the market data fetch layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/findash/internal/backtest/engine"
)

const namespace = "findash"

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec   // labels: route, method, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route

	BacktestsTotal    *prometheus.CounterVec   // labels: result
	BacktestStageDur  *prometheus.HistogramVec // labels: stage
	SeriesLength      prometheus.Histogram
	SeriesFetchDur    prometheus.Histogram
	SeriesFetchErrors prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		BacktestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backtests_total",
			Help:      "Backtest runs by result (ok, error)",
		}, []string{"result"}),
		BacktestStageDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backtest_stage_duration_seconds",
			Help:      "Duration of each backtest pipeline stage",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"stage"}),
		SeriesLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backtest_series_length",
			Help:      "Number of price points per backtest",
			Buckets:   prometheus.ExponentialBuckets(16, 2, 10),
		}),
		SeriesFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "series_fetch_duration_seconds",
			Help:      "Latency of price series fetches, cache hits included",
			Buckets:   prometheus.DefBuckets,
		}),
		SeriesFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_fetch_errors_total",
			Help:      "Failed price series fetches",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BacktestsTotal,
		m.BacktestStageDur,
		m.SeriesLength,
		m.SeriesFetchDur,
		m.SeriesFetchErrors,
	)

	return m
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, method string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveFetch records one price series fetch.
func (m *Metrics) ObserveFetch(elapsed time.Duration, err error) {
	m.SeriesFetchDur.Observe(elapsed.Seconds())

	if err != nil {
		m.SeriesFetchErrors.Inc()
	}
}

// Callbacks returns backtest lifecycle callbacks that feed the backtest metrics.
func (m *Metrics) Callbacks() engine.LifecycleCallbacks {
	onStart := engine.OnBacktestStartCallback(func(_ string, totalDataPoints int) error {
		m.SeriesLength.Observe(float64(totalDataPoints))

		return nil
	})
	onEnd := engine.OnBacktestEndCallback(func(err error) {
		result := "ok"
		if err != nil {
			result = "error"
		}

		m.BacktestsTotal.WithLabelValues(result).Inc()
	})
	onStageEnd := engine.OnStageEndCallback(func(stage engine.Stage, elapsed time.Duration) {
		m.BacktestStageDur.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
	})

	return engine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnBacktestEnd:   &onEnd,
		OnStageStart:    nil,
		OnStageEnd:      &onStageEnd,
	}
}
