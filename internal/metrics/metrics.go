package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the metrics surface the rest of the application records
// against. Disabled metrics swap in a no-op implementation.
type Recorder interface {
	RecordCacheLookup(result string)
	RecordCacheWrite(success bool)
	RecordCredentialEvent(event string, success bool)
}

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Report Cache Metrics
	CacheLookupsTotal *prometheus.CounterVec
	CacheWritesTotal  *prometheus.CounterVec

	// Credential Lifecycle Metrics
	CredentialEventsTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag.
// If enabled=true, returns Prometheus-based Metrics.
// If enabled=false, returns NoopMetrics (zero overhead).
// Uses sync.Once to ensure Prometheus metrics are only registered once.
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

// initMetrics creates and registers all Prometheus metrics
func initMetrics() *Metrics {
	return &Metrics{
		CacheLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_cache_lookups_total",
				Help: "Total number of report cache lookups",
			},
			[]string{"result"}, // hit, miss, error
		),
		CacheWritesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_cache_writes_total",
				Help: "Total number of report cache writes",
			},
			[]string{"result"}, // success, error
		),

		CredentialEventsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "google_credential_events_total",
				Help: "Total number of credential lifecycle events",
			},
			[]string{"event", "result"}, // event: connect, disconnect; result: success, error
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}
}

const (
	resultSuccess = "success"
	resultError   = "error"
)

// RecordCacheLookup records one report cache lookup outcome (hit, miss or
// error).
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordCacheWrite records one report cache write outcome.
func (m *Metrics) RecordCacheWrite(success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.CacheWritesTotal.WithLabelValues(result).Inc()
}

// RecordCredentialEvent records a connect or disconnect outcome.
func (m *Metrics) RecordCredentialEvent(event string, success bool) {
	result := resultSuccess
	if !success {
		result = resultError
	}
	m.CredentialEventsTotal.WithLabelValues(event, result).Inc()
}
