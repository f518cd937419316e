// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// ISS client metrics
	ISSRequests       *prometheus.CounterVec
	ISSRequestLatency *prometheus.HistogramVec

	// Export metrics
	CandlesFetched    *prometheus.CounterVec
	CandlesStored     *prometheus.CounterVec
	InstrumentsStored prometheus.Counter
	ExportRunsTotal   *prometheus.CounterVec
	ExportDuration    prometheus.Histogram
	LastSuccessfulRun prometheus.Gauge

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg registers with the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "moex_iss"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ISSRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of ISS requests by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		ISSRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "request_latency_seconds",
			Help:      "ISS request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		CandlesFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "candles_fetched_total",
			Help:      "Total number of candles fetched by market",
		}, []string{"market"}),
		CandlesStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "candles_stored_total",
			Help:      "Total number of candles written to storage by market",
		}, []string{"market"}),
		InstrumentsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "instruments_stored_total",
			Help:      "Total number of instrument metadata records stored",
		}),
		ExportRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "runs_total",
			Help:      "Total number of export runs by status",
		}, []string{"status"}),
		ExportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Export run duration in seconds",
			Buckets:   []float64{0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_export_timestamp",
			Help:      "Unix timestamp of last successful export run",
		}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordISSRequest records one ISS query.
func RecordISSRequest(endpoint, outcome string, seconds float64) {
	DefaultMetrics.ISSRequests.WithLabelValues(endpoint, outcome).Inc()
	DefaultMetrics.ISSRequestLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordCandlesFetched adds n to the fetched candles counter.
func RecordCandlesFetched(market string, n int) {
	DefaultMetrics.CandlesFetched.WithLabelValues(market).Add(float64(n))
}

// RecordCandlesStored adds n to the stored candles counter.
func RecordCandlesStored(market string, n int) {
	DefaultMetrics.CandlesStored.WithLabelValues(market).Add(float64(n))
}

// RecordInstrumentStored increments the stored instruments counter.
func RecordInstrumentStored() {
	DefaultMetrics.InstrumentsStored.Inc()
}

// RecordExportRun records an export run.
func RecordExportRun(status string, durationSeconds float64, finishedUnix int64) {
	DefaultMetrics.ExportRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.ExportDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulRun.Set(float64(finishedUnix))
	}
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
