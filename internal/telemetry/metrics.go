package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the palette API.
type Metrics struct {
	RequestTotal      *prometheus.CounterVec
	RequestDurationMs *prometheus.HistogramVec
	QuotaRejected     *prometheus.CounterVec
	UpstreamFailures  *prometheus.CounterVec
	FallbackServed    prometheus.Counter
	PalettesGenerated prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chromabiz_request_total",
			Help: "Total number of API requests processed.",
		}, []string{"endpoint", "status"}),

		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chromabiz_request_duration_ms",
			Help:    "Request duration in milliseconds (including upstream latency).",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 15000, 45000},
		}, []string{"endpoint"}),

		QuotaRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chromabiz_quota_rejected_total",
			Help: "Requests rejected because the daily allowance was exhausted.",
		}, []string{"kind"}),

		UpstreamFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chromabiz_upstream_failure_total",
			Help: "Failed or unparseable upstream AI calls.",
		}, []string{"operation"}),

		FallbackServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromabiz_fallback_served_total",
			Help: "Generation responses answered from the static fallback sets.",
		}),

		PalettesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chromabiz_palettes_generated_total",
			Help: "Individual palettes returned to clients.",
		}),
	}
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(endpoint, status string, durationMs float64) {
	m.RequestTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDurationMs.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordQuotaRejection records a 429 for the given operation kind.
func (m *Metrics) RecordQuotaRejection(kind string) {
	m.QuotaRejected.WithLabelValues(kind).Inc()
}

// RecordUpstreamFailure records a failed AI call for an operation.
func (m *Metrics) RecordUpstreamFailure(operation string) {
	m.UpstreamFailures.WithLabelValues(operation).Inc()
}
