package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	generationsTotal      *prometheus.CounterVec
	generationFailures    *prometheus.CounterVec
	historyDeletionsTotal *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	streamClientsActive   prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the gateway.
func RegisterMetrics() {
	registerOnce.Do(func() {
		generationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_generations_total",
			Help: "Total number of successful generation actions per module.",
		}, []string{"module"})

		generationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_generation_failures_total",
			Help: "Total number of failed generation actions per module.",
		}, []string{"module"})

		historyDeletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sahayak_history_deletions_total",
			Help: "Total number of history entries removed per module.",
		}, []string{"module"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sahayak_request_latency_seconds",
			Help:    "Latency distribution for gateway API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0, 120.0},
		}, []string{"method", "route"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sahayak_stream_clients_active",
			Help: "Number of dashboard stream subscribers currently connected.",
		})

		prometheus.MustRegister(
			generationsTotal,
			generationFailures,
			historyDeletionsTotal,
			requestLatencySeconds,
			streamClientsActive,
		)
	})
}

// Generations exposes the per-module success counter.
func Generations() *prometheus.CounterVec {
	RegisterMetrics()
	return generationsTotal
}

// GenerationFailures exposes the per-module failure counter.
func GenerationFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return generationFailures
}

// HistoryDeletions exposes the per-module deletion counter.
func HistoryDeletions() *prometheus.CounterVec {
	RegisterMetrics()
	return historyDeletionsTotal
}

// RequestLatency exposes the request latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// StreamClients exposes the dashboard stream subscriber gauge.
func StreamClients() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}
