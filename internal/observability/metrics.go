package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "river_conditions"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Upstream fetch metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: host, outcome={success,error,status}
	UpstreamDuration *prometheus.HistogramVec // labels: host

	// Board extraction metrics.
	BoardExtractions     *prometheus.CounterVec // labels: source={primary,fallback,none}
	BoardRecords         *prometheus.GaugeVec   // labels: source
	BoardCache           *prometheus.CounterVec // labels: result={hit,miss,bypass}
	BoardStageRejections *prometheus.CounterVec // labels: stage
	BoardPublishErrors   prometheus.Counter

	// Conditions proxy cache.
	ProxyCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.BoardExtractions,
		m.BoardRecords,
		m.BoardCache,
		m.BoardStageRejections,
		m.BoardPublishErrors,
		m.ProxyCache,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream HTTP requests by host and outcome.",
		}, []string{"host", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream HTTP request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"host"}),
		BoardExtractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_extractions_total",
			Help:      "Completed board extraction cycles by the source that produced the result.",
		}, []string{"source"}),
		BoardRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "board_records",
			Help:      "Records in the most recent board result by source.",
		}, []string{"source"}),
		BoardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_cache_total",
			Help:      "Board cache lookups by result.",
		}, []string{"result"}),
		BoardStageRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_stage_rejections_total",
			Help:      "Extraction stages whose output was not acceptable.",
		}, []string{"stage"}),
		BoardPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_publish_errors_total",
			Help:      "Failures publishing fresh board results.",
		}),
		ProxyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_cache_total",
			Help:      "Conditions response cache lookups by result.",
		}, []string{"result"}),
	}
}
