package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application. Instances are
// created once at bootstrap and handed to whoever needs them.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	IngestsTotal        *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
}

// New registers the application metrics with reg and returns them. Tests pass
// a fresh prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		IngestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingests_total",
				Help: "Total number of product ingestion attempts.",
			},
			[]string{"result"}, // created, updated, failed
		),
		ExtractionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "extraction_duration_seconds",
				Help:    "Duration of calls to the extraction service.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60},
			},
			[]string{"domain"},
		),
	}
}
