package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the depth service.
type Registry struct {
	registry *prometheus.Registry

	// Cache performance
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Marketplace fetch performance
	FetchDuration *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec

	// Snapshot pipeline
	SnapshotBuilds   prometheus.Counter
	SnapshotDuration prometheus.Histogram

	// HTTP surface
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with all depth service metrics
// registered on a private Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftdepth_cache_hits_total",
				Help: "Total number of cache hits by key kind",
			},
			[]string{"kind"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftdepth_cache_misses_total",
				Help: "Total number of cache misses by key kind",
			},
			[]string{"kind"},
		),

		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nftdepth_marketplace_fetch_duration_seconds",
				Help:    "Duration of marketplace API fetches in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"endpoint"},
		),

		FetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftdepth_marketplace_fetch_errors_total",
				Help: "Total number of failed marketplace fetches",
			},
			[]string{"endpoint"},
		),

		SnapshotBuilds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nftdepth_snapshot_builds_total",
				Help: "Total number of fresh depth snapshot computations",
			},
		),

		SnapshotDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nftdepth_snapshot_build_duration_seconds",
				Help:    "Duration of depth snapshot computation in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftdepth_http_requests_total",
				Help: "Total number of HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nftdepth_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"path"},
		),
	}

	r.registry.MustRegister(
		r.CacheHits,
		r.CacheMisses,
		r.FetchDuration,
		r.FetchErrors,
		r.SnapshotBuilds,
		r.SnapshotDuration,
		r.HTTPRequests,
		r.HTTPDuration,
	)

	return r
}

// Handler returns the Prometheus exposition handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gather exposes the underlying registry for metric assertions.
func (r *Registry) Gather() prometheus.Gatherer {
	return r.registry
}
