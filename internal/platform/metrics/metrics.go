package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SearchesTotal *prometheus.CounterVec
	SearchLatency *prometheus.HistogramVec
	ExportsTotal  prometheus.Counter
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_searches_total",
			Help: "Total number of search requests by domain, kind and outcome",
		}, []string{"domain", "kind", "outcome"}),
		SearchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vigil_search_duration_seconds",
			Help:    "Search request latency by domain and kind",
			Buckets: prometheus.DefBuckets,
		}, []string{"domain", "kind"}),
		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_exports_total",
			Help: "Total number of export files generated",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_search_cache_hits_total",
			Help: "Total number of search responses served from cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vigil_search_cache_misses_total",
			Help: "Total number of search cache misses",
		}),
	}
}

// ObserveSearch records one completed search. Nil receivers are allowed so
// tests can run without a registry.
func (m *Metrics) ObserveSearch(domain, kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(domain, kind, outcome).Inc()
	m.SearchLatency.WithLabelValues(domain, kind).Observe(elapsed.Seconds())
}

// IncExports increments the export counter.
func (m *Metrics) IncExports() {
	if m == nil {
		return
	}
	m.ExportsTotal.Inc()
}

// IncCacheHit increments the cache hit counter.
func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncCacheMiss increments the cache miss counter.
func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}
