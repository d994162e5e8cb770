// Package obs holds the Prometheus collectors for the provider layer.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects per-provider search and health instrumentation.
type Metrics struct {
	SearchesTotal   *prometheus.CounterVec
	SearchFailures  *prometheus.CounterVec
	SearchLatency   *prometheus.HistogramVec
	ProviderHealthy *prometheus.GaugeVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SearchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triporbit_provider_searches_total",
			Help: "Searches dispatched to each provider",
		}, []string{"vertical", "provider"}),
		SearchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triporbit_provider_search_failures_total",
			Help: "Searches that resolved to an error envelope per provider",
		}, []string{"vertical", "provider"}),
		SearchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "triporbit_provider_search_duration_seconds",
			Help:    "Wall time of provider searches",
			Buckets: prometheus.DefBuckets,
		}, []string{"vertical", "provider"}),
		ProviderHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "triporbit_provider_healthy",
			Help: "1 when the last health probe succeeded, 0 otherwise",
		}, []string{"vertical", "provider"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triporbit_search_cache_hits_total",
			Help: "Search responses served from the result cache",
		}, []string{"vertical"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triporbit_search_cache_misses_total",
			Help: "Search requests that had to hit a provider",
		}, []string{"vertical"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.SearchesTotal, m.SearchFailures, m.SearchLatency, m.ProviderHealthy, m.CacheHits, m.CacheMisses)
	return m
}

// ObserveSearch records one completed search.
func (m *Metrics) ObserveSearch(vertical, provider string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(vertical, provider).Inc()
	m.SearchLatency.WithLabelValues(vertical, provider).Observe(seconds)
	if failed {
		m.SearchFailures.WithLabelValues(vertical, provider).Inc()
	}
}

// ObserveHealth records the outcome of a health probe.
func (m *Metrics) ObserveHealth(vertical, provider string, healthy bool) {
	if m == nil {
		return
	}
	v := 0.0
	if healthy {
		v = 1.0
	}
	m.ProviderHealthy.WithLabelValues(vertical, provider).Set(v)
}

// ObserveCache records one cache lookup.
func (m *Metrics) ObserveCache(vertical string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.WithLabelValues(vertical).Inc()
	} else {
		m.CacheMisses.WithLabelValues(vertical).Inc()
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
