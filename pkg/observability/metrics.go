package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. A nil
// *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec
	CacheComputations  *prometheus.CounterVec
	CacheComputeTime   *prometheus.HistogramVec
	CacheInvalidations *prometheus.CounterVec

	// Route search metrics
	OptimizerExpanded  prometheus.Histogram
	OptimizerTruncated prometheus.Counter

	// Store metrics
	StoreFailures *prometheus.CounterVec
	BreakerState  *prometheus.GaugeVec
}

// NewCollector creates a collector registered on its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"operation"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"operation"},
		),
		CacheComputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_computations_total",
				Help:      "Total number of cache miss computations",
			},
			[]string{"operation", "status"},
		),
		CacheComputeTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cache_compute_duration_seconds",
				Help:      "Duration of cache miss computations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheInvalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_invalidations_total",
				Help:      "Total number of namespace invalidations",
			},
			[]string{"namespace"},
		),
		OptimizerExpanded: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "route_search_expanded_states",
				Help:      "Number of search states expanded per route search",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		OptimizerTruncated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_search_truncated_total",
				Help:      "Route searches stopped by the expanded state cap",
			},
		),
		StoreFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Failed calls to the store of record",
			},
			[]string{"operation"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.CacheHits,
		c.CacheMisses,
		c.CacheComputations,
		c.CacheComputeTime,
		c.CacheInvalidations,
		c.OptimizerExpanded,
		c.OptimizerTruncated,
		c.StoreFailures,
		c.BreakerState,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return c
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the collected metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served request
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// CacheHit implements the cache observer
func (c *Collector) CacheHit(operation string) {
	if c == nil {
		return
	}
	c.CacheHits.WithLabelValues(operation).Inc()
}

// CacheMiss implements the cache observer
func (c *Collector) CacheMiss(operation string) {
	if c == nil {
		return
	}
	c.CacheMisses.WithLabelValues(operation).Inc()
}

// CacheComputed implements the cache observer
func (c *Collector) CacheComputed(operation string, d time.Duration, err error) {
	if c == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.CacheComputations.WithLabelValues(operation, status).Inc()
	c.CacheComputeTime.WithLabelValues(operation).Observe(d.Seconds())
}

// CacheInvalidated implements the cache observer
func (c *Collector) CacheInvalidated(namespace string, dropped int) {
	if c == nil {
		return
	}
	c.CacheInvalidations.WithLabelValues(namespace).Inc()
}

// RecordRouteSearch records the work done by one route search
func (c *Collector) RecordRouteSearch(expanded int, truncated bool) {
	if c == nil {
		return
	}
	c.OptimizerExpanded.Observe(float64(expanded))
	if truncated {
		c.OptimizerTruncated.Inc()
	}
}

// RecordStoreFailure counts a failed store call
func (c *Collector) RecordStoreFailure(operation string) {
	if c == nil {
		return
	}
	c.StoreFailures.WithLabelValues(operation).Inc()
}

// SetBreakerState publishes a circuit breaker state
func (c *Collector) SetBreakerState(name string, state int) {
	if c == nil {
		return
	}
	c.BreakerState.WithLabelValues(name).Set(float64(state))
}
