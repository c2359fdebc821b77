package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ResolverMetrics tracks health of the DNS resolver and its answer cache.
type ResolverMetrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	lookups        prometheus.CounterVec
	lookupErrors   prometheus.CounterVec
}

var (
	defaultResolverMetrics     *ResolverMetrics
	defaultResolverMetricsOnce sync.Once
)

// NewResolverMetrics builds a ResolverMetrics recorder using the default registry.
func NewResolverMetrics() *ResolverMetrics {
	defaultResolverMetricsOnce.Do(func() {
		defaultResolverMetrics = newResolverMetrics(prometheus.DefaultRegisterer)
	})
	return defaultResolverMetrics
}

// NewResolverMetricsWithRegisterer allows tests to provide a dedicated registry.
func NewResolverMetricsWithRegisterer(reg prometheus.Registerer) *ResolverMetrics {
	return newResolverMetrics(reg)
}

func newResolverMetrics(reg prometheus.Registerer) *ResolverMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &ResolverMetrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "imgd",
			Subsystem: "resolver",
			Name:      "cache_hit_total",
			Help:      "Number of lookups answered from the in-memory answer cache",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "imgd",
			Subsystem: "resolver",
			Name:      "cache_miss_total",
			Help:      "Number of lookups that had to query an upstream nameserver",
		}),
		cacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "imgd",
			Subsystem: "resolver",
			Name:      "cache_eviction_total",
			Help:      "Number of cached answers evicted to make room for new ones",
		}),
		lookups: *factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imgd",
			Subsystem: "resolver",
			Name:      "lookup_total",
			Help:      "Total upstream lookups performed by record type",
		}, []string{"type"}),
		lookupErrors: *factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imgd",
			Subsystem: "resolver",
			Name:      "lookup_error_total",
			Help:      "Upstream lookup failures by record type",
		}, []string{"type"}),
	}
}

// RecordCacheHit increments the cache hit counter.
func (m *ResolverMetrics) RecordCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (m *ResolverMetrics) RecordCacheMiss() {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.Inc()
}

// RecordCacheEviction increments the eviction counter.
func (m *ResolverMetrics) RecordCacheEviction() {
	if m == nil || m.cacheEvictions == nil {
		return
	}
	m.cacheEvictions.Inc()
}

// RecordLookup counts one upstream lookup for a record type.
func (m *ResolverMetrics) RecordLookup(recordType string) {
	if m == nil {
		return
	}
	counter := m.lookups.WithLabelValues(recordType)
	counter.Inc()
}

// RecordLookupError counts one failed upstream lookup for a record type.
func (m *ResolverMetrics) RecordLookupError(recordType string) {
	if m == nil {
		return
	}
	counter := m.lookupErrors.WithLabelValues(recordType)
	counter.Inc()
}
