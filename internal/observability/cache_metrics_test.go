package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResolverMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewResolverMetricsWithRegisterer(reg)

	m.RecordCacheHit()
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheEviction()
	m.RecordLookup("A")
	m.RecordLookup("A")
	m.RecordLookup("AAAA")
	m.RecordLookupError("NS")

	if got := testutil.ToFloat64(m.cacheHits); got != 2 {
		t.Fatalf("cache hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses); got != 1 {
		t.Fatalf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lookups.WithLabelValues("A")); got != 2 {
		t.Fatalf("A lookups = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.lookupErrors.WithLabelValues("NS")); got != 1 {
		t.Fatalf("NS lookup errors = %v, want 1", got)
	}
}

func TestResolverMetricsNilSafe(t *testing.T) {
	var m *ResolverMetrics
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheEviction()
	m.RecordLookup("A")
	m.RecordLookupError("A")
}
