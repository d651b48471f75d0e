// Package metrics exposes Prometheus metrics for HTTP traffic and segment writes
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "segments_api"

// Metrics contains the service's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	segmentMergesTotal    *prometheus.CounterVec
	segmentConflictsTotal *prometheus.CounterVec
}

// New creates a registry with process and Go runtime collectors plus the service metrics
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}
	return NewMetrics(registry)
}

// NewMetrics creates and registers the service metrics on registry
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"}, // path is the route template, e.g. /api/segments/:segmentId
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.segmentMergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_annotation_merges_total",
			Help:      "Total number of annotation merges",
		},
		[]string{"action"}, // insert, update
	)

	m.segmentConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_write_conflicts_total",
			Help:      "Total number of segment writes retried because the revision changed",
		},
		[]string{"operation"}, // merge, update
	)
}

func (m *Metrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.segmentMergesTotal,
		m.segmentConflictsTotal,
	}
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMerge counts an annotation merge by its action
func (m *Metrics) RecordMerge(action string) {
	m.segmentMergesTotal.WithLabelValues(action).Inc()
}

// RecordConflict counts a lost compare-and-swap on a segment
func (m *Metrics) RecordConflict(operation string) {
	m.segmentConflictsTotal.WithLabelValues(operation).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// CacheStatsFunc reports the user lookup cache counters
type CacheStatsFunc func() (hits, misses, size int64)

// RegisterCacheStats exposes cache counters read from stats at scrape time
func (m *Metrics) RegisterCacheStats(stats CacheStatsFunc) error {
	fns := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_hits_total",
			Help:      "Total number of user lookups served from the cache",
		}, func() float64 {
			hits, _, _ := stats()
			return float64(hits)
		}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "user_cache_misses_total",
			Help:      "Total number of user lookups that missed the cache",
		}, func() float64 {
			_, misses, _ := stats()
			return float64(misses)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "user_cache_entries",
			Help:      "Number of users currently cached",
		}, func() float64 {
			_, _, size := stats()
			return float64(size)
		}),
	}
	for _, c := range fns {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}
