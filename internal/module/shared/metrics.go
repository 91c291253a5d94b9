package shared

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics groups the collectors of the query cache and the backend client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry      *prometheus.Registry
	cacheHits     *prometheus.CounterVec
	cacheMisses   prometheus.Counter
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheEntries  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracy_query_cache_hits_total",
			Help: "Query cache reads served without a backend call, by source",
		}, []string{"source"}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracy_query_cache_misses_total",
			Help: "Query cache reads that started a backend fetch",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracy_backend_fetches_total",
			Help: "Backend fetches by query and result",
		}, []string{"query", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracy_backend_fetch_duration_seconds",
			Help:    "Backend fetch latency including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"query"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracy_query_cache_entries",
			Help: "Entries currently held by the query cache",
		}),
	}
	m.Registry.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.fetches,
		m.fetchDuration,
		m.cacheEntries,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) CacheHit(source string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(source).Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) ObserveFetch(query string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.fetches.WithLabelValues(query, result).Inc()
	m.fetchDuration.WithLabelValues(query).Observe(took.Seconds())
}

func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(n))
}

// Handler exposes the registry on a fasthttp route.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
