package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Total number of catalog loads that settled successfully",
	}, []string{"source"})

	CatalogLoadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_load_failures_total",
		Help: "Total number of catalog fetches that failed",
	})

	CatalogFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_fetch_latency_seconds",
		Help:    "Latency of catalog endpoint requests",
		Buckets: prometheus.DefBuckets,
	})

	CacheReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_reads_total",
		Help: "Catalog cache reads by outcome",
	}, []string{"outcome"})

	CacheWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_write_failures_total",
		Help: "Total number of failed catalog cache writes",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_active_sessions",
		Help: "Number of mounted catalog sessions",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

// Cache read outcomes
const (
	CacheHit     = "hit"
	CacheMiss    = "miss"
	CacheCorrupt = "corrupt"
	CacheError   = "error"
)
