package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks cache hits.
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sidecache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// cacheMisses tracks cache misses.
	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sidecache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// cacheEvictions tracks entries removed under capacity pressure.
	cacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sidecache_evictions_total",
			Help: "Total number of entries evicted under capacity pressure",
		},
	)

	// cacheExpirations tracks entries removed because their TTL elapsed.
	cacheExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sidecache_expirations_total",
			Help: "Total number of entries removed by TTL expiry",
		},
	)

	// cacheSizeBytes tracks the summed serialized size of live entries.
	cacheSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sidecache_size_bytes",
			Help: "Current size of the cache in bytes",
		},
	)

	// cacheItems tracks the number of live entries.
	cacheItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sidecache_items",
			Help: "Current number of entries in the cache",
		},
	)

	// cacheErrors tracks swallowed errors by operation.
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sidecache_errors_total",
			Help: "Total number of swallowed cache errors",
		},
		[]string{"operation"}, // "serialize", "persist", "remove", "load", "sweep"
	)
)
