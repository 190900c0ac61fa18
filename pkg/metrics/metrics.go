// Package metrics provides the centralized Prometheus metrics registry for
// the cache engine. All metrics are defined next to the code that records
// them (pkg/cache) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the cache engine.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - sidecache_hits_total (Counter): Cache hits
//   - sidecache_misses_total (Counter): Cache misses
//   - sidecache_evictions_total (Counter): Entries removed under capacity pressure
//   - sidecache_expirations_total (Counter): Entries removed by TTL expiry
//   - sidecache_items (Gauge): Current number of live entries
//   - sidecache_size_bytes (Gauge): Current serialized size of live entries
//   - sidecache_errors_total{operation} (Counter): Swallowed errors by
//     operation (serialize, persist, remove, load, sweep)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(sidecache_hits_total[5m]) /
//   (rate(sidecache_hits_total[5m]) + rate(sidecache_misses_total[5m]))
//
//   # Eviction Pressure
//   rate(sidecache_evictions_total[5m])
//
//   # Fill Level
//   sidecache_size_bytes / <configured max>
//
//   # Persistence Health
//   rate(sidecache_errors_total{operation="persist"}[5m])
