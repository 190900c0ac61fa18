// Package cache provides a generic in-memory cache engine.
//
// The engine combines the classic pieces of a bounded cache:
//
// - Size- and count-bounded capacity with pluggable eviction (LRU, LFU, FIFO)
// - Per-entry TTL with lazy checks and a periodic background sweep
// - Tag and regular-expression bulk invalidation
// - Hit/miss/eviction statistics with on-demand rates
// - A synchronous event bus for set/get/delete/evict/expire
// - Optional best-effort write-through to a durable backing store
//
// # Basic Usage
//
//	cfg := cache.DefaultConfig()
//	cfg.MaxItems = 100
//	cfg.EvictionStrategy = cache.LRU
//
//	c, err := cache.New(cfg)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	if err := c.Set("user:42", profile, cache.WithTTL(time.Minute), cache.WithTags("users")); err != nil {
//		return err
//	}
//
//	if v, ok := c.Get("user:42"); ok {
//		// cache hit
//	}
//
// # Eviction
//
// The eviction strategy is fixed at construction. When an insert pushes the
// store over MaxItems or MaxSizeBytes, the policy picks victims until both
// limits hold again. LFU ties are broken toward the oldest insertion so
// eviction order is reproducible.
//
// # Expiry
//
// Every Get and Has checks expiry lazily; a background sweep owned by the
// cache instance additionally removes untouched expired entries every
// CleanupInterval. Close stops the sweeper deterministically.
//
// # Events
//
//	id := c.On(cache.EventEvict, func(key string, _ any) {
//		log.Printf("evicted %s", key)
//	})
//	defer c.Off(cache.EventEvict, id)
//
// Listeners are invoked synchronously inside the emitting operation and
// must not call back into the cache.
//
// # Persistence
//
//	cfg.Backend = persistence.NewRedisStore(redisClient, logger)
//	cfg.PersistOnSet = true
//	c, _ := cache.New(cfg)
//	if err := c.Load(ctx); err != nil {
//		// backing store unavailable; the cache still works in memory
//	}
//
// Writes to the backend are asynchronous and best-effort: a backend outage
// never fails an in-memory operation. Only Load awaits the store.
//
// # Metrics
//
// The engine exports Prometheus metrics:
//
//   - sidecache_hits_total / sidecache_misses_total
//   - sidecache_evictions_total / sidecache_expirations_total
//   - sidecache_items / sidecache_size_bytes
//   - sidecache_errors_total{operation} - swallowed errors by operation
package cache
