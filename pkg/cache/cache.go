package cache

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/YishenTu/sidecache/pkg/persistence"
)

// persistTimeout bounds a single best-effort write-through to the backend.
const persistTimeout = 5 * time.Second

// Cache is a size- and count-bounded in-memory cache with TTL expiration,
// a pluggable eviction strategy and an optional durable backing store.
//
// All operations are atomic with respect to each other. Event listeners run
// synchronously inside the emitting operation and must not call back into
// the cache.
type Cache struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*Entry
	size    int64
	policy  policy
	bus     *eventBus
	logger  zerolog.Logger

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
	closed   bool
}

// New creates a cache from the given configuration and starts its
// background expiry sweep. The caller must Close the cache to stop the
// sweeper.
func New(cfg Config) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Cache{
		cfg:     cfg,
		entries: make(map[string]*Entry),
		policy:  newPolicy(cfg.EvictionStrategy),
		bus:     newEventBus(),
		logger:  cfg.Logger,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go c.sweepLoop()

	return c, nil
}

// Close stops the background sweep and marks the cache closed. It is
// idempotent and safe to call concurrently. Pending best-effort
// persistence writes are abandoned, not awaited.
func (c *Cache) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Set stores or fully replaces the entry under key. A replace resets
// CreatedAt and AccessCount and re-registers the key with the eviction
// policy as a fresh insert.
//
// Set fails with a ValidationError for an empty key or a non-positive
// explicit TTL. A value that cannot be JSON-serialized is dropped silently:
// the key is absent afterward and no error is returned. A value whose
// serialized size alone exceeds MaxSizeBytes is rejected without touching
// the rest of the store.
func (c *Cache) Set(key string, value any, opts ...Option) error {
	if key == "" {
		return newValidationError("key", "must not be empty")
	}

	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	ttl := c.cfg.DefaultTTL
	if o.ttlSet {
		if o.ttl <= 0 {
			return newValidationError("ttl", "must be positive")
		}
		ttl = o.ttl
	}

	serialized, err := json.Marshal(value)
	if err != nil {
		// Best-effort contract: unserializable values are dropped, and a
		// previous entry under the key does not survive the failed replace.
		cacheErrors.WithLabelValues("serialize").Inc()
		c.logger.Debug().Err(err).Str("key", key).Msg("Dropping unserializable value")
		c.mu.Lock()
		if _, ok := c.entries[key]; ok {
			c.removeLocked(key)
			c.removeFromBackend([]string{key})
		}
		c.mu.Unlock()
		return nil
	}

	size := int64(len(serialized))
	if size > c.cfg.MaxSizeBytes {
		c.logger.Debug().
			Str("key", key).
			Int64("size_bytes", size).
			Int64("max_size_bytes", c.cfg.MaxSizeBytes).
			Msg("Rejecting oversized value")
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	now := time.Now()
	if old, ok := c.entries[key]; ok {
		c.size -= old.Metadata.SizeBytes
	}

	entry := &Entry{
		Key:        key,
		Value:      value,
		Serialized: serialized,
		Metadata: Metadata{
			CreatedAt:      now,
			ExpiresAt:      now.Add(ttl),
			LastAccessedAt: now,
			Tags:           append([]string(nil), o.tags...),
			SizeBytes:      size,
		},
	}

	c.entries[key] = entry
	c.size += size
	c.policy.onInsert(key)
	c.updateGauges()

	c.enforceCapacityLocked()

	c.bus.emit(EventSet, key, value)

	if c.cfg.PersistOnSet {
		c.persistToBackend(entry)
	}

	return nil
}

// Get returns the value under key if it is present and live. A hit
// refreshes the entry's access metadata and recency; a miss on an expired
// entry removes it first.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		cacheMisses.Inc()
		return nil, false
	}

	now := time.Now()
	if entry.IsExpired(now) {
		c.expireLocked(key)
		c.misses++
		cacheMisses.Inc()
		return nil, false
	}

	entry.touch(now)
	c.policy.onAccess(key)
	c.hits++
	cacheHits.Inc()
	c.bus.emit(EventGet, key, nil)

	return entry.Value, true
}

// Has reports whether key holds a live entry. It does not mutate access
// metadata or hit/miss statistics, but an expired entry found on the way
// is removed.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if entry.IsExpired(time.Now()) {
		c.expireLocked(key)
		return false
	}
	return true
}

// Delete removes the entry under key and reports whether one was removed.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	c.removeLocked(key)
	c.bus.emit(EventDelete, key, nil)
	c.removeFromBackend([]string{key})
	return true
}

// Clear removes every entry and resets size/count accounting to zero.
// Cumulative hit/miss/eviction counters are untouched.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}

	c.entries = make(map[string]*Entry)
	c.size = 0
	c.policy = newPolicy(c.cfg.EvictionStrategy)
	c.updateGauges()

	c.removeFromBackend(keys)
}

// GetEntry returns a copy of the full entry under key, including metadata,
// for introspection. Expiry is respected but access metadata and
// statistics are not mutated.
func (c *Cache) GetEntry(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if entry.IsExpired(time.Now()) {
		c.expireLocked(key)
		return nil, false
	}
	return entry.clone(), true
}

// UpdateTTL recomputes the entry's expiry as now + ttl. It fails with a
// ValidationError for a non-positive ttl and returns false if the key is
// absent or expired.
func (c *Cache) UpdateTTL(key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, newValidationError("ttl", "must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}

	entry, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	now := time.Now()
	if entry.IsExpired(now) {
		c.expireLocked(key)
		return false, nil
	}

	entry.Metadata.ExpiresAt = now.Add(ttl)
	if c.cfg.PersistOnSet {
		c.persistToBackend(entry)
	}
	return true, nil
}

// InvalidateByTag removes every entry carrying tag and returns the count.
func (c *Cache) InvalidateByTag(tag string) int {
	return c.invalidate(func(e *Entry) bool { return e.HasTag(tag) })
}

// InvalidateByPattern removes every entry whose key matches the given
// regular expression and returns the count. An uncompilable pattern fails
// with a ValidationError before any state mutation.
func (c *Cache) InvalidateByPattern(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return 0, &ValidationError{Field: "pattern", Message: "invalid regular expression", Err: err}
	}
	return c.invalidate(func(e *Entry) bool { return re.MatchString(e.Key) }), nil
}

// invalidate bulk-deletes entries matched by the predicate.
func (c *Cache) invalidate(match func(*Entry) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string
	for key, entry := range c.entries {
		if match(entry) {
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		c.removeLocked(key)
		c.bus.emit(EventDelete, key, nil)
	}
	c.removeFromBackend(removed)
	return len(removed)
}

// InvalidateExpired synchronously removes every currently-expired entry
// and returns the count. The background sweep runs the same body.
func (c *Cache) InvalidateExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(time.Now())
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache) Stats() Statistics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Statistics{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		ItemCount:   len(c.entries),
		SizeBytes:   c.size,
	}
}

// ResetStats zeroes the cumulative counters. ItemCount and SizeBytes keep
// reflecting the live store: they are state, not history.
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hits = 0
	c.misses = 0
	c.evictions = 0
	c.expirations = 0
}

// On registers a listener for event and returns its id. Listeners run
// synchronously, in registration order.
func (c *Cache) On(event Event, fn Listener) ListenerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus.subscribe(event, fn)
}

// Off removes the listener registered under id for event. Only future
// events are affected.
func (c *Cache) Off(event Event, id ListenerID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bus.unsubscribe(event, id)
}

// Load repopulates the cache from the configured backend. Intended to be
// called once, at startup; it is the only operation that awaits the
// backing store. Already-expired and oversized records are skipped, and
// capacity is enforced after the last record is admitted.
func (c *Cache) Load(ctx context.Context) error {
	if c.cfg.Backend == nil {
		return ErrNoBackend
	}

	records, err := c.cfg.Backend.LoadAll(ctx)
	if err != nil {
		cacheErrors.WithLabelValues("load").Inc()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}

	now := time.Now()
	for key, record := range records {
		if record.IsExpired(now) {
			continue
		}
		if record.Metadata.SizeBytes > c.cfg.MaxSizeBytes {
			continue
		}

		var value any
		if err := json.Unmarshal(record.Value, &value); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Skipping unreadable persisted value")
			continue
		}

		if old, ok := c.entries[key]; ok {
			c.size -= old.Metadata.SizeBytes
		}
		c.entries[key] = &Entry{
			Key:        key,
			Value:      value,
			Serialized: []byte(record.Value),
			Metadata: Metadata{
				CreatedAt:      record.Metadata.CreatedAt,
				ExpiresAt:      record.Metadata.ExpiresAt,
				AccessCount:    record.Metadata.AccessCount,
				LastAccessedAt: record.Metadata.LastAccessedAt,
				Tags:           append([]string(nil), record.Metadata.Tags...),
				SizeBytes:      record.Metadata.SizeBytes,
			},
		}
		c.size += record.Metadata.SizeBytes
		c.policy.onInsert(key)
	}

	c.updateGauges()
	c.enforceCapacityLocked()

	c.logger.Info().Int("items", len(c.entries)).Msg("Cache repopulated from backend")
	return nil
}

// enforceCapacityLocked evicts policy victims until both the item-count
// and size invariants hold or the store is empty.
func (c *Cache) enforceCapacityLocked() {
	for len(c.entries) > c.cfg.MaxItems || c.size > c.cfg.MaxSizeBytes {
		victim, ok := c.policy.victim()
		if !ok {
			return
		}
		c.removeLocked(victim)
		c.evictions++
		cacheEvictions.Inc()
		c.bus.emit(EventEvict, victim, nil)
		c.removeFromBackend([]string{victim})
		c.logger.Debug().Str("key", victim).Msg("Evicted entry")
	}
}

// expireLocked removes an entry found expired on touch or during a sweep.
func (c *Cache) expireLocked(key string) {
	c.removeLocked(key)
	c.expirations++
	cacheExpirations.Inc()
	c.bus.emit(EventExpire, key, nil)
	c.removeFromBackend([]string{key})
}

// removeLocked deletes the entry and its policy bookkeeping and updates
// the aggregate accounting. The caller emits the appropriate event.
func (c *Cache) removeLocked(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	c.size -= entry.Metadata.SizeBytes
	c.policy.onRemove(key)
	c.updateGauges()
}

// sweepLocked removes every entry expired at now and returns the count.
func (c *Cache) sweepLocked(now time.Time) int {
	var expired []string
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		c.expireLocked(key)
	}
	return len(expired)
}

// sweepLoop is the owned, cancellable expiry timer: one goroutine per
// cache instance, so sweeps never overlap, stopped by Close.
func (c *Cache) sweepLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.runSweep()
		}
	}
}

// runSweep executes one sweep tick. A panic inside the sweep is recovered
// so the next tick proceeds normally.
func (c *Cache) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			cacheErrors.WithLabelValues("sweep").Inc()
			c.logger.Error().Interface("panic", r).Msg("Expiry sweep panicked")
		}
	}()

	removed := c.InvalidateExpired()
	if removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("Expiry sweep removed entries")
	}
}

// updateGauges refreshes the prometheus item/size gauges.
func (c *Cache) updateGauges() {
	cacheItems.Set(float64(len(c.entries)))
	cacheSizeBytes.Set(float64(c.size))
}

// persistToBackend schedules a best-effort write-through of entry. The
// write never blocks or fails the in-memory operation.
func (c *Cache) persistToBackend(entry *Entry) {
	record := persistence.Record{
		Key:   entry.Key,
		Value: json.RawMessage(entry.Serialized),
		Metadata: persistence.RecordMetadata{
			CreatedAt:      entry.Metadata.CreatedAt,
			ExpiresAt:      entry.Metadata.ExpiresAt,
			AccessCount:    entry.Metadata.AccessCount,
			LastAccessedAt: entry.Metadata.LastAccessedAt,
			Tags:           append([]string(nil), entry.Metadata.Tags...),
			SizeBytes:      entry.Metadata.SizeBytes,
		},
		SchemaVersion: persistence.SchemaVersion,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.cfg.Backend.Persist(ctx, record.Key, record); err != nil {
			cacheErrors.WithLabelValues("persist").Inc()
			c.logger.Warn().Err(err).Str("key", record.Key).Msg("Persistence write failed")
		}
	}()
}

// removeFromBackend schedules a best-effort removal of keys from the
// backend, if one is configured.
func (c *Cache) removeFromBackend(keys []string) {
	if c.cfg.Backend == nil || len(keys) == 0 {
		return
	}
	keys = append([]string(nil), keys...)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.cfg.Backend.RemoveAll(ctx, keys); err != nil {
			cacheErrors.WithLabelValues("remove").Inc()
			c.logger.Warn().Err(err).Int("keys", len(keys)).Msg("Persistence removal failed")
		}
	}()
}
