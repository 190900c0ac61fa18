package cache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/YishenTu/sidecache/pkg/persistence"
)

// Strategy identifies an eviction strategy.
type Strategy string

const (
	// LRU evicts the entry with the oldest last access.
	LRU Strategy = "LRU"

	// LFU evicts the entry with the lowest access frequency,
	// ties broken toward the oldest insertion.
	LFU Strategy = "LFU"

	// FIFO evicts the entry with the oldest insertion, regardless of access.
	FIFO Strategy = "FIFO"
)

// Config holds the cache configuration.
type Config struct {
	// MaxSizeBytes is the capacity limit on the summed serialized size of
	// all live entries. Must be > 0.
	MaxSizeBytes int64

	// MaxItems is the capacity limit on the number of live entries.
	// Must be > 0.
	MaxItems int

	// DefaultTTL is applied to entries stored without an explicit TTL.
	// Must be > 0.
	DefaultTTL time.Duration

	// EvictionStrategy selects the eviction policy (LRU, LFU or FIFO).
	EvictionStrategy Strategy

	// CleanupInterval is the period of the background expiry sweep.
	// Must be > 0.
	CleanupInterval time.Duration

	// PersistOnSet enables best-effort write-through to Backend after
	// every successful Set. Requires Backend.
	PersistOnSet bool

	// Backend is the optional durable store the cache bootstraps from
	// (Load) and writes through to.
	Backend persistence.Store

	// Logger is the structured logger used for engine events.
	// Defaults to a disabled logger.
	Logger zerolog.Logger
}

// DefaultConfig returns a safe default configuration: 10 MiB, 1000 items,
// 5 minute TTL, LRU eviction, 1 minute sweep interval, no persistence.
func DefaultConfig() Config {
	return Config{
		MaxSizeBytes:     10 << 20,
		MaxItems:         1000,
		DefaultTTL:       5 * time.Minute,
		EvictionStrategy: LRU,
		CleanupInterval:  time.Minute,
		Logger:           zerolog.Nop(),
	}
}

// Validate checks the configuration and returns a ValidationError on the
// first violation.
func (c Config) Validate() error {
	if c.MaxSizeBytes <= 0 {
		return newValidationError("MaxSizeBytes", fmt.Sprintf("must be positive, got %d", c.MaxSizeBytes))
	}
	if c.MaxItems <= 0 {
		return newValidationError("MaxItems", fmt.Sprintf("must be positive, got %d", c.MaxItems))
	}
	if c.DefaultTTL <= 0 {
		return newValidationError("DefaultTTL", fmt.Sprintf("must be positive, got %v", c.DefaultTTL))
	}
	if c.CleanupInterval <= 0 {
		return newValidationError("CleanupInterval", fmt.Sprintf("must be positive, got %v", c.CleanupInterval))
	}
	switch c.EvictionStrategy {
	case LRU, LFU, FIFO:
	default:
		return newValidationError("EvictionStrategy", fmt.Sprintf("unknown strategy %q", c.EvictionStrategy))
	}
	if c.PersistOnSet && c.Backend == nil {
		return newValidationError("PersistOnSet", "requires a Backend")
	}
	return nil
}

// Option customizes a single Set call.
type Option func(*setOptions)

type setOptions struct {
	ttl    time.Duration
	ttlSet bool
	tags   []string
}

// WithTTL overrides the configured DefaultTTL for this entry.
// A non-positive TTL fails the Set with a ValidationError.
func WithTTL(ttl time.Duration) Option {
	return func(o *setOptions) {
		o.ttl = ttl
		o.ttlSet = true
	}
}

// WithTags attaches tags to the entry for bulk invalidation.
func WithTags(tags ...string) Option {
	return func(o *setOptions) {
		o.tags = tags
	}
}
