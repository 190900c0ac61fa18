// Package cache provides a generic in-memory cache engine with pluggable
// eviction strategies, TTL expiration and optional durable persistence.
package cache

import (
	"time"
)

// Metadata holds the bookkeeping attached to every cache entry.
type Metadata struct {
	// CreatedAt is when the entry was stored (reset on re-Set).
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the entry becomes stale. The zero time means the
	// entry never expires.
	ExpiresAt time.Time `json:"expires_at"`

	// AccessCount is the number of cache hits recorded for this entry.
	AccessCount int64 `json:"access_count"`

	// LastAccessedAt is when the entry was last read (or created).
	LastAccessedAt time.Time `json:"last_accessed_at"`

	// Tags are caller-assigned labels used for bulk invalidation.
	Tags []string `json:"tags,omitempty"`

	// SizeBytes is the size of the serialized value.
	SizeBytes int64 `json:"size_bytes"`
}

// Entry represents a cached value together with its metadata.
type Entry struct {
	// Key is the unique cache key.
	Key string `json:"key"`

	// Value is the original payload handed to Set.
	Value any `json:"-"`

	// Serialized is the JSON form of Value. It is what SizeBytes measures
	// and what the persistence adapter stores.
	Serialized []byte `json:"value"`

	// Metadata is the entry bookkeeping.
	Metadata Metadata `json:"metadata"`
}

// IsExpired returns true if the entry has expired at time now.
// Entries with a zero ExpiresAt never expire.
func (e *Entry) IsExpired(now time.Time) bool {
	if e.Metadata.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.Metadata.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired and -1 for entries that never expire.
func (e *Entry) TTL() time.Duration {
	if e.Metadata.ExpiresAt.IsZero() {
		return -1
	}
	ttl := time.Until(e.Metadata.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// HasTag returns true if the entry carries the given tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// touch records a cache hit on the entry.
func (e *Entry) touch(now time.Time) {
	e.Metadata.AccessCount++
	e.Metadata.LastAccessedAt = now
}

// clone returns a copy of the entry safe to hand out for introspection.
// The tag slice is copied; Value and Serialized are shared.
func (e *Entry) clone() *Entry {
	out := *e
	if len(e.Metadata.Tags) > 0 {
		out.Metadata.Tags = append([]string(nil), e.Metadata.Tags...)
	}
	return &out
}
