// Package persistence defines the durable-store contract the cache engine
// bootstraps from and writes through to, plus a Redis-backed implementation.
package persistence

import (
	"context"
	"encoding/json"
	"time"
)

// SchemaVersion is the current persisted record schema. Records carrying a
// different version are skipped on load.
const SchemaVersion = 1

// RecordMetadata mirrors the entry metadata the engine tracks in memory.
type RecordMetadata struct {
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	AccessCount    int64     `json:"access_count"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Tags           []string  `json:"tags,omitempty"`
	SizeBytes      int64     `json:"size_bytes"`
}

// Record is the durable shape of a cache entry.
type Record struct {
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	Metadata      RecordMetadata  `json:"metadata"`
	SchemaVersion int             `json:"schema_version"`
}

// IsExpired returns true if the record has expired at time now.
// A zero ExpiresAt never expires.
func (r Record) IsExpired(now time.Time) bool {
	if r.Metadata.ExpiresAt.IsZero() {
		return false
	}
	return now.After(r.Metadata.ExpiresAt)
}

// Store is the minimal contract a durable backing store must satisfy.
// All writes are best-effort from the engine's point of view: a Store
// error never fails the in-memory operation that triggered it.
type Store interface {
	// LoadAll returns every live record, keyed by cache key. Called once,
	// at startup, to repopulate the in-memory store.
	LoadAll(ctx context.Context) (map[string]Record, error)

	// Persist writes one record through to the backing store.
	Persist(ctx context.Context, key string, record Record) error

	// RemoveAll deletes the given keys from the backing store.
	RemoveAll(ctx context.Context, keys []string) error
}
