// Package testutil provides testing utilities for the cache engine.
package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/YishenTu/sidecache/pkg/persistence"
)

// ErrStoreDown is returned by a MockStore configured to fail.
var ErrStoreDown = errors.New("mock store unavailable")

// MockStore is a configurable in-memory persistence.Store for testing.
// It records call counts and can be switched into a failing mode to
// exercise the engine's best-effort error handling.
type MockStore struct {
	mu      sync.Mutex
	records map[string]persistence.Record

	// Failure injection. Set before handing the store to a cache.
	FailLoad    bool
	FailPersist bool
	FailRemove  bool

	loadCalls    int
	persistCalls int
	removeCalls  int
	removedKeys  []string
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]persistence.Record)}
}

// Seed preloads a record, bypassing call tracking.
func (s *MockStore) Seed(record persistence.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.SchemaVersion == 0 {
		record.SchemaVersion = persistence.SchemaVersion
	}
	s.records[record.Key] = record
}

// Len returns the number of stored records.
func (s *MockStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Get returns the stored record for key, bypassing call tracking.
func (s *MockStore) Get(key string) (persistence.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[key]
	return record, ok
}

// LoadCalls returns how many times LoadAll was invoked.
func (s *MockStore) LoadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCalls
}

// PersistCalls returns how many times Persist was invoked.
func (s *MockStore) PersistCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistCalls
}

// RemoveCalls returns how many times RemoveAll was invoked.
func (s *MockStore) RemoveCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeCalls
}

// RemovedKeys returns every key passed to RemoveAll so far.
func (s *MockStore) RemovedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removedKeys...)
}

// LoadAll implements persistence.Store.
func (s *MockStore) LoadAll(ctx context.Context) (map[string]persistence.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadCalls++
	if s.FailLoad {
		return nil, ErrStoreDown
	}

	out := make(map[string]persistence.Record, len(s.records))
	for key, record := range s.records {
		out[key] = record
	}
	return out, nil
}

// Persist implements persistence.Store.
func (s *MockStore) Persist(ctx context.Context, key string, record persistence.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persistCalls++
	if s.FailPersist {
		return ErrStoreDown
	}

	s.records[key] = record
	return nil
}

// RemoveAll implements persistence.Store.
func (s *MockStore) RemoveAll(ctx context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeCalls++
	if s.FailRemove {
		return ErrStoreDown
	}

	for _, key := range keys {
		delete(s.records, key)
		s.removedKeys = append(s.removedKeys, key)
	}
	return nil
}
