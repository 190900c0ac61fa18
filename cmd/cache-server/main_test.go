package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YishenTu/sidecache/pkg/cache"
)

func newTestEngine(t *testing.T) *cache.Cache {
	t.Helper()

	cfg := cache.DefaultConfig()
	cfg.MaxItems = 10
	engine, err := cache.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got %q", w.Body.String())
	}
}

func TestCacheHandler_PutGetDelete(t *testing.T) {
	engine := newTestEngine(t)
	handler := cacheHandler(engine)

	// PUT
	req := httptest.NewRequest("PUT", "/cache/greeting?ttl=1m&tags=demo", strings.NewReader(`"hello"`))
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("PUT: expected status 204, got %d", w.Code)
	}

	// GET
	req = httptest.NewRequest("GET", "/cache/greeting", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET: expected status 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `"hello"` {
		t.Errorf("GET: expected body %q, got %q", `"hello"`, got)
	}

	// DELETE
	req = httptest.NewRequest("DELETE", "/cache/greeting", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE: expected status 204, got %d", w.Code)
	}

	// GET after DELETE
	req = httptest.NewRequest("GET", "/cache/greeting", nil)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("GET after DELETE: expected status 404, got %d", w.Code)
	}
}

func TestCacheHandler_InvalidTTL(t *testing.T) {
	engine := newTestEngine(t)
	handler := cacheHandler(engine)

	req := httptest.NewRequest("PUT", "/cache/k?ttl=-5s", strings.NewReader(`1`))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for negative ttl, got %d", w.Code)
	}
}

func TestStatsHandler(t *testing.T) {
	engine := newTestEngine(t)

	if err := engine.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	engine.Get("k")
	engine.Get("missing")

	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	statsHandler(engine)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var stats struct {
		Hits    uint64  `json:"hits"`
		Misses  uint64  `json:"misses"`
		HitRate float64 `json:"hit_rate"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to parse stats: %v", err)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Expected hits=1 misses=1, got hits=%d misses=%d", stats.Hits, stats.Misses)
	}
	if stats.HitRate != 0.5 {
		t.Errorf("Expected hit_rate=0.5, got %v", stats.HitRate)
	}
}

func TestInvalidateHandler_ByTag(t *testing.T) {
	engine := newTestEngine(t)

	engine.Set("x", 1, cache.WithTags("u1"))
	engine.Set("y", 2, cache.WithTags("u1"))
	engine.Set("z", 3, cache.WithTags("u2"))

	req := httptest.NewRequest("POST", "/invalidate?tag=u1", nil)
	w := httptest.NewRecorder()
	invalidateHandler(engine)(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["removed"] != 2 {
		t.Errorf("Expected removed=2, got %d", resp["removed"])
	}
	if !engine.Has("z") {
		t.Error("Entry z should survive tag invalidation")
	}
}

func TestInvalidateHandler_BadPattern(t *testing.T) {
	engine := newTestEngine(t)

	req := httptest.NewRequest("POST", "/invalidate?pattern=%5B", nil) // "["
	w := httptest.NewRecorder()
	invalidateHandler(engine)(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad pattern, got %d", w.Code)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_MAX_ITEMS", "42")
	t.Setenv("CACHE_DEFAULT_TTL", "30s")
	t.Setenv("CACHE_STRATEGY", "lfu")

	cfg, err := configFromEnv()
	if err != nil {
		t.Fatalf("configFromEnv failed: %v", err)
	}
	if cfg.MaxItems != 42 {
		t.Errorf("Expected MaxItems=42, got %d", cfg.MaxItems)
	}
	if cfg.DefaultTTL != 30*time.Second {
		t.Errorf("Expected DefaultTTL=30s, got %v", cfg.DefaultTTL)
	}
	if cfg.EvictionStrategy != cache.LFU {
		t.Errorf("Expected LFU strategy, got %s", cfg.EvictionStrategy)
	}
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	t.Setenv("CACHE_MAX_ITEMS", "0")

	if _, err := configFromEnv(); err == nil {
		t.Error("Expected error for zero max items")
	}
}
