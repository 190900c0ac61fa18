// cache-server exposes a single sidecache engine instance over HTTP,
// with Prometheus metrics and optional Redis persistence.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/YishenTu/sidecache/pkg/cache"
	"github.com/YishenTu/sidecache/pkg/logging"
	"github.com/YishenTu/sidecache/pkg/persistence"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})

	port := getEnv("PORT", "8080")
	redisURL := getEnv("REDIS_URL", "")

	cfg, err := configFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	cfg.Logger = logging.NewLogger("cache")

	// Optional Redis persistence
	if redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisURL})
		store := persistence.NewRedisStore(redisClient, logging.NewLogger("persistence"))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := store.Connect(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Str("redis_url", redisURL).Msg("Failed to connect to Redis")
		}
		cancel()
		logger.Info().Str("redis_url", redisURL).Msg("Connected to Redis")

		cfg.Backend = store
		cfg.PersistOnSet = true
	}

	engine, err := cache.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create cache")
	}
	defer engine.Close()

	if cfg.Backend != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := engine.Load(ctx); err != nil {
			logger.Warn().Err(err).Msg("Bootstrap from backend failed, starting empty")
		}
		cancel()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/cache/", cacheHandler(engine))
	mux.HandleFunc("/stats", statsHandler(engine))
	mux.HandleFunc("/invalidate", invalidateHandler(engine))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting cache server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
}

// configFromEnv builds the cache configuration from environment variables,
// starting from the library defaults.
func configFromEnv() (cache.Config, error) {
	cfg := cache.DefaultConfig()

	if v := os.Getenv("CACHE_MAX_SIZE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, err
		}
		cfg.MaxSizeBytes = n
	}
	if v := os.Getenv("CACHE_MAX_ITEMS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
		cfg.MaxItems = n
	}
	if v := os.Getenv("CACHE_DEFAULT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, err
		}
		cfg.DefaultTTL = d
	}
	if v := os.Getenv("CACHE_CLEANUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, err
		}
		cfg.CleanupInterval = d
	}
	if v := os.Getenv("CACHE_STRATEGY"); v != "" {
		cfg.EvictionStrategy = cache.Strategy(strings.ToUpper(v))
	}

	return cfg, cfg.Validate()
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// cacheHandler serves GET/PUT/DELETE /cache/{key}.
//
// PUT accepts a JSON body as the value, an optional ?ttl=<duration> and
// ?tags=a,b,c.
func cacheHandler(engine *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, "/cache/")
		if key == "" {
			http.Error(w, "missing key", http.StatusBadRequest)
			return
		}

		switch r.Method {
		case http.MethodGet:
			entry, ok := engine.GetEntry(key)
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			// Count the read as a hit and refresh recency.
			engine.Get(key)
			w.Header().Set("Content-Type", "application/json")
			w.Write(entry.Serialized)

		case http.MethodPut:
			var value any
			if err := json.NewDecoder(r.Body).Decode(&value); err != nil {
				http.Error(w, "invalid JSON body", http.StatusBadRequest)
				return
			}

			var opts []cache.Option
			if ttlStr := r.URL.Query().Get("ttl"); ttlStr != "" {
				ttl, err := time.ParseDuration(ttlStr)
				if err != nil {
					http.Error(w, "invalid ttl", http.StatusBadRequest)
					return
				}
				opts = append(opts, cache.WithTTL(ttl))
			}
			if tags := r.URL.Query().Get("tags"); tags != "" {
				opts = append(opts, cache.WithTags(strings.Split(tags, ",")...))
			}

			if err := engine.Set(key, value, opts...); err != nil {
				status := http.StatusInternalServerError
				if cache.IsValidationError(err) {
					status = http.StatusBadRequest
				}
				http.Error(w, err.Error(), status)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		case http.MethodDelete:
			if !engine.Delete(key) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// statsHandler serves GET /stats as JSON, including derived rates.
func statsHandler(engine *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		stats := engine.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			cache.Statistics
			HitRate  float64 `json:"hit_rate"`
			MissRate float64 `json:"miss_rate"`
		}{stats, stats.HitRate(), stats.MissRate()})
	}
}

// invalidateHandler serves POST /invalidate?tag=<tag> or ?pattern=<regexp>,
// or with neither parameter removes all expired entries.
func invalidateHandler(engine *cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var removed int
		switch {
		case r.URL.Query().Get("tag") != "":
			removed = engine.InvalidateByTag(r.URL.Query().Get("tag"))
		case r.URL.Query().Get("pattern") != "":
			var err error
			removed, err = engine.InvalidateByPattern(r.URL.Query().Get("pattern"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		default:
			removed = engine.InvalidateExpired()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"removed": removed})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
