package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// defaultKeyPrefix namespaces cache records in Redis.
	defaultKeyPrefix = "sidecache:"

	// scanBatchSize is the SCAN count hint and MGET batch size for LoadAll.
	scanBatchSize = 100

	// connectAttempts bounds the bootstrap connect retry loop.
	connectAttempts = 3

	// connectBackoff is the initial backoff between connect attempts,
	// doubled per attempt.
	connectBackoff = 500 * time.Millisecond
)

// RedisStore is a Store backed by Redis. Records are stored as JSON under
// a namespaced key with a native Redis TTL mirroring ExpiresAt, so the
// durable store prunes itself.
type RedisStore struct {
	redis  *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed Store.
func NewRedisStore(redisClient *redis.Client, logger zerolog.Logger) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: defaultKeyPrefix,
		logger: logger,
	}
}

// Connect verifies the Redis connection with bounded exponential backoff.
// Intended for the one-time bootstrap before Load.
func (s *RedisStore) Connect(ctx context.Context) error {
	backoff := connectBackoff
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = s.redis.Ping(ctx).Err(); err == nil {
			return nil
		}
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Redis connect failed")
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("redis connect: %w", err)
}

// LoadAll scans the namespace in cursor batches and returns every record
// that parses with the current schema version. Corrupt or foreign-version
// records are skipped, not fatal.
func (s *RedisStore) LoadAll(ctx context.Context) (map[string]Record, error) {
	records := make(map[string]Record)

	var cursor uint64
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, s.prefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			values, err := s.redis.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("redis mget: %w", err)
			}
			for i, raw := range values {
				data, ok := raw.(string)
				if !ok {
					// Key vanished between SCAN and MGET.
					continue
				}
				var record Record
				if err := json.Unmarshal([]byte(data), &record); err != nil {
					s.logger.Warn().Err(err).Str("key", keys[i]).Msg("Skipping corrupt record")
					continue
				}
				if record.SchemaVersion != SchemaVersion {
					s.logger.Warn().
						Str("key", keys[i]).
						Int("schema_version", record.SchemaVersion).
						Msg("Skipping record with unknown schema version")
					continue
				}
				records[record.Key] = record
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return records, nil
}

// Persist writes one record as JSON. The Redis TTL mirrors the record's
// expiry; records that never expire are stored without one.
func (s *RedisStore) Persist(ctx context.Context, key string, record Record) error {
	record.SchemaVersion = SchemaVersion

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var ttl time.Duration
	if !record.Metadata.ExpiresAt.IsZero() {
		ttl = time.Until(record.Metadata.ExpiresAt)
		if ttl <= 0 {
			// Already expired, don't persist.
			return nil
		}
	}

	if err := s.redis.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// RemoveAll deletes the given cache keys from Redis.
func (s *RedisStore) RemoveAll(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = s.prefix + key
	}
	if err := s.redis.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
