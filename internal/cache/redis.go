package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Hecoloko/procurement-app-sub000/config"
)

// RedisCache provides caching using Redis
type RedisCache struct {
	client  *redis.Client
	enabled bool
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		// Degrade to a disabled cache so callers can keep running
		return &RedisCache{enabled: false}, errors.Wrap(err, "failed to connect to Redis")
	}

	return &RedisCache{
		client:  client,
		enabled: true,
	}, nil
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string, value interface{}) error {
	if !c.enabled {
		return errors.New("cache is disabled")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return errors.Wrap(err, "key not found in cache")
		}
		return errors.Wrap(err, "failed to get value from Redis")
	}

	if err := json.Unmarshal(data, value); err != nil {
		return errors.Wrap(err, "failed to unmarshal cached value")
	}

	return nil
}

// Set stores a value in cache with optional expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !c.enabled {
		return errors.New("cache is disabled")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value for caching")
	}

	if err := c.client.Set(ctx, key, data, expiration).Err(); err != nil {
		return errors.Wrap(err, "failed to set value in Redis")
	}

	return nil
}

// ClaimSpawnMarker atomically claims the idempotency marker for a template
// spawn on a given day. It returns true when this caller claimed the
// marker, false when another run already did. The marker is best-effort:
// LastRunAt on the template remains the source of truth.
func (c *RedisCache) ClaimSpawnMarker(ctx context.Context, templateID uuid.UUID, day time.Time) (bool, error) {
	if !c.enabled {
		return true, nil
	}

	key := SpawnMarkerKey(templateID, day)
	claimed, err := c.client.SetNX(ctx, key, 1, 48*time.Hour).Result()
	if err != nil {
		return false, errors.Wrap(err, "failed to claim spawn marker")
	}
	return claimed, nil
}

// SpawnMarkerKey generates the idempotency key for a template spawn
func SpawnMarkerKey(templateID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("spawn:%s:%s", templateID.String(), day.Format("2006-01-02"))
}

// GraphCacheKey generates a cache key for an assembled company graph
func GraphCacheKey(companyID uuid.UUID) string {
	return fmt.Sprintf("graph:%s", companyID.String())
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}

	return c.client.Close()
}
