// Package redis implements ports.Cache on Redis using go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/config"
)

// KeyPrefix namespaces every key written by the service.
const KeyPrefix = "ngo-directory:"

// NewClient creates a go-redis client from the service configuration.
// The connection is established lazily.
func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Cache implements ports.Cache.
type Cache struct {
	client redis.Cmdable
}

// NewCache wraps a go-redis client.
func NewCache(client redis.Cmdable) *Cache {
	return &Cache{client: client}
}

// Get returns the stored bytes, or domain.ErrNotFound on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewNotFoundError("cache entry", key)
		}

		return nil, fmt.Errorf("getting %q from redis: %w", key, err)
	}

	return val, nil
}

// Set stores value. A zero ttlSeconds keeps the key until it is deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	ttl := time.Duration(ttlSeconds) * time.Second

	if err := c.client.Set(ctx, KeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("setting %q in redis: %w", key, err)
	}

	return nil
}

// Delete removes key. Missing keys are not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("deleting %q from redis: %w", key, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (c *Cache) Name() string {
	return "redis"
}

// Check implements ports.HealthChecker.
func (c *Cache) Check(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("pinging redis: %w", err)
	}

	return nil
}
