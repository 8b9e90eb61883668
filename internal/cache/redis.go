package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/flocknet/flock/pkg/config"
	"github.com/flocknet/flock/pkg/logging"
)

// Redis implements Store on a Redis client.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed cache store.
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Redis connection established")

	return &Redis{client: client}, nil
}

// Get retrieves a value from cache
func (c *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, namespaceKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

// Set sets a value in cache with TTL
func (c *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.client.Set(ctx, namespaceKey(key), value, ttl).Err()
}

// Delete removes a key from cache
func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, namespaceKey(key)).Err()
}

// DeletePrefix removes every key beginning with prefix.
func (c *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, namespaceKey(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// GetJSON retrieves a value and unmarshals it into dest.
func (c *Redis) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

// SetJSON marshals value and stores it with TTL.
func (c *Redis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

// Health checks Redis health
func (c *Redis) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Redis) Close() error {
	return c.client.Close()
}
