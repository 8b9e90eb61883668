package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// keyNamespace prefixes every key so the cache can be shared with other
// services on the same Redis.
const keyNamespace = "flock:"

var (
	// ErrCacheMiss is returned when a key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheDisabled is returned by the no-op store. Callers treat it
	// exactly like a miss; the cache is advisory, never a source of truth.
	ErrCacheDisabled = errors.New("cache is disabled")
)

// Store is a best-effort TTL key/value cache. A Store failure must never
// fail the enclosing operation; callers degrade to a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key beginning with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Health(ctx context.Context) error
	Close() error
}

// HashKey builds a cache key hash from its parts, keeping long composite
// keys at a fixed length.
func HashKey(parts ...string) string {
	joined := strings.Join(parts, ":")
	sum := md5.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func namespaceKey(key string) string {
	return keyNamespace + key
}
