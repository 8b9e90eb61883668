package cache

import (
	"context"
	"time"
)

// Noop implements Store for deployments without a cache. Every read is a
// miss and every write succeeds silently, so call sites never branch on
// whether caching is enabled.
type Noop struct{}

// NewNoop creates a no-op cache store.
func NewNoop() *Noop {
	return &Noop{}
}

func (Noop) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheDisabled
}

func (Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (Noop) Delete(ctx context.Context, key string) error {
	return nil
}

func (Noop) DeletePrefix(ctx context.Context, prefix string) error {
	return nil
}

func (Noop) GetJSON(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheDisabled
}

func (Noop) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (Noop) Health(ctx context.Context) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
