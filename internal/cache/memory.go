package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Memory implements Store on a process-local map with per-key expiry.
// Used by tests and single-node deployments without Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemory creates an in-memory cache store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (c *Memory) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[namespaceKey(key)]
	if !ok {
		return "", ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(c.entries, namespaceKey(key))
		return "", ErrCacheMiss
	}
	return entry.value, nil
}

func (c *Memory) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		raw = fmt.Sprintf("%v", v)
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[namespaceKey(key)] = memoryEntry{value: raw, expiresAt: expiresAt}
	return nil
}

func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, namespaceKey(key))
	return nil
}

func (c *Memory) DeletePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	full := namespaceKey(prefix)
	for k := range c.entries {
		if strings.HasPrefix(k, full) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *Memory) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (c *Memory) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

func (c *Memory) Health(ctx context.Context) error {
	return nil
}

func (c *Memory) Close() error {
	return nil
}

// Len reports the number of live entries. Test helper.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
