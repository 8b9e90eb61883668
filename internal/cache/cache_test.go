package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"test"},
		},
		{
			name:  "multiple parts",
			parts: []string{"feed", "home", "42", "1", "20"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestNamespaceKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "flock:test",
		},
		{
			name:     "key with colon",
			key:      "feed:home",
			expected: "flock:feed:home",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "flock:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() on missing key = %v, want ErrCacheMiss", err)
	}

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, err := store.Get(ctx, "k")
	if err != nil || val != "v" {
		t.Errorf("Get() = %q, %v; want %q, nil", val, err, "v")
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after Delete() = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Set(ctx, "short", "v", time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := store.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry should miss, got %v", err)
	}
}

func TestMemoryStoreDeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	keys := []string{"feed:home:1", "feed:home:2", "feed:popular:1"}
	for _, k := range keys {
		if err := store.Set(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	if err := store.DeletePrefix(ctx, "feed:home:"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}

	if _, err := store.Get(ctx, "feed:home:1"); !errors.Is(err, ErrCacheMiss) {
		t.Error("feed:home:1 should be deleted")
	}
	if _, err := store.Get(ctx, "feed:home:2"); !errors.Is(err, ErrCacheMiss) {
		t.Error("feed:home:2 should be deleted")
	}
	if _, err := store.Get(ctx, "feed:popular:1"); err != nil {
		t.Errorf("feed:popular:1 should survive, got %v", err)
	}
}

func TestMemoryStoreJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	in := map[string]int{"a": 1, "b": 2}
	if err := store.SetJSON(ctx, "j", in, time.Minute); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var out map[string]int
	if err := store.GetJSON(ctx, "j", &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Errorf("GetJSON() = %v, want %v", out, in)
	}
}

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	store := NewNoop()

	if err := store.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("Noop Set() error = %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Noop Get() = %v, want ErrCacheDisabled", err)
	}
	if err := store.DeletePrefix(ctx, "k"); err != nil {
		t.Errorf("Noop DeletePrefix() error = %v", err)
	}
	if err := store.Health(ctx); err != nil {
		t.Errorf("Noop Health() error = %v", err)
	}
}
