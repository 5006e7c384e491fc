package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

var (
	defaultCache Cache
	defaultMu    sync.RWMutex
)

// SetDefault installs the process-wide cache. Called once during startup.
func SetDefault(c Cache) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultCache = c
}

func getDefault() Cache {
	defaultMu.RLock()
	c := defaultCache
	defaultMu.RUnlock()
	if c != nil {
		return c
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCache == nil {
		defaultCache = GetInMemoryCache()
	}
	return defaultCache
}

// Get fetches a typed value from the default cache. It handles both the
// in-memory cache (which stores actual objects) and the Redis cache (which
// stores JSON strings).
func Get[T any](ctx context.Context, key string) (*T, bool) {
	value, ok := getDefault().Get(ctx, key)
	if !ok || value == nil {
		return nil, false
	}

	if typed, ok := value.(*T); ok {
		return typed, true
	}

	if str, ok := value.(string); ok {
		var result T
		if err := json.Unmarshal([]byte(str), &result); err == nil {
			return &result, true
		}
	}

	return nil, false
}

// Set stores a value in the default cache with the default expiry
func Set(ctx context.Context, key string, value interface{}) {
	getDefault().Set(ctx, key, value, 0)
}

// SetWithExpiry stores a value with an explicit expiry
func SetWithExpiry(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	getDefault().Set(ctx, key, value, expiration)
}
