package cache

import (
	"context"
	"time"
)

// Cache is the minimal cache contract. It is used only for processor
// price/product metadata; authorization checks and metrics reads are
// never cached.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
}

const (
	ExpiryDefaultInMemory = 30 * time.Minute
	ExpiryDefaultRedis    = 5 * time.Minute
)
