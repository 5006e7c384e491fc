package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// InMemoryCache wraps go-cache for single process deployments
type InMemoryCache struct {
	store *gocache.Cache
}

var (
	inMemoryInstance *InMemoryCache
	inMemoryOnce     sync.Once
)

// InitializeInMemoryCache initializes the in-memory cache singleton
func InitializeInMemoryCache() {
	inMemoryOnce.Do(func() {
		inMemoryInstance = &InMemoryCache{
			store: gocache.New(ExpiryDefaultInMemory, 10*time.Minute),
		}
	})
}

// GetInMemoryCache returns the in-memory cache singleton
func GetInMemoryCache() *InMemoryCache {
	InitializeInMemoryCache()
	return inMemoryInstance
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration <= 0 {
		expiration = ExpiryDefaultInMemory
	}
	c.store.Set(key, value, expiration)
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) {
	c.store.Delete(key)
}

func (c *InMemoryCache) DeleteByPrefix(ctx context.Context, prefix string) {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
}
