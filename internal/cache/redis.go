package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/redis"
)

// RedisCache backs the cache with a shared Redis instance. Values are
// stored as JSON strings.
type RedisCache struct {
	client *redis.Client
	logger *logger.Logger
}

// NewRedisCache creates a Redis backed cache over the shared client
func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{client: client, logger: log}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration <= 0 {
		expiration = ExpiryDefaultRedis
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warnw("failed to marshal cache value", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, string(data), expiration).Err(); err != nil {
		c.logger.Warnw("failed to set cache value", "key", key, "error", err)
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnw("failed to delete cache key", "key", key, "error", err)
	}
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warnw("failed to delete cache key", "key", iter.Val(), "error", err)
		}
	}
}
