package cache

import (
	"github.com/ratelink/ratelink/internal/config"
	"github.com/ratelink/ratelink/internal/logger"
	"github.com/ratelink/ratelink/internal/redis"
)

// CacheType represents the type of cache to use
type CacheType string

const (
	CacheTypeInMemory CacheType = "inmemory"
	CacheTypeRedis    CacheType = "redis"
)

// Initialize builds the cache selected by configuration and installs it as
// the process default
func Initialize(cfg *config.Configuration, redisClient *redis.Client, log *logger.Logger) Cache {
	var c Cache

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		if redisClient != nil {
			c = NewRedisCache(redisClient, log)
			break
		}
		log.Warnw("redis cache requested but no redis client available, falling back to in-memory")
		fallthrough
	case CacheTypeInMemory:
		fallthrough
	default:
		c = GetInMemoryCache()
	}

	SetDefault(c)
	log.Infow("cache initialized", "type", cfg.Cache.Type)
	return c
}
