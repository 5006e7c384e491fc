package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
)

// Client wraps the shared go-redis client. It is created once at process
// start and reused everywhere.
type Client struct {
	*redis.Client
	logger *logger.Logger
}

// NewClient connects to Redis and verifies the connection
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to Redis").
			Mark(ierr.ErrSystem)
	}

	log.Infow("redis client connected", "address", cfg.Redis.Address)
	return &Client{Client: rdb, logger: log}, nil
}
