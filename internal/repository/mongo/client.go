package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ratelink/ratelink/internal/config"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/logger"
)

const (
	collBusinesses  = "businesses"
	collUsers       = "users"
	collActivityLog = "activity_log"
	collOutbox      = "outbox"

	connectTimeout = 10 * time.Second
)

// Client wraps the process-wide mongo connection pool. It is constructed
// once at startup and shared by every repository.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	logger *logger.Logger
}

// NewClient connects to MongoDB and verifies the connection
func NewClient(ctx context.Context, cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to MongoDB").
			Mark(ierr.ErrDatabase)
	}

	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		return nil, ierr.WithError(err).
			WithHint("MongoDB is unreachable").
			Mark(ierr.ErrDatabase)
	}

	c := &Client{
		client: client,
		db:     client.Database(cfg.Mongo.Database),
		logger: log,
	}

	if err := c.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	log.Infow("connected to mongodb", "database", cfg.Mongo.Database)
	return c, nil
}

// ensureIndexes creates the indexes the repositories rely on. The unique
// sparse index on activity_log.event_id is what makes webhook redelivery
// a no-op.
func (c *Client) ensureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		collBusinesses: {
			{
				Keys:    bson.D{{Key: "subdomain", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{
				Keys: bson.D{{Key: "subscription.stripe_customer_id", Value: 1}},
			},
		},
		collActivityLog: {
			{
				Keys:    bson.D{{Key: "event_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true),
			},
			{
				Keys: bson.D{{Key: "type", Value: 1}, {Key: "timestamp", Value: -1}},
			},
		},
		collOutbox: {
			{
				Keys: bson.D{{Key: "state", Value: 1}, {Key: "created_at", Value: 1}},
			},
		},
	}

	for coll, models := range specs {
		if _, err := c.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create indexes").
				WithReportableDetails(map[string]interface{}{
					"collection": coll,
				}).
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

// Disconnect closes the connection pool
func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}
