package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ratelink/ratelink/internal/domain/outbox"
	ierr "github.com/ratelink/ratelink/internal/errors"
)

type outboxRepository struct {
	client *Client
}

// NewOutboxRepository creates a mongo backed outbox repository
func NewOutboxRepository(client *Client) outbox.Repository {
	return &outboxRepository{client: client}
}

func (r *outboxRepository) Create(ctx context.Context, intent *outbox.Intent) error {
	_, err := r.client.collection(collOutbox).InsertOne(ctx, intent)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record outbox intent").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *outboxRepository) Get(ctx context.Context, id string) (*outbox.Intent, error) {
	var intent outbox.Intent
	err := r.client.collection(collOutbox).FindOne(ctx, bson.M{"_id": id}).Decode(&intent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("outbox intent not found").
				WithReportableDetails(map[string]interface{}{
					"intent_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load outbox intent").
			Mark(ierr.ErrDatabase)
	}
	return &intent, nil
}

func (r *outboxRepository) Update(ctx context.Context, intent *outbox.Intent) error {
	res, err := r.client.collection(collOutbox).ReplaceOne(ctx, bson.M{"_id": intent.ID}, intent)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update outbox intent").
			Mark(ierr.ErrDatabase)
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("outbox intent not found").
			WithReportableDetails(map[string]interface{}{
				"intent_id": intent.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *outboxRepository) ListUnresolved(ctx context.Context, limit int) ([]*outbox.Intent, error) {
	query := bson.M{"state": bson.M{"$in": []outbox.IntentState{outbox.StatePending, outbox.StateDivergent}}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.client.collection(collOutbox).Find(ctx, query, opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list unresolved intents").
			Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var out []*outbox.Intent
	if err := cursor.All(ctx, &out); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode outbox intents").
			Mark(ierr.ErrDatabase)
	}
	return out, nil
}
