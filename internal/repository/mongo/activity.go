package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ratelink/ratelink/internal/domain/activity"
	ierr "github.com/ratelink/ratelink/internal/errors"
)

type activityRepository struct {
	client *Client
}

// NewActivityRepository creates a mongo backed activity log repository
func NewActivityRepository(client *Client) activity.Repository {
	return &activityRepository{client: client}
}

// Append inserts the entry. The unique sparse index on event_id turns a
// webhook redelivery into a duplicate key error, surfaced as
// ErrAlreadyExists so the caller can drop it.
func (r *activityRepository) Append(ctx context.Context, e *activity.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := r.client.collection(collActivityLog).InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ierr.WithError(err).
				WithHint("This event was already recorded").
				WithReportableDetails(map[string]interface{}{
					"event_id": e.EventID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to append activity entry").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *activityRepository) ExistsByEventID(ctx context.Context, eventID string) (bool, error) {
	count, err := r.client.collection(collActivityLog).CountDocuments(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to check activity log").
			Mark(ierr.ErrDatabase)
	}
	return count > 0, nil
}

func (r *activityRepository) List(ctx context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter != nil && filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.client.collection(collActivityLog).Find(ctx, buildActivityQuery(filter), opts)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list activity entries").
			Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var out []*activity.Entry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode activity entries").
			Mark(ierr.ErrDatabase)
	}
	return out, nil
}

func buildActivityQuery(filter *activity.Filter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}
	if filter.BusinessID != "" {
		query["business_id"] = filter.BusinessID
	}
	if len(filter.Types) > 0 {
		query["type"] = bson.M{"$in": filter.Types}
	}
	if filter.Since != nil || filter.Until != nil {
		window := bson.M{}
		if filter.Since != nil {
			window["$gte"] = *filter.Since
		}
		if filter.Until != nil {
			window["$lt"] = *filter.Until
		}
		query["timestamp"] = window
	}
	return query
}
