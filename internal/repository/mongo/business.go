package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ratelink/ratelink/internal/domain/business"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

type businessRepository struct {
	client *Client
}

// NewBusinessRepository creates a mongo backed business repository
func NewBusinessRepository(client *Client) business.Repository {
	return &businessRepository{client: client}
}

func (r *businessRepository) Create(ctx context.Context, b *business.Business) error {
	if b.ID == "" {
		b.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUSINESS)
	}
	if b.BaseModel.CreatedAt.IsZero() {
		b.BaseModel = types.GetDefaultBaseModel(ctx)
	}

	_, err := r.client.collection(collBusinesses).InsertOne(ctx, b)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ierr.WithError(err).
				WithHint("A business with this subdomain already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create business").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *businessRepository) Get(ctx context.Context, id string) (*business.Business, error) {
	var b business.Business
	err := r.client.collection(collBusinesses).FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("business not found").
				WithHint("The business does not exist").
				WithReportableDetails(map[string]interface{}{
					"business_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load business").
			Mark(ierr.ErrDatabase)
	}
	return &b, nil
}

func (r *businessRepository) GetBySubdomain(ctx context.Context, subdomain string) (*business.Business, error) {
	var b business.Business
	err := r.client.collection(collBusinesses).FindOne(ctx, bson.M{"subdomain": subdomain}).Decode(&b)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("business not found").
				WithReportableDetails(map[string]interface{}{
					"subdomain": subdomain,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load business").
			Mark(ierr.ErrDatabase)
	}
	return &b, nil
}

// UpdateSubscription writes the embedded subscription back under a
// compare-and-swap on the version field. A matched count of zero with an
// existing document means a concurrent writer won the race.
func (r *businessRepository) UpdateSubscription(ctx context.Context, b *business.Business) error {
	now := time.Now().UTC()
	filter := bson.M{"_id": b.ID, "version": b.Version}
	update := bson.M{
		"$set": bson.M{
			"subscription": b.Subscription,
			"updated_at":   now,
			"updated_by":   types.GetUserID(ctx),
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.client.collection(collBusinesses).UpdateOne(ctx, filter, update)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	if res.MatchedCount == 0 {
		count, cerr := r.client.collection(collBusinesses).CountDocuments(ctx, bson.M{"_id": b.ID})
		if cerr != nil {
			return ierr.WithError(cerr).
				WithHint("Failed to update subscription").
				Mark(ierr.ErrDatabase)
		}
		if count == 0 {
			return ierr.NewError("business not found").
				WithReportableDetails(map[string]interface{}{
					"business_id": b.ID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return ierr.NewError("subscription was modified concurrently").
			WithHint("The record changed since it was read, retry the operation").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
				"version":     b.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	b.Version++
	b.UpdatedAt = now
	return nil
}

func (r *businessRepository) List(ctx context.Context, filter *business.Filter) ([]*business.Business, error) {
	cursor, err := r.client.collection(collBusinesses).Find(ctx, buildBusinessQuery(filter))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list businesses").
			Mark(ierr.ErrDatabase)
	}
	defer cursor.Close(ctx)

	var out []*business.Business
	if err := cursor.All(ctx, &out); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to decode businesses").
			Mark(ierr.ErrDatabase)
	}
	return out, nil
}

func (r *businessRepository) Count(ctx context.Context, filter *business.Filter) (int64, error) {
	count, err := r.client.collection(collBusinesses).CountDocuments(ctx, buildBusinessQuery(filter))
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count businesses").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func buildBusinessQuery(filter *business.Filter) bson.M {
	query := bson.M{}
	if filter == nil {
		return query
	}
	if filter.Active != nil {
		query["active"] = *filter.Active
	}
	if filter.CreatedAfter != nil {
		query["created_at"] = bson.M{"$gte": *filter.CreatedAfter}
	}
	if filter.PausedAfter != nil || filter.PausedBefore != nil {
		window := bson.M{}
		if filter.PausedAfter != nil {
			window["$gte"] = *filter.PausedAfter
		}
		if filter.PausedBefore != nil {
			window["$lt"] = *filter.PausedBefore
		}
		query["subscription.paused_at"] = window
	}
	if filter.StripeCustomer != "" {
		query["subscription.stripe_customer_id"] = filter.StripeCustomer
	}
	return query
}
