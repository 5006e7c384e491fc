package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ratelink/ratelink/internal/domain/user"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

type userRepository struct {
	client *Client
}

// NewUserRepository creates a mongo backed user repository
func NewUserRepository(client *Client) user.Repository {
	return &userRepository{client: client}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		u.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER)
	}
	if u.BaseModel.CreatedAt.IsZero() {
		u.BaseModel = types.GetDefaultBaseModel(ctx)
	}

	_, err := r.client.collection(collUsers).InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ierr.WithError(err).
				WithHint("An account with this email already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create user").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	u.UpdatedBy = types.GetUserID(ctx)

	res, err := r.client.collection(collUsers).ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user").
			Mark(ierr.ErrDatabase)
	}
	if res.MatchedCount == 0 {
		return ierr.NewError("user not found").
			WithReportableDetails(map[string]interface{}{
				"user_id": u.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	var u user.User
	err := r.client.collection(collUsers).FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ierr.NewError("user not found").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to load user").
			Mark(ierr.ErrDatabase)
	}
	return &u, nil
}
