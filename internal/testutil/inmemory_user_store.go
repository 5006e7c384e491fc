package testutil

import (
	"context"

	"github.com/ratelink/ratelink/internal/domain/user"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.User]
}

// NewInMemoryUserStore creates a new in-memory user store
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.User](),
	}
}

func copyUser(u *user.User) *user.User {
	if u == nil {
		return nil
	}
	copied := *u
	copied.BusinessIDs = append([]string(nil), u.BusinessIDs...)
	return &copied
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	if u == nil {
		return ierr.NewError("user cannot be nil").Mark(ierr.ErrValidation)
	}
	if u.ID == "" {
		u.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_USER)
	}
	if existing := s.InMemoryStore.List(ctx, func(x *user.User) bool {
		return x.Email == u.Email
	}); len(existing) > 0 {
		return ierr.NewError("an account with this email already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, u.ID, copyUser(u))
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	u, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("user not found").Mark(ierr.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *InMemoryUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	matches := s.InMemoryStore.List(ctx, func(u *user.User) bool {
		return u.Email == email
	})
	if len(matches) == 0 {
		return nil, ierr.NewError("user not found").Mark(ierr.ErrNotFound)
	}
	return copyUser(matches[0]), nil
}

func (s *InMemoryUserStore) Update(ctx context.Context, u *user.User) error {
	return s.InMemoryStore.Update(ctx, u.ID, copyUser(u))
}
