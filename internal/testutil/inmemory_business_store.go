package testutil

import (
	"context"
	"time"

	"github.com/ratelink/ratelink/internal/domain/business"
	ierr "github.com/ratelink/ratelink/internal/errors"
	"github.com/ratelink/ratelink/internal/types"
)

// InMemoryBusinessStore implements business.Repository
type InMemoryBusinessStore struct {
	*InMemoryStore[*business.Business]
}

// NewInMemoryBusinessStore creates a new in-memory business store
func NewInMemoryBusinessStore() *InMemoryBusinessStore {
	return &InMemoryBusinessStore{
		InMemoryStore: NewInMemoryStore[*business.Business](),
	}
}

// copyBusiness deep copies the business so callers cannot mutate the store
// through a shared pointer
func copyBusiness(b *business.Business) *business.Business {
	if b == nil {
		return nil
	}
	copied := *b
	copied.AdminUserIDs = append([]string(nil), b.AdminUserIDs...)
	copied.Subscription.History = append([]business.HistoryEntry(nil), b.Subscription.History...)
	if b.Subscription.PausedAt != nil {
		t := *b.Subscription.PausedAt
		copied.Subscription.PausedAt = &t
	}
	if b.Subscription.ResumedAt != nil {
		t := *b.Subscription.ResumedAt
		copied.Subscription.ResumedAt = &t
	}
	if b.Subscription.CancelledAt != nil {
		t := *b.Subscription.CancelledAt
		copied.Subscription.CancelledAt = &t
	}
	return &copied
}

func (s *InMemoryBusinessStore) Create(ctx context.Context, b *business.Business) error {
	if b == nil {
		return ierr.NewError("business cannot be nil").Mark(ierr.ErrValidation)
	}
	if b.ID == "" {
		b.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUSINESS)
	}
	if b.BaseModel.CreatedAt.IsZero() {
		b.BaseModel = types.GetDefaultBaseModel(ctx)
	}
	return s.InMemoryStore.Create(ctx, b.ID, copyBusiness(b))
}

func (s *InMemoryBusinessStore) Get(ctx context.Context, id string) (*business.Business, error) {
	b, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("business not found").
			WithReportableDetails(map[string]interface{}{
				"business_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyBusiness(b), nil
}

func (s *InMemoryBusinessStore) GetBySubdomain(ctx context.Context, subdomain string) (*business.Business, error) {
	matches := s.InMemoryStore.List(ctx, func(b *business.Business) bool {
		return b.Subdomain == subdomain
	})
	if len(matches) == 0 {
		return nil, ierr.NewError("business not found").
			WithReportableDetails(map[string]interface{}{
				"subdomain": subdomain,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyBusiness(matches[0]), nil
}

// UpdateSubscription enforces the same compare-and-swap semantics as the
// mongo repository
func (s *InMemoryBusinessStore) UpdateSubscription(ctx context.Context, b *business.Business) error {
	stored, err := s.InMemoryStore.Get(ctx, b.ID)
	if err != nil {
		return ierr.NewError("business not found").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != b.Version {
		return ierr.NewError("subscription was modified concurrently").
			WithHint("The record changed since it was read, retry the operation").
			WithReportableDetails(map[string]interface{}{
				"business_id": b.ID,
				"version":     b.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	updated := copyBusiness(b)
	updated.Version++
	updated.UpdatedAt = time.Now().UTC()
	updated.UpdatedBy = types.GetUserID(ctx)
	s.InMemoryStore.Set(ctx, b.ID, updated)

	b.Version = updated.Version
	b.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *InMemoryBusinessStore) List(ctx context.Context, filter *business.Filter) ([]*business.Business, error) {
	matches := s.InMemoryStore.List(ctx, func(b *business.Business) bool {
		return matchBusinessFilter(b, filter)
	})
	out := make([]*business.Business, 0, len(matches))
	for _, b := range matches {
		out = append(out, copyBusiness(b))
	}
	return out, nil
}

func (s *InMemoryBusinessStore) Count(ctx context.Context, filter *business.Filter) (int64, error) {
	matches := s.InMemoryStore.List(ctx, func(b *business.Business) bool {
		return matchBusinessFilter(b, filter)
	})
	return int64(len(matches)), nil
}

func matchBusinessFilter(b *business.Business, filter *business.Filter) bool {
	if filter == nil {
		return true
	}
	if filter.Active != nil && b.Active != *filter.Active {
		return false
	}
	if filter.CreatedAfter != nil && b.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if filter.PausedAfter != nil {
		if b.Subscription.PausedAt == nil || b.Subscription.PausedAt.Before(*filter.PausedAfter) {
			return false
		}
	}
	if filter.PausedBefore != nil {
		if b.Subscription.PausedAt == nil || !b.Subscription.PausedAt.Before(*filter.PausedBefore) {
			return false
		}
	}
	if filter.StripeCustomer != "" && b.Subscription.StripeCustomerID != filter.StripeCustomer {
		return false
	}
	return true
}
