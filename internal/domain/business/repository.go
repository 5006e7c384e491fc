package business

import (
	"context"
	"time"
)

// Repository defines the interface for business persistence operations
type Repository interface {
	// Create creates a new business
	Create(ctx context.Context, b *Business) error

	// Get retrieves a business by ID
	Get(ctx context.Context, id string) (*Business, error)

	// GetBySubdomain retrieves a business by its subdomain
	GetBySubdomain(ctx context.Context, subdomain string) (*Business, error)

	// UpdateSubscription persists the embedded subscription for the business
	// using a compare-and-swap on b.Version. Returns ErrVersionConflict when
	// the stored version no longer matches the snapshot the caller read.
	UpdateSubscription(ctx context.Context, b *Business) error

	// List returns all businesses matching the filter
	List(ctx context.Context, filter *Filter) ([]*Business, error)

	// Count returns the number of businesses matching the filter
	Count(ctx context.Context, filter *Filter) (int64, error)
}

// Filter narrows List and Count queries
type Filter struct {
	Active         *bool
	CreatedAfter   *time.Time
	PausedAfter    *time.Time
	PausedBefore   *time.Time
	StripeCustomer string
}
