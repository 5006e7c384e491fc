package outbox

import "context"

// Repository defines the interface for outbox intent persistence
type Repository interface {
	Create(ctx context.Context, intent *Intent) error
	Get(ctx context.Context, id string) (*Intent, error)
	Update(ctx context.Context, intent *Intent) error

	// ListUnresolved returns pending and divergent intents oldest first,
	// up to limit
	ListUnresolved(ctx context.Context, limit int) ([]*Intent, error)
}
