package activity

import (
	"context"
	"time"

	"github.com/ratelink/ratelink/internal/types"
)

// Repository is the append-only interface over the activity log.
// There is deliberately no update or delete.
type Repository interface {
	// Append inserts an entry. When the entry carries a processor EventID
	// that has been seen before, Append returns ErrAlreadyExists and writes
	// nothing, making webhook redelivery a no-op.
	Append(ctx context.Context, e *Entry) error

	// ExistsByEventID reports whether an entry with the processor event id
	// has already been recorded
	ExistsByEventID(ctx context.Context, eventID string) (bool, error)

	// List returns entries matching the filter, newest first
	List(ctx context.Context, filter *Filter) ([]*Entry, error)
}

// Filter narrows activity log queries
type Filter struct {
	BusinessID string
	Types      []types.ActivityType
	Since      *time.Time
	Until      *time.Time
	Limit      int
}
