package testutil

import (
	"context"
	"sort"

	"github.com/ratelink/ratelink/internal/domain/activity"
	ierr "github.com/ratelink/ratelink/internal/errors"
)

// InMemoryActivityStore implements activity.Repository with the same
// event id dedup semantics as the mongo repository
type InMemoryActivityStore struct {
	*InMemoryStore[*activity.Entry]
}

// NewInMemoryActivityStore creates a new in-memory activity store
func NewInMemoryActivityStore() *InMemoryActivityStore {
	return &InMemoryActivityStore{
		InMemoryStore: NewInMemoryStore[*activity.Entry](),
	}
}

func copyEntry(e *activity.Entry) *activity.Entry {
	if e == nil {
		return nil
	}
	copied := *e
	if e.Amount != nil {
		a := *e.Amount
		copied.Amount = &a
	}
	return &copied
}

func (s *InMemoryActivityStore) Append(ctx context.Context, e *activity.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if e.EventID != "" {
		exists, err := s.ExistsByEventID(ctx, e.EventID)
		if err != nil {
			return err
		}
		if exists {
			return ierr.NewError("this event was already recorded").
				WithReportableDetails(map[string]interface{}{
					"event_id": e.EventID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Create(ctx, e.ID, copyEntry(e))
}

func (s *InMemoryActivityStore) ExistsByEventID(ctx context.Context, eventID string) (bool, error) {
	matches := s.InMemoryStore.List(ctx, func(e *activity.Entry) bool {
		return e.EventID == eventID
	})
	return len(matches) > 0, nil
}

func (s *InMemoryActivityStore) List(ctx context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	matches := s.InMemoryStore.List(ctx, func(e *activity.Entry) bool {
		return matchActivityFilter(e, filter)
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	if filter != nil && filter.Limit > 0 && len(matches) > filter.Limit {
		matches = matches[:filter.Limit]
	}

	out := make([]*activity.Entry, 0, len(matches))
	for _, e := range matches {
		out = append(out, copyEntry(e))
	}
	return out, nil
}

func matchActivityFilter(e *activity.Entry, filter *activity.Filter) bool {
	if filter == nil {
		return true
	}
	if filter.BusinessID != "" && e.BusinessID != filter.BusinessID {
		return false
	}
	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if e.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Since != nil && e.Timestamp.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && !e.Timestamp.Before(*filter.Until) {
		return false
	}
	return true
}
