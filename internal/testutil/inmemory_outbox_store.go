package testutil

import (
	"context"
	"sort"

	"github.com/ratelink/ratelink/internal/domain/outbox"
)

// InMemoryOutboxStore implements outbox.Repository
type InMemoryOutboxStore struct {
	*InMemoryStore[*outbox.Intent]
}

// NewInMemoryOutboxStore creates a new in-memory outbox store
func NewInMemoryOutboxStore() *InMemoryOutboxStore {
	return &InMemoryOutboxStore{
		InMemoryStore: NewInMemoryStore[*outbox.Intent](),
	}
}

func copyIntent(i *outbox.Intent) *outbox.Intent {
	if i == nil {
		return nil
	}
	copied := *i
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		copied.ResolvedAt = &t
	}
	if i.Payload != nil {
		copied.Payload = make(map[string]interface{}, len(i.Payload))
		for k, v := range i.Payload {
			copied.Payload[k] = v
		}
	}
	return &copied
}

func (s *InMemoryOutboxStore) Create(ctx context.Context, intent *outbox.Intent) error {
	return s.InMemoryStore.Create(ctx, intent.ID, copyIntent(intent))
}

func (s *InMemoryOutboxStore) Get(ctx context.Context, id string) (*outbox.Intent, error) {
	intent, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return copyIntent(intent), nil
}

func (s *InMemoryOutboxStore) Update(ctx context.Context, intent *outbox.Intent) error {
	return s.InMemoryStore.Update(ctx, intent.ID, copyIntent(intent))
}

func (s *InMemoryOutboxStore) ListUnresolved(ctx context.Context, limit int) ([]*outbox.Intent, error) {
	matches := s.InMemoryStore.List(ctx, func(i *outbox.Intent) bool {
		return i.State == outbox.StatePending || i.State == outbox.StateDivergent
	})

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.Before(matches[j].CreatedAt)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]*outbox.Intent, 0, len(matches))
	for _, i := range matches {
		out = append(out, copyIntent(i))
	}
	return out, nil
}

// All returns every intent regardless of state, for assertions
func (s *InMemoryOutboxStore) All(ctx context.Context) []*outbox.Intent {
	matches := s.InMemoryStore.List(ctx, nil)
	out := make([]*outbox.Intent, 0, len(matches))
	for _, i := range matches {
		out = append(out, copyIntent(i))
	}
	return out
}
