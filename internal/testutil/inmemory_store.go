package testutil

import (
	"context"
	"sync"

	ierr "github.com/ratelink/ratelink/internal/errors"
)

// InMemoryStore is a generic concurrency safe map used as the base for the
// per-entity in-memory repositories
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

// Create adds an item, failing when the id already exists
func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

// Get retrieves an item by id
func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewError("item not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

// Update replaces an item, failing when it does not exist
func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

// Set stores an item unconditionally
func (s *InMemoryStore[T]) Set(ctx context.Context, id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = item
}

// List returns all items matching the predicate
func (s *InMemoryStore[T]) List(ctx context.Context, match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if match == nil || match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Clear removes everything
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
