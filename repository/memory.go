package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/kelydev/apiTramite/models"
)

// MemoryStore keeps records in insertion order in memory. It backs demo
// containers and tests; identifiers are assigned sequentially.
type MemoryStore[T models.Entity[T]] struct {
	mu     sync.RWMutex
	items  []T
	nextID int
	match  func(item T, term string) bool
}

// NewMemoryStore creates a store seeded with items. Seed records without an
// id receive one; match decides whether a record satisfies a search term.
func NewMemoryStore[T models.Entity[T]](match func(item T, term string) bool, seed ...T) *MemoryStore[T] {
	s := &MemoryStore[T]{match: match, nextID: 1}
	for _, it := range seed {
		if it.EntityID() == 0 {
			it = it.WithID(s.nextID)
		}
		if it.EntityID() >= s.nextID {
			s.nextID = it.EntityID() + 1
		}
		s.items = append(s.items, it)
	}
	return s
}

func (s *MemoryStore[T]) List(_ context.Context, q Query) ([]T, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if q.Search != "" && s.match != nil && !s.match(it, q.Search) {
			continue
		}
		filtered = append(filtered, it)
	}
	total := len(filtered)
	offset := max(q.Offset, 0)
	if offset >= total {
		return []T{}, total, nil
	}
	end := total
	if q.Limit > 0 && offset+q.Limit < total {
		end = offset + q.Limit
	}
	return slices.Clone(filtered[offset:end]), total, nil
}

func (s *MemoryStore[T]) Get(_ context.Context, id int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.items[i], nil
	}
	var zero T
	return zero, ErrNotFound
}

func (s *MemoryStore[T]) Create(_ context.Context, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item = item.WithID(s.nextID)
	s.nextID++
	s.items = append(s.items, item)
	return item, nil
}

func (s *MemoryStore[T]) Update(_ context.Context, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(item.EntityID())
	if i < 0 {
		var zero T
		return zero, ErrNotFound
	}
	s.items[i] = item
	return item, nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return ErrNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore[T]) index(id int) int {
	return slices.IndexFunc(s.items, func(it T) bool { return it.EntityID() == id })
}
