package store

import (
	"context"
	"sort"
	"sync"

	"futsal-sim-service/internal/domain"
)

// MemoryStore keeps match records in a thread-safe map. Records are cloned on
// the way in and out so callers never share mutable state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]domain.Match
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]domain.Match),
	}
}

// Create inserts a new record, rejecting duplicate ids.
func (s *MemoryStore) Create(ctx context.Context, m domain.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; ok {
		return ErrDuplicateID
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// Load retrieves a record by id.
func (s *MemoryStore) Load(ctx context.Context, id string) (domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return domain.Match{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return domain.Match{}, ErrNotFound
	}
	return m.Clone(), nil
}

// Save writes a record iff the stored version still matches expectedVersion.
func (s *MemoryStore) Save(ctx context.Context, m domain.Match, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.matches[m.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// List returns records newest-first, optionally filtered by status and
// truncated to the limit.
func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		result = append(result, m.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
