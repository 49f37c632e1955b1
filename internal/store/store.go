package store

import (
	"context"
	"errors"

	"futsal-sim-service/internal/domain"
)

// ErrNotFound indicates a requested match record is missing.
var ErrNotFound = errors.New("match record not found")

// ErrVersionConflict indicates the record moved past the writer's observed
// version; the caller must re-read and retry its whole cycle.
var ErrVersionConflict = errors.New("match record version conflict")

// ErrDuplicateID indicates a create collided with an existing record.
var ErrDuplicateID = errors.New("match record already exists")

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	Status domain.Status
	Limit  int
}

// Store persists match records with optimistic concurrency. Save accepts a
// write only when the stored version still equals expectedVersion.
type Store interface {
	Create(ctx context.Context, m domain.Match) error
	Load(ctx context.Context, id string) (domain.Match, error)
	Save(ctx context.Context, m domain.Match, expectedVersion int64) error
	List(ctx context.Context, filter ListFilter) ([]domain.Match, error)
}
