package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/store"
)

const matchBucket = "match"

// Store provides a BoltDB-backed match record store. Records are JSON
// documents keyed by match id; the optimistic-concurrency check runs inside
// a single write transaction.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBucket(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBucket() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(matchBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		return nil
	})
}

// Create inserts a new record, rejecting duplicate ids.
func (s *Store) Create(ctx context.Context, m domain.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(matchBucket))
		if bucket.Get([]byte(m.ID)) != nil {
			return store.ErrDuplicateID
		}
		return bucket.Put([]byte(m.ID), payload)
	})
}

// Load retrieves a record by id.
func (s *Store) Load(ctx context.Context, id string) (domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return domain.Match{}, err
	}

	var m domain.Match
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(matchBucket)).Get([]byte(id))
		if raw == nil {
			return store.ErrNotFound
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return fmt.Errorf("decode match record: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Match{}, err
	}
	return m, nil
}

// Save writes a record iff the stored version still matches expectedVersion.
// The read-check-write runs inside one write transaction, so concurrent
// savers serialize on the database and exactly one can win each version.
func (s *Store) Save(ctx context.Context, m domain.Match, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(matchBucket))
		raw := bucket.Get([]byte(m.ID))
		if raw == nil {
			return store.ErrNotFound
		}

		var current domain.Match
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("decode match record: %w", err)
		}
		if current.Version != expectedVersion {
			return store.ErrVersionConflict
		}
		return bucket.Put([]byte(m.ID), payload)
	})
}

// List returns records newest-first, optionally filtered by status and
// truncated to the limit.
func (s *Store) List(ctx context.Context, filter store.ListFilter) ([]domain.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []domain.Match
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(matchBucket)).ForEach(func(_, raw []byte) error {
			var m domain.Match
			if err := json.Unmarshal(raw, &m); err != nil {
				return fmt.Errorf("decode match record: %w", err)
			}
			if filter.Status != "" && m.Status != filter.Status {
				return nil
			}
			result = append(result, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
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
