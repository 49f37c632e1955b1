package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"futsal-sim-service/internal/domain"
)

func newStoredMatch(id string, createdAt int64) domain.Match {
	m := domain.NewMatch(id, domain.MatchConfig{PlayersPerTeam: 2, GoalsToWin: 3}, createdAt)
	return *m
}

func TestMemoryStoreCreateRejectsDuplicates(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newStoredMatch("g1", 1000)

	if err := s.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, m); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate create err = %v, want %v", err, ErrDuplicateID)
	}
}

func TestMemoryStoreLoadMissing(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Load(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrNotFound)
	}
}

func TestMemoryStoreSaveChecksVersion(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newStoredMatch("g1", 1000)
	if err := s.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	m.Version = 2
	if err := s.Save(ctx, m, 1); err != nil {
		t.Fatalf("save: %v", err)
	}

	m.Version = 3
	if err := s.Save(ctx, m, 1); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("stale save err = %v, want %v", err, ErrVersionConflict)
	}

	got, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("version = %d, want 2", got.Version)
	}
}

func TestMemoryStoreSaveMissingRecord(t *testing.T) {
	s := NewMemoryStore()
	m := newStoredMatch("g1", 1000)

	if err := s.Save(context.Background(), m, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, ErrNotFound)
	}
}

func TestMemoryStoreReturnsIsolatedCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	m := newStoredMatch("g1", 1000)
	if _, err := m.Join("p1", "player", domain.TeamA, "", 1000); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := s.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.RosterA[0].Name = "mutated"

	again, err := s.Load(ctx, "g1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if again.RosterA[0].Name != "player" {
		t.Fatalf("store state leaked: %q", again.RosterA[0].Name)
	}
}

func TestMemoryStoreListNewestFirstWithFilterAndLimit(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		m := newStoredMatch(fmt.Sprintf("g%d", i), int64(1000+i*100))
		if i%2 == 0 {
			m.Status = domain.StatusFinished
		}
		if err := s.Create(ctx, m); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].CreatedAt < all[i].CreatedAt {
			t.Fatalf("not newest-first at %d: %d then %d", i, all[i-1].CreatedAt, all[i].CreatedAt)
		}
	}

	finished, err := s.List(ctx, ListFilter{Status: domain.StatusFinished})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(finished) != 2 {
		t.Fatalf("filtered len = %d, want 2", len(finished))
	}

	limited, err := s.List(ctx, ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "g3" {
		t.Fatalf("limited = %v", limited)
	}
}

func TestMemoryStoreHonorsContextCancellation(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Create(ctx, newStoredMatch("g1", 1000)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
