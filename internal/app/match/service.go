package match

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/logging"
	"futsal-sim-service/internal/metrics"
	"futsal-sim-service/internal/sim"
	"futsal-sim-service/internal/store"
	"futsal-sim-service/internal/timeutil"
)

// maxSaveAttempts bounds the optimistic-concurrency retry loop. Every retry
// restarts the full load, catch-up, and mutate cycle from a fresh read.
const maxSaveAttempts = 3

// Defaults are per-match config values applied when a create request leaves
// them unset.
type Defaults struct {
	PlayersPerTeam int
	GoalsToWin     int
}

// Service owns the authoritative read, catch-up, mutate, persist cycle for
// every match. It is safe for concurrent use; correctness under concurrent
// callers is delegated to the store's version check, not to in-process locks.
type Service struct {
	store    store.Store
	logger   *slog.Logger
	metrics  *metrics.Recorder
	defaults Defaults

	now   func() time.Time
	newID func() string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService constructs a Service with real clock, uuid ids, and a
// time-seeded RNG for tackle resolution.
func NewService(st store.Store, logger *slog.Logger, recorder *metrics.Recorder, defaults Defaults) *Service {
	if defaults.PlayersPerTeam < 1 {
		defaults.PlayersPerTeam = 5
	}
	if defaults.GoalsToWin < 1 {
		defaults.GoalsToWin = 3
	}
	return &Service{
		store:    st,
		logger:   logger,
		metrics:  recorder,
		defaults: defaults,
		now:      time.Now,
		newID:    uuid.NewString,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateResult is the outcome of CreateGame.
type CreateResult struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// CreateGame builds a new Waiting match containing the creating player.
// Zero-valued config fields fall back to the service defaults.
func (s *Service) CreateGame(ctx context.Context, playerName string, cfg domain.MatchConfig) (CreateResult, error) {
	start := time.Now()
	res, err := s.createGame(ctx, playerName, cfg)
	s.metrics.RecordAction("create", time.Since(start), err)
	return res, err
}

func (s *Service) createGame(ctx context.Context, playerName string, cfg domain.MatchConfig) (CreateResult, error) {
	if strings.TrimSpace(playerName) == "" {
		return CreateResult{}, domain.Failf(domain.FailureValidation, "player name is required")
	}
	if cfg.PlayersPerTeam == 0 {
		cfg.PlayersPerTeam = s.defaults.PlayersPerTeam
	}
	if cfg.GoalsToWin == 0 {
		cfg.GoalsToWin = s.defaults.GoalsToWin
	}
	if cfg.PlayersPerTeam < 1 {
		return CreateResult{}, domain.Failf(domain.FailureValidation, "playersPerTeam must be at least 1, got %d", cfg.PlayersPerTeam)
	}
	if cfg.GoalsToWin < 1 {
		return CreateResult{}, domain.Failf(domain.FailureValidation, "goalsToWin must be at least 1, got %d", cfg.GoalsToWin)
	}

	nowMs := timeutil.UnixMillis(s.now())
	m := domain.NewMatch(s.newID(), cfg, nowMs)
	p, err := m.Join(s.newID(), playerName, "", "", nowMs)
	if err != nil {
		return CreateResult{}, err
	}

	if err := s.store.Create(ctx, *m); err != nil {
		return CreateResult{}, s.wrapStoreErr(m.ID, err)
	}

	logging.Info(s.logger, "match created",
		slog.String(logging.FieldGameID, m.ID),
		slog.String(logging.FieldPlayerID, p.ID),
		slog.Int("players_per_team", cfg.PlayersPerTeam),
		slog.Int("goals_to_win", cfg.GoalsToWin),
	)
	return CreateResult{GameID: m.ID, PlayerID: p.ID}, nil
}

// JoinResult is the outcome of JoinGame.
type JoinResult struct {
	PlayerID string      `json:"playerId"`
	Team     domain.Team `json:"team"`
	Role     domain.Role `json:"role"`
	Position domain.Vec  `json:"position"`
}

// JoinGame adds a player to an existing Waiting match.
func (s *Service) JoinGame(ctx context.Context, gameID, playerName string, teamPref domain.Team, rolePref domain.Role) (JoinResult, error) {
	start := time.Now()
	res, err := s.joinGame(ctx, gameID, playerName, teamPref, rolePref)
	s.metrics.RecordAction("join", time.Since(start), err)
	return res, err
}

func (s *Service) joinGame(ctx context.Context, gameID, playerName string, teamPref domain.Team, rolePref domain.Role) (JoinResult, error) {
	if strings.TrimSpace(playerName) == "" {
		return JoinResult{}, domain.Failf(domain.FailureValidation, "player name is required")
	}

	var res JoinResult
	playerID := s.newID()
	_, err := s.run(ctx, gameID, func(m *domain.Match, nowMs int64) error {
		p, err := m.Join(playerID, playerName, teamPref, rolePref, nowMs)
		if err != nil {
			return err
		}
		res = JoinResult{PlayerID: p.ID, Team: p.Team, Role: p.Role, Position: p.Position}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}

	logging.Info(s.logger, "player joined",
		slog.String(logging.FieldGameID, gameID),
		slog.String(logging.FieldPlayerID, res.PlayerID),
		slog.String("team", string(res.Team)),
		slog.String("role", string(res.Role)),
	)
	return res, nil
}

// State returns the caught-up match snapshot.
func (s *Service) State(ctx context.Context, gameID string) (domain.Match, error) {
	return s.run(ctx, gameID, nil)
}

// List returns stored matches newest-first without advancing them; the
// background sweep keeps unfinished matches fresh.
func (s *Service) List(ctx context.Context, status domain.Status, limit int) ([]domain.Match, error) {
	matches, err := s.store.List(ctx, store.ListFilter{Status: status, Limit: limit})
	if err != nil {
		return nil, domain.Failf(domain.FailureTransient, "list matches: %v", err)
	}
	return matches, nil
}

// Advance runs one catch-up-and-persist cycle without a mutation. Used by
// the background sweep.
func (s *Service) Advance(ctx context.Context, gameID string) error {
	_, err := s.run(ctx, gameID, nil)
	return err
}

// UnfinishedGameIDs lists matches that still need simulation.
func (s *Service) UnfinishedGameIDs(ctx context.Context) ([]string, error) {
	matches, err := s.store.List(ctx, store.ListFilter{})
	if err != nil {
		return nil, domain.Failf(domain.FailureTransient, "list matches: %v", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Status != domain.StatusFinished {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// run is the simulation driver: load the record, replay ticks until the
// world catches up to now, apply the optional mutation, and persist against
// the observed version. A lost write restarts the whole cycle from a fresh
// read; it never merges on top of stale state.
func (s *Service) run(ctx context.Context, gameID string, apply func(m *domain.Match, nowMs int64) error) (domain.Match, error) {
	var lastErr error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		m, err := s.store.Load(ctx, gameID)
		if err != nil {
			return domain.Match{}, s.wrapStoreErr(gameID, err)
		}

		loaded := m.Version
		nowMs := timeutil.UnixMillis(s.now())
		ticks := s.catchUp(&m, nowMs)
		s.metrics.RecordTicks(ticks)

		var applyErr error
		if apply != nil {
			applyErr = apply(&m, nowMs)
		}

		if m.Version != loaded {
			if err := s.store.Save(ctx, m, loaded); err != nil {
				if errors.Is(err, store.ErrVersionConflict) {
					willRetry := attempt < maxSaveAttempts
					s.metrics.RecordConflictRetry(willRetry)
					logging.Warn(s.logger, "lost optimistic write, retrying from fresh read",
						slog.String(logging.FieldGameID, gameID),
						slog.Int("attempt", attempt),
					)
					lastErr = domain.Failf(domain.FailureConflict, "match %s: concurrent updates exhausted %d attempts", gameID, maxSaveAttempts)
					continue
				}
				return domain.Match{}, s.wrapStoreErr(gameID, err)
			}
		}

		if applyErr != nil {
			return domain.Match{}, applyErr
		}
		return m, nil
	}
	return domain.Match{}, lastErr
}

// catchUp replays one tick per elapsed simulation step. It is the only
// writer of LastSimulatedAt, and bumps the version once per executed tick.
func (s *Service) catchUp(m *domain.Match, nowMs int64) int {
	ticks := 0
	for nowMs-m.LastSimulatedAt >= sim.SimulationStepMs {
		at := m.LastSimulatedAt + sim.SimulationStepMs
		sim.Tick(m, at)
		m.LastSimulatedAt = at
		m.Version++
		ticks++
	}
	return ticks
}

// chance draws a uniform float in [0,1) from the service RNG.
func (s *Service) chance() float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Float64()
}

func (s *Service) wrapStoreErr(gameID string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.Failf(domain.FailureNotFound, "match %s not found", gameID)
	case errors.Is(err, store.ErrDuplicateID):
		return domain.Failf(domain.FailureConflict, "match %s already exists", gameID)
	case errors.Is(err, store.ErrVersionConflict):
		return domain.Failf(domain.FailureConflict, "match %s: concurrent update", gameID)
	default:
		return domain.Failf(domain.FailureTransient, "match %s: store unavailable: %v", gameID, err)
	}
}
