package testutil

import (
	"fmt"

	"futsal-sim-service/internal/domain"
)

// NewWaitingMatch returns a match with a single joined player, still waiting
// for the rest of the rosters.
func NewWaitingMatch(id string, perTeam int, nowMs int64) *domain.Match {
	m := domain.NewMatch(id, domain.MatchConfig{PlayersPerTeam: perTeam, GoalsToWin: 3}, nowMs)
	if _, err := m.Join("p-a1", "captain-a", domain.TeamA, "", nowMs); err != nil {
		panic(err)
	}
	return m
}

// NewFullMatch returns a match with both rosters filled. Players are named
// p-a1..p-aN and p-b1..p-bN. The match is in countdown after the final join.
func NewFullMatch(id string, perTeam int, nowMs int64) *domain.Match {
	m := domain.NewMatch(id, domain.MatchConfig{PlayersPerTeam: perTeam, GoalsToWin: 3}, nowMs)
	for i := 1; i <= perTeam; i++ {
		if _, err := m.Join(fmt.Sprintf("p-a%d", i), fmt.Sprintf("alpha-%d", i), domain.TeamA, "", nowMs); err != nil {
			panic(err)
		}
	}
	for i := 1; i <= perTeam; i++ {
		if _, err := m.Join(fmt.Sprintf("p-b%d", i), fmt.Sprintf("bravo-%d", i), domain.TeamB, "", nowMs); err != nil {
			panic(err)
		}
	}
	return m
}

// NewPlayingMatch returns a full match forced into the playing state with the
// ball at the centre spot.
func NewPlayingMatch(id string, perTeam int, nowMs int64) *domain.Match {
	m := NewFullMatch(id, perTeam, nowMs)
	m.Status = domain.StatusPlaying
	m.StartedAt = nowMs
	return m
}
