package sim

import (
	"math"

	"futsal-sim-service/internal/domain"
)

// Tick advances the match by exactly one simulation step ending at the
// simulated instant `at`. Stages run in a fixed order, each on the output of
// the previous; every stage is a no-op when its guard does not hold. Tick
// never writes LastSimulatedAt or Version — both belong to the catch-up
// driver.
func Tick(m *domain.Match, at int64) {
	expireCountdown(m, at)

	if m.Status != domain.StatusPlaying {
		return
	}

	movePlayers(m)

	if m.Ball.PossessorID == "" {
		moveFreeBall(m)
		scored := detectGoal(m, at)
		if !scored && m.Ball.PossessorID == "" {
			arbitratePossession(m)
		}
	}

	followPossessor(m)
}

func expireCountdown(m *domain.Match, at int64) {
	if m.Status != domain.StatusCountdown {
		return
	}
	if at-m.CountdownStartedAt < CountdownDurationMs {
		return
	}
	m.Status = domain.StatusPlaying
	m.StartedAt = at
}

// movePlayers advances every player with a target toward it, dribbling the
// ball along when the mover possesses it.
func movePlayers(m *domain.Match) {
	m.EachPlayer(func(p *domain.Player) bool {
		advancePlayer(m, p)
		return true
	})
}

func advancePlayer(m *domain.Match, p *domain.Player) {
	if p.TargetPosition == nil {
		return
	}

	to := p.TargetPosition.Sub(p.Position)
	dist := to.Len()
	if dist <= ArrivalEpsilon {
		p.TargetPosition = nil
		return
	}

	step := math.Min(EffectiveSpeed(p), dist)
	p.Position = domain.ClampPlayerPosition(p.Position.Add(to.Unit().Scale(step)))

	if dist-step <= ArrivalEpsilon {
		p.TargetPosition = nil
	}

	if m.Ball.PossessorID == p.ID {
		m.Ball.Position = p.Position
	}
}

// EffectiveSpeed is the player's override or the default locomotion speed.
func EffectiveSpeed(p *domain.Player) float64 {
	if p.Speed != nil {
		return *p.Speed
	}
	return DefaultPlayerSpeed
}

// moveFreeBall integrates one step of flight, applies friction, and snaps
// small residual velocity to exactly zero so the ball actually comes to rest.
func moveFreeBall(m *domain.Match) {
	b := &m.Ball
	if b.Velocity == (domain.Vec{}) {
		return
	}

	b.Position = b.Position.Add(b.Velocity)
	b.Velocity = b.Velocity.Scale(Friction)
	if math.Abs(b.Velocity.X) < BallStopThreshold && math.Abs(b.Velocity.Y) < BallStopThreshold {
		b.Velocity = domain.Vec{}
	}
	b.Position = domain.ClampBallPosition(b.Position)
}

// detectGoal checks the end lines, credits score and scorer stats, resets the
// ball, and finishes the match once a side reaches goals-to-win.
func detectGoal(m *domain.Match, at int64) bool {
	b := m.Ball
	if !domain.InGoalMouth(b.Position.Y) {
		return false
	}

	var scoring domain.Team
	switch {
	case b.Position.X <= domain.BallRadius:
		scoring = domain.TeamB
	case b.Position.X >= domain.FieldWidth-domain.BallRadius:
		scoring = domain.TeamA
	default:
		return false
	}

	score := m.TeamScore(scoring)
	*score++
	creditScorer(m, scoring)

	m.Ball.Reset(domain.FieldCenter())
	m.ClearPossession()

	if *score >= m.Config.GoalsToWin {
		m.Status = domain.StatusFinished
		m.FinishedAt = at
		m.Winner = scoring
	}
	return true
}

func creditScorer(m *domain.Match, scoring domain.Team) {
	scorer, ok := m.PlayerByID(m.Ball.LastTouchedBy)
	if !ok || scorer.Team != scoring {
		return
	}
	scorer.Stats.Goals++

	assister, ok := m.PlayerByID(m.Ball.PreviousTouchedBy)
	if ok && assister.Team == scoring && assister.ID != scorer.ID {
		assister.Stats.Assists++
	}
}

// arbitratePossession lets the first eligible player in roster order claim a
// free ball. The last toucher is excluded while the ball still carries speed,
// so a pass or shot travels its intended distance; anyone else may intercept
// in flight, and anyone at all may collect a ball that has decayed to rest.
func arbitratePossession(m *domain.Match) {
	speed := m.Ball.Velocity.Len()
	m.EachPlayer(func(p *domain.Player) bool {
		if p.Position.DistanceTo(m.Ball.Position) > PossessionDistance {
			return true
		}
		if speed > BallSlowSpeed && p.ID == m.Ball.LastTouchedBy {
			return true
		}

		m.Ball.PossessorID = p.ID
		m.Ball.Touch(p.ID)
		m.Ball.Velocity = domain.Vec{}
		p.HasBall = true
		return false
	})
}

// followPossessor pins a possessed ball to its carrier even when the carrier
// did not move this tick.
func followPossessor(m *domain.Match) {
	if m.Ball.PossessorID == "" {
		return
	}
	if p, ok := m.PlayerByID(m.Ball.PossessorID); ok {
		m.Ball.Position = p.Position
	}
}
