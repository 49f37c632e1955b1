package match

import (
	"context"
	"math"
	"time"

	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/sim"
)

// MoveResult reports the accepted move intent.
type MoveResult struct {
	Position       domain.Vec `json:"position"`
	TargetPosition domain.Vec `json:"targetPosition"`
	Distance       float64    `json:"distance"`
	Speed          float64    `json:"speed"`
}

// MoveIntent sets a player's transit target. Motion happens on subsequent
// ticks, never inside the call itself.
func (s *Service) MoveIntent(ctx context.Context, gameID, playerID string, targetX, targetY float64, speed *float64) (MoveResult, error) {
	start := time.Now()
	res, err := s.moveIntent(ctx, gameID, playerID, targetX, targetY, speed)
	s.metrics.RecordAction("move", time.Since(start), err)
	return res, err
}

func (s *Service) moveIntent(ctx context.Context, gameID, playerID string, targetX, targetY float64, speed *float64) (MoveResult, error) {
	var res MoveResult
	_, err := s.run(ctx, gameID, func(m *domain.Match, nowMs int64) error {
		p, err := playingPlayer(m, playerID)
		if err != nil {
			return err
		}
		if err := checkCooldown(p, nowMs, sim.MoveCooldownMs, "move"); err != nil {
			return err
		}
		chosen, err := validateSpeed(speed, sim.EffectiveSpeed(p), sim.MinPlayerSpeed, sim.MaxPlayerSpeed, "player")
		if err != nil {
			return err
		}

		if speed != nil {
			chosen := *speed
			p.Speed = &chosen
		}
		target := domain.ClampPlayerPosition(domain.Vec{X: targetX, Y: targetY})
		p.TargetPosition = &target
		p.LastActionAt = nowMs
		m.Version++

		res = MoveResult{
			Position:       p.Position,
			TargetPosition: target,
			Distance:       p.Position.DistanceTo(target),
			Speed:          chosen,
		}
		return nil
	})
	if err != nil {
		return MoveResult{}, err
	}
	return res, nil
}

// PassResult reports the released ball.
type PassResult struct {
	BallVelocity domain.Vec `json:"ballVelocity"`
	Speed        float64    `json:"speed"`
}

// Pass releases the ball toward a teammate.
func (s *Service) Pass(ctx context.Context, gameID, playerID, targetPlayerID string, speed *float64) (PassResult, error) {
	start := time.Now()
	res, err := s.pass(ctx, gameID, playerID, targetPlayerID, speed)
	s.metrics.RecordAction("pass", time.Since(start), err)
	return res, err
}

func (s *Service) pass(ctx context.Context, gameID, playerID, targetPlayerID string, speed *float64) (PassResult, error) {
	var res PassResult
	_, err := s.run(ctx, gameID, func(m *domain.Match, nowMs int64) error {
		p, err := playingPlayer(m, playerID)
		if err != nil {
			return err
		}
		if m.Ball.PossessorID != p.ID {
			return domain.Failf(domain.FailurePrecondition, "player %s does not have the ball", playerID)
		}
		if err := checkCooldown(p, nowMs, sim.PassCooldownMs, "pass"); err != nil {
			return err
		}
		target, ok := m.PlayerByID(targetPlayerID)
		if !ok {
			return domain.Failf(domain.FailureNotFound, "target player %s not found", targetPlayerID)
		}
		if target.ID == p.ID {
			return domain.Failf(domain.FailurePrecondition, "cannot pass to yourself")
		}
		if target.Team != p.Team {
			return domain.Failf(domain.FailurePrecondition, "target player %s is on the opposing team", targetPlayerID)
		}
		passSpeed, err := validateSpeed(speed, sim.DefaultPassSpeed, sim.MinPassSpeed, sim.MaxPassSpeed, "pass")
		if err != nil {
			return err
		}
		dir := target.Position.Sub(p.Position)
		if dir.Len() == 0 {
			return domain.Failf(domain.FailurePrecondition, "target player %s occupies the passer's position", targetPlayerID)
		}

		m.Ball.PossessorID = ""
		p.HasBall = false
		m.Ball.Touch(p.ID)
		m.Ball.Velocity = dir.Unit().Scale(passSpeed)
		p.Stats.Passes++
		p.LastActionAt = nowMs
		m.Version++

		res = PassResult{BallVelocity: m.Ball.Velocity, Speed: passSpeed}
		return nil
	})
	if err != nil {
		return PassResult{}, err
	}
	return res, nil
}

// ShootResult reports the released ball.
type ShootResult struct {
	BallVelocity domain.Vec `json:"ballVelocity"`
	Speed        float64    `json:"speed"`
}

// Shoot releases the ball toward the center of the opposing goal mouth.
func (s *Service) Shoot(ctx context.Context, gameID, playerID string, speed *float64) (ShootResult, error) {
	start := time.Now()
	res, err := s.shoot(ctx, gameID, playerID, speed)
	s.metrics.RecordAction("shoot", time.Since(start), err)
	return res, err
}

func (s *Service) shoot(ctx context.Context, gameID, playerID string, speed *float64) (ShootResult, error) {
	var res ShootResult
	_, err := s.run(ctx, gameID, func(m *domain.Match, nowMs int64) error {
		p, err := playingPlayer(m, playerID)
		if err != nil {
			return err
		}
		if m.Ball.PossessorID != p.ID {
			return domain.Failf(domain.FailurePrecondition, "player %s does not have the ball", playerID)
		}
		if err := checkCooldown(p, nowMs, sim.ShootCooldownMs, "shoot"); err != nil {
			return err
		}
		shootSpeed, err := validateSpeed(speed, sim.DefaultShootSpeed, sim.MinShootSpeed, sim.MaxShootSpeed, "shoot")
		if err != nil {
			return err
		}

		goal := domain.GoalCenter(p.Team.Opponent())
		dir := goal.Sub(p.Position)
		if dir.Len() == 0 {
			// Standing exactly on the goal-mouth center: shoot straight in.
			dir = domain.Vec{X: 1}
			if p.Team == domain.TeamB {
				dir.X = -1
			}
		}

		m.Ball.PossessorID = ""
		p.HasBall = false
		m.Ball.Touch(p.ID)
		m.Ball.Velocity = dir.Unit().Scale(shootSpeed)
		p.LastActionAt = nowMs
		m.Version++

		res = ShootResult{BallVelocity: m.Ball.Velocity, Speed: shootSpeed}
		return nil
	})
	if err != nil {
		return ShootResult{}, err
	}
	return res, nil
}

// TackleResult reports the tackle outcome.
type TackleResult struct {
	Success  bool `json:"tackleSuccess"`
	BallFree bool `json:"ballIsFree"`
}

// Tackle attempts to knock the ball loose from an opponent within reach.
// Success is a Bernoulli draw; failure costs only the cooldown.
func (s *Service) Tackle(ctx context.Context, gameID, playerID, targetPlayerID string) (TackleResult, error) {
	start := time.Now()
	res, err := s.tackle(ctx, gameID, playerID, targetPlayerID)
	s.metrics.RecordAction("tackle", time.Since(start), err)
	return res, err
}

func (s *Service) tackle(ctx context.Context, gameID, playerID, targetPlayerID string) (TackleResult, error) {
	var res TackleResult
	_, err := s.run(ctx, gameID, func(m *domain.Match, nowMs int64) error {
		p, err := playingPlayer(m, playerID)
		if err != nil {
			return err
		}
		if err := checkCooldown(p, nowMs, sim.TackleCooldownMs, "tackle"); err != nil {
			return err
		}
		target, ok := m.PlayerByID(targetPlayerID)
		if !ok {
			return domain.Failf(domain.FailureNotFound, "target player %s not found", targetPlayerID)
		}
		if target.Team == p.Team {
			return domain.Failf(domain.FailurePrecondition, "target player %s is on your own team", targetPlayerID)
		}
		if m.Ball.PossessorID != target.ID {
			return domain.Failf(domain.FailurePrecondition, "target player %s does not have the ball", targetPlayerID)
		}
		if dist := p.Position.DistanceTo(target.Position); dist > sim.TackleDistance {
			return domain.Failf(domain.FailurePrecondition, "target player %s is out of tackle range (%.1f > %.1f)", targetPlayerID, dist, sim.TackleDistance)
		}

		success := s.chance() < sim.TackleSuccessRate
		if success {
			target.HasBall = false
			m.Ball.PossessorID = ""
			m.Ball.Velocity = s.scatterVelocity()
			p.Stats.Tackles++
		}
		p.LastActionAt = nowMs
		m.Version++

		res = TackleResult{Success: success, BallFree: success}
		return nil
	})
	if err != nil {
		return TackleResult{}, err
	}
	return res, nil
}

// scatterVelocity gives the tackled-loose ball a small kick in a random
// direction.
func (s *Service) scatterVelocity() domain.Vec {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()

	angle := s.rng.Float64() * 2 * math.Pi
	speed := sim.TackleScatterMinSpeed + s.rng.Float64()*(sim.TackleScatterMaxSpeed-sim.TackleScatterMinSpeed)
	return domain.Vec{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed}
}

// playingPlayer resolves the acting player and enforces the Playing-only
// rule that gates every action.
func playingPlayer(m *domain.Match, playerID string) (*domain.Player, error) {
	if m.Status != domain.StatusPlaying {
		return nil, domain.Failf(domain.FailureInvalidState, "match %s is not in progress (status %s)", m.ID, m.Status)
	}
	p, ok := m.PlayerByID(playerID)
	if !ok {
		return nil, domain.Failf(domain.FailureNotFound, "player %s not found in match %s", playerID, m.ID)
	}
	return p, nil
}

// checkCooldown gates an action against the player's shared action timer.
func checkCooldown(p *domain.Player, nowMs, cooldownMs int64, action string) error {
	if p.LastActionAt == 0 {
		return nil
	}
	elapsed := nowMs - p.LastActionAt
	if elapsed < cooldownMs {
		return domain.Failf(domain.FailureRateLimited, "%s cooldown active for another %dms", action, cooldownMs-elapsed)
	}
	return nil
}

// validateSpeed resolves an optional caller-supplied speed against bounds.
func validateSpeed(speed *float64, def, min, max float64, what string) (float64, error) {
	if speed == nil {
		return def, nil
	}
	if *speed < min || *speed > max {
		return 0, domain.Failf(domain.FailureValidation, "%s speed %.1f outside [%.1f, %.1f]", what, *speed, min, max)
	}
	return *speed, nil
}
