package sim

import (
	"reflect"
	"testing"

	"futsal-sim-service/internal/domain"
	"futsal-sim-service/internal/testutil"
)

func TestTickIsNoopWhileWaiting(t *testing.T) {
	m := testutil.NewWaitingMatch("m1", 5, 1000)
	before := m.Clone()

	Tick(m, 1000+SimulationStepMs)

	if !reflect.DeepEqual(before, m.Clone()) {
		t.Fatal("waiting match mutated by tick")
	}
}

func TestCountdownExpiresIntoPlaying(t *testing.T) {
	m := testutil.NewFullMatch("m1", 1, 1000)
	if m.Status != domain.StatusCountdown {
		t.Fatalf("fixture status = %s", m.Status)
	}

	Tick(m, 1000+CountdownDurationMs-SimulationStepMs)
	if m.Status != domain.StatusCountdown {
		t.Fatalf("countdown expired early at %s", m.Status)
	}

	at := 1000 + CountdownDurationMs
	Tick(m, at)
	if m.Status != domain.StatusPlaying {
		t.Fatalf("status = %s, want %s", m.Status, domain.StatusPlaying)
	}
	if m.StartedAt != at {
		t.Fatalf("startedAt = %d, want %d", m.StartedAt, at)
	}
}

func TestPlayerAdvancesTowardTarget(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	p.Position = domain.Vec{X: 100, Y: 100}
	p.TargetPosition = &domain.Vec{X: 200, Y: 100}

	Tick(m, 1050)

	if p.Position.X != 100+DefaultPlayerSpeed {
		t.Fatalf("x = %.2f, want %.2f", p.Position.X, 100+DefaultPlayerSpeed)
	}
	if p.TargetPosition == nil {
		t.Fatal("target cleared mid-transit")
	}
}

func TestPlayerArrivalClearsTarget(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	p.Position = domain.Vec{X: 100, Y: 100}
	p.TargetPosition = &domain.Vec{X: 103, Y: 100}

	Tick(m, 1050)

	if p.Position.X != 103 {
		t.Fatalf("x = %.2f, want exact arrival at 103", p.Position.X)
	}
	if p.TargetPosition != nil {
		t.Fatal("target not cleared on arrival")
	}

	before := p.Position
	Tick(m, 1100)
	if p.Position != before {
		t.Fatalf("arrived player drifted to %+v", p.Position)
	}
}

func TestSpeedOverrideApplies(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	speed := 10.0
	p.Speed = &speed
	p.Position = domain.Vec{X: 100, Y: 100}
	p.TargetPosition = &domain.Vec{X: 300, Y: 100}

	Tick(m, 1050)

	if p.Position.X != 110 {
		t.Fatalf("x = %.2f, want 110", p.Position.X)
	}
}

func TestDribbleCarriesBall(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	p.Position = domain.Vec{X: 100, Y: 100}
	p.HasBall = true
	m.Ball.PossessorID = p.ID
	m.Ball.Position = p.Position
	p.TargetPosition = &domain.Vec{X: 200, Y: 100}

	Tick(m, 1050)

	if m.Ball.Position != p.Position {
		t.Fatalf("ball at %+v, carrier at %+v", m.Ball.Position, p.Position)
	}
}

func TestFreeBallFlightAndFriction(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	m.Ball.Position = domain.Vec{X: 400, Y: 400}
	m.Ball.Velocity = domain.Vec{X: 10, Y: 0}

	Tick(m, 1050)

	if m.Ball.Position.X != 410 {
		t.Fatalf("x = %.2f, want 410", m.Ball.Position.X)
	}
	if m.Ball.Velocity.X != 10*Friction {
		t.Fatalf("vx = %.3f, want %.3f", m.Ball.Velocity.X, 10*Friction)
	}
}

func TestFreeBallComesToRest(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	m.Ball.Position = domain.Vec{X: 400, Y: 400}
	m.Ball.Velocity = domain.Vec{X: 0.05, Y: 0}

	Tick(m, 1050)

	if m.Ball.Velocity != (domain.Vec{}) {
		t.Fatalf("velocity = %+v, want rest", m.Ball.Velocity)
	}
}

func TestGoalScoredResetsBallAndCreditsScorer(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 2, 1000)
	m.Ball.Position = domain.Vec{X: domain.BallRadius, Y: domain.FieldHeight / 2}
	m.Ball.LastTouchedBy = "p-b1"
	m.Ball.PreviousTouchedBy = "p-b2"

	Tick(m, 1050)

	if m.Score.ForB != 1 {
		t.Fatalf("score = %+v, want B goal", m.Score)
	}
	if m.Ball.Position != domain.FieldCenter() {
		t.Fatalf("ball at %+v, want center", m.Ball.Position)
	}
	if m.Ball.LastTouchedBy != "" {
		t.Fatalf("touch history survived reset: %q", m.Ball.LastTouchedBy)
	}

	scorer, _ := m.PlayerByID("p-b1")
	if scorer.Stats.Goals != 1 {
		t.Fatalf("scorer goals = %d, want 1", scorer.Stats.Goals)
	}
	assister, _ := m.PlayerByID("p-b2")
	if assister.Stats.Assists != 1 {
		t.Fatalf("assister assists = %d, want 1", assister.Stats.Assists)
	}
}

func TestOwnGoalCreditsNoScorer(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	m.Ball.Position = domain.Vec{X: domain.BallRadius, Y: domain.FieldHeight / 2}
	m.Ball.LastTouchedBy = "p-a1"

	Tick(m, 1050)

	if m.Score.ForB != 1 {
		t.Fatalf("score = %+v, want B goal", m.Score)
	}
	toucher, _ := m.PlayerByID("p-a1")
	if toucher.Stats.Goals != 0 {
		t.Fatalf("own goal credited: %d", toucher.Stats.Goals)
	}
}

func TestBallOnEndLineOutsideMouthIsNotAGoal(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	m.Ball.Position = domain.Vec{X: domain.BallRadius, Y: 50}

	Tick(m, 1050)

	if m.Score.ForB != 0 {
		t.Fatalf("score = %+v, want no goal", m.Score)
	}
}

func TestWinningGoalFinishesMatch(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	m.Score.ForA = 2
	m.Ball.Position = domain.Vec{X: domain.FieldWidth - domain.BallRadius, Y: domain.FieldHeight / 2}

	Tick(m, 1050)

	if m.Status != domain.StatusFinished {
		t.Fatalf("status = %s, want %s", m.Status, domain.StatusFinished)
	}
	if m.Winner != domain.TeamA {
		t.Fatalf("winner = %s, want %s", m.Winner, domain.TeamA)
	}
	if m.FinishedAt != 1050 {
		t.Fatalf("finishedAt = %d, want 1050", m.FinishedAt)
	}
}

func TestSlowFreeBallClaimedInRosterOrder(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 2, 1000)
	m.Ball.Position = domain.Vec{X: 400, Y: 400}
	m.Ball.Velocity = domain.Vec{}
	pa, _ := m.PlayerByID("p-a2")
	pa.Position = domain.Vec{X: 405, Y: 400}
	pb, _ := m.PlayerByID("p-b1")
	pb.Position = domain.Vec{X: 402, Y: 400}

	Tick(m, 1050)

	if m.Ball.PossessorID != "p-a2" {
		t.Fatalf("possessor = %q, want roster A claimant", m.Ball.PossessorID)
	}
	if !pa.HasBall {
		t.Fatal("claimant not flagged")
	}
	if m.Ball.Velocity != (domain.Vec{}) {
		t.Fatalf("claimed ball still moving: %+v", m.Ball.Velocity)
	}
}

func TestLastToucherCannotReclaimMovingBall(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	p.Position = domain.Vec{X: 100, Y: 100}
	m.Ball.Position = domain.Vec{X: 95, Y: 100}
	m.Ball.Velocity = domain.Vec{X: 3, Y: 0}
	m.Ball.LastTouchedBy = p.ID
	other, _ := m.PlayerByID("p-b1")
	other.Position = domain.Vec{X: 700, Y: 450}

	Tick(m, 1050)

	if m.Ball.PossessorID != "" {
		t.Fatalf("possessor = %q, want free ball", m.Ball.PossessorID)
	}
}

func TestOpponentInterceptsMovingBall(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	pa, _ := m.PlayerByID("p-a1")
	pa.Position = domain.Vec{X: 700, Y: 450}
	pb, _ := m.PlayerByID("p-b1")
	pb.Position = domain.Vec{X: 100, Y: 100}
	m.Ball.Position = domain.Vec{X: 95, Y: 100}
	m.Ball.Velocity = domain.Vec{X: 3, Y: 0}
	m.Ball.LastTouchedBy = pa.ID

	Tick(m, 1050)

	if m.Ball.PossessorID != pb.ID {
		t.Fatalf("possessor = %q, want interceptor %q", m.Ball.PossessorID, pb.ID)
	}
	if m.Ball.LastTouchedBy != pb.ID || m.Ball.PreviousTouchedBy != pa.ID {
		t.Fatalf("touch history last=%q previous=%q", m.Ball.LastTouchedBy, m.Ball.PreviousTouchedBy)
	}
}

func TestLastToucherMayCollectRestingBall(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	p.Position = domain.Vec{X: 100, Y: 100}
	m.Ball.Position = domain.Vec{X: 105, Y: 100}
	m.Ball.Velocity = domain.Vec{}
	m.Ball.LastTouchedBy = p.ID
	other, _ := m.PlayerByID("p-b1")
	other.Position = domain.Vec{X: 700, Y: 450}

	Tick(m, 1050)

	if m.Ball.PossessorID != p.ID {
		t.Fatalf("possessor = %q, want %q", m.Ball.PossessorID, p.ID)
	}
}

func TestTickNeverWritesClockOrVersion(t *testing.T) {
	m := testutil.NewPlayingMatch("m1", 1, 1000)
	p, _ := m.PlayerByID("p-a1")
	p.TargetPosition = &domain.Vec{X: 300, Y: 300}
	version, simAt := m.Version, m.LastSimulatedAt

	Tick(m, 1050)

	if m.Version != version {
		t.Fatalf("tick wrote version: %d", m.Version)
	}
	if m.LastSimulatedAt != simAt {
		t.Fatalf("tick wrote clock: %d", m.LastSimulatedAt)
	}
}

func TestTickSequenceIsDeterministic(t *testing.T) {
	build := func() *domain.Match {
		m := testutil.NewPlayingMatch("m1", 2, 1000)
		pa, _ := m.PlayerByID("p-a1")
		pa.TargetPosition = &domain.Vec{X: 600, Y: 250}
		m.Ball.Velocity = domain.Vec{X: 4, Y: -2}
		m.Ball.LastTouchedBy = "p-b2"
		return m
	}

	m1, m2 := build(), build()
	for i := 0; i < 40; i++ {
		at := 1000 + int64(i+1)*SimulationStepMs
		Tick(m1, at)
		Tick(m2, at)
	}

	if !reflect.DeepEqual(m1.Clone(), m2.Clone()) {
		t.Fatal("identical tick sequences diverged")
	}
}

func TestEffectiveSpeed(t *testing.T) {
	p := &domain.Player{}
	if got := EffectiveSpeed(p); got != DefaultPlayerSpeed {
		t.Fatalf("speed = %v, want default", got)
	}
	v := 9.5
	p.Speed = &v
	if got := EffectiveSpeed(p); got != 9.5 {
		t.Fatalf("speed = %v, want override", got)
	}
}
