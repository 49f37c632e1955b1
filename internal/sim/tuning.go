package sim

// Gameplay tuning. Distances are pitch units, speeds are units per tick,
// durations are milliseconds on the simulation clock. Per-tick constants
// assume exactly one SimulationStep elapsed; the catch-up loop runs the tick
// once per step, never with a variable dt.
const (
	SimulationStepMs    = int64(50)
	CountdownDurationMs = int64(3000)

	DefaultPlayerSpeed = 6.0
	MinPlayerSpeed     = 1.0
	MaxPlayerSpeed     = 12.0

	DefaultPassSpeed = 18.0
	MinPassSpeed     = 8.0
	MaxPassSpeed     = 30.0

	DefaultShootSpeed = 24.0
	MinShootSpeed     = 10.0
	MaxShootSpeed     = 40.0

	// Exponential decay applied to a free ball every tick.
	Friction = 0.95

	// Per-component velocity below which a free ball snaps to rest.
	BallStopThreshold = 0.05

	// Ball speed at or under which the last toucher may reclaim possession.
	BallSlowSpeed = 2.0

	PossessionDistance = 15.0
	TackleDistance     = 12.0
	TackleSuccessRate  = 0.5

	// Scatter speed range for the ball knocked loose by a tackle.
	TackleScatterMinSpeed = 3.0
	TackleScatterMaxSpeed = 7.0

	// Distance under which a moving player counts as arrived.
	ArrivalEpsilon = 0.5

	MoveCooldownMs   = int64(200)
	PassCooldownMs   = int64(500)
	ShootCooldownMs  = int64(1000)
	TackleCooldownMs = int64(1500)
)
