package domain

// Pitch geometry. The model clamps every player and the ball into these
// bounds after each mutation.
const (
	FieldWidth     = 800.0
	FieldHeight    = 500.0
	GoalMouthWidth = 120.0
	PlayerRadius   = 8.0
	BallRadius     = 4.0
)

// Status is the match lifecycle state.
type Status string

const (
	StatusWaiting   Status = "WAITING"
	StatusCountdown Status = "COUNTDOWN"
	StatusPlaying   Status = "PLAYING"
	StatusFinished  Status = "FINISHED"
)

// MatchConfig is fixed at creation.
type MatchConfig struct {
	PlayersPerTeam int `json:"playersPerTeam"`
	GoalsToWin     int `json:"goalsToWin"`
}

// Score holds goals per side.
type Score struct {
	ForA int `json:"forA"`
	ForB int `json:"forB"`
}

// Match is the root aggregate: two rosters, one ball, one score. All
// timestamps are unix milliseconds on the simulation clock.
type Match struct {
	ID      string      `json:"id"`
	Status  Status      `json:"status"`
	Config  MatchConfig `json:"config"`
	RosterA []Player    `json:"rosterA"`
	RosterB []Player    `json:"rosterB"`
	Ball    Ball        `json:"ball"`
	Score   Score       `json:"score"`
	Winner  Team        `json:"winner,omitempty"`

	CreatedAt          int64 `json:"createdAt"`
	StartedAt          int64 `json:"startedAt,omitempty"`
	FinishedAt         int64 `json:"finishedAt,omitempty"`
	CountdownStartedAt int64 `json:"countdownStartedAt,omitempty"`

	// LastSimulatedAt is advanced only by the catch-up loop, never by action
	// handlers.
	LastSimulatedAt int64 `json:"lastSimulatedAt"`

	// Version increments by exactly one per committed mutation (tick, join,
	// or action). Writes are accepted only against the observed version.
	Version int64 `json:"version"`
}

// FieldCenter is the kickoff spot.
func FieldCenter() Vec {
	return Vec{X: FieldWidth / 2, Y: FieldHeight / 2}
}

// GoalCenter returns the center of the goal mouth the given team defends.
func GoalCenter(defending Team) Vec {
	if defending == TeamA {
		return Vec{X: 0, Y: FieldHeight / 2}
	}
	return Vec{X: FieldWidth, Y: FieldHeight / 2}
}

// InGoalMouth reports whether y lies within the goal-mouth band.
func InGoalMouth(y float64) bool {
	half := GoalMouthWidth / 2
	return y >= FieldHeight/2-half && y <= FieldHeight/2+half
}

// ClampPlayerPosition keeps a player center inside the pitch.
func ClampPlayerPosition(v Vec) Vec {
	return v.Clamp(PlayerRadius, FieldWidth-PlayerRadius, PlayerRadius, FieldHeight-PlayerRadius)
}

// ClampBallPosition keeps the ball center inside the pitch.
func ClampBallPosition(v Vec) Vec {
	return v.Clamp(BallRadius, FieldWidth-BallRadius, BallRadius, FieldHeight-BallRadius)
}

// NewMatch constructs an empty Waiting match. The first player joins through
// Join like everyone else.
func NewMatch(id string, cfg MatchConfig, nowMs int64) *Match {
	m := &Match{
		ID:              id,
		Status:          StatusWaiting,
		Config:          cfg,
		RosterA:         make([]Player, 0, cfg.PlayersPerTeam),
		RosterB:         make([]Player, 0, cfg.PlayersPerTeam),
		CreatedAt:       nowMs,
		LastSimulatedAt: nowMs,
		Version:         1,
	}
	m.Ball.Reset(FieldCenter())
	return m
}

// Join adds a player, auto-assigning team and role unless preferences are
// given, and flips Waiting into Countdown when both rosters fill.
func (m *Match) Join(playerID, name string, teamPref Team, rolePref Role, nowMs int64) (*Player, error) {
	if m.Status != StatusWaiting {
		return nil, Failf(FailureInvalidState, "match %s already started", m.ID)
	}

	team, err := m.pickTeam(teamPref)
	if err != nil {
		return nil, err
	}
	roster := m.roster(team)

	role := rolePref
	switch role {
	case "":
		role = AssignRole(CountRoles(*roster))
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleStriker:
	default:
		return nil, Failf(FailureValidation, "unknown role %q", rolePref)
	}

	p := Player{
		ID:       playerID,
		Name:     name,
		Team:     team,
		Role:     role,
		Position: KickoffPosition(role, team, len(*roster)),
	}
	*roster = append(*roster, p)

	if len(m.RosterA) >= m.Config.PlayersPerTeam && len(m.RosterB) >= m.Config.PlayersPerTeam {
		m.Status = StatusCountdown
		m.CountdownStartedAt = nowMs
	}

	m.Version++
	return &(*roster)[len(*roster)-1], nil
}

func (m *Match) pickTeam(pref Team) (Team, error) {
	full := func(t Team) bool { return len(*m.roster(t)) >= m.Config.PlayersPerTeam }

	if pref != "" && pref != TeamA && pref != TeamB {
		return "", Failf(FailureValidation, "unknown team %q", pref)
	}

	if pref == TeamA || pref == TeamB {
		if !full(pref) {
			return pref, nil
		}
		if !full(pref.Opponent()) {
			return pref.Opponent(), nil
		}
		return "", Failf(FailureInvalidState, "match %s is full", m.ID)
	}

	switch {
	case full(TeamA) && full(TeamB):
		return "", Failf(FailureInvalidState, "match %s is full", m.ID)
	case len(m.RosterB) < len(m.RosterA) && !full(TeamB):
		return TeamB, nil
	case full(TeamA):
		return TeamB, nil
	default:
		return TeamA, nil
	}
}

func (m *Match) roster(t Team) *[]Player {
	if t == TeamA {
		return &m.RosterA
	}
	return &m.RosterB
}

// PlayerByID finds a player on either roster.
func (m *Match) PlayerByID(id string) (*Player, bool) {
	for i := range m.RosterA {
		if m.RosterA[i].ID == id {
			return &m.RosterA[i], true
		}
	}
	for i := range m.RosterB {
		if m.RosterB[i].ID == id {
			return &m.RosterB[i], true
		}
	}
	return nil, false
}

// EachPlayer visits every player in the fixed arbitration order: roster A in
// join order, then roster B. Stops early when fn returns false.
func (m *Match) EachPlayer(fn func(p *Player) bool) {
	for i := range m.RosterA {
		if !fn(&m.RosterA[i]) {
			return
		}
	}
	for i := range m.RosterB {
		if !fn(&m.RosterB[i]) {
			return
		}
	}
}

// ClearPossession detaches the ball from every player.
func (m *Match) ClearPossession() {
	m.Ball.PossessorID = ""
	m.EachPlayer(func(p *Player) bool {
		p.HasBall = false
		return true
	})
}

// TeamScore returns a pointer to the score slot for the given team.
func (m *Match) TeamScore(t Team) *int {
	if t == TeamA {
		return &m.Score.ForA
	}
	return &m.Score.ForB
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (m Match) Clone() Match {
	out := m
	out.RosterA = clonePlayers(m.RosterA)
	out.RosterB = clonePlayers(m.RosterB)
	return out
}

func clonePlayers(roster []Player) []Player {
	if roster == nil {
		return nil
	}
	out := make([]Player, len(roster))
	copy(out, roster)
	for i := range out {
		if out[i].TargetPosition != nil {
			target := *out[i].TargetPosition
			out[i].TargetPosition = &target
		}
		if out[i].Speed != nil {
			speed := *out[i].Speed
			out[i].Speed = &speed
		}
	}
	return out
}

// roleLine is the fraction of own-half depth a role lines up at for kickoff.
var roleLine = map[Role]float64{
	RoleGoalkeeper: 0.06,
	RoleDefender:   0.22,
	RoleMidfielder: 0.36,
	RoleStriker:    0.46,
}

// KickoffPosition places a joiner on their formation line. The vertical lane
// rotates with roster size so lines stay populated as players join.
func KickoffPosition(role Role, team Team, rosterSize int) Vec {
	frac, ok := roleLine[role]
	if !ok {
		frac = roleLine[RoleStriker]
	}

	x := FieldWidth * frac
	if team == TeamB {
		x = FieldWidth * (1 - frac)
	}

	lane := rosterSize % 5
	y := FieldHeight * float64(lane+1) / 6

	return ClampPlayerPosition(Vec{X: x, Y: y})
}
