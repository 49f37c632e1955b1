package domain

// Team tags one of the two sides. Team A defends the x=0 goal and attacks
// toward x=FieldWidth; Team B the reverse.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Opponent returns the other side.
func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Role is a player's position on the pitch, fixed at join time.
type Role string

const (
	RoleGoalkeeper Role = "GOALKEEPER"
	RoleDefender   Role = "DEFENDER"
	RoleMidfielder Role = "MIDFIELDER"
	RoleStriker    Role = "STRIKER"
)

// Stats tracks per-player counters. All counters only ever increase.
type Stats struct {
	Goals   int `json:"goals"`
	Assists int `json:"assists"`
	Passes  int `json:"passes"`
	Tackles int `json:"tackles"`
}

// Player is one roster entry. Identity is ID; a player never changes teams.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Team     Team   `json:"team"`
	Role     Role   `json:"role"`
	Position Vec    `json:"position"`

	// TargetPosition is set while the player is in autonomous transit and
	// cleared on arrival.
	TargetPosition *Vec `json:"targetPosition,omitempty"`

	// Speed overrides the default locomotion speed once set; nil means the
	// default applies.
	Speed *float64 `json:"speed,omitempty"`

	HasBall bool `json:"hasBall"`

	// LastActionAt is the simulation-clock stamp of the last accepted action.
	// A single timer gates all four action types; each type applies its own
	// cooldown duration against it.
	LastActionAt int64 `json:"lastActionAt,omitempty"`

	Stats Stats `json:"stats"`
}

// RoleCounts summarizes how many of each non-striker role a roster holds.
type RoleCounts struct {
	Goalkeepers int
	Defenders   int
	Midfielders int
}

// CountRoles tallies the roles present in a roster.
func CountRoles(roster []Player) RoleCounts {
	var c RoleCounts
	for _, p := range roster {
		switch p.Role {
		case RoleGoalkeeper:
			c.Goalkeepers++
		case RoleDefender:
			c.Defenders++
		case RoleMidfielder:
			c.Midfielders++
		}
	}
	return c
}

// AssignRole picks the role for the next joiner: one goalkeeper first, then
// defenders up to two, then midfielders up to two, then strikers.
func AssignRole(c RoleCounts) Role {
	switch {
	case c.Goalkeepers < 1:
		return RoleGoalkeeper
	case c.Defenders < 2:
		return RoleDefender
	case c.Midfielders < 2:
		return RoleMidfielder
	default:
		return RoleStriker
	}
}
