package domain

// Ball is the single match ball. While possessed its velocity is zero and its
// position tracks the possessor.
type Ball struct {
	Position Vec `json:"position"`
	Velocity Vec `json:"velocity"`

	// PossessorID names the player the ball is attached to; empty means the
	// ball is free.
	PossessorID string `json:"possessorId,omitempty"`

	// LastTouchedBy survives possession changes and gates reclaiming a ball
	// still in flight. Reset only when the ball resets after a goal.
	LastTouchedBy string `json:"lastTouchedBy,omitempty"`

	// PreviousTouchedBy is the toucher before the current one, kept for
	// assist credit on goals.
	PreviousTouchedBy string `json:"previousTouchedBy,omitempty"`
}

// Touch records playerID as the most recent toucher, shifting the prior
// toucher into PreviousTouchedBy when it was a different player.
func (b *Ball) Touch(playerID string) {
	if b.LastTouchedBy != playerID {
		b.PreviousTouchedBy = b.LastTouchedBy
	}
	b.LastTouchedBy = playerID
}

// Reset places the ball at center with no motion, possession, or touch
// history.
func (b *Ball) Reset(center Vec) {
	b.Position = center
	b.Velocity = Vec{}
	b.PossessorID = ""
	b.LastTouchedBy = ""
	b.PreviousTouchedBy = ""
}
