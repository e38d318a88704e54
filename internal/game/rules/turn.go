package rules

import "github.com/arenapilot/arenapilot/internal/game/cards"

// TurnClock tracks the turn number, the active player and the current phase.
type TurnClock struct {
	index  int
	turn   int
	active cards.Player
}

// NewTurnClock starts turn 1 at the beginning phase with active on turn.
func NewTurnClock(active cards.Player) *TurnClock {
	return &TurnClock{turn: 1, active: active}
}

// Phase returns the phase currently in progress.
func (tc *TurnClock) Phase() cards.Phase {
	return cards.Phases[tc.index]
}

// Turn returns the current turn number (1-based).
func (tc *TurnClock) Turn() int {
	return tc.turn
}

// Active returns the player whose turn it is.
func (tc *TurnClock) Active() cards.Player {
	return tc.active
}

// Advance moves to the next phase. Moving past cleanup starts a new turn for
// the other player and reports wrapped.
func (tc *TurnClock) Advance() (phase cards.Phase, wrapped bool) {
	tc.index++
	if tc.index >= len(cards.Phases) {
		tc.index = 0
		tc.turn++
		tc.active = tc.active.Other()
		wrapped = true
	}
	return tc.Phase(), wrapped
}

// Set jumps to phase within the current turn. Unknown phases are ignored.
func (tc *TurnClock) Set(phase cards.Phase) bool {
	for i, p := range cards.Phases {
		if p == phase {
			tc.index = i
			return true
		}
	}
	return false
}
