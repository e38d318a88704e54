package rules

import "github.com/arenapilot/arenapilot/internal/game/cards"

// Priority tracks who may act next and how many consecutive passes happened
// since the last push.
type Priority struct {
	holder cards.Player
	passes int
}

// NewPriority gives priority to first.
func NewPriority(first cards.Player) *Priority {
	return &Priority{holder: first}
}

// Holder returns the player who currently has priority.
func (p *Priority) Holder() cards.Player {
	return p.holder
}

// Passes returns the consecutive pass count.
func (p *Priority) Passes() int {
	return p.passes
}

// Pass records a pass. It returns true when both players passed in
// succession, in which case the counter is reset and the caller resolves the
// top of the stack. Otherwise priority moves to the other player.
func (p *Priority) Pass() bool {
	p.passes++
	if p.passes >= 2 {
		p.passes = 0
		return true
	}
	p.holder = p.holder.Other()
	return false
}

// Reset clears the pass counter. Every push calls it: both players have to
// pass again before the stack can progress.
func (p *Priority) Reset() {
	p.passes = 0
}

// GiveTo hands priority to player without touching the pass counter.
func (p *Priority) GiveTo(player cards.Player) {
	p.holder = player
}
