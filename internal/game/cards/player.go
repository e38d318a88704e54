package cards

import (
	"fmt"
	"strings"
)

// Player is one of the two participants.
type Player int

const (
	// PlayerBot is the seat driven by the automation.
	PlayerBot Player = iota
	// PlayerOpponent is the other seat.
	PlayerOpponent
)

// Players lists both seats in seat order.
var Players = []Player{PlayerBot, PlayerOpponent}

// Other returns the opposing seat.
func (p Player) Other() Player {
	if p == PlayerBot {
		return PlayerOpponent
	}
	return PlayerBot
}

func (p Player) String() string {
	if p == PlayerBot {
		return "bot"
	}
	return "opponent"
}

// ParsePlayer accepts "bot"/"you" and "opponent"/"opp".
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bot", "you", "self", "":
		return PlayerBot, nil
	case "opponent", "opp":
		return PlayerOpponent, nil
	}
	return PlayerBot, fmt.Errorf("unknown player %q", s)
}

// Phase is a step of the turn.
type Phase string

const (
	PhaseBeginning        Phase = "BEGINNING"
	PhaseUpkeep           Phase = "UPKEEP"
	PhaseDraw             Phase = "DRAW"
	PhasePrecombatMain    Phase = "PRECOMBAT_MAIN"
	PhaseBeginCombat      Phase = "BEGIN_COMBAT"
	PhaseDeclareAttackers Phase = "DECLARE_ATTACKERS"
	PhaseDeclareBlockers  Phase = "DECLARE_BLOCKERS"
	PhaseCombatDamage     Phase = "COMBAT_DAMAGE"
	PhaseEndCombat        Phase = "END_COMBAT"
	PhasePostcombatMain   Phase = "POSTCOMBAT_MAIN"
	PhaseEnd              Phase = "END"
	PhaseCleanup          Phase = "CLEANUP"
)

// Phases lists every phase in turn order.
var Phases = []Phase{
	PhaseBeginning,
	PhaseUpkeep,
	PhaseDraw,
	PhasePrecombatMain,
	PhaseBeginCombat,
	PhaseDeclareAttackers,
	PhaseDeclareBlockers,
	PhaseCombatDamage,
	PhaseEndCombat,
	PhasePostcombatMain,
	PhaseEnd,
	PhaseCleanup,
}

// ParsePhase matches a phase name case-insensitively.
func ParsePhase(s string) (Phase, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range Phases {
		if string(p) == want {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q", s)
}
