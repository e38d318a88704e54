package rules

import (
	"fmt"

	"github.com/arenapilot/arenapilot/internal/game/cards"
)

type deathWatchEntry struct {
	tracked cards.ID
	effect  cards.Effect
}

// DeathWatch holds effects conditioned on "if the target dies this turn".
type DeathWatch struct {
	entries []deathWatchEntry
}

// NewDeathWatch creates an empty watch list.
func NewDeathWatch() *DeathWatch {
	return &DeathWatch{}
}

// Watch records effect to fire if tracked dies before the turn ends.
func (w *DeathWatch) Watch(tracked cards.ID, effect cards.Effect) {
	w.entries = append(w.entries, deathWatchEntry{tracked: tracked, effect: effect})
}

// Fire returns the effects watching died and forgets them, so each fires at
// most once.
func (w *DeathWatch) Fire(died cards.ID) []cards.Effect {
	var fired []cards.Effect
	kept := w.entries[:0]
	for _, e := range w.entries {
		if e.tracked == died {
			fired = append(fired, e.effect)
			continue
		}
		kept = append(kept, e)
	}
	w.entries = kept
	return fired
}

// Len returns the number of effects being watched.
func (w *DeathWatch) Len() int {
	return len(w.entries)
}

// Clear drops every entry. Called at end of turn.
func (w *DeathWatch) Clear() {
	w.entries = nil
}

// TurnWatcher tracks per-turn facts the activation conditions depend on.
type TurnWatcher struct {
	lifeLost  map[cards.Player]int
	activated map[string]bool
}

// NewTurnWatcher creates a watcher for a fresh turn.
func NewTurnWatcher() *TurnWatcher {
	return &TurnWatcher{
		lifeLost:  make(map[cards.Player]int),
		activated: make(map[string]bool),
	}
}

// RecordLifeLost notes that player lost amount life this turn.
func (w *TurnWatcher) RecordLifeLost(player cards.Player, amount int) {
	if amount > 0 {
		w.lifeLost[player] += amount
	}
}

// LostLife reports whether player lost any life this turn.
func (w *TurnWatcher) LostLife(player cards.Player) bool {
	return w.lifeLost[player] > 0
}

// LifeLost returns how much life player lost this turn.
func (w *TurnWatcher) LifeLost(player cards.Player) int {
	return w.lifeLost[player]
}

// RecordActivation notes that the ability was activated this turn.
func (w *TurnWatcher) RecordActivation(source cards.ID, index int) {
	w.activated[activationKey(source, index)] = true
}

// Activated reports whether the ability was already activated this turn.
func (w *TurnWatcher) Activated(source cards.ID, index int) bool {
	return w.activated[activationKey(source, index)]
}

// Reset clears everything at end of turn.
func (w *TurnWatcher) Reset() {
	w.lifeLost = make(map[cards.Player]int)
	w.activated = make(map[string]bool)
}

func activationKey(source cards.ID, index int) string {
	return fmt.Sprintf("%d/%d", source, index)
}
