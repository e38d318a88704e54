package rules

import (
	"sort"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/google/uuid"
)

// StackEntryKind describes the type of object on the stack.
type StackEntryKind string

const (
	// StackEntrySpell represents a spell cast by a player.
	StackEntrySpell StackEntryKind = "SPELL"
	// StackEntryTriggered represents a triggered ability.
	StackEntryTriggered StackEntryKind = "TRIGGERED"
	// StackEntryActivated represents an activated ability.
	StackEntryActivated StackEntryKind = "ACTIVATED"
)

// Tier is the priority band of a stack entry. Higher tiers resolve first.
type Tier int

const (
	TierSpell       Tier = 0
	TierTrigger     Tier = 1
	TierStatTrigger Tier = 2
	TierActivated   Tier = 3
)

// StackEntry is a pending spell or ability.
type StackEntry struct {
	ID         string
	Kind       StackEntryKind
	Controller cards.Player
	// Card is the spell for StackEntrySpell.
	Card *cards.Card
	// Effect is the captured effect for abilities.
	Effect cards.Effect
	Source cards.ID
	// Target is the target captured on cast, NoID if none.
	Target cards.ID
	Tier   Tier
	Seq    uint64
}

// Above reports whether e resolves before other: higher tier first, then the
// most recently pushed. Sequence numbers are unique so two entries never tie.
func (e StackEntry) Above(other StackEntry) bool {
	if e.Tier != other.Tier {
		return e.Tier > other.Tier
	}
	return e.Seq > other.Seq
}

// Description returns a short human readable label.
func (e StackEntry) Description() string {
	if e.Kind == StackEntrySpell && e.Card != nil {
		return e.Card.Name
	}
	return e.Effect.String()
}

// Stack holds pending entries ordered by Above. It is not safe for concurrent
// use; the engine that owns it serializes all access.
type Stack struct {
	// entries is kept sorted so the top is the last element.
	entries []StackEntry
	seq     uint64
}

// NewStack creates an empty stack.
func NewStack() *Stack {
	return &Stack{entries: make([]StackEntry, 0, 16)}
}

// Push stamps entry with the next sequence number (and an ID if it has none),
// inserts it at its place in the order and returns the stored entry.
func (s *Stack) Push(entry StackEntry) StackEntry {
	s.seq++
	entry.Seq = s.seq
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	idx := sort.Search(len(s.entries), func(i int) bool {
		return s.entries[i].Above(entry)
	})
	s.entries = append(s.entries, StackEntry{})
	copy(s.entries[idx+1:], s.entries[idx:])
	s.entries[idx] = entry
	return entry
}

// Pop removes and returns the top entry.
func (s *Stack) Pop() (StackEntry, bool) {
	if len(s.entries) == 0 {
		return StackEntry{}, false
	}
	idx := len(s.entries) - 1
	top := s.entries[idx]
	s.entries = s.entries[:idx]
	return top, true
}

// Peek returns the top entry without removing it.
func (s *Stack) Peek() (StackEntry, bool) {
	if len(s.entries) == 0 {
		return StackEntry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Remove deletes an entry anywhere in the stack by ID.
func (s *Stack) Remove(id string) (StackEntry, bool) {
	for idx := len(s.entries) - 1; idx >= 0; idx-- {
		if s.entries[idx].ID == id {
			entry := s.entries[idx]
			s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
			return entry, true
		}
	}
	return StackEntry{}, false
}

// List returns a copy of the entries in resolution order (top first).
func (s *Stack) List() []StackEntry {
	out := make([]StackEntry, len(s.entries))
	for i := range s.entries {
		out[i] = s.entries[len(s.entries)-1-i]
	}
	return out
}

// Len returns the number of pending entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether nothing is pending.
func (s *Stack) IsEmpty() bool {
	return len(s.entries) == 0
}
