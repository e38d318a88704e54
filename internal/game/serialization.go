package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/arenapilot/arenapilot/internal/game/cards"
)

// CardView is the serializable state of one card.
type CardView struct {
	ID         uint64         `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Controller string         `json:"controller"`
	Power      int            `json:"power"`
	Toughness  int            `json:"toughness"`
	Damage     int            `json:"damage"`
	Tapped     bool           `json:"tapped"`
	AttachedTo uint64         `json:"attached_to,omitempty"`
	Keywords   []string       `json:"keywords,omitempty"`
	Counters   map[string]int `json:"counters,omitempty"`
}

// StackView is the serializable state of one stack entry.
type StackView struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Controller  string `json:"controller"`
	Tier        int    `json:"tier"`
	Seq         uint64 `json:"seq"`
}

// Snapshot is a point-in-time copy of the observable game state, used by the
// journal and the inspector.
type Snapshot struct {
	GameID         string         `json:"game_id"`
	Reason         string         `json:"reason"`
	Turn           int            `json:"turn"`
	Phase          string         `json:"phase"`
	ActivePlayer   string         `json:"active_player"`
	PriorityHolder string         `json:"priority_holder"`
	Passes         int            `json:"passes"`
	Life           map[string]int `json:"life"`
	Stack          []StackView    `json:"stack"`
	Battlefield    []CardView     `json:"battlefield"`
	Graveyard      []string       `json:"graveyard"`
	Exile          []string       `json:"exile"`
	Hand           []string       `json:"hand"`
	PendingDelayed int            `json:"pending_delayed"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Snapshot captures the current state.
func (e *Engine) Snapshot(reason string) *Snapshot {
	s := &Snapshot{
		GameID:         e.id,
		Reason:         reason,
		Turn:           e.clock.Turn(),
		Phase:          string(e.clock.Phase()),
		ActivePlayer:   e.clock.Active().String(),
		PriorityHolder: e.priority.Holder().String(),
		Passes:         e.priority.Passes(),
		Life:           make(map[string]int, len(e.life)),
		Graveyard:      names(e.zones[ZoneGraveyard]),
		Exile:          names(e.zones[ZoneExile]),
		Hand:           names(e.zones[ZoneHand]),
		PendingDelayed: len(e.delayed.Pending()),
		Timestamp:      time.Now(),
	}
	for p, life := range e.life {
		s.Life[p.String()] = life
	}
	for _, entry := range e.stack.List() {
		s.Stack = append(s.Stack, StackView{
			ID:          entry.ID,
			Kind:        string(entry.Kind),
			Description: entry.Description(),
			Controller:  entry.Controller.String(),
			Tier:        int(entry.Tier),
			Seq:         entry.Seq,
		})
	}
	for _, c := range e.battlefield.Cards() {
		s.Battlefield = append(s.Battlefield, viewOf(c))
	}
	return s
}

func viewOf(c *cards.Card) CardView {
	v := CardView{
		ID:         uint64(c.ID),
		Name:       c.Name,
		Type:       string(c.Type),
		Controller: c.Controller.String(),
		Power:      c.CurrentPower(),
		Toughness:  c.CurrentToughness(),
		Damage:     c.Damage,
		Tapped:     c.Tapped,
		AttachedTo: uint64(c.AttachedTo),
	}
	for _, k := range c.Keywords {
		v.Keywords = append(v.Keywords, string(k))
	}
	if c.Counters != nil && c.Counters.Total() > 0 {
		v.Counters = make(map[string]int)
		for _, kind := range c.Counters.Kinds() {
			v.Counters[kind] = c.Counters.Count(kind)
		}
	}
	return v
}

func names(cs []*cards.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}

// Checksum returns a SHA-256 over a canonical rendering of the snapshot. It
// leaves out the timestamp, the reason and the random stack entry ids, so two
// games that reached the same state compare equal.
func (s *Snapshot) Checksum() string {
	sum := sha256.Sum256([]byte(s.canonical()))
	return hex.EncodeToString(sum[:])
}

func (s *Snapshot) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%d|%s|%s|%s|%d|%d\n",
		s.Turn, s.Phase, s.ActivePlayer, s.PriorityHolder, s.Passes, s.PendingDelayed)

	players := make([]string, 0, len(s.Life))
	for p := range s.Life {
		players = append(players, p)
	}
	sort.Strings(players)
	for _, p := range players {
		fmt.Fprintf(&buf, "LIFE:%s|%d\n", p, s.Life[p])
	}

	for _, entry := range s.Stack {
		fmt.Fprintf(&buf, "STACK:%s|%s|%s|%d|%d\n",
			entry.Kind, entry.Description, entry.Controller, entry.Tier, entry.Seq)
	}

	for _, c := range s.Battlefield {
		fmt.Fprintf(&buf, "CARD:%d|%s|%s|%s|%d|%d|%d|%t|%d\n",
			c.ID, c.Name, c.Type, c.Controller, c.Power, c.Toughness, c.Damage, c.Tapped, c.AttachedTo)
		keywords := append([]string(nil), c.Keywords...)
		sort.Strings(keywords)
		for _, k := range keywords {
			fmt.Fprintf(&buf, "  KEYWORD:%s\n", k)
		}
		kinds := make([]string, 0, len(c.Counters))
		for k := range c.Counters {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&buf, "  COUNTER:%s|%d\n", k, c.Counters[k])
		}
	}

	for _, zone := range []struct {
		name  string
		cards []string
	}{{"GRAVEYARD", s.Graveyard}, {"EXILE", s.Exile}, {"HAND", s.Hand}} {
		for _, name := range zone.cards {
			fmt.Fprintf(&buf, "%s:%s\n", zone.name, name)
		}
	}
	return buf.String()
}

// record appends a snapshot to the journal if one is kept.
func (e *Engine) record(reason string) {
	if e.journal == nil {
		return
	}
	e.journal.Record(e.Snapshot(reason))
}
