package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/arenapilot/arenapilot/internal/game"
	"github.com/arenapilot/arenapilot/internal/game/cards"
)

// ErrExpectation is returned when the game state differs from a step's
// expectation.
var ErrExpectation = errors.New("expectation not met")

// Expectation is a partial description of the game state. Unset fields are
// not checked. Player keys accept the names cards.ParsePlayer does; card keys
// are scenario aliases.
type Expectation struct {
	Life     map[string]int `yaml:"life,omitempty"`
	Drawn    map[string]int `yaml:"drawn,omitempty"`
	Stack    *int           `yaml:"stack,omitempty"`
	Top      string         `yaml:"top,omitempty"`
	Passes   *int           `yaml:"passes,omitempty"`
	Priority string         `yaml:"priority,omitempty"`
	Phase    cards.Phase    `yaml:"phase,omitempty"`
	Turn     int            `yaml:"turn,omitempty"`
	Pending  *int           `yaml:"pending,omitempty"`

	Battlefield []string `yaml:"battlefield,omitempty"`
	Graveyard   []string `yaml:"graveyard,omitempty"`
	Exile       []string `yaml:"exile,omitempty"`
	Hand        []string `yaml:"hand,omitempty"`

	Power   map[string]int `yaml:"power,omitempty"`
	Damage  map[string]int `yaml:"damage,omitempty"`
	Tapped  []string       `yaml:"tapped,omitempty"`
	Missing []string       `yaml:"missing,omitempty"`
}

// check compares the engine against x and reports every mismatch at once.
func (x *Expectation) check(e *game.Engine, resolve func(string) (*cards.Card, error)) error {
	var diffs []string
	mismatch := func(what string, want, got any) {
		diffs = append(diffs, fmt.Sprintf("%s: want %v, got %v", what, want, got))
	}

	for name, want := range x.Life {
		p, err := cards.ParsePlayer(name)
		if err != nil {
			return err
		}
		if got := e.Life(p); got != want {
			mismatch("life of "+p.String(), want, got)
		}
	}
	for name, want := range x.Drawn {
		p, err := cards.ParsePlayer(name)
		if err != nil {
			return err
		}
		if got := e.Drawn(p); got != want {
			mismatch("cards drawn by "+p.String(), want, got)
		}
	}
	if x.Stack != nil && e.StackLen() != *x.Stack {
		mismatch("stack size", *x.Stack, e.StackLen())
	}
	if x.Top != "" {
		got := ""
		if entries := e.Stack(); len(entries) > 0 {
			got = entries[0].Description()
		}
		if !strings.Contains(got, x.Top) {
			mismatch("top of stack", x.Top, got)
		}
	}
	if x.Passes != nil && e.Passes() != *x.Passes {
		mismatch("passes", *x.Passes, e.Passes())
	}
	if x.Priority != "" {
		p, err := cards.ParsePlayer(x.Priority)
		if err != nil {
			return err
		}
		if got := e.PriorityHolder(); got != p {
			mismatch("priority", p, got)
		}
	}
	if x.Phase != "" && !strings.EqualFold(string(x.Phase), string(e.Phase())) {
		mismatch("phase", x.Phase, e.Phase())
	}
	if x.Turn != 0 && e.Turn() != x.Turn {
		mismatch("turn", x.Turn, e.Turn())
	}
	if x.Pending != nil && len(e.PendingDelayed()) != *x.Pending {
		mismatch("pending delayed effects", *x.Pending, len(e.PendingDelayed()))
	}

	zones := []struct {
		name string
		want []string
		got  []*cards.Card
	}{
		{"battlefield", x.Battlefield, e.Battlefield()},
		{"graveyard", x.Graveyard, e.Graveyard()},
		{"exile", x.Exile, e.Exiled()},
		{"hand", x.Hand, e.Hand()},
	}
	for _, z := range zones {
		if z.want == nil {
			continue
		}
		got := cardNames(z.got)
		if !slices.Equal(z.want, got) {
			mismatch(z.name, z.want, got)
		}
	}

	onField := func(alias string) (*cards.Card, bool, error) {
		c, err := resolve(alias)
		if err != nil {
			return nil, false, err
		}
		live, ok := e.Card(c.ID)
		return live, ok, nil
	}
	for alias, want := range x.Power {
		c, ok, err := onField(alias)
		if err != nil {
			return err
		}
		if !ok {
			mismatch("power of "+alias, want, "not on the battlefield")
		} else if got := c.CurrentPower(); got != want {
			mismatch("power of "+alias, want, got)
		}
	}
	for alias, want := range x.Damage {
		c, ok, err := onField(alias)
		if err != nil {
			return err
		}
		if !ok {
			mismatch("damage on "+alias, want, "not on the battlefield")
		} else if c.Damage != want {
			mismatch("damage on "+alias, want, c.Damage)
		}
	}
	for _, alias := range x.Tapped {
		c, ok, err := onField(alias)
		if err != nil {
			return err
		}
		if !ok || !c.Tapped {
			diffs = append(diffs, alias+" is not tapped")
		}
	}
	for _, alias := range x.Missing {
		_, ok, err := onField(alias)
		if err != nil {
			return err
		}
		if ok {
			diffs = append(diffs, alias+" is still on the battlefield")
		}
	}

	if len(diffs) > 0 {
		slices.Sort(diffs)
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(diffs, "; "))
	}
	return nil
}

func cardNames(cs []*cards.Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}
