package counters

import (
	"sort"
	"strconv"
	"strings"
)

// Well-known counter kinds. Any other string is a valid kind too.
const (
	PlusOne  = "+1/+1"
	MinusOne = "-1/-1"
	Loyalty  = "loyalty"
	Charge   = "charge"
	Oil      = "oil"
	Shield   = "shield"
	Lore     = "lore"
	Stun     = "stun"
)

// Counters is the bag of counters sitting on a single card.
// The zero value is not usable; call New.
type Counters struct {
	counts map[string]int
}

// New creates an empty counter bag.
func New() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Add puts amount counters of the given kind on the bag. Non-positive amounts
// are ignored.
func (cs *Counters) Add(kind string, amount int) {
	kind = strings.TrimSpace(kind)
	if amount <= 0 || kind == "" {
		return
	}
	cs.counts[kind] += amount
}

// Remove takes up to amount counters of kind off the bag and reports how many
// were actually removed.
func (cs *Counters) Remove(kind string, amount int) int {
	have := cs.counts[kind]
	if amount <= 0 || have == 0 {
		return 0
	}
	if amount > have {
		amount = have
	}
	if have-amount == 0 {
		delete(cs.counts, kind)
	} else {
		cs.counts[kind] = have - amount
	}
	return amount
}

// Count returns the number of counters of kind.
func (cs *Counters) Count(kind string) int {
	return cs.counts[kind]
}

// Total returns the number of counters of every kind.
func (cs *Counters) Total() int {
	total := 0
	for _, n := range cs.counts {
		total += n
	}
	return total
}

// Kinds returns every kind present, sorted.
func (cs *Counters) Kinds() []string {
	kinds := make([]string, 0, len(cs.counts))
	for kind := range cs.counts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Proliferate adds one more counter of each kind already present and returns
// the kinds that grew.
func (cs *Counters) Proliferate() []string {
	kinds := cs.Kinds()
	for _, kind := range kinds {
		cs.counts[kind]++
	}
	return kinds
}

// Boost sums the power/toughness deltas of every boost counter ("+1/+1",
// "-1/-1", "+2/+0", ...).
func (cs *Counters) Boost() (power, toughness int) {
	for kind, n := range cs.counts {
		p, t, ok := ParseBoost(kind)
		if !ok {
			continue
		}
		power += p * n
		toughness += t * n
	}
	return power, toughness
}

// Copy returns a deep copy of the bag.
func (cs *Counters) Copy() *Counters {
	cpy := New()
	for kind, n := range cs.counts {
		cpy.counts[kind] = n
	}
	return cpy
}

// ParseBoost parses a boost counter name such as "+1/+1" into its deltas.
func ParseBoost(name string) (int, int, bool) {
	parts := strings.Split(name, "/")
	if len(parts) != 2 {
		return 0, 0, false
	}
	p, err := parseSigned(parts[0])
	if err != nil {
		return 0, 0, false
	}
	t, err := parseSigned(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return p, t, true
}

func parseSigned(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "-") {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}
