// Package combat computes the outcome of one combat damage step. It is a pure
// function over creature stats and knows nothing about the stack or the
// battlefield; the caller applies the result.
package combat

import "github.com/arenapilot/arenapilot/internal/game/cards"

// Creature is the combat-relevant view of a creature.
type Creature struct {
	Power     int
	Toughness int
	Keywords  cards.Keywords
}

func (c Creature) firstStrikes() bool {
	return c.Keywords.Has(cards.FirstStrike) || c.Keywords.Has(cards.DoubleStrike)
}

// strikesNormally reports whether c deals damage in the regular sub-step.
// Double strikers act in both; first-strike-only creatures only in the first.
func (c Creature) strikesNormally() bool {
	return c.Keywords.Has(cards.DoubleStrike) || !c.Keywords.Has(cards.FirstStrike)
}

// Group is one attacker and the blockers assigned to it, as positions in the
// unified creature list.
type Group struct {
	Attacker int
	Blockers []int
}

// Result is the outcome of one combat. Attacker slices follow the order of
// the attackers argument; blocker slices follow blockerStats.
type Result struct {
	AttackersSurvived []bool
	BlockersSurvived  []bool
	// AttackerDamage and BlockerDamage are the damage each creature took.
	AttackerDamage  []int
	BlockerDamage   []int
	UnblockedDamage int
	LifeGained      int
}

type fighter struct {
	Creature
	damage       int
	deathtouched bool
}

func (f *fighter) lethallyDamaged() bool {
	return f.deathtouched || f.damage >= f.Toughness
}

// remainingLethal is the damage f can still absorb before it is lethally
// damaged by a source with or without deathtouch.
func (f *fighter) remainingLethal(deathtouch bool) int {
	if deathtouch {
		return 1
	}
	if left := f.Toughness - f.damage; left > 0 {
		return left
	}
	return 0
}

func (f *fighter) take(amount int, deathtouch bool) {
	if amount <= 0 {
		return
	}
	f.damage += amount
	if deathtouch {
		f.deathtouched = true
	}
}

type resolver struct {
	fighters  []fighter
	groups    []Group
	unblocked int
	lifelink  int
}

// Resolve runs the first-strike and regular damage sub-steps for one combat.
//
// attackers lists indices into attackerStats; blocks maps an attacker index to
// indices into blockerStats in damage assignment order. A blocker assigned to
// several attackers deals its damage to the first of them. If preventLifeGain
// points at true, the lifelink total is zeroed and the flag cleared.
//
// Indices must be valid for the supplied slices.
func Resolve(attackers []int, attackerStats, blockerStats []Creature, blocks map[int][]int, preventLifeGain *bool) Result {
	offset := len(attackers)
	r := &resolver{fighters: make([]fighter, offset+len(blockerStats))}
	for i, a := range attackers {
		r.fighters[i] = fighter{Creature: attackerStats[a]}
	}
	for j, b := range blockerStats {
		r.fighters[offset+j] = fighter{Creature: b}
	}

	r.groups = make([]Group, len(attackers))
	for i, a := range attackers {
		g := Group{Attacker: i}
		for _, b := range blocks[a] {
			g.Blockers = append(g.Blockers, offset+b)
		}
		r.groups[i] = g
	}

	r.step(func(f *fighter) bool { return f.firstStrikes() })
	r.step(func(f *fighter) bool { return f.strikesNormally() && !f.lethallyDamaged() })

	res := Result{
		AttackersSurvived: make([]bool, len(attackers)),
		AttackerDamage:    make([]int, len(attackers)),
		BlockersSurvived:  make([]bool, len(blockerStats)),
		BlockerDamage:     make([]int, len(blockerStats)),
		UnblockedDamage:   r.unblocked,
		LifeGained:        r.lifelink,
	}
	for i := range attackers {
		f := &r.fighters[i]
		res.AttackersSurvived[i] = !f.lethallyDamaged()
		res.AttackerDamage[i] = f.damage
	}
	for j := range blockerStats {
		f := &r.fighters[offset+j]
		res.BlockersSurvived[j] = !f.lethallyDamaged()
		res.BlockerDamage[j] = f.damage
	}

	if preventLifeGain != nil && *preventLifeGain {
		res.LifeGained = 0
		*preventLifeGain = false
	}
	return res
}

// step lets every creature selected by acts deal its damage. The selection is
// made for all creatures before any damage of the step is dealt.
func (r *resolver) step(acts func(*fighter) bool) {
	acting := make([]bool, len(r.fighters))
	for i := range r.fighters {
		acting[i] = acts(&r.fighters[i])
	}

	for _, g := range r.groups {
		if acting[g.Attacker] {
			r.attackerStrikes(g)
		}
	}

	struck := make([]bool, len(r.fighters))
	for _, g := range r.groups {
		for _, b := range g.Blockers {
			if !acting[b] || struck[b] {
				continue
			}
			struck[b] = true
			blocker := &r.fighters[b]
			dealt := max(blocker.Power, 0)
			r.fighters[g.Attacker].take(dealt, blocker.Keywords.Has(cards.Deathtouch))
			r.gain(blocker, dealt)
		}
	}
}

// attackerStrikes assigns an attacker's power: to the defending player when
// unblocked, otherwise across its blockers in order, each taking up to lethal
// damage with any remainder landing on the last blocker.
func (r *resolver) attackerStrikes(g Group) {
	attacker := &r.fighters[g.Attacker]
	power := max(attacker.Power, 0)
	r.gain(attacker, power)

	if len(g.Blockers) == 0 {
		r.unblocked += power
		return
	}

	deathtouch := attacker.Keywords.Has(cards.Deathtouch)
	remaining := power
	for k, b := range g.Blockers {
		blocker := &r.fighters[b]
		assigned := remaining
		if k < len(g.Blockers)-1 {
			assigned = min(remaining, blocker.remainingLethal(deathtouch))
		}
		blocker.take(assigned, deathtouch)
		remaining -= assigned
		if remaining == 0 {
			return
		}
	}
}

func (r *resolver) gain(f *fighter, dealt int) {
	if f.Keywords.Has(cards.Lifelink) {
		r.lifelink += dealt
	}
}
