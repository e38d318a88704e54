package cards

// AbilityKind is the tag of an Ability.
type AbilityKind string

const (
	// AbilityEvery produces its effects every time its trigger matches.
	AbilityEvery AbilityKind = "EVERY"
	// AbilityOncePerTurn produces its effects only the first time its trigger
	// matches each turn.
	AbilityOncePerTurn AbilityKind = "ONCE_PER_TURN"
	// AbilityThreshold produces its effects once, on the Nth match of the turn.
	AbilityThreshold AbilityKind = "THRESHOLD"
)

// Ability is what a trigger fires. It is plain data plus the small amount of
// per-turn state its kind needs.
type Ability struct {
	Kind      AbilityKind
	Effects   []Effect
	Threshold int

	used bool
	seen int
}

// Every builds an ability that always fires.
func Every(effects ...Effect) Ability {
	return Ability{Kind: AbilityEvery, Effects: effects}
}

// OncePerTurn builds an ability that fires the first time each turn.
func OncePerTurn(effects ...Effect) Ability {
	return Ability{Kind: AbilityOncePerTurn, Effects: effects}
}

// AfterCount builds an ability that fires once the trigger matched n times in
// the same turn.
func AfterCount(n int, effects ...Effect) Ability {
	return Ability{Kind: AbilityThreshold, Threshold: n, Effects: effects}
}

// Produce returns the effects the ability creates for an event its trigger
// matched. Amounts marked AmountFromEvent are bound from events that carry an
// amount (ManaAdded, CounterAdded) and default to 1 otherwise.
func (a *Ability) Produce(trigger EventKind, ev Event) []Effect {
	switch a.Kind {
	case AbilityEvery:
	case AbilityOncePerTurn:
		if a.used {
			return nil
		}
		a.used = true
	case AbilityThreshold:
		a.seen++
		if a.used || a.seen < a.Threshold {
			return nil
		}
		a.used = true
	default:
		return nil
	}

	amount := 1
	switch trigger {
	case EventManaAdded, EventCounterAdded:
		amount = ev.Amount
	}

	out := make([]Effect, len(a.Effects))
	for i, e := range a.Effects {
		out[i] = e.bindAmount(amount)
	}
	return out
}

// Used reports whether a once-per-turn or threshold ability already fired this
// turn.
func (a *Ability) Used() bool {
	return a.used
}

// ResetTurn clears per-turn state so the ability can fire again.
func (a *Ability) ResetTurn() {
	a.used = false
	a.seen = 0
}

func (a Ability) clone() Ability {
	a.Effects = cloneEffects(a.Effects)
	return a
}

// ActivationCondition gates when an activated ability may be used.
type ActivationCondition string

const (
	ActivateAlways                     ActivationCondition = ""
	ActivateOpponentLostLifeThisTurn   ActivationCondition = "OPPONENT_LOST_LIFE_THIS_TURN"
	ActivateControllerLostLifeThisTurn ActivationCondition = "CONTROLLER_LOST_LIFE_THIS_TURN"
)

// ActivatedAbility is an ability a player chooses to use, at most once per
// turn.
type ActivatedAbility struct {
	Name      string
	Cost      string
	Effects   []Effect
	Condition ActivationCondition
}
