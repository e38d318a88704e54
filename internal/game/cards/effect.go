package cards

import (
	"fmt"
	"strings"
)

// EffectKind is the tag of an Effect.
type EffectKind string

const (
	EffectModifyStats       EffectKind = "MODIFY_STATS"
	EffectDealDamage        EffectKind = "DEAL_DAMAGE"
	EffectDestroy           EffectKind = "DESTROY"
	EffectExile             EffectKind = "EXILE"
	EffectGainLife          EffectKind = "GAIN_LIFE"
	EffectLoseLife          EffectKind = "LOSE_LIFE"
	EffectDrawCards         EffectKind = "DRAW_CARDS"
	EffectAddCounters       EffectKind = "ADD_COUNTERS"
	EffectProliferate       EffectKind = "PROLIFERATE"
	EffectGrantAbility      EffectKind = "GRANT_ABILITY"
	EffectCreateToken       EffectKind = "CREATE_TOKEN"
	EffectCreateEnchantment EffectKind = "CREATE_ENCHANTMENT"
	EffectDelayed           EffectKind = "DELAYED"
	EffectConditional       EffectKind = "CONDITIONAL"
	EffectTargeted          EffectKind = "TARGETED_EFFECTS"
	EffectAddMana           EffectKind = "ADD_MANA"
	EffectPreventLifeGain   EffectKind = "PREVENT_LIFE_GAIN"
	EffectTap               EffectKind = "TAP"
	EffectBounce            EffectKind = "BOUNCE"
	EffectCustom            EffectKind = "CUSTOM"
)

var effectKinds = map[EffectKind]bool{
	EffectModifyStats: true, EffectDealDamage: true, EffectDestroy: true, EffectExile: true,
	EffectGainLife: true, EffectLoseLife: true, EffectDrawCards: true, EffectAddCounters: true,
	EffectProliferate: true, EffectGrantAbility: true, EffectCreateToken: true,
	EffectCreateEnchantment: true, EffectDelayed: true, EffectConditional: true,
	EffectTargeted: true, EffectAddMana: true, EffectPreventLifeGain: true, EffectTap: true,
	EffectBounce: true, EffectCustom: true,
}

// Valid reports whether k is a known effect kind.
func (k EffectKind) Valid() bool { return effectKinds[k] }

// TargetKind says what an effect is aimed at.
type TargetKind string

const (
	TargetNone TargetKind = ""
	// TargetSelf is the source card of the effect.
	TargetSelf TargetKind = "SELF"
	// TargetAnyCreature is a generic "a creature" target. A target captured
	// when a spell was cast is substituted for it on resolution.
	TargetAnyCreature TargetKind = "ANY_CREATURE"
	TargetCard        TargetKind = "CARD"
	TargetController  TargetKind = "CONTROLLER"
	TargetOpponent    TargetKind = "OPPONENT"
	TargetAllCreature TargetKind = "ALL_CREATURES"
)

// Valid reports whether k is a known target kind. TargetNone is valid.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetNone, TargetSelf, TargetAnyCreature, TargetCard, TargetController, TargetOpponent, TargetAllCreature:
		return true
	}
	return false
}

// Target is the object an effect applies to.
type Target struct {
	Kind TargetKind
	ID   ID
}

func (t Target) String() string {
	switch t.Kind {
	case TargetNone:
		return "-"
	case TargetCard:
		return t.ID.String()
	}
	return strings.ToLower(string(t.Kind))
}

// Target constructors.
var (
	NoTarget      = Target{}
	SelfTarget    = Target{Kind: TargetSelf}
	AnyCreature   = Target{Kind: TargetAnyCreature}
	ControllerOf  = Target{Kind: TargetController}
	OpponentOf    = Target{Kind: TargetOpponent}
	EveryCreature = Target{Kind: TargetAllCreature}
)

// CardTarget aims at a single card.
func CardTarget(id ID) Target {
	return Target{Kind: TargetCard, ID: id}
}

// ConditionKind gates a Conditional effect.
type ConditionKind string

const (
	ConditionNone ConditionKind = ""
	// ConditionTargetDiesThisTurn runs the inner effect if the target dies
	// before the turn ends.
	ConditionTargetDiesThisTurn         ConditionKind = "TARGET_DIES_THIS_TURN"
	ConditionOpponentLostLifeThisTurn   ConditionKind = "OPPONENT_LOST_LIFE_THIS_TURN"
	ConditionControllerLostLifeThisTurn ConditionKind = "CONTROLLER_LOST_LIFE_THIS_TURN"
)

// AmountFromEvent marks an amount that is bound to the triggering event's
// amount when the ability fires.
const AmountFromEvent = -1

// Effect is a closed tagged union describing one thing that happens in the
// game. Only the fields relevant to Kind are set.
type Effect struct {
	Kind      EffectKind
	Target    Target
	Amount    int
	Power     int
	Toughness int
	Keyword   Keyword
	Counter   string
	Mana      string
	// Token is the template for CreateToken and CreateEnchantment.
	Token *Card
	// Phase and DependsOn schedule a Delayed effect.
	Phase     Phase
	DependsOn []DelayedID
	Condition ConditionKind
	// Inner holds the wrapped effect(s) of Delayed, Conditional and
	// TargetedEffects.
	Inner []Effect
	Note  string

	Source     ID
	Controller Player
}

// ModifyStats gives target +power/+toughness.
func ModifyStats(target Target, power, toughness int) Effect {
	return Effect{Kind: EffectModifyStats, Target: target, Power: power, Toughness: toughness}
}

// DealDamage deals amount damage to target.
func DealDamage(target Target, amount int) Effect {
	return Effect{Kind: EffectDealDamage, Target: target, Amount: amount}
}

// Destroy destroys target.
func Destroy(target Target) Effect {
	return Effect{Kind: EffectDestroy, Target: target}
}

// Exile exiles target.
func Exile(target Target) Effect {
	return Effect{Kind: EffectExile, Target: target}
}

// GainLife makes the target player gain amount life.
func GainLife(target Target, amount int) Effect {
	return Effect{Kind: EffectGainLife, Target: target, Amount: amount}
}

// LoseLife makes the target player lose amount life.
func LoseLife(target Target, amount int) Effect {
	return Effect{Kind: EffectLoseLife, Target: target, Amount: amount}
}

// DrawCards makes the target player draw amount cards.
func DrawCards(target Target, amount int) Effect {
	return Effect{Kind: EffectDrawCards, Target: target, Amount: amount}
}

// AddCounters puts amount counters of kind on target.
func AddCounters(target Target, kind string, amount int) Effect {
	return Effect{Kind: EffectAddCounters, Target: target, Counter: kind, Amount: amount}
}

// Proliferate adds one counter of each present kind to every permanent the
// controller controls.
func Proliferate() Effect {
	return Effect{Kind: EffectProliferate}
}

// GrantAbility gives target a keyword.
func GrantAbility(target Target, k Keyword) Effect {
	return Effect{Kind: EffectGrantAbility, Target: target, Keyword: k}
}

// CreateToken puts a copy of template onto the battlefield.
func CreateToken(template *Card) Effect {
	return Effect{Kind: EffectCreateToken, Token: template}
}

// CreateEnchantment puts a copy of template onto the battlefield attached to
// target.
func CreateEnchantment(template *Card, target Target) Effect {
	return Effect{Kind: EffectCreateEnchantment, Token: template, Target: target}
}

// Delay defers inner until phase, after every effect in dependsOn ran.
func Delay(inner Effect, phase Phase, dependsOn ...DelayedID) Effect {
	return Effect{Kind: EffectDelayed, Inner: []Effect{inner}, Phase: phase, DependsOn: dependsOn}
}

// IfCondition runs inner only if cond holds. For ConditionTargetDiesThisTurn, target
// is the card being watched.
func IfCondition(cond ConditionKind, target Target, inner Effect) Effect {
	return Effect{Kind: EffectConditional, Condition: cond, Target: target, Inner: []Effect{inner}}
}

// TargetedEffects groups effects that resolve together, each through the
// full pipeline.
func TargetedEffects(effects ...Effect) Effect {
	return Effect{Kind: EffectTargeted, Inner: effects}
}

// AddMana adds amount mana of color to the target player's pool.
func AddMana(target Target, color string, amount int) Effect {
	return Effect{Kind: EffectAddMana, Target: target, Mana: color, Amount: amount}
}

// PreventLifeGain stops the next life gain of the target player.
func PreventLifeGain(target Target) Effect {
	return Effect{Kind: EffectPreventLifeGain, Target: target}
}

// Tap taps target.
func Tap(target Target) Effect {
	return Effect{Kind: EffectTap, Target: target}
}

// Bounce returns target to its owner's hand.
func Bounce(target Target) Effect {
	return Effect{Kind: EffectBounce, Target: target}
}

// CustomEffect is an effect the engine only records.
func CustomEffect(note string) Effect {
	return Effect{Kind: EffectCustom, Note: note}
}

// WithTarget returns a copy aimed at target.
func (e Effect) WithTarget(target Target) Effect {
	e.Target = target
	return e
}

// From returns a copy stamped with its source card and controller. Inner
// effects are stamped too.
func (e Effect) From(source ID, controller Player) Effect {
	e.Source = source
	e.Controller = controller
	if len(e.Inner) > 0 {
		inner := make([]Effect, len(e.Inner))
		for i, in := range e.Inner {
			inner[i] = in.From(source, controller)
		}
		e.Inner = inner
	}
	return e
}

// SubstituteTarget replaces every generic "a creature" target, including in
// wrapped effects, with the card id.
func (e Effect) SubstituteTarget(id ID) Effect {
	if id == NoID {
		return e
	}
	if e.Target.Kind == TargetAnyCreature {
		e.Target = CardTarget(id)
	}
	if len(e.Inner) > 0 {
		inner := make([]Effect, len(e.Inner))
		for i, in := range e.Inner {
			inner[i] = in.SubstituteTarget(id)
		}
		e.Inner = inner
	}
	return e
}

// bindAmount resolves AmountFromEvent against the firing event.
func (e Effect) bindAmount(amount int) Effect {
	if e.Amount == AmountFromEvent {
		e.Amount = amount
	}
	if len(e.Inner) > 0 {
		inner := make([]Effect, len(e.Inner))
		for i, in := range e.Inner {
			inner[i] = in.bindAmount(amount)
		}
		e.Inner = inner
	}
	return e
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectModifyStats:
		return fmt.Sprintf("%s(%+d/%+d -> %s)", e.Kind, e.Power, e.Toughness, e.Target)
	case EffectAddCounters:
		return fmt.Sprintf("%s(%d %s -> %s)", e.Kind, e.Amount, e.Counter, e.Target)
	case EffectGrantAbility:
		return fmt.Sprintf("%s(%s -> %s)", e.Kind, e.Keyword, e.Target)
	case EffectCreateToken, EffectCreateEnchantment:
		name := "?"
		if e.Token != nil {
			name = e.Token.Name
		}
		return fmt.Sprintf("%s(%s -> %s)", e.Kind, name, e.Target)
	case EffectDelayed:
		return fmt.Sprintf("%s(%s @%s after %v)", e.Kind, joinEffects(e.Inner), e.Phase, e.DependsOn)
	case EffectConditional:
		return fmt.Sprintf("%s(%s: %s)", e.Kind, e.Condition, joinEffects(e.Inner))
	case EffectTargeted:
		return fmt.Sprintf("%s[%s]", e.Kind, joinEffects(e.Inner))
	case EffectAddMana:
		return fmt.Sprintf("%s(%d %s -> %s)", e.Kind, e.Amount, e.Mana, e.Target)
	case EffectCustom:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Note)
	case EffectProliferate:
		return string(e.Kind)
	}
	if e.Amount != 0 {
		return fmt.Sprintf("%s(%d -> %s)", e.Kind, e.Amount, e.Target)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Target)
}

func joinEffects(effects []Effect) string {
	parts := make([]string, len(effects))
	for i, e := range effects {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func cloneEffects(effects []Effect) []Effect {
	if effects == nil {
		return nil
	}
	out := make([]Effect, len(effects))
	for i, e := range effects {
		e.DependsOn = append([]DelayedID(nil), e.DependsOn...)
		e.Inner = cloneEffects(e.Inner)
		out[i] = e
	}
	return out
}
