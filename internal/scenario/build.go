package scenario

import (
	"fmt"

	"github.com/arenapilot/arenapilot/internal/game/cards"
)

// builder turns specs into engine values. Aliases are looked up when the
// spec is built, so a card may refer to one that entered earlier.
type builder struct {
	library map[string]CardSpec
	resolve func(alias string) (*cards.Card, error)
}

func (b *builder) card(name string) (*cards.Card, error) {
	spec, ok := b.library[name]
	if !ok {
		return nil, fmt.Errorf("unknown card %q", name)
	}

	c := cards.NewCard(spec.Name, spec.Type, spec.Cost).
		WithStats(spec.Power, spec.Toughness).
		WithKeywords(spec.Keywords...).
		WithSubtypes(spec.Subtypes...)

	for _, t := range spec.Triggers {
		trigger, err := b.trigger(t)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", name, err)
		}
		effects, err := b.effects(t.Effects)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", name, err)
		}

		var ability cards.Ability
		switch t.Ability {
		case cards.AbilityOncePerTurn:
			ability = cards.OncePerTurn(effects...)
		case cards.AbilityThreshold:
			ability = cards.AfterCount(t.Threshold, effects...)
		default:
			ability = cards.Every(effects...)
		}
		c.On(trigger, ability)
	}

	for _, a := range spec.Activated {
		effects, err := b.effects(a.Effects)
		if err != nil {
			return nil, fmt.Errorf("card %q ability %q: %w", name, a.Name, err)
		}
		c.WithActivated(cards.ActivatedAbility{
			Name:      a.Name,
			Cost:      a.Cost,
			Effects:   effects,
			Condition: a.Condition,
		})
	}
	return c, nil
}

func (b *builder) trigger(t TriggerSpec) (cards.Trigger, error) {
	trigger := cards.When(t.On)
	switch t.Filter {
	case cards.FilterSelf:
		trigger = trigger.Self()
	case cards.FilterControllerCreatures:
		trigger = trigger.ControllerCreatures()
	case cards.FilterCreatureType:
		trigger = trigger.OfType(t.Subtype)
	case cards.FilterExactID:
		target, err := b.resolve(t.Card)
		if err != nil {
			return trigger, err
		}
		trigger = trigger.Exact(target.ID)
	}
	if t.Phase != "" {
		phase, err := cards.ParsePhase(string(t.Phase))
		if err != nil {
			return trigger, err
		}
		trigger = trigger.InPhase(phase)
	}
	trigger.Note = t.Note
	return trigger, nil
}

func (b *builder) effects(specs []EffectSpec) ([]cards.Effect, error) {
	out := make([]cards.Effect, 0, len(specs))
	for _, s := range specs {
		e, err := b.effect(s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *builder) effect(s EffectSpec) (cards.Effect, error) {
	e := cards.Effect{
		Kind:      s.Kind,
		Target:    cards.Target{Kind: s.Target},
		Amount:    s.Amount,
		Power:     s.Power,
		Toughness: s.Toughness,
		Keyword:   s.Keyword,
		Counter:   s.Counter,
		Mana:      s.Mana,
		DependsOn: s.DependsOn,
		Condition: s.Condition,
		Note:      s.Note,
	}
	if s.AmountFromEvent {
		e.Amount = cards.AmountFromEvent
	}
	if s.Card != "" {
		target, err := b.resolve(s.Card)
		if err != nil {
			return e, err
		}
		e.Target = cards.CardTarget(target.ID)
	}
	if s.Phase != "" {
		phase, err := cards.ParsePhase(string(s.Phase))
		if err != nil {
			return e, err
		}
		e.Phase = phase
	}
	if s.Token != "" {
		token, err := b.card(s.Token)
		if err != nil {
			return e, err
		}
		e.Token = token
	}
	if len(s.Effects) > 0 {
		inner, err := b.effects(s.Effects)
		if err != nil {
			return e, err
		}
		e.Inner = inner
	}
	return e, nil
}
