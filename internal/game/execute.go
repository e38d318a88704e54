package game

import (
	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/arenapilot/arenapilot/internal/game/mana"
	"github.com/arenapilot/arenapilot/internal/game/rules"
	"go.uber.org/zap"
)

// HandleEffect runs effect through the replacement rules, then the
// continuous rules, then executes whatever survives. It returns the effects
// that executed, in order, including those run by composite effects.
func (e *Engine) HandleEffect(effect cards.Effect) []cards.Effect {
	replaced, err := e.replacements.Replace(effect)
	if err != nil {
		e.logger.Warn("replacement chain cut short",
			zap.String("effect", effect.String()),
			zap.Error(err),
		)
	}
	if len(replaced) == 0 {
		e.logger.Debug("effect prevented", zap.String("effect", effect.String()))
	}

	var executed []cards.Effect
	for _, r := range replaced {
		r = e.continuous.Apply(r)
		executed = append(executed, r)
		executed = append(executed, e.execute(r)...)
	}
	return executed
}

// execute applies one final effect to the game. Composite effects return the
// effects they executed in turn.
func (e *Engine) execute(effect cards.Effect) []cards.Effect {
	e.logger.Debug("executing effect", zap.String("effect", effect.String()))
	e.notify(rules.NotifyEffect, effect.String(), map[string]any{
		"kind":   string(effect.Kind),
		"source": uint64(effect.Source),
	})

	switch effect.Kind {
	case cards.EffectModifyStats:
		for _, c := range e.targetCards(effect) {
			c.Power += effect.Power
			c.Toughness += effect.Toughness
			e.checkLethal(c)
		}
	case cards.EffectDealDamage:
		if p, ok := e.targetPlayer(effect); ok {
			e.loseLife(p, effect.Amount)
			break
		}
		for _, c := range e.targetCards(effect) {
			c.Damage += effect.Amount
			e.checkLethal(c)
		}
	case cards.EffectDestroy:
		for _, c := range e.targetCards(effect) {
			e.destroy(c)
		}
	case cards.EffectExile:
		for _, c := range e.targetCards(effect) {
			e.leave(c, ZoneExile)
		}
	case cards.EffectBounce:
		for _, c := range e.targetCards(effect) {
			e.leave(c, ZoneHand)
		}
	case cards.EffectGainLife:
		if p, ok := e.targetPlayer(effect); ok {
			e.gainLife(p, effect.Amount)
		}
	case cards.EffectLoseLife:
		if p, ok := e.targetPlayer(effect); ok {
			e.loseLife(p, effect.Amount)
		}
	case cards.EffectDrawCards:
		if p, ok := e.targetPlayer(effect); ok {
			e.drawn[p] += effect.Amount
			e.logger.Debug("cards drawn", zap.String("player", p.String()), zap.Int("amount", effect.Amount))
		}
	case cards.EffectAddCounters:
		for _, c := range e.targetCards(effect) {
			c.Counters.Add(effect.Counter, effect.Amount)
			e.checkLethal(c)
			e.TriggerEvent(cards.CounterAdded(c.ID, effect.Counter, effect.Amount))
		}
	case cards.EffectProliferate:
		for _, c := range e.battlefield.Cards() {
			if c.Controller != effect.Controller {
				continue
			}
			for _, kind := range c.Counters.Proliferate() {
				e.TriggerEvent(cards.CounterAdded(c.ID, kind, 1))
			}
			e.checkLethal(c)
		}
	case cards.EffectGrantAbility:
		for _, c := range e.targetCards(effect) {
			c.Keywords = c.Keywords.With(effect.Keyword)
		}
	case cards.EffectCreateToken:
		if effect.Token == nil {
			e.logger.Warn("token effect without template")
			break
		}
		token := effect.Token.Clone()
		token.ID = cards.NoID
		token.Controller = effect.Controller
		e.enter(token)
	case cards.EffectCreateEnchantment:
		if effect.Token == nil {
			e.logger.Warn("enchantment effect without template")
			break
		}
		targets := e.targetCards(effect)
		if len(targets) == 0 {
			break
		}
		aura := effect.Token.Clone()
		aura.ID = cards.NoID
		aura.Controller = effect.Controller
		aura.AttachedTo = targets[0].ID
		e.enter(aura)
	case cards.EffectDelayed:
		for _, inner := range effect.Inner {
			if _, err := e.ScheduleDelayed(inner, effect.Phase, effect.DependsOn...); err != nil {
				e.logger.Warn("could not schedule delayed effect", zap.Error(err))
			}
		}
	case cards.EffectConditional:
		return e.executeConditional(effect)
	case cards.EffectTargeted:
		var executed []cards.Effect
		for _, inner := range effect.Inner {
			executed = append(executed, e.HandleEffect(inner)...)
		}
		return executed
	case cards.EffectAddMana:
		if p, ok := e.targetPlayer(effect); ok {
			e.pools[p].Add(mana.Color(effect.Mana), effect.Amount)
			e.TriggerEvent(cards.ManaAdded(p, effect.Amount))
		}
	case cards.EffectPreventLifeGain:
		if p, ok := e.targetPlayer(effect); ok {
			e.suppress[p] = true
		}
	case cards.EffectTap:
		for _, c := range e.targetCards(effect) {
			c.Tapped = true
		}
	case cards.EffectCustom:
		e.logger.Info("custom effect", zap.String("note", effect.Note))
	default:
		e.logger.Warn("unhandled effect", zap.String("effect", effect.String()))
	}
	return nil
}

func (e *Engine) executeConditional(effect cards.Effect) []cards.Effect {
	switch effect.Condition {
	case cards.ConditionTargetDiesThisTurn:
		targets := e.targetCards(effect)
		if len(targets) == 0 {
			e.logger.Warn("death watch without a target", zap.String("effect", effect.String()))
			return nil
		}
		for _, inner := range effect.Inner {
			e.deathWatch.Watch(targets[0].ID, inner)
		}
		return nil
	case cards.ConditionOpponentLostLifeThisTurn:
		if !e.turn.LostLife(effect.Controller.Other()) {
			return nil
		}
	case cards.ConditionControllerLostLifeThisTurn:
		if !e.turn.LostLife(effect.Controller) {
			return nil
		}
	default:
		e.logger.Warn("unknown condition", zap.String("condition", string(effect.Condition)))
		return nil
	}

	var executed []cards.Effect
	for _, inner := range effect.Inner {
		executed = append(executed, e.HandleEffect(inner)...)
	}
	return executed
}

// targetCards resolves an effect's target to cards on the battlefield.
// Unknown or unresolved targets yield nothing.
func (e *Engine) targetCards(effect cards.Effect) []*cards.Card {
	switch effect.Target.Kind {
	case cards.TargetSelf:
		if c, ok := e.battlefield.Get(effect.Source); ok {
			return []*cards.Card{c}
		}
	case cards.TargetCard:
		if c, ok := e.battlefield.Get(effect.Target.ID); ok {
			return []*cards.Card{c}
		}
	case cards.TargetAllCreature:
		var out []*cards.Card
		for _, c := range e.battlefield.Cards() {
			if c.IsCreature() {
				out = append(out, c)
			}
		}
		return out
	}
	e.logger.Warn("effect target not on the battlefield",
		zap.String("effect", effect.String()),
	)
	return nil
}

// targetPlayer resolves player targets relative to the effect's controller.
func (e *Engine) targetPlayer(effect cards.Effect) (cards.Player, bool) {
	switch effect.Target.Kind {
	case cards.TargetController, cards.TargetNone:
		return effect.Controller, true
	case cards.TargetOpponent:
		return effect.Controller.Other(), true
	}
	return cards.PlayerBot, false
}

func (e *Engine) loseLife(p cards.Player, amount int) {
	if amount <= 0 {
		return
	}
	e.life[p] -= amount
	e.turn.RecordLifeLost(p, amount)
	e.notify(rules.NotifyLife, p.String()+" lost life", map[string]any{
		"player": p.String(),
		"delta":  -amount,
		"life":   e.life[p],
	})
}

// gainLife adds life unless a prevention is pending, which it consumes.
func (e *Engine) gainLife(p cards.Player, amount int) {
	if amount <= 0 {
		return
	}
	if e.suppress[p] {
		e.suppress[p] = false
		e.logger.Debug("life gain prevented", zap.String("player", p.String()), zap.Int("amount", amount))
		return
	}
	e.life[p] += amount
	e.notify(rules.NotifyLife, p.String()+" gained life", map[string]any{
		"player": p.String(),
		"delta":  amount,
		"life":   e.life[p],
	})
}

// checkLethal destroys a creature whose damage or stats make it lethal.
func (e *Engine) checkLethal(c *cards.Card) {
	if !c.IsCreature() {
		return
	}
	if _, ok := e.battlefield.Get(c.ID); !ok {
		return
	}
	if t := c.CurrentToughness(); t <= 0 || c.Damage >= t {
		e.destroy(c)
	}
}

// destroy puts c and its attachments into the graveyard. A creature's death
// is announced after it left the battlefield.
func (e *Engine) destroy(c *cards.Card) {
	if !e.leave(c, ZoneGraveyard) {
		return
	}
	if c.IsCreature() {
		e.TriggerEvent(cards.CreatureDied(c))
	}
}

// leave removes c from the battlefield into zone z. Attached cards go to the
// graveyard. It reports whether c was on the battlefield.
func (e *Engine) leave(c *cards.Card, z Zone) bool {
	if _, ok := e.battlefield.Remove(c.ID); !ok {
		return false
	}
	e.moveTo(z, c)
	e.notify(rules.NotifyBattlefield, c.Name+" left the battlefield", map[string]any{
		"card": uint64(c.ID),
		"zone": string(z),
	})
	for _, attached := range e.battlefield.Attached(c.ID) {
		e.battlefield.Remove(attached.ID)
		e.moveTo(ZoneGraveyard, attached)
	}
	return true
}
