package game

import (
	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/arenapilot/arenapilot/internal/game/combat"
	"github.com/arenapilot/arenapilot/internal/game/rules"
	"go.uber.org/zap"
)

// CombatOutcome is a combat result together with the cards and players it is
// about, so it can be applied to the game.
type CombatOutcome struct {
	combat.Result
	Attackers []cards.ID
	Blockers  []cards.ID
	Attacking cards.Player
	Defending cards.Player
}

// Combat computes damage for the active player's attack. blocks maps each
// attacker to its blockers in damage assignment order. Ids that are not
// creatures on the battlefield are ignored. The attacking player's pending
// life gain prevention is consumed if lifelink damage was dealt.
func (e *Engine) Combat(attackers []cards.ID, blocks map[cards.ID][]cards.ID) CombatOutcome {
	out := CombatOutcome{
		Attacking: e.clock.Active(),
		Defending: e.clock.Active().Other(),
	}

	var attackerStats, blockerStats []combat.Creature
	blockerIndex := make(map[cards.ID]int)
	indexBlocks := make(map[int][]int)
	for _, id := range attackers {
		c, ok := e.creature(id)
		if !ok {
			continue
		}
		a := len(attackerStats)
		attackerStats = append(attackerStats, statsOf(c))
		out.Attackers = append(out.Attackers, id)

		for _, bid := range blocks[id] {
			b, ok := e.creature(bid)
			if !ok {
				continue
			}
			idx, seen := blockerIndex[bid]
			if !seen {
				idx = len(blockerStats)
				blockerIndex[bid] = idx
				blockerStats = append(blockerStats, statsOf(b))
				out.Blockers = append(out.Blockers, bid)
			}
			indexBlocks[a] = append(indexBlocks[a], idx)
		}
	}

	indices := make([]int, len(attackerStats))
	for i := range indices {
		indices[i] = i
	}
	prevent := e.suppress[out.Attacking]
	out.Result = combat.Resolve(indices, attackerStats, blockerStats, indexBlocks, &prevent)
	e.suppress[out.Attacking] = prevent

	e.logger.Debug("combat resolved",
		zap.Int("attackers", len(out.Attackers)),
		zap.Int("blockers", len(out.Blockers)),
		zap.Int("unblocked_damage", out.UnblockedDamage),
		zap.Int("life_gained", out.LifeGained),
	)
	return out
}

// ApplyCombat applies an outcome: the defending player loses the unblocked
// damage, the attacking player gains the lifelink total, damage is marked and
// creatures that did not survive are destroyed. Attackers without vigilance
// become tapped.
func (e *Engine) ApplyCombat(out CombatOutcome) {
	e.loseLife(out.Defending, out.UnblockedDamage)
	if out.LifeGained > 0 {
		e.life[out.Attacking] += out.LifeGained
		e.notify(rules.NotifyLife, out.Attacking.String()+" gained life", map[string]any{
			"player": out.Attacking.String(),
			"delta":  out.LifeGained,
			"life":   e.life[out.Attacking],
		})
	}

	var dead []*cards.Card
	for i, id := range out.Attackers {
		c, ok := e.battlefield.Get(id)
		if !ok {
			continue
		}
		c.Damage += out.AttackerDamage[i]
		if !c.Keywords.Has(cards.Vigilance) {
			c.Tapped = true
		}
		if !out.AttackersSurvived[i] {
			dead = append(dead, c)
		}
	}
	for j, id := range out.Blockers {
		c, ok := e.battlefield.Get(id)
		if !ok {
			continue
		}
		c.Damage += out.BlockerDamage[j]
		if !out.BlockersSurvived[j] {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		e.destroy(c)
	}

	e.notify(rules.NotifyCombat, "combat damage dealt", map[string]any{
		"unblocked_damage": out.UnblockedDamage,
		"life_gained":      out.LifeGained,
		"deaths":           len(dead),
	})
	e.record("combat")
}

// RunCombat computes and applies one combat.
func (e *Engine) RunCombat(attackers []cards.ID, blocks map[cards.ID][]cards.ID) CombatOutcome {
	out := e.Combat(attackers, blocks)
	e.ApplyCombat(out)
	return out
}

func (e *Engine) creature(id cards.ID) (*cards.Card, bool) {
	c, ok := e.battlefield.Get(id)
	if !ok || !c.IsCreature() {
		e.logger.Warn("ignoring non-creature in combat", zap.Stringer("card", id))
		return nil, false
	}
	return c, true
}

// statsOf reports the creature's current stats with damage already marked
// this turn taken off its toughness.
func statsOf(c *cards.Card) combat.Creature {
	return combat.Creature{
		Power:     c.CurrentPower(),
		Toughness: c.CurrentToughness() - c.Damage,
		Keywords:  c.Keywords,
	}
}
