package effects

import (
	"testing"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestContinuousManager_RegistrationOrder(t *testing.T) {
	cm := NewContinuousManager(zaptest.NewLogger(t))
	cm.Add(ContinuousRule{Name: "plus one", Match: Match(cards.EffectDealDamage), AmountDelta: 1})
	cm.Add(ContinuousRule{Name: "double", Match: Match(cards.EffectDealDamage), AmountFactor: 2})

	got := cm.Apply(cards.DealDamage(cards.OpponentOf, 3))
	assert.Equal(t, 8, got.Amount, "(3+1)*2")

	other := NewContinuousManager(nil)
	other.Add(ContinuousRule{Name: "double", Match: Match(cards.EffectDealDamage), AmountFactor: 2})
	other.Add(ContinuousRule{Name: "plus one", Match: Match(cards.EffectDealDamage), AmountDelta: 1})
	assert.Equal(t, 7, other.Apply(cards.DealDamage(cards.OpponentOf, 3)).Amount, "3*2+1")
}

func TestContinuousManager_SkipsNonMatching(t *testing.T) {
	cm := NewContinuousManager(nil)
	cm.Add(ContinuousRule{Name: "lifegain bonus", Match: Match(cards.EffectGainLife), AmountDelta: 1})

	e := cards.DealDamage(cards.OpponentOf, 2)
	assert.Equal(t, e, cm.Apply(e))
}

func TestContinuousManager_Overrides(t *testing.T) {
	cm := NewContinuousManager(nil)
	id := cm.Add(ContinuousRule{
		Name:        "redirect and shrink",
		Match:       Match(cards.EffectDealDamage),
		AmountDelta: -5,
		Target:      cards.ControllerOf,
	})
	cm.Add(ContinuousRule{Name: "fly", Match: Match(cards.EffectGrantAbility), Keyword: cards.Flying})

	got := cm.Apply(cards.DealDamage(cards.OpponentOf, 2))
	assert.Equal(t, 0, got.Amount, "amounts never go negative")
	assert.Equal(t, cards.ControllerOf, got.Target)

	granted := cm.Apply(cards.GrantAbility(cards.SelfTarget, cards.Haste))
	assert.Equal(t, cards.Flying, granted.Keyword)

	require.Len(t, cm.Rules(), 2)
	assert.True(t, cm.Remove(id))
	assert.Len(t, cm.Rules(), 1)
}
