package effects

import (
	"testing"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReplacementManager_ChainsThroughLowerPriority(t *testing.T) {
	rm := NewReplacementManager(0, zaptest.NewLogger(t))
	rm.Add(10, ReplacementRule{
		Name:    "exile instead",
		Match:   Match(cards.EffectDestroy),
		Replace: []EffectTemplate{Into(cards.EffectExile)},
	})
	rm.Add(5, ReplacementRule{
		Name:    "burn instead",
		Match:   Match(cards.EffectExile),
		Replace: []EffectTemplate{Into(cards.EffectDealDamage).WithAmount(3)},
	})

	out, err := rm.Replace(cards.Destroy(cards.CardTarget(4)))

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, cards.EffectDealDamage, out[0].Kind)
	assert.Equal(t, 3, out[0].Amount)
	assert.Equal(t, cards.CardTarget(4), out[0].Target, "successor keeps the target")
}

func TestReplacementManager_SuccessorSkipsEarlierRules(t *testing.T) {
	rm := NewReplacementManager(0, nil)
	// The Destroy produced by the lowest rule is never offered back to
	// exile-instead.
	rm.Add(1, ReplacementRule{
		Name:    "destroy instead",
		Match:   Match(cards.EffectDealDamage),
		Replace: []EffectTemplate{Into(cards.EffectDestroy)},
	})
	rm.Add(10, ReplacementRule{
		Name:    "exile instead",
		Match:   Match(cards.EffectDestroy),
		Replace: []EffectTemplate{Into(cards.EffectExile)},
	})
	rm.Add(5, ReplacementRule{
		Name:    "burn instead",
		Match:   Match(cards.EffectExile),
		Replace: []EffectTemplate{Into(cards.EffectDealDamage).WithAmount(3)},
	})

	out, err := rm.Replace(cards.Destroy(cards.CardTarget(4)))

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, cards.EffectDestroy, out[0].Kind, "Destroy -> Exile -> Damage -> Destroy, then no later rule matches")
}

func TestReplacementManager_RulesOrder(t *testing.T) {
	rm := NewReplacementManager(0, nil)
	low := rm.Add(1, ReplacementRule{Name: "low", Match: Match(cards.EffectTap)})
	highA := rm.Add(9, ReplacementRule{Name: "high-a", Match: Match(cards.EffectTap)})
	highB := rm.Add(9, ReplacementRule{Name: "high-b", Match: Match(cards.EffectTap)})

	rules := rm.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, []string{highA, highB, low}, []string{rules[0].ID, rules[1].ID, rules[2].ID})

	assert.True(t, rm.Remove(low))
	assert.False(t, rm.Remove(low))
	assert.Equal(t, 2, rm.Len())
}

func TestReplacementManager_Prevent(t *testing.T) {
	rm := NewReplacementManager(0, nil)
	rm.Add(1, ReplacementRule{Name: "fog", Match: EffectPattern{Kind: cards.EffectDealDamage, TargetKind: cards.TargetController}})

	out, err := rm.Replace(cards.DealDamage(cards.ControllerOf, 5))
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = rm.Replace(cards.DealDamage(cards.OpponentOf, 5))
	require.NoError(t, err)
	assert.Len(t, out, 1, "target kind does not match")
}

func TestReplacementManager_SplitsIntoSeveral(t *testing.T) {
	rm := NewReplacementManager(0, nil)
	rm.Add(1, ReplacementRule{
		Name:  "twin",
		Match: Match(cards.EffectGainLife),
		Replace: []EffectTemplate{
			Into(cards.EffectGainLife),
			Into(cards.EffectDrawCards).WithAmount(1),
		},
	})

	out, err := rm.Replace(cards.GainLife(cards.ControllerOf, 2))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, cards.EffectGainLife, out[0].Kind)
	assert.Equal(t, 2, out[0].Amount)
	assert.Equal(t, cards.EffectDrawCards, out[1].Kind)
}

func TestReplacementManager_DepthGuard(t *testing.T) {
	rm := NewReplacementManager(2, zaptest.NewLogger(t))
	for i := 0; i < 4; i++ {
		rm.Add(10-i, ReplacementRule{
			Name:    "again",
			Match:   Match(cards.EffectTap),
			Replace: []EffectTemplate{Into(cards.EffectTap)},
		})
	}

	out, err := rm.Replace(cards.Tap(cards.CardTarget(1)))

	assert.ErrorIs(t, err, ErrReplacementDepth)
	require.Len(t, out, 1)
	assert.Equal(t, cards.EffectTap, out[0].Kind)
}

func TestReplacementManager_SourcePattern(t *testing.T) {
	rm := NewReplacementManager(0, nil)
	rm.Add(1, ReplacementRule{
		Name:    "only from 7",
		Match:   EffectPattern{Kind: cards.EffectDestroy, Source: 7},
		Replace: []EffectTemplate{Into(cards.EffectBounce)},
	})

	out, _ := rm.Replace(cards.Destroy(cards.AnyCreature).From(7, cards.PlayerBot))
	assert.Equal(t, cards.EffectBounce, out[0].Kind)
	assert.Equal(t, cards.ID(7), out[0].Source)

	out, _ = rm.Replace(cards.Destroy(cards.AnyCreature).From(8, cards.PlayerBot))
	assert.Equal(t, cards.EffectDestroy, out[0].Kind)
}
