package game

import (
	"testing"

	"github.com/arenapilot/arenapilot/internal/config"
	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/arenapilot/arenapilot/internal/game/effects"
	"github.com/arenapilot/arenapilot/internal/game/mana"
	"github.com/arenapilot/arenapilot/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(config.Default().Engine, zaptest.NewLogger(t))
}

func bear(name string) *cards.Card {
	return cards.NewCard(name, cards.TypeCreature, "{1}{G}").WithStats(2, 2)
}

func TestEngine_CastPassResolveScenario(t *testing.T) {
	e := newTestEngine(t)

	a := e.CastSpell(cards.NewCard("A", cards.TypeInstant, "{U}"), cards.PlayerBot)
	b := e.CastSpell(cards.NewCard("B", cards.TypeInstant, "{U}"), cards.PlayerBot)
	require.Equal(t, a.Tier, b.Tier)
	require.Greater(t, b.Seq, a.Seq)

	assert.False(t, e.PassPriority())
	assert.Equal(t, cards.PlayerOpponent, e.PriorityHolder())
	assert.Equal(t, 2, e.StackLen())

	assert.True(t, e.PassPriority())
	assert.Equal(t, 1, e.StackLen())
	assert.Equal(t, 0, e.Passes())
	assert.Equal(t, "A", e.Stack()[0].Description())

	graveyard := e.Graveyard()
	require.Len(t, graveyard, 1)
	assert.Equal(t, "B", graveyard[0].Name)
}

func TestEngine_PushResetsPasses(t *testing.T) {
	e := newTestEngine(t)
	e.CastSpell(cards.NewCard("A", cards.TypeInstant, ""), cards.PlayerBot)

	e.PassPriority()
	assert.Equal(t, 1, e.Passes())

	e.CastSpell(cards.NewCard("B", cards.TypeInstant, ""), cards.PlayerOpponent)
	assert.Equal(t, 0, e.Passes())
	assert.False(t, e.PassPriority(), "one pass after a push does not resolve")
	assert.Equal(t, 2, e.StackLen())
}

func TestEngine_ResolveEmptyStack(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.ResolveTop())
	assert.Equal(t, 0, e.ResolveStack())
}

func TestEngine_CapturedTargetIsSubstituted(t *testing.T) {
	e := newTestEngine(t)
	victim := e.EnterBattlefield(bear("Bear").WithController(cards.PlayerOpponent))

	shock := cards.NewCard("Shock", cards.TypeInstant, "{R}").
		On(cards.When(cards.EventSpellResolved).Self(), cards.Every(cards.DealDamage(cards.AnyCreature, 2)))
	e.CastSpell(shock, cards.PlayerBot, victim)

	e.PassPriority()
	require.True(t, e.PassPriority())
	require.Equal(t, 1, e.StackLen(), "the spell's trigger is on the stack")

	top := e.Stack()[0]
	assert.Equal(t, rules.StackEntryTriggered, top.Kind)
	assert.Equal(t, cards.CardTarget(victim), top.Effect.Target)

	assert.Equal(t, 1, e.ResolveStack())
	_, alive := e.Card(victim)
	assert.False(t, alive)
	assert.Equal(t, []string{"Shock", "Bear"}, names(e.Graveyard()))
}

func TestEngine_PermanentSpellEntersBattlefield(t *testing.T) {
	e := newTestEngine(t)
	var entered int
	e.EnterBattlefield(cards.NewCard("Herald", cards.TypeEnchantment, "").
		On(cards.When(cards.EventEnteredBattlefield), cards.Every(cards.GainLife(cards.ControllerOf, 1))))
	require.Equal(t, 1, e.ResolveStack(), "the herald sees itself enter")

	e.Subscribe(func(n rules.Notification) {
		if n.Type == rules.NotifyBattlefield {
			entered++
		}
	})
	e.CastSpell(bear("Bear"), cards.PlayerBot)
	e.ResolveTop()

	require.Len(t, e.Battlefield(), 2)
	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, e.StackLen(), "the herald sees the bear enter")
	e.ResolveStack()
	assert.Equal(t, 22, e.Life(cards.PlayerBot))
}

func TestEngine_DeathWatchFiresOnce(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(bear("Bear"))

	e.HandleEffect(cards.IfCondition(cards.ConditionTargetDiesThisTurn, cards.CardTarget(id),
		cards.DrawCards(cards.ControllerOf, 1)).From(cards.NoID, cards.PlayerBot))
	e.HandleEffect(cards.Destroy(cards.CardTarget(id)))
	e.HandleEffect(cards.Destroy(cards.CardTarget(id)))

	assert.Equal(t, 1, e.Drawn(cards.PlayerBot))
}

func TestEngine_OncePerTurnResetsAtEndOfTurn(t *testing.T) {
	e := newTestEngine(t)
	e.EnterBattlefield(cards.NewCard("Mourner", cards.TypeCreature, "").WithStats(1, 1).
		On(cards.When(cards.EventCreatureDied), cards.OncePerTurn(cards.GainLife(cards.ControllerOf, 1))))

	assert.Equal(t, 1, e.TriggerEvent(cards.CreatureDied(bear("First"))))
	assert.Equal(t, 0, e.TriggerEvent(cards.CreatureDied(bear("Second"))))

	e.TriggerEvent(cards.TurnEnded())
	assert.Equal(t, 1, e.TriggerEvent(cards.CreatureDied(bear("Third"))))
}

func TestEngine_TurnEndedBookkeeping(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(bear("Bear"))
	e.HandleEffect(cards.DealDamage(cards.CardTarget(id), 1))
	e.HandleEffect(cards.PreventLifeGain(cards.ControllerOf).From(cards.NoID, cards.PlayerBot))
	e.HandleEffect(cards.LoseLife(cards.OpponentOf, 1).From(cards.NoID, cards.PlayerBot))

	e.TriggerEvent(cards.TurnEnded())

	c, _ := e.Card(id)
	assert.Equal(t, 0, c.Damage)
	assert.False(t, e.LifeGainSuppressed(cards.PlayerBot))
	assert.Equal(t, cards.PlayerOpponent, e.ActivePlayer())
	assert.Equal(t, cards.PlayerOpponent, e.PriorityHolder())
	assert.Equal(t, 2, e.Turn())
	assert.Equal(t, cards.PhaseBeginning, e.Phase())
}

func TestEngine_DelayedDispatch(t *testing.T) {
	e := newTestEngine(t)

	first, err := e.ScheduleDelayed(cards.GainLife(cards.ControllerOf, 3).From(cards.NoID, cards.PlayerBot), cards.PhaseEnd)
	require.NoError(t, err)
	_, err = e.ScheduleDelayed(cards.LoseLife(cards.OpponentOf, 2).From(cards.NoID, cards.PlayerBot), cards.PhaseEnd, first)
	require.NoError(t, err)

	assert.Empty(t, e.DispatchDelayed(cards.PhaseUpkeep))
	assert.Len(t, e.PendingDelayed(), 2)

	executed := e.DispatchDelayed(cards.PhaseEnd)
	require.Len(t, executed, 2)
	assert.Equal(t, cards.EffectGainLife, executed[0].Kind)
	assert.Equal(t, cards.EffectLoseLife, executed[1].Kind)
	assert.Equal(t, 23, e.Life(cards.PlayerBot))
	assert.Equal(t, 18, e.Life(cards.PlayerOpponent))
	assert.Empty(t, e.PendingDelayed())

	_, err = e.ScheduleDelayed(cards.CustomEffect("never"), cards.PhaseEnd, 99)
	assert.ErrorIs(t, err, rules.ErrUnsatisfiableDependency)
}

func TestEngine_DelayedTriggerIsScheduledNotStacked(t *testing.T) {
	e := newTestEngine(t)
	e.EnterBattlefield(cards.NewCard("Clock", cards.TypeEnchantment, "").
		On(cards.When(cards.EventCustom), cards.Every(cards.Delay(cards.LoseLife(cards.OpponentOf, 1), cards.PhaseUpkeep))))

	assert.Equal(t, 0, e.TriggerEvent(cards.Custom("tick")))
	require.Len(t, e.PendingDelayed(), 1)

	assert.Equal(t, cards.PhaseUpkeep, e.AdvancePhase())
	assert.Equal(t, 19, e.Life(cards.PlayerOpponent))
}

func TestEngine_ActivatedAbilities(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(cards.NewCard("Drainer", cards.TypeCreature, "").WithStats(1, 1).
		WithActivated(cards.ActivatedAbility{
			Name:      "drain",
			Effects:   []cards.Effect{cards.LoseLife(cards.OpponentOf, 1)},
			Condition: cards.ActivateOpponentLostLifeThisTurn,
		}))

	assert.False(t, e.CanActivate(id, 0, cards.PlayerBot))
	assert.ErrorIs(t, e.ActivateAbility(id, 0, cards.PlayerBot), ErrCannotActivate)

	e.HandleEffect(cards.LoseLife(cards.OpponentOf, 1).From(cards.NoID, cards.PlayerBot))
	assert.True(t, e.CanActivate(id, 0, cards.PlayerBot))

	e.CastSpell(cards.NewCard("Slow", cards.TypeInstant, ""), cards.PlayerBot)
	require.NoError(t, e.ActivateAbility(id, 0, cards.PlayerBot))
	top := e.Stack()[0]
	assert.Equal(t, rules.StackEntryActivated, top.Kind)
	assert.Equal(t, rules.TierActivated, top.Tier)

	assert.ErrorIs(t, e.ActivateAbility(id, 0, cards.PlayerBot), ErrCannotActivate, "once per turn")
	assert.ErrorIs(t, e.ActivateAbility(999, 0, cards.PlayerBot), ErrUnknownCard)
	assert.ErrorIs(t, e.ActivateAbility(id, 3, cards.PlayerBot), ErrUnknownAbility)

	e.ResolveTop()
	assert.Equal(t, 18, e.Life(cards.PlayerOpponent))
	assert.Equal(t, "Slow", e.Stack()[0].Description())
}

func TestEngine_ActivationCostUsesManaPool(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(cards.NewCard("Grower", cards.TypeCreature, "").WithStats(1, 1).
		WithActivated(cards.ActivatedAbility{
			Name:    "pump",
			Cost:    "{G}",
			Effects: []cards.Effect{cards.ModifyStats(cards.SelfTarget, 1, 1)},
		}))

	assert.False(t, e.CanActivate(id, 0, cards.PlayerBot))

	e.HandleEffect(cards.AddMana(cards.ControllerOf, "G", 1).From(cards.NoID, cards.PlayerBot))
	require.NoError(t, e.ActivateAbility(id, 0, cards.PlayerBot))
	assert.Equal(t, 0, e.ManaPool(cards.PlayerBot).Get(mana.Green))

	e.ResolveTop()
	c, _ := e.Card(id)
	assert.Equal(t, 2, c.CurrentPower())
}

func TestEngine_ActivationPaysOnlyWhatThePoolHolds(t *testing.T) {
	e := newTestEngine(t)
	pump := cards.ActivatedAbility{
		Name:    "pump",
		Cost:    "{G}",
		Effects: []cards.Effect{cards.ModifyStats(cards.SelfTarget, 1, 1)},
	}
	id := e.EnterBattlefield(cards.NewCard("Grower", cards.TypeCreature, "").WithStats(1, 1).
		WithActivated(pump).WithActivated(pump).WithActivated(cards.ActivatedAbility{Name: "broken", Cost: "{Q}"}))
	e.HandleEffect(cards.AddMana(cards.ControllerOf, "G", 1).From(cards.NoID, cards.PlayerBot))

	require.NoError(t, e.ActivateAbility(id, 0, cards.PlayerBot))
	assert.ErrorIs(t, e.ActivateAbility(id, 1, cards.PlayerBot), ErrCannotActivate)
	assert.ErrorIs(t, e.ActivateAbility(id, 2, cards.PlayerBot), ErrCannotActivate)
	assert.Equal(t, 1, e.StackLen())
	assert.Equal(t, 0, e.ManaPool(cards.PlayerBot).Total())
}

func TestEngine_ManaAddedBindsAmount(t *testing.T) {
	e := newTestEngine(t)
	e.EnterBattlefield(cards.NewCard("Sink", cards.TypeEnchantment, "").
		On(cards.When(cards.EventManaAdded), cards.Every(cards.GainLife(cards.ControllerOf, cards.AmountFromEvent))))

	e.HandleEffect(cards.AddMana(cards.ControllerOf, "G", 3).From(cards.NoID, cards.PlayerBot))
	require.Equal(t, 1, e.StackLen())
	e.ResolveTop()

	assert.Equal(t, 23, e.Life(cards.PlayerBot))
	assert.Equal(t, 3, e.ManaPool(cards.PlayerBot).Total())

	e.TriggerEvent(cards.PhaseChange(cards.PhaseUpkeep))
	assert.Equal(t, 0, e.ManaPool(cards.PlayerBot).Total(), "pools empty between phases")
	assert.Equal(t, cards.PhaseUpkeep, e.Phase())
}

func TestEngine_ReplacementChaining(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(bear("Bear"))

	e.AddReplacementEffect(10, effects.ReplacementRule{
		Name:    "exile instead",
		Match:   effects.Match(cards.EffectDestroy),
		Replace: []effects.EffectTemplate{effects.Into(cards.EffectExile)},
	})
	e.AddReplacementEffect(5, effects.ReplacementRule{
		Name:    "burn instead",
		Match:   effects.Match(cards.EffectExile),
		Replace: []effects.EffectTemplate{effects.Into(cards.EffectDealDamage).WithAmount(3)},
	})

	executed := e.HandleEffect(cards.Destroy(cards.CardTarget(id)))

	require.Len(t, executed, 1)
	assert.Equal(t, cards.EffectDealDamage, executed[0].Kind)
	assert.Equal(t, 3, executed[0].Amount)
	assert.Empty(t, e.Exiled())
	assert.Equal(t, []string{"Bear"}, names(e.Graveyard()))
}

func TestEngine_ContinuousAfterReplacement(t *testing.T) {
	e := newTestEngine(t)
	e.AddReplacementEffect(1, effects.ReplacementRule{
		Name:    "drain instead",
		Match:   effects.Match(cards.EffectDealDamage),
		Replace: []effects.EffectTemplate{effects.Into(cards.EffectLoseLife)},
	})
	e.AddContinuousEffect(effects.ContinuousRule{
		Name:        "bigger drain",
		Match:       effects.Match(cards.EffectLoseLife),
		AmountDelta: 1,
	})

	e.HandleEffect(cards.DealDamage(cards.OpponentOf, 2).From(cards.NoID, cards.PlayerBot))
	assert.Equal(t, 17, e.Life(cards.PlayerOpponent))
}

func TestEngine_LifeGainPrevention(t *testing.T) {
	e := newTestEngine(t)
	e.HandleEffect(cards.PreventLifeGain(cards.ControllerOf).From(cards.NoID, cards.PlayerBot))

	e.HandleEffect(cards.GainLife(cards.ControllerOf, 5).From(cards.NoID, cards.PlayerBot))
	assert.Equal(t, 20, e.Life(cards.PlayerBot))

	e.HandleEffect(cards.GainLife(cards.ControllerOf, 5).From(cards.NoID, cards.PlayerBot))
	assert.Equal(t, 25, e.Life(cards.PlayerBot))
}

func TestEngine_CountersTokensAndAuras(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(cards.NewCard("Spike", cards.TypeCreature, "").WithStats(1, 1))

	e.HandleEffect(cards.AddCounters(cards.CardTarget(id), "+1/+1", 2))
	e.HandleEffect(cards.Proliferate().From(cards.NoID, cards.PlayerBot))
	spike, _ := e.Card(id)
	assert.Equal(t, 4, spike.CurrentPower())

	e.HandleEffect(cards.CreateToken(cards.NewCard("Saproling", cards.TypeToken, "").WithStats(1, 1)).
		From(cards.NoID, cards.PlayerBot))
	e.HandleEffect(cards.CreateEnchantment(cards.NewCard("Wings", cards.TypeEnchantment, ""), cards.CardTarget(id)).
		From(cards.NoID, cards.PlayerBot))
	require.Len(t, e.Battlefield(), 3)

	e.HandleEffect(cards.GrantAbility(cards.CardTarget(id), cards.Flying))
	assert.True(t, spike.Keywords.Has(cards.Flying))

	e.HandleEffect(cards.Bounce(cards.CardTarget(id)))
	assert.Equal(t, []string{"Spike"}, names(e.Hand()))
	assert.Equal(t, []string{"Wings"}, names(e.Graveyard()), "auras fall off")
	assert.Len(t, e.Battlefield(), 1)
}

func TestEngine_CountersOnLiteralCard(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(&cards.Card{
		Name:       "Bear",
		Type:       cards.TypeCreature,
		Controller: cards.PlayerBot,
		Power:      2,
		Toughness:  2,
	})

	require.NotPanics(t, func() {
		e.HandleEffect(cards.Proliferate().From(cards.NoID, cards.PlayerBot))
		e.HandleEffect(cards.AddCounters(cards.CardTarget(id), "+1/+1", 1))
		e.HandleEffect(cards.Proliferate().From(cards.NoID, cards.PlayerBot))
	})
	c, _ := e.Card(id)
	assert.Equal(t, 4, c.CurrentPower())
}

func TestEngine_TargetedEffectsRunEachThroughPipeline(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(bear("Bear"))
	e.AddReplacementEffect(1, effects.ReplacementRule{Name: "no taps", Match: effects.Match(cards.EffectTap)})

	executed := e.HandleEffect(cards.TargetedEffects(
		cards.Tap(cards.CardTarget(id)),
		cards.ModifyStats(cards.CardTarget(id), 1, 0),
	))

	require.Len(t, executed, 2)
	assert.Equal(t, cards.EffectTargeted, executed[0].Kind)
	assert.Equal(t, cards.EffectModifyStats, executed[1].Kind)
	c, _ := e.Card(id)
	assert.False(t, c.Tapped)
	assert.Equal(t, 3, c.Power)
}

func TestEngine_Combat(t *testing.T) {
	e := newTestEngine(t)
	knight := e.EnterBattlefield(cards.NewCard("Knight", cards.TypeCreature, "").WithStats(3, 3).
		WithKeywords(cards.Lifelink))
	runner := e.EnterBattlefield(bear("Runner"))
	squire := e.EnterBattlefield(cards.NewCard("Squire", cards.TypeCreature, "").WithStats(1, 1).
		WithController(cards.PlayerOpponent))

	out := e.RunCombat([]cards.ID{knight, runner}, map[cards.ID][]cards.ID{knight: {squire}})

	assert.Equal(t, 2, out.UnblockedDamage)
	assert.Equal(t, 3, out.LifeGained)
	assert.Equal(t, 18, e.Life(cards.PlayerOpponent))
	assert.Equal(t, 23, e.Life(cards.PlayerBot))

	_, alive := e.Card(squire)
	assert.False(t, alive)
	k, _ := e.Card(knight)
	assert.Equal(t, 1, k.Damage)
	assert.True(t, k.Tapped)
}

func TestEngine_CombatConsumesSuppression(t *testing.T) {
	e := newTestEngine(t)
	id := e.EnterBattlefield(cards.NewCard("Leech", cards.TypeCreature, "").WithStats(5, 5).
		WithKeywords(cards.Lifelink, cards.Vigilance))
	e.HandleEffect(cards.PreventLifeGain(cards.ControllerOf).From(cards.NoID, cards.PlayerBot))

	first := e.RunCombat([]cards.ID{id}, nil)
	assert.Equal(t, 0, first.LifeGained)
	assert.False(t, e.LifeGainSuppressed(cards.PlayerBot))

	second := e.RunCombat([]cards.ID{id}, nil)
	assert.Equal(t, 5, second.LifeGained)
	assert.Equal(t, 25, e.Life(cards.PlayerBot))
	assert.Equal(t, 10, 20-e.Life(cards.PlayerOpponent))

	c, _ := e.Card(id)
	assert.False(t, c.Tapped, "vigilance")
}

func TestEngine_Notifications(t *testing.T) {
	e := newTestEngine(t)
	var got []rules.Notification
	handle := e.Subscribe(func(n rules.Notification) { got = append(got, n) })

	e.CastSpell(cards.NewCard("A", cards.TypeInstant, ""), cards.PlayerBot)
	require.NotEmpty(t, got)
	assert.Equal(t, rules.NotifyStackPush, got[0].Type)
	assert.Equal(t, e.ID(), got[0].Data["game_id"])

	e.Unsubscribe(handle)
	n := len(got)
	e.PassPriority()
	assert.Len(t, got, n)
}
