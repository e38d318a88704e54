package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocatorAssignsOnce(t *testing.T) {
	var alloc IDAllocator
	a := NewCard("Grizzly Bears", TypeCreature, "{1}{G}")
	b := NewCard("Shock", TypeInstant, "{R}")

	assert.Equal(t, ID(1), alloc.Assign(a))
	assert.Equal(t, ID(1), alloc.Assign(a), "second assignment must keep the identity")
	assert.Equal(t, ID(2), alloc.Assign(b))
	assert.Equal(t, ID(2), alloc.Last())
}

func TestTriggerMatches(t *testing.T) {
	owner := NewCard("Watcher", TypeCreature, "").WithController(PlayerBot)
	owner.ID = 1
	ally := NewCard("Elf", TypeCreature, "").WithController(PlayerBot).WithSubtypes("Elf")
	ally.ID = 2
	enemy := NewCard("Goblin", TypeCreature, "").WithController(PlayerOpponent).WithSubtypes("Goblin")
	enemy.ID = 3

	tests := []struct {
		name    string
		trigger Trigger
		event   Event
		subject *Card
		want    bool
	}{
		{"wrong kind", When(EventCreatureDied), TurnEnded(), nil, false},
		{"turn ended has no subject", When(EventTurnEnded).Self(), TurnEnded(), nil, true},
		{"self died", When(EventCreatureDied).Self(), CreatureDied(owner), owner, true},
		{"other died self filter", When(EventCreatureDied).Self(), CreatureDied(ally), ally, false},
		{"controller creatures ally", When(EventCreatureDied).ControllerCreatures(), CreatureDied(ally), ally, true},
		{"controller creatures enemy", When(EventCreatureDied).ControllerCreatures(), CreatureDied(enemy), enemy, false},
		{"exact id", When(EventTargeted).Exact(3), Targeted(3), enemy, true},
		{"exact id miss", When(EventTargeted).Exact(3), Targeted(2), ally, false},
		{"creature type", When(EventEnteredBattlefield).OfType("Goblin"), EnteredBattlefield(enemy), enemy, true},
		{"creature type miss", When(EventEnteredBattlefield).OfType("Goblin"), EnteredBattlefield(ally), ally, false},
		{"phase filter", When(EventPhaseChanged).InPhase(PhaseUpkeep), PhaseChange(PhaseUpkeep), nil, true},
		{"phase filter miss", When(EventPhaseChanged).InPhase(PhaseUpkeep), PhaseChange(PhaseDraw), nil, false},
		{"spell by name", When(EventSpellResolved).Self(), SpellResolved("Watcher"), nil, true},
		{"any", When(EventCounterAdded), CounterAdded(2, "+1/+1", 1), ally, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.Matches(owner, tt.event, tt.subject))
		})
	}
}

func TestAbilityOncePerTurn(t *testing.T) {
	a := OncePerTurn(DrawCards(ControllerOf, 1))

	assert.Len(t, a.Produce(EventCreatureDied, Event{}), 1)
	assert.Empty(t, a.Produce(EventCreatureDied, Event{}))
	assert.True(t, a.Used())

	a.ResetTurn()
	assert.Len(t, a.Produce(EventCreatureDied, Event{}), 1)
}

func TestAbilityThreshold(t *testing.T) {
	a := AfterCount(3, GainLife(ControllerOf, 2))

	assert.Empty(t, a.Produce(EventSpellResolved, Event{}))
	assert.Empty(t, a.Produce(EventSpellResolved, Event{}))
	assert.Len(t, a.Produce(EventSpellResolved, Event{}), 1)
	assert.Empty(t, a.Produce(EventSpellResolved, Event{}), "fires once per turn")
}

func TestAbilityBindsEventAmount(t *testing.T) {
	a := Every(DealDamage(OpponentOf, AmountFromEvent))

	got := a.Produce(EventManaAdded, ManaAdded(PlayerBot, 3))
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Amount)

	got = a.Produce(EventTurnEnded, TurnEnded())
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Amount)
	assert.Equal(t, AmountFromEvent, a.Effects[0].Amount, "template must not be mutated")
}

func TestEffectSubstituteTarget(t *testing.T) {
	e := TargetedEffects(
		DealDamage(AnyCreature, 2),
		GainLife(ControllerOf, 2),
		IfCondition(ConditionTargetDiesThisTurn, AnyCreature, DrawCards(ControllerOf, 1)),
	)

	got := e.SubstituteTarget(7)

	assert.Equal(t, CardTarget(7), got.Inner[0].Target)
	assert.Equal(t, ControllerOf, got.Inner[1].Target)
	assert.Equal(t, CardTarget(7), got.Inner[2].Target)
	assert.Equal(t, AnyCreature, e.Inner[0].Target, "original must be untouched")
	assert.Equal(t, e, e.SubstituteTarget(NoID))
}

func TestEffectFromStampsInner(t *testing.T) {
	e := Delay(DealDamage(OpponentOf, 1), PhaseEnd).From(4, PlayerOpponent)

	assert.Equal(t, ID(4), e.Source)
	assert.Equal(t, ID(4), e.Inner[0].Source)
	assert.Equal(t, PlayerOpponent, e.Inner[0].Controller)
}

func TestCardCloneIsIndependent(t *testing.T) {
	c := NewCard("Hydra", TypeCreature, "{X}{G}").WithStats(0, 0).
		On(When(EventTurnEnded), OncePerTurn(AddCounters(SelfTarget, "+1/+1", 1)))
	c.Counters.Add("+1/+1", 2)

	cpy := c.Clone()
	cpy.Counters.Add("+1/+1", 1)
	cpy.Triggers[0].Ability.Produce(EventTurnEnded, TurnEnded())

	assert.Equal(t, 2, c.CurrentPower())
	assert.Equal(t, 3, cpy.CurrentPower())
	assert.False(t, c.Triggers[0].Ability.Used())
	assert.Equal(t, 1, c.ManaValue())
}

func TestBattlefieldOrder(t *testing.T) {
	bf := NewBattlefield()
	var alloc IDAllocator
	names := []string{"a", "b", "c"}
	for _, n := range names {
		c := NewCard(n, TypeCreature, "")
		alloc.Assign(c)
		require.True(t, bf.Put(c))
	}
	assert.False(t, bf.Put(NewCard("no id", TypeLand, "")))

	_, ok := bf.Remove(2)
	require.True(t, ok)

	var got []string
	for _, c := range bf.Cards() {
		got = append(got, c.Name)
	}
	assert.Equal(t, []string{"a", "c"}, got)
	assert.Len(t, bf.Creatures(PlayerBot), 2)
}
