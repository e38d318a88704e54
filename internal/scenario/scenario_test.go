package scenario

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arenapilot/arenapilot/internal/config"
	"github.com/arenapilot/arenapilot/internal/game"
	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRunner(t *testing.T, f *File) *Runner {
	t.Helper()
	logger := zaptest.NewLogger(t)
	return NewRunner(f, game.NewEngine(config.Default().Engine, logger), logger)
}

func mustParse(t *testing.T, src string) *File {
	t.Helper()
	f, err := Parse([]byte(src))
	require.NoError(t, err)
	return f
}

func TestRunTestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := Load(path)
			require.NoError(t, err)

			r := newRunner(t, f)
			require.NoError(t, r.Run(context.Background()))
			assert.True(t, r.Done())
			assert.ErrorIs(t, r.Next(), ErrFinished)
		})
	}
}

func TestSummaryIsDeterministic(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "pipeline.yaml"))
	require.NoError(t, err)

	first := newRunner(t, f)
	second := newRunner(t, f)
	require.NoError(t, first.Run(context.Background()))
	require.NoError(t, second.Run(context.Background()))

	a, b := first.Summary(), second.Summary()
	assert.NotEqual(t, a.GameID, b.GameID)
	assert.Equal(t, a.Checksum, b.Checksum)
	assert.Equal(t, len(f.Steps), a.Steps)
	assert.Equal(t, 25, a.Life["bot"])
	assert.Equal(t, []string{"Mourner", "Vampire Knight"}, a.Battlefield)
}

func TestParseRejectsInvalidScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no steps", `name: empty`},
		{"duplicate card", `
cards:
  - {name: Bear, type: CREATURE}
  - {name: Bear, type: CREATURE}
steps:
  - enter: Bear`},
		{"unknown type", `
cards:
  - {name: Bear, type: PLANESWALKER}
steps:
  - enter: Bear`},
		{"unknown effect", `
cards:
  - name: Bolt
    type: INSTANT
    triggers:
      - on: SPELL_RESOLVED
        effects: [{kind: EXPLODE}]
steps:
  - cast: Bolt`},
		{"unknown token", `
cards:
  - name: Maker
    type: ENCHANTMENT
    triggers:
      - on: CUSTOM
        effects: [{kind: CREATE_TOKEN, token: Ghost}]
steps:
  - enter: Maker`},
		{"threshold without count", `
cards:
  - name: Counter
    type: ENCHANTMENT
    triggers:
      - on: CUSTOM
        ability: THRESHOLD
        effects: [{kind: CUSTOM, note: x}]
steps:
  - enter: Counter`},
		{"unknown step card", `
steps:
  - enter: Ghost`},
		{"two actions", `
cards:
  - {name: Bear, type: CREATURE}
steps:
  - {enter: Bear, pass: 1}`},
		{"unknown player", `
cards:
  - {name: Bear, type: CREATURE}
steps:
  - {enter: Bear, controller: spectator}`},
		{"bad phase", `
steps:
  - dispatch: LUNCH`},
		{"pass cannot fail", `
steps:
  - {pass: 1, fails: true}`},
		{"bad replacement", `
replacements:
  - {priority: 1, name: r, match: {kind: DESTROY}, replace: [{kind: NOPE}]}
steps:
  - pass: 1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("steps: [unclosed"))
	assert.Error(t, err)
}

func TestExpectationMismatchIsReported(t *testing.T) {
	f := mustParse(t, `
name: wrong life
steps:
  - effect: {kind: LOSE_LIFE, target: OPPONENT, amount: 3}
    expect:
      life: {opponent: 18}
      stack: 1
`)
	r := newRunner(t, f)

	err := r.Next()
	require.ErrorIs(t, err, ErrExpectation)
	assert.Contains(t, err.Error(), "life of opponent: want 18, got 17")
	assert.Contains(t, err.Error(), "stack size: want 1, got 0")
}

func TestStepExpectedToFail(t *testing.T) {
	f := mustParse(t, `
cards:
  - name: Free
    type: CREATURE
    activated:
      - name: ping
        effects: [{kind: LOSE_LIFE, target: OPPONENT, amount: 1}]
steps:
  - enter: Free
  - activate: Free
    fails: true
`)
	err := newRunner(t, f).Run(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedSuccess)
}

func TestUnknownAlias(t *testing.T) {
	f := mustParse(t, `
steps:
  - effect: {kind: DESTROY, card: ghost}
`)
	err := newRunner(t, f).Next()
	assert.ErrorIs(t, err, ErrUnknownAlias)
}

func TestAliasOfUnresolvedSpell(t *testing.T) {
	f := mustParse(t, `
cards:
  - {name: Bear, type: CREATURE, power: 2, toughness: 2}
steps:
  - cast: Bear
  - effect: {kind: TAP, card: Bear}
`)
	r := newRunner(t, f)
	require.NoError(t, r.Next())
	assert.Error(t, r.Next())
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	f := mustParse(t, `
steps:
  - pass: 1
`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, f)
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
	assert.False(t, r.Done())
}

func TestTokensAurasAndBounce(t *testing.T) {
	f := mustParse(t, `
cards:
  - {name: Saproling, type: TOKEN, power: 1, toughness: 1}
  - {name: Wings, type: ENCHANTMENT}
  - {name: Bear, type: CREATURE, power: 2, toughness: 2}
steps:
  - enter: Bear
    as: bear
  - effect: {kind: CREATE_TOKEN, token: Saproling}
  - effect: {kind: CREATE_ENCHANTMENT, token: Wings, card: bear}
    expect: {battlefield: [Bear, Saproling, Wings]}
  - effect: {kind: BOUNCE, card: bear}
    expect: {battlefield: [Saproling], hand: [Bear], graveyard: [Wings]}
`)
	require.NoError(t, newRunner(t, f).Run(context.Background()))
}

func TestEventSteps(t *testing.T) {
	f := mustParse(t, `
cards:
  - name: Elf Lord
    type: CREATURE
    power: 2
    toughness: 2
    triggers:
      - on: CREATURE_DIED
        filter: CREATURE_TYPE
        subtype: Elf
        effects: [{kind: GAIN_LIFE, target: CONTROLLER, amount: 2}]
      - on: PHASE_CHANGED
        phase: UPKEEP
        effects: [{kind: LOSE_LIFE, target: OPPONENT, amount: 1}]
  - {name: Elf, type: CREATURE, power: 1, toughness: 1, subtypes: [Elf]}
  - {name: Goblin, type: CREATURE, power: 1, toughness: 1, subtypes: [Goblin]}
steps:
  - enter: Elf Lord
  - enter: Elf
  - enter: Goblin
  - event: {kind: CREATURE_DIED, card: Goblin}
    expect: {stack: 0}
  - event: {kind: CREATURE_DIED, card: Elf}
    expect: {stack: 1}
  - event: {kind: PHASE_CHANGED, phase: DRAW}
    expect: {stack: 1, phase: DRAW}
  - event: {kind: PHASE_CHANGED, phase: UPKEEP}
    expect: {stack: 2}
  - resolve: true
    expect: {life: {bot: 22, opponent: 19}}
`)
	r := newRunner(t, f)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, cards.PhaseUpkeep, r.Engine().Phase())
}
