package scenario

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenapilot/arenapilot/internal/game"
	"github.com/arenapilot/arenapilot/internal/game/cards"
	"go.uber.org/zap"
)

var (
	// ErrFinished is returned by Next once every step ran.
	ErrFinished = errors.New("scenario finished")
	// ErrUnknownAlias is returned for a card alias no step introduced.
	ErrUnknownAlias = errors.New("unknown card alias")
	// ErrUnexpectedSuccess is returned when a step marked to fail succeeded.
	ErrUnexpectedSuccess = errors.New("step was expected to fail")
)

// Runner drives one engine through a scenario, one step at a time.
type Runner struct {
	file    *File
	engine  *game.Engine
	logger  *zap.Logger
	build   *builder
	aliases map[string]*cards.Card
	next    int
}

// Summary is the outcome of a scenario run.
type Summary struct {
	Name        string         `json:"name"`
	GameID      string         `json:"game_id"`
	Steps       int            `json:"steps"`
	Turn        int            `json:"turn"`
	Phase       string         `json:"phase"`
	Life        map[string]int `json:"life"`
	Stack       int            `json:"stack"`
	Battlefield []string       `json:"battlefield"`
	Graveyard   []string       `json:"graveyard"`
	Checksum    string         `json:"checksum"`
}

// NewRunner prepares f against engine and registers the scenario's
// replacement and continuous rules.
func NewRunner(f *File, engine *game.Engine, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		file:    f,
		engine:  engine,
		logger:  logger.With(zap.String("scenario", f.Name), zap.String("game_id", engine.ID())),
		aliases: make(map[string]*cards.Card),
	}
	r.build = &builder{
		library: make(map[string]CardSpec, len(f.Cards)),
		resolve: r.resolve,
	}
	for _, c := range f.Cards {
		r.build.library[c.Name] = c
	}

	for _, rep := range f.Replacements {
		id := engine.AddReplacementEffect(rep.Priority, rep.ReplacementRule)
		r.logger.Debug("replacement rule registered", zap.String("rule", rep.String()), zap.String("id", id))
	}
	for _, rule := range f.Continuous {
		id := engine.AddContinuousEffect(rule)
		r.logger.Debug("continuous rule registered", zap.String("rule", rule.String()), zap.String("id", id))
	}
	return r
}

// Engine returns the engine being driven.
func (r *Runner) Engine() *game.Engine { return r.engine }

// Len returns the number of steps.
func (r *Runner) Len() int { return len(r.file.Steps) }

// Done reports whether every step ran.
func (r *Runner) Done() bool { return r.next >= len(r.file.Steps) }

// Next runs the next step and checks its expectation.
func (r *Runner) Next() error {
	if r.Done() {
		return ErrFinished
	}
	index := r.next
	step := r.file.Steps[index]
	r.next++

	logger := r.logger.With(zap.Int("step", index+1), zap.String("action", step.Action()))
	err := r.apply(step)
	switch {
	case step.Fails && err == nil:
		return fmt.Errorf("step %d: %w", index+1, ErrUnexpectedSuccess)
	case step.Fails:
		logger.Debug("step failed as expected", zap.Error(err))
	case err != nil:
		return fmt.Errorf("step %d (%s): %w", index+1, step.Action(), err)
	}

	if step.Expect != nil {
		if err := step.Expect.check(r.engine, r.resolve); err != nil {
			return fmt.Errorf("step %d: %w", index+1, err)
		}
	}
	logger.Debug("step done")
	return nil
}

// Run executes the remaining steps, stopping at the first error or when ctx
// is done.
func (r *Runner) Run(ctx context.Context) error {
	for !r.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Next(); err != nil {
			return err
		}
	}
	r.logger.Info("scenario complete", zap.Int("steps", r.Len()))
	return nil
}

// Summary describes the current game state.
func (r *Runner) Summary() Summary {
	snap := r.engine.Snapshot("summary")
	return Summary{
		Name:        r.file.Name,
		GameID:      r.engine.ID(),
		Steps:       r.next,
		Turn:        snap.Turn,
		Phase:       snap.Phase,
		Life:        snap.Life,
		Stack:       len(snap.Stack),
		Battlefield: cardNames(r.engine.Battlefield()),
		Graveyard:   snap.Graveyard,
		Checksum:    snap.Checksum(),
	}
}

func (r *Runner) apply(step Step) error {
	controller, err := cards.ParsePlayer(step.Controller)
	if err != nil {
		return err
	}

	switch step.Action() {
	case "enter":
		c, err := r.build.card(step.Enter)
		if err != nil {
			return err
		}
		r.engine.EnterBattlefield(c.WithController(controller))
		r.remember(step, step.Enter, c)
	case "cast":
		c, err := r.build.card(step.Cast)
		if err != nil {
			return err
		}
		var target []cards.ID
		if step.Target != "" {
			t, err := r.resolve(step.Target)
			if err != nil {
				return err
			}
			target = append(target, t.ID)
		}
		r.engine.CastSpell(c, controller, target...)
		r.remember(step, step.Cast, c)
	case "activate":
		c, err := r.resolve(step.Activate)
		if err != nil {
			return err
		}
		return r.engine.ActivateAbility(c.ID, step.Ability, controller)
	case "pass":
		for i := 0; i < step.Pass; i++ {
			r.engine.PassPriority()
		}
	case "resolve":
		r.engine.ResolveStack()
	case "advance":
		for i := 0; i < step.Advance; i++ {
			r.engine.AdvancePhase()
		}
	case "effect":
		e, err := r.build.effect(*step.Effect)
		if err != nil {
			return err
		}
		r.engine.HandleEffect(e.From(cards.NoID, controller))
	case "event":
		ev, err := r.event(*step.Event)
		if err != nil {
			return err
		}
		r.engine.TriggerEvent(ev)
	case "schedule":
		e, err := r.build.effect(step.Schedule.Effect)
		if err != nil {
			return err
		}
		phase, err := cards.ParsePhase(string(step.Schedule.Phase))
		if err != nil {
			return err
		}
		_, err = r.engine.ScheduleDelayed(e.From(cards.NoID, controller), phase, step.Schedule.DependsOn...)
		return err
	case "dispatch":
		phase, err := cards.ParsePhase(string(step.Dispatch))
		if err != nil {
			return err
		}
		r.engine.DispatchDelayed(phase)
	case "combat":
		return r.combat(*step.Combat)
	}
	return nil
}

// remember binds the step's alias, or the card name, to c.
func (r *Runner) remember(step Step, name string, c *cards.Card) {
	alias := step.As
	if alias == "" {
		alias = name
	}
	r.aliases[alias] = c
}

func (r *Runner) resolve(alias string) (*cards.Card, error) {
	c, ok := r.aliases[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, alias)
	}
	if c.ID == cards.NoID {
		return nil, fmt.Errorf("%q has not resolved yet", alias)
	}
	return c, nil
}

func (r *Runner) event(s EventSpec) (cards.Event, error) {
	var subject *cards.Card
	if s.Card != "" {
		c, err := r.resolve(s.Card)
		if err != nil {
			return cards.Event{}, err
		}
		subject = c
	}
	needSubject := func() error {
		if subject == nil {
			return fmt.Errorf("%s event needs a card", s.Kind)
		}
		return nil
	}

	switch s.Kind {
	case cards.EventSpellResolved:
		if subject != nil {
			return cards.SpellResolvedCard(subject), nil
		}
		return cards.SpellResolved(s.Name), nil
	case cards.EventCreatureDied:
		if err := needSubject(); err != nil {
			return cards.Event{}, err
		}
		return cards.CreatureDied(subject), nil
	case cards.EventTurnEnded:
		return cards.TurnEnded(), nil
	case cards.EventPhaseChanged:
		phase, err := cards.ParsePhase(string(s.Phase))
		if err != nil {
			return cards.Event{}, err
		}
		return cards.PhaseChange(phase), nil
	case cards.EventTargeted:
		if err := needSubject(); err != nil {
			return cards.Event{}, err
		}
		return cards.Targeted(subject.ID), nil
	case cards.EventManaAdded:
		p, err := cards.ParsePlayer(s.Player)
		if err != nil {
			return cards.Event{}, err
		}
		return cards.ManaAdded(p, s.Amount), nil
	case cards.EventCounterAdded:
		if err := needSubject(); err != nil {
			return cards.Event{}, err
		}
		return cards.CounterAdded(subject.ID, s.Note, s.Amount), nil
	case cards.EventEnteredBattlefield:
		if err := needSubject(); err != nil {
			return cards.Event{}, err
		}
		return cards.EnteredBattlefield(subject), nil
	case cards.EventCustom:
		return cards.Custom(s.Note), nil
	}
	return cards.Event{}, fmt.Errorf("unknown event %q", s.Kind)
}

func (r *Runner) combat(s CombatSpec) error {
	attackers := make([]cards.ID, 0, len(s.Attackers))
	blocks := make(map[cards.ID][]cards.ID)
	for _, alias := range s.Attackers {
		a, err := r.resolve(alias)
		if err != nil {
			return err
		}
		attackers = append(attackers, a.ID)
		for _, blockerAlias := range s.Blocks[alias] {
			b, err := r.resolve(blockerAlias)
			if err != nil {
				return err
			}
			blocks[a.ID] = append(blocks[a.ID], b.ID)
		}
	}
	out := r.engine.RunCombat(attackers, blocks)
	r.logger.Debug("combat applied",
		zap.Int("unblocked_damage", out.UnblockedDamage),
		zap.Int("life_gained", out.LifeGained),
	)
	return nil
}
