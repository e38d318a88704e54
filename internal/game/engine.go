package game

import (
	"errors"
	"fmt"

	"github.com/arenapilot/arenapilot/internal/config"
	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/arenapilot/arenapilot/internal/game/counters"
	"github.com/arenapilot/arenapilot/internal/game/effects"
	"github.com/arenapilot/arenapilot/internal/game/mana"
	"github.com/arenapilot/arenapilot/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrCannotActivate is returned when an ability was already used this
	// turn, its condition does not hold, or its cost cannot be paid.
	ErrCannotActivate = errors.New("ability cannot be activated")
	// ErrUnknownCard is returned for a card id that is not on the battlefield.
	ErrUnknownCard = errors.New("unknown card")
	// ErrUnknownAbility is returned for an activated ability index out of range.
	ErrUnknownAbility = errors.New("unknown ability")
)

// Zone is where a card went when it left the battlefield.
type Zone string

const (
	ZoneGraveyard Zone = "GRAVEYARD"
	ZoneExile     Zone = "EXILE"
	ZoneHand      Zone = "HAND"
)

// Engine is the rules engine for one game between the bot and its opponent.
// It owns the stack, priority, trigger dispatch, delayed effects and the
// replacement/continuous pipeline. It is not safe for concurrent use; callers
// serialize every call.
type Engine struct {
	id     string
	cfg    config.EngineConfig
	logger *zap.Logger

	stack      *rules.Stack
	priority   *rules.Priority
	clock      *rules.TurnClock
	dispatcher *rules.Dispatcher
	delayed    *rules.DelayedScheduler

	replacements *effects.ReplacementManager
	continuous   *effects.ContinuousManager

	ids         cards.IDAllocator
	battlefield *cards.Battlefield
	zones       map[Zone][]*cards.Card

	turn       *rules.TurnWatcher
	deathWatch *rules.DeathWatch

	life     map[cards.Player]int
	suppress map[cards.Player]bool
	drawn    map[cards.Player]int
	pools    map[cards.Player]*mana.Pool

	bus     *rules.Bus
	journal *Journal
}

// NewEngine creates an engine for a fresh game. The bot is the active player
// and holds priority first.
func NewEngine(cfg config.EngineConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StartingLife <= 0 {
		cfg.StartingLife = config.Default().Engine.StartingLife
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("game_id", id))

	e := &Engine{
		id:           id,
		cfg:          cfg,
		logger:       logger,
		stack:        rules.NewStack(),
		priority:     rules.NewPriority(cards.PlayerBot),
		clock:        rules.NewTurnClock(cards.PlayerBot),
		dispatcher:   rules.NewDispatcher(logger, cfg.APNAPOrdering),
		delayed:      rules.NewDelayedScheduler(logger),
		replacements: effects.NewReplacementManager(cfg.MaxReplacementDepth, logger),
		continuous:   effects.NewContinuousManager(logger),
		battlefield:  cards.NewBattlefield(),
		zones:        make(map[Zone][]*cards.Card),
		turn:         rules.NewTurnWatcher(),
		deathWatch:   rules.NewDeathWatch(),
		life:         make(map[cards.Player]int),
		suppress:     make(map[cards.Player]bool),
		drawn:        make(map[cards.Player]int),
		pools:        make(map[cards.Player]*mana.Pool),
		bus:          rules.NewBus(),
	}
	for _, p := range cards.Players {
		e.life[p] = cfg.StartingLife
		e.pools[p] = mana.NewPool()
	}
	if cfg.JournalLimit > 0 {
		e.journal = NewJournal(id, cfg.JournalLimit)
	}

	logger.Info("engine created",
		zap.Int("starting_life", cfg.StartingLife),
		zap.Bool("apnap_ordering", cfg.APNAPOrdering),
	)
	e.record("start")
	return e
}

// ID returns the game id.
func (e *Engine) ID() string { return e.id }

// CastSpell puts card on the stack for controller. An optional target is
// captured and substituted for generic creature targets when the spell
// resolves.
func (e *Engine) CastSpell(card *cards.Card, controller cards.Player, target ...cards.ID) *rules.StackEntry {
	captured := cards.NoID
	if len(target) > 0 {
		captured = target[0]
	}
	card.Controller = controller

	entry := e.push(rules.StackEntry{
		Kind:       rules.StackEntrySpell,
		Controller: controller,
		Card:       card,
		Target:     captured,
		Tier:       rules.TierSpell,
	})
	e.logger.Debug("spell cast",
		zap.String("card", card.Name),
		zap.String("controller", controller.String()),
		zap.Stringer("target", captured),
	)
	e.record("cast " + card.Name)
	return &entry
}

// CanActivate reports whether controller may activate the index-th ability
// of source now.
func (e *Engine) CanActivate(source cards.ID, index int, controller cards.Player) bool {
	card, ok := e.battlefield.Get(source)
	if !ok || index < 0 || index >= len(card.Activated) {
		return false
	}
	_, err := e.canActivate(card, index, controller)
	return err == nil
}

// canActivate checks the turn limit, the condition and the cost, returning
// the parsed cost to pay.
func (e *Engine) canActivate(card *cards.Card, index int, controller cards.Player) (mana.Cost, error) {
	if e.turn.Activated(card.ID, index) {
		return mana.Cost{}, fmt.Errorf("%w: %s already activated this turn", ErrCannotActivate, card.Name)
	}
	ability := card.Activated[index]
	switch ability.Condition {
	case cards.ActivateOpponentLostLifeThisTurn:
		if !e.turn.LostLife(controller.Other()) {
			return mana.Cost{}, fmt.Errorf("%w: opponent has not lost life this turn", ErrCannotActivate)
		}
	case cards.ActivateControllerLostLifeThisTurn:
		if !e.turn.LostLife(controller) {
			return mana.Cost{}, fmt.Errorf("%w: controller has not lost life this turn", ErrCannotActivate)
		}
	}
	cost, err := mana.ParseCost(ability.Cost)
	if err != nil {
		return mana.Cost{}, fmt.Errorf("%w: %v", ErrCannotActivate, err)
	}
	if !e.pools[controller].CanPay(cost) {
		return mana.Cost{}, fmt.Errorf("%w: cannot pay %s", ErrCannotActivate, cost)
	}
	return cost, nil
}

// ActivateAbility pays for and puts the index-th activated ability of source
// on the stack.
func (e *Engine) ActivateAbility(source cards.ID, index int, controller cards.Player) error {
	card, ok := e.battlefield.Get(source)
	if !ok {
		return fmt.Errorf("activate %s: %w", source, ErrUnknownCard)
	}
	if index < 0 || index >= len(card.Activated) {
		return fmt.Errorf("activate %s ability %d: %w", source, index, ErrUnknownAbility)
	}
	cost, err := e.canActivate(card, index, controller)
	if err != nil {
		return fmt.Errorf("activate %s ability %d: %w", source, index, err)
	}
	if !e.pools[controller].Pay(cost) {
		return fmt.Errorf("activate %s ability %d: %w: cannot pay %s", source, index, ErrCannotActivate, cost)
	}

	ability := card.Activated[index]

	effect := cards.TargetedEffects(ability.Effects...)
	if len(ability.Effects) == 1 {
		effect = ability.Effects[0]
	}
	e.turn.RecordActivation(source, index)
	e.push(rules.StackEntry{
		Kind:       rules.StackEntryActivated,
		Controller: controller,
		Effect:     effect.From(source, controller),
		Source:     source,
		Tier:       rules.TierActivated,
	})
	e.logger.Debug("ability activated",
		zap.String("card", card.Name),
		zap.String("ability", ability.Name),
		zap.Int("index", index),
	)
	e.record("activate " + card.Name)
	return nil
}

// PassPriority passes for the current holder. The second consecutive pass
// resolves the top of the stack and returns true.
func (e *Engine) PassPriority() bool {
	holder := e.priority.Holder()
	if !e.priority.Pass() {
		e.notify(rules.NotifyPriority, "priority passed", map[string]any{
			"from": holder.String(),
			"to":   e.priority.Holder().String(),
		})
		return false
	}
	e.logger.Debug("both players passed", zap.Int("stack", e.stack.Len()))
	e.ResolveTop()
	return true
}

// ResolveTop resolves the top entry of the stack. It returns false when the
// stack is empty.
func (e *Engine) ResolveTop() bool {
	entry, ok := e.stack.Pop()
	if !ok {
		return false
	}

	e.logger.Debug("resolving stack entry",
		zap.String("stack_entry", entry.ID),
		zap.String("kind", string(entry.Kind)),
		zap.String("description", entry.Description()),
	)
	e.notify(rules.NotifyStackResolve, entry.Description(), map[string]any{
		"id":   entry.ID,
		"kind": string(entry.Kind),
	})

	switch entry.Kind {
	case rules.StackEntrySpell:
		e.resolveSpell(entry)
	default:
		e.HandleEffect(entry.Effect)
	}
	e.record("resolve " + entry.Description())
	return true
}

// ResolveStack resolves entries until the stack is empty and returns how many
// were resolved.
func (e *Engine) ResolveStack() int {
	n := 0
	for e.ResolveTop() {
		n++
	}
	return n
}

// resolveSpell puts permanents onto the battlefield, then fires the spell's
// own resolution triggers with the captured target, then every other card's.
func (e *Engine) resolveSpell(entry rules.StackEntry) {
	card := entry.Card
	card.Controller = entry.Controller
	e.ids.Assign(card)
	if card.Type.IsPermanent() {
		e.enter(card)
	}

	ev := cards.SpellResolvedCard(card)
	own := e.dispatcher.Collect(ev, []*cards.Card{card}, e.clock.Active())
	for i := range own {
		own[i].Effect = own[i].Effect.SubstituteTarget(entry.Target)
	}
	pushed := e.pushBatch(own)

	others := make([]*cards.Card, 0, e.battlefield.Len())
	for _, c := range e.battlefield.Cards() {
		if c.ID != card.ID {
			others = append(others, c)
		}
	}
	pushed += e.pushBatch(e.dispatcher.Collect(ev, others, e.clock.Active()))

	if !card.Type.IsPermanent() {
		e.moveTo(ZoneGraveyard, card)
	}
	e.logger.Debug("spell resolved",
		zap.String("card", card.Name),
		zap.Int("triggers", pushed),
	)
}

// EnterBattlefield puts card onto the battlefield, assigning its identity if
// it has none, and fires its enter triggers.
func (e *Engine) EnterBattlefield(card *cards.Card) cards.ID {
	e.enter(card)
	e.record("enter " + card.Name)
	return card.ID
}

func (e *Engine) enter(card *cards.Card) {
	e.ids.Assign(card)
	if card.Counters == nil {
		card.Counters = counters.New()
	}
	e.battlefield.Put(card)
	e.notify(rules.NotifyBattlefield, card.Name+" entered the battlefield", map[string]any{
		"card":       uint64(card.ID),
		"controller": card.Controller.String(),
	})
	e.TriggerEvent(cards.EnteredBattlefield(card))
}

// TriggerEvent dispatches ev to every card on the battlefield and pushes the
// resulting batch. CreatureDied also fires death watches; PhaseChanged moves
// the turn to that phase and empties mana pools; TurnEnded runs end-of-turn
// bookkeeping after its triggers are collected. It returns the number of
// stack entries pushed.
func (e *Engine) TriggerEvent(ev cards.Event) int {
	scan := e.battlefield.Cards()
	if ev.Kind == cards.EventCreatureDied && ev.Subject != nil {
		if _, onField := e.battlefield.Get(ev.Card); !onField {
			scan = append(scan, ev.Subject)
		}
	}

	if ev.Kind == cards.EventPhaseChanged {
		e.clock.Set(ev.Phase)
		for _, p := range cards.Players {
			e.pools[p].Empty()
		}
		e.notify(rules.NotifyPhase, string(ev.Phase), nil)
	}

	batch := e.dispatcher.Collect(ev, scan, e.clock.Active())
	pushed := e.pushBatch(batch)

	if ev.Kind == cards.EventCreatureDied {
		for _, effect := range e.deathWatch.Fire(ev.Card) {
			e.logger.Debug("death watch fired",
				zap.Stringer("card", ev.Card),
				zap.String("effect", effect.String()),
			)
			e.HandleEffect(effect)
		}
	}
	if ev.Kind == cards.EventTurnEnded {
		e.endTurn()
	}
	return pushed
}

// endTurn resets per-turn state and hands the turn to the other player.
func (e *Engine) endTurn() {
	for _, c := range e.battlefield.Cards() {
		c.ResetTurn()
		c.Damage = 0
		c.Tapped = false
	}
	e.turn.Reset()
	e.deathWatch.Clear()
	for _, p := range cards.Players {
		e.suppress[p] = false
	}

	for {
		if _, wrapped := e.clock.Advance(); wrapped {
			break
		}
	}
	e.priority.GiveTo(e.clock.Active())
	e.priority.Reset()

	e.logger.Info("turn ended",
		zap.Int("turn", e.clock.Turn()),
		zap.String("active", e.clock.Active().String()),
	)
	e.notify(rules.NotifyPhase, "turn ended", map[string]any{
		"turn":   e.clock.Turn(),
		"active": e.clock.Active().String(),
	})
	e.record("turn ended")
}

// AdvancePhase moves to the next phase, raising PhaseChanged and running any
// delayed effects due in the new phase. Passing cleanup ends the turn.
func (e *Engine) AdvancePhase() cards.Phase {
	if e.clock.Phase() == cards.PhaseCleanup {
		e.TriggerEvent(cards.TurnEnded())
	} else {
		next, _ := e.clock.Advance()
		e.TriggerEvent(cards.PhaseChange(next))
	}
	e.DispatchDelayed(e.clock.Phase())
	return e.clock.Phase()
}

// pushBatch puts a trigger batch on the stack as a unit and schedules its
// delayed effects. It returns the number of stack entries pushed.
func (e *Engine) pushBatch(batch rules.Batch) int {
	onStack, delayed := batch.Split()
	for _, p := range delayed {
		for _, inner := range p.Effect.Inner {
			if _, err := e.ScheduleDelayed(inner, p.Effect.Phase, p.Effect.DependsOn...); err != nil {
				e.logger.Warn("dropped delayed trigger", zap.Error(err))
			}
		}
	}
	for _, p := range onStack {
		e.push(rules.StackEntry{
			Kind:       rules.StackEntryTriggered,
			Controller: p.Controller,
			Effect:     p.Effect,
			Source:     p.Source,
			Tier:       p.Tier,
		})
	}
	if len(onStack) > 0 {
		e.notify(rules.NotifyTrigger, fmt.Sprintf("%d triggered abilities", len(onStack)), nil)
	}
	return len(onStack)
}

func (e *Engine) push(entry rules.StackEntry) rules.StackEntry {
	stored := e.stack.Push(entry)
	e.priority.Reset()
	e.notify(rules.NotifyStackPush, stored.Description(), map[string]any{
		"id":   stored.ID,
		"kind": string(stored.Kind),
		"tier": int(stored.Tier),
	})
	return stored
}

// ScheduleDelayed defers effect to phase, after every id in dependsOn ran.
func (e *Engine) ScheduleDelayed(effect cards.Effect, phase cards.Phase, dependsOn ...cards.DelayedID) (cards.DelayedID, error) {
	id, err := e.delayed.Schedule(effect, phase, dependsOn...)
	if err != nil {
		return 0, err
	}
	e.notify(rules.NotifyDelayed, "scheduled "+effect.String(), map[string]any{
		"id":    uint64(id),
		"phase": string(phase),
	})
	return id, nil
}

// DispatchDelayed runs every delayed effect ready in phase, in ascending id
// order, and returns the effects that executed.
func (e *Engine) DispatchDelayed(phase cards.Phase) []cards.Effect {
	var executed []cards.Effect
	e.delayed.Dispatch(phase, func(d rules.Delayed) {
		e.notify(rules.NotifyDelayed, "dispatched "+d.Effect.String(), map[string]any{
			"id":    uint64(d.ID),
			"phase": string(phase),
		})
		executed = append(executed, e.HandleEffect(d.Effect)...)
	})
	return executed
}

// PendingDelayed returns the delayed effects still waiting.
func (e *Engine) PendingDelayed() []rules.Delayed {
	return e.delayed.Pending()
}

// AddReplacementEffect registers a replacement rule at priority.
func (e *Engine) AddReplacementEffect(priority int, rule effects.ReplacementRule) string {
	return e.replacements.Add(priority, rule)
}

// AddContinuousEffect registers a continuous rule.
func (e *Engine) AddContinuousEffect(rule effects.ContinuousRule) string {
	return e.continuous.Add(rule)
}

// Subscribe registers a listener for engine notifications.
func (e *Engine) Subscribe(l rules.Listener) int {
	return e.bus.Subscribe(l)
}

// Unsubscribe removes a listener.
func (e *Engine) Unsubscribe(handle int) {
	e.bus.Unsubscribe(handle)
}

// Life returns p's life total.
func (e *Engine) Life(p cards.Player) int { return e.life[p] }

// LifeGainSuppressed reports whether p's next life gain will be prevented.
func (e *Engine) LifeGainSuppressed(p cards.Player) bool { return e.suppress[p] }

// Drawn returns how many cards p drew this game.
func (e *Engine) Drawn(p cards.Player) int { return e.drawn[p] }

// StackLen returns the number of pending stack entries.
func (e *Engine) StackLen() int { return e.stack.Len() }

// Stack returns the pending entries, top first.
func (e *Engine) Stack() []rules.StackEntry { return e.stack.List() }

// PriorityHolder returns the player who may act next.
func (e *Engine) PriorityHolder() cards.Player { return e.priority.Holder() }

// Passes returns the consecutive pass count.
func (e *Engine) Passes() int { return e.priority.Passes() }

// Phase returns the current phase.
func (e *Engine) Phase() cards.Phase { return e.clock.Phase() }

// Turn returns the turn number.
func (e *Engine) Turn() int { return e.clock.Turn() }

// ActivePlayer returns the player whose turn it is.
func (e *Engine) ActivePlayer() cards.Player { return e.clock.Active() }

// Card looks up a card on the battlefield.
func (e *Engine) Card(id cards.ID) (*cards.Card, bool) { return e.battlefield.Get(id) }

// Battlefield returns the cards in play in the order they entered.
func (e *Engine) Battlefield() []*cards.Card { return e.battlefield.Cards() }

// Graveyard returns the cards put into the graveyard, oldest first.
func (e *Engine) Graveyard() []*cards.Card { return e.zone(ZoneGraveyard) }

// Exiled returns the exiled cards, oldest first.
func (e *Engine) Exiled() []*cards.Card { return e.zone(ZoneExile) }

// Hand returns the cards returned to hand, oldest first.
func (e *Engine) Hand() []*cards.Card { return e.zone(ZoneHand) }

// ManaPool returns p's mana pool.
func (e *Engine) ManaPool(p cards.Player) *mana.Pool { return e.pools[p] }

// Journal returns the snapshot journal, or nil when disabled.
func (e *Engine) Journal() *Journal { return e.journal }

func (e *Engine) zone(z Zone) []*cards.Card {
	out := make([]*cards.Card, len(e.zones[z]))
	copy(out, e.zones[z])
	return out
}

func (e *Engine) moveTo(z Zone, card *cards.Card) {
	e.zones[z] = append(e.zones[z], card)
}
