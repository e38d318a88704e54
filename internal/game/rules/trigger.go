package rules

import (
	"sort"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"go.uber.org/zap"
)

// Pending is one triggered effect waiting to be put on the stack or
// scheduled.
type Pending struct {
	Effect     cards.Effect
	Source     cards.ID
	Controller cards.Player
	Tier       Tier
}

// Batch is every effect triggered by a single event. A batch is pushed as a
// unit so nothing can be interleaved between simultaneous triggers.
type Batch []Pending

// Split separates effects explicitly wrapped as Delayed from the ones that go
// on the stack.
func (b Batch) Split() (stack, delayed Batch) {
	for _, p := range b {
		if p.Effect.Kind == cards.EffectDelayed {
			delayed = append(delayed, p)
		} else {
			stack = append(stack, p)
		}
	}
	return stack, delayed
}

// TierFor maps a triggered effect to its stack tier. Stat changes and
// proliferate resolve ahead of other triggers.
func TierFor(e cards.Effect) Tier {
	switch e.Kind {
	case cards.EffectModifyStats, cards.EffectProliferate:
		return TierStatTrigger
	}
	return TierTrigger
}

// Dispatcher turns game events into batches of triggered effects.
type Dispatcher struct {
	logger *zap.Logger
	apnap  bool
}

// NewDispatcher creates a dispatcher. With apnap set, each batch is ordered so
// the active player's triggers are pushed first and the non-active player's
// resolve first; otherwise batches follow card scan order.
func NewDispatcher(logger *zap.Logger, apnap bool) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger, apnap: apnap}
}

// Collect walks scan and gathers the effects of every trigger that matches
// ev. active is the active player, used only for APNAP ordering.
func (d *Dispatcher) Collect(ev cards.Event, scan []*cards.Card, active cards.Player) Batch {
	subject := ev.Subject
	if subject == nil && ev.Card != cards.NoID {
		for _, c := range scan {
			if c.ID == ev.Card {
				subject = c
				break
			}
		}
	}

	var batch Batch
	for _, card := range scan {
		for i := range card.Triggers {
			ta := &card.Triggers[i]
			if !ta.Trigger.Matches(card, ev, subject) {
				continue
			}
			for _, effect := range ta.Ability.Produce(ta.Trigger.Event, ev) {
				effect = effect.From(card.ID, card.Controller)
				batch = append(batch, Pending{
					Effect:     effect,
					Source:     card.ID,
					Controller: card.Controller,
					Tier:       TierFor(effect),
				})
			}
		}
	}

	if d.apnap && len(batch) > 1 {
		sort.SliceStable(batch, func(i, j int) bool {
			return batch[i].Controller == active && batch[j].Controller != active
		})
	}

	if len(batch) > 0 {
		d.logger.Debug("collected triggers",
			zap.String("event", ev.String()),
			zap.Int("count", len(batch)),
		)
	}
	return batch
}
