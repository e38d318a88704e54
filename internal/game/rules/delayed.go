package rules

import (
	"errors"
	"fmt"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"go.uber.org/zap"
)

// ErrUnsatisfiableDependency is returned when a delayed effect depends on an
// id that was never scheduled. Such an effect could never become ready.
var ErrUnsatisfiableDependency = errors.New("delayed effect depends on an unknown id")

// Delayed is an effect deferred to a future phase.
type Delayed struct {
	ID        cards.DelayedID
	Effect    cards.Effect
	Phase     cards.Phase
	DependsOn []cards.DelayedID
}

// DelayedScheduler keeps pending delayed effects and the set of ids already
// executed.
type DelayedScheduler struct {
	pending  []Delayed
	executed map[cards.DelayedID]bool
	last     cards.DelayedID
	logger   *zap.Logger
}

// NewDelayedScheduler creates an empty scheduler.
func NewDelayedScheduler(logger *zap.Logger) *DelayedScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DelayedScheduler{
		executed: make(map[cards.DelayedID]bool),
		logger:   logger,
	}
}

// Schedule records effect for phase, to run only after every id in dependsOn
// has executed. Ids are handed out in increasing order, so a dependency is
// known exactly when it is not above the last id issued.
func (s *DelayedScheduler) Schedule(effect cards.Effect, phase cards.Phase, dependsOn ...cards.DelayedID) (cards.DelayedID, error) {
	for _, dep := range dependsOn {
		if dep == 0 || dep > s.last {
			return 0, fmt.Errorf("schedule %s: %w: %d", effect, ErrUnsatisfiableDependency, dep)
		}
	}
	s.last++
	d := Delayed{
		ID:        s.last,
		Effect:    effect,
		Phase:     phase,
		DependsOn: append([]cards.DelayedID(nil), dependsOn...),
	}
	s.pending = append(s.pending, d)
	s.logger.Debug("scheduled delayed effect",
		zap.Uint64("delayed_id", uint64(d.ID)),
		zap.String("phase", string(phase)),
		zap.String("effect", effect.String()),
	)
	return d.ID, nil
}

// Dispatch runs every delayed effect that is ready in phase. Effects run in
// ascending id order; each one is marked executed before run is called, so
// dependents become ready within the same call. Effects scheduled by run for
// the same phase are picked up as well.
func (s *DelayedScheduler) Dispatch(phase cards.Phase, run func(Delayed)) int {
	ran := 0
	for {
		idx := s.nextReady(phase)
		if idx < 0 {
			return ran
		}
		d := s.pending[idx]
		s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
		s.executed[d.ID] = true
		ran++
		run(d)
	}
}

// nextReady returns the index of the lowest-id ready effect, or -1. Pending
// is appended in id order, so the first ready one is the lowest.
func (s *DelayedScheduler) nextReady(phase cards.Phase) int {
	for i, d := range s.pending {
		if d.Phase == phase && s.dependenciesMet(d) {
			return i
		}
	}
	return -1
}

func (s *DelayedScheduler) dependenciesMet(d Delayed) bool {
	for _, dep := range d.DependsOn {
		if !s.executed[dep] {
			return false
		}
	}
	return true
}

// Executed reports whether id already ran.
func (s *DelayedScheduler) Executed(id cards.DelayedID) bool {
	return s.executed[id]
}

// Pending returns a copy of the effects still waiting.
func (s *DelayedScheduler) Pending() []Delayed {
	out := make([]Delayed, len(s.pending))
	copy(out, s.pending)
	return out
}
