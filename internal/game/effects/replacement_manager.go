package effects

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxDepth bounds how many replacements may chain off one effect.
const DefaultMaxDepth = 16

// ErrReplacementDepth is returned when a replacement chain is cut off.
var ErrReplacementDepth = errors.New("replacement chain exceeded maximum depth")

// RegisteredReplacement is a rule as stored by the manager.
type RegisteredReplacement struct {
	ID       string
	Priority int
	Rule     ReplacementRule
}

// ReplacementManager holds the active replacement rules ordered by descending
// priority. Rules registered with equal priority keep registration order.
type ReplacementManager struct {
	rules    []RegisteredReplacement
	maxDepth int
	logger   *zap.Logger
}

// NewReplacementManager creates an empty manager. A non-positive maxDepth
// falls back to DefaultMaxDepth.
func NewReplacementManager(maxDepth int, logger *zap.Logger) *ReplacementManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &ReplacementManager{maxDepth: maxDepth, logger: logger}
}

// Add registers rule at priority and returns its id.
func (rm *ReplacementManager) Add(priority int, rule ReplacementRule) string {
	id := uuid.NewString()
	rm.rules = append(rm.rules, RegisteredReplacement{ID: id, Priority: priority, Rule: rule})
	sort.SliceStable(rm.rules, func(i, j int) bool {
		return rm.rules[i].Priority > rm.rules[j].Priority
	})

	rm.logger.Debug("added replacement rule",
		zap.String("rule_id", id),
		zap.String("rule", rule.String()),
		zap.Int("priority", priority))
	return id
}

// Remove deletes the rule with id.
func (rm *ReplacementManager) Remove(id string) bool {
	for i, r := range rm.rules {
		if r.ID == id {
			rm.rules = append(rm.rules[:i], rm.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns the registered rules in application order.
func (rm *ReplacementManager) Rules() []RegisteredReplacement {
	out := make([]RegisteredReplacement, len(rm.rules))
	copy(out, rm.rules)
	return out
}

// Len returns the number of registered rules.
func (rm *ReplacementManager) Len() int {
	return len(rm.rules)
}

// Replace offers effect to the rules in order. The first matching rule
// replaces it, and each successor is offered only to the rules after that
// one, so a rule never sees its own output. The result is the list of effects
// that should actually happen; it is empty when the effect was prevented.
//
// If a chain runs deeper than the configured limit, the effect reached at the
// limit is kept unreplaced and ErrReplacementDepth is returned alongside the
// partial result.
func (rm *ReplacementManager) Replace(effect cards.Effect) ([]cards.Effect, error) {
	return rm.replaceFrom(effect, 0, 0)
}

func (rm *ReplacementManager) replaceFrom(effect cards.Effect, start, depth int) ([]cards.Effect, error) {
	for i := start; i < len(rm.rules); i++ {
		r := rm.rules[i]
		if !r.Rule.Match.Matches(effect) {
			continue
		}
		if depth >= rm.maxDepth {
			rm.logger.Error("replacement chain exceeded maximum depth",
				zap.String("effect", effect.String()),
				zap.String("rule_id", r.ID),
				zap.Int("max_depth", rm.maxDepth))
			return []cards.Effect{effect}, fmt.Errorf("replace %s: %w", effect, ErrReplacementDepth)
		}

		rm.logger.Debug("applied replacement rule",
			zap.String("rule_id", r.ID),
			zap.String("rule", r.Rule.Name),
			zap.String("effect", effect.String()),
			zap.Int("depth", depth))

		var (
			out      []cards.Effect
			firstErr error
		)
		for _, tmpl := range r.Rule.Replace {
			replaced, err := rm.replaceFrom(tmpl.Build(effect), i+1, depth+1)
			out = append(out, replaced...)
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return out, firstErr
	}
	return []cards.Effect{effect}, nil
}
