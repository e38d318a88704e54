package effects

import (
	"fmt"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContinuousRule adjusts every matching effect before it executes. Amounts
// are multiplied by AmountFactor (when non-zero) and then shifted by
// AmountDelta, never dropping below zero. A set Target or Keyword overrides
// the effect's own.
type ContinuousRule struct {
	Name         string        `yaml:"name"`
	Match        EffectPattern `yaml:"match"`
	AmountDelta  int           `yaml:"amount_delta,omitempty"`
	AmountFactor int           `yaml:"amount_factor,omitempty"`
	Target       cards.Target  `yaml:"target,omitempty"`
	Keyword      cards.Keyword `yaml:"keyword,omitempty"`
}

// Modify returns e with the rule applied. The caller checks Match first.
func (r ContinuousRule) Modify(e cards.Effect) cards.Effect {
	if r.AmountFactor != 0 {
		e.Amount *= r.AmountFactor
	}
	e.Amount += r.AmountDelta
	if e.Amount < 0 {
		e.Amount = 0
	}
	if r.Target.Kind != cards.TargetNone {
		e.Target = r.Target
	}
	if r.Keyword != "" {
		e.Keyword = r.Keyword
	}
	return e
}

func (r ContinuousRule) String() string {
	return fmt.Sprintf("%s: %s x%d %+d", r.Name, r.Match, r.AmountFactor, r.AmountDelta)
}

// RegisteredContinuous is a rule as stored by the manager.
type RegisteredContinuous struct {
	ID   string
	Rule ContinuousRule
}

// ContinuousManager applies continuous rules in registration order.
type ContinuousManager struct {
	rules  []RegisteredContinuous
	logger *zap.Logger
}

// NewContinuousManager creates an empty manager.
func NewContinuousManager(logger *zap.Logger) *ContinuousManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContinuousManager{logger: logger}
}

// Add registers rule and returns its id.
func (cm *ContinuousManager) Add(rule ContinuousRule) string {
	id := uuid.NewString()
	cm.rules = append(cm.rules, RegisteredContinuous{ID: id, Rule: rule})
	cm.logger.Debug("added continuous rule",
		zap.String("rule_id", id),
		zap.String("rule", rule.String()))
	return id
}

// Remove deletes the rule with id.
func (cm *ContinuousManager) Remove(id string) bool {
	for i, r := range cm.rules {
		if r.ID == id {
			cm.rules = append(cm.rules[:i], cm.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns the registered rules in application order.
func (cm *ContinuousManager) Rules() []RegisteredContinuous {
	out := make([]RegisteredContinuous, len(cm.rules))
	copy(out, cm.rules)
	return out
}

// Apply runs every matching rule over e. Each rule sees the output of the
// ones registered before it.
func (cm *ContinuousManager) Apply(e cards.Effect) cards.Effect {
	for _, r := range cm.rules {
		if !r.Rule.Match.Matches(e) {
			continue
		}
		e = r.Rule.Modify(e)
		cm.logger.Debug("applied continuous rule",
			zap.String("rule_id", r.ID),
			zap.String("rule", r.Rule.Name),
			zap.String("effect", e.String()))
	}
	return e
}
