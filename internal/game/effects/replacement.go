package effects

import (
	"fmt"

	"github.com/arenapilot/arenapilot/internal/game/cards"
)

// EffectPattern selects the effects a rule applies to. Zero fields match
// anything.
type EffectPattern struct {
	Kind       cards.EffectKind `yaml:"kind"`
	TargetKind cards.TargetKind `yaml:"target,omitempty"`
	Source     cards.ID         `yaml:"source,omitempty"`
}

// Match builds a pattern on effect kind alone.
func Match(kind cards.EffectKind) EffectPattern {
	return EffectPattern{Kind: kind}
}

// Matches reports whether e fits the pattern.
func (p EffectPattern) Matches(e cards.Effect) bool {
	if p.Kind != "" && p.Kind != e.Kind {
		return false
	}
	if p.TargetKind != cards.TargetNone && p.TargetKind != e.Target.Kind {
		return false
	}
	if p.Source != cards.NoID && p.Source != e.Source {
		return false
	}
	return true
}

func (p EffectPattern) String() string {
	s := string(p.Kind)
	if s == "" {
		s = "*"
	}
	if p.TargetKind != cards.TargetNone {
		s += "->" + string(p.TargetKind)
	}
	if p.Source != cards.NoID {
		s += "@" + p.Source.String()
	}
	return s
}

// EffectTemplate describes a successor effect built from a replaced one.
// Unset fields are carried over from the replaced effect, so the successor
// keeps its target, source and controller unless told otherwise.
type EffectTemplate struct {
	Kind    cards.EffectKind `yaml:"kind"`
	Target  cards.Target     `yaml:"target,omitempty"`
	Amount  int              `yaml:"amount,omitempty"`
	Keyword cards.Keyword    `yaml:"keyword,omitempty"`
	Counter string           `yaml:"counter,omitempty"`
	Note    string           `yaml:"note,omitempty"`
}

// Into builds a template that turns the matched effect into kind.
func Into(kind cards.EffectKind) EffectTemplate {
	return EffectTemplate{Kind: kind}
}

// WithAmount sets the successor's amount.
func (t EffectTemplate) WithAmount(amount int) EffectTemplate {
	t.Amount = amount
	return t
}

// Build creates the successor of from.
func (t EffectTemplate) Build(from cards.Effect) cards.Effect {
	out := from
	out.Kind = t.Kind
	if t.Target.Kind != cards.TargetNone {
		out.Target = t.Target
	}
	if t.Amount != 0 {
		out.Amount = t.Amount
	}
	if t.Keyword != "" {
		out.Keyword = t.Keyword
	}
	if t.Counter != "" {
		out.Counter = t.Counter
	}
	if t.Note != "" {
		out.Note = t.Note
	}
	return out
}

// ReplacementRule swaps a matching effect for zero or more successors. A rule
// with no successors prevents the effect.
type ReplacementRule struct {
	Name    string           `yaml:"name"`
	Match   EffectPattern    `yaml:"match"`
	Replace []EffectTemplate `yaml:"replace,omitempty"`
}

// Prevents reports whether the rule discards the effect outright.
func (r ReplacementRule) Prevents() bool {
	return len(r.Replace) == 0
}

func (r ReplacementRule) String() string {
	if r.Prevents() {
		return fmt.Sprintf("%s: prevent %s", r.Name, r.Match)
	}
	kinds := make([]string, len(r.Replace))
	for i, t := range r.Replace {
		kinds[i] = string(t.Kind)
	}
	return fmt.Sprintf("%s: %s => %v", r.Name, r.Match, kinds)
}
