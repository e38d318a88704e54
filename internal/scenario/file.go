// Package scenario loads YAML scenario files and drives an engine through
// them. A scenario carries its own card library, optional replacement and
// continuous rules, and a script of steps with expectations.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arenapilot/arenapilot/internal/game/cards"
	"github.com/arenapilot/arenapilot/internal/game/effects"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for scenario files that fail validation.
var ErrInvalid = errors.New("invalid scenario")

// File is the top-level YAML structure.
type File struct {
	Name         string                   `yaml:"name"`
	Description  string                   `yaml:"description,omitempty"`
	Library      string                   `yaml:"library,omitempty"`
	Cards        []CardSpec               `yaml:"cards"`
	Replacements []ReplacementSpec        `yaml:"replacements,omitempty"`
	Continuous   []effects.ContinuousRule `yaml:"continuous,omitempty"`
	Steps        []Step                   `yaml:"steps"`
}

// CardSpec describes one card of the scenario's library.
type CardSpec struct {
	Name      string          `yaml:"name"`
	Type      cards.CardType  `yaml:"type"`
	Cost      string          `yaml:"cost,omitempty"`
	Power     int             `yaml:"power,omitempty"`
	Toughness int             `yaml:"toughness,omitempty"`
	Keywords  []cards.Keyword `yaml:"keywords,omitempty"`
	Subtypes  []string        `yaml:"subtypes,omitempty"`
	Triggers  []TriggerSpec   `yaml:"triggers,omitempty"`
	Activated []ActivatedSpec `yaml:"activated,omitempty"`
}

// TriggerSpec is a triggered ability: what it listens for and what it does.
type TriggerSpec struct {
	On        cards.EventKind   `yaml:"on"`
	Filter    cards.FilterKind  `yaml:"filter,omitempty"`
	Card      string            `yaml:"card,omitempty"`
	Subtype   string            `yaml:"subtype,omitempty"`
	Phase     cards.Phase       `yaml:"phase,omitempty"`
	Note      string            `yaml:"note,omitempty"`
	Ability   cards.AbilityKind `yaml:"ability,omitempty"`
	Threshold int               `yaml:"threshold,omitempty"`
	Effects   []EffectSpec      `yaml:"effects"`
}

// ActivatedSpec is an activated ability.
type ActivatedSpec struct {
	Name      string                    `yaml:"name"`
	Cost      string                    `yaml:"cost,omitempty"`
	Condition cards.ActivationCondition `yaml:"condition,omitempty"`
	Effects   []EffectSpec              `yaml:"effects"`
}

// EffectSpec is an effect in YAML form. Card names a scenario alias and
// turns the target into that card. Token names a library card.
type EffectSpec struct {
	Kind            cards.EffectKind    `yaml:"kind"`
	Target          cards.TargetKind    `yaml:"target,omitempty"`
	Card            string              `yaml:"card,omitempty"`
	Amount          int                 `yaml:"amount,omitempty"`
	AmountFromEvent bool                `yaml:"amount_from_event,omitempty"`
	Power           int                 `yaml:"power,omitempty"`
	Toughness       int                 `yaml:"toughness,omitempty"`
	Keyword         cards.Keyword       `yaml:"keyword,omitempty"`
	Counter         string              `yaml:"counter,omitempty"`
	Mana            string              `yaml:"mana,omitempty"`
	Token           string              `yaml:"token,omitempty"`
	Phase           cards.Phase         `yaml:"phase,omitempty"`
	DependsOn       []cards.DelayedID   `yaml:"depends_on,omitempty"`
	Condition       cards.ConditionKind `yaml:"condition,omitempty"`
	Effects         []EffectSpec        `yaml:"effects,omitempty"`
	Note            string              `yaml:"note,omitempty"`
}

// ReplacementSpec registers a replacement rule at a priority.
type ReplacementSpec struct {
	Priority                int `yaml:"priority"`
	effects.ReplacementRule `yaml:",inline"`
}

// Step is one scripted action. Exactly one action field is set; Expect may
// accompany it or stand alone.
type Step struct {
	Enter      string `yaml:"enter,omitempty"`
	Cast       string `yaml:"cast,omitempty"`
	As         string `yaml:"as,omitempty"`
	Controller string `yaml:"controller,omitempty"`
	Target     string `yaml:"target,omitempty"`

	Activate string `yaml:"activate,omitempty"`
	Ability  int    `yaml:"ability,omitempty"`

	Pass    int  `yaml:"pass,omitempty"`
	Resolve bool `yaml:"resolve,omitempty"`
	Advance int  `yaml:"advance,omitempty"`

	Effect   *EffectSpec   `yaml:"effect,omitempty"`
	Event    *EventSpec    `yaml:"event,omitempty"`
	Schedule *ScheduleSpec `yaml:"schedule,omitempty"`
	Dispatch cards.Phase   `yaml:"dispatch,omitempty"`
	Combat   *CombatSpec   `yaml:"combat,omitempty"`

	// Fails marks a step whose action must be rejected by the engine.
	Fails  bool         `yaml:"fails,omitempty"`
	Expect *Expectation `yaml:"expect,omitempty"`
}

// EventSpec raises an event directly.
type EventSpec struct {
	Kind   cards.EventKind `yaml:"kind"`
	Card   string          `yaml:"card,omitempty"`
	Name   string          `yaml:"name,omitempty"`
	Phase  cards.Phase     `yaml:"phase,omitempty"`
	Player string          `yaml:"player,omitempty"`
	Amount int             `yaml:"amount,omitempty"`
	Note   string          `yaml:"note,omitempty"`
}

// ScheduleSpec defers an effect to a phase.
type ScheduleSpec struct {
	Effect    EffectSpec        `yaml:"effect"`
	Phase     cards.Phase       `yaml:"phase"`
	DependsOn []cards.DelayedID `yaml:"depends_on,omitempty"`
}

// CombatSpec declares attackers and, per attacker alias, its blockers in
// damage assignment order.
type CombatSpec struct {
	Attackers []string            `yaml:"attackers"`
	Blocks    map[string][]string `yaml:"blocks,omitempty"`
}

// Load reads and validates a scenario file. A library path is relative to
// the scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return parse(data, filepath.Dir(path))
}

// Parse decodes and validates scenario YAML. A library path is relative to
// the working directory.
func Parse(data []byte) (*File, error) {
	return parse(data, "")
}

func parse(data []byte, dir string) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if f.Library != "" {
		path := f.Library
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		lib, err := LoadLibrary(path)
		if err != nil {
			return nil, err
		}
		f.merge(lib)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks everything that can be checked before the scenario runs.
// Card aliases are resolved at run time.
func (f *File) Validate() error {
	if len(f.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalid)
	}

	library := make(map[string]bool, len(f.Cards))
	for _, c := range f.Cards {
		if c.Name == "" {
			return fmt.Errorf("%w: card without a name", ErrInvalid)
		}
		if library[c.Name] {
			return fmt.Errorf("%w: card %q defined twice", ErrInvalid, c.Name)
		}
		library[c.Name] = true
	}
	for _, c := range f.Cards {
		if err := c.validate(library); err != nil {
			return fmt.Errorf("%w: card %q: %v", ErrInvalid, c.Name, err)
		}
	}

	for i, r := range f.Replacements {
		if r.Match.Kind != "" && !r.Match.Kind.Valid() {
			return fmt.Errorf("%w: replacement %d: unknown effect kind %q", ErrInvalid, i, r.Match.Kind)
		}
		for _, t := range r.Replace {
			if !t.Kind.Valid() {
				return fmt.Errorf("%w: replacement %d: unknown effect kind %q", ErrInvalid, i, t.Kind)
			}
		}
	}
	for i, r := range f.Continuous {
		if r.Match.Kind != "" && !r.Match.Kind.Valid() {
			return fmt.Errorf("%w: continuous rule %d: unknown effect kind %q", ErrInvalid, i, r.Match.Kind)
		}
	}

	for i, s := range f.Steps {
		if err := s.validate(library); err != nil {
			return fmt.Errorf("%w: step %d: %v", ErrInvalid, i+1, err)
		}
	}
	return nil
}

func (c CardSpec) validate(library map[string]bool) error {
	if !c.Type.Valid() {
		return fmt.Errorf("unknown type %q", c.Type)
	}
	for _, k := range c.Keywords {
		if !k.Valid() {
			return fmt.Errorf("unknown keyword %q", k)
		}
	}
	for _, t := range c.Triggers {
		if !t.On.Valid() {
			return fmt.Errorf("unknown event %q", t.On)
		}
		if t.Filter != "" && !t.Filter.Valid() {
			return fmt.Errorf("unknown filter %q", t.Filter)
		}
		switch t.Ability {
		case "", cards.AbilityEvery, cards.AbilityOncePerTurn:
		case cards.AbilityThreshold:
			if t.Threshold <= 0 {
				return fmt.Errorf("threshold ability needs a positive threshold")
			}
		default:
			return fmt.Errorf("unknown ability kind %q", t.Ability)
		}
		if err := validateEffects(t.Effects, library); err != nil {
			return err
		}
	}
	for _, a := range c.Activated {
		switch a.Condition {
		case cards.ActivateAlways, cards.ActivateOpponentLostLifeThisTurn, cards.ActivateControllerLostLifeThisTurn:
		default:
			return fmt.Errorf("ability %q: unknown condition %q", a.Name, a.Condition)
		}
		if err := validateEffects(a.Effects, library); err != nil {
			return fmt.Errorf("ability %q: %w", a.Name, err)
		}
	}
	return nil
}

func validateEffects(specs []EffectSpec, library map[string]bool) error {
	if len(specs) == 0 {
		return errors.New("no effects")
	}
	for _, s := range specs {
		if err := s.validate(library); err != nil {
			return err
		}
	}
	return nil
}

func (s EffectSpec) validate(library map[string]bool) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown effect kind %q", s.Kind)
	}
	if !s.Target.Valid() {
		return fmt.Errorf("%s: unknown target %q", s.Kind, s.Target)
	}
	switch s.Kind {
	case cards.EffectCreateToken, cards.EffectCreateEnchantment:
		if !library[s.Token] {
			return fmt.Errorf("%s: unknown token card %q", s.Kind, s.Token)
		}
	case cards.EffectDelayed, cards.EffectConditional, cards.EffectTargeted:
		if err := validateEffects(s.Effects, library); err != nil {
			return fmt.Errorf("%s: %w", s.Kind, err)
		}
	}
	if s.Kind == cards.EffectDelayed {
		if _, err := cards.ParsePhase(string(s.Phase)); err != nil {
			return fmt.Errorf("%s: %w", s.Kind, err)
		}
	}
	if s.Kind == cards.EffectConditional {
		switch s.Condition {
		case cards.ConditionTargetDiesThisTurn, cards.ConditionOpponentLostLifeThisTurn, cards.ConditionControllerLostLifeThisTurn:
		default:
			return fmt.Errorf("%s: unknown condition %q", s.Kind, s.Condition)
		}
	}
	return nil
}

// Action names the step's action, or "" for an expectation-only step.
func (s Step) Action() string {
	var actions []string
	if s.Enter != "" {
		actions = append(actions, "enter")
	}
	if s.Cast != "" {
		actions = append(actions, "cast")
	}
	if s.Activate != "" {
		actions = append(actions, "activate")
	}
	if s.Pass > 0 {
		actions = append(actions, "pass")
	}
	if s.Resolve {
		actions = append(actions, "resolve")
	}
	if s.Advance > 0 {
		actions = append(actions, "advance")
	}
	if s.Effect != nil {
		actions = append(actions, "effect")
	}
	if s.Event != nil {
		actions = append(actions, "event")
	}
	if s.Schedule != nil {
		actions = append(actions, "schedule")
	}
	if s.Dispatch != "" {
		actions = append(actions, "dispatch")
	}
	if s.Combat != nil {
		actions = append(actions, "combat")
	}
	if len(actions) != 1 {
		return ""
	}
	return actions[0]
}

func (s Step) validate(library map[string]bool) error {
	action := s.Action()
	if action == "" && s.Expect == nil {
		return errors.New("exactly one action or an expectation is required")
	}
	if _, err := cards.ParsePlayer(s.Controller); err != nil {
		return err
	}

	switch action {
	case "enter":
		if !library[s.Enter] {
			return fmt.Errorf("unknown card %q", s.Enter)
		}
	case "cast":
		if !library[s.Cast] {
			return fmt.Errorf("unknown card %q", s.Cast)
		}
	case "effect":
		return s.Effect.validate(library)
	case "event":
		if !s.Event.Kind.Valid() {
			return fmt.Errorf("unknown event %q", s.Event.Kind)
		}
	case "schedule":
		if _, err := cards.ParsePhase(string(s.Schedule.Phase)); err != nil {
			return err
		}
		return s.Schedule.Effect.validate(library)
	case "dispatch":
		if _, err := cards.ParsePhase(string(s.Dispatch)); err != nil {
			return err
		}
	case "combat":
		if len(s.Combat.Attackers) == 0 {
			return errors.New("combat without attackers")
		}
	}
	if s.Fails && action != "activate" && action != "schedule" {
		return fmt.Errorf("%s steps cannot be expected to fail", action)
	}
	return nil
}
