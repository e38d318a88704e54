package cards

import (
	"github.com/arenapilot/arenapilot/internal/game/counters"
	"github.com/arenapilot/arenapilot/internal/game/mana"
)

// CardType is the type line variant of a card.
type CardType string

const (
	TypeCreature    CardType = "CREATURE"
	TypeInstant     CardType = "INSTANT"
	TypeLand        CardType = "LAND"
	TypeEnchantment CardType = "ENCHANTMENT"
	TypeToken       CardType = "TOKEN"
)

// IsPermanent reports whether cards of this type stay on the battlefield
// after resolving.
func (t CardType) IsPermanent() bool {
	return t != TypeInstant
}

// Valid reports whether t is a known card type.
func (t CardType) Valid() bool {
	switch t {
	case TypeCreature, TypeInstant, TypeLand, TypeEnchantment, TypeToken:
		return true
	}
	return false
}

// Keyword is a combat-relevant keyword ability.
type Keyword string

const (
	FirstStrike  Keyword = "FIRST_STRIKE"
	DoubleStrike Keyword = "DOUBLE_STRIKE"
	Deathtouch   Keyword = "DEATHTOUCH"
	Lifelink     Keyword = "LIFELINK"
	Flying       Keyword = "FLYING"
	Vigilance    Keyword = "VIGILANCE"
	Trample      Keyword = "TRAMPLE"
	Haste        Keyword = "HASTE"
)

// Valid reports whether k is a known keyword.
func (k Keyword) Valid() bool {
	switch k {
	case FirstStrike, DoubleStrike, Deathtouch, Lifelink, Flying, Vigilance, Trample, Haste:
		return true
	}
	return false
}

// Keywords is a small set of keyword abilities.
type Keywords []Keyword

// Has reports whether k is in the set.
func (ks Keywords) Has(k Keyword) bool {
	for _, have := range ks {
		if have == k {
			return true
		}
	}
	return false
}

// With returns the set plus k.
func (ks Keywords) With(k Keyword) Keywords {
	if ks.Has(k) {
		return ks
	}
	out := make(Keywords, len(ks), len(ks)+1)
	copy(out, ks)
	return append(out, k)
}

// TriggeredAbility pairs a trigger condition with the ability it fires.
type TriggeredAbility struct {
	Trigger Trigger
	Ability Ability
}

// Card is a game object: a spell on the stack, a permanent, or a token.
// Cards are built by the card library and handed to the engine, which assigns
// the identity when the card enters play.
type Card struct {
	ID         ID
	Name       string
	Type       CardType
	ManaCost   string
	Controller Player
	Power      int
	Toughness  int
	Keywords   Keywords
	Subtypes   []string
	AttachedTo ID
	Triggers   []TriggeredAbility
	Activated  []ActivatedAbility
	Counters   *counters.Counters
	Damage     int
	Tapped     bool
}

// NewCard creates a card with no identity.
func NewCard(name string, cardType CardType, manaCost string) *Card {
	return &Card{
		Name:     name,
		Type:     cardType,
		ManaCost: manaCost,
		Counters: counters.New(),
	}
}

// WithStats sets base power and toughness.
func (c *Card) WithStats(power, toughness int) *Card {
	c.Power = power
	c.Toughness = toughness
	return c
}

// WithKeywords adds keyword abilities.
func (c *Card) WithKeywords(ks ...Keyword) *Card {
	for _, k := range ks {
		c.Keywords = c.Keywords.With(k)
	}
	return c
}

// WithSubtypes sets the creature types.
func (c *Card) WithSubtypes(subtypes ...string) *Card {
	c.Subtypes = append(c.Subtypes, subtypes...)
	return c
}

// WithController sets the controlling player.
func (c *Card) WithController(p Player) *Card {
	c.Controller = p
	return c
}

// On attaches a triggered ability.
func (c *Card) On(trigger Trigger, ability Ability) *Card {
	c.Triggers = append(c.Triggers, TriggeredAbility{Trigger: trigger, Ability: ability})
	return c
}

// WithActivated attaches an activated ability.
func (c *Card) WithActivated(a ActivatedAbility) *Card {
	c.Activated = append(c.Activated, a)
	return c
}

// IsCreature reports whether the card is a creature (tokens are creatures).
func (c *Card) IsCreature() bool {
	return c.Type == TypeCreature || c.Type == TypeToken
}

// HasSubtype reports whether the card has the creature type.
func (c *Card) HasSubtype(subtype string) bool {
	for _, s := range c.Subtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// CurrentPower is base power plus boost counters.
func (c *Card) CurrentPower() int {
	if c.Counters == nil {
		return c.Power
	}
	p, _ := c.Counters.Boost()
	return c.Power + p
}

// CurrentToughness is base toughness plus boost counters.
func (c *Card) CurrentToughness() int {
	if c.Counters == nil {
		return c.Toughness
	}
	_, t := c.Counters.Boost()
	return c.Toughness + t
}

// ManaValue returns the mana value of the card's cost; unparsable costs count
// as zero.
func (c *Card) ManaValue() int {
	cost, err := mana.ParseCost(c.ManaCost)
	if err != nil {
		return 0
	}
	return cost.Value()
}

// ResetTurn runs every ability's end-of-turn hook.
func (c *Card) ResetTurn() {
	for i := range c.Triggers {
		c.Triggers[i].Ability.ResetTurn()
	}
}

// Clone returns a deep copy. Ability per-turn state is copied too.
func (c *Card) Clone() *Card {
	cpy := *c
	cpy.Keywords = append(Keywords(nil), c.Keywords...)
	cpy.Subtypes = append([]string(nil), c.Subtypes...)
	cpy.Triggers = make([]TriggeredAbility, len(c.Triggers))
	for i, ta := range c.Triggers {
		cpy.Triggers[i] = TriggeredAbility{Trigger: ta.Trigger, Ability: ta.Ability.clone()}
	}
	cpy.Activated = make([]ActivatedAbility, len(c.Activated))
	for i, a := range c.Activated {
		a.Effects = cloneEffects(a.Effects)
		cpy.Activated[i] = a
	}
	if c.Counters != nil {
		cpy.Counters = c.Counters.Copy()
	} else {
		cpy.Counters = counters.New()
	}
	return &cpy
}
