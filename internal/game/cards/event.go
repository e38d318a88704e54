package cards

import "fmt"

// EventKind indicates the category of a game event.
type EventKind string

const (
	EventSpellResolved      EventKind = "SPELL_RESOLVED"
	EventCreatureDied       EventKind = "CREATURE_DIED"
	EventTurnEnded          EventKind = "TURN_ENDED"
	EventPhaseChanged       EventKind = "PHASE_CHANGED"
	EventTargeted           EventKind = "TARGETED"
	EventManaAdded          EventKind = "MANA_ADDED"
	EventCounterAdded       EventKind = "COUNTER_ADDED"
	EventEnteredBattlefield EventKind = "ENTERED_BATTLEFIELD"
	EventCustom             EventKind = "CUSTOM"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventSpellResolved, EventCreatureDied, EventTurnEnded, EventPhaseChanged, EventTargeted,
		EventManaAdded, EventCounterAdded, EventEnteredBattlefield, EventCustom:
		return true
	}
	return false
}

// Event is something that happened in the game. Which fields are meaningful
// depends on Kind.
type Event struct {
	Kind EventKind
	// Name of the resolved spell for SpellResolved.
	Name string
	// Card is the subject's identity, if any.
	Card ID
	// Subject is a copy of the subject card for events whose subject may have
	// already left the battlefield (CreatureDied).
	Subject *Card
	Phase   Phase
	Player  Player
	Amount  int
	// Note carries the counter kind for CounterAdded and the payload of Custom.
	Note string
}

// HasSubject reports whether the event is about a specific card.
func (e Event) HasSubject() bool {
	switch e.Kind {
	case EventSpellResolved, EventCreatureDied, EventTargeted, EventCounterAdded, EventEnteredBattlefield:
		return true
	}
	return false
}

func (e Event) String() string {
	switch e.Kind {
	case EventSpellResolved:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Name)
	case EventPhaseChanged:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Phase)
	case EventCustom:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Note)
	case EventManaAdded:
		return fmt.Sprintf("%s(%s,%d)", e.Kind, e.Player, e.Amount)
	case EventTurnEnded:
		return string(e.Kind)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Card)
}

// SpellResolved is raised when a spell named name finishes resolving.
func SpellResolved(name string) Event {
	return Event{Kind: EventSpellResolved, Name: name}
}

// SpellResolvedCard is SpellResolved with the resolved card attached.
func SpellResolvedCard(card *Card) Event {
	return Event{Kind: EventSpellResolved, Name: card.Name, Card: card.ID, Subject: card, Player: card.Controller}
}

// CreatureDied is raised when card dies. The card is copied so triggers can
// inspect it after it left the battlefield.
func CreatureDied(card *Card) Event {
	return Event{Kind: EventCreatureDied, Card: card.ID, Subject: card.Clone(), Player: card.Controller}
}

// TurnEnded is raised at the end of each turn.
func TurnEnded() Event {
	return Event{Kind: EventTurnEnded}
}

// PhaseChange is raised when the game moves into phase.
func PhaseChange(phase Phase) Event {
	return Event{Kind: EventPhaseChanged, Phase: phase}
}

// Targeted is raised when the card id becomes the target of a spell or ability.
func Targeted(id ID) Event {
	return Event{Kind: EventTargeted, Card: id}
}

// ManaAdded is raised when mana is added to a player's pool.
func ManaAdded(player Player, amount int) Event {
	return Event{Kind: EventManaAdded, Player: player, Amount: amount}
}

// CounterAdded is raised when amount counters of kind land on the card id.
func CounterAdded(id ID, kind string, amount int) Event {
	return Event{Kind: EventCounterAdded, Card: id, Note: kind, Amount: amount}
}

// EnteredBattlefield is raised when card enters the battlefield.
func EnteredBattlefield(card *Card) Event {
	return Event{Kind: EventEnteredBattlefield, Card: card.ID, Subject: card, Player: card.Controller}
}

// Custom is a free-form event the orchestrator can raise.
func Custom(note string) Event {
	return Event{Kind: EventCustom, Note: note}
}
