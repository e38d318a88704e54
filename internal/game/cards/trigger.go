package cards

// FilterKind selects which event subjects a trigger reacts to.
type FilterKind string

const (
	// FilterSelf matches events about the card carrying the trigger.
	FilterSelf FilterKind = "SELF"
	// FilterControllerCreatures matches creatures controlled by the same player.
	FilterControllerCreatures FilterKind = "CONTROLLER_CREATURES"
	// FilterAny matches every subject.
	FilterAny FilterKind = "ANY"
	// FilterExactID matches a single card identity.
	FilterExactID FilterKind = "EXACT_ID"
	// FilterCreatureType matches creatures with a creature type.
	FilterCreatureType FilterKind = "CREATURE_TYPE"
)

// Valid reports whether k is a known filter kind.
func (k FilterKind) Valid() bool {
	switch k {
	case FilterSelf, FilterControllerCreatures, FilterAny, FilterExactID, FilterCreatureType:
		return true
	}
	return false
}

// TargetFilter narrows a trigger to particular subjects.
type TargetFilter struct {
	Kind         FilterKind
	ID           ID
	CreatureType string
}

// Trigger is the condition under which an ability fires.
type Trigger struct {
	Event  EventKind
	Filter TargetFilter
	// Phase restricts PhaseChanged triggers; empty means every phase.
	Phase Phase
	// Note restricts Custom triggers; empty means every custom event.
	Note string
}

// When builds a trigger on the given event with an Any filter.
func When(kind EventKind) Trigger {
	return Trigger{Event: kind, Filter: TargetFilter{Kind: FilterAny}}
}

// Self narrows the trigger to its own card.
func (t Trigger) Self() Trigger {
	t.Filter = TargetFilter{Kind: FilterSelf}
	return t
}

// ControllerCreatures narrows the trigger to creatures of the same controller.
func (t Trigger) ControllerCreatures() Trigger {
	t.Filter = TargetFilter{Kind: FilterControllerCreatures}
	return t
}

// Exact narrows the trigger to one card.
func (t Trigger) Exact(id ID) Trigger {
	t.Filter = TargetFilter{Kind: FilterExactID, ID: id}
	return t
}

// OfType narrows the trigger to creatures of a creature type.
func (t Trigger) OfType(creatureType string) Trigger {
	t.Filter = TargetFilter{Kind: FilterCreatureType, CreatureType: creatureType}
	return t
}

// InPhase narrows a PhaseChanged trigger to one phase.
func (t Trigger) InPhase(p Phase) Trigger {
	t.Phase = p
	return t
}

// Matches reports whether the trigger, carried by owner, fires for ev.
// subject is the card the event is about, or nil when unknown.
func (t Trigger) Matches(owner *Card, ev Event, subject *Card) bool {
	if t.Event != ev.Kind {
		return false
	}
	if ev.Kind == EventPhaseChanged && t.Phase != "" && t.Phase != ev.Phase {
		return false
	}
	if ev.Kind == EventCustom && t.Note != "" && t.Note != ev.Note {
		return false
	}
	if !ev.HasSubject() {
		return true
	}

	switch t.Filter.Kind {
	case FilterAny, "":
		return true
	case FilterSelf:
		if ev.Kind == EventSpellResolved && ev.Card == NoID {
			return ev.Name == owner.Name
		}
		return owner.ID != NoID && ev.Card == owner.ID
	case FilterExactID:
		return t.Filter.ID != NoID && ev.Card == t.Filter.ID
	case FilterControllerCreatures:
		return subject != nil && subject.IsCreature() && subject.Controller == owner.Controller
	case FilterCreatureType:
		return subject != nil && subject.IsCreature() && subject.HasSubtype(t.Filter.CreatureType)
	default:
		return false
	}
}
