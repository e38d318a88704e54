package cards

import "strconv"

// ID identifies a card on the battlefield. NoID means the card has not
// entered play yet.
type ID uint64

// NoID is the identity of a card that is not on the battlefield.
const NoID ID = 0

func (id ID) String() string {
	if id == NoID {
		return "card#-"
	}
	return "card#" + strconv.FormatUint(uint64(id), 10)
}

// DelayedID identifies a scheduled delayed effect.
type DelayedID uint64

// IDAllocator hands out card identities from a single monotonic counter.
// A game owns exactly one allocator so identities never collide.
type IDAllocator struct {
	last ID
}

// Assign gives card a fresh identity if it has none and returns the card's
// identity. Cards that already have one keep it.
func (a *IDAllocator) Assign(card *Card) ID {
	if card.ID != NoID {
		return card.ID
	}
	a.last++
	card.ID = a.last
	return card.ID
}

// Last returns the most recently assigned identity.
func (a *IDAllocator) Last() ID {
	return a.last
}
