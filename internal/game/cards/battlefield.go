package cards

// Battlefield is the registry of cards in play, keyed by identity. Scans
// follow insertion order so trigger batches are deterministic.
type Battlefield struct {
	cards map[ID]*Card
	order []ID
}

// NewBattlefield creates an empty registry.
func NewBattlefield() *Battlefield {
	return &Battlefield{cards: make(map[ID]*Card)}
}

// Put inserts card. Cards without identity are rejected.
func (b *Battlefield) Put(card *Card) bool {
	if card == nil || card.ID == NoID {
		return false
	}
	if _, ok := b.cards[card.ID]; !ok {
		b.order = append(b.order, card.ID)
	}
	b.cards[card.ID] = card
	return true
}

// Get looks a card up.
func (b *Battlefield) Get(id ID) (*Card, bool) {
	c, ok := b.cards[id]
	return c, ok
}

// Remove takes a card off the battlefield and returns it.
func (b *Battlefield) Remove(id ID) (*Card, bool) {
	c, ok := b.cards[id]
	if !ok {
		return nil, false
	}
	delete(b.cards, id)
	for i, have := range b.order {
		if have == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return c, true
}

// Len returns the number of cards in play.
func (b *Battlefield) Len() int {
	return len(b.order)
}

// Cards returns the cards in play in insertion order.
func (b *Battlefield) Cards() []*Card {
	out := make([]*Card, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.cards[id])
	}
	return out
}

// Creatures returns the creatures player controls.
func (b *Battlefield) Creatures(player Player) []*Card {
	var out []*Card
	for _, id := range b.order {
		c := b.cards[id]
		if c.IsCreature() && c.Controller == player {
			out = append(out, c)
		}
	}
	return out
}

// Attached returns the cards attached to id.
func (b *Battlefield) Attached(id ID) []*Card {
	var out []*Card
	for _, have := range b.order {
		if c := b.cards[have]; c.AttachedTo == id {
			out = append(out, c)
		}
	}
	return out
}
