package game

import "math/rand"

// Deck is a shuffled 52-card deck. The shuffle is a Fisher-Yates driven by the
// caller-provided RNG so tables can use a crypto-random seed in production and
// a fixed seed in tests. Dealt cards are never re-exposed and undealt cards
// are not observable.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck creates a full deck shuffled with rng
func NewDeck(rng *rand.Rand) *Deck {
	cards := make([]Card, 52)
	for i := range cards {
		cards[i] = Card(i)
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	return &Deck{cards: cards}
}

// NewStackedDeck creates a deck that deals the given cards in order, for
// deterministic tests. The remaining cards follow in index order.
func NewStackedDeck(top ...Card) *Deck {
	used := make(map[Card]bool, len(top))
	cards := make([]Card, 0, 52)
	cards = append(cards, top...)
	for _, c := range top {
		used[c] = true
	}
	for i := 0; i < 52; i++ {
		if !used[Card(i)] {
			cards = append(cards, Card(i))
		}
	}
	return &Deck{cards: cards}
}

// DealHole deals n hole cards
func (d *Deck) DealHole(n int) []Card {
	return d.deal(n)
}

// DealBoard deals n community cards
func (d *Deck) DealBoard(n int) []Card {
	return d.deal(n)
}

// Burn discards n cards
func (d *Deck) Burn(n int) {
	d.next += n
	if d.next > len(d.cards) {
		d.next = len(d.cards)
	}
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

func (d *Deck) deal(n int) []Card {
	if d.next+n > len(d.cards) {
		n = len(d.cards) - d.next
	}
	out := make([]Card, n)
	copy(out, d.cards[d.next:d.next+n])
	d.next += n
	return out
}
