package game

import (
	"math/rand"
	"testing"
)

func TestDeckDealsAllUnique(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewSource(1)))
	seen := make(map[Card]bool)
	for d.Remaining() > 0 {
		cards := d.DealHole(1)
		if len(cards) != 1 {
			t.Fatalf("deal returned %d cards", len(cards))
		}
		if seen[cards[0]] {
			t.Fatalf("card %s dealt twice", cards[0])
		}
		seen[cards[0]] = true
	}
	if len(seen) != 52 {
		t.Errorf("expected 52 unique cards, got %d", len(seen))
	}
}

func TestDeckDeterministicForSeed(t *testing.T) {
	t.Parallel()

	a := NewDeck(rand.New(rand.NewSource(42)))
	b := NewDeck(rand.New(rand.NewSource(42)))
	for i := 0; i < 52; i++ {
		ca := a.DealHole(1)[0]
		cb := b.DealHole(1)[0]
		if ca != cb {
			t.Fatalf("decks diverge at card %d: %s vs %s", i, ca, cb)
		}
	}
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()

	d := NewStackedDeck(MustCard("As"), MustCard("Kh"), MustCard("2c"))
	got := d.DealHole(3)
	want := []Card{MustCard("As"), MustCard("Kh"), MustCard("2c")}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("card %d = %s, want %s", i, got[i], want[i])
		}
	}
	if d.Remaining() != 49 {
		t.Errorf("remaining = %d, want 49", d.Remaining())
	}

	// The rest of the deck must still be the other 49 distinct cards
	seen := map[Card]bool{want[0]: true, want[1]: true, want[2]: true}
	for _, c := range d.DealBoard(49) {
		if seen[c] {
			t.Fatalf("card %s repeated", c)
		}
		seen[c] = true
	}
}

func TestDeckBurn(t *testing.T) {
	t.Parallel()

	d := NewStackedDeck(MustCard("As"), MustCard("Kh"), MustCard("2c"))
	d.Burn(1)
	if got := d.DealHole(1)[0]; got != MustCard("Kh") {
		t.Errorf("after burn got %s, want Kh", got)
	}
}
