package game

import "testing"

func TestParseCard(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		rank Rank
		suit Suit
	}{
		{"As", Ace, Spades},
		{"Td", Ten, Diamonds},
		{"2c", Two, Clubs},
		{"kh", King, Hearts},
		{"qS", Queen, Spades},
	}
	for _, tc := range cases {
		c, err := ParseCard(tc.in)
		if err != nil {
			t.Errorf("ParseCard(%q) returned error: %v", tc.in, err)
			continue
		}
		if c.Rank() != tc.rank {
			t.Errorf("ParseCard(%q).Rank() = %v, want %v", tc.in, c.Rank(), tc.rank)
		}
		if c.Suit() != tc.suit {
			t.Errorf("ParseCard(%q).Suit() = %v, want %v", tc.in, c.Suit(), tc.suit)
		}
	}
}

func TestParseCardInvalid(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "A", "Asd", "Xs", "Az", "1h"} {
		if _, err := ParseCard(s); err == nil {
			t.Errorf("ParseCard(%q) should fail", s)
		}
	}
}

func TestCardStringRoundTrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 52; i++ {
		c := Card(i)
		parsed, err := ParseCard(c.String())
		if err != nil {
			t.Fatalf("ParseCard(%q) failed: %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("round trip %q: got %d, want %d", c.String(), parsed, c)
		}
	}
}

func TestCardStrings(t *testing.T) {
	t.Parallel()

	got := CardStrings([]Card{MustCard("As"), MustCard("Td")})
	if len(got) != 2 || got[0] != "As" || got[1] != "Td" {
		t.Errorf("CardStrings = %v", got)
	}
}
