package game

import "fmt"

// Suit represents a card suit
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

func (s Suit) String() string {
	return [...]string{"c", "d", "h", "s"}[s]
}

// Rank represents a card rank, Two (2) through Ace (14)
type Rank uint8

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

var rankChars = map[Rank]byte{
	Two: '2', Three: '3', Four: '4', Five: '5', Six: '6', Seven: '7',
	Eight: '8', Nine: '9', Ten: 'T', Jack: 'J', Queen: 'Q', King: 'K', Ace: 'A',
}

func (r Rank) String() string {
	if c, ok := rankChars[r]; ok {
		return string(c)
	}
	return "?"
}

// Card encodes a single playing card as suit*13 + (rank-2)
type Card uint8

// NewCard creates a card from rank and suit
func NewCard(r Rank, s Suit) Card {
	return Card(uint8(s)*13 + uint8(r-Two))
}

// Rank returns the card's rank
func (c Card) Rank() Rank {
	return Rank(uint8(c)%13) + Two
}

// Suit returns the card's suit
func (c Card) Suit() Suit {
	return Suit(uint8(c) / 13)
}

// String renders the card in two-character notation, e.g. "As", "Td"
func (c Card) String() string {
	return c.Rank().String() + c.Suit().String()
}

// ParseCard parses two-character notation like "As" or "td"
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	rc := s[0]
	if rc >= 'a' && rc <= 'z' {
		rc -= 'a' - 'A'
	}
	var rank Rank
	found := false
	for r, c := range rankChars {
		if c == rc {
			rank = r
			found = true
			break
		}
	}
	if !found {
		return 0, fmt.Errorf("invalid card rank %q", s)
	}
	var suit Suit
	switch s[1] {
	case 'c', 'C':
		suit = Clubs
	case 'd', 'D':
		suit = Diamonds
	case 'h', 'H':
		suit = Hearts
	case 's', 'S':
		suit = Spades
	default:
		return 0, fmt.Errorf("invalid card suit %q", s)
	}
	return NewCard(rank, suit), nil
}

// MustCard parses a card or panics; for tests and fixtures
func MustCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// CardStrings renders a slice of cards to their two-character forms
func CardStrings(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
