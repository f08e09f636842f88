package poker

import (
	"errors"
	"fmt"
	"strings"
)

// Suit is one of the four card suits.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

// String returns the single-letter suit used in card notation.
func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// Symbol returns the unicode glyph for the suit.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Rank is a card rank from Two (2) through Ace (14).
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

const rankChars = "23456789TJQKA"

// String returns the single-character rank, using "T" for ten.
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Valid reports whether r is between Two and Ace.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

var (
	ErrInvalidRank = errors.New("invalid rank")
	ErrInvalidSuit = errors.New("invalid suit")
)

// Card packs a rank and suit into a single byte. The packing orders cards by
// rank first and suit second, so integer comparison matches card order.
type Card uint8

// NewCard returns the card for rank and suit, failing on out-of-range values.
func NewCard(rank Rank, suit Suit) (Card, error) {
	if !rank.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRank, rank)
	}
	if suit > Spades {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSuit, suit)
	}
	return Card(uint8(rank-Two)*4 + uint8(suit)), nil
}

// MustCard is NewCard for constant inputs.
func MustCard(rank Rank, suit Suit) Card {
	c, err := NewCard(rank, suit)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) Rank() Rank { return Rank(c/4) + Two }
func (c Card) Suit() Suit { return Suit(c % 4) }

// Less orders cards by rank, then suit.
func (c Card) Less(o Card) bool { return c < o }

func (c Card) String() string {
	return c.Rank().String() + c.Suit().String()
}

// ParseCard parses two-character notation such as "As" or "Td". Ten may also
// be written as "10".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid card %q", s)
	}
	ri := strings.IndexByte(rankChars, upper(s[0]))
	if ri < 0 {
		return 0, fmt.Errorf("%w in card %q", ErrInvalidRank, s)
	}
	si := strings.IndexByte(suitChars, lower(s[1]))
	if si < 0 {
		return 0, fmt.Errorf("%w in card %q", ErrInvalidSuit, s)
	}
	return NewCard(Rank(ri)+Two, Suit(si))
}

// ParseCards parses a whitespace separated or concatenated list of cards.
func ParseCards(s string) ([]Card, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.ReplaceAll(s, "10", "T")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card list %q", s)
	}
	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		c, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards panics if s is not a valid card list. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards renders cards separated by spaces.
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
