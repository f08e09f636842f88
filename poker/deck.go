package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when drawing from an empty deck.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a shuffled 52-card deck. Cards are drawn from the tail, so a card
// is never handed out twice until Reset.
type Deck struct {
	cards [52]Card
	n     int
}

// NewDeck returns a deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{}
	d.Reset(rng)
	return d
}

// Reset restores all 52 cards and reshuffles them with Fisher-Yates.
func (d *Deck) Reset(rng *rand.Rand) {
	for i := range d.cards {
		d.cards[i] = Card(i)
	}
	d.n = len(d.cards)
	for i := d.n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last card.
func (d *Deck) Draw() (Card, error) {
	if d.n == 0 {
		return 0, ErrDeckExhausted
	}
	d.n--
	return d.cards[d.n], nil
}

// DrawN draws n cards in draw order. On failure no cards are removed.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > d.n {
		return nil, ErrDeckExhausted
	}
	out := make([]Card, n)
	for i := range out {
		d.n--
		out[i] = d.cards[d.n]
	}
	return out, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return d.n
}

// StackedDeck returns a deck whose first draws are top, in order. The
// remaining cards follow in index order. Used to replay fixed deals.
func StackedDeck(top ...Card) (*Deck, error) {
	if len(top) > 52 {
		return nil, fmt.Errorf("%w: %d cards", ErrInvalidCardCount, len(top))
	}
	var used uint64
	for _, c := range top {
		if c >= 52 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidRank, c)
		}
		if used&(1<<c) != 0 {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		used |= 1 << c
	}

	d := &Deck{n: 52}
	i := 0
	for c := Card(0); c < 52; c++ {
		if used&(1<<c) == 0 {
			d.cards[i] = c
			i++
		}
	}
	for j := len(top) - 1; j >= 0; j-- {
		d.cards[i] = top[j]
		i++
	}
	return d, nil
}
