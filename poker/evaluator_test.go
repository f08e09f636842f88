package poker

import (
	rand "math/rand/v2"
	"testing"

	ph "github.com/paulhankin/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustEvaluate(t *testing.T, hole, board string) Score {
	t.Helper()
	s, err := Evaluate(MustParseCards(hole), MustParseCards(board))
	require.NoError(t, err)
	return s
}

func TestEvaluateCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hole  string
		board string
		want  Category
	}{
		{"straight flush", "9h8h", "7h6h5h2c2d", StraightFlush},
		{"four of a kind", "AsAh", "AdAc2c3d4h", FourOfAKind},
		{"full house", "KsKh", "Kd2c2d7h9s", FullHouse},
		{"flush", "Ah9h", "6h4h2h8c8d", Flush},
		{"straight", "9s8h", "7d6c5h2c2d", Straight},
		{"wheel", "As2h", "3d4c5hKcQd", Straight},
		{"three of a kind", "QsQh", "Qd2c5h8c9d", ThreeOfAKind},
		{"two pair", "JsJh", "4d4c8hAcKd", TwoPair},
		{"one pair", "TsTh", "2d4c8hAcKd", OnePair},
		{"high card", "As9h", "2d4c7hJcKd", HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := mustEvaluate(t, tt.hole, tt.board)
			assert.Equal(t, tt.want, s.Category(), s.String())
		})
	}
}

func TestCategoryOrdering(t *testing.T) {
	t.Parallel()

	hands := []struct{ hole, board string }{
		{"As9h", "2d4c7hJcKd"}, // high card
		{"TsTh", "2d4c8hAcKd"}, // pair
		{"JsJh", "4d4c8hAcKd"}, // two pair
		{"QsQh", "Qd2c5h8c9d"}, // trips
		{"9s8h", "7d6c5h2c2d"}, // straight
		{"Ah9h", "6h4h2h8c8d"}, // flush
		{"KsKh", "Kd2c2d7h9s"}, // full house
		{"AsAh", "AdAc2c3d4h"}, // quads
		{"9h8h", "7h6h5h2c2d"}, // straight flush
	}
	for i := 1; i < len(hands); i++ {
		lower := mustEvaluate(t, hands[i-1].hole, hands[i-1].board)
		higher := mustEvaluate(t, hands[i].hole, hands[i].board)
		assert.Equal(t, 1, higher.Compare(lower), "%s should beat %s", higher, lower)
		assert.Equal(t, -1, lower.Compare(higher))
	}
}

func TestWheelLosesToBroadway(t *testing.T) {
	t.Parallel()

	wheel := mustEvaluate(t, "As2h", "3d4c5hKcQd")
	broadway := mustEvaluate(t, "AsKh", "QdJcTh2c3d")
	sixHigh := mustEvaluate(t, "6s2h", "3d4c5hKcQd")

	assert.Equal(t, Rank(Five), Rank(wheel[1]), "wheel plays as five high")
	assert.Equal(t, 1, broadway.Compare(wheel))
	assert.Equal(t, 1, sixHigh.Compare(wheel))
}

func TestKickersAndTies(t *testing.T) {
	t.Parallel()

	board := "AhKd7c4s2h"
	a := mustEvaluate(t, "AsQc", board)
	b := mustEvaluate(t, "AcJd", board)
	assert.Equal(t, 1, a.Compare(b), "queen kicker beats jack kicker")

	// Both hands play the board.
	c := mustEvaluate(t, "3c3d", "AhAdAsKhKd")
	d := mustEvaluate(t, "4c4d", "AhAdAsKhKd")
	assert.Equal(t, 0, c.Compare(d))
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := Evaluate(MustParseCards("As"), MustParseCards("2d4c7hJcKd"))
	assert.ErrorIs(t, err, ErrInvalidCardCount)

	_, err = Evaluate(MustParseCards("AsKs"), MustParseCards("2d4c7hJc"))
	assert.ErrorIs(t, err, ErrInvalidCardCount)

	_, err = Evaluate(MustParseCards("AsKs"), MustParseCards("As4c7hJcKd"))
	assert.ErrorIs(t, err, ErrDuplicateCard)
}

func toOracle(c Card) ph.Card {
	var s ph.Suit
	switch c.Suit() {
	case Clubs:
		s = ph.Club
	case Diamonds:
		s = ph.Diamond
	case Hearts:
		s = ph.Heart
	default:
		s = ph.Spade
	}
	r := ph.Rank(c.Rank())
	if c.Rank() == Ace {
		r = ph.Rank(1)
	}
	out, err := ph.MakeCard(s, r)
	if err != nil {
		panic(err)
	}
	return out
}

func oracleScore(cards []Card) int16 {
	var a7 [7]ph.Card
	for i, c := range cards {
		a7[i] = toOracle(c)
	}
	return ph.Eval7(&a7)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Random showdowns are checked against an independent evaluator.
func TestEvaluateMatchesOracle(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(42, 1337))
	for i := 0; i < 2000; i++ {
		d := NewDeck(rng)
		cards, err := d.DrawN(9)
		require.NoError(t, err)
		board := cards[4:]

		a, err := Evaluate(cards[0:2], board)
		require.NoError(t, err)
		b, err := Evaluate(cards[2:4], board)
		require.NoError(t, err)

		oa := oracleScore(append(append([]Card{}, cards[0:2]...), board...))
		ob := oracleScore(append(append([]Card{}, cards[2:4]...), board...))

		require.Equal(t, sign(int(oa)-int(ob)), a.Compare(b),
			"hole %s vs %s on %s", FormatCards(cards[0:2]), FormatCards(cards[2:4]), FormatCards(board))
	}
}
