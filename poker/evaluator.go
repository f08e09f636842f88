package poker

import (
	"errors"
	"fmt"
	"sort"
)

// Category is the class of a five-card poker hand, weakest first.
type Category uint8

const (
	HighCard Category = iota
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"High Card", "One Pair", "Two Pair", "Three of a Kind", "Straight",
	"Flush", "Full House", "Four of a Kind", "Straight Flush",
}

func (c Category) String() string {
	if int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

var (
	ErrInvalidCardCount = errors.New("invalid card count")
	ErrDuplicateCard    = errors.New("duplicate card")
)

// Score ranks a hand as its category followed by tiebreak ranks, most
// significant first. Unused trailing slots are zero. Scores compare
// lexicographically, and equal scores tie.
type Score [6]uint8

// Category returns the hand class encoded in the score.
func (s Score) Category() Category { return Category(s[0]) }

// Compare returns 1 if s beats o, -1 if o beats s and 0 on a tie.
func (s Score) Compare(o Score) int {
	for i := range s {
		switch {
		case s[i] > o[i]:
			return 1
		case s[i] < o[i]:
			return -1
		}
	}
	return 0
}

func (s Score) String() string {
	out := s.Category().String()
	for _, v := range s[1:] {
		if v == 0 {
			break
		}
		out += " " + Rank(v).String()
	}
	return out
}

// Evaluate scores the best five-card hand that can be made from two hole
// cards and five community cards by checking all 21 subsets.
func Evaluate(hole, board []Card) (Score, error) {
	if len(hole) != 2 {
		return Score{}, fmt.Errorf("%w: want 2 hole cards, got %d", ErrInvalidCardCount, len(hole))
	}
	if len(board) != 5 {
		return Score{}, fmt.Errorf("%w: want 5 community cards, got %d", ErrInvalidCardCount, len(board))
	}

	var all [7]Card
	copy(all[:2], hole)
	copy(all[2:], board)

	var seen uint64
	for _, c := range all {
		if c >= 52 {
			return Score{}, fmt.Errorf("%w: %d", ErrInvalidRank, c)
		}
		bit := uint64(1) << c
		if seen&bit != 0 {
			return Score{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen |= bit
	}

	var best Score
	var five [5]Card
	for skipA := 0; skipA < 7; skipA++ {
		for skipB := skipA + 1; skipB < 7; skipB++ {
			n := 0
			for i, c := range all {
				if i != skipA && i != skipB {
					five[n] = c
					n++
				}
			}
			if s := EvaluateFive(five); s.Compare(best) > 0 {
				best = s
			}
		}
	}
	return best, nil
}

// EvaluateFive scores exactly five cards.
func EvaluateFive(cards [5]Card) Score {
	var counts [Ace + 1]uint8
	flush := true
	for i, c := range cards {
		counts[c.Rank()]++
		if i > 0 && c.Suit() != cards[0].Suit() {
			flush = false
		}
	}

	type group struct {
		rank  Rank
		count uint8
	}
	groups := make([]group, 0, 5)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, group{r, counts[r]})
		}
	}
	// Larger groups first, then higher rank.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})

	straightHigh := Rank(0)
	if len(groups) == 5 {
		hi, lo := groups[0].rank, groups[4].rank
		switch {
		case hi-lo == 4:
			straightHigh = hi
		case hi == Ace && groups[1].rank == Five:
			straightHigh = Five
		}
	}

	var s Score
	switch {
	case straightHigh != 0 && flush:
		s[0], s[1] = uint8(StraightFlush), uint8(straightHigh)
		return s
	case groups[0].count == 4:
		s[0] = uint8(FourOfAKind)
	case groups[0].count == 3 && groups[1].count == 2:
		s[0] = uint8(FullHouse)
	case flush:
		s[0] = uint8(Flush)
	case straightHigh != 0:
		s[0], s[1] = uint8(Straight), uint8(straightHigh)
		return s
	case groups[0].count == 3:
		s[0] = uint8(ThreeOfAKind)
	case groups[0].count == 2 && groups[1].count == 2:
		s[0] = uint8(TwoPair)
	case groups[0].count == 2:
		s[0] = uint8(OnePair)
	default:
		s[0] = uint8(HighCard)
	}
	for i, g := range groups {
		s[i+1] = uint8(g.rank)
	}
	return s
}
