package solver

import (
	"strconv"
	"strings"

	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/poker"
)

// InfoSetKey encodes what seat can observe at its decision point:
//
//	P2:[P0:P][P1:P]AKs Pot:1.4
//
// The blinds act last and see the status of every other seat; seats 2 and 3
// only see the seats before them. Status is F (folded), A (all in) or P
// (still to act). The hole cards are reduced to their 169-class name and the
// pot is printed with six significant digits.
func InfoSetKey(s *game.State, seat int) string {
	var b strings.Builder
	b.Grow(40)
	b.WriteByte('P')
	b.WriteString(strconv.Itoa(seat))
	b.WriteByte(':')

	for q := 0; q < game.NumPlayers; q++ {
		if q == seat || (seat > game.BigBlindSeat && q > seat) {
			continue
		}
		b.WriteString("[P")
		b.WriteString(strconv.Itoa(q))
		b.WriteByte(':')
		b.WriteByte(seatStatus(s, q))
		b.WriteByte(']')
	}

	if hole, ok := s.HoleCards(seat); ok {
		b.WriteString(poker.HoleClass(hole[0], hole[1]))
		b.WriteByte(' ')
	}

	b.WriteString("Pot:")
	b.WriteString(strconv.FormatFloat(s.Pot(), 'g', 6, 64))
	return b.String()
}

func seatStatus(s *game.State, seat int) byte {
	switch {
	case s.Folded(seat):
		return 'F'
	case s.AllIn(seat):
		return 'A'
	default:
		return 'P'
	}
}

// KeySeat extracts the acting seat from a key, returning -1 if the key is
// malformed.
func KeySeat(key string) int {
	if len(key) < 3 || key[0] != 'P' || key[2] != ':' {
		return -1
	}
	seat := int(key[1] - '0')
	if seat < 0 || seat >= game.NumPlayers {
		return -1
	}
	return seat
}

// KeyHoleClass extracts the hole class from a key, or "" if none is present.
func KeyHoleClass(key string) string {
	end := strings.LastIndex(key, " Pot:")
	if end < 0 {
		return ""
	}
	start := strings.LastIndexByte(key[:end], ']')
	if start < 0 {
		start = 2
	}
	return key[start+1 : end]
}
