package game

import "slices"

// SidePot is one layer of the pot together with the seats that can win it.
// The layers of a finished hand add up to exactly State.Pot when summed with
// sumPots.
type SidePot struct {
	Amount   float64
	Eligible []int
}

// buildSidePots layers the pot by distinct contribution levels. Every seat
// that put chips in pays into each layer up to its own contribution, folded
// seats included, but only seats still in the hand are eligible to win. A
// layer nobody can win is folded into the layer below it. The main pot takes
// whatever total leaves after the upper layers, so rounding in the layer
// arithmetic never changes the sum.
func buildSidePots(contrib [NumPlayers]float64, folded [NumPlayers]bool, total float64) []SidePot {
	levels := make([]float64, 0, NumPlayers)
	for _, c := range contrib {
		if c > 0 && !slices.Contains(levels, c) {
			levels = append(levels, c)
		}
	}
	slices.Sort(levels)

	pots := make([]SidePot, 0, len(levels))
	prev := 0.0
	carry := 0.0
	for _, level := range levels {
		contributors := 0
		var eligible []int
		for seat, c := range contrib {
			if c >= level {
				contributors++
				if !folded[seat] {
					eligible = append(eligible, seat)
				}
			}
		}
		amount := (level-prev)*float64(contributors) + carry
		carry = 0
		prev = level

		switch {
		case len(eligible) > 0:
			pots = append(pots, SidePot{Amount: amount, Eligible: eligible})
		case len(pots) > 0:
			pots[len(pots)-1].Amount += amount
		default:
			carry = amount
		}
	}
	if carry > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += carry
	}
	if len(pots) > 0 {
		pots[0].Amount = total - sumPots(pots[1:])
	}
	return pots
}

// sumPots adds the layers top down, the order buildSidePots uses to size
// the main pot.
func sumPots(pots []SidePot) float64 {
	total := 0.0
	for i := len(pots) - 1; i >= 0; i-- {
		total += pots[i].Amount
	}
	return total
}
