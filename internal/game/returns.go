package game

import (
	"fmt"
	"math"

	"github.com/lox/aofsolver/poker"
)

// ZeroSumTolerance bounds the drift allowed between the sum of payoffs and
// the house take before a settlement is reported.
const ZeroSumTolerance = 1e-6

// Returns settles a finished hand and reports each seat's net result. A seat
// that wins uncontested collects the pot less rake and jackpot fee. At
// showdown every side pot is split between the best eligible hands, with the
// house charges and jackpot payout applied to the main pot.
func (s *State) Returns() ([NumPlayers]float64, error) {
	var out [NumPlayers]float64
	if !s.over {
		return out, ErrHandNotComplete
	}

	fees := s.rules.fees
	var expected float64

	if s.ActiveCount() == 1 {
		winner := 0
		for seat := range NumPlayers {
			if !s.folded[seat] {
				winner = seat
			}
		}
		out[winner] = s.pot - fees.Rake - fees.JackpotFee
		expected = -(fees.Rake + fees.JackpotFee)
	} else {
		scores, err := s.showdownScores()
		if err != nil {
			return out, err
		}
		payout := s.pot * fees.JackpotPayoutPct
		expected = payout - fees.Rake - fees.JackpotFee
		for i, pot := range s.sidePots {
			amount := pot.Amount
			if i == 0 {
				amount += payout - fees.Rake - fees.JackpotFee
			}
			winners := bestHands(pot.Eligible, scores)
			share := amount / float64(len(winners))
			for _, seat := range winners {
				out[seat] += share
			}
		}
	}

	sum := 0.0
	for seat := range NumPlayers {
		out[seat] -= s.contrib[seat]
		sum += out[seat]
	}
	if math.Abs(sum-expected) > ZeroSumTolerance {
		s.rules.zeroSumViolations.Add(1)
		s.rules.logger.Warn().
			Float64("sum", sum).
			Float64("expected", expected).
			Float64("pot", s.pot).
			Floats64("returns", out[:]).
			Msg("payoffs do not balance")
	}
	return out, nil
}

func (s *State) showdownScores() ([NumPlayers]poker.Score, error) {
	var scores [NumPlayers]poker.Score
	for seat := range NumPlayers {
		if s.folded[seat] {
			continue
		}
		hole, _ := s.HoleCards(seat)
		score, err := poker.Evaluate(hole[:], s.board[:])
		if err != nil {
			return scores, fmt.Errorf("evaluate seat %d: %w", seat, err)
		}
		scores[seat] = score
	}
	return scores, nil
}

func bestHands(eligible []int, scores [NumPlayers]poker.Score) []int {
	var winners []int
	var best poker.Score
	for _, seat := range eligible {
		switch cmp := scores[seat].Compare(best); {
		case len(winners) == 0 || cmp > 0:
			best = scores[seat]
			winners = append(winners[:0], seat)
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	return winners
}
