package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnsupportedStakes is returned by Stakes for blind pairs missing from the
// fee schedule.
var ErrUnsupportedStakes = errors.New("unsupported stakes")

// Fees are the house charges applied when a hand is settled. Rake and
// JackpotFee are chip amounts taken from the pot; JackpotPayoutPct is the
// share of the pot paid back from the jackpot at showdown.
type Fees struct {
	Rake             float64
	JackpotFee       float64
	JackpotPayoutPct float64
}

// IsZero reports whether no fees are charged.
func (f Fees) IsZero() bool {
	return f.Rake == 0 && f.JackpotFee == 0 && f.JackpotPayoutPct == 0
}

type stakesLevel struct {
	smallBlind, bigBlind float64
	fees                 Fees
}

var stakesTable = []stakesLevel{
	{0.05, 0.10, Fees{0.02, 0.02, 0.00005}},
	{0.10, 0.20, Fees{0.03, 0.03, 0.0001}},
	{0.10, 0.25, Fees{0.04, 0.04, 0.0001}},
	{0.20, 0.40, Fees{0.05, 0.05, 0.0002}},
	{0.25, 0.50, Fees{0.06, 0.06, 0.0002}},
	{0.50, 1.00, Fees{0.05, 0.05, 0.0005}},
	{1, 2, Fees{0.05, 0.05, 0.001}},
	{2, 4, Fees{0.05, 0.05, 0.0015}},
	{5, 10, Fees{0.05, 0.05, 0.0025}},
	{10, 20, Fees{0.05, 0.05, 0.005}},
	{25, 50, Fees{0.05, 0.05, 0.0075}},
	{50, 100, Fees{0.05, 0.05, 0.01}},
	{100, 200, Fees{0.025, 0.025, 0.01}},
	{200, 400, Fees{0.025, 0.025, 0.0125}},
	{500, 1000, Fees{0.025, 0.025, 0.015}},
	{1000, 2000, Fees{0.025, 0.025, 0.02}},
}

const stakesEpsilon = 1e-9

// Stakes looks up the fee schedule for a blind level.
func Stakes(smallBlind, bigBlind float64) (Fees, error) {
	for _, lvl := range stakesTable {
		if math.Abs(lvl.smallBlind-smallBlind) < stakesEpsilon && math.Abs(lvl.bigBlind-bigBlind) < stakesEpsilon {
			return lvl.fees, nil
		}
	}
	return Fees{}, fmt.Errorf("%w: %g/%g", ErrUnsupportedStakes, smallBlind, bigBlind)
}
