package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRulesDefaults(t *testing.T) {
	t.Parallel()

	r, err := NewRules(0.4, 1.0)
	require.NoError(t, err)
	assert.Equal(t, [NumPlayers]float64{8, 8, 8, 8}, r.Stacks())
	assert.True(t, r.Fees().IsZero())

	stack, err := r.InitialStack(3)
	require.NoError(t, err)
	assert.Equal(t, 8.0, stack)

	_, err = r.InitialStack(4)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	_, err = r.InitialStack(-1)
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestNewRulesStacksInBigBlinds(t *testing.T) {
	t.Parallel()

	r, err := NewRules(1, 2, WithStacksBB(10, 5, 8, 8))
	require.NoError(t, err)
	assert.Equal(t, [NumPlayers]float64{20, 10, 16, 16}, r.Stacks())
}

func TestNewRulesValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sb   float64
		bb   float64
		opts []Option
	}{
		{"zero small blind", 0, 1, nil},
		{"negative big blind", 0.5, -1, nil},
		{"small blind not below big blind", 1, 1, nil},
		{"too few stacks", 0.5, 1, []Option{WithStacks(10, 10, 10)}},
		{"too many stacks", 0.5, 1, []Option{WithStacks(10, 10, 10, 10, 10)}},
		{"non-positive stack", 0.5, 1, []Option{WithStacks(10, 10, 0, 10)}},
		{"small blind seat short", 0.5, 1, []Option{WithStacks(0.25, 10, 10, 10)}},
		{"big blind seat short", 0.5, 1, []Option{WithStacks(10, 0.5, 10, 10)}},
		{"rake above one", 0.5, 1, []Option{WithFees(Fees{Rake: 1.5})}},
		{"negative jackpot fee", 0.5, 1, []Option{WithFees(Fees{JackpotFee: -0.1})}},
		{"payout above one", 0.5, 1, []Option{WithFees(Fees{JackpotPayoutPct: 2})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRules(tt.sb, tt.bb, tt.opts...)
			assert.Error(t, err)
		})
	}
}

func TestStakes(t *testing.T) {
	t.Parallel()

	fees, err := Stakes(0.5, 1.0)
	require.NoError(t, err)
	assert.Equal(t, Fees{Rake: 0.05, JackpotFee: 0.05, JackpotPayoutPct: 0.0005}, fees)

	fees, err = Stakes(1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, 0.02, fees.JackpotPayoutPct)

	_, err = Stakes(0.4, 1.0)
	assert.ErrorIs(t, err, ErrUnsupportedStakes)
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	for _, a := range []Action{Fold, AllIn, Deal} {
		got, ok := ParseAction(a.String())
		require.True(t, ok, a.String())
		assert.Equal(t, a, got)
	}
	_, ok := ParseAction("RAISE")
	assert.False(t, ok)
}
