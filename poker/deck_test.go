package poker

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckDealsEveryCardOnce(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(1, 2)))
	require.Equal(t, 52, d.Remaining())

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		c, err := d.Draw()
		require.NoError(t, err)
		require.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
	assert.Equal(t, 0, d.Remaining())

	_, err := d.Draw()
	assert.ErrorIs(t, err, ErrDeckExhausted)
}

func TestDeckDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	a := NewDeck(rand.New(rand.NewPCG(7, 7)))
	b := NewDeck(rand.New(rand.NewPCG(7, 7)))

	ca, err := a.DrawN(10)
	require.NoError(t, err)
	cb, err := b.DrawN(10)
	require.NoError(t, err)
	assert.Equal(t, ca, cb)
}

func TestDeckDrawNExhausted(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(3, 4)))
	_, err := d.DrawN(50)
	require.NoError(t, err)

	_, err = d.DrawN(3)
	assert.ErrorIs(t, err, ErrDeckExhausted)
	assert.Equal(t, 2, d.Remaining(), "failed draw must not consume cards")

	d.Reset(rand.New(rand.NewPCG(3, 4)))
	assert.Equal(t, 52, d.Remaining())
}

func TestDeckValueCopy(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(9, 9)))
	clone := *d

	first, err := d.Draw()
	require.NoError(t, err)
	again, err := clone.Draw()
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 51, d.Remaining())
	assert.Equal(t, 51, clone.Remaining())
}

func TestStackedDeck(t *testing.T) {
	t.Parallel()

	top := MustParseCards("As Kd 2c")
	d, err := StackedDeck(top...)
	require.NoError(t, err)

	got, err := d.DrawN(3)
	require.NoError(t, err)
	assert.Equal(t, top, got)
	assert.Equal(t, 49, d.Remaining())

	_, err = StackedDeck(MustParseCards("As As")...)
	assert.ErrorIs(t, err, ErrDuplicateCard)
}
