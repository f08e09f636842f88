package strategy

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "strategy.db")
	p := sampleProfile()

	require.NoError(t, SaveSQLite(ctx, path, p))
	got, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 5000, got.Iterations)
	assert.Equal(t, p.Entries(), got.Entries())
}

func TestSQLiteSaveReplacesContents(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "strategy.db")
	require.NoError(t, SaveSQLite(ctx, path, sampleProfile()))

	smaller := NewProfile(10)
	smaller.Set("P2:[P0:P][P1:P]AA Pot:1.4", 1, []float64{0, 1})
	require.NoError(t, SaveSQLite(ctx, path, smaller))

	got, err := LoadSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Iterations)
	assert.Equal(t, smaller.Entries(), got.Entries())
}

func TestLoadSQLiteMissingFile(t *testing.T) {
	_, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestDecodeProbsRejectsOddLength(t *testing.T) {
	_, err := decodeProbs([]byte{1, 2, 3})
	assert.Error(t, err)
	_, err = decodeProbs(nil)
	assert.Error(t, err)

	probs, err := decodeProbs(encodeProbs([]float64{0.25, 0.75}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, probs)
}
