package strategy

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextRoundTrip(t *testing.T) {
	p := sampleProfile()

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, p))

	out := buf.String()
	assert.Contains(t, out, "# Generated with 5000 iterations")
	assert.Contains(t, out, "# Total information sets: 4")
	// most visited block comes first
	first := strings.Index(out, "AKs")
	last := strings.Index(out, "T9s")
	assert.Less(t, first, last)

	got, err := ReadText(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5000, got.Iterations)
	assert.Equal(t, p.Entries(), got.Entries())
}

func TestReadTextWithoutVisits(t *testing.T) {
	in := `# MCCFR Strategy File
InfoSet: P2:[P0:P][P1:P]AKs Pot:1.4
Strategy: 0.2 0.8

InfoSet: P3:[P0:P][P1:P][P2:F]72o Pot:1.4 Visits: 9
Strategy: 1 0
`
	p, err := ReadText(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, p.Len())
	assert.Zero(t, p.Iterations)

	e, ok := p.Get("P2:[P0:P][P1:P]AKs Pot:1.4")
	require.True(t, ok)
	assert.Zero(t, e.Visits)
	assert.Equal(t, []float64{0.2, 0.8}, e.Probabilities)

	e, ok = p.Get("P3:[P0:P][P1:P][P2:F]72o Pot:1.4")
	require.True(t, ok)
	assert.Equal(t, int64(9), e.Visits)
}

func TestReadTextMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"stray line", "hello\n"},
		{"missing strategy", "InfoSet: k Visits: 1\n"},
		{"blank between", "InfoSet: k\n\nStrategy: 1\n"},
		{"bad probability", "InfoSet: k\nStrategy: 0.5 x\n"},
		{"empty strategy", "InfoSet: k\nStrategy:\n"},
		{"bad visits", "InfoSet: k Visits: many\nStrategy: 1\n"},
		{"empty key", "InfoSet: \nStrategy: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadText(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestSaveLoadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "strategy.txt")
	p := sampleProfile()
	require.NoError(t, SaveText(path, p))

	got, err := LoadText(path)
	require.NoError(t, err)
	assert.Equal(t, p.Entries(), got.Entries())
}
