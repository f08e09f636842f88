package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() *Profile {
	p := NewProfile(5000)
	p.Set("P2:[P0:P][P1:P]AKs Pot:1.4", 120, []float64{0.1, 0.9})
	p.Set("P3:[P0:P][P1:P][P2:F]72o Pot:1.4", 40, []float64{0.95, 0.05})
	p.Set("P0:[P1:P][P2:A][P3:F]AA Pot:9.4", 40, []float64{0, 1})
	p.Set("P1:[P0:F][P2:F][P3:F]T9s Pot:1.4", 2, []float64{0.5, 0.5})
	return p
}

func TestProfileSetCopiesProbabilities(t *testing.T) {
	p := NewProfile(1)
	probs := []float64{0.25, 0.75}
	p.Set("k", 3, probs)
	probs[0] = 1

	e, ok := p.Get("k")
	require.True(t, ok)
	assert.Equal(t, []float64{0.25, 0.75}, e.Probabilities)
	assert.Equal(t, int64(3), e.Visits)
}

func TestProfileByVisits(t *testing.T) {
	p := sampleProfile()

	all := p.ByVisits(0)
	require.Len(t, all, 4)
	assert.Equal(t, int64(120), all[0].Visits)
	// equal visit counts fall back to key order
	assert.Equal(t, "P0:[P1:P][P2:A][P3:F]AA Pot:9.4", all[1].Key)
	assert.Equal(t, "P3:[P0:P][P1:P][P2:F]72o Pot:1.4", all[2].Key)
	assert.Equal(t, int64(2), all[3].Visits)

	assert.Len(t, p.ByVisits(40), 3)
	assert.Empty(t, p.ByVisits(1000))
}

func TestProfileFind(t *testing.T) {
	p := sampleProfile()

	found := p.Find("AKs")
	require.Len(t, found, 1)
	assert.Equal(t, "P2:[P0:P][P1:P]AKs Pot:1.4", found[0].Key)

	assert.Len(t, p.Find("Pot:1.4"), 3)
	assert.Empty(t, p.Find("QQ"))
}

func TestProfileStats(t *testing.T) {
	s := sampleProfile().Stats()
	assert.Equal(t, 4, s.InfoSets)
	assert.Equal(t, int64(202), s.TotalVisits)
	assert.Equal(t, int64(120), s.MaxVisits)
	assert.Equal(t, int64(2), s.MinVisits)
	assert.InDelta(t, 50.5, s.MeanVisits, 1e-9)
	assert.Greater(t, s.StdDev, 0.0)

	empty := NewProfile(0).Stats()
	assert.Zero(t, empty.InfoSets)
	assert.Zero(t, empty.MinVisits)

	single := NewProfile(0)
	single.Set("k", 7, []float64{1})
	st := single.Stats()
	assert.Equal(t, 7.0, st.MeanVisits)
	assert.Zero(t, st.StdDev)
}
