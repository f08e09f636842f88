package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/aofsolver/internal/config"
	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/sdk/solver/runtime"
	"github.com/lox/aofsolver/sdk/solver/strategy"
)

func fixedProfile() *strategy.Profile {
	p := strategy.NewProfile(100)
	p.Set("P0:[P1:P][P2:P][P3:P]AA Pot:1.4", 10, []float64{0, 1})
	p.Set("P0:[P1:P][P2:P][P3:P]72o Pot:1.4", 20, []float64{1, 0})
	p.Set("P1:[P0:A][P2:F][P3:F]AKs Pot:9.4", 5, []float64{0.4, 0.6})
	p.Set("P2:[P0:P][P1:P]AKs Pot:1.4", 8, []float64{0.2, 0.8})
	return p
}

func TestSummariseSeats(t *testing.T) {
	t.Parallel()

	seats := summariseSeats(fixedProfile(), game.AllIn)
	require.Len(t, seats, game.NumPlayers)

	assert.Equal(t, 2, seats[0].InfoSets)
	assert.Equal(t, int64(30), seats[0].Visits)
	assert.InDelta(t, 0.5, seats[0].AvgFreq, 1e-12)
	assert.Equal(t, "P0:[P1:P][P2:P][P3:P]AA Pot:1.4", seats[0].Highest.Key)
	assert.Equal(t, "P0:[P1:P][P2:P][P3:P]72o Pot:1.4", seats[0].Lowest.Key)

	assert.Equal(t, 1, seats[1].InfoSets)
	assert.InDelta(t, 0.6, seats[1].AvgFreq, 1e-12)
	assert.InDelta(t, 0.8, seats[2].AvgFreq, 1e-12)
	assert.Zero(t, seats[3].InfoSets)

	folds := summariseSeats(fixedProfile(), game.Fold)
	assert.Equal(t, "P0:[P1:P][P2:P][P3:P]72o Pot:1.4", folds[0].Highest.Key)
	assert.InDelta(t, 0.5, folds[0].AvgFreq, 1e-12)
}

func TestSummarisePatterns(t *testing.T) {
	t.Parallel()

	p := summarisePatterns(fixedProfile(), game.AllIn)
	assert.Equal(t, [3]int{1, 2, 1}, p.Situations)
	assert.InDelta(t, 1.0, p.ShapeFreq[shapePair], 1e-12)
	assert.InDelta(t, 0.7, p.ShapeFreq[shapeSuited], 1e-12)
	assert.Zero(t, p.ShapeFreq[shapeOffsuit])
	assert.InDelta(t, 0.7, p.ClassFreq["AKs"], 1e-12)
	assert.InDelta(t, (6*1.0+4*0.7)/totalCombos, p.Range, 1e-12)

	var buf bytes.Buffer
	writePatterns(&buf, p, game.AllIn, 0.5)
	assert.Contains(t, buf.String(), "classes at or above 0.50: AA AKs\n")
}

func TestPlayHandsBalances(t *testing.T) {
	t.Parallel()

	rules, err := game.NewRules(0.4, 1.0)
	require.NoError(t, err)
	policy := runtime.New(fixedProfile())

	res, err := playHands(context.Background(), rules, policy, 200, 3)
	require.NoError(t, err)
	assert.Equal(t, 200, res.Hands)
	total := 0.0
	for seat := range game.NumPlayers {
		total += res.Returns[seat]
		assert.Positive(t, res.Decisions[seat])
	}
	assert.InDelta(t, 0, total, 1e-6)

	again, err := playHands(context.Background(), rules, policy, 200, 3)
	require.NoError(t, err)
	assert.Equal(t, res, again)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = playHands(ctx, rules, policy, 10, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestInspectReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.txt")
	require.NoError(t, strategy.SaveText(path, fixedProfile()))

	var buf bytes.Buffer
	cmd := &InspectCmd{Path: path, Top: 2, Action: "ALL_IN", Threshold: 0.5, Play: 50, Seed: 11}
	require.NoError(t, cmd.report(context.Background(), &buf, config.Default(), zerolog.Nop()))
	out := buf.String()
	assert.Contains(t, out, "Top 2 info sets by visits")
	assert.Contains(t, out, "Per-seat ALL_IN frequency")
	assert.Contains(t, out, "pocket pairs:")
	assert.Contains(t, out, "Self-play over 50 hands")

	_, err := os.Stat(strategy.ManifestPath(path))
	require.True(t, os.IsNotExist(err))

	bad := &InspectCmd{Path: path, Action: "DEAL"}
	assert.Error(t, bad.report(context.Background(), &buf, config.Default(), zerolog.Nop()))
}

func TestInspectWritesReportFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "strategy.bin")
	require.NoError(t, strategy.SaveBinary(path, fixedProfile()))

	out := filepath.Join(dir, "reports", "report.txt")
	g := &Globals{Context: context.Background(), Logger: zerolog.Nop(), File: config.Default(), Quiet: true}
	cmd := &InspectCmd{Path: path, Top: 10, Action: "fold", Threshold: 0.5, Out: out}
	require.NoError(t, cmd.Run(g))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hand patterns (FOLD)")
	assert.Contains(t, string(data), "classes at or above 0.50: 72o")
}
