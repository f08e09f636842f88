package runtime

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/internal/randutil"
	"github.com/lox/aofsolver/poker"
	"github.com/lox/aofsolver/sdk/solver/strategy"
)

func TestPolicyActionWeightsErrors(t *testing.T) {
	var p *Policy
	if _, err := p.ActionWeights("k", 1); err == nil {
		t.Fatalf("expected error for nil policy")
	}

	p = New(strategy.NewProfile(0))
	if _, err := p.ActionWeights("k", 0); err == nil {
		t.Fatalf("expected error for non-positive action count")
	}
}

func TestPolicyActionWeightsPaddingAndUniformFallback(t *testing.T) {
	profile := strategy.NewProfile(10)
	profile.Set("P2:[P0:P][P1:P]AKs Pot:1.4", 3, []float64{0.7})
	policy := New(profile)

	weights, err := policy.ActionWeights("P2:[P0:P][P1:P]AKs Pot:1.4", 3)
	if err != nil {
		t.Fatalf("action weights: %v", err)
	}
	if len(weights) != 3 {
		t.Fatalf("expected 3 weights, got %d", len(weights))
	}
	if diff(weights[0], 0.7) > 1e-9 {
		t.Fatalf("expected first weight 0.7, got %v", weights[0])
	}
	for i := 1; i < len(weights); i++ {
		if diff(weights[i], 1.0/3.0) > 1e-9 {
			t.Fatalf("expected padded weight 1/3 at index %d, got %v", i, weights[i])
		}
	}

	missing, err := policy.ActionWeights("P3:[P0:P][P1:P][P2:F]72o Pot:1.4", 4)
	if err != nil {
		t.Fatalf("missing key fallback: %v", err)
	}
	for i, w := range missing {
		if diff(w, 0.25) > 1e-9 {
			t.Fatalf("expected uniform fallback 0.25 at index %d, got %v", i, w)
		}
	}
}

func TestPolicyActFollowsPureStrategy(t *testing.T) {
	rules, err := game.NewRules(0.4, 1.0)
	if err != nil {
		t.Fatalf("new rules: %v", err)
	}
	deck, err := poker.StackedDeck(poker.MustParseCards("2c3d 7h2s AsKs QdQc")...)
	if err != nil {
		t.Fatalf("stacked deck: %v", err)
	}
	s := rules.NewStateWithDeck(deck)
	if err := s.Apply(game.Deal); err != nil {
		t.Fatalf("deal: %v", err)
	}

	profile := strategy.NewProfile(1)
	profile.Set("P2:[P0:P][P1:P]AKs Pot:1.4", 1, []float64{0, 1})
	path := filepath.Join(t.TempDir(), "strategy.bin")
	if err := strategy.Save(context.Background(), path, profile); err != nil {
		t.Fatalf("save: %v", err)
	}
	policy, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	rng := randutil.New(1)
	for range 20 {
		a, err := policy.Act(s, 2, rng)
		if err != nil {
			t.Fatalf("act: %v", err)
		}
		if a != game.AllIn {
			t.Fatalf("expected ALL_IN, got %s", a)
		}
	}
	if _, err := policy.Act(s, 3, rng); err == nil {
		t.Fatalf("expected error for seat out of turn")
	}
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
