package solver

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/aofsolver/internal/game"
)

// ErrNoLegalActions signals a decision node without actions, which the game
// rules should make impossible.
var ErrNoLegalActions = errors.New("no legal actions at decision node")

// walker runs external-sampling MCCFR walks against one regret table. The
// trainer uses a single walker; parallel workers each own one.
type walker struct {
	rules   *game.Rules
	regrets *RegretTable
	rng     *rand.Rand
	stats   TraversalStats
}

type reachProbs [game.NumPlayers]float64

func uniformReach() reachProbs {
	return reachProbs{1, 1, 1, 1}
}

// iterate deals one hand, walks it once for every seat and then plays it out
// with the average strategy to produce a utility sample.
func (w *walker) iterate(monitor *rand.Rand) ([game.NumPlayers]float64, error) {
	root := w.rules.NewState(w.rng)
	for seat := 0; seat < game.NumPlayers; seat++ {
		if _, err := w.traverse(root.Clone(), seat, uniformReach(), 0); err != nil {
			return [game.NumPlayers]float64{}, err
		}
	}
	return playout(root.Clone(), w.regrets, monitor)
}

// traverse returns the expected utility of s for target. Target decisions
// branch over every action on cloned states; other seats sample one action
// from their current strategy and continue in place.
func (w *walker) traverse(s *game.State, target int, reach reachProbs, depth int) (float64, error) {
	w.stats.NodesVisited++
	if depth > w.stats.MaxDepth {
		w.stats.MaxDepth = depth
	}

	if s.IsTerminal() {
		w.stats.TerminalNodes++
		ret, err := s.Returns()
		if err != nil {
			return 0, err
		}
		return ret[target], nil
	}

	if s.IsChance() {
		if err := s.Apply(game.Deal); err != nil {
			return 0, err
		}
		return w.traverse(s, target, reach, depth+1)
	}

	current := s.CurrentPlayer()
	actions := s.LegalActions()
	if len(actions) == 0 {
		return 0, fmt.Errorf("%w: seat %d", ErrNoLegalActions, current)
	}

	key := InfoSetKey(s, current)
	node, err := w.regrets.Get(key, len(actions))
	if err != nil {
		return 0, err
	}
	strategy := node.Strategy(reach[current])

	if current == target {
		util := make([]float64, len(actions))
		nodeUtil := 0.0
		for i, a := range actions {
			next := s.Clone()
			if err := next.Apply(a); err != nil {
				return 0, err
			}
			nextReach := reach
			nextReach[target] *= strategy[i]
			u, err := w.traverse(next, target, nextReach, depth+1)
			if err != nil {
				return 0, err
			}
			util[i] = u
			nodeUtil += strategy[i] * u
		}
		for i := range actions {
			if err := node.UpdateRegret(i, util[i]-nodeUtil); err != nil {
				return 0, err
			}
		}
		return nodeUtil, nil
	}

	idx := sampleStrategyIndex(strategy, w.rng)
	reach[current] *= strategy[idx]
	if err := s.Apply(actions[idx]); err != nil {
		return 0, err
	}
	return w.traverse(s, target, reach, depth+1)
}

// playout plays s to the end choosing the most likely action of the average
// strategy at every known info set and a uniform random action elsewhere.
// It reads the regret table without modifying it.
func playout(s *game.State, regrets *RegretTable, rng *rand.Rand) ([game.NumPlayers]float64, error) {
	for !s.IsTerminal() {
		if s.IsChance() {
			if err := s.Apply(game.Deal); err != nil {
				return [game.NumPlayers]float64{}, err
			}
			continue
		}

		seat := s.CurrentPlayer()
		actions := s.LegalActions()
		if len(actions) == 0 {
			return [game.NumPlayers]float64{}, fmt.Errorf("%w: seat %d", ErrNoLegalActions, seat)
		}

		idx := 0
		if node, ok := regrets.Lookup(InfoSetKey(s, seat)); ok && node.NumActions() == len(actions) {
			idx = argmax(node.AverageStrategy())
		} else {
			idx = rng.IntN(len(actions))
		}
		if err := s.Apply(actions[idx]); err != nil {
			return [game.NumPlayers]float64{}, err
		}
	}
	return s.Returns()
}

// sampleStrategyIndex draws an index proportionally to strategy. Rounding
// leftovers fall to the last index.
func sampleStrategyIndex(strategy []float64, rng *rand.Rand) int {
	r := rng.Float64()
	cumulative := 0.0
	for i, p := range strategy {
		cumulative += p
		if r < cumulative {
			return i
		}
	}
	return len(strategy) - 1
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
