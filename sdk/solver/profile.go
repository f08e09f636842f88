package solver

import (
	"fmt"

	"github.com/lox/aofsolver/sdk/solver/strategy"
)

// Profile snapshots the average strategy of every info set.
func (t *Trainer) Profile() *strategy.Profile {
	p := strategy.NewProfile(int(t.iteration.Load()))
	for key, node := range t.regrets.Nodes() {
		p.Set(key, node.Visits(), node.AverageStrategy())
	}
	return p
}

// WarmStart seeds the regret table from a saved profile so training resumes
// close to where the profile left off. Each node's regret and strategy sums
// are set to probability times visits, which reproduces the saved average
// strategy and gives it weight proportional to its experience. Entries with
// no visits count once. It must be called before Run. On error the table is
// left as it was.
func (t *Trainer) WarmStart(p *strategy.Profile) error {
	if t.iteration.Load() != 0 {
		return fmt.Errorf("warm start after %d iterations", t.iteration.Load())
	}
	staged := t.regrets.Clone()
	for _, e := range p.Entries() {
		node, err := staged.Get(e.Key, len(e.Probabilities))
		if err != nil {
			return fmt.Errorf("warm start: %w", err)
		}
		weight := float64(max(e.Visits, 1))
		node.mu.Lock()
		for i, prob := range e.Probabilities {
			node.regretSum[i] = prob * weight
			node.strategySum[i] = prob * weight
		}
		node.visits = e.Visits
		node.mu.Unlock()
	}
	t.regrets = staged
	t.logger.Info().Int("info_sets", p.Len()).Msg("warm started from strategy")
	return nil
}
