package runtime

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/sdk/solver"
	"github.com/lox/aofsolver/sdk/solver/strategy"
)

// Policy exposes read-only access to a trained strategy for sampling
// actions during live play.
type Policy struct {
	profile *strategy.Profile
}

// New wraps an in-memory profile.
func New(p *strategy.Profile) *Policy {
	return &Policy{profile: p}
}

// Load constructs a runtime policy from a stored strategy file of any
// supported format.
func Load(ctx context.Context, path string) (*Policy, error) {
	p, err := strategy.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Policy{profile: p}, nil
}

// Profile returns the underlying profile (read-only).
func (p *Policy) Profile() *strategy.Profile {
	if p == nil {
		return nil
	}
	return p.profile
}

// ActionWeights returns the stored probability distribution for key. When
// the key is missing, a uniform policy is returned to guarantee a valid
// distribution; stored strategies shorter than actionCount are padded.
func (p *Policy) ActionWeights(key string, actionCount int) ([]float64, error) {
	if p == nil || p.profile == nil {
		return nil, errors.New("nil policy")
	}
	if actionCount <= 0 {
		return nil, errors.New("action count must be positive")
	}

	uniform := 1.0 / float64(actionCount)
	out := make([]float64, actionCount)
	e, ok := p.profile.Get(key)
	if !ok {
		for i := range out {
			out[i] = uniform
		}
		return out, nil
	}

	n := copy(out, e.Probabilities)
	for i := n; i < actionCount; i++ {
		out[i] = uniform
	}
	return out, nil
}

// Act samples an action for seat at s. It fails unless seat is the one to
// act.
func (p *Policy) Act(s *game.State, seat int, rng *rand.Rand) (game.Action, error) {
	if s.CurrentPlayer() != seat {
		return 0, fmt.Errorf("seat %d is not to act (current %d)", seat, s.CurrentPlayer())
	}
	actions := s.LegalActions()
	if len(actions) == 0 {
		return 0, solver.ErrNoLegalActions
	}
	weights, err := p.ActionWeights(solver.InfoSetKey(s, seat), len(actions))
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return actions[i], nil
		}
	}
	return actions[len(actions)-1], nil
}
