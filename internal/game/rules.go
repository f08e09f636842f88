package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync/atomic"

	"github.com/lox/aofsolver/poker"
	"github.com/rs/zerolog"
)

const (
	// NumPlayers is the fixed table size.
	NumPlayers = 4
	// DefaultStackBB is the starting stack of every seat, in big blinds.
	DefaultStackBB = 8.0

	SmallBlindSeat = 0
	BigBlindSeat   = 1
	// FirstToAct is the seat that opens the action once cards are dealt.
	FirstToAct = 2
)

// ErrInvalidSeat is returned for seat indexes outside the table.
var ErrInvalidSeat = errors.New("invalid seat")

// Rules holds the table configuration shared by every hand of a training run
// and acts as the factory for new hands. Rules is immutable after NewRules
// and safe for concurrent use; states keep a pointer back to it.
type Rules struct {
	smallBlind float64
	bigBlind   float64
	stacks     [NumPlayers]float64
	fees       Fees
	logger     zerolog.Logger

	zeroSumViolations atomic.Int64
}

// Option configures Rules during construction.
type Option func(*rulesConfig)

type rulesConfig struct {
	stacks   []float64
	stacksBB []float64
	fees     Fees
	logger   zerolog.Logger
}

// WithStacks sets the starting stack of each seat in chips.
func WithStacks(stacks ...float64) Option {
	return func(c *rulesConfig) {
		c.stacks = stacks
		c.stacksBB = nil
	}
}

// WithStacksBB sets the starting stack of each seat in big blinds.
func WithStacksBB(stacks ...float64) Option {
	return func(c *rulesConfig) {
		c.stacksBB = stacks
		c.stacks = nil
	}
}

// WithFees sets the rake and jackpot parameters.
func WithFees(f Fees) Option {
	return func(c *rulesConfig) {
		c.fees = f
	}
}

// WithLogger sets the logger used for settlement diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *rulesConfig) {
		c.logger = l
	}
}

// NewRules validates the table configuration. Stacks default to
// DefaultStackBB big blinds per seat and fees default to zero.
func NewRules(smallBlind, bigBlind float64, opts ...Option) (*Rules, error) {
	cfg := &rulesConfig{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}

	if smallBlind <= 0 || bigBlind <= 0 {
		return nil, errors.New("blinds must be > 0")
	}
	if smallBlind >= bigBlind {
		return nil, fmt.Errorf("small blind %g must be less than big blind %g", smallBlind, bigBlind)
	}

	stacks := cfg.stacks
	if cfg.stacksBB != nil {
		stacks = make([]float64, len(cfg.stacksBB))
		for i, bb := range cfg.stacksBB {
			stacks[i] = bb * bigBlind
		}
	}
	if stacks == nil {
		stacks = make([]float64, NumPlayers)
		for i := range stacks {
			stacks[i] = DefaultStackBB * bigBlind
		}
	}
	if len(stacks) != NumPlayers {
		return nil, fmt.Errorf("expected %d stacks, got %d", NumPlayers, len(stacks))
	}

	r := &Rules{
		smallBlind: smallBlind,
		bigBlind:   bigBlind,
		fees:       cfg.fees,
		logger:     cfg.logger,
	}
	for i, s := range stacks {
		if s <= 0 {
			return nil, fmt.Errorf("stack for seat %d must be > 0", i)
		}
		r.stacks[i] = s
	}
	if r.stacks[SmallBlindSeat] < smallBlind {
		return nil, fmt.Errorf("small blind seat stack %g cannot cover small blind %g", r.stacks[SmallBlindSeat], smallBlind)
	}
	if r.stacks[BigBlindSeat] < bigBlind {
		return nil, fmt.Errorf("big blind seat stack %g cannot cover big blind %g", r.stacks[BigBlindSeat], bigBlind)
	}

	if err := checkUnit("rake", cfg.fees.Rake); err != nil {
		return nil, err
	}
	if err := checkUnit("jackpot fee", cfg.fees.JackpotFee); err != nil {
		return nil, err
	}
	if err := checkUnit("jackpot payout percentage", cfg.fees.JackpotPayoutPct); err != nil {
		return nil, err
	}
	return r, nil
}

func checkUnit(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within [0, 1], got %g", name, v)
	}
	return nil
}

func (r *Rules) SmallBlind() float64 { return r.smallBlind }
func (r *Rules) BigBlind() float64   { return r.bigBlind }
func (r *Rules) Fees() Fees          { return r.fees }

// Stacks returns the starting stacks of all seats.
func (r *Rules) Stacks() [NumPlayers]float64 { return r.stacks }

// InitialStack returns the starting stack for seat.
func (r *Rules) InitialStack(seat int) (float64, error) {
	if seat < 0 || seat >= NumPlayers {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	return r.stacks[seat], nil
}

// ZeroSumViolations counts settlements whose payoffs did not balance against
// the house fees.
func (r *Rules) ZeroSumViolations() int64 {
	return r.zeroSumViolations.Load()
}

// NewState posts the blinds and returns a fresh hand waiting for the deal.
// The deck is shuffled with rng.
func (r *Rules) NewState(rng *rand.Rand) *State {
	return r.newState(*poker.NewDeck(rng))
}

// NewStateWithDeck is NewState with a prepared deck, for replaying fixed
// deals. The deck is copied.
func (r *Rules) NewStateWithDeck(deck *poker.Deck) *State {
	return r.newState(*deck)
}

func (r *Rules) newState(deck poker.Deck) *State {
	s := &State{
		rules:  r,
		deck:   deck,
		stacks: r.stacks,
		pot:    r.smallBlind + r.bigBlind,
		next:   ChancePlayer,
	}
	s.stacks[SmallBlindSeat] -= r.smallBlind
	s.stacks[BigBlindSeat] -= r.bigBlind
	s.contrib[SmallBlindSeat] = r.smallBlind
	s.contrib[BigBlindSeat] = r.bigBlind
	return s
}
