package game

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lox/aofsolver/poker"
)

// ChancePlayer is returned by CurrentPlayer while the hand waits for the deal
// and after it has finished.
const ChancePlayer = -1

var (
	ErrIllegalAction   = errors.New("illegal action")
	ErrHandComplete    = errors.New("hand is complete")
	ErrHandNotComplete = errors.New("hand is not complete")
)

// State is one hand of all-in-or-fold poker. A hand starts at a chance node,
// becomes a sequence of single fold/all-in decisions once the cards are
// dealt, and ends when at most one seat remains or everyone left is all in.
//
// State is a plain value apart from its side pots; Clone produces an
// independent copy suitable for tree search.
type State struct {
	rules *Rules
	deck  poker.Deck

	pot     float64
	stacks  [NumPlayers]float64
	contrib [NumPlayers]float64
	folded  [NumPlayers]bool
	allIn   [NumPlayers]bool

	hole       [2 * NumPlayers]poker.Card
	holeDealt  bool
	board      [5]poker.Card
	boardDealt bool

	sidePots []SidePot
	next     int
	over     bool
}

// Clone returns a deep copy of s. The clone shares only the Rules pointer.
func (s *State) Clone() *State {
	c := *s
	if s.sidePots != nil {
		c.sidePots = make([]SidePot, len(s.sidePots))
		for i, p := range s.sidePots {
			c.sidePots[i] = SidePot{Amount: p.Amount, Eligible: slices.Clone(p.Eligible)}
		}
	}
	return &c
}

func (s *State) Rules() *Rules { return s.rules }

// IsChance reports whether the next transition is the deal.
func (s *State) IsChance() bool { return !s.holeDealt && !s.over }

// IsTerminal reports whether the hand is over.
func (s *State) IsTerminal() bool { return s.over }

// CurrentPlayer returns the seat to act, or ChancePlayer at chance and
// terminal nodes.
func (s *State) CurrentPlayer() int {
	if s.IsChance() || s.over {
		return ChancePlayer
	}
	return s.next
}

// LegalActions returns Deal at a chance node, nothing once the hand is over
// or the cursor rests on a folded seat, and Fold/AllIn otherwise. The order
// is stable so that callers can index strategies by position.
func (s *State) LegalActions() []Action {
	switch {
	case s.over:
		return nil
	case s.IsChance():
		return []Action{Deal}
	case s.folded[s.next]:
		return nil
	default:
		return []Action{Fold, AllIn}
	}
}

func (s *State) isLegal(a Action) bool {
	return slices.Contains(s.LegalActions(), a)
}

// Apply performs a in place.
func (s *State) Apply(a Action) error {
	if s.over {
		return fmt.Errorf("apply %s: %w", a, ErrHandComplete)
	}
	if !s.isLegal(a) {
		return fmt.Errorf("%w: %s for seat %d", ErrIllegalAction, a, s.CurrentPlayer())
	}

	switch a {
	case Deal:
		cards, err := s.deck.DrawN(len(s.hole))
		if err != nil {
			return fmt.Errorf("deal hole cards: %w", err)
		}
		copy(s.hole[:], cards)
		s.holeDealt = true
		s.next = FirstToAct
		return nil
	case Fold:
		s.folded[s.next] = true
	case AllIn:
		amount := s.stacks[s.next]
		s.pot += amount
		s.contrib[s.next] += amount
		s.stacks[s.next] = 0
		s.allIn[s.next] = true
	}

	s.advance()
	return s.checkTerminal()
}

func (s *State) advance() {
	s.next = (s.next + 1) % NumPlayers
	for s.folded[s.next] && s.ActiveCount() > 1 {
		s.next = (s.next + 1) % NumPlayers
	}
}

func (s *State) checkTerminal() error {
	active := s.ActiveCount()
	if active > 1 {
		for seat := range NumPlayers {
			if !s.folded[seat] && !s.allIn[seat] {
				return nil
			}
		}
	}

	s.over = true
	if active > 1 && !s.boardDealt {
		cards, err := s.deck.DrawN(len(s.board))
		if err != nil {
			return fmt.Errorf("deal community cards: %w", err)
		}
		copy(s.board[:], cards)
		s.boardDealt = true
	}
	s.sidePots = buildSidePots(s.contrib, s.folded, s.pot)
	return nil
}

// ActiveCount returns the number of seats that have not folded.
func (s *State) ActiveCount() int {
	n := 0
	for _, f := range s.folded {
		if !f {
			n++
		}
	}
	return n
}

func (s *State) Pot() float64 { return s.pot }

func (s *State) Stack(seat int) float64 { return s.stacks[seat] }

// Contribution is the total a seat has put in the pot, blinds included.
func (s *State) Contribution(seat int) float64 { return s.contrib[seat] }

func (s *State) Folded(seat int) bool { return s.folded[seat] }

func (s *State) AllIn(seat int) bool { return s.allIn[seat] }

// HoleCards returns the two cards dealt to seat and false before the deal.
func (s *State) HoleCards(seat int) ([2]poker.Card, bool) {
	if !s.holeDealt {
		return [2]poker.Card{}, false
	}
	return [2]poker.Card{s.hole[2*seat], s.hole[2*seat+1]}, true
}

// Community returns the board, or nil if the hand ended without a showdown.
func (s *State) Community() []poker.Card {
	if !s.boardDealt {
		return nil
	}
	return s.board[:]
}

// SidePots returns the pot layers computed when the hand ended.
func (s *State) SidePots() []SidePot {
	return s.sidePots
}
