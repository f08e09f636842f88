// Package game implements four-handed all-in-or-fold poker.
//
// Rules holds the table configuration (blinds, starting stacks and house
// fees) and creates hands. State is a single hand: it starts at a chance
// node, each seat from the button's left then gets exactly one fold or
// all-in decision, and the hand ends when one seat remains or everyone
// still in is all in.
//
// # Basic Usage
//
//	fees, err := game.Stakes(0.5, 1.0)
//	rules, err := game.NewRules(0.5, 1.0, game.WithFees(fees))
//	s := rules.NewState(randutil.New(42))
//	s.Apply(game.Deal)
//	for !s.IsTerminal() {
//	    s.Apply(game.AllIn)
//	}
//	returns, err := s.Returns()
//
// # Settlement
//
// Side pots are layered by contribution level when the hand ends. Folded
// seats still pay into the layers they reached but cannot win them. Returns
// are net of each seat's contribution and sum to zero less the house take;
// settlements that drift further than ZeroSumTolerance are logged at warn
// level and counted by Rules.ZeroSumViolations.
//
// Community cards are only dealt when two or more seats reach showdown.
package game
