// Package poker provides the card primitives used by the all-in-or-fold
// trainer: a compact Card type, a shuffled Deck that deals from its tail, a
// seven-card hand evaluator and the 169-class hole card abstraction.
//
// Cards are packed into a byte so that they compare by rank and then suit:
//
//	c, err := poker.NewCard(poker.Ace, poker.Spades)
//	hole := poker.MustParseCards("AsKs")
//	board := poker.MustParseCards("Qs Js Ts 2d 3c")
//	score, err := poker.Evaluate(hole, board)
//	fmt.Println(score.Category()) // Straight Flush
//
// Scores compare lexicographically with Score.Compare; a higher score wins
// and equal scores split the pot.
package poker
