package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/lox/aofsolver/internal/game"
	"github.com/lox/aofsolver/internal/randutil"
	"github.com/lox/aofsolver/poker"
	"github.com/lox/aofsolver/sdk/solver"
	"github.com/lox/aofsolver/sdk/solver/runtime"
	"github.com/lox/aofsolver/sdk/solver/strategy"
)

// totalCombos is the number of two-card starting hands.
const totalCombos = 1326

// actionFrequency returns the probability e assigns to action, or false if
// the entry is not a fold/all-in decision.
func actionFrequency(e strategy.Entry, action game.Action) (float64, bool) {
	if len(e.Probabilities) != 2 || action > game.AllIn {
		return 0, false
	}
	return e.Probabilities[action], true
}

// seatSummary describes how one seat plays across its info sets.
type seatSummary struct {
	Seat        int
	InfoSets    int
	Visits      int64
	AvgFreq     float64
	Highest     strategy.Entry
	HighestFreq float64
	Lowest      strategy.Entry
	LowestFreq  float64
}

// summariseSeats groups entries by acting seat. Highest and Lowest are the
// info sets where action is most and least likely, ties going to the more
// visited key.
func summariseSeats(p *strategy.Profile, action game.Action) []seatSummary {
	out := make([]seatSummary, game.NumPlayers)
	for seat := range out {
		out[seat].Seat = seat
	}
	for _, e := range p.ByVisits(0) {
		seat := solver.KeySeat(e.Key)
		freq, ok := actionFrequency(e, action)
		if seat < 0 || !ok {
			continue
		}
		s := &out[seat]
		if s.InfoSets == 0 || freq > s.HighestFreq {
			s.Highest, s.HighestFreq = e, freq
		}
		if s.InfoSets == 0 || freq < s.LowestFreq {
			s.Lowest, s.LowestFreq = e, freq
		}
		s.InfoSets++
		s.Visits += e.Visits
		s.AvgFreq += freq
	}
	for i := range out {
		if out[i].InfoSets > 0 {
			out[i].AvgFreq /= float64(out[i].InfoSets)
		}
	}
	return out
}

// handShape is the kind of starting hand a class belongs to.
type handShape int

const (
	shapePair handShape = iota
	shapeSuited
	shapeOffsuit
)

func (h handShape) String() string {
	switch h {
	case shapePair:
		return "pocket pairs"
	case shapeSuited:
		return "suited"
	default:
		return "offsuit"
	}
}

func shapeOf(class string) (handShape, bool) {
	switch poker.HoleClassCombos(class) {
	case 6:
		return shapePair, true
	case 4:
		return shapeSuited, true
	case 12:
		return shapeOffsuit, true
	}
	return 0, false
}

// patternSummary aggregates entries by hole class.
type patternSummary struct {
	Situations [3]int
	ShapeFreq  [3]float64
	// ClassFreq is the mean action frequency of each class over all of its
	// info sets, keyed by class name.
	ClassFreq map[string]float64
	// Range is the share of all starting hands, weighted by combinations,
	// that take action at the mean class frequency.
	Range float64
}

func summarisePatterns(p *strategy.Profile, action game.Action) patternSummary {
	out := patternSummary{ClassFreq: make(map[string]float64)}
	counts := make(map[string]int)
	for _, e := range p.Entries() {
		class := solver.KeyHoleClass(e.Key)
		shape, ok := shapeOf(class)
		if !ok {
			continue
		}
		freq, ok := actionFrequency(e, action)
		if !ok {
			continue
		}
		out.Situations[shape]++
		out.ShapeFreq[shape] += freq
		out.ClassFreq[class] += freq
		counts[class]++
	}
	for shape, n := range out.Situations {
		if n > 0 {
			out.ShapeFreq[shape] /= float64(n)
		}
	}
	for _, class := range poker.AllHoleClasses() {
		n := counts[class]
		if n == 0 {
			continue
		}
		out.ClassFreq[class] /= float64(n)
		out.Range += out.ClassFreq[class] * float64(poker.HoleClassCombos(class))
	}
	out.Range /= totalCombos
	return out
}

func writeSeatSummaries(w io.Writer, seats []seatSummary, action game.Action) {
	fmt.Fprintf(w, "\nPer-seat %s frequency:\n", action)
	for _, s := range seats {
		if s.InfoSets == 0 {
			fmt.Fprintf(w, "  P%d  (no info sets)\n", s.Seat)
			continue
		}
		fmt.Fprintf(w, "  P%d  %s info sets, %s visits, average %.3f\n",
			s.Seat, humanize.Comma(int64(s.InfoSets)), humanize.Comma(s.Visits), s.AvgFreq)
		fmt.Fprintf(w, "      highest %.3f  %s\n", s.HighestFreq, s.Highest.Key)
		fmt.Fprintf(w, "      lowest  %.3f  %s\n", s.LowestFreq, s.Lowest.Key)
	}
}

func writePatterns(w io.Writer, p patternSummary, action game.Action, threshold float64) {
	fmt.Fprintf(w, "\nHand patterns (%s):\n", action)
	for _, shape := range []handShape{shapePair, shapeSuited, shapeOffsuit} {
		fmt.Fprintf(w, "  %-13s %s situations, average %.3f\n",
			shape.String()+":", humanize.Comma(int64(p.Situations[shape])), p.ShapeFreq[shape])
	}
	fmt.Fprintf(w, "  range:        %.1f%% of starting hands\n", p.Range*100)

	var classes []string
	for _, class := range poker.AllHoleClasses() {
		if f, ok := p.ClassFreq[class]; ok && f >= threshold {
			classes = append(classes, class)
		}
	}
	fmt.Fprintf(w, "  classes at or above %.2f: ", threshold)
	if len(classes) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for i, c := range classes {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

// playResult accumulates the outcome of hands played by a policy against
// itself.
type playResult struct {
	Hands     int
	Showdowns int
	Returns   [game.NumPlayers]float64
	Decisions [game.NumPlayers]int
	AllIns    [game.NumPlayers]int
}

// playHands deals hands and lets policy act for every seat.
func playHands(ctx context.Context, rules *game.Rules, policy *runtime.Policy, hands int, seed int64) (playResult, error) {
	var res playResult
	rng := randutil.New(seed)
	for range hands {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		s := rules.NewState(rng)
		for !s.IsTerminal() {
			if s.IsChance() {
				if err := s.Apply(game.Deal); err != nil {
					return res, err
				}
				continue
			}
			seat := s.CurrentPlayer()
			a, err := policy.Act(s, seat, rng)
			if err != nil {
				return res, err
			}
			res.Decisions[seat]++
			if a == game.AllIn {
				res.AllIns[seat]++
			}
			if err := s.Apply(a); err != nil {
				return res, err
			}
		}
		ret, err := s.Returns()
		if err != nil {
			return res, err
		}
		for seat, r := range ret {
			res.Returns[seat] += r
		}
		if s.ActiveCount() > 1 {
			res.Showdowns++
		}
		res.Hands++
	}
	return res, nil
}

func writePlayResult(w io.Writer, res playResult, bigBlind float64) {
	fmt.Fprintf(w, "\nSelf-play over %s hands (%s showdowns):\n",
		humanize.Comma(int64(res.Hands)), humanize.Comma(int64(res.Showdowns)))
	if res.Hands == 0 {
		return
	}
	type row struct {
		seat int
		bb   float64
	}
	rows := make([]row, game.NumPlayers)
	for seat := range rows {
		rows[seat] = row{seat, res.Returns[seat] / float64(res.Hands) / bigBlind}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].bb > rows[j].bb })
	for _, r := range rows {
		jam := 0.0
		if res.Decisions[r.seat] > 0 {
			jam = float64(res.AllIns[r.seat]) / float64(res.Decisions[r.seat])
		}
		fmt.Fprintf(w, "  P%d  %+.4f bb/hand  all-in %.3f over %s decisions\n",
			r.seat, r.bb, jam, humanize.Comma(int64(res.Decisions[r.seat])))
	}
}
