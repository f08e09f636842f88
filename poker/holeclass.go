package poker

// HoleClass maps two hole cards onto one of the 169 strategically distinct
// starting-hand classes: pairs ("AA"), suited ("AKs") and offsuit ("AKo"),
// always written high rank first.
func HoleClass(a, b Card) string {
	hi, lo := a.Rank(), b.Rank()
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == lo {
		return hi.String() + lo.String()
	}
	if a.Suit() == b.Suit() {
		return hi.String() + lo.String() + "s"
	}
	return hi.String() + lo.String() + "o"
}

// AllHoleClasses lists every hole class from AA downwards, pairs on the
// diagonal, suited above it and offsuit below it, row by row.
func AllHoleClasses() []string {
	out := make([]string, 0, 169)
	for hi := Ace; hi >= Two; hi-- {
		for lo := Ace; lo >= Two; lo-- {
			switch {
			case hi == lo:
				out = append(out, hi.String()+lo.String())
			case lo < hi:
				out = append(out, hi.String()+lo.String()+"s")
			default:
				out = append(out, lo.String()+hi.String()+"o")
			}
		}
	}
	return out
}

// HoleClassCombos returns how many concrete two-card combinations belong to
// the class: 6 for pairs, 4 for suited and 12 for offsuit hands.
func HoleClassCombos(class string) int {
	switch {
	case len(class) == 2:
		return 6
	case len(class) == 3 && class[2] == 's':
		return 4
	case len(class) == 3 && class[2] == 'o':
		return 12
	default:
		return 0
	}
}
