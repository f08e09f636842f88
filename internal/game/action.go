package game

// Action is a move available at a decision or chance node.
type Action uint8

const (
	Fold Action = iota
	AllIn
	Deal
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "FOLD"
	case AllIn:
		return "ALL_IN"
	case Deal:
		return "DEAL"
	default:
		return "UNKNOWN"
	}
}

// ParseAction accepts the upper-case names produced by String as well as the
// single-letter forms used in info set keys.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "FOLD", "F", "fold":
		return Fold, true
	case "ALL_IN", "A", "allin", "all-in":
		return AllIn, true
	case "DEAL", "deal":
		return Deal, true
	}
	return 0, false
}
