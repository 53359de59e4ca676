package game

// Phase represents the stage of a hand
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
	Settled
)

func (p Phase) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown", "settled"}[p]
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise", "allin"}[a]
}

// ParseAction maps the wire action names to Action values
func ParseAction(s string) (Action, bool) {
	switch s {
	case "fold":
		return Fold, true
	case "check":
		return Check, true
	case "call":
		return Call, true
	case "bet":
		return Bet, true
	case "raise":
		return Raise, true
	case "allin":
		return AllIn, true
	}
	return Fold, false
}
