package game

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrOutOfTurn         = errors.New("out of turn")
	ErrIllegalAction     = errors.New("illegal action for phase")
	ErrInsufficientChips = errors.New("insufficient chips")
	ErrBelowMinimum      = errors.New("amount below minimum")
)

// HandPlayer is a participant in a single hand. Chips move only through the
// hand machine while the hand is live; the table copies them back after
// settlement.
type HandPlayer struct {
	UserID     string
	Seat       int
	Chips      int
	HoleCards  []Card
	CurrentBet int
	TotalBet   int
	Folded     bool
	AllIn      bool
	Revealed   []int

	acted bool // has acted since the last action-reopening aggression
}

// StreetDeal records community cards dealt when a street advances
type StreetDeal struct {
	Phase Phase
	Cards []Card
}

// StepResult describes what happened as a consequence of one action
type StepResult struct {
	Streets   []StreetDeal
	HandOver  bool
	FoldedOut bool
}

// Hand is the per-table hand state machine. Phase moves strictly through
// waiting -> preflop -> flop -> turn -> river -> showdown -> settled; a
// fold-out jumps from any betting phase to settlement.
type Hand struct {
	Number          uint64
	Phase           Phase
	ButtonSeat      int
	SBSeat          int
	BBSeat          int
	ActorSeat       int // 0 when nobody is to act
	HighBet         int
	MinRaise        int
	LastRaiseAmount int
	SmallBlind      int
	BigBlind        int
	Board           []Card
	LastAggressor   int // 0 if no voluntary aggression yet

	deck      *Deck
	ringSize  int
	players   map[int]*HandPlayer
	seats     []int // ascending seat numbers participating in the hand
	foldedOut bool
}

// FoldedOut reports whether the hand ended with everyone but one folding,
// in which case no hand is ever forced open.
func (h *Hand) FoldedOut() bool {
	return h.foldedOut
}

// NewHand starts a hand: assigns positions, posts blinds (a short blind posts
// the whole stack and is all-in), deals hole cards and sets the first actor.
// The returned StepResult carries streets dealt immediately when every player
// is already all-in from the blinds.
func NewHand(number uint64, players []*HandPlayer, ringSize, buttonSeat, smallBlind, bigBlind int, deck *Deck) (*Hand, *StepResult, error) {
	if len(players) < 2 {
		return nil, nil, fmt.Errorf("need at least 2 players, have %d", len(players))
	}
	h := &Hand{
		Number:          number,
		Phase:           Preflop,
		ButtonSeat:      buttonSeat,
		SmallBlind:      smallBlind,
		BigBlind:        bigBlind,
		HighBet:         bigBlind,
		MinRaise:        bigBlind,
		LastRaiseAmount: bigBlind,
		deck:            deck,
		ringSize:        ringSize,
		players:         make(map[int]*HandPlayer, len(players)),
	}
	for _, p := range players {
		if _, dup := h.players[p.Seat]; dup {
			return nil, nil, fmt.Errorf("duplicate seat %d", p.Seat)
		}
		h.players[p.Seat] = p
		h.seats = append(h.seats, p.Seat)
	}
	sort.Ints(h.seats)
	if _, ok := h.players[buttonSeat]; !ok {
		return nil, nil, fmt.Errorf("button seat %d not in hand", buttonSeat)
	}

	if len(players) == 2 {
		// Heads-up: the button posts the small blind and acts first preflop
		h.SBSeat = buttonSeat
		h.BBSeat = h.nextSeat(buttonSeat)
	} else {
		h.SBSeat = h.nextSeat(buttonSeat)
		h.BBSeat = h.nextSeat(h.SBSeat)
	}
	h.postBlind(h.players[h.SBSeat], smallBlind)
	h.postBlind(h.players[h.BBSeat], bigBlind)

	for _, seat := range h.seats {
		h.players[seat].HoleCards = deck.DealHole(2)
	}

	res := &StepResult{}
	h.ActorSeat = h.nextToAct(h.BBSeat)
	if h.ActorSeat == 0 {
		// Blinds put everyone all-in; run the board out immediately
		h.runOut(res)
	}
	return h, res, nil
}

func (h *Hand) postBlind(p *HandPlayer, amount int) {
	pay := amount
	if pay > p.Chips {
		pay = p.Chips
	}
	p.CurrentBet = pay
	p.TotalBet = pay
	p.Chips -= pay
	if p.Chips == 0 {
		p.AllIn = true
	}
}

// Player returns the hand participant at seat, or nil
func (h *Hand) Player(seat int) *HandPlayer {
	return h.players[seat]
}

// Players returns the participants in ascending seat order
func (h *Hand) Players() []*HandPlayer {
	out := make([]*HandPlayer, 0, len(h.seats))
	for _, s := range h.seats {
		out = append(out, h.players[s])
	}
	return out
}

// Pots returns the current layered pot list
func (h *Hand) Pots() []Pot {
	return ComputePots(h.Players())
}

// CanCheck reports whether a check is legal for seat right now
func (h *Hand) CanCheck(seat int) bool {
	p := h.players[seat]
	return p != nil && !p.Folded && !p.AllIn && p.CurrentBet == h.HighBet
}

// InBettingPhase reports whether actions may currently be applied
func (h *Hand) InBettingPhase() bool {
	return h.Phase >= Preflop && h.Phase <= River
}

func (h *Hand) nextSeat(from int) int {
	n := len(h.seats)
	idx := sort.SearchInts(h.seats, from)
	if idx < n && h.seats[idx] == from {
		idx++
	}
	for i := 0; i < n; i++ {
		seat := h.seats[(idx+i)%n]
		if seat != from {
			return seat
		}
	}
	return from
}

// nextToAct finds the first seat clockwise after from that can still act
func (h *Hand) nextToAct(from int) int {
	n := len(h.seats)
	idx := sort.SearchInts(h.seats, from)
	if idx < n && h.seats[idx] == from {
		idx++
	}
	for i := 0; i < n; i++ {
		seat := h.seats[(idx+i)%n]
		p := h.players[seat]
		if seat != from && !p.Folded && !p.AllIn {
			return seat
		}
	}
	return 0
}

func (h *Hand) unfoldedCount() int {
	n := 0
	for _, p := range h.players {
		if !p.Folded {
			n++
		}
	}
	return n
}

func (h *Hand) activeCount() int {
	n := 0
	for _, p := range h.players {
		if !p.Folded && !p.AllIn {
			n++
		}
	}
	return n
}

// roundComplete holds when every player who can still act has acted since the
// last action-reopening aggression. Blind posts do not count as acting, which
// gives the big blind its preflop option; a short all-in raise does not reset
// the flags, so players who already matched the prior high bet do not act
// again.
func (h *Hand) roundComplete() bool {
	for _, p := range h.players {
		if p.Folded || p.AllIn {
			continue
		}
		if !p.acted || p.CurrentBet != h.HighBet {
			return false
		}
	}
	return true
}

func (h *Hand) reopenAction(aggressor int) {
	for seat, p := range h.players {
		p.acted = seat == aggressor
	}
}

// Apply validates and applies one action from seat. Amount is the raise-to
// target for bet/raise and ignored otherwise.
func (h *Hand) Apply(seat int, action Action, amount int) (*StepResult, error) {
	if !h.InBettingPhase() {
		return nil, ErrIllegalAction
	}
	if seat != h.ActorSeat {
		return nil, ErrOutOfTurn
	}
	p := h.players[seat]

	switch action {
	case Fold:
		p.Folded = true
		p.acted = true

	case Check:
		if p.CurrentBet != h.HighBet {
			return nil, fmt.Errorf("%w: must call %d", ErrIllegalAction, h.HighBet-p.CurrentBet)
		}
		p.acted = true

	case Call:
		toCall := h.HighBet - p.CurrentBet
		if toCall <= 0 {
			return nil, fmt.Errorf("%w: nothing to call", ErrIllegalAction)
		}
		h.contribute(p, toCall)
		p.acted = true

	case Bet:
		if h.HighBet != 0 {
			return nil, fmt.Errorf("%w: there is already a bet", ErrIllegalAction)
		}
		if amount <= 0 {
			return nil, ErrBelowMinimum
		}
		if amount > p.Chips {
			return nil, ErrInsufficientChips
		}
		if amount < h.BigBlind && amount < p.Chips {
			return nil, fmt.Errorf("%w: opening bet must be at least %d", ErrBelowMinimum, h.BigBlind)
		}
		h.contribute(p, amount)
		h.HighBet = amount
		h.MinRaise = amount
		h.LastRaiseAmount = amount
		h.LastAggressor = seat
		h.reopenAction(seat)

	case Raise:
		if err := h.applyRaiseTo(p, amount); err != nil {
			return nil, err
		}

	case AllIn:
		target := p.CurrentBet + p.Chips
		if target > h.HighBet {
			if err := h.applyRaiseTo(p, target); err != nil {
				return nil, err
			}
		} else {
			h.contribute(p, p.Chips)
			p.acted = true
		}

	default:
		return nil, ErrIllegalAction
	}

	return h.advance(seat), nil
}

// applyRaiseTo implements raise-to semantics. A raise below the full minimum
// is only legal as the player's entire stack, and such an all-in short raise
// does not reopen action for players who already matched the prior high bet.
func (h *Hand) applyRaiseTo(p *HandPlayer, target int) error {
	if h.HighBet == 0 {
		return fmt.Errorf("%w: no bet to raise", ErrIllegalAction)
	}
	needed := target - p.CurrentBet
	if needed <= 0 || target <= h.HighBet {
		return fmt.Errorf("%w: raise must exceed current bet of %d", ErrBelowMinimum, h.HighBet)
	}
	if needed > p.Chips {
		return ErrInsufficientChips
	}
	fullRaise := target >= h.HighBet+h.LastRaiseAmount
	if !fullRaise && needed < p.Chips {
		return fmt.Errorf("%w: minimum raise is to %d", ErrBelowMinimum, h.HighBet+h.LastRaiseAmount)
	}
	h.contribute(p, needed)
	if fullRaise {
		h.LastRaiseAmount = target - h.HighBet
		h.MinRaise = h.LastRaiseAmount
		h.reopenAction(p.Seat)
	} else {
		p.acted = true
	}
	h.HighBet = target
	h.LastAggressor = p.Seat
	return nil
}

func (h *Hand) contribute(p *HandPlayer, amount int) {
	if amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.CurrentBet += amount
	p.TotalBet += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
}

// ForceFold folds seat immediately regardless of turn order. Used for
// disconnects, timeouts on disconnected seats, and host removals.
func (h *Hand) ForceFold(seat int) *StepResult {
	p := h.players[seat]
	if p == nil || p.Folded || !h.InBettingPhase() {
		return &StepResult{HandOver: h.Phase >= Showdown}
	}
	p.Folded = true
	p.acted = true
	return h.advance(seat)
}

// advance moves the hand forward after seat acted: fold-out detection, turn
// rotation, street advance and runout.
func (h *Hand) advance(seat int) *StepResult {
	res := &StepResult{}

	if h.unfoldedCount() == 1 {
		h.foldedOut = true
		h.ActorSeat = 0
		res.HandOver = true
		res.FoldedOut = true
		return res
	}

	for h.roundComplete() {
		if h.Phase == River {
			h.Phase = Showdown
			h.ActorSeat = 0
			res.HandOver = true
			return res
		}
		h.dealNextStreet(res)
		if h.activeCount() <= 1 {
			h.runOut(res)
			return res
		}
		h.ActorSeat = h.nextToAct(h.ButtonSeat)
		if h.ActorSeat == 0 {
			h.runOut(res)
			return res
		}
		return res
	}

	if seat == h.ActorSeat || h.players[h.ActorSeat].Folded || h.players[h.ActorSeat].AllIn {
		h.ActorSeat = h.nextToAct(h.ActorSeat)
	}
	if h.ActorSeat == 0 {
		h.runOut(res)
	}
	return res
}

// dealNextStreet resets round state and deals the next street's cards
func (h *Hand) dealNextStreet(res *StepResult) {
	for _, p := range h.players {
		p.CurrentBet = 0
		p.acted = false
	}
	h.HighBet = 0
	h.MinRaise = h.BigBlind
	h.LastRaiseAmount = h.BigBlind

	var cards []Card
	switch h.Phase {
	case Preflop:
		h.Phase = Flop
		cards = h.deck.DealBoard(3)
	case Flop:
		h.Phase = Turn
		cards = h.deck.DealBoard(1)
	case Turn:
		h.Phase = River
		cards = h.deck.DealBoard(1)
	}
	h.Board = append(h.Board, cards...)
	res.Streets = append(res.Streets, StreetDeal{Phase: h.Phase, Cards: cards})
}

// runOut deals every remaining street without betting and moves to showdown
func (h *Hand) runOut(res *StepResult) {
	for h.Phase != River {
		h.dealNextStreet(res)
	}
	h.Phase = Showdown
	h.ActorSeat = 0
	res.HandOver = true
}

// Reveal records a voluntary hole card reveal during showdown
func (h *Hand) Reveal(seat, index int) error {
	if h.Phase < Showdown {
		return fmt.Errorf("%w: reveal outside showdown", ErrIllegalAction)
	}
	p := h.players[seat]
	if p == nil || index < 0 || index >= len(p.HoleCards) {
		return ErrIllegalAction
	}
	for _, r := range p.Revealed {
		if r == index {
			return nil
		}
	}
	p.Revealed = append(p.Revealed, index)
	sort.Ints(p.Revealed)
	return nil
}

// PotResult is a settled pot with its winners
type PotResult struct {
	Pot
	Winners []int `json:"winners"`
}

// Settlement is the outcome of a hand
type Settlement struct {
	Pots          []PotResult
	Payouts       map[int]int // seat -> chips won
	WinnerSeat    int         // primary winner (main pot, largest share)
	Ranks         map[int]HandRank
	ShowdownOrder []int
	FoldedOut     bool
	Board         []Card
}

// Settle evaluates eligible hands pot by pot, splits ties with odd chips
// going one at a time to the seats nearest clockwise from the button, and
// credits winnings back to the hand players. Evaluation is skipped entirely
// on a fold-out.
func (h *Hand) Settle(eval Evaluator) *Settlement {
	pots := ComputePots(h.Players())
	s := &Settlement{
		Payouts: make(map[int]int),
		Ranks:   make(map[int]HandRank),
		Board:   h.Board,
	}

	if h.unfoldedCount() == 1 {
		s.FoldedOut = true
		var last int
		for _, p := range h.players {
			if !p.Folded {
				last = p.Seat
			}
		}
		for _, pot := range pots {
			s.Pots = append(s.Pots, PotResult{Pot: pot, Winners: []int{last}})
			s.Payouts[last] += pot.Amount
		}
		s.WinnerSeat = last
		h.credit(s.Payouts)
		h.Phase = Settled
		return s
	}

	for _, seat := range h.seats {
		p := h.players[seat]
		if !p.Folded {
			s.Ranks[seat] = eval.Rank(p.HoleCards, h.Board)
		}
	}
	s.ShowdownOrder = h.showdownOrder()

	for _, pot := range pots {
		winners := h.bestOf(pot.Eligible, s.Ranks)
		s.Pots = append(s.Pots, PotResult{Pot: pot, Winners: winners})
		share := pot.Amount / len(winners)
		remainder := pot.Amount % len(winners)
		for _, seat := range winners {
			s.Payouts[seat] += share
		}
		for _, seat := range h.oddChipOrder(winners) {
			if remainder == 0 {
				break
			}
			s.Payouts[seat]++
			remainder--
		}
	}
	if len(s.Pots) > 0 {
		best := -1
		for _, seat := range s.Pots[0].Winners {
			if s.Payouts[seat] > best {
				best = s.Payouts[seat]
				s.WinnerSeat = seat
			}
		}
	}
	h.credit(s.Payouts)
	h.Phase = Settled
	return s
}

func (h *Hand) credit(payouts map[int]int) {
	for seat, amount := range payouts {
		h.players[seat].Chips += amount
	}
}

func (h *Hand) bestOf(eligible []int, ranks map[int]HandRank) []int {
	var winners []int
	var best HandRank
	for _, seat := range eligible {
		rank, ok := ranks[seat]
		if !ok {
			continue
		}
		if len(winners) == 0 || rank.Beats(best) {
			best = rank
			winners = []int{seat}
		} else if rank.Ties(best) {
			winners = append(winners, seat)
		}
	}
	sort.Ints(winners)
	return winners
}

// oddChipOrder sorts seats by clockwise distance from the seat left of the
// button
func (h *Hand) oddChipOrder(seats []int) []int {
	out := append([]int(nil), seats...)
	dist := func(seat int) int {
		return ((seat - h.ButtonSeat - 1) % h.ringSize + h.ringSize) % h.ringSize
	}
	sort.Slice(out, func(i, j int) bool {
		return dist(out[i]) < dist(out[j])
	})
	return out
}

// showdownOrder lists unfolded seats with the last aggressor first, otherwise
// starting from the first unfolded seat left of the button.
func (h *Hand) showdownOrder() []int {
	start := h.LastAggressor
	if start == 0 || h.players[start] == nil || h.players[start].Folded {
		start = 0
		next := h.nextSeat(h.ButtonSeat)
		for i := 0; i < len(h.seats); i++ {
			if !h.players[next].Folded {
				start = next
				break
			}
			next = h.nextSeat(next)
		}
	}
	if start == 0 {
		return nil
	}
	order := []int{start}
	next := h.nextSeat(start)
	for next != start {
		if !h.players[next].Folded {
			order = append(order, next)
		}
		next = h.nextSeat(next)
	}
	return order
}
