package game

import (
	"errors"
	"math/rand"
	"testing"
)

func newTestPlayers(chips ...int) []*HandPlayer {
	players := make([]*HandPlayer, len(chips))
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for i, c := range chips {
		players[i] = &HandPlayer{UserID: names[i], Seat: i + 1, Chips: c}
	}
	return players
}

func TestNewHandBlindsAndDeal(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, res, err := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Streets) != 0 || res.HandOver {
		t.Errorf("unexpected immediate result: %+v", res)
	}

	if h.SBSeat != 2 || h.BBSeat != 3 {
		t.Errorf("blinds at %d/%d, want 2/3", h.SBSeat, h.BBSeat)
	}
	if h.Player(2).Chips != 995 || h.Player(2).TotalBet != 5 {
		t.Errorf("small blind not posted: %+v", h.Player(2))
	}
	if h.Player(3).Chips != 990 || h.Player(3).TotalBet != 10 {
		t.Errorf("big blind not posted: %+v", h.Player(3))
	}
	if h.ActorSeat != 1 {
		t.Errorf("first actor = %d, want 1", h.ActorSeat)
	}
	for _, p := range h.Players() {
		if len(p.HoleCards) != 2 {
			t.Errorf("seat %d has %d hole cards", p.Seat, len(p.HoleCards))
		}
	}
	if total := TotalPot(h.Pots()); total != 15 {
		t.Errorf("initial pot = %d, want 15", total)
	}
}

func TestHeadsUpButtonActsFirst(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, err := NewHand(1, newTestPlayers(1000, 1000), 6, 1, 5, 10, deck)
	if err != nil {
		t.Fatal(err)
	}
	// Heads-up the button posts the small blind and opens the preflop action
	if h.SBSeat != 1 || h.BBSeat != 2 {
		t.Errorf("blinds at %d/%d, want 1/2", h.SBSeat, h.BBSeat)
	}
	if h.ActorSeat != 1 {
		t.Errorf("first actor = %d, want button", h.ActorSeat)
	}
}

func TestHeadsUpPostflopButtonActsLast(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, err := NewHand(1, newTestPlayers(1000, 1000), 6, 1, 5, 10, deck)
	if err != nil {
		t.Fatal(err)
	}

	// Button completes, big blind checks its option
	if _, err := h.Apply(1, Call, 0); err != nil {
		t.Fatal(err)
	}
	res, err := h.Apply(2, Check, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Streets) != 1 || res.Streets[0].Phase != Flop {
		t.Fatalf("expected flop, got %+v", res.Streets)
	}

	// Postflop the order flips: the big blind opens, the button closes
	if h.ActorSeat != 2 {
		t.Fatalf("postflop actor = %d, want big blind", h.ActorSeat)
	}
	res, err = h.Apply(2, Check, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Streets) != 0 {
		t.Fatalf("big blind's check must not close the street: %+v", res.Streets)
	}
	if h.ActorSeat != 1 {
		t.Fatalf("actor = %d, want button to act last", h.ActorSeat)
	}
	res, err = h.Apply(1, Check, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Streets) != 1 || res.Streets[0].Phase != Turn {
		t.Fatalf("button's check should deal the turn, got %+v", res.Streets)
	}
}

func TestBigBlindOption(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)

	if _, err := h.Apply(1, Call, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Apply(2, Call, 0); err != nil {
		t.Fatal(err)
	}

	// Everyone limped: the big blind still gets its option
	if h.ActorSeat != 3 {
		t.Fatalf("actor = %d, want big blind", h.ActorSeat)
	}
	if !h.CanCheck(3) {
		t.Error("big blind should be able to check its option")
	}
	res, err := h.Apply(3, Check, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Streets) != 1 || res.Streets[0].Phase != Flop || len(res.Streets[0].Cards) != 3 {
		t.Fatalf("expected flop, got %+v", res.Streets)
	}
	// Postflop action starts left of the button
	if h.ActorSeat != 2 {
		t.Errorf("postflop actor = %d, want 2", h.ActorSeat)
	}
	if h.HighBet != 0 {
		t.Errorf("high bet not reset: %d", h.HighBet)
	}
}

func TestFoldOut(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)

	if _, err := h.Apply(1, Fold, 0); err != nil {
		t.Fatal(err)
	}
	res, err := h.Apply(2, Fold, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HandOver || !res.FoldedOut {
		t.Fatalf("expected fold-out, got %+v", res)
	}
	if !h.FoldedOut() {
		t.Error("hand should report folded out")
	}
	if h.ActorSeat != 0 {
		t.Errorf("actor = %d after fold-out", h.ActorSeat)
	}

	// No showdown: the pot moves without any evaluation
	s := h.Settle(nil)
	if !s.FoldedOut || s.WinnerSeat != 3 {
		t.Fatalf("settlement = %+v", s)
	}
	if s.Payouts[3] != 15 {
		t.Errorf("payout = %d, want 15", s.Payouts[3])
	}
	if h.Player(3).Chips != 1005 {
		t.Errorf("winner chips = %d, want 1005", h.Player(3).Chips)
	}
	if len(s.Ranks) != 0 {
		t.Errorf("fold-out should not rank hands: %v", s.Ranks)
	}
}

func TestShortAllInRaiseDoesNotReopen(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 45), 6, 1, 5, 10, deck)

	// Full raise to 30 makes the next full raise 50
	if _, err := h.Apply(1, Raise, 30); err != nil {
		t.Fatal(err)
	}
	if h.LastRaiseAmount != 20 {
		t.Fatalf("last raise = %d, want 20", h.LastRaiseAmount)
	}
	if _, err := h.Apply(2, Fold, 0); err != nil {
		t.Fatal(err)
	}

	// The big blind shoves 45 total: above the high bet but short of a full
	// raise. Legal only because it is the entire stack.
	if _, err := h.Apply(3, AllIn, 0); err != nil {
		t.Fatal(err)
	}
	if h.HighBet != 45 {
		t.Fatalf("high bet = %d, want 45", h.HighBet)
	}
	if h.LastRaiseAmount != 20 {
		t.Errorf("short all-in changed the raise increment: %d", h.LastRaiseAmount)
	}

	// Seat 1 already acted but must still match the extra 15
	if h.ActorSeat != 1 {
		t.Fatalf("actor = %d, want 1", h.ActorSeat)
	}
	res, err := h.Apply(1, Call, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Only all-in players remain, so the board runs out
	if !res.HandOver {
		t.Fatalf("expected runout, got %+v", res)
	}
	if len(res.Streets) != 3 {
		t.Errorf("streets dealt = %d, want 3", len(res.Streets))
	}
	if h.Phase != Showdown {
		t.Errorf("phase = %v, want showdown", h.Phase)
	}
}

func TestShortBigBlindIsAllIn(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 4), 6, 1, 5, 10, deck)

	bb := h.Player(3)
	if !bb.AllIn || bb.TotalBet != 4 || bb.Chips != 0 {
		t.Errorf("short big blind not all-in: %+v", bb)
	}
	// High bet stays at the full big blind
	if h.HighBet != 10 {
		t.Errorf("high bet = %d, want 10", h.HighBet)
	}
}

func TestIllegalActions(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)

	if _, err := h.Apply(2, Call, 0); !errors.Is(err, ErrOutOfTurn) {
		t.Errorf("out-of-turn call: %v", err)
	}
	if _, err := h.Apply(1, Check, 0); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("check facing a bet: %v", err)
	}
	if _, err := h.Apply(1, Raise, 15); !errors.Is(err, ErrBelowMinimum) {
		t.Errorf("raise below minimum: %v", err)
	}
	if _, err := h.Apply(1, Raise, 5000); !errors.Is(err, ErrInsufficientChips) {
		t.Errorf("raise beyond stack: %v", err)
	}
	if _, err := h.Apply(1, Bet, 50); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("bet with a live bet outstanding: %v", err)
	}
}

func TestForceFoldRotatesAction(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)

	res := h.ForceFold(1)
	if res.HandOver {
		t.Fatalf("hand should continue: %+v", res)
	}
	if !h.Player(1).Folded {
		t.Error("seat 1 not folded")
	}
	if h.ActorSeat != 2 {
		t.Errorf("actor = %d, want 2", h.ActorSeat)
	}

	// Folding a seat that is not the actor must not steal the turn
	res = h.ForceFold(3)
	if !res.HandOver || !res.FoldedOut {
		t.Fatalf("expected fold-out once only seat 2 remains: %+v", res)
	}
}

func TestSplitPotOddChip(t *testing.T) {
	t.Parallel()

	// Board plays for both live hands; seat 2 folds its small blind leaving
	// an odd 25-chip pot split between seats 1 and 3.
	deck := NewStackedDeck(
		MustCard("2c"), MustCard("3c"), // seat 1
		MustCard("4h"), MustCard("5h"), // seat 2
		MustCard("2d"), MustCard("3d"), // seat 3
		MustCard("As"), MustCard("Ks"), MustCard("Qs"), // flop
		MustCard("Js"), MustCard("Ts"), // turn, river
	)
	h, _, err := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		seat   int
		action Action
	}{
		{1, Call}, {2, Fold}, {3, Check}, // preflop
		{3, Check}, {1, Check}, // flop
		{3, Check}, {1, Check}, // turn
		{3, Check}, {1, Check}, // river
	}
	for _, st := range steps {
		if _, err := h.Apply(st.seat, st.action, 0); err != nil {
			t.Fatalf("seat %d %v: %v", st.seat, st.action, err)
		}
	}
	if h.Phase != Showdown {
		t.Fatalf("phase = %v, want showdown", h.Phase)
	}

	s := h.Settle(NewEvaluator())
	if len(s.Pots) != 1 || len(s.Pots[0].Winners) != 2 {
		t.Fatalf("expected one split pot, got %+v", s.Pots)
	}
	// The odd chip goes to the winner nearest clockwise from the button
	if s.Payouts[3] != 13 || s.Payouts[1] != 12 {
		t.Errorf("payouts = %v, want 3:13 1:12", s.Payouts)
	}
	total := 0
	for _, amount := range s.Payouts {
		total += amount
	}
	if total != 25 {
		t.Errorf("payout total = %d, want 25", total)
	}
}

func TestSettlementSidePots(t *testing.T) {
	t.Parallel()

	// Short stack wins the main pot only; the side pot goes to the better of
	// the two covering stacks.
	deck := NewStackedDeck(
		MustCard("2h"), MustCard("7d"), // seat 1: nothing
		MustCard("Kc"), MustCard("Kd"), // seat 2: kings
		MustCard("Ac"), MustCard("Ad"), // seat 3: aces (short stack)
		MustCard("2s"), MustCard("8h"), MustCard("9c"),
		MustCard("Jh"), MustCard("4d"),
	)
	h, _, err := NewHand(1, newTestPlayers(200, 200, 50), 6, 1, 5, 10, deck)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := h.Apply(1, Raise, 200); err != nil { // shove
		t.Fatal(err)
	}
	if _, err := h.Apply(2, Call, 0); err != nil {
		t.Fatal(err)
	}
	res, err := h.Apply(3, Call, 0) // all-in for 50
	if err != nil {
		t.Fatal(err)
	}
	if !res.HandOver {
		t.Fatalf("expected runout, got %+v", res)
	}

	s := h.Settle(NewEvaluator())
	if len(s.Pots) != 2 {
		t.Fatalf("expected main and side pot, got %+v", s.Pots)
	}
	// Main pot 150 to the aces, side pot 300 to the kings
	if s.Payouts[3] != 150 {
		t.Errorf("seat 3 payout = %d, want 150", s.Payouts[3])
	}
	if s.Payouts[2] != 300 {
		t.Errorf("seat 2 payout = %d, want 300", s.Payouts[2])
	}
	if h.Player(3).Chips != 150 || h.Player(2).Chips != 300 || h.Player(1).Chips != 0 {
		t.Errorf("final stacks = %d/%d/%d", h.Player(1).Chips, h.Player(2).Chips, h.Player(3).Chips)
	}
}

func TestChipConservationAcrossHand(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(7)))
	players := newTestPlayers(500, 300, 800, 100)
	h, _, err := NewHand(1, players, 6, 2, 5, 10, deck)
	if err != nil {
		t.Fatal(err)
	}

	// Everybody shoves
	for h.ActorSeat != 0 {
		if _, err := h.Apply(h.ActorSeat, AllIn, 0); err != nil {
			t.Fatal(err)
		}
	}
	h.Settle(NewEvaluator())

	total := 0
	for _, p := range h.Players() {
		total += p.Chips
	}
	if total != 1700 {
		t.Errorf("chips after settlement = %d, want 1700", total)
	}
}

func TestRevealAfterShowdown(t *testing.T) {
	t.Parallel()

	deck := NewDeck(rand.New(rand.NewSource(42)))
	h, _, _ := NewHand(1, newTestPlayers(1000, 1000, 1000), 6, 1, 5, 10, deck)

	if err := h.Reveal(1, 0); err == nil {
		t.Error("reveal before showdown should fail")
	}

	h.Apply(1, Fold, 0)
	h.Apply(2, Fold, 0)
	h.Settle(nil)

	if err := h.Reveal(3, 0); err != nil {
		t.Fatalf("reveal after settlement: %v", err)
	}
	if err := h.Reveal(3, 0); err != nil {
		t.Errorf("repeated reveal should be idempotent: %v", err)
	}
	if got := h.Player(3).Revealed; len(got) != 1 || got[0] != 0 {
		t.Errorf("revealed = %v", got)
	}
	if err := h.Reveal(3, 5); err == nil {
		t.Error("reveal with bad index should fail")
	}
}
