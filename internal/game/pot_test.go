package game

import (
	"reflect"
	"testing"
)

func TestComputePotsSingle(t *testing.T) {
	t.Parallel()

	players := []*HandPlayer{
		{Seat: 1, TotalBet: 50},
		{Seat: 2, TotalBet: 50},
		{Seat: 3, TotalBet: 50},
	}
	pots := ComputePots(players)
	if len(pots) != 1 {
		t.Fatalf("expected 1 pot, got %d", len(pots))
	}
	if pots[0].Amount != 150 {
		t.Errorf("pot amount = %d, want 150", pots[0].Amount)
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{1, 2, 3}) {
		t.Errorf("eligible = %v", pots[0].Eligible)
	}
}

func TestComputePotsLayered(t *testing.T) {
	t.Parallel()

	// Three all-ins at 20, 50 and 80: main pot 60 for everyone, side pot 60
	// for the two bigger stacks, final 30 for the biggest only.
	players := []*HandPlayer{
		{Seat: 1, TotalBet: 20, AllIn: true},
		{Seat: 2, TotalBet: 50, AllIn: true},
		{Seat: 3, TotalBet: 80, AllIn: true},
	}
	pots := ComputePots(players)
	if len(pots) != 3 {
		t.Fatalf("expected 3 pots, got %v", pots)
	}
	want := []Pot{
		{Amount: 60, Eligible: []int{1, 2, 3}},
		{Amount: 60, Eligible: []int{2, 3}},
		{Amount: 30, Eligible: []int{3}},
	}
	if !reflect.DeepEqual(pots, want) {
		t.Errorf("pots = %v, want %v", pots, want)
	}
}

func TestComputePotsFoldedContributor(t *testing.T) {
	t.Parallel()

	// Folded chips stay in the pot but the folder is never eligible
	players := []*HandPlayer{
		{Seat: 1, TotalBet: 30, Folded: true},
		{Seat: 2, TotalBet: 50},
		{Seat: 3, TotalBet: 50},
	}
	pots := ComputePots(players)
	if TotalPot(pots) != 130 {
		t.Fatalf("total = %d, want 130", TotalPot(pots))
	}
	for _, pot := range pots {
		for _, seat := range pot.Eligible {
			if seat == 1 {
				t.Errorf("folded seat 1 eligible in %v", pot)
			}
		}
	}
}

func TestComputePotsFoldedTopSliceMerged(t *testing.T) {
	t.Parallel()

	// The folder put in the most chips; the excess slice has no eligible
	// players and must fold back into the pot below it.
	players := []*HandPlayer{
		{Seat: 1, TotalBet: 100, Folded: true},
		{Seat: 2, TotalBet: 60, AllIn: true},
		{Seat: 3, TotalBet: 60, AllIn: true},
	}
	pots := ComputePots(players)
	if len(pots) != 1 {
		t.Fatalf("expected 1 pot, got %v", pots)
	}
	if pots[0].Amount != 220 {
		t.Errorf("amount = %d, want 220", pots[0].Amount)
	}
	if !reflect.DeepEqual(pots[0].Eligible, []int{2, 3}) {
		t.Errorf("eligible = %v", pots[0].Eligible)
	}
}

func TestComputePotsConservation(t *testing.T) {
	t.Parallel()

	// Pot totals always equal total contributions, whatever the layering
	cases := [][]*HandPlayer{
		{{Seat: 1, TotalBet: 5}, {Seat: 2, TotalBet: 10}},
		{{Seat: 1, TotalBet: 33, Folded: true}, {Seat: 2, TotalBet: 77}, {Seat: 3, TotalBet: 12, AllIn: true}},
		{{Seat: 1, TotalBet: 1}, {Seat: 2, TotalBet: 1}, {Seat: 3, TotalBet: 1}, {Seat: 4, TotalBet: 200}},
	}
	for i, players := range cases {
		contributed := 0
		for _, p := range players {
			contributed += p.TotalBet
		}
		if got := TotalPot(ComputePots(players)); got != contributed {
			t.Errorf("case %d: pot total %d != contributions %d", i, got, contributed)
		}
	}
}

func TestComputePotsEmpty(t *testing.T) {
	t.Parallel()

	if pots := ComputePots([]*HandPlayer{{Seat: 1}, {Seat: 2}}); pots != nil {
		t.Errorf("expected nil pots, got %v", pots)
	}
}
