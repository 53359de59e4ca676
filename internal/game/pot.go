package game

import "sort"

// Pot is a main or side pot. Eligible holds the seat numbers that may win it,
// in ascending order. Pots are listed main first; eligibility only shrinks
// across later pots.
type Pot struct {
	Amount   int   `json:"amount"`
	Eligible []int `json:"eligible"`
}

// ComputePots derives the layered pot list from per-player hand contributions.
// It is a pure function of the players' TotalBet and Folded fields: folded
// players contribute chips but are never eligible. The sum of pot amounts
// always equals the sum of contributions.
func ComputePots(players []*HandPlayer) []Pot {
	levelSet := make(map[int]bool)
	for _, p := range players {
		if p.TotalBet > 0 {
			levelSet[p.TotalBet] = true
		}
	}
	if len(levelSet) == 0 {
		return nil
	}

	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	var pots []Pot
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, p := range players {
			if p.TotalBet > prev {
				slice := p.TotalBet
				if slice > level {
					slice = level
				}
				pot.Amount += slice - prev
			}
			if !p.Folded && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		sort.Ints(pot.Eligible)
		if pot.Amount == 0 {
			prev = level
			continue
		}
		if len(pot.Eligible) == 0 {
			// Top slice belongs entirely to folded contributors; merge it
			// into the previous pot so every pot stays winnable.
			if len(pots) > 0 {
				pots[len(pots)-1].Amount += pot.Amount
			} else {
				for _, p := range players {
					if !p.Folded {
						pot.Eligible = append(pot.Eligible, p.Seat)
					}
				}
				sort.Ints(pot.Eligible)
				pots = append(pots, pot)
			}
			prev = level
			continue
		}
		pots = append(pots, pot)
		prev = level
	}
	return pots
}

// TotalPot sums all pot amounts
func TotalPot(pots []Pot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
