package game

import "testing"

func TestEvaluatorOrdering(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	board := []Card{
		MustCard("Kh"), MustCard("Qs"), MustCard("2c"),
		MustCard("7d"), MustCard("9h"),
	}

	aces := eval.Rank([]Card{MustCard("As"), MustCard("Ad")}, board)
	kings := eval.Rank([]Card{MustCard("Kc"), MustCard("Kd")}, board)
	nothing := eval.Rank([]Card{MustCard("3s"), MustCard("4d")}, board)

	if !kings.Beats(aces) {
		t.Error("trip kings should beat a pair of aces")
	}
	if !aces.Beats(nothing) {
		t.Error("pair of aces should beat high card")
	}
	if aces.Beats(aces) {
		t.Error("a rank must not beat itself")
	}
	if !aces.Ties(aces) {
		t.Error("identical rank should tie")
	}
}

func TestEvaluatorSuitsIrrelevantForTies(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	board := []Card{
		MustCard("As"), MustCard("Ks"), MustCard("Qs"),
		MustCard("Jh"), MustCard("9d"),
	}

	a := eval.Rank([]Card{MustCard("2c"), MustCard("3c")}, board)
	b := eval.Rank([]Card{MustCard("2d"), MustCard("3d")}, board)
	if !a.Ties(b) {
		t.Errorf("board-playing hands should tie: %v vs %v", a, b)
	}
}

func TestEvaluatorCategory(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	board := []Card{
		MustCard("Ah"), MustCard("Kh"), MustCard("Qh"),
		MustCard("2c"), MustCard("7d"),
	}
	r := eval.Rank([]Card{MustCard("Jh"), MustCard("Th")}, board)
	if r.Category == "" {
		t.Error("category should be populated")
	}
}
