package game

import (
	chp "github.com/chehsunliu/poker"
)

// HandRank is the result of evaluating a player's best five-card hand.
// Score follows the evaluator's convention: lower is stronger.
type HandRank struct {
	Score    int32
	Category string
}

// Beats reports whether h is strictly stronger than other
func (h HandRank) Beats(other HandRank) bool {
	return h.Score < other.Score
}

// Ties reports whether h and other are equal in strength
func (h HandRank) Ties(other HandRank) bool {
	return h.Score == other.Score
}

// Evaluator ranks hole cards against a board. The production implementation
// wraps chehsunliu/poker; tests may substitute a deterministic ranker.
type Evaluator interface {
	Rank(hole []Card, board []Card) HandRank
}

type libEvaluator struct{}

// NewEvaluator returns the chehsunliu/poker-backed evaluator
func NewEvaluator() Evaluator {
	return libEvaluator{}
}

func (libEvaluator) Rank(hole []Card, board []Card) HandRank {
	cards := make([]chp.Card, 0, len(hole)+len(board))
	for _, c := range hole {
		cards = append(cards, chp.NewCard(c.String()))
	}
	for _, c := range board {
		cards = append(cards, chp.NewCard(c.String()))
	}
	score := chp.Evaluate(cards)
	return HandRank{
		Score:    score,
		Category: chp.RankString(score),
	}
}
