package engine

import "github.com/lox/holdem-engine/poker"

// Evaluator ranks hands at showdown. The default implementation delegates
// to the poker package; tests may substitute their own.
type Evaluator interface {
	Evaluate(hole, community []poker.Card) (poker.HandResult, error)
	Compare(a, b poker.HandResult) int
}

type standardEvaluator struct{}

// NewEvaluator returns the standard seven-card evaluator.
func NewEvaluator() Evaluator {
	return standardEvaluator{}
}

func (standardEvaluator) Evaluate(hole, community []poker.Card) (poker.HandResult, error) {
	return poker.Evaluate(hole, community)
}

func (standardEvaluator) Compare(a, b poker.HandResult) int {
	return poker.Compare(a, b)
}
