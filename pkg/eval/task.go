// Package eval runs named sets of test cases through a task function and a
// list of scorers, capturing per-case failures without aborting the batch and
// producing an aggregate statistical report.
package eval

import "context"

// Task is the function under evaluation. It maps one test case input to an
// output and may fail; the engine records the failure on that case only.
type Task[I, O any] func(ctx context.Context, input I) (O, error)

// Scorer rates an (input, output) pair with a numeric score.
type Scorer[I, O any] interface {
	// Name identifies the scorer in summaries and reports.
	Name() string
	// Score rates the pair. A returned error drops the score for this case
	// without failing it.
	Score(ctx context.Context, input I, output O) (float64, error)
}

// ScoreFunc adapts a plain function to a scoring capability.
type ScoreFunc[I, O any] func(ctx context.Context, input I, output O) (float64, error)

// NewScorer builds a Scorer from a name and a score function.
func NewScorer[I, O any](name string, fn ScoreFunc[I, O]) Scorer[I, O] {
	return funcScorer[I, O]{name: name, fn: fn}
}

type funcScorer[I, O any] struct {
	name string
	fn   ScoreFunc[I, O]
}

func (s funcScorer[I, O]) Name() string { return s.name }

func (s funcScorer[I, O]) Score(ctx context.Context, input I, output O) (float64, error) {
	return s.fn(ctx, input, output)
}
