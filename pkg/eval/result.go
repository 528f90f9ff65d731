package eval

import "time"

// Result records the outcome of one test case. Exactly one of Output and Err
// holds: a failed task leaves Output at its zero value and Scores empty.
type Result[I, O any] struct {
	Input    I
	Output   O
	Scores   map[string]float64
	Duration time.Duration
	Err      error
}

// IsSuccess reports whether the task completed without failing.
func (r Result[I, O]) IsSuccess() bool {
	return r.Err == nil
}

// AverageScore returns the mean across all scores, or 0 when no scorer
// reported for this case.
func (r Result[I, O]) AverageScore() float64 {
	if len(r.Scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range r.Scores {
		sum += v
	}
	return sum / float64(len(r.Scores))
}

// Score returns the score reported by the named scorer for this case.
func (r Result[I, O]) Score(name string) (float64, bool) {
	score, ok := r.Scores[name]
	return score, ok
}
