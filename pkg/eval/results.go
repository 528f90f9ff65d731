package eval

import (
	"fmt"
	"sort"
	"strings"
)

// Results is the full report of one evaluation run: the ordered per-case
// results plus the aggregate summary. It is assembled once, after every case
// has finished, and never mutated.
type Results[I, O any] struct {
	Name    string
	Results []Result[I, O]
	Summary Summary
}

// Successful returns the results whose task completed, in original order.
func (r Results[I, O]) Successful() []Result[I, O] {
	return r.filter(func(res Result[I, O]) bool { return res.IsSuccess() })
}

// Failed returns the results whose task failed, in original order.
func (r Results[I, O]) Failed() []Result[I, O] {
	return r.filter(func(res Result[I, O]) bool { return !res.IsSuccess() })
}

// PartitionBySuccess groups the results by task success.
func (r Results[I, O]) PartitionBySuccess() map[bool][]Result[I, O] {
	return map[bool][]Result[I, O]{
		true:  r.Successful(),
		false: r.Failed(),
	}
}

// SortedByScore returns the results ordered by average score, highest first.
// Ties keep their original relative order.
func (r Results[I, O]) SortedByScore() []Result[I, O] {
	sorted := make([]Result[I, O], len(r.Results))
	copy(sorted, r.Results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AverageScore() > sorted[j].AverageScore()
	})
	return sorted
}

// WithMinimumScore returns the results whose average score meets the
// threshold, in original order.
func (r Results[I, O]) WithMinimumScore(threshold float64) []Result[I, O] {
	return r.filter(func(res Result[I, O]) bool { return res.AverageScore() >= threshold })
}

func (r Results[I, O]) filter(keep func(Result[I, O]) bool) []Result[I, O] {
	var out []Result[I, O]
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// Report renders a human-readable summary of the run.
func (r Results[I, O]) Report() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluation: %s\n", r.Name)
	sb.WriteString("=====================================\n\n")

	sb.WriteString("Summary:\n")
	fmt.Fprintf(&sb, "  Total: %d\n", r.Summary.TotalCount)
	fmt.Fprintf(&sb, "  Successful: %d\n", r.Summary.SuccessCount)
	fmt.Fprintf(&sb, "  Failed: %d\n", r.Summary.ErrorCount)
	fmt.Fprintf(&sb, "  Success Rate: %.2f%%\n", r.Summary.SuccessRate()*100)
	fmt.Fprintf(&sb, "  Avg Duration: %dms\n\n", r.Summary.AverageDuration.Milliseconds())

	if len(r.Summary.ScoreStatistics) > 0 {
		sb.WriteString("Score Statistics:\n")
		for _, name := range r.Summary.ScorerNames() {
			stats := r.Summary.ScoreStatistics[name]
			fmt.Fprintf(&sb, "  %s:\n", name)
			fmt.Fprintf(&sb, "    Mean: %.4f\n", stats.Mean)
			fmt.Fprintf(&sb, "    Min: %.4f\n", stats.Min)
			fmt.Fprintf(&sb, "    Max: %.4f\n", stats.Max)
			fmt.Fprintf(&sb, "    Median: %.4f\n", stats.Median)
			fmt.Fprintf(&sb, "    Std Dev: %.4f\n", stats.StdDev)
		}
	}

	return sb.String()
}
