package eval

import "time"

// Summary aggregates the per-case results of one evaluation run.
type Summary struct {
	TotalCount      int
	SuccessCount    int
	ErrorCount      int
	AverageDuration time.Duration
	ScoreStatistics map[string]Statistics

	scorerOrder []string
}

// SuccessRate returns the fraction of cases that succeeded, or 0 when the run
// was empty.
func (s Summary) SuccessRate() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCount)
}

// ErrorRate returns the fraction of cases that failed, or 0 when the run was
// empty.
func (s Summary) ErrorRate() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.TotalCount)
}

// ScorerNames returns the keys of ScoreStatistics in order of first
// appearance across the successful results.
func (s Summary) ScorerNames() []string {
	names := make([]string, len(s.scorerOrder))
	copy(names, s.scorerOrder)
	return names
}

// newSummary builds the aggregate view of a completed run. Score statistics
// cover successful results only; a scorer name appears only if at least one
// successful case carries a score for it.
func newSummary[I, O any](results []Result[I, O], scorerNames []string) Summary {
	var errorCount int
	var totalDuration time.Duration
	for _, r := range results {
		if !r.IsSuccess() {
			errorCount++
		}
		totalDuration += r.Duration
	}

	var averageDuration time.Duration
	if len(results) > 0 {
		averageDuration = totalDuration / time.Duration(len(results))
	}

	stats := make(map[string]Statistics)
	var order []string
	for _, name := range scorerNames {
		var values []float64
		for _, r := range results {
			if !r.IsSuccess() {
				continue
			}
			if score, ok := r.Scores[name]; ok {
				values = append(values, score)
			}
		}
		if len(values) == 0 {
			continue
		}
		stats[name] = computeStatistics(values)
		order = append(order, name)
	}

	return Summary{
		TotalCount:      len(results),
		SuccessCount:    len(results) - errorCount,
		ErrorCount:      errorCount,
		AverageDuration: averageDuration,
		ScoreStatistics: stats,
		scorerOrder:     order,
	}
}
