package eval

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyInput is returned when statistics are requested for an empty score
// sequence. The aggregation step only feeds scorer names with at least one
// value, so hitting this from the engine indicates a bug.
var ErrEmptyInput = errors.New("statistics require at least one value")

// Statistics summarises a sequence of scores.
type Statistics struct {
	Mean   float64
	Min    float64
	Max    float64
	Median float64
	StdDev float64
	Count  int
}

// NewStatistics computes summary statistics over a non-empty sequence of
// values. The standard deviation is the population standard deviation; the
// median of an even-length sequence averages the two middle elements.
func NewStatistics(values []float64) (Statistics, error) {
	if len(values) == 0 {
		return Statistics{}, ErrEmptyInput
	}
	return computeStatistics(values), nil
}

func computeStatistics(values []float64) Statistics {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(sorted))

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return Statistics{
		Mean:   mean,
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: median,
		StdDev: math.Sqrt(variance),
		Count:  len(sorted),
	}
}

// Range returns max - min.
func (s Statistics) Range() float64 {
	return s.Max - s.Min
}

// CoefficientOfVariation returns stddev / mean, or 0 when the mean is zero.
func (s Statistics) CoefficientOfVariation() float64 {
	if s.Mean == 0 {
		return 0
	}
	return s.StdDev / s.Mean
}

func (s Statistics) String() string {
	return fmt.Sprintf("ScoreStats{mean=%.4f, min=%.4f, max=%.4f, median=%.4f, stdDev=%.4f, n=%d}",
		s.Mean, s.Min, s.Max, s.Median, s.StdDev, s.Count)
}
