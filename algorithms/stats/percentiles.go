package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the p-th percentile (p between 0 and 1) using
// the empirical quantile of the sorted data. Returns 0 for empty input
// or out-of-range p.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 || p < 0 || p > 1 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// PercentileRange returns the spread between the high and low
// percentiles of the data, the building block for loudness-range and
// dynamic-range measurements.
func PercentileRange(data []float64, low, high float64) float64 {
	if len(data) == 0 || low >= high {
		return 0.0
	}

	return Percentile(data, high) - Percentile(data, low)
}
