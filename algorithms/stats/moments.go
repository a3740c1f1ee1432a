package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Basic moment statistics used across the analysis packages, backed by
// gonum for numerical robustness. Degenerate inputs return 0 by
// convention rather than NaN.

// Mean calculates the arithmetic mean of a slice
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance of a slice
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.Variance(data, nil)
}

// StdDev calculates the sample standard deviation
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return math.Sqrt(Variance(data))
}

// MeanStd returns mean and sample standard deviation in one pass over
// the same slice, the aggregate pair reported for every per-frame
// descriptor.
func MeanStd(data []float64) (float64, float64) {
	return Mean(data), StdDev(data)
}
