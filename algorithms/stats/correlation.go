package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Correlation calculates the Pearson correlation coefficient between two
// equal-length series. Returns 0 for mismatched, empty, or constant
// inputs (gonum would return NaN for zero variance).
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0.0
	}

	if Variance(x) < 1e-10 || Variance(y) < 1e-10 {
		return 0.0
	}

	return stat.Correlation(x, y, nil)
}

// ShiftedCorrelation correlates x against y rotated left by shift
// positions. Used to match a pitch-class histogram against a key profile
// template at each of the 12 tonic positions.
func ShiftedCorrelation(x, y []float64, shift int) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0.0
	}

	n := len(y)
	shift = ((shift % n) + n) % n

	rotated := make([]float64, n)
	for i := 0; i < n; i++ {
		rotated[i] = y[(i+shift)%n]
	}

	return Correlation(x, rotated)
}
