package windowing

import (
	"math"
)

// generateHamming fills coefficients with a symmetric Hamming window:
// w[i] = 0.54 - 0.46 * cos(2*pi*i / (N-1))
//
// Better side-lobe suppression than Hann (-42.7 dB) at the cost of a
// nonzero pedestal at the edges.
func generateHamming(coefficients []float64) {
	n := len(coefficients)
	if n == 1 {
		coefficients[0] = 1.0
		return
	}

	denominator := float64(n - 1)
	for i := 0; i < n; i++ {
		coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
	}
}
