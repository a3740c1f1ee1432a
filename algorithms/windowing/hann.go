package windowing

import (
	"math"
)

// generateHann fills coefficients with a symmetric Hann window:
// w[i] = 0.5 * (1 - cos(2*pi*i / (N-1)))
//
// The Hann window is the default analysis window: low spectral leakage
// (-31.5 dB side lobes) with a 4-bin main lobe.
func generateHann(coefficients []float64) {
	n := len(coefficients)
	if n == 1 {
		coefficients[0] = 1.0
		return
	}

	denominator := float64(n - 1)
	for i := 0; i < n; i++ {
		coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
	}
}
