package filters

import (
	"fmt"
)

// PreEmphasis implements the first-order pre-emphasis filter applied
// before mel-cepstral analysis. It compensates for the natural spectral
// roll-off of musical and vocal signals.
//
// Transfer function: H(z) = 1 - α*z^-1
// Difference equation: y[n] = x[n] - α*x[n-1]
//
// References:
//   - L.R. Rabiner, R.W. Schafer, "Digital Processing of Speech Signals",
//     Prentice-Hall, 1978, Chapter 4
type PreEmphasis struct {
	coefficient float64 // Pre-emphasis coefficient α
	lastSample  float64 // Previous input sample x[n-1]
}

// NewPreEmphasis creates a pre-emphasis filter with the given
// coefficient (0 < α < 1, typically 0.95-0.97).
func NewPreEmphasis(coefficient float64) (*PreEmphasis, error) {
	if coefficient <= 0.0 || coefficient >= 1.0 {
		return nil, fmt.Errorf("coefficient must be between 0 and 1, got %f", coefficient)
	}
	return &PreEmphasis{coefficient: coefficient}, nil
}

// Process applies pre-emphasis to a single sample
func (pe *PreEmphasis) Process(input float64) float64 {
	output := input - pe.coefficient*pe.lastSample
	pe.lastSample = input
	return output
}

// ProcessBuffer applies pre-emphasis to an entire buffer of samples
func (pe *PreEmphasis) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = pe.Process(sample)
	}
	return output
}

// Reset clears the filter's internal state
func (pe *PreEmphasis) Reset() {
	pe.lastSample = 0.0
}
