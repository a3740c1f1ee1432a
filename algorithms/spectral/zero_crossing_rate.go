package spectral

// ZeroCrossingRate calculates the rate of sign changes in a signal.
// High ZCR indicates noisy or percussive content, low ZCR indicates
// tonal content.
type ZeroCrossingRate struct{}

// NewZeroCrossingRate creates a new zero crossing rate calculator
func NewZeroCrossingRate() *ZeroCrossingRate {
	return &ZeroCrossingRate{}
}

// ComputeNormalized calculates normalized ZCR (0-1 range)
// Useful for content-agnostic comparison
func (zcr *ZeroCrossingRate) ComputeNormalized(frame []float64) float64 {
	if len(frame) < 2 {
		return 0.0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		// Check for sign change (zero crossing)
		if (frame[i-1] >= 0 && frame[i] < 0) || (frame[i-1] < 0 && frame[i] >= 0) {
			crossings++
		}
	}

	// Normalize by maximum possible crossings (alternating signal)
	maxCrossings := len(frame) - 1
	return float64(crossings) / float64(maxCrossings)
}
