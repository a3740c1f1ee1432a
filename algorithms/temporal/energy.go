package temporal

import (
	"math"

	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
)

// Energy computes track-level loudness measures from signal energy.
type Energy struct {
	sampleRate int
	envelope   *Envelope
}

// NewEnergy creates a new energy calculator
func NewEnergy(sampleRate int) *Energy {
	return &Energy{
		sampleRate: sampleRate,
		envelope:   NewEnvelope(),
	}
}

// ComputeRMS calculates the RMS amplitude of the whole signal
func (e *Energy) ComputeRMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	sumSquares := 0.0
	for _, sample := range signal {
		sumSquares += sample * sample
	}

	return math.Sqrt(sumSquares / float64(len(signal)))
}

// ComputeLoudness calculates overall loudness in dBFS, floored at -70 dB
// so silence stays finite.
func (e *Energy) ComputeLoudness(signal []float64) float64 {
	rms := e.ComputeRMS(signal)
	if rms < 1e-10 {
		return -70.0
	}

	loudness := 20.0 * math.Log10(rms)
	return math.Max(loudness, -70.0)
}

// ComputeMomentaryLoudness calculates loudness over 400ms windows with
// 25% hop, in the style of EBU R128 momentary loudness.
func (e *Energy) ComputeMomentaryLoudness(signal []float64) []float64 {
	if len(signal) == 0 || e.sampleRate <= 0 {
		return []float64{}
	}

	windowSize := int(0.4 * float64(e.sampleRate)) // 400ms
	hopSize := windowSize / 4
	if hopSize <= 0 {
		hopSize = 1
	}

	if len(signal) < windowSize {
		windowSize = len(signal)
	}

	rmsValues := e.envelope.ComputeRMS(signal, windowSize, hopSize)
	loudness := make([]float64, len(rmsValues))

	for i, rms := range rmsValues {
		if rms > 1e-10 {
			loudness[i] = -0.691 + 10.0*math.Log10(rms*rms)
		} else {
			loudness[i] = -70.0 // Silence threshold
		}
	}

	return loudness
}

// ComputeLoudnessRange calculates the loudness range in LU as the spread
// between the 10th and 95th percentile of momentary loudness.
func (e *Energy) ComputeLoudnessRange(signal []float64) float64 {
	loudnessValues := e.ComputeMomentaryLoudness(signal)
	if len(loudnessValues) == 0 {
		return 0.0
	}

	return stats.PercentileRange(loudnessValues, 0.10, 0.95)
}
