package temporal

import (
	"math"

	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
)

// DynamicRange analyzes amplitude dynamics and statistics
type DynamicRange struct {
	envelopeExtractor *Envelope
}

// NewDynamicRange creates a new dynamic range analyzer
func NewDynamicRange() *DynamicRange {
	return &DynamicRange{
		envelopeExtractor: NewEnvelope(),
	}
}

// ComputeRange calculates dynamic range in dB between percentiles of the
// RMS envelope. Percentiles are given in [0, 1].
func (dr *DynamicRange) ComputeRange(signal []float64, lowPercentile, highPercentile float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	frameSize := 1024
	hopSize := 512
	rmsValues := dr.envelopeExtractor.ComputeRMS(signal, frameSize, hopSize)

	if len(rmsValues) == 0 {
		return 0.0
	}

	lowValue := stats.Percentile(rmsValues, lowPercentile)
	highValue := stats.Percentile(rmsValues, highPercentile)

	// Avoid log(0)
	if lowValue <= 0.0 {
		lowValue = 1e-10
	}
	if highValue <= 0.0 {
		return 0.0
	}

	return 20.0 * math.Log10(highValue/lowValue)
}

// ComputeCrestFactor calculates crest factor (peak-to-RMS ratio)
func (dr *DynamicRange) ComputeCrestFactor(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	peak := 0.0
	sumSquares := 0.0

	for _, sample := range signal {
		abs := math.Abs(sample)
		if abs > peak {
			peak = abs
		}
		sumSquares += sample * sample
	}

	rms := math.Sqrt(sumSquares / float64(len(signal)))

	if rms < 1e-10 {
		return 0.0
	}

	return peak / rms
}
