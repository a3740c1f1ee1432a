package tonal

import (
	"math"
)

// PitchResult holds the pitch estimate for a single frame
type PitchResult struct {
	Pitch      float64 `json:"pitch"`      // Fundamental frequency in Hz, 0 when unvoiced
	Confidence float64 `json:"confidence"` // Confidence score (0-1)
	Voiced     bool    `json:"voiced"`     // Whether a periodic pitch was found
}

// PitchDetector implements the YIN fundamental frequency estimator.
//
// Reference:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency
//   estimator for speech and music"
type PitchDetector struct {
	sampleRate   int
	windowSize   int
	hopSize      int
	minFreq      float64
	maxFreq      float64
	yinThreshold float64
}

// NewPitchDetector creates a pitch detector with defaults suited to
// melodic content.
func NewPitchDetector(sampleRate int) *PitchDetector {
	return &PitchDetector{
		sampleRate:   sampleRate,
		windowSize:   2048,
		hopSize:      512,
		minFreq:      55.0,   // A1
		maxFreq:      2000.0, // Above most melody fundamentals
		yinThreshold: 0.15,
	}
}

// NewPitchDetectorWithParams creates a pitch detector with custom frame
// geometry and frequency range.
func NewPitchDetectorWithParams(sampleRate, windowSize, hopSize int, minFreq, maxFreq, yinThreshold float64) *PitchDetector {
	return &PitchDetector{
		sampleRate:   sampleRate,
		windowSize:   windowSize,
		hopSize:      hopSize,
		minFreq:      minFreq,
		maxFreq:      maxFreq,
		yinThreshold: yinThreshold,
	}
}

// DetectPitch estimates the fundamental frequency of a single frame.
// Unvoiced frames (no lag below the YIN threshold) return Pitch 0.
func (pd *PitchDetector) DetectPitch(frame []float64) PitchResult {
	n := len(frame)
	halfN := n / 2
	if halfN < 2 {
		return PitchResult{}
	}

	// Difference function
	diff := make([]float64, halfN)
	for tau := range halfN {
		sum := 0.0
		for j := range halfN {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function
	cmndf := make([]float64, halfN)
	cmndf[0] = 1.0

	runningSum := 0.0
	for tau := 1; tau < halfN; tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		} else {
			cmndf[tau] = 1.0
		}
	}

	// First local minimum below the absolute threshold
	minTau := -1
	for tau := 2; tau < halfN-1; tau++ {
		if cmndf[tau] < pd.yinThreshold && cmndf[tau] < cmndf[tau+1] {
			minTau = tau
			break
		}
	}

	if minTau <= 0 {
		return PitchResult{}
	}

	// Parabolic interpolation around the minimum for sub-sample accuracy
	period := pd.parabolicInterpolation(cmndf, minTau)
	if period <= 0 {
		return PitchResult{}
	}

	frequency := float64(pd.sampleRate) / period
	if frequency < pd.minFreq || frequency > pd.maxFreq {
		return PitchResult{}
	}

	confidence := 1.0 - cmndf[minTau]
	if confidence < 0 {
		confidence = 0
	}

	return PitchResult{
		Pitch:      frequency,
		Confidence: confidence,
		Voiced:     true,
	}
}

// Track estimates pitch over overlapping frames of a signal
func (pd *PitchDetector) Track(signal []float64) []PitchResult {
	if len(signal) < pd.windowSize || pd.hopSize <= 0 {
		return []PitchResult{}
	}

	numFrames := (len(signal)-pd.windowSize)/pd.hopSize + 1
	results := make([]PitchResult, numFrames)

	for i := range numFrames {
		startIdx := i * pd.hopSize
		endIdx := startIdx + pd.windowSize

		if endIdx > len(signal) {
			break
		}

		results[i] = pd.DetectPitch(signal[startIdx:endIdx])
	}

	return results
}

// parabolicInterpolation refines the minimum location by fitting a
// parabola through the minimum and its neighbors
func (pd *PitchDetector) parabolicInterpolation(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	y1 := data[peakIdx-1]
	y2 := data[peakIdx]
	y3 := data[peakIdx+1]

	a := (y1 - 2*y2 + y3) / 2
	b := (y3 - y1) / 2

	if math.Abs(a) < 1e-10 {
		return float64(peakIdx)
	}

	xPeak := -b / (2 * a)
	if xPeak < -0.5 {
		xPeak = -0.5
	} else if xPeak > 0.5 {
		xPeak = 0.5
	}

	return float64(peakIdx) + xPeak
}
