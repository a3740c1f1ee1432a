package temporal

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/dwood1999/tunescore-sub000/algorithms/common"
)

// TempoEstimation estimates tempo from an onset strength envelope using
// FFT-based autocorrelation. Harmonically related candidates (half and
// double time) are disambiguated toward a prior tempo.
type TempoEstimation struct {
	minBPM   float64
	maxBPM   float64
	priorBPM float64
}

// NewTempoEstimation creates a tempo estimator with the standard search
// range of 40-220 BPM and a 120 BPM prior.
func NewTempoEstimation() *TempoEstimation {
	return NewTempoEstimationWithRange(40.0, 220.0, 120.0)
}

// NewTempoEstimationWithRange creates a tempo estimator with a custom
// BPM search range and prior.
func NewTempoEstimationWithRange(minBPM, maxBPM, priorBPM float64) *TempoEstimation {
	return &TempoEstimation{
		minBPM:   minBPM,
		maxBPM:   maxBPM,
		priorBPM: priorBPM,
	}
}

// EstimateFromOnsetEnvelope estimates tempo in BPM from an onset strength
// envelope sampled at envelopeRate frames per second. Returns 0 BPM with
// zero confidence when no periodicity is found.
func (te *TempoEstimation) EstimateFromOnsetEnvelope(envelope []float64, envelopeRate float64) (float64, float64) {
	if len(envelope) < 8 || envelopeRate <= 0 {
		return 0.0, 0.0
	}

	// Remove DC so sustained energy does not mask periodicity
	mean := 0.0
	for _, v := range envelope {
		mean += v
	}
	mean /= float64(len(envelope))

	centered := make([]float64, len(envelope))
	for i, v := range envelope {
		centered[i] = v - mean
	}

	autocorr := te.autocorrelate(centered)
	if len(autocorr) == 0 {
		return 0.0, 0.0
	}

	// Convert BPM search range to lag range in envelope frames
	minLag := int(envelopeRate * 60.0 / te.maxBPM)
	maxLag := int(envelopeRate * 60.0 / te.minBPM)

	minLag = max(minLag, 1)
	maxLag = min(maxLag, len(autocorr)-2)

	if minLag >= maxLag {
		return 0.0, 0.0
	}

	type tempoCandidate struct {
		lag      float64
		strength float64
	}

	var candidates []tempoCandidate
	for lag := minLag; lag <= maxLag; lag++ {
		if autocorr[lag] > autocorr[lag-1] && autocorr[lag] >= autocorr[lag+1] && autocorr[lag] > 0 {
			refined := float64(lag) + te.parabolicOffset(autocorr, lag)
			candidates = append(candidates, tempoCandidate{lag: refined, strength: autocorr[lag]})
		}
	}

	if len(candidates) == 0 {
		return 0.0, 0.0
	}

	// Strongest autocorrelation peak
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.strength > best.strength {
			best = c
		}
	}

	bestBPM := 60.0 * envelopeRate / best.lag
	bestDist := math.Abs(bestBPM - te.priorBPM)

	// Prefer a harmonically related candidate closer to the prior when
	// its peak is nearly as strong (octave disambiguation)
	for _, c := range candidates {
		bpm := 60.0 * envelopeRate / c.lag
		ratio := bpm / bestBPM
		harmonic := math.Abs(ratio-2.0) < 0.16 || math.Abs(ratio-0.5) < 0.04
		if !harmonic {
			continue
		}
		if c.strength >= 0.8*best.strength && math.Abs(bpm-te.priorBPM) < bestDist {
			best = c
			bestBPM = bpm
			bestDist = math.Abs(bpm - te.priorBPM)
		}
	}

	confidence := common.Clamp(best.strength, 0.0, 1.0)

	return bestBPM, confidence
}

// EstimateBeatPhase finds the offset of the first beat in seconds by
// scanning envelope offsets against a pulse grid at the given tempo.
func (te *TempoEstimation) EstimateBeatPhase(envelope []float64, envelopeRate float64, bpm float64) float64 {
	if len(envelope) == 0 || envelopeRate <= 0 || bpm <= 0 {
		return 0.0
	}

	period := envelopeRate * 60.0 / bpm
	if period < 1 {
		return 0.0
	}

	bestOffset := 0
	bestScore := math.Inf(-1)

	for offset := 0; offset < int(period) && offset < len(envelope); offset++ {
		score := 0.0
		count := 0
		for pos := float64(offset); int(pos+0.5) < len(envelope); pos += period {
			score += envelope[int(pos+0.5)]
			count++
		}
		if count > 0 {
			score /= float64(count)
		}
		if score > bestScore {
			bestScore = score
			bestOffset = offset
		}
	}

	return float64(bestOffset) / envelopeRate
}

// autocorrelate computes the normalized autocorrelation of x via the
// Wiener-Khinchin theorem: FFT, power spectrum, inverse FFT. Zero
// padding to twice the length makes the circular result linear.
func (te *TempoEstimation) autocorrelate(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return []float64{}
	}

	m := common.NextPowerOfTwo(2 * n)
	padded := make([]float64, m)
	copy(padded, x)

	ft := fourier.NewFFT(m)
	coeffs := ft.Coefficients(nil, padded)

	power := make([]complex128, len(coeffs))
	for i, c := range coeffs {
		power[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}

	seq := ft.Sequence(nil, power)

	autocorr := seq[:n]
	if autocorr[0] < 1e-10 {
		return []float64{}
	}

	norm := autocorr[0]
	result := make([]float64, n)
	for i, v := range autocorr {
		result[i] = v / norm
	}

	return result
}

// parabolicOffset refines a peak position by fitting a parabola through
// the peak and its neighbors. Returns the fractional lag offset.
func (te *TempoEstimation) parabolicOffset(autocorr []float64, lag int) float64 {
	if lag <= 0 || lag >= len(autocorr)-1 {
		return 0.0
	}

	alpha := autocorr[lag-1]
	beta := autocorr[lag]
	gamma := autocorr[lag+1]

	denom := alpha - 2.0*beta + gamma
	if math.Abs(denom) < 1e-10 {
		return 0.0
	}

	offset := 0.5 * (alpha - gamma) / denom
	return common.Clamp(offset, -0.5, 0.5)
}
