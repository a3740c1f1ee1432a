package temporal

import (
	"github.com/dwood1999/tunescore-sub000/algorithms/common"
	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
)

// OnsetDetection detects note/event onsets from an STFT magnitude
// spectrogram using rectified spectral flux as the onset strength signal.
type OnsetDetection struct {
	spectralFlux *spectral.SpectralFlux
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection() *OnsetDetection {
	return &OnsetDetection{
		spectralFlux: spectral.NewSpectralFlux(),
	}
}

// ComputeOnsetEnvelope calculates the normalized onset strength envelope
// from a magnitude spectrogram. The envelope has one value per frame
// transition and lies in [0, 1].
func (od *OnsetDetection) ComputeOnsetEnvelope(spectrogram [][]float64) []float64 {
	flux := od.spectralFlux.Compute(spectrogram)
	if len(flux) == 0 {
		return []float64{}
	}

	return common.MinMaxNormalize(flux)
}

// AdaptiveThreshold calculates a peak picking threshold as mean plus k
// standard deviations of the onset envelope.
func (od *OnsetDetection) AdaptiveThreshold(envelope []float64, k float64) float64 {
	if len(envelope) == 0 {
		return 0.0
	}

	mean, std := stats.MeanStd(envelope)
	return mean + k*std
}

// DetectOnsetFrames finds onset positions as frame indices into the
// envelope. minInterval is the minimum spacing between onsets in seconds;
// thresholdK sets the adaptive threshold in std devs above the mean;
// hopSize and sampleRate relate envelope frames to time.
func (od *OnsetDetection) DetectOnsetFrames(envelope []float64, hopSize, sampleRate int, minInterval, thresholdK float64) []int {
	if len(envelope) < 3 || hopSize <= 0 || sampleRate <= 0 {
		return []int{}
	}

	minIntervalFrames := int(minInterval * float64(sampleRate) / float64(hopSize))
	if minIntervalFrames < 1 {
		minIntervalFrames = 1
	}

	threshold := od.AdaptiveThreshold(envelope, thresholdK)

	return common.FindPeaks(envelope, threshold, float64(minIntervalFrames))
}

// OnsetTimes converts onset frame indices to times in seconds
func (od *OnsetDetection) OnsetTimes(onsetFrames []int, hopSize, sampleRate int) []float64 {
	times := make([]float64, len(onsetFrames))
	for i, frame := range onsetFrames {
		times[i] = float64(frame*hopSize) / float64(sampleRate)
	}
	return times
}
