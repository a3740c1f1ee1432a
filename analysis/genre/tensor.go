package genre

import (
	"math"

	"github.com/dwood1999/tunescore-sub000/algorithms/common"
	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
)

// tensorLogFloor keeps the log-mel values finite on silent bands.
const tensorLogFloor = 1e-10

// BuildTensor renders the fixed-shape model input: a log-mel spectrogram
// with melBands bands, each band linearly resampled over time to exactly
// timeSteps values, flattened row-major (band b, step t at b*timeSteps+t).
func BuildTensor(spectrogram *spectral.STFTResult, melBands, timeSteps int) []float64 {
	out := make([]float64, melBands*timeSteps)
	if spectrogram == nil || spectrogram.TimeFrames == 0 {
		floor := math.Log10(tensorLogFloor)
		for i := range out {
			out[i] = floor
		}
		return out
	}

	mel := spectral.NewMelScale().ComputeMelSpectrogramFrames(
		spectrogram.Magnitude, melBands, spectrogram.SampleRate,
		0, float64(spectrogram.SampleRate)/2)

	interp := common.NewInterpolator()
	band := make([]float64, len(mel))

	for b := range melBands {
		for t := range mel {
			v := tensorLogFloor
			if b < len(mel[t]) && mel[t][b] > tensorLogFloor {
				v = mel[t][b]
			}
			band[t] = math.Log10(v)
		}

		resampled := interp.InterpolateArray(band, timeSteps)
		copy(out[b*timeSteps:(b+1)*timeSteps], resampled)
	}

	return out
}
