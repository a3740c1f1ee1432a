package common

// Interpolator provides fractional-index interpolation over sampled data,
// used for sample-rate conversion at ingest and for resizing feature
// trajectories onto fixed grids.
type Interpolator struct{}

// NewInterpolator creates a new linear interpolator
func NewInterpolator() *Interpolator {
	return &Interpolator{}
}

// Interpolate evaluates the signal at a fractional index using linear
// interpolation. Indices outside the data range clamp to the endpoints.
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	if i >= len(data)-1 {
		return data[len(data)-1]
	}

	return data[i] + frac*(data[i+1]-data[i])
}

// ResampleSignal resamples a signal from originalRate to targetRate.
// The output length is scaled by targetRate/originalRate.
func (interp *Interpolator) ResampleSignal(signal []float64, originalRate, targetRate int) []float64 {
	if len(signal) == 0 || originalRate <= 0 || targetRate <= 0 {
		return signal
	}

	if originalRate == targetRate {
		resampled := make([]float64, len(signal))
		copy(resampled, signal)
		return resampled
	}

	ratio := float64(originalRate) / float64(targetRate)
	newLength := int(float64(len(signal)) / ratio)

	if newLength <= 0 {
		return []float64{}
	}

	resampled := make([]float64, newLength)

	for i := range resampled {
		sourceIndex := float64(i) * ratio
		resampled[i] = interp.Interpolate(signal, sourceIndex)
	}

	return resampled
}

// InterpolateArray resizes data to newLength, interpolating between
// source points. Used to fit per-band spectrogram trajectories onto the
// fixed time axis the classification model expects.
func (interp *Interpolator) InterpolateArray(data []float64, newLength int) []float64 {
	if len(data) == 0 || newLength <= 0 {
		return []float64{}
	}

	if newLength == len(data) {
		result := make([]float64, len(data))
		copy(result, data)
		return result
	}

	result := make([]float64, newLength)
	if len(data) == 1 || newLength == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	ratio := float64(len(data)-1) / float64(newLength-1)

	for i := range result {
		sourceIndex := float64(i) * ratio
		result[i] = interp.Interpolate(data, sourceIndex)
	}

	return result
}
