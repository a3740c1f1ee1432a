package features

// FrameSeries records how a sample buffer was cut into analysis frames.
// Frames never extend past the buffer end; a buffer shorter than one
// frame yields no offsets.
type FrameSeries struct {
	FrameSize  int   `json:"frame_size"`
	HopSize    int   `json:"hop_size"`
	SampleRate int   `json:"sample_rate"`
	Offsets    []int `json:"offsets"`
}

// NewFrameSeries computes the frame offsets for a buffer of numSamples.
func NewFrameSeries(numSamples, frameSize, hopSize, sampleRate int) FrameSeries {
	fs := FrameSeries{
		FrameSize:  frameSize,
		HopSize:    hopSize,
		SampleRate: sampleRate,
	}
	if frameSize <= 0 || hopSize <= 0 || numSamples < frameSize {
		return fs
	}

	numFrames := (numSamples-frameSize)/hopSize + 1
	fs.Offsets = make([]int, numFrames)
	for i := range numFrames {
		fs.Offsets[i] = i * hopSize
	}
	return fs
}

// Count returns the number of frames.
func (fs FrameSeries) Count() int {
	return len(fs.Offsets)
}

// TimeAt returns the start time of a frame in seconds.
func (fs FrameSeries) TimeAt(frame int) float64 {
	if frame < 0 || frame >= len(fs.Offsets) || fs.SampleRate <= 0 {
		return 0
	}
	return float64(fs.Offsets[frame]) / float64(fs.SampleRate)
}
