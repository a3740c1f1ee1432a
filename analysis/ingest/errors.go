package ingest

import "errors"

// Decode failures are fatal: the pipeline never analyzes a partial buffer.
var (
	// ErrUnsupportedFormat means no decoder claimed the input.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrCorruptAudio means a decoder claimed the input but could not
	// produce valid samples from it.
	ErrCorruptAudio = errors.New("corrupt audio data")

	// ErrTrackTooShort means the decoded track is under the minimum
	// duration the analysis stages need.
	ErrTrackTooShort = errors.New("track too short for analysis")
)
