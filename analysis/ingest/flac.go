package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
)

// decodeFLAC decodes a FLAC stream into normalized float64 samples.
func decodeFLAC(data []byte) (*rawAudio, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: flac decode: %v", ErrCorruptAudio, err)
	}

	info := stream.Info
	if info == nil {
		return nil, fmt.Errorf("%w: flac stream missing info block", ErrCorruptAudio)
	}

	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)
	if channels <= 0 || bitDepth <= 0 {
		return nil, fmt.Errorf("%w: flac format %d ch @ %d bit", ErrCorruptAudio, channels, bitDepth)
	}
	maxVal := float64(int64(1) << uint(bitDepth-1))

	var samples []float64
	if info.NSamples > 0 {
		samples = make([]float64, 0, int(info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: flac frame: %v", ErrCorruptAudio, err)
		}
		if len(frame.Subframes) < channels {
			return nil, fmt.Errorf("%w: flac frame short %d subframes", ErrCorruptAudio, len(frame.Subframes))
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float64(frame.Subframes[ch].Samples[i])/maxVal)
			}
		}
	}

	return &rawAudio{
		samples:    samples,
		sampleRate: int(info.SampleRate),
		channels:   channels,
	}, nil
}
