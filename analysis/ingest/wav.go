package ingest

import (
	"bytes"
	"fmt"

	"github.com/go-audio/wav"
)

// decodeWAV decodes a RIFF/WAVE container into normalized float64 samples.
func decodeWAV(data []byte) (*rawAudio, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV container", ErrCorruptAudio)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: wav decode: %v", ErrCorruptAudio, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: wav stream holds no samples", ErrCorruptAudio)
	}

	channels := buf.Format.NumChannels
	sampleRate := buf.Format.SampleRate
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: wav format %d ch @ %d Hz", ErrCorruptAudio, channels, sampleRate)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	maxVal := float64(int64(1) << uint(bitDepth-1))

	samples := make([]float64, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float64(s) / maxVal
	}

	return &rawAudio{
		samples:    samples,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}
