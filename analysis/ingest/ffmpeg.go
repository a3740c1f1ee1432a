package ingest

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/dwood1999/tunescore-sub000/logging"
)

// ffmpegTimeout bounds a single decode subprocess.
const ffmpegTimeout = 60 * time.Second

// ffmpegAvailable reports whether an ffmpeg binary is on PATH.
func ffmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// decodeFFmpeg shells out to ffmpeg for any container the native decoders
// do not claim. ffmpeg handles the mixdown and resample itself, so the
// output is already mono at the analysis rate.
func (ing *Ingestor) decodeFFmpeg(data []byte) (*rawAudio, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "ingest",
		"decoder":   "ffmpeg",
		"bytes":     len(data),
	})

	args := []string{
		"-v", "error",
		"-i", "pipe:0",
		"-f", "f64le",
		"-acodec", "pcm_f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(ing.cfg.SampleRate),
		"pipe:1",
	}

	ctx, cancel := context.WithTimeout(context.Background(), ffmpegTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdin = bytes.NewReader(data)

	start := time.Now()
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "FFmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
			return nil, fmt.Errorf("%w: ffmpeg: %s", ErrCorruptAudio, bytes.TrimSpace(exitError.Stderr))
		}
		return nil, fmt.Errorf("ffmpeg decode: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no samples", ErrCorruptAudio)
	}

	logger.Debug("FFmpeg decode completed", logging.Fields{
		"samples":     len(samples),
		"decode_time": time.Since(start).Seconds(),
	})

	return &rawAudio{
		samples:    samples,
		sampleRate: ing.cfg.SampleRate,
		channels:   1,
	}, nil
}

// bytesToFloat64 converts raw little-endian float64 PCM to samples.
func bytesToFloat64(data []byte) []float64 {
	if len(data)%8 != 0 {
		data = data[:len(data)-(len(data)%8)]
	}
	if len(data) == 0 {
		return nil
	}

	sampleCount := len(data) / 8
	samples := make([]float64, sampleCount)
	for i := 0; i < sampleCount; i++ {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}
	return samples
}
