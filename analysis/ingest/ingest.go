package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dwood1999/tunescore-sub000/algorithms/common"
	"github.com/dwood1999/tunescore-sub000/algorithms/filters"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// SampleBuffer is the normalized audio every analysis stage consumes:
// mono float64 samples in [-1, 1] at the fixed analysis rate.
type SampleBuffer struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"` // channel count of the source, before mixdown
	Duration   float64   `json:"duration_seconds"`
}

// rawAudio is decoder output before conditioning: interleaved samples at
// the source rate.
type rawAudio struct {
	samples    []float64
	sampleRate int
	channels   int
}

// Ingestor decodes and conditions audio input.
type Ingestor struct {
	cfg    *config.Config
	logger logging.Logger
	interp *common.Interpolator
}

// NewIngestor creates an ingestor for the given configuration.
func NewIngestor(cfg *config.Config) *Ingestor {
	return &Ingestor{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "ingest",
		}),
		interp: common.NewInterpolator(),
	}
}

// IngestFile reads and decodes an audio file. The file extension serves
// as the format hint when the magic bytes are inconclusive.
func (ing *Ingestor) IngestFile(path string) (*SampleBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	hint := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ing.IngestBytes(data, hint)
}

// IngestBytes decodes in-memory audio. The format is sniffed from magic
// bytes first; the hint only matters when sniffing is inconclusive.
func (ing *Ingestor) IngestBytes(data []byte, formatHint string) (*SampleBuffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrCorruptAudio)
	}

	format := sniffFormat(data)
	if format == "" {
		format = normalizeHint(formatHint)
	}

	ing.logger.Debug("Decoding audio input", logging.Fields{
		"bytes":  len(data),
		"format": format,
		"hint":   formatHint,
	})

	var (
		raw *rawAudio
		err error
	)
	switch format {
	case "wav":
		raw, err = decodeWAV(data)
	case "flac":
		raw, err = decodeFLAC(data)
	default:
		if !ffmpegAvailable() {
			return nil, fmt.Errorf("%w: unrecognized container and no ffmpeg on PATH", ErrUnsupportedFormat)
		}
		raw, err = ing.decodeFFmpeg(data)
	}
	if err != nil {
		return nil, err
	}
	if len(raw.samples) == 0 {
		return nil, fmt.Errorf("%w: decoder produced no samples", ErrCorruptAudio)
	}

	return ing.condition(raw)
}

// condition turns decoder output into the canonical analysis buffer:
// mono mixdown, DC offset removal, resample to the analysis rate.
func (ing *Ingestor) condition(raw *rawAudio) (*SampleBuffer, error) {
	mono := mixToMono(raw.samples, raw.channels)

	// Fresh filter per call: DCRemoval carries IIR state.
	mono = filters.NewDCRemoval().ProcessBuffer(mono)

	if raw.sampleRate != ing.cfg.SampleRate {
		mono = ing.interp.ResampleSignal(mono, raw.sampleRate, ing.cfg.SampleRate)
	}

	duration := float64(len(mono)) / float64(ing.cfg.SampleRate)
	if duration < ing.cfg.MinDurationSeconds {
		return nil, fmt.Errorf("%w: %.2fs is under the %.2fs minimum",
			ErrTrackTooShort, duration, ing.cfg.MinDurationSeconds)
	}

	ing.logger.Debug("Audio conditioned", logging.Fields{
		"source_rate":     raw.sampleRate,
		"source_channels": raw.channels,
		"samples":         len(mono),
		"duration":        duration,
	})

	return &SampleBuffer{
		Samples:    mono,
		SampleRate: ing.cfg.SampleRate,
		Channels:   raw.channels,
		Duration:   duration,
	}, nil
}

// sniffFormat identifies a container from its magic bytes. Returns ""
// when nothing matches.
func sniffFormat(data []byte) string {
	if len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WAVE" {
		return "wav"
	}
	if len(data) >= 4 && string(data[0:4]) == "fLaC" {
		return "flac"
	}
	return ""
}

func normalizeHint(hint string) string {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "wav", "wave":
		return "wav"
	case "flac":
		return "flac"
	default:
		return ""
	}
}

// mixToMono averages interleaved channels into a single channel.
func mixToMono(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += samples[i*channels+ch]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}
