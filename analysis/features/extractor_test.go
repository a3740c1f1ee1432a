package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/ingest"
)

func sineBuffer(freq, amp float64, seconds float64) *ingest.SampleBuffer {
	const rate = 22050
	n := int(seconds * rate)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
	}
	return &ingest.SampleBuffer{
		Samples:    samples,
		SampleRate: rate,
		Channels:   1,
		Duration:   seconds,
	}
}

func TestExtractSine(t *testing.T) {
	ex, err := NewExtractor(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewExtractor error: %v", err)
	}

	buf := sineBuffer(440, 0.5, 1.0)
	result, err := ex.Extract(buf)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if got, want := len(result.Vectors), result.Frames.Count(); got != want {
		t.Fatalf("vectors = %d, want %d (one per frame)", got, want)
	}
	if result.Spectrogram == nil || result.Spectrogram.TimeFrames != result.Frames.Count() {
		t.Fatal("spectrogram missing or frame count mismatch")
	}

	set := result.Set
	if set.EnergyMean < 0.3 || set.EnergyMean > 0.4 {
		t.Errorf("EnergyMean = %v, want ~0.354 for a 0.5 amplitude sine", set.EnergyMean)
	}
	if set.ZCRMean < 0.03 || set.ZCRMean > 0.05 {
		t.Errorf("ZCRMean = %v, want ~0.04 for 440 Hz at 22050", set.ZCRMean)
	}
	if set.CentroidMean < 400 || set.CentroidMean > 500 {
		t.Errorf("CentroidMean = %v Hz, want near 440", set.CentroidMean)
	}
	if set.RolloffMean < 400 || set.RolloffMean > 600 {
		t.Errorf("RolloffMean = %v Hz, want near 440", set.RolloffMean)
	}
	if set.LoudnessDB < -12 || set.LoudnessDB > -6 {
		t.Errorf("LoudnessDB = %v, want ~-9", set.LoudnessDB)
	}
	if len(set.MFCCMean) != 13 || len(set.MFCCStd) != 13 {
		t.Errorf("MFCC aggregate lengths = %d/%d, want 13/13", len(set.MFCCMean), len(set.MFCCStd))
	}
	for i, c := range set.MFCCMean {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Errorf("MFCCMean[%d] not finite: %v", i, c)
		}
	}
	if set.DurationSeconds != 1.0 {
		t.Errorf("DurationSeconds = %v, want 1.0", set.DurationSeconds)
	}

	// A steady tone has almost no loudness spread.
	if result.LoudnessRangeLU < 0 || result.LoudnessRangeLU > 3 {
		t.Errorf("LoudnessRangeLU = %v, want near 0", result.LoudnessRangeLU)
	}
}

func TestExtractDeterministic(t *testing.T) {
	ex, err := NewExtractor(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewExtractor error: %v", err)
	}

	first, err := ex.Extract(sineBuffer(440, 0.5, 1.0))
	if err != nil {
		t.Fatalf("first Extract error: %v", err)
	}
	second, err := ex.Extract(sineBuffer(440, 0.5, 1.0))
	if err != nil {
		t.Fatalf("second Extract error: %v", err)
	}

	if !reflect.DeepEqual(first.Set, second.Set) {
		t.Error("aggregates differ between identical runs")
	}
	if !reflect.DeepEqual(first.Vectors, second.Vectors) {
		t.Error("vectors differ between identical runs")
	}
}

func TestExtractShortBuffer(t *testing.T) {
	ex, err := NewExtractor(config.DefaultConfig())
	if err != nil {
		t.Fatalf("NewExtractor error: %v", err)
	}

	buf := &ingest.SampleBuffer{
		Samples:    make([]float64, 1000),
		SampleRate: 22050,
		Channels:   1,
		Duration:   1000.0 / 22050.0,
	}
	if _, err := ex.Extract(buf); err == nil {
		t.Error("sub-frame buffer succeeded, want error")
	}
}

func TestNewExtractorBadWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Frame.WindowType = "flat-top"
	if _, err := NewExtractor(cfg); err == nil {
		t.Error("unknown window type accepted, want error")
	}
}
