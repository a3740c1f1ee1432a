package hook

import (
	"math"
	"reflect"
	"testing"

	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/features"
	"github.com/dwood1999/tunescore-sub000/analysis/ingest"
	"github.com/dwood1999/tunescore-sub000/analysis/rhythm"
)

const testRate = 22050

// modulatedBuffer builds a 440 Hz tone that jumps to a higher amplitude
// inside [loudStart, loudEnd) seconds.
func modulatedBuffer(seconds, loudStart, loudEnd float64) *ingest.SampleBuffer {
	n := int(seconds * testRate)
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / testRate
		amp := 0.2
		if t >= loudStart && t < loudEnd {
			amp = 0.8
		}
		samples[i] = amp * math.Sin(2*math.Pi*440*t)
	}
	return &ingest.SampleBuffer{
		Samples:    samples,
		SampleRate: testRate,
		Channels:   1,
		Duration:   seconds,
	}
}

// analyze runs extraction and rhythm estimation the way the engine does.
func analyze(t *testing.T, buf *ingest.SampleBuffer) (*features.Extraction, *rhythm.Estimate) {
	t.Helper()

	cfg := config.DefaultConfig()
	ex, err := features.NewExtractor(cfg)
	if err != nil {
		t.Fatalf("extractor: %v", err)
	}
	ext, err := ex.Extract(buf)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	est := rhythm.NewEstimator(cfg).Estimate(ext.Spectrogram)
	return ext, est
}

// --- Window selection ---

func TestDetectPicksLoudSegmentWindow(t *testing.T) {
	buf := modulatedBuffer(30, 10, 20)
	ext, est := analyze(t, buf)

	seg := NewDetector(config.DefaultConfig()).Detect(ext, est, buf.Duration)

	if seg.FullTrack {
		t.Fatal("30 s track marked full-track")
	}
	if got := seg.EndSeconds - seg.StartSeconds; math.Abs(got-15) > 1e-9 {
		t.Errorf("window length = %v, want exactly 15", got)
	}
	if seg.StartSeconds < 0 || seg.EndSeconds > buf.Duration+1e-9 {
		t.Errorf("window [%v, %v] outside track", seg.StartSeconds, seg.EndSeconds)
	}

	// The winner must cover part of the loud span.
	if seg.StartSeconds >= 20 || seg.EndSeconds <= 10 {
		t.Errorf("window [%v, %v] misses the loud span [10, 20)", seg.StartSeconds, seg.EndSeconds)
	}
	if seg.Score < 0 || seg.Score > 100 {
		t.Errorf("score = %v, want within [0, 100]", seg.Score)
	}
}

func TestDetectFactors(t *testing.T) {
	buf := modulatedBuffer(30, 10, 20)
	ext, est := analyze(t, buf)

	seg := NewDetector(config.DefaultConfig()).Detect(ext, est, buf.Duration)

	if len(seg.Factors) != 3 {
		t.Fatalf("factors = %d, want 3", len(seg.Factors))
	}

	sum := 0.0
	for i, f := range seg.Factors {
		if f.Name != "energy" && f.Name != "novelty" && f.Name != "repetition" {
			t.Errorf("unknown factor %q", f.Name)
		}
		sum += f.Weight
		if i > 0 && f.Weight > seg.Factors[i-1].Weight {
			t.Errorf("factors not sorted by weight at %d", i)
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("factor weights sum = %v, want 1", sum)
	}
}

// --- Short tracks ---

func TestDetectShortTrackFullTrack(t *testing.T) {
	buf := &ingest.SampleBuffer{
		Samples:    make([]float64, 5*testRate),
		SampleRate: testRate,
		Channels:   1,
		Duration:   5.0,
	}
	ext, est := analyze(t, buf)

	seg := NewDetector(config.DefaultConfig()).Detect(ext, est, buf.Duration)

	if !seg.FullTrack {
		t.Fatal("5 s track not marked full-track")
	}
	if seg.StartSeconds != 0 {
		t.Errorf("StartSeconds = %v, want 0", seg.StartSeconds)
	}
	if seg.EndSeconds != buf.Duration {
		t.Errorf("EndSeconds = %v, want track duration %v", seg.EndSeconds, buf.Duration)
	}

	// Silence carries no energy, onset, or repetition signal.
	for _, f := range seg.Factors {
		if f.Weight != 0 {
			t.Errorf("factor %s weight = %v, want 0", f.Name, f.Weight)
		}
	}
}

func TestDetectEmptyExtraction(t *testing.T) {
	seg := NewDetector(config.DefaultConfig()).Detect(&features.Extraction{}, &rhythm.Estimate{}, 3.0)

	if !seg.FullTrack {
		t.Error("empty extraction not marked full-track")
	}
	if seg.EndSeconds != 3.0 {
		t.Errorf("EndSeconds = %v, want 3.0", seg.EndSeconds)
	}
	if len(seg.Factors) != 3 {
		t.Errorf("factors = %d, want 3", len(seg.Factors))
	}
}

// --- Determinism ---

func TestDetectDeterministic(t *testing.T) {
	buf := modulatedBuffer(30, 10, 20)
	ext, est := analyze(t, buf)

	d := NewDetector(config.DefaultConfig())
	first := d.Detect(ext, est, buf.Duration)
	second := d.Detect(ext, est, buf.Duration)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("segments differ between runs: %+v vs %+v", first, second)
	}
}

// --- Factor shares ---

func TestShares(t *testing.T) {
	d := NewDetector(config.DefaultConfig())

	factors := d.shares(1.0, 0.5, 0)
	if factors[0].Name != "energy" || factors[1].Name != "novelty" || factors[2].Name != "repetition" {
		t.Fatalf("factor order = %s/%s/%s, want energy/novelty/repetition",
			factors[0].Name, factors[1].Name, factors[2].Name)
	}

	sum := 0.0
	for _, f := range factors {
		sum += f.Weight
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("share sum = %v, want 1", sum)
	}
	if math.Abs(factors[0].Weight-2.0/3.0) > 1e-9 {
		t.Errorf("energy share = %v, want 2/3", factors[0].Weight)
	}
}

func TestSharesAllZero(t *testing.T) {
	for _, f := range NewDetector(config.DefaultConfig()).shares(0, 0, 0) {
		if f.Weight != 0 {
			t.Errorf("factor %s weight = %v, want 0", f.Name, f.Weight)
		}
	}
}
