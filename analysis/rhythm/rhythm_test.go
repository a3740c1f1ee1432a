package rhythm

import (
	"math"
	"testing"

	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
	"github.com/dwood1999/tunescore-sub000/algorithms/windowing"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
)

const testRate = 22050

// spectrogramOf runs the standard 2048/512 hann STFT used by the
// analysis pipeline.
func spectrogramOf(t *testing.T, signal []float64) *spectral.STFTResult {
	t.Helper()

	window, err := windowing.NewGenerator().Generate(windowing.WindowHann, 2048)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	result, err := spectral.NewSTFT().ComputeWithWindow(signal, 2048, 512, testRate, window)
	if err != nil {
		t.Fatalf("stft: %v", err)
	}
	return result
}

// clickTrack synthesizes decaying broadband clicks at the given tempo.
func clickTrack(bpm float64, seconds float64) []float64 {
	n := int(seconds * testRate)
	signal := make([]float64, n)
	period := int(60.0 / bpm * testRate)

	for start := 0; start < n; start += period {
		for k := 0; k < 1024 && start+k < n; k++ {
			decay := math.Exp(-float64(k) / 256.0)
			// Alternating sign keeps the click broadband.
			if k%2 == 0 {
				signal[start+k] += 0.9 * decay
			} else {
				signal[start+k] -= 0.9 * decay
			}
		}
	}
	return signal
}

func TestEstimateClickTrack(t *testing.T) {
	est := NewEstimator(config.DefaultConfig())
	spectrogram := spectrogramOf(t, clickTrack(120, 30))

	result := est.Estimate(spectrogram)

	if result.UsedPrior {
		t.Fatal("click track fell back to tempo prior")
	}
	if result.TempoBPM < 117 || result.TempoBPM > 123 {
		t.Errorf("TempoBPM = %v, want ~120", result.TempoBPM)
	}
	if result.TempoConfidence <= 0 {
		t.Errorf("TempoConfidence = %v, want > 0", result.TempoConfidence)
	}
	if len(result.BeatTimes) == 0 {
		t.Fatal("no beat grid laid for a clear click track")
	}
	if len(result.OnsetTimes) < 30 {
		t.Errorf("onsets = %d, want at least one per beat block", len(result.OnsetTimes))
	}

	// Beat spacing must match the estimated period.
	period := 60.0 / result.TempoBPM
	for i := 1; i < len(result.BeatTimes); i++ {
		gap := result.BeatTimes[i] - result.BeatTimes[i-1]
		if math.Abs(gap-period) > 1e-9 {
			t.Fatalf("beat gap %d = %v, want %v", i, gap, period)
		}
	}
}

func TestEstimateSilence(t *testing.T) {
	est := NewEstimator(config.DefaultConfig())
	spectrogram := spectrogramOf(t, make([]float64, 5*testRate))

	result := est.Estimate(spectrogram)

	if !result.UsedPrior {
		t.Error("silence did not fall back to tempo prior")
	}
	if result.TempoBPM != 120 {
		t.Errorf("TempoBPM = %v, want prior 120", result.TempoBPM)
	}
	if result.TempoConfidence != 0 {
		t.Errorf("TempoConfidence = %v, want 0", result.TempoConfidence)
	}
	if len(result.BeatTimes) != 0 {
		t.Errorf("beats = %d, want none", len(result.BeatTimes))
	}
	if len(result.OnsetTimes) != 0 {
		t.Errorf("onsets = %d, want none", len(result.OnsetTimes))
	}
	if result.Key != "C" || result.Mode != "major" || result.KeyConfidence != 0 {
		t.Errorf("key = %s %s conf %v, want degenerate C major at 0",
			result.Key, result.Mode, result.KeyConfidence)
	}
	for i, v := range result.MeanChroma {
		if math.IsNaN(v) {
			t.Fatalf("MeanChroma[%d] is NaN", i)
		}
	}
}

func TestEstimateKeyCMajorTriad(t *testing.T) {
	// C4, E4, G4 held for five seconds.
	n := 5 * testRate
	signal := make([]float64, n)
	for _, freq := range []float64{261.63, 329.63, 392.00} {
		for i := range signal {
			signal[i] += 0.3 * math.Sin(2*math.Pi*freq*float64(i)/testRate)
		}
	}

	est := NewEstimator(config.DefaultConfig())
	result := est.Estimate(spectrogramOf(t, signal))

	if result.Key != "C" || result.Mode != "major" {
		t.Errorf("key = %s %s, want C major", result.Key, result.Mode)
	}
	if result.KeyConfidence <= 0 {
		t.Errorf("KeyConfidence = %v, want > 0", result.KeyConfidence)
	}

	// Chroma energy concentrates on the triad's pitch classes.
	triad := result.MeanChroma[0] + result.MeanChroma[4] + result.MeanChroma[7]
	if triad < 0.8 {
		t.Errorf("triad chroma mass = %v, want > 0.8", triad)
	}
}

func TestEstimateEnvelopeShared(t *testing.T) {
	est := NewEstimator(config.DefaultConfig())
	spectrogram := spectrogramOf(t, clickTrack(120, 10))

	result := est.Estimate(spectrogram)

	if len(result.OnsetEnvelope) != spectrogram.TimeFrames-1 {
		t.Errorf("envelope length = %d, want %d", len(result.OnsetEnvelope), spectrogram.TimeFrames-1)
	}
	if len(result.Chromagram) != spectrogram.TimeFrames {
		t.Errorf("chromagram frames = %d, want %d", len(result.Chromagram), spectrogram.TimeFrames)
	}
	if len(result.MeanChroma) != 12 {
		t.Errorf("mean chroma bins = %d, want 12", len(result.MeanChroma))
	}
}
