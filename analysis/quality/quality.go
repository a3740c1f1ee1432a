package quality

import (
	"fmt"
	"math"
	"strings"

	"github.com/dwood1999/tunescore-sub000/algorithms/common"
	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
	"github.com/dwood1999/tunescore-sub000/algorithms/tonal"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/rhythm"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// Metric is one performance-quality measurement on a 0-100 scale. When
// the underlying signal could not be derived the metric reports the
// neutral score with Degraded set and the rationale says why.
type Metric struct {
	Score     float64 `json:"score"`
	Degraded  bool    `json:"degraded"`
	Rationale string  `json:"rationale"`
}

// Metrics bundles the three quality measurements.
type Metrics struct {
	PitchAccuracy     Metric `json:"pitch_accuracy"`
	TimingPrecision   Metric `json:"timing_precision"`
	HarmonicCoherence Metric `json:"harmonic_coherence"`
}

// Engine evaluates performance quality from the pitch track, the beat
// grid, and the chroma histogram.
type Engine struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewEngine creates a quality metrics engine.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "quality_engine",
		}),
	}
}

// Evaluate computes the three metrics. Degraded metrics never fail the
// call; each one also surfaces as a warning.
func (e *Engine) Evaluate(samples []float64, est *rhythm.Estimate, genreHint string) (Metrics, []string) {
	m := Metrics{
		PitchAccuracy:     e.pitchAccuracy(samples),
		TimingPrecision:   e.timingPrecision(est, genreHint),
		HarmonicCoherence: e.harmonicCoherence(est.MeanChroma),
	}

	var warnings []string
	if m.PitchAccuracy.Degraded {
		warnings = append(warnings, "pitch accuracy degraded: "+m.PitchAccuracy.Rationale)
	}
	if m.TimingPrecision.Degraded {
		warnings = append(warnings, "timing precision degraded: "+m.TimingPrecision.Rationale)
	}
	if m.HarmonicCoherence.Degraded {
		warnings = append(warnings, "harmonic coherence degraded: "+m.HarmonicCoherence.Rationale)
	}

	e.logger.Debug("Quality evaluation completed", logging.Fields{
		"pitch_accuracy":     m.PitchAccuracy.Score,
		"timing_precision":   m.TimingPrecision.Score,
		"harmonic_coherence": m.HarmonicCoherence.Score,
		"warnings":           len(warnings),
	})

	return m, warnings
}

// pitchAccuracy maps the mean absolute deviation from the nearest
// equal-tempered semitone to 0-100: 0 cents scores 100, deviations at or
// beyond the configured maximum score 0.
func (e *Engine) pitchAccuracy(samples []float64) Metric {
	detector := tonal.NewPitchDetectorWithParams(e.cfg.SampleRate,
		e.cfg.Frame.Size, e.cfg.Frame.HopSize,
		e.cfg.Quality.PitchMinFreq, e.cfg.Quality.PitchMaxFreq,
		e.cfg.Quality.YINThreshold)

	track := detector.Track(samples)
	if len(track) == 0 {
		return e.degraded("track too short for a pitch trace")
	}

	var deviations []float64
	for _, p := range track {
		if !p.Voiced {
			continue
		}
		deviations = append(deviations, math.Abs(centsFromSemitone(p.Pitch)))
	}

	voicedFraction := float64(len(deviations)) / float64(len(track))
	if voicedFraction < e.cfg.Quality.MinVoicedFraction {
		return e.degraded(fmt.Sprintf("only %.0f%% of frames voiced", voicedFraction*100))
	}

	meanDev := stats.Mean(deviations)
	score := 100 * (1 - common.Clamp(meanDev/e.cfg.Quality.MaxCentsDeviation, 0, 1))

	return Metric{
		Score: common.Clamp(score, 0, 100),
		Rationale: fmt.Sprintf("mean deviation %.1f cents over %d voiced frames",
			meanDev, len(deviations)),
	}
}

// timingPrecision scores how tightly onsets sit on the beat grid. The
// tolerance band is a fraction of the beat period, widened for genres
// whose idiom leans on syncopation.
func (e *Engine) timingPrecision(est *rhythm.Estimate, genreHint string) Metric {
	if len(est.OnsetTimes) == 0 {
		return e.degraded("no onsets detected")
	}
	if len(est.BeatTimes) == 0 {
		return e.degraded("no beat grid available")
	}

	period := 60.0 / est.TempoBPM
	tolerance := e.cfg.Quality.TimingTolerance * period
	if mult, ok := e.cfg.Quality.GenreTolerance[normalizeGenreHint(genreHint)]; ok {
		tolerance *= mult
	}
	if tolerance <= 0 {
		return e.degraded("degenerate timing tolerance")
	}

	offsets := make([]float64, len(est.OnsetTimes))
	for i, onset := range est.OnsetTimes {
		offsets[i] = nearestBeatOffset(onset, est.BeatTimes)
	}

	meanOffset := stats.Mean(offsets)
	score := 100 * (1 - common.Clamp(meanOffset/tolerance, 0, 1))

	return Metric{
		Score: common.Clamp(score, 0, 100),
		Rationale: fmt.Sprintf("mean onset offset %.0f ms against a %.0f ms tolerance",
			meanOffset*1000, tolerance*1000),
	}
}

// harmonicCoherence is the inverse normalized Shannon entropy of the
// chroma histogram: concentrated pitch-class energy scores high, a flat
// histogram scores 0.
func (e *Engine) harmonicCoherence(meanChroma []float64) Metric {
	total := 0.0
	for _, c := range meanChroma {
		total += c
	}
	if total < common.Epsilon {
		return e.degraded("chroma histogram is empty")
	}

	entropy := stats.NormalizedShannonEntropy(meanChroma)
	score := 100 * (1 - common.Clamp(entropy, 0, 1))

	return Metric{
		Score:     common.Clamp(score, 0, 100),
		Rationale: fmt.Sprintf("pitch-class entropy %.2f", entropy),
	}
}

func (e *Engine) degraded(why string) Metric {
	return Metric{
		Score:     e.cfg.Quality.NeutralScore,
		Degraded:  true,
		Rationale: why,
	}
}

// centsFromSemitone returns the signed distance in cents from the
// nearest equal-tempered semitone (A440 reference).
func centsFromSemitone(freq float64) float64 {
	if freq <= 0 {
		return 0
	}
	midi := 69 + 12*math.Log2(freq/440.0)
	return (midi - math.Round(midi)) * 100
}

// nearestBeatOffset returns the absolute distance from t to the closest
// beat. Beats are sorted ascending.
func nearestBeatOffset(t float64, beats []float64) float64 {
	lo, hi := 0, len(beats)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if beats[mid] < t {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	best := math.Abs(beats[lo] - t)
	if lo > 0 {
		if d := math.Abs(beats[lo-1] - t); d < best {
			best = d
		}
	}
	return best
}

func normalizeGenreHint(hint string) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	return strings.ReplaceAll(h, " ", "-")
}
