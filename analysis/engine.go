package analysis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/features"
	"github.com/dwood1999/tunescore-sub000/analysis/genre"
	"github.com/dwood1999/tunescore-sub000/analysis/hook"
	"github.com/dwood1999/tunescore-sub000/analysis/ingest"
	"github.com/dwood1999/tunescore-sub000/analysis/quality"
	"github.com/dwood1999/tunescore-sub000/analysis/rhythm"
	"github.com/dwood1999/tunescore-sub000/analysis/score"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// Engine runs the full analysis pipeline. Stateless per invocation: one
// Engine serves concurrent Analyze calls without locking. The genre
// model is the only process-wide shared resource.
type Engine struct {
	cfg    *config.Config
	logger logging.Logger

	ingestor   *ingest.Ingestor
	extractor  *features.Extractor
	rhythm     *rhythm.Estimator
	quality    *quality.Engine
	hooks      *hook.Detector
	classifier *genre.Classifier
	scorer     *score.Scorer
}

// NewEngine builds an engine from the given configuration. A nil config
// gets the defaults; a partial one is filled in and validated.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	} else {
		cfg.ApplyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}

	extractor, err := features.NewExtractor(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "analysis_engine",
		}),
		ingestor:   ingest.NewIngestor(cfg),
		extractor:  extractor,
		rhythm:     rhythm.NewEstimator(cfg),
		quality:    quality.NewEngine(cfg),
		hooks:      hook.NewDetector(cfg),
		classifier: genre.NewClassifier(cfg),
		scorer:     score.NewScorer(cfg),
	}, nil
}

// SetGenreModel overrides the process-wide genre model for this engine.
func (e *Engine) SetGenreModel(m genre.Model) {
	e.classifier.SetModel(m)
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Analyze runs the full pipeline over one track. Cancellation is
// honored between stages only, never mid-computation, so no partial
// internal state is ever observable.
func (e *Engine) Analyze(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	logger := e.logger.WithContext(ctx)

	buf, err := e.ingestStage(ctx, in)
	if err != nil {
		return nil, err
	}
	var warnings []string

	if err := stageCheck(ctx, StageFeatures); err != nil {
		return nil, err
	}
	ext, err := e.extractor.Extract(buf)
	if err != nil {
		return nil, &PipelineError{Stage: StageFeatures, Err: err}
	}

	if err := stageCheck(ctx, StageRhythm); err != nil {
		return nil, err
	}
	est := e.rhythm.Estimate(ext.Spectrogram)
	if est.UsedPrior {
		warnings = append(warnings, "tempo fell back to the prior: no periodicity found")
	}

	// FeatureSet is complete once the rhythm scalars land; downstream
	// stages treat it as immutable.
	ext.Set.TempoBPM = est.TempoBPM
	ext.Set.Key = est.Key
	ext.Set.Mode = est.Mode

	if err := stageCheck(ctx, StageQuality); err != nil {
		return nil, err
	}
	metrics, qualityWarnings := e.quality.Evaluate(buf.Samples, est, in.GenreHint)
	warnings = append(warnings, qualityWarnings...)

	if err := stageCheck(ctx, StageHook); err != nil {
		return nil, err
	}
	segment := e.hooks.Detect(ext, est, buf.Duration)

	if err := stageCheck(ctx, StageGenre); err != nil {
		return nil, err
	}
	var themes []genre.Theme
	if in.Lyrics != nil {
		themes = in.Lyrics.Themes
	}
	prediction, genreWarnings := e.classifier.Classify(ext.Set, est.TempoConfidence, ext.Spectrogram, themes)
	warnings = append(warnings, genreWarnings...)

	if err := stageCheck(ctx, StageScore); err != nil {
		return nil, err
	}
	scoreInputs := score.Inputs{
		Features:        ext.Set,
		LoudnessRangeLU: ext.LoudnessRangeLU,
		Quality:         metrics,
		Hook:            segment,
		TempoConfidence: est.TempoConfidence,
		KeyConfidence:   est.KeyConfidence,
	}
	if in.Lyrics != nil {
		scoreInputs.LyricalQuality = in.Lyrics.QualityScore
		scoreInputs.LyricalRepetition = in.Lyrics.RepetitionScore
	}
	composite := e.scorer.Score(scoreInputs)

	result := &Result{
		Features:   ext.Set,
		Quality:    metrics,
		Hook:       segment,
		Genre:      prediction,
		Score:      composite,
		Warnings:   warnings,
		AnalyzedAt: time.Now().UTC(),
	}
	e.sanitize(result)

	logger.Info("Analysis completed", logging.Fields{
		"duration_seconds": buf.Duration,
		"total_score":      result.Score.Total,
		"grade":            result.Score.Grade,
		"genre":            result.Genre.PrimaryGenre,
		"warnings":         len(result.Warnings),
		"elapsed":          time.Since(start).Seconds(),
	})

	return result, nil
}

// ingestStage resolves the input source and decodes it.
func (e *Engine) ingestStage(ctx context.Context, in Input) (*ingest.SampleBuffer, error) {
	if err := stageCheck(ctx, StageIngest); err != nil {
		return nil, err
	}

	var (
		buf *ingest.SampleBuffer
		err error
	)
	switch {
	case len(in.Bytes) > 0:
		buf, err = e.ingestor.IngestBytes(in.Bytes, in.FormatHint)
	case in.Path != "":
		buf, err = e.ingestor.IngestFile(in.Path)
	default:
		err = fmt.Errorf("no input: path and bytes both empty")
	}
	if err != nil {
		return nil, &PipelineError{Stage: StageIngest, Err: err}
	}
	return buf, nil
}

// stageCheck honors cancellation at a component boundary.
func stageCheck(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return &PipelineError{Stage: stage, Err: err}
	}
	return nil
}

// sanitize replaces any NaN/Inf that slipped through a degenerate-signal
// path with its documented default and records a warning. Nothing
// non-finite leaves the engine.
func (e *Engine) sanitize(r *Result) {
	neutral := e.cfg.Quality.NeutralScore

	checks := []struct {
		v        *float64
		name     string
		fallback float64
	}{
		{&r.Features.CentroidMean, "centroid_mean", 0},
		{&r.Features.CentroidStd, "centroid_std", 0},
		{&r.Features.RolloffMean, "rolloff_mean", 0},
		{&r.Features.RolloffStd, "rolloff_std", 0},
		{&r.Features.BandwidthMean, "bandwidth_mean", 0},
		{&r.Features.BandwidthStd, "bandwidth_std", 0},
		{&r.Features.ZCRMean, "zcr_mean", 0},
		{&r.Features.ZCRStd, "zcr_std", 0},
		{&r.Features.EnergyMean, "energy_mean", 0},
		{&r.Features.EnergyStd, "energy_std", 0},
		{&r.Features.TempoBPM, "tempo_bpm", e.cfg.Rhythm.PriorBPM},
		{&r.Features.LoudnessDB, "loudness_db", -70},
		{&r.Quality.PitchAccuracy.Score, "pitch_accuracy", neutral},
		{&r.Quality.TimingPrecision.Score, "timing_precision", neutral},
		{&r.Quality.HarmonicCoherence.Score, "harmonic_coherence", neutral},
		{&r.Hook.Score, "hook_score", 0},
		{&r.Hook.StartSeconds, "hook_start", 0},
		{&r.Hook.EndSeconds, "hook_end", 0},
		{&r.Genre.Confidence, "genre_confidence", 0},
		{&r.Score.Musicality, "musicality", 0},
		{&r.Score.HookPotential, "hook_potential", 0},
		{&r.Score.LyricalQuality, "lyrical_quality", 0},
		{&r.Score.CommercialAppeal, "commercial_appeal", 0},
		{&r.Score.ProductionQuality, "production_quality", 0},
		{&r.Score.Total, "total_score", 0},
	}
	for _, c := range checks {
		if fixNonFinite(c.v, c.fallback) {
			r.Warnings = append(r.Warnings, "numeric instability: "+c.name+" replaced with default")
		}
	}

	for i := range r.Features.MFCCMean {
		if fixNonFinite(&r.Features.MFCCMean[i], 0) || fixNonFinite(&r.Features.MFCCStd[i], 0) {
			r.Warnings = append(r.Warnings, "numeric instability: mfcc aggregate replaced with default")
		}
	}
	for i := range r.Hook.Factors {
		if fixNonFinite(&r.Hook.Factors[i].Weight, 0) {
			r.Warnings = append(r.Warnings, "numeric instability: hook factor replaced with default")
		}
	}
	for i := range r.Genre.Candidates {
		if fixNonFinite(&r.Genre.Candidates[i].Confidence, 0) {
			r.Warnings = append(r.Warnings, "numeric instability: genre candidate replaced with default")
		}
	}
}

func fixNonFinite(v *float64, fallback float64) bool {
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		*v = fallback
		return true
	}
	return false
}
