package rhythm

import (
	"github.com/dwood1999/tunescore-sub000/algorithms/chroma"
	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
	"github.com/dwood1999/tunescore-sub000/algorithms/temporal"
	"github.com/dwood1999/tunescore-sub000/algorithms/tonal"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// Estimate holds tempo, beat grid, and key results for one track. The
// onset envelope and mean chroma ride along for downstream stages that
// score against them.
type Estimate struct {
	TempoBPM        float64 `json:"tempo_bpm"`
	TempoConfidence float64 `json:"tempo_confidence"`

	// UsedPrior is set when no periodicity was found and the tempo fell
	// back to the configured prior.
	UsedPrior bool `json:"used_prior"`

	BeatTimes  []float64 `json:"beat_times"`
	OnsetTimes []float64 `json:"onset_times"`

	Key           string  `json:"key"`
	Mode          string  `json:"mode"`
	KeyConfidence float64 `json:"key_confidence"`

	// Intermediate signals reused by the quality and hook stages.
	OnsetEnvelope []float64   `json:"-"`
	OnsetFrames   []int       `json:"-"`
	Chromagram    [][]float64 `json:"-"`
	MeanChroma    []float64   `json:"-"`
}

// Estimator derives rhythm and tonality from the shared spectrogram.
type Estimator struct {
	cfg    *config.Config
	logger logging.Logger
	onsets *temporal.OnsetDetection
	tempo  *temporal.TempoEstimation
	keys   *tonal.KeyEstimator
}

// NewEstimator creates a rhythm and key estimator.
func NewEstimator(cfg *config.Config) *Estimator {
	return &Estimator{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "rhythm_estimator",
		}),
		onsets: temporal.NewOnsetDetection(),
		tempo: temporal.NewTempoEstimationWithRange(
			cfg.Rhythm.MinBPM, cfg.Rhythm.MaxBPM, cfg.Rhythm.PriorBPM),
		keys: tonal.NewKeyEstimator(),
	}
}

// Estimate runs tempo, beat grid, and key estimation over a magnitude
// spectrogram. It never fails: degenerate input (silence, no onsets)
// yields the tempo prior with zero confidence, an empty beat grid, and
// an all-zero chroma for downstream stages to degrade on.
func (est *Estimator) Estimate(spectrogram *spectral.STFTResult) *Estimate {
	envelope := est.onsets.ComputeOnsetEnvelope(spectrogram.Magnitude)
	envelopeRate := float64(spectrogram.SampleRate) / float64(spectrogram.HopSize)

	bpm, confidence := est.tempo.EstimateFromOnsetEnvelope(envelope, envelopeRate)
	usedPrior := false
	if bpm <= 0 || confidence <= 0 {
		bpm = est.cfg.Rhythm.PriorBPM
		confidence = 0
		usedPrior = true
	}

	onsetFrames := est.onsets.DetectOnsetFrames(envelope,
		spectrogram.HopSize, spectrogram.SampleRate,
		est.cfg.Rhythm.OnsetMinInterval, est.cfg.Rhythm.OnsetThreshold)
	onsetTimes := est.onsets.OnsetTimes(onsetFrames, spectrogram.HopSize, spectrogram.SampleRate)

	var beatTimes []float64
	if !usedPrior {
		beatTimes = est.beatGrid(envelope, envelopeRate, bpm, spectrogram)
	}

	chromaCalc := chroma.NewChromaSTFTWithRange(spectrogram.SampleRate,
		est.cfg.Rhythm.TuningFreq, est.cfg.Rhythm.ChromaMinFreq, est.cfg.Rhythm.ChromaMaxFreq)
	chromagram := chromaCalc.ComputeFromSpectrogram(spectrogram)
	meanChroma := chroma.MeanChroma(chromagram)

	keyResult := est.keys.EstimateFromChroma(meanChroma)

	est.logger.Debug("Rhythm estimation completed", logging.Fields{
		"tempo_bpm":        bpm,
		"tempo_confidence": confidence,
		"used_prior":       usedPrior,
		"onsets":           len(onsetTimes),
		"beats":            len(beatTimes),
		"key":              keyResult.KeyName,
		"key_confidence":   keyResult.Confidence,
	})

	return &Estimate{
		TempoBPM:        bpm,
		TempoConfidence: confidence,
		UsedPrior:       usedPrior,
		BeatTimes:       beatTimes,
		OnsetTimes:      onsetTimes,
		Key:             chroma.NoteNames[keyResult.Key%12],
		Mode:            keyResult.Mode.String(),
		KeyConfidence:   keyResult.Confidence,
		OnsetEnvelope:   envelope,
		OnsetFrames:     onsetFrames,
		Chromagram:      chromagram,
		MeanChroma:      meanChroma,
	}
}

// beatGrid lays beat timestamps from the estimated phase to track end.
func (est *Estimator) beatGrid(envelope []float64, envelopeRate, bpm float64, spectrogram *spectral.STFTResult) []float64 {
	if bpm <= 0 || envelopeRate <= 0 {
		return nil
	}

	phase := est.tempo.EstimateBeatPhase(envelope, envelopeRate, bpm)
	period := 60.0 / bpm

	// Track end from spectrogram geometry: last frame start plus one
	// frame of samples.
	lastSample := (spectrogram.TimeFrames-1)*spectrogram.HopSize + spectrogram.WindowSize
	trackEnd := float64(lastSample) / float64(spectrogram.SampleRate)

	var beats []float64
	for t := phase; t <= trackEnd; t += period {
		beats = append(beats, t)
	}
	return beats
}
