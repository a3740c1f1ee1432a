package config

import "fmt"

// Config is the root configuration for an analysis run. Zero values are
// filled in from DefaultConfig by ApplyDefaults, so callers can override
// just the fields they care about.
type Config struct {
	// Target sample rate all audio is resampled to before analysis
	SampleRate int `json:"sample_rate"`

	// Tracks shorter than this are rejected outright
	MinDurationSeconds float64 `json:"min_duration_seconds"`

	Frame    FrameConfig    `json:"frame"`
	Features FeaturesConfig `json:"features"`
	Rhythm   RhythmConfig   `json:"rhythm"`
	Quality  QualityConfig  `json:"quality"`
	Hook     HookConfig     `json:"hook"`
	Genre    GenreConfig    `json:"genre"`
	Score    ScoreConfig    `json:"score"`
}

// FrameConfig controls the shared STFT framing used by every
// spectral stage.
type FrameConfig struct {
	Size       int    `json:"size"`
	HopSize    int    `json:"hop_size"`
	WindowType string `json:"window_type"` // "hann", "hamming", "blackman"
}

// FeaturesConfig controls per-frame descriptor extraction.
type FeaturesConfig struct {
	RolloffThreshold float64 `json:"rolloff_threshold"`
	PreEmphasis      float64 `json:"pre_emphasis"`
	MFCCCoefficients int     `json:"mfcc_coefficients"`
	MelFilters       int     `json:"mel_filters"`
}

// RhythmConfig controls tempo, beat grid, and key estimation.
type RhythmConfig struct {
	MinBPM   float64 `json:"min_bpm"`
	MaxBPM   float64 `json:"max_bpm"`
	PriorBPM float64 `json:"prior_bpm"` // fallback when no periodicity is found

	// Onset picking
	OnsetThreshold   float64 `json:"onset_threshold"`     // peak threshold in std devs above mean
	OnsetMinInterval float64 `json:"onset_min_interval"`  // seconds between onsets
	ChromaMinFreq    float64 `json:"chroma_min_freq"`     // Hz
	ChromaMaxFreq    float64 `json:"chroma_max_freq"`     // Hz
	TuningFreq       float64 `json:"tuning_freq"`         // A4 reference, Hz
}

// QualityConfig controls the three performance-quality metrics.
type QualityConfig struct {
	// Pitch accuracy
	PitchMinFreq      float64 `json:"pitch_min_freq"`
	PitchMaxFreq      float64 `json:"pitch_max_freq"`
	YINThreshold      float64 `json:"yin_threshold"`
	MinVoicedFraction float64 `json:"min_voiced_fraction"`
	MaxCentsDeviation float64 `json:"max_cents_deviation"` // deviation mapping to score 0

	// Timing precision
	TimingTolerance float64 `json:"timing_tolerance"` // fraction of the beat period

	// Genres whose idiom tolerates looser timing get a wider band
	GenreTolerance map[string]float64 `json:"genre_tolerance,omitempty"`

	// Score reported when a metric cannot be measured
	NeutralScore float64 `json:"neutral_score"`
}

// HookConfig controls hook segment detection.
type HookConfig struct {
	WindowSeconds    float64 `json:"window_seconds"`
	StepSeconds      float64 `json:"step_seconds"`
	EnergyWeight     float64 `json:"energy_weight"`
	NoveltyWeight    float64 `json:"novelty_weight"`
	RepetitionWeight float64 `json:"repetition_weight"`
}

// GenreConfig controls the classification ensemble.
type GenreConfig struct {
	HeuristicWeight float64 `json:"heuristic_weight"`
	ModelWeight     float64 `json:"model_weight"`
	LyricalWeight   float64 `json:"lyrical_weight"`

	// Model input tensor geometry
	MelBands  int `json:"mel_bands"`
	TimeSteps int `json:"time_steps"`

	// Number of candidates reported in the prediction
	TopCandidates int `json:"top_candidates"`
}

// ScoreConfig controls composite scoring.
type ScoreConfig struct {
	MusicalityCeiling float64 `json:"musicality_ceiling"`
	HookCeiling       float64 `json:"hook_ceiling"`
	LyricalCeiling    float64 `json:"lyrical_ceiling"`
	CommercialCeiling float64 `json:"commercial_ceiling"`
	ProductionCeiling float64 `json:"production_ceiling"`

	// Commercial-appeal tempo sweet spot, BPM
	TempoBandLow  float64 `json:"tempo_band_low"`
	TempoBandHigh float64 `json:"tempo_band_high"`

	// Streaming loudness target, dBFS
	LoudnessTarget float64 `json:"loudness_target"`
}

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:         22050,
		MinDurationSeconds: 1.0,
		Frame: FrameConfig{
			Size:       2048,
			HopSize:    512,
			WindowType: "hann",
		},
		Features: FeaturesConfig{
			RolloffThreshold: 0.85,
			PreEmphasis:      0.97,
			MFCCCoefficients: 13,
			MelFilters:       26,
		},
		Rhythm: RhythmConfig{
			MinBPM:           40,
			MaxBPM:           220,
			PriorBPM:         120,
			OnsetThreshold:   1.5,
			OnsetMinInterval: 0.05,
			ChromaMinFreq:    80,
			ChromaMaxFreq:    8000,
			TuningFreq:       440,
		},
		Quality: QualityConfig{
			PitchMinFreq:      55,
			PitchMaxFreq:      2000,
			YINThreshold:      0.15,
			MinVoicedFraction: 0.1,
			MaxCentsDeviation: 50,
			TimingTolerance:   0.15,
			GenreTolerance: map[string]float64{
				"jazz":    1.5,
				"hip-hop": 1.35,
				"funk":    1.35,
			},
			NeutralScore: 50,
		},
		Hook: HookConfig{
			WindowSeconds:    15,
			StepSeconds:      1,
			EnergyWeight:     0.4,
			NoveltyWeight:    0.4,
			RepetitionWeight: 0.2,
		},
		Genre: GenreConfig{
			HeuristicWeight: 0.3,
			ModelWeight:     0.5,
			LyricalWeight:   0.2,
			MelBands:        64,
			TimeSteps:       96,
			TopCandidates:   5,
		},
		Score: ScoreConfig{
			MusicalityCeiling: 25,
			HookCeiling:       15,
			LyricalCeiling:    20,
			CommercialCeiling: 10,
			ProductionCeiling: 30,
			TempoBandLow:      100,
			TempoBandHigh:     130,
			LoudnessTarget:    -14,
		},
	}
}

// ApplyDefaults fills any zero-valued field from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()

	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}
	if c.MinDurationSeconds == 0 {
		c.MinDurationSeconds = d.MinDurationSeconds
	}

	if c.Frame.Size == 0 {
		c.Frame.Size = d.Frame.Size
	}
	if c.Frame.HopSize == 0 {
		c.Frame.HopSize = d.Frame.HopSize
	}
	if c.Frame.WindowType == "" {
		c.Frame.WindowType = d.Frame.WindowType
	}

	if c.Features.RolloffThreshold == 0 {
		c.Features.RolloffThreshold = d.Features.RolloffThreshold
	}
	if c.Features.PreEmphasis == 0 {
		c.Features.PreEmphasis = d.Features.PreEmphasis
	}
	if c.Features.MFCCCoefficients == 0 {
		c.Features.MFCCCoefficients = d.Features.MFCCCoefficients
	}
	if c.Features.MelFilters == 0 {
		c.Features.MelFilters = d.Features.MelFilters
	}

	if c.Rhythm.MinBPM == 0 {
		c.Rhythm.MinBPM = d.Rhythm.MinBPM
	}
	if c.Rhythm.MaxBPM == 0 {
		c.Rhythm.MaxBPM = d.Rhythm.MaxBPM
	}
	if c.Rhythm.PriorBPM == 0 {
		c.Rhythm.PriorBPM = d.Rhythm.PriorBPM
	}
	if c.Rhythm.OnsetThreshold == 0 {
		c.Rhythm.OnsetThreshold = d.Rhythm.OnsetThreshold
	}
	if c.Rhythm.OnsetMinInterval == 0 {
		c.Rhythm.OnsetMinInterval = d.Rhythm.OnsetMinInterval
	}
	if c.Rhythm.ChromaMinFreq == 0 {
		c.Rhythm.ChromaMinFreq = d.Rhythm.ChromaMinFreq
	}
	if c.Rhythm.ChromaMaxFreq == 0 {
		c.Rhythm.ChromaMaxFreq = d.Rhythm.ChromaMaxFreq
	}
	if c.Rhythm.TuningFreq == 0 {
		c.Rhythm.TuningFreq = d.Rhythm.TuningFreq
	}

	if c.Quality.PitchMinFreq == 0 {
		c.Quality.PitchMinFreq = d.Quality.PitchMinFreq
	}
	if c.Quality.PitchMaxFreq == 0 {
		c.Quality.PitchMaxFreq = d.Quality.PitchMaxFreq
	}
	if c.Quality.YINThreshold == 0 {
		c.Quality.YINThreshold = d.Quality.YINThreshold
	}
	if c.Quality.MinVoicedFraction == 0 {
		c.Quality.MinVoicedFraction = d.Quality.MinVoicedFraction
	}
	if c.Quality.MaxCentsDeviation == 0 {
		c.Quality.MaxCentsDeviation = d.Quality.MaxCentsDeviation
	}
	if c.Quality.TimingTolerance == 0 {
		c.Quality.TimingTolerance = d.Quality.TimingTolerance
	}
	if c.Quality.GenreTolerance == nil {
		c.Quality.GenreTolerance = d.Quality.GenreTolerance
	}
	if c.Quality.NeutralScore == 0 {
		c.Quality.NeutralScore = d.Quality.NeutralScore
	}

	if c.Hook.WindowSeconds == 0 {
		c.Hook.WindowSeconds = d.Hook.WindowSeconds
	}
	if c.Hook.StepSeconds == 0 {
		c.Hook.StepSeconds = d.Hook.StepSeconds
	}
	if c.Hook.EnergyWeight == 0 && c.Hook.NoveltyWeight == 0 && c.Hook.RepetitionWeight == 0 {
		c.Hook.EnergyWeight = d.Hook.EnergyWeight
		c.Hook.NoveltyWeight = d.Hook.NoveltyWeight
		c.Hook.RepetitionWeight = d.Hook.RepetitionWeight
	}

	if c.Genre.HeuristicWeight == 0 && c.Genre.ModelWeight == 0 && c.Genre.LyricalWeight == 0 {
		c.Genre.HeuristicWeight = d.Genre.HeuristicWeight
		c.Genre.ModelWeight = d.Genre.ModelWeight
		c.Genre.LyricalWeight = d.Genre.LyricalWeight
	}
	if c.Genre.MelBands == 0 {
		c.Genre.MelBands = d.Genre.MelBands
	}
	if c.Genre.TimeSteps == 0 {
		c.Genre.TimeSteps = d.Genre.TimeSteps
	}
	if c.Genre.TopCandidates == 0 {
		c.Genre.TopCandidates = d.Genre.TopCandidates
	}

	if c.Score.MusicalityCeiling == 0 {
		c.Score.MusicalityCeiling = d.Score.MusicalityCeiling
	}
	if c.Score.HookCeiling == 0 {
		c.Score.HookCeiling = d.Score.HookCeiling
	}
	if c.Score.LyricalCeiling == 0 {
		c.Score.LyricalCeiling = d.Score.LyricalCeiling
	}
	if c.Score.CommercialCeiling == 0 {
		c.Score.CommercialCeiling = d.Score.CommercialCeiling
	}
	if c.Score.ProductionCeiling == 0 {
		c.Score.ProductionCeiling = d.Score.ProductionCeiling
	}
	if c.Score.TempoBandLow == 0 {
		c.Score.TempoBandLow = d.Score.TempoBandLow
	}
	if c.Score.TempoBandHigh == 0 {
		c.Score.TempoBandHigh = d.Score.TempoBandHigh
	}
	if c.Score.LoudnessTarget == 0 {
		c.Score.LoudnessTarget = d.Score.LoudnessTarget
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", c.SampleRate)
	}
	if c.MinDurationSeconds < 0 {
		return fmt.Errorf("min duration must be non-negative: %f", c.MinDurationSeconds)
	}
	if c.Frame.Size <= 0 {
		return fmt.Errorf("frame size must be positive: %d", c.Frame.Size)
	}
	if c.Frame.HopSize <= 0 || c.Frame.HopSize > c.Frame.Size {
		return fmt.Errorf("hop size must be in (0, frame size]: %d", c.Frame.HopSize)
	}
	if c.Features.RolloffThreshold <= 0 || c.Features.RolloffThreshold > 1 {
		return fmt.Errorf("rolloff threshold must be in (0, 1]: %f", c.Features.RolloffThreshold)
	}
	if c.Features.PreEmphasis < 0 || c.Features.PreEmphasis >= 1 {
		return fmt.Errorf("pre-emphasis coefficient must be in [0, 1): %f", c.Features.PreEmphasis)
	}
	if c.Features.MFCCCoefficients <= 0 || c.Features.MFCCCoefficients > c.Features.MelFilters {
		return fmt.Errorf("mfcc coefficients must be in (0, mel filters]: %d", c.Features.MFCCCoefficients)
	}
	if c.Rhythm.MinBPM <= 0 || c.Rhythm.MaxBPM <= c.Rhythm.MinBPM {
		return fmt.Errorf("tempo range invalid: [%f, %f]", c.Rhythm.MinBPM, c.Rhythm.MaxBPM)
	}
	if c.Rhythm.PriorBPM < c.Rhythm.MinBPM || c.Rhythm.PriorBPM > c.Rhythm.MaxBPM {
		return fmt.Errorf("prior BPM %f outside tempo range [%f, %f]",
			c.Rhythm.PriorBPM, c.Rhythm.MinBPM, c.Rhythm.MaxBPM)
	}
	if c.Quality.MinVoicedFraction < 0 || c.Quality.MinVoicedFraction > 1 {
		return fmt.Errorf("min voiced fraction must be in [0, 1]: %f", c.Quality.MinVoicedFraction)
	}
	if c.Quality.MaxCentsDeviation <= 0 {
		return fmt.Errorf("max cents deviation must be positive: %f", c.Quality.MaxCentsDeviation)
	}
	if c.Hook.WindowSeconds <= 0 || c.Hook.StepSeconds <= 0 {
		return fmt.Errorf("hook window and step must be positive: %f, %f",
			c.Hook.WindowSeconds, c.Hook.StepSeconds)
	}
	if sum := c.Hook.EnergyWeight + c.Hook.NoveltyWeight + c.Hook.RepetitionWeight; sum <= 0 {
		return fmt.Errorf("hook factor weights must sum to a positive value: %f", sum)
	}
	if sum := c.Genre.HeuristicWeight + c.Genre.ModelWeight + c.Genre.LyricalWeight; sum <= 0 {
		return fmt.Errorf("genre ensemble weights must sum to a positive value: %f", sum)
	}
	if c.Genre.MelBands <= 0 || c.Genre.TimeSteps <= 0 {
		return fmt.Errorf("tensor geometry must be positive: %dx%d", c.Genre.MelBands, c.Genre.TimeSteps)
	}
	ceilings := c.Score.MusicalityCeiling + c.Score.HookCeiling + c.Score.LyricalCeiling +
		c.Score.CommercialCeiling + c.Score.ProductionCeiling
	if ceilings <= 0 {
		return fmt.Errorf("score ceilings must sum to a positive value: %f", ceilings)
	}
	return nil
}
