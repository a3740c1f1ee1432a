package score

import (
	"fmt"
	"math"

	"github.com/dwood1999/tunescore-sub000/algorithms/common"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/features"
	"github.com/dwood1999/tunescore-sub000/analysis/hook"
	"github.com/dwood1999/tunescore-sub000/analysis/quality"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// neutralScore substitutes for absent external inputs.
const neutralScore = 50.0

// Composite is the final score document. Each sub-score sits on its own
// fixed ceiling; the ceilings sum to 100 so Total lands in [0,100] by
// construction.
type Composite struct {
	Musicality        float64 `json:"musicality"`
	HookPotential     float64 `json:"hook_potential"`
	LyricalQuality    float64 `json:"lyrical_quality"`
	CommercialAppeal  float64 `json:"commercial_appeal"`
	ProductionQuality float64 `json:"production_quality"`

	Total    float64  `json:"total"`
	Grade    string   `json:"grade"`
	Insights []string `json:"insights"`
}

// Inputs carries everything the composite scorer reads. External lyrical
// inputs are optional; nil means the neutral default applies.
type Inputs struct {
	Features        features.FeatureSet
	LoudnessRangeLU float64
	Quality         quality.Metrics
	Hook            hook.Segment

	TempoConfidence float64
	KeyConfidence   float64

	LyricalQuality    *float64 // 0-100
	LyricalRepetition *float64 // 0-100
}

// Scorer reduces upstream results to the composite score.
type Scorer struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewScorer creates a composite scorer.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "composite_scorer",
		}),
	}
}

// Score computes the five sub-scores, the total, the grade, and the
// ordered insights. Pure: same inputs, same output.
func (s *Scorer) Score(in Inputs) Composite {
	cfg := s.cfg.Score

	meanQuality := (in.Quality.PitchAccuracy.Score +
		in.Quality.TimingPrecision.Score +
		in.Quality.HarmonicCoherence.Score) / 3

	musicality := cfg.MusicalityCeiling *
		(0.84*meanQuality/100 + 0.16*common.Clamp(in.KeyConfidence, 0, 1))

	repetition := neutralScore
	if in.LyricalRepetition != nil {
		repetition = common.Clamp(*in.LyricalRepetition, 0, 100)
	}
	hookPotential := cfg.HookCeiling *
		(0.75*in.Hook.Score/100 + 0.25*repetition/100)

	lyrical := neutralScore
	if in.LyricalQuality != nil {
		lyrical = common.Clamp(*in.LyricalQuality, 0, 100)
	}
	lyricalQuality := cfg.LyricalCeiling * lyrical / 100

	commercial := cfg.CommercialCeiling * s.commercialFraction(in)
	production := cfg.ProductionCeiling * s.productionFraction(in, meanQuality)

	c := Composite{
		Musicality:        clampScore(musicality, cfg.MusicalityCeiling),
		HookPotential:     clampScore(hookPotential, cfg.HookCeiling),
		LyricalQuality:    clampScore(lyricalQuality, cfg.LyricalCeiling),
		CommercialAppeal:  clampScore(commercial, cfg.CommercialCeiling),
		ProductionQuality: clampScore(production, cfg.ProductionCeiling),
	}
	c.Total = common.Clamp(
		c.Musicality+c.HookPotential+c.LyricalQuality+c.CommercialAppeal+c.ProductionQuality,
		0, 100)
	c.Grade = gradeFor(c.Total)
	c.Insights = s.insights(c, in)

	s.logger.Debug("Composite scoring completed", logging.Fields{
		"total": c.Total,
		"grade": c.Grade,
	})

	return c
}

// commercialFraction blends tempo band fit, loudness proximity, and the
// danceability proxy into [0,1].
func (s *Scorer) commercialFraction(in Inputs) float64 {
	cfg := s.cfg.Score

	tempoFit := bandCloseness(in.Features.TempoBPM, cfg.TempoBandLow, cfg.TempoBandHigh, 40)
	loudnessFit := 1 - common.Clamp(math.Abs(in.Features.LoudnessDB-cfg.LoudnessTarget)/20, 0, 1)
	danceability := common.Clamp(in.TempoConfidence, 0, 1)

	return (tempoFit + loudnessFit + danceability) / 3
}

// productionFraction blends loudness target distance, the loudness-range
// sweet spot, and the mean quality score into [0,1].
func (s *Scorer) productionFraction(in Inputs, meanQuality float64) float64 {
	cfg := s.cfg.Score

	loudnessFit := 1 - common.Clamp(math.Abs(in.Features.LoudnessDB-cfg.LoudnessTarget)/20, 0, 1)

	// Loudness range sweet spot: 4-12 LU reads as dynamic without being
	// inconsistent; outside that the fit falls off over 8 LU.
	rangeFit := bandCloseness(in.LoudnessRangeLU, 4, 12, 8)

	return (loudnessFit + rangeFit + meanQuality/100) / 3
}

// insights builds the ordered explanation list: the binding constraint
// first, then notes for degraded or defaulted inputs.
func (s *Scorer) insights(c Composite, in Inputs) []string {
	cfg := s.cfg.Score

	type pillar struct {
		name    string
		insight string
		ratio   float64
	}
	pillars := []pillar{
		{"musicality", "musicality is the weakest pillar: quality metrics or key certainty hold the track back",
			c.Musicality / cfg.MusicalityCeiling},
		{"hook potential", "hook potential is the weakest pillar: no span stands out from the rest of the track",
			c.HookPotential / cfg.HookCeiling},
		{"lyrical quality", "lyrical quality is the weakest pillar",
			c.LyricalQuality / cfg.LyricalCeiling},
		{"commercial appeal", "commercial appeal is the weakest pillar: tempo, loudness, or rhythmic drive sit outside the mainstream profile",
			c.CommercialAppeal / cfg.CommercialCeiling},
		{"production quality", "production quality is the weakest pillar: loudness or dynamics sit far from streaming norms",
			c.ProductionQuality / cfg.ProductionCeiling},
	}

	binding := pillars[0]
	for _, p := range pillars[1:] {
		if p.ratio < binding.ratio {
			binding = p
		}
	}

	insights := []string{binding.insight}

	if in.LyricalQuality == nil {
		insights = append(insights, "lyrical quality defaulted to neutral 50: no external lyric score supplied")
	}
	if in.LyricalRepetition == nil {
		insights = append(insights, "hook repetition input defaulted to neutral 50")
	}
	degradable := []struct {
		name   string
		metric quality.Metric
	}{
		{"pitch accuracy", in.Quality.PitchAccuracy},
		{"timing precision", in.Quality.TimingPrecision},
		{"harmonic coherence", in.Quality.HarmonicCoherence},
	}
	for _, d := range degradable {
		if d.metric.Degraded {
			insights = append(insights, fmt.Sprintf("%s scored neutral: %s", d.name, d.metric.Rationale))
		}
	}

	return insights
}

// gradeFor maps a total to the fixed monotonic letter table.
func gradeFor(total float64) string {
	switch {
	case total >= 97:
		return "A+"
	case total >= 93:
		return "A"
	case total >= 90:
		return "A-"
	case total >= 87:
		return "B+"
	case total >= 83:
		return "B"
	case total >= 80:
		return "B-"
	case total >= 77:
		return "C+"
	case total >= 73:
		return "C"
	case total >= 70:
		return "C-"
	case total >= 67:
		return "D+"
	case total >= 63:
		return "D"
	case total >= 60:
		return "D-"
	default:
		return "F"
	}
}

// bandCloseness is 1 inside [low, high] and falls linearly to 0 over
// soft units outside it.
func bandCloseness(x, low, high, soft float64) float64 {
	switch {
	case x >= low && x <= high:
		return 1
	case x < low:
		return common.Clamp(1-(low-x)/soft, 0, 1)
	default:
		return common.Clamp(1-(x-high)/soft, 0, 1)
	}
}

func clampScore(x, ceiling float64) float64 {
	return common.Clamp(x, 0, ceiling)
}
