package genre

import (
	"math"

	"github.com/dwood1999/tunescore-sub000/analysis/features"
)

// genreProfile describes the feature ranges a genre typically occupies.
// Memberships are soft: values inside the range score 1 and fall off
// linearly outside it.
type genreProfile struct {
	name                   string
	tempoLow, tempoHigh    float64 // BPM
	energyLow, energyHigh  float64 // frame RMS
	brightLow, brightHigh  float64 // Hz, mean of rolloff and bandwidth
	zcrLow, zcrHigh        float64 // normalized rate
	regularity             float64 // preferred tempo confidence
	mode                   string  // "major", "minor", or "" for either
}

// profiles is the heuristic rule table over the v1 label set, in label
// order.
var profiles = []genreProfile{
	{"pop", 95, 130, 0.08, 0.25, 2000, 5000, 0.04, 0.12, 0.8, "major"},
	{"rock", 100, 160, 0.12, 0.35, 3000, 6500, 0.08, 0.18, 0.7, ""},
	{"hip-hop", 70, 105, 0.10, 0.30, 1500, 4000, 0.05, 0.15, 0.85, "minor"},
	{"r&b", 60, 100, 0.06, 0.20, 1500, 3800, 0.03, 0.10, 0.7, "minor"},
	{"electronic", 110, 150, 0.10, 0.35, 2500, 7000, 0.06, 0.16, 0.95, ""},
	{"country", 80, 130, 0.06, 0.20, 2000, 4500, 0.04, 0.10, 0.75, "major"},
	{"folk", 70, 120, 0.03, 0.12, 1700, 4000, 0.02, 0.08, 0.6, "major"},
	{"jazz", 80, 160, 0.04, 0.18, 1700, 4200, 0.03, 0.10, 0.5, ""},
	{"classical", 50, 120, 0.02, 0.12, 1200, 3500, 0.01, 0.06, 0.4, ""},
	{"metal", 120, 200, 0.15, 0.40, 3500, 8500, 0.10, 0.25, 0.75, "minor"},
}

// Cue weights within a profile score.
const (
	cueTempo      = 0.25
	cueEnergy     = 0.20
	cueBright     = 0.20
	cueZCR        = 0.15
	cueRegularity = 0.10
	cueMode       = 0.10
)

// Heuristic scores the label set from aggregate features with a fixed
// rule table. Always available and deterministic.
type Heuristic struct{}

// NewHeuristic creates the rule-based prediction source.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Predict returns a probability vector over Labels() summing to 1.
func (h *Heuristic) Predict(set features.FeatureSet, tempoConfidence float64) []float64 {
	scores := make([]float64, len(profiles))
	total := 0.0

	// Acousticness proxy: mean of rolloff and bandwidth. Acoustic
	// material sits low and narrow, produced material high and wide.
	brightness := 0.5 * (set.RolloffMean + set.BandwidthMean)

	for i, p := range profiles {
		s := cueTempo*rangeAffinity(set.TempoBPM, p.tempoLow, p.tempoHigh, 30) +
			cueEnergy*rangeAffinity(set.EnergyMean, p.energyLow, p.energyHigh, 0.08) +
			cueBright*rangeAffinity(brightness, p.brightLow, p.brightHigh, 1500) +
			cueZCR*rangeAffinity(set.ZCRMean, p.zcrLow, p.zcrHigh, 0.05) +
			cueRegularity*(1-math.Abs(tempoConfidence-p.regularity)) +
			cueMode*modeAffinity(set.Mode, p.mode)

		// Floor keeps the vector strictly positive so normalization
		// never divides by zero.
		if s < 0.01 {
			s = 0.01
		}
		scores[i] = s
		total += s
	}

	for i := range scores {
		scores[i] /= total
	}
	return scores
}

// rangeAffinity is 1 inside [low, high] and falls linearly to 0 over
// soft units outside it.
func rangeAffinity(x, low, high, soft float64) float64 {
	switch {
	case x >= low && x <= high:
		return 1
	case x < low:
		d := (low - x) / soft
		if d >= 1 {
			return 0
		}
		return 1 - d
	default:
		d := (x - high) / soft
		if d >= 1 {
			return 0
		}
		return 1 - d
	}
}

func modeAffinity(mode, preferred string) float64 {
	if preferred == "" || mode == "" {
		return 0.5
	}
	if mode == preferred {
		return 1
	}
	return 0
}
