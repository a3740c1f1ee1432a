package tonal

import (
	"sort"

	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

// String returns the mode name
func (m KeyMode) String() string {
	if m == KeyModeMinor {
		return "minor"
	}
	return "major"
}

// KeyCandidate represents a potential key with its correlation score
type KeyCandidate struct {
	Key     int     `json:"key"`      // Key number (0=C, 1=C#, ..., 11=B)
	Mode    KeyMode `json:"mode"`     // Major or Minor
	KeyName string  `json:"key_name"` // Human-readable key name
	Score   float64 `json:"score"`    // Profile correlation
}

// KeyEstimationResult contains key estimation results
type KeyEstimationResult struct {
	Key        int            `json:"key"`        // Best key estimate (0-11)
	Mode       KeyMode        `json:"mode"`       // Major or Minor
	KeyName    string         `json:"key_name"`   // Human-readable name (e.g., "A minor")
	Confidence float64        `json:"confidence"` // Overall confidence (0-1)
	Clarity    float64        `json:"clarity"`    // Separation of best from second-best
	Candidates []KeyCandidate `json:"candidates"` // Top candidates, best first
}

// keyProfileTemplate holds the major and minor pitch class weights
type keyProfileTemplate struct {
	major []float64
	minor []float64
}

// KeyEstimator estimates musical key by correlating a pitch class
// profile against key profile templates over all 24 keys.
//
// Reference:
// - Krumhansl, C.L. (1990). "Cognitive Foundations of Musical Pitch"
type KeyEstimator struct {
	template keyProfileTemplate
}

// NewKeyEstimator creates a key estimator using the Krumhansl-Schmuckler
// profiles (empirical weights from listener ratings).
func NewKeyEstimator() *KeyEstimator {
	return &KeyEstimator{
		template: keyProfileTemplate{
			major: []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88},
			minor: []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17},
		},
	}
}

// EstimateFromChroma estimates the key from a 12-bin mean pitch class
// profile. A degenerate profile (all zeros) yields C major with zero
// confidence.
func (ke *KeyEstimator) EstimateFromChroma(meanChroma []float64) KeyEstimationResult {
	if len(meanChroma) != 12 {
		return KeyEstimationResult{KeyName: GetKeyName(0, KeyModeMajor)}
	}

	template := ke.template
	candidates := make([]KeyCandidate, 0, 24)

	// Test all 24 keys: rotating the chroma left by the root aligns the
	// candidate tonic with the template's first bin
	for root := 0; root < 12; root++ {
		majorScore := stats.ShiftedCorrelation(template.major, meanChroma, root)
		candidates = append(candidates, KeyCandidate{
			Key:     root,
			Mode:    KeyModeMajor,
			KeyName: GetKeyName(root, KeyModeMajor),
			Score:   majorScore,
		})

		minorScore := stats.ShiftedCorrelation(template.minor, meanChroma, root)
		candidates = append(candidates, KeyCandidate{
			Key:     root,
			Mode:    KeyModeMinor,
			KeyName: GetKeyName(root, KeyModeMinor),
			Score:   minorScore,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	best := candidates[0]
	second := candidates[1]

	confidence := best.Score
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	clarity := 0.0
	if best.Score > 1e-10 {
		clarity = (best.Score - second.Score) / best.Score
	}

	topCandidates := candidates
	if len(topCandidates) > 5 {
		topCandidates = topCandidates[:5]
	}

	return KeyEstimationResult{
		Key:        best.Key,
		Mode:       best.Mode,
		KeyName:    best.KeyName,
		Confidence: confidence,
		Clarity:    clarity,
		Candidates: topCandidates,
	}
}

// GetKeyName returns the human-readable key name
func GetKeyName(key int, mode KeyMode) string {
	keyNames := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return keyNames[((key%12)+12)%12] + " " + mode.String()
}

// GetRelativeKey returns the relative major/minor key
func GetRelativeKey(key int, mode KeyMode) (int, KeyMode) {
	if mode == KeyModeMajor {
		// Relative minor is 3 semitones down
		return (key - 3 + 12) % 12, KeyModeMinor
	}
	// Relative major is 3 semitones up
	return (key + 3) % 12, KeyModeMajor
}
