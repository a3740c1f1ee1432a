package genre

import (
	"math"
	"strings"
	"testing"

	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/features"
)

// stubModel is a canned prediction source for exercising the model path.
type stubModel struct {
	labels  []string
	version string
	vec     []float64
	err     error
}

func (m *stubModel) Labels() []string                  { return m.labels }
func (m *stubModel) Version() string                   { return m.version }
func (m *stubModel) Predict([]float64) ([]float64, error) { return m.vec, m.err }

// popSet is an aggregate profile square in the pop heuristic ranges.
func popSet() features.FeatureSet {
	return features.FeatureSet{
		TempoBPM:      120,
		EnergyMean:    0.15,
		RolloffMean:   5000,
		BandwidthMean: 2000,
		ZCRMean:       0.08,
		Mode:          "major",
	}
}

func oneHot(genre string) []float64 {
	vec := make([]float64, len(labels))
	for i, l := range labels {
		if l == genre {
			vec[i] = 1.0
		}
	}
	return vec
}

// --- Label set ---

func TestLabels(t *testing.T) {
	want := []string{"pop", "rock", "hip-hop", "r&b", "electronic",
		"country", "folk", "jazz", "classical", "metal"}

	got := Labels()
	if len(got) != len(want) {
		t.Fatalf("labels = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("labels[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Callers must not be able to mutate the canonical set.
	got[0] = "polka"
	if Labels()[0] != "pop" {
		t.Error("Labels() exposes internal slice")
	}
}

// --- Heuristic source ---

func TestHeuristicPredict(t *testing.T) {
	vec := NewHeuristic().Predict(popSet(), 0.8)

	if len(vec) != len(labels) {
		t.Fatalf("vector length = %d, want %d", len(vec), len(labels))
	}
	sum := 0.0
	for i, v := range vec {
		if v <= 0 {
			t.Errorf("vec[%d] = %v, want strictly positive", i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("vector sum = %v, want 1", sum)
	}

	best := 0
	for i, v := range vec {
		if v > vec[best] {
			best = i
		}
	}
	if labels[best] != "pop" {
		t.Errorf("top genre = %s, want pop for a pop-shaped profile", labels[best])
	}
}

func TestRangeAffinity(t *testing.T) {
	tests := []struct {
		x, low, high, soft float64
		want               float64
	}{
		{100, 95, 130, 30, 1},
		{95, 95, 130, 30, 1},
		{80, 95, 130, 30, 0.5},
		{50, 95, 130, 30, 0},
		{145, 95, 130, 30, 0.5},
		{200, 95, 130, 30, 0},
	}
	for _, tt := range tests {
		if got := rangeAffinity(tt.x, tt.low, tt.high, tt.soft); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("rangeAffinity(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestModeAffinity(t *testing.T) {
	if got := modeAffinity("major", "major"); got != 1 {
		t.Errorf("matching mode = %v, want 1", got)
	}
	if got := modeAffinity("minor", "major"); got != 0 {
		t.Errorf("mismatched mode = %v, want 0", got)
	}
	if got := modeAffinity("major", ""); got != 0.5 {
		t.Errorf("indifferent profile = %v, want 0.5", got)
	}
	if got := modeAffinity("", "major"); got != 0.5 {
		t.Errorf("unknown mode = %v, want 0.5", got)
	}
}

// --- Model input tensor ---

func TestBuildTensorShape(t *testing.T) {
	tensor := BuildTensor(nil, 64, 96)
	if len(tensor) != 64*96 {
		t.Fatalf("tensor length = %d, want %d", len(tensor), 64*96)
	}

	floor := math.Log10(1e-10)
	for i, v := range tensor {
		if v != floor {
			t.Fatalf("tensor[%d] = %v, want log floor %v for nil input", i, v, floor)
		}
	}
}

// --- Lyrical source ---

func TestPredictLyrical(t *testing.T) {
	vec := PredictLyrical([]Theme{{Name: "love", Weight: 1}})
	if vec == nil {
		t.Fatal("known theme produced nil vector")
	}

	sum := 0.0
	for _, v := range vec {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("vector sum = %v, want 1", sum)
	}

	// Love leans pop and r&b equally.
	if vec[labelIndex["pop"]] != vec[labelIndex["r&b"]] {
		t.Errorf("pop %v != r&b %v for love", vec[labelIndex["pop"]], vec[labelIndex["r&b"]])
	}
	if vec[labelIndex["metal"]] != 0 {
		t.Errorf("metal affinity = %v, want 0 for love", vec[labelIndex["metal"]])
	}
}

func TestPredictLyricalCaseInsensitive(t *testing.T) {
	if PredictLyrical([]Theme{{Name: " Love ", Weight: 1}}) == nil {
		t.Error("theme matching is case or whitespace sensitive")
	}
}

func TestPredictLyricalUnavailable(t *testing.T) {
	if vec := PredictLyrical(nil); vec != nil {
		t.Errorf("no themes = %v, want nil", vec)
	}
	if vec := PredictLyrical([]Theme{{Name: "quantum chromodynamics", Weight: 1}}); vec != nil {
		t.Errorf("unknown theme = %v, want nil", vec)
	}
	if vec := PredictLyrical([]Theme{{Name: "love", Weight: 0}}); vec != nil {
		t.Errorf("zero-weight theme = %v, want nil", vec)
	}
}

// --- Model output validation ---

func TestValidatePrediction(t *testing.T) {
	good := make([]float64, len(labels))
	for i := range good {
		good[i] = 1.0 / float64(len(labels))
	}
	if err := validatePrediction(good); err != nil {
		t.Errorf("uniform vector rejected: %v", err)
	}

	if err := validatePrediction(make([]float64, 3)); err == nil {
		t.Error("wrong-length vector accepted")
	}

	bad := make([]float64, len(labels))
	bad[0] = -0.5
	bad[1] = 1.5
	if err := validatePrediction(bad); err == nil {
		t.Error("out-of-range entries accepted")
	}

	double := make([]float64, len(labels))
	for i := range double {
		double[i] = 0.2
	}
	if err := validatePrediction(double); err == nil {
		t.Error("vector summing to 2 accepted")
	}
}

// --- Classifier fusion ---

func TestClassifyHeuristicOnly(t *testing.T) {
	c := NewClassifier(config.DefaultConfig())

	pred, warnings := c.Classify(popSet(), 0.8, nil, nil)
	if pred.Method != "heuristic" {
		t.Errorf("Method = %q, want heuristic", pred.Method)
	}
	if pred.PrimaryGenre != "pop" {
		t.Errorf("PrimaryGenre = %s, want pop", pred.PrimaryGenre)
	}
	if len(pred.Candidates) != 5 {
		t.Errorf("candidates = %d, want top 5", len(pred.Candidates))
	}
	for i := 1; i < len(pred.Candidates); i++ {
		if pred.Candidates[i].Confidence > pred.Candidates[i-1].Confidence {
			t.Errorf("candidates not ranked at %d", i)
		}
	}

	// The shared model is not registered in tests.
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "genre model unavailable: ") {
		t.Errorf("warnings = %v, want one model-unavailable warning", warnings)
	}
}

func TestClassifyWithModel(t *testing.T) {
	c := NewClassifier(config.DefaultConfig())
	c.SetModel(&stubModel{labels: Labels(), version: "stub-1", vec: oneHot("jazz")})

	pred, warnings := c.Classify(popSet(), 0.8, nil, nil)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if pred.Method != "heuristic+model" {
		t.Errorf("Method = %q, want heuristic+model", pred.Method)
	}
	if pred.PrimaryGenre != "jazz" {
		t.Errorf("PrimaryGenre = %s, want jazz with a 0.5-weight one-hot model", pred.PrimaryGenre)
	}

	// Model weight dominates: fused jazz >= 0.5/0.8.
	if pred.Confidence < 0.5/0.8 {
		t.Errorf("Confidence = %v, want >= %v", pred.Confidence, 0.5/0.8)
	}
}

func TestClassifyWithThemes(t *testing.T) {
	c := NewClassifier(config.DefaultConfig())
	c.SetModel(&stubModel{labels: Labels(), version: "stub-1", vec: oneHot("jazz")})

	pred, warnings := c.Classify(popSet(), 0.8, nil, []Theme{{Name: "love", Weight: 1}})
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v, want none", warnings)
	}
	if pred.Method != "heuristic+model+lyrical" {
		t.Errorf("Method = %q, want all three sources", pred.Method)
	}
}

func TestClassifyInvalidModelOutput(t *testing.T) {
	double := make([]float64, len(labels))
	for i := range double {
		double[i] = 0.2
	}

	c := NewClassifier(config.DefaultConfig())
	c.SetModel(&stubModel{labels: Labels(), version: "stub-bad", vec: double})

	pred, warnings := c.Classify(popSet(), 0.8, nil, nil)
	if pred.Method != "heuristic" {
		t.Errorf("Method = %q, want heuristic fallback", pred.Method)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "genre model unavailable") {
		t.Errorf("warnings = %v, want one model warning", warnings)
	}
}

func TestClassifyModelLabelMismatch(t *testing.T) {
	c := NewClassifier(config.DefaultConfig())
	c.SetModel(&stubModel{labels: []string{"a", "b"}, version: "stub-mismatch", vec: oneHot("jazz")})

	pred, warnings := c.Classify(popSet(), 0.8, nil, nil)
	if pred.Method != "heuristic" {
		t.Errorf("Method = %q, want heuristic fallback", pred.Method)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "label set mismatch") {
		t.Errorf("warnings = %v, want label mismatch warning", warnings)
	}
}

func TestClassifyUnknownThemesWarn(t *testing.T) {
	c := NewClassifier(config.DefaultConfig())
	c.SetModel(&stubModel{labels: Labels(), version: "stub-1", vec: oneHot("jazz")})

	pred, warnings := c.Classify(popSet(), 0.8, nil, []Theme{{Name: "tax law", Weight: 1}})
	if pred.Method != "heuristic+model" {
		t.Errorf("Method = %q, want heuristic+model without lyrical", pred.Method)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no known genre affinities") {
		t.Errorf("warnings = %v, want unmatched-themes warning", warnings)
	}
}
