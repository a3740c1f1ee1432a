package genre

import (
	"sort"
	"strings"

	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/features"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// source is one available prediction source going into the fusion.
type source struct {
	name   string
	weight float64
	vec    []float64
}

// Classifier fuses the heuristic, model, and lyrical sources into one
// ranked prediction.
type Classifier struct {
	cfg       *config.Config
	logger    logging.Logger
	heuristic *Heuristic

	// override replaces the process-wide model when set; used by tests
	// and by callers that manage their own model lifecycle.
	override Model
}

// NewClassifier creates a genre classifier.
func NewClassifier(cfg *config.Config) *Classifier {
	return &Classifier{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "genre_classifier",
		}),
		heuristic: NewHeuristic(),
	}
}

// SetModel overrides the shared model for this classifier instance.
func (c *Classifier) SetModel(m Model) {
	c.override = m
}

// Classify runs every available source and fuses the results. The
// heuristic always contributes; the model and lyrical sources drop out
// with a warning when unavailable or invalid.
func (c *Classifier) Classify(set features.FeatureSet, tempoConfidence float64, spectrogram *spectral.STFTResult, themes []Theme) (Prediction, []string) {
	var warnings []string

	heuristicVec := c.heuristic.Predict(set, tempoConfidence)
	sources := []source{{name: "heuristic", weight: c.cfg.Genre.HeuristicWeight, vec: heuristicVec}}

	if vec, warning := c.modelPredict(spectrogram); vec != nil {
		sources = append(sources, source{name: "model", weight: c.cfg.Genre.ModelWeight, vec: vec})
	} else if warning != "" {
		warnings = append(warnings, warning)
	}

	if len(themes) > 0 {
		if vec := PredictLyrical(themes); vec != nil {
			sources = append(sources, source{name: "lyrical", weight: c.cfg.Genre.LyricalWeight, vec: vec})
		} else {
			warnings = append(warnings, "lyrical themes matched no known genre affinities")
		}
	}

	fused := fuse(sources)
	candidates := rank(fused, heuristicVec, c.cfg.Genre.TopCandidates)

	methods := make([]string, len(sources))
	for i, s := range sources {
		methods[i] = s.name
	}

	pred := Prediction{
		PrimaryGenre: candidates[0].Genre,
		Confidence:   candidates[0].Confidence,
		Candidates:   candidates,
		Method:       strings.Join(methods, "+"),
	}

	c.logger.Debug("Genre classification completed", logging.Fields{
		"primary":    pred.PrimaryGenre,
		"confidence": pred.Confidence,
		"method":     pred.Method,
	})

	return pred, warnings
}

// modelPredict runs the model source end to end: resolve the model,
// check its label set, build the tensor, validate the output. Any
// failure makes the source unavailable for this call.
func (c *Classifier) modelPredict(spectrogram *spectral.STFTResult) ([]float64, string) {
	model := c.override
	if model == nil {
		var err error
		model, err = sharedModel()
		if err != nil {
			return nil, "genre model unavailable: " + err.Error()
		}
	}

	if !sameLabels(model.Labels()) {
		return nil, "genre model unavailable: label set mismatch for " + model.Version()
	}

	tensor := BuildTensor(spectrogram, c.cfg.Genre.MelBands, c.cfg.Genre.TimeSteps)
	vec, err := model.Predict(tensor)
	if err != nil {
		return nil, "genre model unavailable: " + err.Error()
	}
	if err := validatePrediction(vec); err != nil {
		return nil, "genre model unavailable: " + err.Error()
	}

	return vec, ""
}

// fuse computes the weighted arithmetic mean of the source vectors with
// weights renormalized over the sources that actually contributed.
func fuse(sources []source) []float64 {
	fused := make([]float64, len(labels))

	weightSum := 0.0
	for _, s := range sources {
		weightSum += s.weight
	}
	if weightSum <= 0 {
		return fused
	}

	for _, s := range sources {
		w := s.weight / weightSum
		for i, v := range s.vec {
			fused[i] += w * v
		}
	}
	return fused
}

// rank orders the fused vector, breaking exact ties by the heuristic
// ranking, and reports the top n candidates.
func rank(fused, heuristicVec []float64, n int) []Candidate {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		if fused[idx[a]] != fused[idx[b]] {
			return fused[idx[a]] > fused[idx[b]]
		}
		return heuristicVec[idx[a]] > heuristicVec[idx[b]]
	})

	if n > len(idx) || n <= 0 {
		n = len(idx)
	}

	candidates := make([]Candidate, n)
	for i := range n {
		candidates[i] = Candidate{
			Genre:      labels[idx[i]],
			Confidence: fused[idx[i]],
		}
	}
	return candidates
}
