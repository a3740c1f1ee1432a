package genre

// LabelsVersion identifies the closed label set predictions are made
// over. Any model plugged into the classifier must predict this set.
const LabelsVersion = "v1"

// labels is the v1 genre set, in canonical order.
var labels = []string{
	"pop", "rock", "hip-hop", "r&b", "electronic",
	"country", "folk", "jazz", "classical", "metal",
}

// Labels returns the canonical genre label set.
func Labels() []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Candidate is one ranked genre with its confidence.
type Candidate struct {
	Genre      string  `json:"genre"`
	Confidence float64 `json:"confidence"`
}

// Prediction is the fused classification result. Candidates are ranked
// by confidence and sum to at most 1. Method names the sources that
// contributed, joined by "+" in heuristic/model/lyrical order.
type Prediction struct {
	PrimaryGenre string      `json:"primary_genre"`
	Confidence   float64     `json:"confidence"`
	Candidates   []Candidate `json:"candidates"`
	Method       string      `json:"method"`
}

// Theme is one externally supplied lyrical theme with its rank weight.
type Theme struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}
