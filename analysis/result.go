package analysis

import (
	"time"

	"github.com/dwood1999/tunescore-sub000/analysis/features"
	"github.com/dwood1999/tunescore-sub000/analysis/genre"
	"github.com/dwood1999/tunescore-sub000/analysis/hook"
	"github.com/dwood1999/tunescore-sub000/analysis/quality"
	"github.com/dwood1999/tunescore-sub000/analysis/score"
)

// Result is the single immutable document one Analyze call produces.
// Non-fatal degradations along the way land in Warnings; fatal errors
// mean no Result at all.
type Result struct {
	Features features.FeatureSet `json:"features"`
	Quality  quality.Metrics     `json:"quality"`
	Hook     hook.Segment        `json:"hook"`
	Genre    genre.Prediction    `json:"genre"`
	Score    score.Composite     `json:"score"`

	Warnings   []string  `json:"warnings,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
