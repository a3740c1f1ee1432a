package analysis

import "github.com/dwood1999/tunescore-sub000/analysis/genre"

// Input describes one track to analyze. Exactly one of Path or Bytes
// must be set; Bytes wins when both are.
type Input struct {
	Path  string `json:"path,omitempty"`
	Bytes []byte `json:"-"`

	// FormatHint names the container ("wav", "flac") when magic-byte
	// sniffing cannot identify it.
	FormatHint string `json:"format_hint,omitempty"`

	// GenreHint is the caller's declared genre. It only widens the
	// timing tolerance band for genres that lean on syncopation; it
	// never feeds classification.
	GenreHint string `json:"genre_hint,omitempty"`

	// Lyrics carries optional pre-computed lyrical analysis. The engine
	// does no text processing of its own.
	Lyrics *LyricalInput `json:"lyrics,omitempty"`
}

// LyricalInput is the opaque output of an external lyrics collaborator:
// ranked themes plus 0-100 scores. Nil score pointers mean the neutral
// default applies.
type LyricalInput struct {
	Themes          []genre.Theme `json:"themes,omitempty"`
	QualityScore    *float64      `json:"quality_score,omitempty"`
	RepetitionScore *float64      `json:"repetition_score,omitempty"`
}
