package analysis

import "fmt"

// Pipeline stage names reported by PipelineError.
const (
	StageIngest   = "ingest"
	StageFeatures = "features"
	StageRhythm   = "rhythm"
	StageQuality  = "quality"
	StageHook     = "hook"
	StageGenre    = "genre"
	StageScore    = "score"
)

// PipelineError wraps a stage failure so callers see where the pipeline
// stopped and can still errors.Is the underlying cause.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("analysis stage %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
