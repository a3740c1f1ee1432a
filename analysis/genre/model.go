package genre

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Model is a learned prediction source. Predict takes the tensor built
// by BuildTensor and returns a probability vector over Labels().
type Model interface {
	Labels() []string
	Version() string
	Predict(tensor []float64) ([]float64, error)
}

// ErrNoModel is returned by the shared model accessor when no factory
// was registered.
var ErrNoModel = errors.New("no genre model registered")

var (
	modelMu       sync.Mutex
	modelFactory  func() (Model, error)
	modelOnce     sync.Once
	modelInstance Model
	modelErr      error
)

// RegisterModelFactory installs the process-wide model constructor. The
// factory runs lazily on first use; registrations after that point are
// ignored.
func RegisterModelFactory(factory func() (Model, error)) {
	modelMu.Lock()
	defer modelMu.Unlock()
	modelFactory = factory
}

// sharedModel returns the lazily initialized process-wide model.
func sharedModel() (Model, error) {
	modelOnce.Do(func() {
		modelMu.Lock()
		factory := modelFactory
		modelMu.Unlock()

		if factory == nil {
			modelErr = ErrNoModel
			return
		}
		modelInstance, modelErr = factory()
	})
	return modelInstance, modelErr
}

// validatePrediction checks a model output vector against the expected
// label set: right length, entries in [0,1], total within 1e-3 of 1.
func validatePrediction(vec []float64) error {
	if len(vec) != len(labels) {
		return fmt.Errorf("prediction length %d, want %d", len(vec), len(labels))
	}

	sum := 0.0
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return fmt.Errorf("prediction[%d] out of range: %v", i, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-3 {
		return fmt.Errorf("prediction sums to %v, want 1", sum)
	}
	return nil
}

// sameLabels reports whether a model predicts the canonical label set.
func sameLabels(got []string) bool {
	if len(got) != len(labels) {
		return false
	}
	for i, l := range got {
		if l != labels[i] {
			return false
		}
	}
	return true
}
