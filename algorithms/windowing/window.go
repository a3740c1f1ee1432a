package windowing

import (
	"fmt"
	"math"

	"github.com/dwood1999/tunescore-sub000/logging"
)

// WindowType represents different window function types
type WindowType string

const (
	WindowHann     WindowType = "hann"
	WindowHamming  WindowType = "hamming"
	WindowBlackman WindowType = "blackman"
)

// Window represents a window function with its coefficients and metadata
type Window struct {
	Type         WindowType `json:"type"`
	Size         int        `json:"size"`
	Coefficients []float64  `json:"coefficients"`
	Energy       float64    `json:"energy"`        // Sum of squared coefficients
	CoherentGain float64    `json:"coherent_gain"` // Mean of coefficients
}

// Generator generates and caches window functions. A generator is not
// safe for concurrent Generate calls; each analysis pass owns its own.
type Generator struct {
	logger logging.Logger
	cache  map[string]*Window
}

// NewGenerator creates a new window generator
func NewGenerator() *Generator {
	return &Generator{
		logger: logging.WithFields(logging.Fields{
			"component": "window_generator",
		}),
		cache: make(map[string]*Window),
	}
}

// Generate creates a symmetric window of the given type and size,
// returning the cached instance when one exists.
func (g *Generator) Generate(windowType WindowType, size int) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive: %d", size)
	}

	cacheKey := fmt.Sprintf("%s_%d", windowType, size)
	if cached, exists := g.cache[cacheKey]; exists {
		return cached, nil
	}

	coefficients := make([]float64, size)

	switch windowType {
	case WindowHann:
		generateHann(coefficients)
	case WindowHamming:
		generateHamming(coefficients)
	case WindowBlackman:
		generateBlackman(coefficients)
	default:
		return nil, fmt.Errorf("unsupported window type: %s", windowType)
	}

	window := &Window{
		Type:         windowType,
		Size:         size,
		Coefficients: coefficients,
	}
	window.calculateProperties()

	g.cache[cacheKey] = window

	g.logger.Debug("Window generated", logging.Fields{
		"window_type":   windowType,
		"window_size":   size,
		"energy":        window.Energy,
		"coherent_gain": window.CoherentGain,
	})

	return window, nil
}

// Apply applies the window to a signal (creates new array)
func (w *Window) Apply(signal []float64) ([]float64, error) {
	if len(signal) != w.Size {
		return nil, fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.Size)
	}

	windowed := make([]float64, w.Size)
	for i := 0; i < w.Size; i++ {
		windowed[i] = signal[i] * w.Coefficients[i]
	}

	return windowed, nil
}

// ApplyInPlace applies the window to a signal in-place
func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != w.Size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), w.Size)
	}

	for i := 0; i < w.Size; i++ {
		signal[i] *= w.Coefficients[i]
	}

	return nil
}

// calculateProperties fills in energy and coherent gain
func (w *Window) calculateProperties() {
	energy := 0.0
	coherentSum := 0.0
	for _, coeff := range w.Coefficients {
		energy += coeff * coeff
		coherentSum += coeff
	}

	w.Energy = energy
	w.CoherentGain = coherentSum / float64(w.Size)
}

// ENBW returns the equivalent noise bandwidth of the window in bins
func (w *Window) ENBW() float64 {
	coherentSum := w.CoherentGain * float64(w.Size)
	if math.Abs(coherentSum) < 1e-10 {
		return 0.0
	}
	return float64(w.Size) * w.Energy / (coherentSum * coherentSum)
}
