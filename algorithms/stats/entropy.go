package stats

import (
	"math"
)

// ShannonEntropy computes the Shannon entropy (base 2) of a discrete
// distribution. The input need not be normalized; it is treated as
// non-negative weights and normalized internally. An empty or all-zero
// input has zero entropy.
//
// Reference: Shannon, C.E. (1948). "A Mathematical Theory of Communication"
func ShannonEntropy(weights []float64) float64 {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	if total < 1e-10 {
		return 0.0
	}

	entropy := 0.0
	for _, w := range weights {
		if w > 0 {
			p := w / total
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}

// NormalizedShannonEntropy scales Shannon entropy to [0, 1] by the
// maximum entropy log2(n) for an n-bin distribution. 0 means all weight
// in one bin, 1 means uniform.
func NormalizedShannonEntropy(weights []float64) float64 {
	n := len(weights)
	if n < 2 {
		return 0.0
	}

	maxEntropy := math.Log2(float64(n))
	return ShannonEntropy(weights) / maxEntropy
}
