package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Epsilon is the floor used to guard divisions by spectral energy and
// logarithm arguments throughout the algorithms packages. Degenerate
// signals produce 0 by convention, never NaN or Inf.
const Epsilon = 1e-10

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// MinMax returns the minimum and maximum of data using gonum
func MinMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0.0, 0.0
	}
	return floats.Min(data), floats.Max(data)
}

// MinMaxNormalize normalizes data to [0, 1] range. Constant data
// normalizes to all zeros.
func MinMaxNormalize(data []float64) []float64 {
	if len(data) == 0 {
		return data
	}

	min, max := MinMax(data)

	normalized := make([]float64, len(data))
	if math.Abs(max-min) < Epsilon {
		return normalized
	}

	for i, val := range data {
		normalized[i] = (val - min) / (max - min)
	}

	return normalized
}

// FindPeaks finds local maxima in data at least minHeight tall and
// separated by at least minDistance samples. When two peaks fall inside
// the distance constraint the taller one wins.
func FindPeaks(data []float64, minHeight, minDistance float64) []int {
	if len(data) < 3 {
		return []int{}
	}

	var peaks []int

	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] > data[i+1] && data[i] >= minHeight {
			validPeak := true
			for _, existingPeak := range peaks {
				if math.Abs(float64(i-existingPeak)) < minDistance {
					if data[i] > data[existingPeak] {
						for j, peak := range peaks {
							if peak == existingPeak {
								peaks = append(peaks[:j], peaks[j+1:]...)
								break
							}
						}
					} else {
						validPeak = false
					}
					break
				}
			}

			if validPeak {
				peaks = append(peaks, i)
			}
		}
	}

	return peaks
}
