package genre

import "strings"

// themeAffinity maps a lyrical theme to genre affinities over the v1
// label set. Rows need not sum to 1; the final vector is normalized.
var themeAffinity = map[string]map[string]float64{
	"love":       {"pop": 0.30, "r&b": 0.30, "country": 0.20, "rock": 0.10, "folk": 0.10},
	"heartbreak": {"country": 0.30, "r&b": 0.25, "pop": 0.25, "folk": 0.20},
	"party":      {"pop": 0.30, "hip-hop": 0.30, "electronic": 0.30, "r&b": 0.10},
	"street":     {"hip-hop": 0.60, "r&b": 0.20, "pop": 0.10, "rock": 0.10},
	"money":      {"hip-hop": 0.50, "pop": 0.20, "r&b": 0.20, "electronic": 0.10},
	"faith":      {"country": 0.30, "folk": 0.30, "pop": 0.20, "classical": 0.20},
	"rebellion":  {"rock": 0.40, "metal": 0.30, "hip-hop": 0.20, "electronic": 0.10},
	"nature":     {"folk": 0.40, "country": 0.30, "classical": 0.20, "pop": 0.10},
	"darkness":   {"metal": 0.40, "rock": 0.25, "electronic": 0.20, "hip-hop": 0.15},
	"dance":      {"electronic": 0.45, "pop": 0.30, "hip-hop": 0.15, "r&b": 0.10},
	"nostalgia":  {"folk": 0.30, "country": 0.25, "pop": 0.25, "rock": 0.20},
	"struggle":   {"hip-hop": 0.35, "rock": 0.25, "folk": 0.20, "country": 0.20},
}

// labelIndex maps label name to its position in the canonical order.
var labelIndex = func() map[string]int {
	m := make(map[string]int, len(labels))
	for i, l := range labels {
		m[l] = i
	}
	return m
}()

// PredictLyrical turns a ranked theme list into a probability vector
// over Labels(). Returns nil when no supplied theme is recognized; the
// source is then unavailable for the call.
func PredictLyrical(themes []Theme) []float64 {
	vec := make([]float64, len(labels))
	matched := false

	for _, theme := range themes {
		if theme.Weight <= 0 {
			continue
		}
		affinity, ok := themeAffinity[strings.ToLower(strings.TrimSpace(theme.Name))]
		if !ok {
			continue
		}
		matched = true
		for g, a := range affinity {
			if idx, ok := labelIndex[g]; ok {
				vec[idx] += theme.Weight * a
			}
		}
	}

	if !matched {
		return nil
	}

	total := 0.0
	for _, v := range vec {
		total += v
	}
	if total <= 0 {
		return nil
	}
	for i := range vec {
		vec[i] /= total
	}
	return vec
}
