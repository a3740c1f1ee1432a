package hook

import (
	"math"
	"sort"

	"github.com/dwood1999/tunescore-sub000/algorithms/common"
	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/features"
	"github.com/dwood1999/tunescore-sub000/analysis/rhythm"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// Factor names one scoring component and its share of the winning
// window's weighted score.
type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Segment is the most hook-like span of the track. End-Start always
// equals the configured window duration unless the track is shorter,
// then FullTrack is set and the segment spans the whole track.
type Segment struct {
	StartSeconds float64  `json:"start_seconds"`
	EndSeconds   float64  `json:"end_seconds"`
	Score        float64  `json:"score"`
	FullTrack    bool     `json:"full_track"`
	Factors      []Factor `json:"factors"`
}

// window is one candidate span with its frame membership and raw factor
// values.
type window struct {
	start, end float64
	frames     []int
	signature  []float64

	energy     float64
	novelty    float64
	repetition float64
}

// Detector scores sliding windows for hook potential.
type Detector struct {
	cfg    *config.Config
	logger logging.Logger
}

// NewDetector creates a hook detector.
func NewDetector(cfg *config.Config) *Detector {
	return &Detector{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "hook_detector",
		}),
	}
}

// Detect finds the highest-scoring window. Each window is scored on
// energy (mean RMS against the track's own range), novelty (onset peak
// mass inside the window relative to the track), and repetition (best
// cosine similarity of its chroma+MFCC signature to non-overlapping
// windows).
func (d *Detector) Detect(ext *features.Extraction, est *rhythm.Estimate, duration float64) Segment {
	windows, fullTrack := d.buildWindows(ext, duration)
	if len(windows) == 0 {
		return Segment{
			EndSeconds: duration,
			FullTrack:  true,
			Factors:    d.shares(0, 0, 0),
		}
	}

	d.scoreEnergy(windows, ext)
	d.scoreNovelty(windows, ext, est)
	d.scoreRepetition(windows, ext, est.Chromagram)

	weightSum := d.cfg.Hook.EnergyWeight + d.cfg.Hook.NoveltyWeight + d.cfg.Hook.RepetitionWeight

	best := 0
	bestScore := -1.0
	for i, w := range windows {
		score := (d.cfg.Hook.EnergyWeight*w.energy +
			d.cfg.Hook.NoveltyWeight*w.novelty +
			d.cfg.Hook.RepetitionWeight*w.repetition) / weightSum
		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	win := windows[best]
	seg := Segment{
		StartSeconds: win.start,
		EndSeconds:   win.end,
		Score:        common.Clamp(bestScore*100, 0, 100),
		FullTrack:    fullTrack,
		Factors:      d.shares(win.energy, win.novelty, win.repetition),
	}

	d.logger.Debug("Hook detection completed", logging.Fields{
		"start":      seg.StartSeconds,
		"end":        seg.EndSeconds,
		"score":      seg.Score,
		"full_track": seg.FullTrack,
		"windows":    len(windows),
	})

	return seg
}

// buildWindows lays out candidate spans and collects their frame
// membership. A track shorter than the window yields one full-track span.
func (d *Detector) buildWindows(ext *features.Extraction, duration float64) ([]*window, bool) {
	if ext.Frames.Count() == 0 {
		return nil, true
	}

	windowLen := d.cfg.Hook.WindowSeconds
	step := d.cfg.Hook.StepSeconds

	if duration < windowLen {
		w := &window{start: 0, end: duration}
		for i := range ext.Frames.Count() {
			w.frames = append(w.frames, i)
		}
		return []*window{w}, true
	}

	var windows []*window
	for start := 0.0; start+windowLen <= duration+1e-9; start += step {
		windows = append(windows, &window{start: start, end: start + windowLen})
	}

	// Frame membership by start time; frames and windows both advance
	// monotonically.
	for i := range ext.Frames.Count() {
		t := ext.Frames.TimeAt(i)
		for _, w := range windows {
			if t >= w.start && t < w.end {
				w.frames = append(w.frames, i)
			}
		}
	}

	return windows, false
}

// scoreEnergy sets each window's energy factor: mean frame RMS
// normalized against the track's own min/max frame RMS.
func (d *Detector) scoreEnergy(windows []*window, ext *features.Extraction) {
	frameRMS := make([]float64, len(ext.Vectors))
	for i, v := range ext.Vectors {
		frameRMS[i] = v.RMSEnergy
	}

	minRMS, maxRMS := common.MinMax(frameRMS)
	span := maxRMS - minRMS

	for _, w := range windows {
		if len(w.frames) == 0 || span < common.Epsilon {
			continue
		}
		sum := 0.0
		for _, f := range w.frames {
			sum += frameRMS[f]
		}
		mean := sum / float64(len(w.frames))
		w.energy = common.Clamp((mean-minRMS)/span, 0, 1)
	}
}

// scoreNovelty sets each window's novelty factor: the share of the
// track's onset peak mass that falls inside the window.
func (d *Detector) scoreNovelty(windows []*window, ext *features.Extraction, est *rhythm.Estimate) {
	if len(est.OnsetFrames) == 0 || len(est.OnsetEnvelope) == 0 {
		return
	}

	total := 0.0
	for _, f := range est.OnsetFrames {
		if f >= 0 && f < len(est.OnsetEnvelope) {
			total += est.OnsetEnvelope[f]
		}
	}
	if total < common.Epsilon {
		return
	}

	for _, w := range windows {
		mass := 0.0
		for _, f := range est.OnsetFrames {
			if f < 0 || f >= len(est.OnsetEnvelope) {
				continue
			}
			// Envelope index f is the transition into frame f+1.
			t := ext.Frames.TimeAt(min(f+1, ext.Frames.Count()-1))
			if t >= w.start && t < w.end {
				mass += est.OnsetEnvelope[f]
			}
		}
		w.novelty = common.Clamp(mass/total, 0, 1)
	}
}

// scoreRepetition sets each window's repetition factor: the best cosine
// similarity between its chroma+MFCC signature and any window that does
// not overlap it. Overlapping neighbors share almost all their frames
// and would saturate the factor.
func (d *Detector) scoreRepetition(windows []*window, ext *features.Extraction, chromagram [][]float64) {
	if len(windows) < 2 {
		return
	}

	for _, w := range windows {
		w.signature = d.signature(w, ext, chromagram)
	}

	windowLen := d.cfg.Hook.WindowSeconds
	for i, w := range windows {
		best := 0.0
		for j, other := range windows {
			if i == j || math.Abs(other.start-w.start) < windowLen {
				continue
			}
			if sim := stats.CosineSimilarity(w.signature, other.signature); sim > best {
				best = sim
			}
		}
		w.repetition = common.Clamp(best, 0, 1)
	}
}

// signature is the window's mean chroma concatenated with its mean MFCC.
func (d *Detector) signature(w *window, ext *features.Extraction, chromagram [][]float64) []float64 {
	numCoeffs := d.cfg.Features.MFCCCoefficients
	sig := make([]float64, 12+numCoeffs)
	if len(w.frames) == 0 {
		return sig
	}

	for _, f := range w.frames {
		if f < len(chromagram) {
			for b, c := range chromagram[f] {
				if b < 12 {
					sig[b] += c
				}
			}
		}
		for j, c := range ext.Vectors[f].MFCC {
			if j < numCoeffs {
				sig[12+j] += c
			}
		}
	}

	n := float64(len(w.frames))
	for i := range sig {
		sig[i] /= n
	}
	return sig
}

// shares converts raw factor values to their ordered weighted shares of
// the window score.
func (d *Detector) shares(energy, novelty, repetition float64) []Factor {
	weighted := []Factor{
		{Name: "energy", Weight: d.cfg.Hook.EnergyWeight * energy},
		{Name: "novelty", Weight: d.cfg.Hook.NoveltyWeight * novelty},
		{Name: "repetition", Weight: d.cfg.Hook.RepetitionWeight * repetition},
	}

	total := 0.0
	for _, f := range weighted {
		total += f.Weight
	}
	if total > common.Epsilon {
		for i := range weighted {
			weighted[i].Weight /= total
		}
	} else {
		for i := range weighted {
			weighted[i].Weight = 0
		}
	}

	sort.SliceStable(weighted, func(i, j int) bool {
		return weighted[i].Weight > weighted[j].Weight
	})
	return weighted
}
