package features

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/dwood1999/tunescore-sub000/algorithms/filters"
	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
	"github.com/dwood1999/tunescore-sub000/algorithms/stats"
	"github.com/dwood1999/tunescore-sub000/algorithms/temporal"
	"github.com/dwood1999/tunescore-sub000/algorithms/windowing"
	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/analysis/ingest"
	"github.com/dwood1999/tunescore-sub000/logging"
)

// Extraction is the extractor output. The magnitude spectrogram and the
// frame series are reported alongside the features so downstream stages
// reuse them instead of re-running the STFT.
type Extraction struct {
	Frames  FrameSeries
	Vectors []FeatureVector
	Set     FeatureSet

	Spectrogram     *spectral.STFTResult
	LoudnessRangeLU float64
}

// Extractor computes per-frame descriptors and their aggregates.
type Extractor struct {
	cfg     *config.Config
	logger  logging.Logger
	windows *windowing.Generator
	energy  *temporal.Energy
}

// NewExtractor creates an extractor, validating the configured window type.
func NewExtractor(cfg *config.Config) (*Extractor, error) {
	gen := windowing.NewGenerator()
	if _, err := gen.Generate(windowing.WindowType(cfg.Frame.WindowType), cfg.Frame.Size); err != nil {
		return nil, fmt.Errorf("feature extractor window: %w", err)
	}

	return &Extractor{
		cfg: cfg,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_extractor",
		}),
		windows: gen,
		energy:  temporal.NewEnergy(cfg.SampleRate),
	}, nil
}

// Extract runs the full feature pass over a conditioned buffer.
func (e *Extractor) Extract(buf *ingest.SampleBuffer) (*Extraction, error) {
	frameSize := e.cfg.Frame.Size
	hopSize := e.cfg.Frame.HopSize
	rate := e.cfg.SampleRate

	frames := NewFrameSeries(len(buf.Samples), frameSize, hopSize, rate)
	if frames.Count() == 0 {
		return nil, fmt.Errorf("buffer shorter than one frame: %d samples", len(buf.Samples))
	}

	window, err := e.windows.Generate(windowing.WindowType(e.cfg.Frame.WindowType), frameSize)
	if err != nil {
		return nil, err
	}

	stft := spectral.NewSTFT()
	spectrogram, err := stft.ComputeWithWindow(buf.Samples, frameSize, hopSize, rate, window)
	if err != nil {
		return nil, fmt.Errorf("spectrogram: %w", err)
	}

	// MFCCs get their own spectrogram over the pre-emphasized signal;
	// everything else reads the plain one.
	preEmph, err := filters.NewPreEmphasis(e.cfg.Features.PreEmphasis)
	if err != nil {
		return nil, fmt.Errorf("pre-emphasis: %w", err)
	}
	emphGram, err := stft.ComputeWithWindow(preEmph.ProcessBuffer(buf.Samples), frameSize, hopSize, rate, window)
	if err != nil {
		return nil, fmt.Errorf("pre-emphasized spectrogram: %w", err)
	}

	vectors := e.computeVectors(buf.Samples, frames, spectrogram, emphGram)
	set := e.aggregate(vectors)

	set.DurationSeconds = buf.Duration
	set.LoudnessDB = e.energy.ComputeLoudness(buf.Samples)

	e.logger.Debug("Feature extraction completed", logging.Fields{
		"frames":      frames.Count(),
		"centroid":    set.CentroidMean,
		"energy":      set.EnergyMean,
		"loudness_db": set.LoudnessDB,
	})

	return &Extraction{
		Frames:          frames,
		Vectors:         vectors,
		Set:             set,
		Spectrogram:     spectrogram,
		LoudnessRangeLU: e.energy.ComputeLoudnessRange(buf.Samples),
	}, nil
}

// computeVectors runs the per-frame descriptor map on a worker pool.
func (e *Extractor) computeVectors(signal []float64, frames FrameSeries, spectrogram, emphGram *spectral.STFTResult) []FeatureVector {
	numFrames := frames.Count()
	vectors := make([]FeatureVector, numFrames)

	numWorkers := min(runtime.NumCPU(), 8, numFrames)
	if numWorkers < 1 {
		numWorkers = 1
	}

	jobs := make(chan int, numWorkers*2)
	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Per-worker calculators: the lazy frequency-axis setup in
			// each one is not safe to share across goroutines.
			centroid := spectral.NewSpectralCentroid(e.cfg.SampleRate)
			rolloff := spectral.NewSpectralRolloff(e.cfg.SampleRate)
			bandwidth := spectral.NewSpectralBandwidth(e.cfg.SampleRate)
			zcr := spectral.NewZeroCrossingRate()
			mfcc := spectral.NewMFCCWithParams(e.cfg.SampleRate, spectral.MFCCParams{
				NumCoefficients: e.cfg.Features.MFCCCoefficients,
				NumMelFilters:   e.cfg.Features.MelFilters,
			})

			for idx := range jobs {
				spectrum := spectrogram.Magnitude[idx]

				c := centroid.Compute(spectrum)
				start := frames.Offsets[idx]
				frame := signal[start : start+frames.FrameSize]

				v := FeatureVector{
					Centroid:         c,
					Rolloff:          rolloff.Compute(spectrum, e.cfg.Features.RolloffThreshold),
					Bandwidth:        bandwidth.Compute(spectrum, c),
					ZeroCrossingRate: zcr.ComputeNormalized(frame),
					RMSEnergy:        frameRMS(frame),
				}

				if res, err := mfcc.Compute(emphGram.Magnitude[idx]); err == nil {
					v.MFCC = res.MFCC
				} else {
					v.MFCC = make([]float64, e.cfg.Features.MFCCCoefficients)
				}

				vectors[idx] = v
			}
		}()
	}

	go func() {
		for i := range numFrames {
			jobs <- i
		}
		close(jobs)
	}()

	wg.Wait()
	return vectors
}

// aggregate reduces the per-frame vectors to track-level means and
// standard deviations.
func (e *Extractor) aggregate(vectors []FeatureVector) FeatureSet {
	n := len(vectors)
	centroids := make([]float64, n)
	rolloffs := make([]float64, n)
	bandwidths := make([]float64, n)
	zcrs := make([]float64, n)
	energies := make([]float64, n)

	for i, v := range vectors {
		centroids[i] = v.Centroid
		rolloffs[i] = v.Rolloff
		bandwidths[i] = v.Bandwidth
		zcrs[i] = v.ZeroCrossingRate
		energies[i] = v.RMSEnergy
	}

	var set FeatureSet
	set.CentroidMean, set.CentroidStd = stats.MeanStd(centroids)
	set.RolloffMean, set.RolloffStd = stats.MeanStd(rolloffs)
	set.BandwidthMean, set.BandwidthStd = stats.MeanStd(bandwidths)
	set.ZCRMean, set.ZCRStd = stats.MeanStd(zcrs)
	set.EnergyMean, set.EnergyStd = stats.MeanStd(energies)

	numCoeffs := e.cfg.Features.MFCCCoefficients
	set.MFCCMean = make([]float64, numCoeffs)
	set.MFCCStd = make([]float64, numCoeffs)
	column := make([]float64, n)
	for j := range numCoeffs {
		for i, v := range vectors {
			if j < len(v.MFCC) {
				column[i] = v.MFCC[j]
			} else {
				column[i] = 0
			}
		}
		set.MFCCMean[j], set.MFCCStd[j] = stats.MeanStd(column)
	}

	return set
}

func frameRMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}
