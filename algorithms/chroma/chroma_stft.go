package chroma

import (
	"math"

	"github.com/dwood1999/tunescore-sub000/algorithms/spectral"
)

// NoteNames are the twelve pitch class labels in semitone order from C.
var NoteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ChromaSTFT computes a chromagram from STFT magnitudes by folding
// frequency bins into 12 semitone classes. Bins outside the musical
// range are ignored and each frame is normalized to unit sum.
type ChromaSTFT struct {
	sampleRate int
	stft       *spectral.STFT
	tuningFreq float64 // A4 frequency (default 440 Hz)
	chromaBins int     // Number of chroma bins (always 12)
	minFreq    float64 // Minimum frequency to consider
	maxFreq    float64 // Maximum frequency to consider
}

// NewChromaSTFT creates a new STFT-based chromagram calculator
func NewChromaSTFT(sampleRate int, tuningFreq float64) *ChromaSTFT {
	return &ChromaSTFT{
		sampleRate: sampleRate,
		stft:       spectral.NewSTFT(),
		tuningFreq: tuningFreq,
		chromaBins: 12,
		minFreq:    80.0,   // Approximate E2
		maxFreq:    8000.0, // High enough for harmonics
	}
}

// NewChromaSTFTDefault creates chromagram with standard A4=440Hz tuning
func NewChromaSTFTDefault(sampleRate int) *ChromaSTFT {
	return NewChromaSTFT(sampleRate, 440.0)
}

// NewChromaSTFTWithRange creates a chromagram calculator with a custom
// frequency band.
func NewChromaSTFTWithRange(sampleRate int, tuningFreq, minFreq, maxFreq float64) *ChromaSTFT {
	cs := NewChromaSTFT(sampleRate, tuningFreq)
	cs.minFreq = minFreq
	cs.maxFreq = maxFreq
	return cs
}

// ComputeChroma computes a chromagram from an audio signal
func (cs *ChromaSTFT) ComputeChroma(signal []float64, windowSize, hopSize int, window spectral.Window) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, nil
	}

	stftResult, err := cs.stft.ComputeWithWindow(signal, windowSize, hopSize, cs.sampleRate, window)
	if err != nil {
		return nil, err
	}

	return cs.ComputeFromSpectrogram(stftResult), nil
}

// ComputeFromSpectrogram converts an already computed STFT magnitude
// spectrogram to a chromagram. Lets callers that share one STFT across
// several analyses avoid recomputing it.
func (cs *ChromaSTFT) ComputeFromSpectrogram(stftResult *spectral.STFTResult) [][]float64 {
	chromagram := make([][]float64, stftResult.TimeFrames)

	// Pre-calculate frequency to chroma bin mapping
	chromaMapping := cs.calculateChromaMapping(stftResult.FreqBins, stftResult.FreqResolution)

	for t := 0; t < stftResult.TimeFrames; t++ {
		chromagram[t] = make([]float64, cs.chromaBins)

		// Map magnitude spectrum to chroma bins
		for f := 0; f < stftResult.FreqBins; f++ {
			magnitude := stftResult.Magnitude[t][f]
			chromaBin := chromaMapping[f]

			if chromaBin >= 0 && chromaBin < cs.chromaBins {
				// Use magnitude squared for energy
				chromagram[t][chromaBin] += magnitude * magnitude
			}
		}

		// Normalize chroma vector
		cs.normalizeChromaFrame(chromagram[t])
	}

	return chromagram
}

// calculateChromaMapping maps FFT bins to chroma bins
func (cs *ChromaSTFT) calculateChromaMapping(freqBins int, freqResolution float64) []int {
	mapping := make([]int, freqBins)

	for f := range freqBins {
		frequency := float64(f) * freqResolution

		if frequency < cs.minFreq || frequency > cs.maxFreq {
			mapping[f] = -1 // Outside valid range
			continue
		}

		// Convert frequency to MIDI note number
		midiNote := cs.frequencyToMIDI(frequency)

		// Map to chroma bin (0-11)
		chromaBin := ((int(math.Round(midiNote)) % 12) + 12) % 12
		mapping[f] = chromaBin
	}

	return mapping
}

// frequencyToMIDI converts frequency to MIDI note number
func (cs *ChromaSTFT) frequencyToMIDI(frequency float64) float64 {
	if frequency <= 0 {
		return 0
	}

	// A4 (440 Hz) = MIDI note 69
	return 69.0 + 12.0*math.Log2(frequency/cs.tuningFreq)
}

// normalizeChromaFrame normalizes a single chroma frame to unit sum
func (cs *ChromaSTFT) normalizeChromaFrame(chromaFrame []float64) {
	totalEnergy := 0.0
	for _, energy := range chromaFrame {
		totalEnergy += energy
	}

	if totalEnergy > 1e-10 {
		for i := range chromaFrame {
			chromaFrame[i] /= totalEnergy
		}
	}
}

// MeanChroma averages a chromagram across time, yielding the pitch class
// profile used for key estimation.
func MeanChroma(chromagram [][]float64) []float64 {
	meanChroma := make([]float64, 12)
	if len(chromagram) == 0 {
		return meanChroma
	}

	for t := range chromagram {
		for bin := range chromagram[t] {
			if bin < len(meanChroma) {
				meanChroma[bin] += chromagram[t][bin]
			}
		}
	}
	for bin := range meanChroma {
		meanChroma[bin] /= float64(len(chromagram))
	}

	return meanChroma
}
