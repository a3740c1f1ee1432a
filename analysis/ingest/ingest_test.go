package ingest

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/dwood1999/tunescore-sub000/analysis/config"
)

// writeWAV writes interleaved [-1, 1] samples as a 16-bit PCM WAV file
// and returns its path.
func writeWAV(t *testing.T, name string, sampleRate, channels int, samples []float64) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s * 32767)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close %s: %v", name, err)
	}
	return path
}

func sineWave(freq, amp float64, sampleRate, n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func newIngestor() *Ingestor {
	cfg := config.DefaultConfig()
	return NewIngestor(cfg)
}

// --- File ingestion ---

func TestIngestFileWAVMono(t *testing.T) {
	path := writeWAV(t, "mono.wav", 22050, 1, sineWave(440, 0.5, 22050, 44100))

	buf, err := newIngestor().IngestFile(path)
	if err != nil {
		t.Fatalf("IngestFile error: %v", err)
	}
	if buf.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", buf.SampleRate)
	}
	if buf.Channels != 1 {
		t.Errorf("Channels = %d, want 1", buf.Channels)
	}
	if len(buf.Samples) != 44100 {
		t.Errorf("samples = %d, want 44100", len(buf.Samples))
	}
	if math.Abs(buf.Duration-2.0) > 1e-9 {
		t.Errorf("Duration = %v, want 2.0", buf.Duration)
	}
	for i, s := range buf.Samples {
		if s < -1.0 || s > 1.0 {
			t.Fatalf("sample %d = %v outside [-1, 1]", i, s)
		}
	}
}

func TestIngestFileStereoDownmix(t *testing.T) {
	mono := sineWave(440, 0.5, 22050, 22050)
	stereo := make([]float64, 2*len(mono))
	for i, s := range mono {
		stereo[2*i] = s
		stereo[2*i+1] = s
	}
	path := writeWAV(t, "stereo.wav", 22050, 2, stereo)

	buf, err := newIngestor().IngestFile(path)
	if err != nil {
		t.Fatalf("IngestFile error: %v", err)
	}
	if buf.Channels != 2 {
		t.Errorf("Channels = %d, want 2", buf.Channels)
	}
	if len(buf.Samples) != len(mono) {
		t.Errorf("samples = %d, want %d after downmix", len(buf.Samples), len(mono))
	}
}

func TestIngestFileResamples(t *testing.T) {
	path := writeWAV(t, "hires.wav", 44100, 1, sineWave(440, 0.5, 44100, 44100))

	buf, err := newIngestor().IngestFile(path)
	if err != nil {
		t.Fatalf("IngestFile error: %v", err)
	}
	if buf.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", buf.SampleRate)
	}
	if math.Abs(buf.Duration-1.0) > 0.01 {
		t.Errorf("Duration = %v, want ~1.0 preserved across resampling", buf.Duration)
	}
}

func TestIngestFileMissing(t *testing.T) {
	if _, err := newIngestor().IngestFile("/nonexistent/track.wav"); err == nil {
		t.Error("missing file succeeded, want error")
	}
}

// --- Byte ingestion ---

func TestIngestBytesEmpty(t *testing.T) {
	_, err := newIngestor().IngestBytes(nil, "wav")
	if !errors.Is(err, ErrCorruptAudio) {
		t.Errorf("empty input error = %v, want ErrCorruptAudio", err)
	}
}

func TestIngestBytesGarbage(t *testing.T) {
	garbage := make([]byte, 1024)
	for i := range garbage {
		garbage[i] = byte(i * 7)
	}

	// Without ffmpeg the container is unsupported; with ffmpeg the
	// decode fails as corrupt. Either way ingestion must refuse it.
	_, err := newIngestor().IngestBytes(garbage, "")
	if !errors.Is(err, ErrUnsupportedFormat) && !errors.Is(err, ErrCorruptAudio) {
		t.Errorf("garbage input error = %v, want unsupported or corrupt", err)
	}
}

func TestIngestBytesWAV(t *testing.T) {
	path := writeWAV(t, "inline.wav", 22050, 1, sineWave(440, 0.5, 22050, 44100))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	// Sniffing identifies WAV regardless of the hint.
	buf, err := newIngestor().IngestBytes(data, "bin")
	if err != nil {
		t.Fatalf("IngestBytes error: %v", err)
	}
	if len(buf.Samples) != 44100 {
		t.Errorf("samples = %d, want 44100", len(buf.Samples))
	}
}

func TestIngestTooShort(t *testing.T) {
	path := writeWAV(t, "short.wav", 22050, 1, sineWave(440, 0.5, 22050, 11025))

	_, err := newIngestor().IngestFile(path)
	if !errors.Is(err, ErrTrackTooShort) {
		t.Errorf("half-second track error = %v, want ErrTrackTooShort", err)
	}
}

// --- Format detection ---

func TestSniffFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), "wav"},
		{"flac", []byte("fLaC\x00\x00\x00\x22"), "flac"},
		{"unknown", []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), ""},
		{"short", []byte("RI"), ""},
	}
	for _, tt := range tests {
		if got := sniffFormat(tt.data); got != tt.want {
			t.Errorf("%s: sniffFormat = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeHint(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{"wav", "wav"},
		{"WAVE", "wav"},
		{" flac ", "flac"},
		{"mp3", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeHint(tt.hint); got != tt.want {
			t.Errorf("normalizeHint(%q) = %q, want %q", tt.hint, got, tt.want)
		}
	}
}

// --- Channel mixdown ---

func TestMixToMono(t *testing.T) {
	mixed := mixToMono([]float64{1, 0, 0, 1, 0.5, 0.5}, 2)
	want := []float64{0.5, 0.5, 0.5}
	if len(mixed) != len(want) {
		t.Fatalf("frames = %d, want %d", len(mixed), len(want))
	}
	for i := range want {
		if mixed[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, mixed[i], want[i])
		}
	}
}

func TestMixToMonoPassthrough(t *testing.T) {
	samples := []float64{0.1, 0.2, 0.3}
	if got := mixToMono(samples, 1); &got[0] != &samples[0] {
		t.Error("mono input copied, want passthrough")
	}
}
