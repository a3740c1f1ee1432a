package config

import (
	"reflect"
	"testing"
)

// --- Defaults ---

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()

	if c.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", c.SampleRate)
	}
	if c.MinDurationSeconds != 1.0 {
		t.Errorf("MinDurationSeconds = %v, want 1.0", c.MinDurationSeconds)
	}
	if c.Frame.Size != 2048 || c.Frame.HopSize != 512 || c.Frame.WindowType != "hann" {
		t.Errorf("Frame = %+v, want 2048/512/hann", c.Frame)
	}
	if c.Rhythm.MinBPM != 40 || c.Rhythm.MaxBPM != 220 || c.Rhythm.PriorBPM != 120 {
		t.Errorf("Rhythm tempo range = %+v, want 40-220 prior 120", c.Rhythm)
	}
	if c.Quality.NeutralScore != 50 {
		t.Errorf("NeutralScore = %v, want 50", c.Quality.NeutralScore)
	}
	if c.Hook.WindowSeconds != 15 || c.Hook.StepSeconds != 1 {
		t.Errorf("Hook window = %v/%v, want 15/1", c.Hook.WindowSeconds, c.Hook.StepSeconds)
	}
	if c.Genre.MelBands != 64 || c.Genre.TimeSteps != 96 {
		t.Errorf("Genre tensor = %dx%d, want 64x96", c.Genre.MelBands, c.Genre.TimeSteps)
	}

	ceilings := c.Score.MusicalityCeiling + c.Score.HookCeiling + c.Score.LyricalCeiling +
		c.Score.CommercialCeiling + c.Score.ProductionCeiling
	if ceilings != 100 {
		t.Errorf("score ceilings sum = %v, want 100", ceilings)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// --- ApplyDefaults ---

func TestApplyDefaultsEmpty(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults()
	if !reflect.DeepEqual(c, DefaultConfig()) {
		t.Errorf("empty config after ApplyDefaults = %+v, want defaults", c)
	}
}

func TestApplyDefaultsPreservesOverrides(t *testing.T) {
	c := &Config{SampleRate: 44100}
	c.Frame.Size = 4096
	c.ApplyDefaults()

	if c.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100 preserved", c.SampleRate)
	}
	if c.Frame.Size != 4096 {
		t.Errorf("Frame.Size = %d, want 4096 preserved", c.Frame.Size)
	}
	if c.Frame.HopSize != 512 {
		t.Errorf("Frame.HopSize = %d, want 512 filled in", c.Frame.HopSize)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("overridden config invalid: %v", err)
	}
}

func TestApplyDefaultsWeightTriples(t *testing.T) {
	// Setting any one weight of a triple claims the whole triple; the
	// remaining weights stay zero instead of being topped up.
	c := &Config{}
	c.Hook.EnergyWeight = 0.7
	c.Genre.ModelWeight = 1.0
	c.ApplyDefaults()

	if c.Hook.EnergyWeight != 0.7 || c.Hook.NoveltyWeight != 0 || c.Hook.RepetitionWeight != 0 {
		t.Errorf("hook weights = %v/%v/%v, want 0.7/0/0",
			c.Hook.EnergyWeight, c.Hook.NoveltyWeight, c.Hook.RepetitionWeight)
	}
	if c.Genre.HeuristicWeight != 0 || c.Genre.ModelWeight != 1.0 || c.Genre.LyricalWeight != 0 {
		t.Errorf("genre weights = %v/%v/%v, want 0/1/0",
			c.Genre.HeuristicWeight, c.Genre.ModelWeight, c.Genre.LyricalWeight)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("partial-weight config invalid: %v", err)
	}
}

// --- Validate ---

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative sample rate", func(c *Config) { c.SampleRate = -1 }},
		{"negative min duration", func(c *Config) { c.MinDurationSeconds = -1 }},
		{"zero frame size", func(c *Config) { c.Frame.Size = 0 }},
		{"hop above frame size", func(c *Config) { c.Frame.HopSize = c.Frame.Size + 1 }},
		{"rolloff above one", func(c *Config) { c.Features.RolloffThreshold = 1.5 }},
		{"pre-emphasis at one", func(c *Config) { c.Features.PreEmphasis = 1.0 }},
		{"mfcc above mel filters", func(c *Config) { c.Features.MFCCCoefficients = c.Features.MelFilters + 1 }},
		{"zero min bpm", func(c *Config) { c.Rhythm.MinBPM = 0 }},
		{"inverted tempo range", func(c *Config) { c.Rhythm.MinBPM = 180; c.Rhythm.MaxBPM = 90 }},
		{"prior outside range", func(c *Config) { c.Rhythm.PriorBPM = 300 }},
		{"voiced fraction above one", func(c *Config) { c.Quality.MinVoicedFraction = 1.5 }},
		{"zero cents deviation", func(c *Config) { c.Quality.MaxCentsDeviation = 0 }},
		{"zero hook window", func(c *Config) { c.Hook.WindowSeconds = 0 }},
		{"zero hook weights", func(c *Config) {
			c.Hook.EnergyWeight = 0
			c.Hook.NoveltyWeight = 0
			c.Hook.RepetitionWeight = 0
		}},
		{"zero genre weights", func(c *Config) {
			c.Genre.HeuristicWeight = 0
			c.Genre.ModelWeight = 0
			c.Genre.LyricalWeight = 0
		}},
		{"zero mel bands", func(c *Config) { c.Genre.MelBands = 0 }},
		{"zero score ceilings", func(c *Config) {
			c.Score.MusicalityCeiling = 0
			c.Score.HookCeiling = 0
			c.Score.LyricalCeiling = 0
			c.Score.CommercialCeiling = 0
			c.Score.ProductionCeiling = 0
		}},
	}

	for _, tt := range tests {
		c := DefaultConfig()
		tt.mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", tt.name)
		}
	}
}
