package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dwood1999/tunescore-sub000/analysis/config"
	"github.com/dwood1999/tunescore-sub000/logging"
	"github.com/spf13/cobra"
)

var (
	quiet      bool
	verbose    bool
	noColor    bool
	configPath string
	genreHint  string
	version    = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "tunescore",
	Short: "Score audio tracks for musical and commercial quality",
	Long: `tunescore analyzes an audio recording and produces acoustic descriptors,
a hook segment, a genre distribution, and a composite quality score.

WAV and FLAC are decoded natively. Other formats (MP3, AAC, OGG, ...)
are decoded through ffmpeg when it is available on PATH.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case quiet:
			logging.SetGlobalLogger(&logging.NoOpLogger{})
		case verbose:
			logging.SetLevel(logging.DebugLevel)
		default:
			// Info-level stage logs go to stdout and would interleave
			// with JSON output, so the CLI keeps warnings and up.
			logging.SetLevel(logging.WarnLevel)
		}
		if noColor {
			logging.DisableColors()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEngineConfig reads the JSON file named by --config. Omitted
// fields fall back to the engine defaults; no flag means nil, which
// the engine treats as all defaults.
func loadEngineConfig() (*config.Config, error) {
	if configPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
	}
	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON config file overriding engine defaults")
	rootCmd.PersistentFlags().StringVar(&genreHint, "genre", "", "genre hint for timing tolerance (e.g. jazz, hip-hop)")
	rootCmd.Flags().BoolP("version", "v", false, "print version information")

	rootCmd.SetVersionTemplate("tunescore version {{.Version}}\n")
	rootCmd.Version = version
}
