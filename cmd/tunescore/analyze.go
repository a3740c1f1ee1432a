package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dwood1999/tunescore-sub000/analysis"
	"github.com/spf13/cobra"
)

var compactOutput bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single audio file and print the report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&compactOutput, "compact", false, "print compact JSON instead of indented")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}

	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	eng, err := analysis.NewEngine(cfg)
	if err != nil {
		return err
	}

	report := scoreFile(context.Background(), eng, path)
	if report.Error != "" {
		return fmt.Errorf("%s: %s", path, report.Error)
	}

	return printJSON(os.Stdout, report, !compactOutput)
}
