package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dwood1999/tunescore-sub000/analysis"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	concurrency int
	jsonOutput  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Score every audio file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&concurrency, "concurrency", "j", runtime.NumCPU(), "number of files scored in parallel")
	batchCmd.Flags().BoolVar(&jsonOutput, "json", false, "print one JSON report per line instead of the summary")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", root)
	}

	files, err := collectAudioFiles(root)
	if err != nil {
		return fmt.Errorf("collecting audio files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("no supported audio files found")
		return nil
	}

	reports, err := scoreFiles(context.Background(), files)
	if err != nil {
		return err
	}

	if jsonOutput {
		for _, report := range reports {
			if err := printJSON(os.Stdout, report, false); err != nil {
				return err
			}
		}
		return nil
	}

	printSummary(reports)
	return nil
}

// scoreFiles fans the file list out over a worker pool, one engine per
// worker, and collects the reports sorted by descending total score.
func scoreFiles(ctx context.Context, files []string) ([]*Report, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	var bar *progressbar.ProgressBar
	if !quiet && !jsonOutput {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("scoring"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowIts(),
		)
	}

	cfg, err := loadEngineConfig()
	if err != nil {
		return nil, err
	}

	jobs := make(chan string, len(files))
	results := make(chan *Report, len(files))

	var wg sync.WaitGroup
	for range concurrency {
		eng, err := analysis.NewEngine(cfg)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- scoreFile(ctx, eng, path)
				if bar != nil {
					bar.Add(1)
				}
			}
		}()
	}

	go func() {
		for _, path := range files {
			jobs <- path
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var reports []*Report
	for report := range results {
		reports = append(reports, report)
	}

	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	sort.Slice(reports, func(i, j int) bool {
		ri, rj := reports[i], reports[j]
		if (ri.Result == nil) != (rj.Result == nil) {
			return rj.Result == nil
		}
		if ri.Result != nil && ri.Result.Score.Total != rj.Result.Score.Total {
			return ri.Result.Score.Total > rj.Result.Score.Total
		}
		return ri.File < rj.File
	})

	return reports, nil
}

func printSummary(reports []*Report) {
	scored := 0
	failed := 0
	var totalSum float64

	for _, report := range reports {
		if report.Result == nil {
			failed++
			continue
		}
		scored++
		totalSum += report.Result.Score.Total
	}

	fmt.Printf("scored %d file(s), %d failed\n", scored, failed)
	if scored > 0 {
		fmt.Printf("average score: %.1f\n", totalSum/float64(scored))
	}
	fmt.Println()

	for _, report := range reports {
		if report.Result == nil {
			fmt.Printf("  ERROR    %-44s %s\n", displayName(report), report.Error)
			continue
		}
		score := report.Result.Score
		fmt.Printf("  %5.1f %-2s %-44s genre=%s hook@%.0fs\n",
			score.Total, score.Grade, displayName(report),
			report.Result.Genre.PrimaryGenre, report.Result.Hook.StartSeconds)
	}
}

func displayName(report *Report) string {
	if report.Title != "" && report.Artist != "" {
		return report.Artist + " - " + report.Title
	}
	return filepath.Base(report.File)
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string
	supportedExts := map[string]bool{
		".wav":  true,
		".flac": true,
		".mp3":  true,
		".m4a":  true,
		".aac":  true,
		".ogg":  true,
		".opus": true,
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if supportedExts[filepath.Ext(strings.ToLower(path))] {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}
