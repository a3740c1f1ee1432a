package main

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/dhowden/tag"
	"github.com/dwood1999/tunescore-sub000/analysis"
)

// Report is the CLI output envelope: file identity and tag metadata
// wrapped around the engine result. The engine itself never sees tags.
type Report struct {
	File   string           `json:"file"`
	Title  string           `json:"title,omitempty"`
	Artist string           `json:"artist,omitempty"`
	Album  string           `json:"album,omitempty"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// scoreFile runs the engine on one file and attaches tag metadata.
func scoreFile(ctx context.Context, eng *analysis.Engine, path string) *Report {
	report := &Report{File: path}
	report.Title, report.Artist, report.Album = readTags(path)

	result, err := eng.Analyze(ctx, analysis.Input{Path: path, GenreHint: genreHint})
	if err != nil {
		report.Error = err.Error()
		return report
	}
	report.Result = result
	return report
}

// readTags pulls title/artist/album from the file's embedded metadata.
// Untagged or unreadable files just leave the envelope fields empty.
func readTags(path string) (title, artist, album string) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", ""
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return "", "", ""
	}
	return m.Title(), m.Artist(), m.Album()
}

func printJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
