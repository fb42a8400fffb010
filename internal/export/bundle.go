package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Item is one named summary in a bundle.
type Item struct {
	Name    string
	Summary string
}

// Bundle joins summaries into one numbered Markdown document.
func Bundle(items []Item) string {
	parts := make([]string, 0, len(items))
	for i, item := range items {
		parts = append(parts, fmt.Sprintf("## %d. %s\n\n%s\n\n---\n\n", i+1, item.Name, item.Summary))
	}
	return strings.Join(parts, "\n")
}

// SummaryFilename is the download name for a single summary.
func SummaryFilename(name string) string {
	return name + "_summary.md"
}

// AudioFilename replaces the extension of a video name with _audio.mp3.
func AudioFilename(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "_audio.mp3"
}

func BatchFilename(now time.Time) string {
	return "batch_summaries_" + now.UTC().Format("2006-01-02") + ".md"
}

func HistoryFilename(now time.Time) string {
	return "all_summaries_" + now.UTC().Format("2006-01-02") + ".md"
}
