package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// PreviewUpdate is a parsed update and whether it has been posted before
type PreviewUpdate struct {
	Date    string `json:"date"`
	Content string `json:"content"`
	New     bool   `json:"new"`
}

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt   time.Time        `json:"checked_at"`
	Source      string           `json:"source"`
	Updates     []*PreviewUpdate `json:"updates"`
	UpdateCount int              `json:"update_count"`
	NewCount    int              `json:"new_count"`
}

// NewOutputResult marks each of all as new when it appears in pending
func NewOutputResult(source string, all, pending []*changelog.Update, checkedAt time.Time) *OutputResult {
	isNew := make(map[*changelog.Update]bool, len(pending))
	for _, u := range pending {
		isNew[u] = true
	}

	result := &OutputResult{
		CheckedAt:   checkedAt,
		Source:      source,
		Updates:     make([]*PreviewUpdate, 0, len(all)),
		UpdateCount: len(all),
		NewCount:    len(pending),
	}
	for _, u := range all {
		result.Updates = append(result.Updates, &PreviewUpdate{
			Date:    u.Date,
			Content: u.Content,
			New:     isNew[u],
		})
	}

	return result
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.UpdateCount == 0 {
		fmt.Fprintln(w, "No updates found.")
		return nil
	}

	for _, u := range result.Updates {
		if u.New {
			fmt.Fprintf(w, "NEW: %s\n", u.Date)
		} else {
			fmt.Fprintf(w, "     %s\n", u.Date)
		}
		if verbose {
			for _, line := range strings.Split(strings.TrimRight(u.Content, "\n"), "\n") {
				fmt.Fprintf(w, "       %s\n", line)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d updates, %d new\n", result.UpdateCount, result.NewCount)

	return nil
}
