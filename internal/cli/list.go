package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/flamewatch/flamewatch/internal/proc"
)

const cmdlineDisplayLimit = 80

// cmdlineFinder is the discovery surface the list command needs.
type cmdlineFinder interface {
	FindByCmdline(pattern string) []proc.Info
}

// ListEntry is one candidate target process.
type ListEntry struct {
	PID     int32  `json:"pid"`
	Name    string `json:"name"`
	Cmdline string `json:"cmdline"`
}

// runList prints every process whose command line contains pattern and
// returns nil even when nothing matches. Discovery failures still surface
// as errors.
func runList(finder cmdlineFinder, pattern, format string, w io.Writer) error {
	matches := finder.FindByCmdline(pattern)

	entries := make([]ListEntry, 0, len(matches))
	for _, m := range matches {
		entries = append(entries, ListEntry{
			PID:     m.PID,
			Name:    m.Name,
			Cmdline: m.Cmdline,
		})
	}

	switch format {
	case "json":
		return printListJSON(w, entries)
	case "text":
		printListText(w, entries, pattern)
		return nil
	default:
		return fmt.Errorf("unknown list format %q (expected text or json)", format)
	}
}

func printListJSON(w io.Writer, entries []ListEntry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func printListText(w io.Writer, entries []ListEntry, pattern string) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No processes matching %q found\n", pattern)
		return
	}

	fmt.Fprintf(w, "Processes matching %q:\n", pattern)
	for _, e := range entries {
		fmt.Fprintf(w, "  PID %-8d %s\n", e.PID, truncate(e.Cmdline, cmdlineDisplayLimit))
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
