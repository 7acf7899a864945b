package tasks

import (
	"fmt"

	"github.com/desertthunder/bandfeed/internal/search"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadFile Phase = iota
	ImportBands
	ResolveQueries
)

func (p Phase) String() string {
	switch p {
	case ReadFile:
		return "read_file"
	case ImportBands:
		return "import_bands"
	case ResolveQueries:
		return "resolve_queries"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func readFileUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading %s...", path),
	}
}

func parsedFileUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadFile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d bands in %s", count, path),
	}
}

func importedBandUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportBands,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func skippedBandUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportBands,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func resolvedQueryUpdate(step, total int, query string, report *search.Report) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveQueries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s → %d (%s)", step, total, query, report.ResultCount, report.Method),
		Data:    report,
	}
}

func failedQueryUpdate(step, total int, query string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveQueries,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, query, err),
	}
}
