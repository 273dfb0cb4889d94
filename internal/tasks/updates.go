package tasks

import (
	"fmt"

	"github.com/desertthunder/roamly/internal/models"
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
	FetchWatchlists Phase = iota
	ExportWatchlist
	ImportMovies
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchWatchlists:
		return "fetch_watchlists"
	case ExportWatchlist:
		return "export_watchlist"
	case ImportMovies:
		return "import_movies"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingWatchlistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlists,
		Step:    1,
		Total:   1,
		Message: "Fetching your watchlists...",
	}
}

func foundWatchlistsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d watchlists", count),
	}
}

func exportingWatchlistUpdate(step, total int, w *models.WatchlistDetail) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, w.Name),
		Data:    w,
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}

func importedUpdate(step, total int, externalID int64, m *models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %d → %s", step, total, externalID, m.Label()),
		Data:    m,
	}
}

func importFailedUpdate(step, total int, externalID int64, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %d: %v", step, total, externalID, err),
	}
}
