package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/roamly/internal/shared"
)

// ManifestEntry is one exported watchlist in a bulk export manifest.
type ManifestEntry struct {
	ID      int64
	Name    string
	Success bool
	Files   []string
	Error   error
}

type manifestItem struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type manifest struct {
	Format     string         `json:"format"`
	ExportedAt time.Time      `json:"exported_at"`
	Total      int            `json:"total_watchlists"`
	Successful int            `json:"successful_exports"`
	Failed     int            `json:"failed_exports"`
	Watchlists []manifestItem `json:"watchlists"`
}

// WriteBulkExportManifest writes a JSON summary of a bulk export to path.
func WriteBulkExportManifest(entries []ManifestEntry, format, path string) error {
	m := manifest{
		Format:     format,
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Total:      len(entries),
		Watchlists: make([]manifestItem, 0, len(entries)),
	}

	for _, e := range entries {
		item := manifestItem{ID: e.ID, Name: e.Name, Files: e.Files, Status: "success"}
		if e.Success {
			m.Successful++
		} else {
			m.Failed++
			item.Status = "failed"
			if e.Error != nil {
				item.Error = e.Error.Error()
			}
		}
		m.Watchlists = append(m.Watchlists, item)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
