package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/roamly/internal/formatter"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// BulkExportOpts contains configuration for bulk watchlist exports.
type BulkExportOpts struct {
	Format     string  // json, csv, markdown, txt
	OutputDir  string  // default: watchlists_export_{epoch}
	NumWorkers int     // concurrent writers
	RateLimit  float64 // API requests per second
}

// WatchlistExportResult is the outcome for one watchlist.
type WatchlistExportResult struct {
	ID      int64
	Name    string
	Success bool
	Files   []string
	Error   error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	Total           int
	Successful      int
	Failed          int
	OutputDirectory string
	ManifestPath    string
	Results         []WatchlistExportResult
}

type exportJob struct {
	detail *models.WatchlistDetail
	qrCode string
}

// BulkExport exports the given watchlists, or every watchlist the user owns when ids is empty.
//
// Fetching is serialized behind a rate limiter; writing fans out to workers.
// Individual failures are recorded in the result and do not stop the run.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.watchlists == nil {
		return nil, missing("watchlist service")
	}

	switch opts.Format {
	case "":
		opts.Format = FormatJSON
	case FormatJSON, FormatCSV, FormatMarkdown, FormatText:
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("watchlists_export_%d", time.Now().Unix())
	}

	names := map[int64]string{}
	if len(ids) == 0 {
		e.sendProgress(prog, fetchingWatchlistsUpdate())
		mine, err := e.watchlists.Mine(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list watchlists: %w", err)
		}
		for _, w := range mine {
			ids = append(ids, w.ID)
			names[w.ID] = w.Name
		}
		e.sendProgress(prog, foundWatchlistsUpdate(len(ids)))
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Total:           len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]WatchlistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(e.limit(opts.RateLimit)), 1)
	jobs := make(chan exportJob, len(ids))
	results := make(chan WatchlistExportResult, len(ids))

	var wg sync.WaitGroup
	for range e.poolSize(opts.NumWorkers) {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			detail, err := e.watchlists.Get(ctx, id)
			if err != nil {
				name := names[id]
				if name == "" {
					name = fmt.Sprintf("Unknown (%d)", id)
				}
				results <- WatchlistExportResult{ID: id, Name: name, Error: fmt.Errorf("failed to fetch watchlist: %w", err)}
				continue
			}

			var qr string
			if opts.Format == FormatMarkdown {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				qr, _ = e.watchlists.QRCode(ctx, id)
			}

			e.sendProgress(prog, exportingWatchlistUpdate(i+1, len(ids), detail))
			jobs <- exportJob{detail: detail, qrCode: qr}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Success {
			result.Successful++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.Name, len(res.Files)))
		} else {
			result.Failed++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.Name, res.Error))
			e.logger.Warn("watchlist export failed", "id", res.ID, "error", res.Error)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].ID < result.Results[j].ID })

	entries := make([]formatter.ManifestEntry, len(result.Results))
	for i, r := range result.Results {
		entries[i] = formatter.ManifestEntry{ID: r.ID, Name: r.Name, Success: r.Success, Files: r.Files, Error: r.Error}
	}
	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(entries, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

func (e *Engine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- WatchlistExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- ExportOne(job.detail, job.qrCode, opts.Format, opts.OutputDir)
	}
}

// ExportOne writes a single watchlist into dir using format.
//
// The markdown format writes a directory per watchlist and includes the QR
// image when qrCode is a usable data URL.
func ExportOne(w *models.WatchlistDetail, qrCode, format, dir string) WatchlistExportResult {
	result := WatchlistExportResult{ID: w.ID, Name: w.Name, Files: []string{}}
	base := filepath.Join(dir, formatter.DefaultBasename(w))

	switch format {
	case FormatCSV:
		res, err := formatter.WriteCSVExport(w, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{res.MoviesFile, res.MetadataFile}
	case FormatMarkdown:
		res, err := formatter.WriteMarkdownExport(w, base, qrCode)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = res.Files
	case FormatText:
		path, err := formatter.WriteTextExport(w, base+".txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path, err := formatter.WriteJSONExport(w, base+".json")
		if err != nil {
			result.Error = err
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}
