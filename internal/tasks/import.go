package tasks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// ImportOpts tunes [Engine.ImportMovies].
type ImportOpts struct {
	NumWorkers int
	RateLimit  float64
}

// MovieImportResult is the outcome for one external id.
type MovieImportResult struct {
	ExternalID int64
	Movie      *models.Movie
	Error      error
}

// ImportResult summarizes a multi-ID import.
type ImportResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []MovieImportResult // ordered by external id
}

// ImportMovies imports each external id through the admin API.
//
// Duplicate ids are imported once. Every request waits on the shared limiter
// so the catalog provider behind the API is not flooded.
func (e *Engine) ImportMovies(ctx context.Context, prog chan<- ProgressUpdate, ids []int64, opts ImportOpts) (*ImportResult, error) {
	if e.importer == nil {
		return nil, missing("admin service")
	}

	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no external ids given", shared.ErrMissingArgument)
	}

	limiter := rate.NewLimiter(rate.Limit(e.limit(opts.RateLimit)), 1)
	jobs := make(chan int64)
	results := make(chan MovieImportResult, len(ids))

	var wg sync.WaitGroup
	for range e.poolSize(opts.NumWorkers) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					results <- MovieImportResult{ExternalID: id, Error: err}
					continue
				}
				movie, err := e.importer.Import(ctx, id)
				results <- MovieImportResult{ExternalID: id, Movie: movie, Error: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, id := range ids {
			select {
			case jobs <- id:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	result := &ImportResult{Total: len(ids), Results: make([]MovieImportResult, 0, len(ids))}
	for res := range results {
		result.Results = append(result.Results, res)
		step := len(result.Results)
		if res.Error == nil && res.Movie != nil {
			result.Successful++
			e.sendProgress(prog, importedUpdate(step, len(ids), res.ExternalID, res.Movie))
			continue
		}
		if res.Error == nil {
			res.Error = shared.ErrMalformedResponse
			result.Results[step-1] = res
		}
		result.Failed++
		e.sendProgress(prog, importFailedUpdate(step, len(ids), res.ExternalID, res.Error))
		e.logger.Warn("import failed", "external_id", res.ExternalID, "error", res.Error)
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].ExternalID < result.Results[j].ExternalID })

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
