package tasks

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

const (
	defaultWorkers   = 3
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// WatchlistSource is the subset of the watchlist endpoints export needs. *services.WatchlistService satisfies it.
type WatchlistSource interface {
	Mine(ctx context.Context) ([]models.Watchlist, error)
	Get(ctx context.Context, id int64) (*models.WatchlistDetail, error)
	QRCode(ctx context.Context, id int64) (string, error)
}

// MovieImporter imports one catalog entry by external id. *services.AdminService satisfies it.
type MovieImporter interface {
	Import(ctx context.Context, externalID int64) (*models.Movie, error)
}

// Engine runs bulk jobs against the remote API.
type Engine struct {
	watchlists WatchlistSource
	importer   MovieImporter
	logger     *log.Logger
	workers    int
	rateLimit  float64
}

// EngineOpts configures [NewEngine]. Zero values pick defaults.
type EngineOpts struct {
	Watchlists WatchlistSource
	Importer   MovieImporter
	Logger     *log.Logger
	Config     shared.TasksConfig
}

// NewEngine creates an [Engine]. Either dependency may be nil; the job that needs it then fails with ErrServiceUnavailable.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Engine{
		watchlists: opts.Watchlists,
		importer:   opts.Importer,
		logger:     opts.Logger,
		workers:    opts.Config.Workers,
		rateLimit:  opts.Config.RateLimit,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *Engine) poolSize(requested int) int {
	n := requested
	if n <= 0 {
		n = e.workers
	}
	if n <= 0 {
		n = defaultWorkers
	}
	return min(n, maxWorkers)
}

func (e *Engine) limit(requested float64) float64 {
	switch {
	case requested > 0:
		return requested
	case e.rateLimit > 0:
		return e.rateLimit
	default:
		return defaultRateLimit
	}
}

func missing(what string) error {
	return fmt.Errorf("%w: %s not configured", shared.ErrServiceUnavailable, what)
}
