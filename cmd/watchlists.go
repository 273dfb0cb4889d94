package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/formatter"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
	"github.com/desertthunder/roamly/internal/tasks"
)

// WatchlistsList prints the signed-in user's watchlists.
func (r *Runner) WatchlistsList(ctx context.Context, cmd *cli.Command) error {
	lists, err := r.client.Watchlists.Mine(ctx)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistsFailed)
	}
	return r.emit(cmd, lists, func() error {
		if len(lists) == 0 {
			return r.writePlain("You have no watchlists yet. Create one with 'roamly watchlists create --name ...'.\n")
		}
		r.writePlain("Found %d watchlists:\n\n", len(lists))
		return r.printWatchlists(lists)
	})
}

func (r *Runner) WatchlistsGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	w, err := r.client.Watchlists.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistFailed)
	}
	return r.emit(cmd, w, func() error { return r.printWatchlist(w) })
}

func watchlistRequest(cmd *cli.Command) models.WatchlistRequest {
	return models.WatchlistRequest{
		Name:        strings.TrimSpace(cmd.String("name")),
		Description: strings.TrimSpace(cmd.String("description")),
		IsPublic:    cmd.Bool("public"),
	}
}

func (r *Runner) WatchlistsCreate(ctx context.Context, cmd *cli.Command) error {
	w, err := r.actions.CreateWatchlist(ctx, watchlistRequest(cmd))
	if err != nil {
		return err
	}
	return r.emit(cmd, w, func() error {
		return r.writePlain("ID: %d\n", w.ID)
	})
}

// WatchlistsUpdate replaces the name, description and visibility. Unset flags keep the current values.
func (r *Runner) WatchlistsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	current, err := r.client.Watchlists.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistFailed)
	}

	req := models.WatchlistRequest{Name: current.Name, Description: current.Description, IsPublic: current.IsPublic}
	if cmd.IsSet("name") {
		req.Name = strings.TrimSpace(cmd.String("name"))
	}
	if cmd.IsSet("description") {
		req.Description = strings.TrimSpace(cmd.String("description"))
	}
	if cmd.IsSet("public") {
		req.IsPublic = cmd.Bool("public")
	}

	w, err := r.actions.UpdateWatchlist(ctx, id, req)
	if err != nil {
		return err
	}
	return r.emit(cmd, w, func() error { return nil })
}

func (r *Runner) WatchlistsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.DeleteWatchlist(ctx, id)
}

func (r *Runner) WatchlistsAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.AddToWatchlist(ctx, id, cmd.Int64("movie"))
}

// WatchlistsRemove removes a movie. Only the owner may do this; the check runs before the request.
func (r *Runner) WatchlistsRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	w, err := r.client.Watchlists.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistFailed)
	}
	return r.actions.RemoveFromWatchlist(ctx, w, r.session.Snapshot().User, cmd.Int64("movie"))
}

// WatchlistsQR saves the watchlist's QR code as a PNG, or prints the data URL when no path is given.
func (r *Runner) WatchlistsQR(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	qr := r.actions.QRCode(ctx, id)
	if qr == "" {
		return nil
	}

	path := cmd.String("output")
	if path == "" {
		return r.writePlain("%s\n", qr)
	}
	if err := formatter.WriteQRCode(qr, path); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return r.writePlain("✓ QR code saved to %s\n", path)
}

func (r *Runner) WatchlistsPublic(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.Watchlists.Public(ctx, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistsFailed)
	}
	return r.emit(cmd, page, func() error { return r.printWatchlistPage(page) })
}

func (r *Runner) WatchlistsSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	page, err := r.client.Watchlists.SearchPublic(ctx, query, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgSearchFailed)
	}
	return r.emit(cmd, page, func() error { return r.printWatchlistPage(page) })
}

func (r *Runner) WatchlistsPopular(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.Watchlists.Popular(ctx, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistsFailed)
	}
	return r.emit(cmd, page, func() error { return r.printWatchlistPage(page) })
}

func (r *Runner) WatchlistsPublicGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	w, err := r.client.Watchlists.PublicByID(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistFailed)
	}
	return r.emit(cmd, w, func() error { return r.printWatchlist(w) })
}

// WatchlistsExport writes one watchlist to disk in the chosen format.
func (r *Runner) WatchlistsExport(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	format := strings.ToLower(cmd.String("format"))
	outputDir := cmd.String("output")

	w, err := r.client.Watchlists.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadWatchlistFailed)
	}

	var qr string
	if format == tasks.FormatMarkdown {
		qr, _ = r.client.Watchlists.QRCode(ctx, id)
	}

	r.logger.Info("exporting watchlist", "id", id, "format", format, "dir", outputDir)
	result := tasks.ExportOne(w, qr, format, outputDir)
	if result.Error != nil {
		return result.Error
	}

	r.writePlain("✓ Watchlist exported\n")
	r.writePlain("  Watchlist: %s\n", w.Name)
	r.writePlain("  Movies: %d\n", len(w.Movies))
	for _, f := range result.Files {
		r.writePlain("  - %s\n", f)
	}
	return nil
}

// WatchlistsExportAll exports many watchlists concurrently and writes a manifest.
func (r *Runner) WatchlistsExportAll(ctx context.Context, cmd *cli.Command) error {
	opts := tasks.BulkExportOpts{
		Format:     strings.ToLower(cmd.String("format")),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float64("rate-limit"),
	}

	r.logger.Info("starting bulk export", "format", opts.Format, "workers", opts.NumWorkers)
	r.writePlain("Starting bulk export...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchWatchlists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ExportWatchlist:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.BulkExport(ctx, progressCh, cmd.Int64Slice("id"), opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Export Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Exported: %d/%d watchlists\n", result.Successful, result.Total)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	if result.Failed > 0 {
		r.writePlain("\nFailed to export %d watchlists:\n", result.Failed)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.Name, res.Error)
			}
		}
	}
	return nil
}

func (r *Runner) printWatchlists(lists []models.Watchlist) error {
	for i, w := range lists {
		r.writePlain("%d. %s\n", i+1, w.Name)
		if w.Description != "" {
			r.writePlain("   Description: %s\n", w.Description)
		}
		r.writePlain("   ID: %d\n", w.ID)
		r.writePlain("   Movies: %d\n", w.MovieCount)
		r.writePlain("   Visibility: %s\n\n", shared.VisibilityString(w.IsPublic))
	}
	return nil
}

func (r *Runner) printWatchlistPage(page *models.Page[models.Watchlist]) error {
	if len(page.Content) == 0 {
		return r.writePlain("No watchlists found.\n")
	}
	r.printWatchlists(page.Content)
	if page.HasNext() {
		return r.writePlain("More on page %d of %d.\n", page.Number+2, page.TotalPages)
	}
	return nil
}

func (r *Runner) printWatchlist(w *models.WatchlistDetail) error {
	r.writePlainHeader(w.Name)
	if w.Description != "" {
		r.writePlain("%s\n\n", w.Description)
	}
	if w.Username != "" {
		r.writePlain("Owner: %s\n", w.Username)
	}
	r.writePlain("Visibility: %s\n", shared.VisibilityString(w.IsPublic))
	r.writePlain("Movies: %d\n\n", len(w.Movies))
	if len(w.Movies) == 0 {
		return r.writePlain("This watchlist is empty.\n")
	}
	for i := range w.Movies {
		m := &w.Movies[i]
		r.writePlain("%d. %s\n", i+1, m.Label())
		r.writePlain("   ID: %d  Rating: %.1f\n", m.ID, m.Rating)
	}
	return nil
}
