package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/tasks"
)

func (r *Runner) AdminUsersList(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.Admin.Users(ctx, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadUsersFailed)
	}
	return r.emit(cmd, page, func() error {
		if len(page.Content) == 0 {
			return r.writePlain("No users found.\n")
		}
		for _, u := range page.Content {
			status := ""
			if u.Banned() {
				status = " [banned]"
			}
			r.writePlain("%4d  %-20s %-30s %s%s\n", u.ID, u.Username, u.Email, u.Role, status)
		}
		if page.TotalPages > 1 {
			r.writePlain("\nPage %d of %d (%d users)\n", page.Number+1, page.TotalPages, page.TotalElements)
		}
		return nil
	})
}

func (r *Runner) AdminUsersGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	u, err := r.client.Admin.User(ctx, id)
	if err != nil {
		return r.actions.Fail(err, "Failed to load user")
	}
	return r.emit(cmd, u, func() error {
		r.writePlainHeader(u.DisplayName())
		r.writePlain("ID:       %d\n", u.ID)
		r.writePlain("Username: %s\n", u.Username)
		r.writePlain("Email:    %s\n", u.Email)
		r.writePlain("Role:     %s\n", u.Role)
		if u.Banned() {
			r.writePlain("Banned:   %s\n", u.BanReason)
		}
		return nil
	})
}

// AdminUsersBan bans a user. The reason is required and checked before any request.
func (r *Runner) AdminUsersBan(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.BanUser(ctx, id, strings.TrimSpace(cmd.String("reason")))
}

func (r *Runner) AdminUsersUnban(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.UnbanUser(ctx, id)
}

func (r *Runner) AdminUsersDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.DeleteUser(ctx, id)
}

func movieRequest(cmd *cli.Command) models.MovieRequest {
	return models.MovieRequest{
		Title:       strings.TrimSpace(cmd.String("title")),
		Description: cmd.String("description"),
		ReleaseDate: cmd.String("release-date"),
		Runtime:     cmd.Int("runtime"),
		PosterPath:  cmd.String("poster"),
		TrailerURL:  cmd.String("trailer"),
		Genres:      cmd.StringSlice("genre"),
		Cast:        cmd.StringSlice("cast"),
		Directors:   cmd.StringSlice("director"),
	}
}

func (r *Runner) AdminMoviesCreate(ctx context.Context, cmd *cli.Command) error {
	m, err := r.actions.CreateMovie(ctx, movieRequest(cmd))
	if err != nil {
		return err
	}
	return r.emit(cmd, m, func() error {
		return r.writePlain("ID: %d\n", m.ID)
	})
}

// AdminMoviesUpdate merges the given flags over the current movie before saving.
func (r *Runner) AdminMoviesUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	current, err := r.client.Movies.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMovieFailed)
	}

	req := models.MovieRequest{
		ExternalID:   current.ExternalID,
		Title:        current.Title,
		Description:  current.Description,
		ReleaseDate:  current.ReleaseDate,
		Runtime:      current.Runtime,
		PosterPath:   current.PosterPath,
		BackdropPath: current.BackdropPath,
		TrailerURL:   current.TrailerURL,
		Genres:       current.Genres,
		Cast:         current.Cast,
		Directors:    current.Directors,
	}
	set := movieRequest(cmd)
	for flag, apply := range map[string]func(){
		"title":        func() { req.Title = set.Title },
		"description":  func() { req.Description = set.Description },
		"release-date": func() { req.ReleaseDate = set.ReleaseDate },
		"runtime":      func() { req.Runtime = set.Runtime },
		"poster":       func() { req.PosterPath = set.PosterPath },
		"trailer":      func() { req.TrailerURL = set.TrailerURL },
		"genre":        func() { req.Genres = set.Genres },
		"cast":         func() { req.Cast = set.Cast },
		"director":     func() { req.Directors = set.Directors },
	} {
		if cmd.IsSet(flag) {
			apply()
		}
	}

	m, err := r.actions.UpdateMovie(ctx, id, req)
	if err != nil {
		return err
	}
	return r.emit(cmd, m, func() error { return nil })
}

func (r *Runner) AdminMoviesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.DeleteMovie(ctx, id)
}

// AdminMoviesFeature toggles the featured flag.
func (r *Runner) AdminMoviesFeature(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	_, err = r.actions.ToggleFeatured(ctx, id)
	return err
}

// AdminTMDBSearch searches the external catalog for movies to import.
func (r *Runner) AdminTMDBSearch(ctx context.Context, cmd *cli.Command) error {
	res, err := r.actions.SearchExternal(ctx, cmd.StringArg("query"), cmd.Int("page"))
	if err != nil {
		return err
	}
	return r.emit(cmd, res, func() error {
		movies := res.Movies()
		if len(movies) == 0 {
			return r.writePlain("No results.\n")
		}
		for _, m := range movies {
			year := ""
			if len(m.ReleaseDate) >= 4 {
				year = " (" + m.ReleaseDate[:4] + ")"
			}
			r.writePlain("%8d  %s%s  %.1f\n", m.ID, m.Title, year, m.VoteAverage)
		}
		return r.writePlain("\nPage %d of %d (%d results)\n", res.Page, res.TotalPages, res.TotalResults)
	})
}

// AdminTMDBImport imports one or more external ids through the worker pool.
func (r *Runner) AdminTMDBImport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Int64Slice("id")
	opts := tasks.ImportOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float64("rate-limit"),
	}

	if len(ids) == 1 {
		_, err := r.actions.ImportMovie(ctx, ids[0])
		return err
	}

	r.logger.Info("importing movies", "count", len(ids))
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("   %s\n", update.Message)
		}
	}()

	result, err := r.engine.ImportMovies(ctx, progressCh, ids, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\nImported %d/%d movies\n", result.Successful, result.Total)
	if result.Failed > 0 {
		r.writePlain("\nFailed to import %d:\n", result.Failed)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %d: %v\n", res.ExternalID, res.Error)
			}
		}
		return fmt.Errorf("%d of %d imports failed", result.Failed, result.Total)
	}
	return nil
}

func (r *Runner) AdminTMDBBulkImport(ctx context.Context, cmd *cli.Command) error {
	return r.actions.BulkImport(ctx, cmd.Int("pages"))
}

func (r *Runner) AdminAnalytics(ctx context.Context, cmd *cli.Command) error {
	a, err := r.client.Admin.Analytics(ctx)
	if err != nil {
		return r.actions.Fail(err, "Failed to load analytics")
	}
	return r.emit(cmd, a, func() error {
		r.writePlainHeader("Analytics")
		r.writePlain("Users:          %d\n", a.TotalUsers)
		r.writePlain("Movies:         %d\n", a.TotalMovies)
		r.writePlain("Ratings:        %d\n", a.TotalRatings)
		r.writePlain("Watchlists:     %d\n", a.TotalWatchlists)
		return r.writePlain("Average rating: %.2f\n", a.AverageRating)
	})
}
