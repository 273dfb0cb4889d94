package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// MoviesList prints one page of the catalog.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.Movies.List(ctx, cmd.Int("page"), cmd.Int("size"), cmd.String("sort"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	return r.emit(cmd, page, func() error { return r.printMoviePage(page) })
}

// MoviesBrowse lists movies filtered by genre.
func (r *Runner) MoviesBrowse(ctx context.Context, cmd *cli.Command) error {
	page, err := r.client.Movies.Browse(ctx, cmd.Int("page"), cmd.Int("size"), cmd.String("genre"), cmd.String("sort"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	return r.emit(cmd, page, func() error { return r.printMoviePage(page) })
}

func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	page, err := r.client.Movies.Search(ctx, query, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgSearchFailed)
	}
	return r.emit(cmd, page, func() error {
		if len(page.Content) == 0 {
			return r.writePlain("No movies match %q.\n", query)
		}
		return r.printMoviePage(page)
	})
}

func (r *Runner) MoviesGet(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	m, err := r.client.Movies.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMovieFailed)
	}
	return r.emit(cmd, m, func() error {
		r.writePlainHeader(m.Label())
		r.printMovie(m)
		return nil
	})
}

// MoviesDetails prints a movie with cast, providers and the caller's own rating when signed in.
func (r *Runner) MoviesDetails(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	d, err := r.client.Movies.Details(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMovieFailed)
	}

	return r.emit(cmd, d, func() error {
		m := d.Movie()
		r.writePlainHeader(m.Label())
		r.printMovie(&m)

		if len(d.Cast) > 0 {
			r.writePlain("\nCast:\n")
			for _, a := range d.Cast {
				if a.Character != "" {
					r.writePlain("  %s as %s\n", a.Name, a.Character)
				} else {
					r.writePlain("  %s\n", a.Name)
				}
			}
		}

		if providers := d.ProvidersByType(); len(providers) > 0 {
			r.writePlain("\nWhere to watch:\n")
			for _, kind := range []string{"flatrate", "rent", "buy"} {
				names := make([]string, 0, len(providers[kind]))
				for _, p := range providers[kind] {
					names = append(names, p.ProviderName)
				}
				if len(names) > 0 {
					r.writePlain("  %-8s %s\n", kind, strings.Join(names, ", "))
				}
			}
		}
		if d.WatchLink != "" {
			r.writePlain("  %s\n", d.WatchLink)
		}

		r.session.Hydrate(ctx)
		if !r.session.Snapshot().IsAuthenticated() {
			return nil
		}
		if mine, err := r.client.Ratings.MyRatingForMovie(ctx, id); err == nil && mine != nil {
			r.writePlain("\nYour rating: %d/10\n", mine.Value)
			if mine.ReviewText != "" {
				r.writePlain("  %s\n", mine.ReviewText)
			}
		}
		return nil
	})
}

func (r *Runner) MoviesFeatured(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.client.Movies.Featured(ctx)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	return r.emit(cmd, movies, func() error { return r.printMovies(movies) })
}

func (r *Runner) MoviesPopular(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.client.Movies.Popular(ctx, cmd.Int("limit"))
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	return r.emit(cmd, movies, func() error { return r.printMovies(movies) })
}

// MoviesRecommendations lists personalized picks for the signed-in user.
func (r *Runner) MoviesRecommendations(ctx context.Context, cmd *cli.Command) error {
	movies, err := r.client.Movies.Recommendations(ctx)
	if err != nil {
		return r.actions.Fail(err, "Failed to load recommendations")
	}
	return r.emit(cmd, movies, func() error {
		if len(movies) == 0 {
			return r.writePlain("No recommendations yet. Rate a few movies first.\n")
		}
		return r.printMovies(movies)
	})
}

func (r *Runner) MoviesStats(ctx context.Context, cmd *cli.Command) error {
	stats, err := r.client.Movies.Stats(ctx)
	if err != nil {
		return r.actions.Fail(err, "Failed to load stats")
	}
	return r.emit(cmd, stats, func() error {
		r.writePlain("Movies:  %d\n", stats.TotalMovies)
		r.writePlain("Users:   %d\n", stats.TotalUsers)
		return r.writePlain("Ratings: %d\n", stats.TotalRatings)
	})
}

// MoviesTrailer opens the movie's trailer in the browser.
func (r *Runner) MoviesTrailer(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	m, err := r.client.Movies.Get(ctx, id)
	if err != nil {
		return r.actions.Fail(err, actions.MsgLoadMovieFailed)
	}
	if m.TrailerURL == "" {
		return r.writePlain("No trailer available for %s.\n", m.Label())
	}

	r.writePlain("→ Opening trailer for %s...\n", m.Label())
	if err := shared.OpenBrowser(m.TrailerURL); err != nil {
		r.logger.Warn("could not open browser", "error", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		return r.writePlain("Please open this URL in your browser:\n%s\n", m.TrailerURL)
	}
	return nil
}

func (r *Runner) printMoviePage(page *models.Page[models.Movie]) error {
	if err := r.printMovies(page.Content); err != nil {
		return err
	}
	if page.TotalPages > 1 {
		return r.writePlain("\nPage %d of %d (%d movies)\n", page.Number+1, page.TotalPages, page.TotalElements)
	}
	return nil
}

func (r *Runner) printMovies(movies []models.Movie) error {
	if len(movies) == 0 {
		return r.writePlain("No movies found.\n")
	}
	for i := range movies {
		m := &movies[i]
		star := ""
		if m.IsFeatured {
			star = " ★"
		}
		r.writePlain("%4d  %-40s %4.1f  (%d votes)%s\n", m.ID, m.Label(), m.Rating, m.VoteCount, star)
	}
	return nil
}

func (r *Runner) printMovie(m *models.Movie) {
	r.writePlain("ID:       %d\n", m.ID)
	r.writePlain("Rating:   %.1f (%d votes)\n", m.Rating, m.VoteCount)
	r.writePlain("Runtime:  %s\n", shared.FormatRuntime(m.Runtime))
	if len(m.Genres) > 0 {
		r.writePlain("Genres:   %s\n", strings.Join(m.Genres, ", "))
	}
	if len(m.Directors) > 0 {
		r.writePlain("Director: %s\n", strings.Join(m.Directors, ", "))
	}
	if m.Description != "" {
		r.writePlain("\n%s\n", m.Description)
	}
}
