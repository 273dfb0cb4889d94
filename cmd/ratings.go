package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/models"
)

// RatingsCreate rates a movie, updating the caller's existing rating if there is one.
func (r *Runner) RatingsCreate(ctx context.Context, cmd *cli.Command) error {
	movieID, err := argID(cmd, "movie")
	if err != nil {
		return err
	}
	rating, err := r.actions.SubmitRating(ctx, movieID, cmd.Int("value"), cmd.String("review"), cmd.Bool("spoiler"))
	if err != nil {
		return err
	}
	return r.emit(cmd, rating, func() error { return nil })
}

// RatingsUpdate changes a rating by its own id.
func (r *Runner) RatingsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	req := models.UpdateRatingRequest{
		Value:         cmd.Int("value"),
		ReviewText:    cmd.String("review"),
		SpoilerTagged: cmd.Bool("spoiler"),
	}
	if err := req.Validate(); err != nil {
		return r.actions.Fail(err, "Failed to save rating")
	}
	rating, err := r.client.Ratings.Update(ctx, id, req)
	if err != nil {
		return r.actions.Fail(err, "Failed to save rating")
	}
	return r.emit(cmd, rating, func() error {
		return r.writePlain("✓ Rating updated: %d/10 for %s\n", rating.Value, rating.MovieTitle)
	})
}

func (r *Runner) RatingsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := argID(cmd, "id")
	if err != nil {
		return err
	}
	return r.actions.DeleteRating(ctx, id)
}

// RatingsMine lists every rating the signed-in user has written.
func (r *Runner) RatingsMine(ctx context.Context, cmd *cli.Command) error {
	ratings, err := r.client.Ratings.Mine(ctx)
	if err != nil {
		return r.actions.Fail(err, "Failed to load ratings")
	}
	return r.emit(cmd, ratings, func() error {
		if len(ratings) == 0 {
			return r.writePlain("You haven't rated any movies yet.\n")
		}
		r.writePlain("Found %d ratings:\n\n", len(ratings))
		for _, rt := range ratings {
			r.printRating(rt, rt.MovieTitle)
		}
		return nil
	})
}

func (r *Runner) RatingsForMovie(ctx context.Context, cmd *cli.Command) error {
	movieID, err := argID(cmd, "movie")
	if err != nil {
		return err
	}
	page, err := r.client.Ratings.ForMovie(ctx, movieID, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return r.actions.Fail(err, "Failed to load ratings")
	}
	return r.emit(cmd, page, func() error {
		if len(page.Content) == 0 {
			return r.writePlain("No ratings yet.\n")
		}
		for _, rt := range page.Content {
			r.printRating(rt, rt.Username)
		}
		if page.HasNext() {
			r.writePlain("More on page %d.\n", page.Number+2)
		}
		return nil
	})
}

// RatingsMyRating prints the caller's rating for one movie.
func (r *Runner) RatingsMyRating(ctx context.Context, cmd *cli.Command) error {
	movieID, err := argID(cmd, "movie")
	if err != nil {
		return err
	}
	rating, err := r.client.Ratings.MyRatingForMovie(ctx, movieID)
	if err != nil {
		return r.actions.Fail(err, "Failed to load rating")
	}
	return r.emit(cmd, rating, func() error {
		if rating == nil {
			return r.writePlain("You haven't rated this movie yet.\n")
		}
		r.printRating(*rating, rating.MovieTitle)
		return nil
	})
}

func (r *Runner) printRating(rt models.Rating, label string) {
	spoiler := ""
	if rt.SpoilerTagged {
		spoiler = " [spoiler]"
	}
	r.writePlain("%d. %s: %d/10%s\n", rt.ID, label, rt.Value, spoiler)
	if rt.ReviewText != "" {
		r.writePlain("   %s\n", rt.ReviewText)
	}
	if rt.Sentiment != "" {
		r.writePlain("   Sentiment: %s\n", rt.Sentiment)
	}
	r.writePlain("\n")
}
