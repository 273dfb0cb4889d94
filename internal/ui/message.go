package ui

import (
	"github.com/desertthunder/roamly/internal/models"
)

// Messages delivered to [Model.Update] by the commands in commands.go.
type (
	hydratedMsg struct{}

	loginResultMsg struct {
		ok bool
	}

	loggedOutMsg struct{}

	moviesFetchedMsg struct {
		page *models.Page[models.Movie]
		err  error
	}

	detailFetchedMsg struct {
		details  *models.MovieDetails
		myRating *models.Rating
		err      error
	}

	ratingSavedMsg struct {
		rating *models.Rating
		err    error
	}

	watchlistsFetchedMsg struct {
		watchlists []models.Watchlist
		err        error
	}

	watchlistFetchedMsg struct {
		watchlist *models.WatchlistDetail
		err       error
	}

	qrFetchedMsg struct {
		watchlistID int64
		available   bool
	}

	chatAnsweredMsg struct {
		question string
		answer   *models.ChatResponse
		err      error
	}

	usersFetchedMsg struct {
		page *models.Page[models.User]
		err  error
	}

	// actionDoneMsg follows a mutation; the view reloads its data.
	actionDoneMsg struct {
		err error
	}
)
