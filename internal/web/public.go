package web

import (
	"net/http"
	"strings"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/services"
)

const (
	browsePageSize   = 20
	ratingsPageSize  = 10
	discoverPageSize = 12
	popularLimit     = 10
)

// Genres offered by the browse filter.
var Genres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary", "Drama", "Family",
	"Fantasy", "History", "Horror", "Music", "Mystery", "Romance", "Science Fiction", "Thriller", "War", "Western",
}

type homeData struct {
	Featured []models.Movie
	Popular  []models.Movie
	Stats    *models.PublicStats
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	movies := a.actions.Client().Movies

	var d homeData
	var err error
	if d.Featured, err = movies.Featured(ctx); err != nil {
		a.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	if d.Popular, err = movies.Popular(ctx, popularLimit); err != nil {
		a.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	if d.Stats, err = movies.Stats(ctx); err != nil {
		a.logger.Debug("stats unavailable", "error", err)
	}
	a.render(w, r, http.StatusOK, "home", "Roamly", d)
}

type browseData struct {
	Query  string
	Genre  string
	Sort   string
	Genres []string
	Page   *models.Page[models.Movie]
}

func (a *App) browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := browseData{
		Query:  strings.TrimSpace(q.Get("q")),
		Genre:  q.Get("genre"),
		Sort:   q.Get("sort"),
		Genres: Genres,
	}
	page := pageParam(q)

	movies := a.actions.Client().Movies
	var err error
	if d.Query != "" {
		d.Page, err = movies.Search(r.Context(), d.Query, page, browsePageSize)
	} else {
		d.Page, err = movies.Browse(r.Context(), page, browsePageSize, d.Genre, d.Sort)
	}
	if err != nil {
		a.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	a.render(w, r, http.StatusOK, "browse", "Browse", d)
}

type movieData struct {
	Movie        *models.MovieDetails
	RatingValues []int
	Ratings      *models.Page[models.Rating]
	MyRating     *models.Rating
	Watchlists   []models.Watchlist
}

func ratingValues() []int {
	values := make([]int, 0, models.MaxRatingValue-models.MinRatingValue+1)
	for v := models.MinRatingValue; v <= models.MaxRatingValue; v++ {
		values = append(values, v)
	}
	return values
}

func (a *App) movie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Movie not found")
		return
	}
	ctx := r.Context()
	client := a.actions.Client()

	details, err := client.Movies.Details(ctx, id)
	if err != nil {
		if services.IsStatus(err, http.StatusNotFound) {
			a.notFound(w, r, "Movie not found")
			return
		}
		a.actions.Fail(err, actions.MsgLoadMovieFailed)
		a.render(w, r, http.StatusBadGateway, "error", "Error", actions.MsgLoadMovieFailed)
		return
	}

	d := movieData{Movie: details, RatingValues: ratingValues()}
	if d.Ratings, err = client.Ratings.ForMovie(ctx, id, 0, ratingsPageSize); err != nil {
		a.logger.Debug("ratings unavailable", "movie", id, "error", err)
	}
	if a.session.Snapshot().IsAuthenticated() {
		if d.MyRating, err = client.Ratings.MyRatingForMovie(ctx, id); err != nil {
			a.logger.Debug("my rating unavailable", "movie", id, "error", err)
		}
		if d.Watchlists, err = client.Watchlists.Mine(ctx); err != nil {
			a.logger.Debug("watchlists unavailable", "error", err)
		}
	}
	a.render(w, r, http.StatusOK, "movie", details.Title, d)
}

type discoverData struct {
	Query   string
	Popular bool
	Page    *models.Page[models.Watchlist]
}

func (a *App) discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := discoverData{Query: strings.TrimSpace(q.Get("q")), Popular: q.Get("tab") == "popular"}
	page := pageParam(q)

	lists := a.actions.Client().Watchlists
	var err error
	switch {
	case d.Query != "":
		d.Page, err = lists.SearchPublic(r.Context(), d.Query, page, discoverPageSize)
	case d.Popular:
		d.Page, err = lists.Popular(r.Context(), page, discoverPageSize)
	default:
		d.Page, err = lists.Public(r.Context(), page, discoverPageSize)
	}
	if err != nil {
		a.actions.Fail(err, actions.MsgLoadWatchlistsFailed)
	}
	a.render(w, r, http.StatusOK, "discover", "Discover watchlists", d)
}

func (a *App) publicWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Watchlist not found")
		return
	}
	wl, err := a.actions.Client().Watchlists.PublicByID(r.Context(), id)
	if err != nil {
		if services.IsStatus(err, http.StatusNotFound, http.StatusForbidden) {
			a.notFound(w, r, "Watchlist not found")
			return
		}
		a.actions.Fail(err, actions.MsgLoadWatchlistFailed)
		a.render(w, r, http.StatusBadGateway, "error", "Error", actions.MsgLoadWatchlistFailed)
		return
	}
	a.render(w, r, http.StatusOK, "public_watchlist", wl.Name, wl)
}
