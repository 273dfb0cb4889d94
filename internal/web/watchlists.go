package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/services"
)

func moviePath(id int64) string     { return fmt.Sprintf("/movie/%d", id) }
func watchlistPath(id int64) string { return fmt.Sprintf("/watchlist/%d", id) }

func (a *App) rate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Movie not found")
		return
	}
	value, _ := strconv.Atoi(r.FormValue("value"))
	spoiler := r.FormValue("spoiler") != ""
	_, _ = a.actions.SubmitRating(r.Context(), id, value, r.FormValue("review"), spoiler)
	back(w, r, moviePath(id))
}

func (a *App) deleteRating(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Movie not found")
		return
	}
	if ratingID, ok := formID(r, "rating_id"); ok {
		_ = a.actions.DeleteRating(r.Context(), ratingID)
	}
	back(w, r, moviePath(id))
}

func (a *App) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Movie not found")
		return
	}
	if wl, ok := formID(r, "watchlist_id"); ok {
		_ = a.actions.AddToWatchlist(r.Context(), wl, id)
	}
	back(w, r, moviePath(id))
}

func (a *App) watchlists(w http.ResponseWriter, r *http.Request) {
	lists, err := a.actions.Client().Watchlists.Mine(r.Context())
	if err != nil {
		a.actions.Fail(err, actions.MsgLoadWatchlistsFailed)
	}
	a.render(w, r, http.StatusOK, "watchlists", "My watchlists", lists)
}

func watchlistForm(r *http.Request) models.WatchlistRequest {
	return models.WatchlistRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		IsPublic:    r.FormValue("public") != "",
	}
}

func (a *App) createWatchlist(w http.ResponseWriter, r *http.Request) {
	created, err := a.actions.CreateWatchlist(r.Context(), watchlistForm(r))
	if err != nil {
		back(w, r, "/watchlists")
		return
	}
	back(w, r, watchlistPath(created.ID))
}

type watchlistData struct {
	Watchlist *models.WatchlistDetail
	Owner     bool
	QRCode    string
	ShowQR    bool
}

func (a *App) watchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Watchlist not found")
		return
	}
	wl, err := a.actions.Client().Watchlists.Get(r.Context(), id)
	if err != nil {
		if services.IsStatus(err, http.StatusNotFound) {
			a.notFound(w, r, "Watchlist not found")
			return
		}
		a.actions.Fail(err, actions.MsgLoadWatchlistFailed)
		back(w, r, "/watchlists")
		return
	}

	d := watchlistData{Watchlist: wl, Owner: wl.OwnedBy(a.session.Snapshot().User)}
	if r.URL.Query().Get("qr") != "" {
		d.ShowQR = true
		d.QRCode = a.actions.QRCode(r.Context(), id)
	}
	a.render(w, r, http.StatusOK, "watchlist", wl.Name, d)
}

func (a *App) updateWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Watchlist not found")
		return
	}
	_, _ = a.actions.UpdateWatchlist(r.Context(), id, watchlistForm(r))
	back(w, r, watchlistPath(id))
}

func (a *App) deleteWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		a.notFound(w, r, "Watchlist not found")
		return
	}
	if err := a.actions.DeleteWatchlist(r.Context(), id); err != nil {
		back(w, r, watchlistPath(id))
		return
	}
	back(w, r, "/watchlists")
}

func (a *App) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	movieID, movieOK := pathID(r, "movie")
	if !ok || !movieOK {
		a.notFound(w, r, "Watchlist not found")
		return
	}
	wl, err := a.actions.Client().Watchlists.Get(r.Context(), id)
	if err != nil {
		a.actions.Fail(err, actions.MsgLoadWatchlistFailed)
		back(w, r, "/watchlists")
		return
	}
	_ = a.actions.RemoveFromWatchlist(r.Context(), wl, a.session.Snapshot().User, movieID)
	back(w, r, watchlistPath(id))
}
