package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/models"
)

const adminPageSize = 20

func (a *App) adminOverview(w http.ResponseWriter, r *http.Request) {
	stats, err := a.actions.Client().Admin.Analytics(r.Context())
	if err != nil {
		a.actions.Fail(err, "Failed to load analytics")
	}
	a.render(w, r, http.StatusOK, "admin", "Admin", stats)
}

func (a *App) adminUsers(w http.ResponseWriter, r *http.Request) {
	page, err := a.actions.Client().Admin.Users(r.Context(), pageParam(r.URL.Query()), adminPageSize)
	if err != nil {
		a.actions.Fail(err, actions.MsgLoadUsersFailed)
	}
	a.render(w, r, http.StatusOK, "admin_users", "Users", page)
}

func (a *App) banUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r, "id"); ok {
		_ = a.actions.BanUser(r.Context(), id, strings.TrimSpace(r.FormValue("reason")))
	}
	back(w, r, "/admin/users")
}

func (a *App) unbanUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r, "id"); ok {
		_ = a.actions.UnbanUser(r.Context(), id)
	}
	back(w, r, "/admin/users")
}

func (a *App) deleteUser(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r, "id"); ok {
		_ = a.actions.DeleteUser(r.Context(), id)
	}
	back(w, r, "/admin/users")
}

type adminMoviesData struct {
	Query string
	Page  *models.Page[models.Movie]
}

func (a *App) adminMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := adminMoviesData{Query: strings.TrimSpace(q.Get("q"))}
	movies := a.actions.Client().Movies

	var err error
	if d.Query != "" {
		d.Page, err = movies.Search(r.Context(), d.Query, pageParam(q), adminPageSize)
	} else {
		d.Page, err = movies.List(r.Context(), pageParam(q), adminPageSize, "")
	}
	if err != nil {
		a.actions.Fail(err, actions.MsgLoadMoviesFailed)
	}
	a.render(w, r, http.StatusOK, "admin_movies", "Movies", d)
}

func (a *App) toggleFeatured(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r, "id"); ok {
		_, _ = a.actions.ToggleFeatured(r.Context(), id)
	}
	back(w, r, "/admin/movies")
}

func (a *App) deleteMovie(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r, "id"); ok {
		_ = a.actions.DeleteMovie(r.Context(), id)
	}
	back(w, r, "/admin/movies")
}

type adminImportData struct {
	Query   string
	Page    int
	Results *models.ExternalSearchResult
	Movies  []models.ExternalMovie
}

func (a *App) adminImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := adminImportData{Query: strings.TrimSpace(q.Get("q")), Page: 1}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		d.Page = p
	}
	if d.Query != "" {
		if res, err := a.actions.SearchExternal(r.Context(), d.Query, d.Page); err == nil {
			d.Results = res
			d.Movies = res.Movies()
		}
	}
	a.render(w, r, http.StatusOK, "admin_import", "Import", d)
}

func (a *App) importMovie(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathID(r, "id"); ok {
		_, _ = a.actions.ImportMovie(r.Context(), id)
	}
	target := "/admin/import"
	if q := strings.TrimSpace(r.FormValue("q")); q != "" {
		target += "?q=" + url.QueryEscape(q)
	}
	back(w, r, target)
}

func (a *App) bulkImport(w http.ResponseWriter, r *http.Request) {
	pages, _ := strconv.Atoi(r.FormValue("pages"))
	_ = a.actions.BulkImport(r.Context(), pages)
	back(w, r, "/admin/import")
}
