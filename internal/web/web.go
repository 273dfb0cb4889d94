// Package web serves the local Roamly web front.
//
// # Architecture
//
// One [App] serves one session, the way one browser tab holds one login.
// Pages are server-rendered with html/template from embedded files and every
// route is gated by [guard.Middleware]:
//
//	GET  /                           home: featured, popular, stats
//	GET  /browse                     paged catalog with genre, sort and search
//	GET  /movie/{id}                 details, ratings, my rating
//	GET  /login, /register           account forms (POST submits)
//	POST /logout
//	GET  /discover/watchlists        public watchlists
//	GET  /discover/watchlists/{id}
//	GET  /profile                    (authenticated)
//	GET  /watchlists, /watchlist/{id} (authenticated)
//	GET  /chat                       (authenticated)
//	GET  /admin, /admin/users, /admin/movies, /admin/import (admin)
//
// # Notifications
//
// Actions report through the [session.Recorder] handed to [New]. The next
// render drains it and shows the entries as flash messages. Mutating routes
// answer with 303 See Other so a reload never repeats the POST.
//
// The App acts with the stored token, so [server.CrossOrigin] wraps every
// route and a form posted from another site is answered with 403.
package web

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/guard"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/server"
	"github.com/desertthunder/roamly/internal/session"
)

// Opts configures [New].
type Opts struct {
	Session *session.Store
	Actions *actions.Actions
	Flash   *session.Recorder // must also be the notifier of Session and Actions
	Logger  *log.Logger
}

// App is the web front. It implements [server.Handler].
type App struct {
	session *session.Store
	actions *actions.Actions
	flash   *session.Recorder
	logger  *log.Logger
	pages   *pages
	router  *server.BasicRouter
	routes  []string

	chatMu sync.Mutex
	chat   *actions.Conversation
	turns  []chatTurn
}

// New builds the App and registers its routes.
func New(opts Opts) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Flash == nil {
		opts.Flash = &session.Recorder{}
	}

	p, err := parsePages()
	if err != nil {
		return nil, err
	}

	a := &App{
		session: opts.Session,
		actions: opts.Actions,
		flash:   opts.Flash,
		logger:  opts.Logger,
		pages:   p,
		router:  server.NewBasicRouter(),
		chat:    opts.Actions.NewConversation(),
	}
	a.router.Use(server.CrossOrigin(opts.Logger))
	a.register()
	return a, nil
}

func (a *App) register() {
	public := guard.Middleware(a.session, guard.Public, guard.DefaultPaths)
	authed := guard.Middleware(a.session, guard.Authenticated, guard.DefaultPaths)
	admin := guard.Middleware(a.session, guard.Admin, guard.DefaultPaths)

	a.handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())).ServeHTTP, public)

	a.handle("GET /{$}", a.home, public)
	a.handle("GET /browse", a.browse, public)
	a.handle("GET /movie/{id}", a.movie, public)
	a.handle("GET /login", a.loginForm, public)
	a.handle("POST /login", a.login, public)
	a.handle("GET /register", a.registerForm, public)
	a.handle("POST /register", a.registerAccount, public)
	a.handle("POST /logout", a.logout, public)
	a.handle("GET /discover/watchlists", a.discover, public)
	a.handle("GET /discover/watchlists/{id}", a.publicWatchlist, public)

	a.handle("POST /movie/{id}/rating", a.rate, authed)
	a.handle("POST /movie/{id}/rating/delete", a.deleteRating, authed)
	a.handle("POST /movie/{id}/watchlist", a.addToWatchlist, authed)
	a.handle("GET /profile", a.profile, authed)
	a.handle("POST /profile", a.updateProfile, authed)
	a.handle("GET /watchlists", a.watchlists, authed)
	a.handle("POST /watchlists", a.createWatchlist, authed)
	a.handle("GET /watchlist/{id}", a.watchlist, authed)
	a.handle("POST /watchlist/{id}", a.updateWatchlist, authed)
	a.handle("POST /watchlist/{id}/delete", a.deleteWatchlist, authed)
	a.handle("POST /watchlist/{id}/movies/{movie}/remove", a.removeFromWatchlist, authed)
	a.handle("GET /chat", a.chatPage, authed)
	a.handle("POST /chat", a.ask, authed)
	a.handle("POST /chat/reset", a.resetChat, authed)

	a.handle("GET /admin", a.adminOverview, admin)
	a.handle("GET /admin/users", a.adminUsers, admin)
	a.handle("POST /admin/users/{id}/ban", a.banUser, admin)
	a.handle("POST /admin/users/{id}/unban", a.unbanUser, admin)
	a.handle("POST /admin/users/{id}/delete", a.deleteUser, admin)
	a.handle("GET /admin/movies", a.adminMovies, admin)
	a.handle("POST /admin/movies/{id}/feature", a.toggleFeatured, admin)
	a.handle("POST /admin/movies/{id}/delete", a.deleteMovie, admin)
	a.handle("GET /admin/import", a.adminImport, admin)
	a.handle("POST /admin/import/bulk", a.bulkImport, admin)
	a.handle("POST /admin/import/{id}", a.importMovie, admin)
}

func (a *App) handle(pattern string, fn http.HandlerFunc, mw ...server.Middleware) {
	method, path, _ := strings.Cut(pattern, " ")
	a.router.HandleFunc(method, path, fn, mw...)
	a.routes = append(a.routes, pattern)
}

// Routes returns the ServeMux patterns the App serves.
func (a *App) Routes() []string { return append([]string(nil), a.routes...) }

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// view is the data every page template receives.
type view struct {
	Title  string
	Path   string
	User   *models.User
	Admin  bool
	Flash  []session.Notification
	Data   any
	Status int
}

func (a *App) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	snap := a.session.Snapshot()
	v := view{
		Title:  title,
		Path:   r.URL.Path,
		User:   snap.User,
		Admin:  snap.IsAdmin(),
		Flash:  a.flash.Drain(),
		Data:   data,
		Status: status,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := a.pages.execute(w, page, v); err != nil {
		a.logger.Error("render failed", "page", page, "error", err)
	}
}

func (a *App) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	a.render(w, r, http.StatusNotFound, "error", "Not found", msg)
}

// back redirects to the given path after a mutation.
func back(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

func formID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return id, err == nil && id > 0
}

// pageParam reads a zero-based page number from the query.
func pageParam(q url.Values) int {
	p, err := strconv.Atoi(q.Get("page"))
	if err != nil || p < 0 {
		return 0
	}
	return p
}

// safeNext keeps a post-login redirect on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
