package testing

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/roamly/internal/models"
)

// Seeded accounts.
const (
	UserName      = "ana"
	UserEmail     = "ana@example.com"
	UserPassword  = "secret1"
	AdminName     = "root"
	AdminEmail    = "root@example.com"
	AdminPassword = "admin123"
)

type fakeAccount struct {
	user     models.User
	password string
}

// RecordedRequest is one request seen by [FakeAPI].
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          string
}

type forcedFailure struct {
	status  int
	message string
}

// FakeAPI is an in-memory Roamly API served by [httptest.Server] under "/api".
//
// Handlers run one at a time under the internal mutex. Paths, access rules
// and messages mirror the real API closely enough for client tests.
type FakeAPI struct {
	Server *httptest.Server

	mu         sync.Mutex
	accounts   map[int64]*fakeAccount
	tokens     map[string]int64 // access token -> user id
	refresh    map[string]int64
	movies     map[int64]*models.Movie
	ratings    map[int64]*models.Rating
	watchlists map[int64]*models.WatchlistDetail
	qrCodes    map[int64]string
	failures   map[string]forcedFailure
	requests   []RecordedRequest
	seq        int64
	imported   []int64
	bulkPages  []int
}

// NewFakeAPI starts a FakeAPI seeded with two accounts, a small catalog and one public watchlist. The server closes with the test.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		accounts:   make(map[int64]*fakeAccount),
		tokens:     make(map[string]int64),
		refresh:    make(map[string]int64),
		movies:     make(map[int64]*models.Movie),
		ratings:    make(map[int64]*models.Rating),
		watchlists: make(map[int64]*models.WatchlistDetail),
		qrCodes:    make(map[int64]string),
		failures:   make(map[string]forcedFailure),
		seq:        100,
	}
	f.seed()

	f.Server = httptest.NewServer(f.routes())
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base URL ("<server>/api").
func (f *FakeAPI) URL() string { return f.Server.URL + "/api" }

func (f *FakeAPI) seed() {
	f.accounts[1] = &fakeAccount{
		user:     models.User{ID: 1, Username: UserName, Email: UserEmail, FirstName: "Ana", LastName: "Lima", Role: models.RoleUser},
		password: UserPassword,
	}
	f.accounts[2] = &fakeAccount{
		user:     models.User{ID: 2, Username: AdminName, Email: AdminEmail, Role: models.RoleAdmin},
		password: AdminPassword,
	}

	for _, m := range []models.Movie{
		{ID: 1, Title: "Alien", ReleaseDate: "1979-05-25", Runtime: 117, Rating: 8.5, Genres: []string{"Horror", "Science Fiction"}, IsFeatured: true, TrailerURL: "https://www.youtube.com/watch?v=alien"},
		{ID: 2, Title: "Heat", ReleaseDate: "1995-12-15", Runtime: 170, Rating: 8.3, Genres: []string{"Crime", "Drama"}},
		{ID: 3, Title: "Arrival", ReleaseDate: "2016-11-11", Runtime: 116, Rating: 7.9, Genres: []string{"Drama", "Science Fiction"}, IsFeatured: true},
		{ID: 4, Title: "Paddington 2", ReleaseDate: "2017-11-10", Runtime: 103, Rating: 7.8, Genres: []string{"Comedy", "Family"}},
	} {
		m := m
		f.movies[m.ID] = &m
	}

	f.watchlists[10] = &models.WatchlistDetail{
		ID: 10, Name: "Space Nights", Description: "Slow sci-fi", IsPublic: true,
		Movies: []models.Movie{*f.movies[1], *f.movies[3]}, UserID: 2, Username: AdminName,
	}
	f.qrCodes[10] = TinyPNGDataURL()
}

// TinyPNGDataURL returns a valid 1x1 PNG encoded as a data URL.
func TinyPNGDataURL() string {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.Black)
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Fail forces the next requests matching method and path (as seen under /api, e.g. "/profile") to fail with status and message.
func (f *FakeAPI) Fail(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = forcedFailure{status: status, message: message}
}

// Recover removes a forced failure.
func (f *FakeAPI) Recover(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, method+" "+path)
}

// Requests returns a copy of every request seen so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// CountRequests counts requests with method and path.
func (f *FakeAPI) CountRequests(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// IssueToken creates a valid access token for the user with the given username.
func (f *FakeAPI) IssueToken(username string) models.CredentialPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, acc := range f.accounts {
		if acc.user.Username == username {
			return f.issue(id)
		}
	}
	return models.CredentialPair{}
}

// RevokeAll invalidates every issued token.
func (f *FakeAPI) RevokeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = make(map[string]int64)
	f.refresh = make(map[string]int64)
}

// SetQRCode sets (or with "" removes) the QR code returned for a watchlist.
func (f *FakeAPI) SetQRCode(watchlistID int64, dataURL string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dataURL == "" {
		delete(f.qrCodes, watchlistID)
		return
	}
	f.qrCodes[watchlistID] = dataURL
}

// Imported returns external ids imported one by one.
func (f *FakeAPI) Imported() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.imported...)
}

// BulkImports returns the page counts of bulk import calls.
func (f *FakeAPI) BulkImports() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.bulkPages...)
}

// User returns the stored account for id.
func (f *FakeAPI) User(id int64) (models.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acc, ok := f.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

func (f *FakeAPI) issue(userID int64) models.CredentialPair {
	f.seq++
	pair := models.CredentialPair{
		AccessToken:  fmt.Sprintf("access-%d-%d", userID, f.seq),
		RefreshToken: fmt.Sprintf("refresh-%d-%d", userID, f.seq),
	}
	f.tokens[pair.AccessToken] = userID
	f.refresh[pair.RefreshToken] = userID
	return pair
}

func (f *FakeAPI) nextID() int64 {
	f.seq++
	return f.seq
}

type fakeHandler func(w http.ResponseWriter, r *http.Request, caller *fakeAccount)

type access int

const (
	anyone access = iota
	authed
	adminOnly
)

func (f *FakeAPI) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, level access, h fakeHandler) {
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" /api"+path, func(w http.ResponseWriter, r *http.Request) {
			f.serve(w, r, level, h)
		})
	}

	handle("POST /auth/login", anyone, f.login)
	handle("POST /auth/register", anyone, f.register)
	handle("POST /auth/refresh", anyone, f.refreshToken)
	handle("POST /auth/logout", anyone, func(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
		if token := bearer(r); token != "" {
			delete(f.tokens, token)
		}
		writeData(w, http.StatusOK, nil)
	})

	handle("GET /profile", authed, func(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
		writeData(w, http.StatusOK, caller.user)
	})
	handle("PUT /profile", authed, f.updateProfile)

	handle("GET /movies", anyone, f.listMovies)
	handle("GET /movies/search", anyone, f.searchMovies)
	handle("GET /movies/featured", anyone, f.featured)
	handle("GET /movies/popular", anyone, f.popular)
	handle("GET /movies/stats", anyone, f.stats)
	handle("GET /movies/recommendations", authed, f.popular)
	handle("GET /movies/{id}", anyone, f.getMovie)
	handle("GET /movies/{id}/details", anyone, f.movieDetails)
	handle("PATCH /movies/{id}/featured", adminOnly, f.toggleFeatured)

	handle("POST /ratings", authed, f.createRating)
	handle("PUT /ratings/{id}", authed, f.updateRating)
	handle("DELETE /ratings/{id}", authed, f.deleteRating)
	handle("GET /ratings/my-ratings", authed, f.myRatings)
	handle("GET /ratings/movie/{id}", anyone, f.movieRatings)
	handle("GET /ratings/movie/{id}/my-rating", authed, f.myRating)

	handle("GET /watchlists", authed, f.myWatchlists)
	handle("POST /watchlists", authed, f.createWatchlist)
	handle("GET /watchlists/public", anyone, f.publicWatchlists)
	handle("GET /watchlists/public/search", anyone, f.publicWatchlists)
	handle("GET /watchlists/public/popular", anyone, f.publicWatchlists)
	handle("GET /watchlists/{scope}/{item}", anyone, f.watchlistSubresource)
	handle("GET /watchlists/{id}", authed, f.getWatchlist)
	handle("PUT /watchlists/{id}", authed, f.updateWatchlist)
	handle("DELETE /watchlists/{id}", authed, f.deleteWatchlist)
	handle("POST /watchlists/{id}/movies/{movie}", authed, f.addToWatchlist)
	handle("DELETE /watchlists/{id}/movies/{movie}", authed, f.removeFromWatchlist)

	handle("GET /admin/users", adminOnly, f.adminUsers)
	handle("GET /admin/users/{id}", adminOnly, f.adminUser)
	handle("POST /admin/users/{id}/ban", adminOnly, f.ban)
	handle("POST /admin/users/{id}/unban", adminOnly, f.unban)
	handle("DELETE /admin/users/{id}", adminOnly, f.deleteUser)
	handle("POST /admin/movies", adminOnly, f.createMovie)
	handle("PUT /admin/movies/{id}", adminOnly, f.updateMovie)
	handle("DELETE /admin/movies/{id}", adminOnly, f.deleteMovie)
	handle("GET /admin/tmdb/search", adminOnly, f.externalSearch)
	handle("POST /admin/tmdb/import/{id}", adminOnly, f.importExternal)
	handle("POST /admin/tmdb/bulk-import", adminOnly, f.bulkImport)
	handle("GET /admin/analytics/overview", adminOnly, f.analytics)

	handle("POST /chatbot/ask", anyone, f.ask)

	return mux
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request, level access, h fakeHandler) {
	var body []byte
	if r.Body != nil {
		body, _ = readAll(r)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api")
	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
		Body:          string(body),
	})
	r.Body = nopBody(body)

	if fail, ok := f.failures[r.Method+" "+path]; ok {
		writeError(w, fail.status, fail.message)
		return
	}

	var caller *fakeAccount
	if id, ok := f.tokens[bearer(r)]; ok {
		caller = f.accounts[id]
	}

	switch {
	case level >= authed && caller == nil:
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	case level == adminOnly && caller.user.Role != models.RoleAdmin:
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}

	h(w, r, caller)
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var req models.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	for id, acc := range f.accounts {
		if (acc.user.Username == req.UsernameOrEmail || acc.user.Email == req.UsernameOrEmail) && acc.password == req.Password {
			if acc.user.Banned() {
				writeError(w, http.StatusForbidden, "Account is banned")
				return
			}
			f.writeAuth(w, id)
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid username or password")
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var req models.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	for _, acc := range f.accounts {
		if acc.user.Username == req.Username {
			writeError(w, http.StatusBadRequest, "Username already exists")
			return
		}
		if acc.user.Email == req.Email {
			writeError(w, http.StatusBadRequest, "Email already exists")
			return
		}
	}
	id := f.nextID()
	f.accounts[id] = &fakeAccount{
		user:     models.User{ID: id, Username: req.Username, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName, Role: models.RoleUser},
		password: req.Password,
	}
	f.writeAuth(w, id)
}

func (f *FakeAPI) refreshToken(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var req models.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	id, ok := f.refresh[req.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(f.refresh, req.RefreshToken)
	f.writeAuth(w, id)
}

func (f *FakeAPI) writeAuth(w http.ResponseWriter, userID int64) {
	pair := f.issue(userID)
	user := f.accounts[userID].user
	writeData(w, http.StatusOK, models.AuthResponse{
		AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken,
		TokenType: "Bearer", ExpiresIn: 86400000, User: &user,
	})
}

func (f *FakeAPI) updateProfile(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	var req models.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	caller.user.FirstName = req.FirstName
	caller.user.LastName = req.LastName
	caller.user.ProfilePicture = req.ProfilePicture
	caller.user.FavoriteGenres = req.FavoriteGenres
	writeData(w, http.StatusOK, caller.user)
}

func (f *FakeAPI) sortedMovies(filter func(*models.Movie) bool) []models.Movie {
	out := []models.Movie{}
	for _, m := range f.movies {
		if filter == nil || filter(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *FakeAPI) listMovies(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	genre := r.URL.Query().Get("genre")
	movies := f.sortedMovies(func(m *models.Movie) bool {
		if genre == "" {
			return true
		}
		for _, g := range m.Genres {
			if strings.EqualFold(g, genre) {
				return true
			}
		}
		return false
	})
	writeData(w, http.StatusOK, paginate(movies, r, 20))
}

func (f *FakeAPI) searchMovies(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	q := strings.ToLower(r.URL.Query().Get("query"))
	movies := f.sortedMovies(func(m *models.Movie) bool { return strings.Contains(strings.ToLower(m.Title), q) })
	writeData(w, http.StatusOK, paginate(movies, r, 20))
}

func (f *FakeAPI) featured(w http.ResponseWriter, _ *http.Request, _ *fakeAccount) {
	writeData(w, http.StatusOK, f.sortedMovies(func(m *models.Movie) bool { return m.IsFeatured }))
}

func (f *FakeAPI) popular(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	movies := f.sortedMovies(nil)
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit < len(movies) {
		movies = movies[:limit]
	}
	writeData(w, http.StatusOK, movies)
}

func (f *FakeAPI) stats(w http.ResponseWriter, _ *http.Request, _ *fakeAccount) {
	writeData(w, http.StatusOK, models.PublicStats{
		TotalMovies: int64(len(f.movies)), TotalUsers: int64(len(f.accounts)), TotalRatings: int64(len(f.ratings)),
	})
}

func (f *FakeAPI) movie(w http.ResponseWriter, r *http.Request) (*models.Movie, bool) {
	m, ok := f.movies[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Movie not found")
	}
	return m, ok
}

func (f *FakeAPI) getMovie(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	if m, ok := f.movie(w, r); ok {
		writeData(w, http.StatusOK, m)
	}
}

func (f *FakeAPI) movieDetails(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	m, ok := f.movie(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, models.MovieDetails{
		ID: m.ID, Title: m.Title, ReleaseDate: m.ReleaseDate, Runtime: m.Runtime, Rating: m.Rating,
		Genres: m.Genres, TrailerURL: m.TrailerURL, IsFeatured: m.IsFeatured,
		Cast:               []models.Actor{{ID: 1, Name: "Lead Actor", Character: "Hero", Order: 0}},
		StreamingProviders: []models.StreamingProvider{{ProviderName: "Streamly", Type: "flatrate"}},
		WatchLink:          "https://example.com/watch/" + strconv.FormatInt(m.ID, 10),
	})
}

func (f *FakeAPI) toggleFeatured(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	if m, ok := f.movie(w, r); ok {
		m.IsFeatured = !m.IsFeatured
		writeData(w, http.StatusOK, m)
	}
}

func (f *FakeAPI) createRating(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	var req models.CreateRatingRequest
	if !decode(w, r, &req) {
		return
	}
	m, ok := f.movies[req.MovieID]
	if !ok {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	for _, existing := range f.ratings {
		if existing.MovieID == req.MovieID && existing.UserID == caller.user.ID {
			writeError(w, http.StatusBadRequest, "You have already rated this movie")
			return
		}
	}
	rating := &models.Rating{
		ID: f.nextID(), UserID: caller.user.ID, Username: caller.user.Username, MovieID: m.ID,
		MovieTitle: m.Title, Value: req.Value, ReviewText: req.ReviewText, SpoilerTagged: req.SpoilerTagged,
	}
	f.ratings[rating.ID] = rating
	writeData(w, http.StatusCreated, rating)
}

func (f *FakeAPI) ownRating(w http.ResponseWriter, r *http.Request, caller *fakeAccount) (*models.Rating, bool) {
	rating, ok := f.ratings[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Rating not found")
		return nil, false
	}
	if rating.UserID != caller.user.ID {
		writeError(w, http.StatusForbidden, "Not your rating")
		return nil, false
	}
	return rating, true
}

func (f *FakeAPI) updateRating(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	rating, ok := f.ownRating(w, r, caller)
	if !ok {
		return
	}
	var req models.UpdateRatingRequest
	if !decode(w, r, &req) {
		return
	}
	rating.Value, rating.ReviewText, rating.SpoilerTagged = req.Value, req.ReviewText, req.SpoilerTagged
	writeData(w, http.StatusOK, rating)
}

func (f *FakeAPI) deleteRating(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	if rating, ok := f.ownRating(w, r, caller); ok {
		delete(f.ratings, rating.ID)
		writeData(w, http.StatusOK, nil)
	}
}

func (f *FakeAPI) ratingsWhere(match func(*models.Rating) bool) []models.Rating {
	out := []models.Rating{}
	for _, rating := range f.ratings {
		if match(rating) {
			out = append(out, *rating)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *FakeAPI) myRatings(w http.ResponseWriter, _ *http.Request, caller *fakeAccount) {
	writeData(w, http.StatusOK, f.ratingsWhere(func(r *models.Rating) bool { return r.UserID == caller.user.ID }))
}

func (f *FakeAPI) movieRatings(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	id := pathID(r, "id")
	writeData(w, http.StatusOK, paginate(f.ratingsWhere(func(x *models.Rating) bool { return x.MovieID == id }), r, 10))
}

func (f *FakeAPI) myRating(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	id := pathID(r, "id")
	mine := f.ratingsWhere(func(x *models.Rating) bool { return x.MovieID == id && x.UserID == caller.user.ID })
	if len(mine) == 0 {
		writeError(w, http.StatusNotFound, "Rating not found")
		return
	}
	writeData(w, http.StatusOK, mine[0])
}

func summary(d *models.WatchlistDetail) models.Watchlist {
	return models.Watchlist{ID: d.ID, Name: d.Name, Description: d.Description, IsPublic: d.IsPublic, MovieCount: len(d.Movies)}
}

func (f *FakeAPI) watchlistsWhere(match func(*models.WatchlistDetail) bool) []models.Watchlist {
	out := []models.Watchlist{}
	for _, d := range f.watchlists {
		if match(d) {
			out = append(out, summary(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *FakeAPI) myWatchlists(w http.ResponseWriter, _ *http.Request, caller *fakeAccount) {
	writeData(w, http.StatusOK, f.watchlistsWhere(func(d *models.WatchlistDetail) bool { return d.UserID == caller.user.ID }))
}

func (f *FakeAPI) createWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	var req models.CreateWatchlistRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	d := &models.WatchlistDetail{
		ID: f.nextID(), Name: req.Name, Description: req.Description, IsPublic: req.IsPublic,
		Movies: []models.Movie{}, UserID: caller.user.ID, Username: caller.user.Username,
	}
	f.watchlists[d.ID] = d
	writeData(w, http.StatusCreated, summary(d))
}

func (f *FakeAPI) ownWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) (*models.WatchlistDetail, bool) {
	d, ok := f.watchlists[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Watchlist not found")
		return nil, false
	}
	if d.UserID != caller.user.ID {
		writeError(w, http.StatusForbidden, "You don't have access to this watchlist")
		return nil, false
	}
	return d, true
}

func (f *FakeAPI) getWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	if d, ok := f.ownWatchlist(w, r, caller); ok {
		writeData(w, http.StatusOK, d)
	}
}

func (f *FakeAPI) updateWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	d, ok := f.ownWatchlist(w, r, caller)
	if !ok {
		return
	}
	var req models.UpdateWatchlistRequest
	if !decode(w, r, &req) {
		return
	}
	d.Name, d.Description, d.IsPublic = req.Name, req.Description, req.IsPublic
	writeData(w, http.StatusOK, summary(d))
}

func (f *FakeAPI) deleteWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	if d, ok := f.ownWatchlist(w, r, caller); ok {
		delete(f.watchlists, d.ID)
		writeData(w, http.StatusOK, nil)
	}
}

func (f *FakeAPI) addToWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	d, ok := f.ownWatchlist(w, r, caller)
	if !ok {
		return
	}
	m, ok := f.movies[pathID(r, "movie")]
	if !ok {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	if d.Contains(m.ID) {
		writeError(w, http.StatusBadRequest, "Movie already in watchlist")
		return
	}
	d.Movies = append(d.Movies, *m)
	writeData(w, http.StatusOK, nil)
}

func (f *FakeAPI) removeFromWatchlist(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	d, ok := f.ownWatchlist(w, r, caller)
	if !ok {
		return
	}
	movieID := pathID(r, "movie")
	kept := d.Movies[:0]
	for _, m := range d.Movies {
		if m.ID != movieID {
			kept = append(kept, m)
		}
	}
	d.Movies = kept
	writeData(w, http.StatusOK, nil)
}

// watchlistSubresource serves /watchlists/public/{id} and /watchlists/{id}/qr-code, which overlap as mux patterns.
func (f *FakeAPI) watchlistSubresource(w http.ResponseWriter, r *http.Request, caller *fakeAccount) {
	scope, item := r.PathValue("scope"), r.PathValue("item")
	switch {
	case scope == "public":
		r.SetPathValue("id", item)
		f.publicWatchlist(w, r, caller)
	case item == "qr-code":
		if caller == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		r.SetPathValue("id", scope)
		f.qrCode(w, r, caller)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (f *FakeAPI) qrCode(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	code, ok := f.qrCodes[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}
	writeData(w, http.StatusOK, code)
}

func (f *FakeAPI) publicWatchlists(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	q := strings.ToLower(r.URL.Query().Get("query"))
	lists := f.watchlistsWhere(func(d *models.WatchlistDetail) bool {
		return d.IsPublic && strings.Contains(strings.ToLower(d.Name), q)
	})
	writeData(w, http.StatusOK, paginate(lists, r, 12))
}

func (f *FakeAPI) publicWatchlist(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	d, ok := f.watchlists[pathID(r, "id")]
	if !ok || !d.IsPublic {
		writeError(w, http.StatusNotFound, "Watchlist not found")
		return
	}
	writeData(w, http.StatusOK, d)
}

func (f *FakeAPI) adminUsers(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	users := []models.User{}
	for _, acc := range f.accounts {
		users = append(users, acc.user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeData(w, http.StatusOK, paginate(users, r, 20))
}

func (f *FakeAPI) account(w http.ResponseWriter, r *http.Request) (*fakeAccount, bool) {
	acc, ok := f.accounts[pathID(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
	}
	return acc, ok
}

func (f *FakeAPI) adminUser(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	if acc, ok := f.account(w, r); ok {
		writeData(w, http.StatusOK, acc.user)
	}
}

func (f *FakeAPI) ban(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	acc, ok := f.account(w, r)
	if !ok {
		return
	}
	var req models.BanRequest
	if !decode(w, r, &req) {
		return
	}
	banned := true
	acc.user.IsBanned, acc.user.BanReason = &banned, req.Reason
	writeData(w, http.StatusOK, nil)
}

func (f *FakeAPI) unban(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	if acc, ok := f.account(w, r); ok {
		banned := false
		acc.user.IsBanned, acc.user.BanReason = &banned, ""
		writeData(w, http.StatusOK, nil)
	}
}

func (f *FakeAPI) deleteUser(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	if acc, ok := f.account(w, r); ok {
		delete(f.accounts, acc.user.ID)
		writeData(w, http.StatusOK, nil)
	}
}

func (f *FakeAPI) createMovie(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var req models.CreateMovieRequest
	if !decode(w, r, &req) {
		return
	}
	m := &models.Movie{ID: f.nextID(), ExternalID: req.ExternalID, Title: req.Title, Description: req.Description,
		ReleaseDate: req.ReleaseDate, Runtime: req.Runtime, Genres: req.Genres, TrailerURL: req.TrailerURL}
	f.movies[m.ID] = m
	writeData(w, http.StatusCreated, m)
}

func (f *FakeAPI) updateMovie(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	m, ok := f.movie(w, r)
	if !ok {
		return
	}
	var req models.UpdateMovieRequest
	if !decode(w, r, &req) {
		return
	}
	m.Title, m.Description, m.Runtime = req.Title, req.Description, req.Runtime
	if len(req.Genres) > 0 {
		m.Genres = req.Genres
	}
	writeData(w, http.StatusOK, m)
}

func (f *FakeAPI) deleteMovie(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	if m, ok := f.movie(w, r); ok {
		delete(f.movies, m.ID)
		writeData(w, http.StatusOK, nil)
	}
}

func (f *FakeAPI) externalSearch(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	q := r.URL.Query().Get("query")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	writeData(w, http.StatusOK, models.ExternalSearchResult{
		Results: []map[string]any{
			{"id": 603, "title": q + " One", "release_date": "1999-03-30", "vote_average": 8.2},
			{"id": 604, "title": q + " Two", "release_date": "2003-05-15", "vote_average": 7.0},
		},
		Page: page, TotalPages: 1, TotalResults: 2,
	})
}

func (f *FakeAPI) importExternal(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	ext := pathID(r, "id")
	for _, m := range f.movies {
		if m.ExternalID == ext {
			writeError(w, http.StatusBadRequest, "Movie already imported")
			return
		}
	}
	f.imported = append(f.imported, ext)
	m := &models.Movie{ID: f.nextID(), ExternalID: ext, Title: fmt.Sprintf("Imported %d", ext)}
	f.movies[m.ID] = m
	writeData(w, http.StatusOK, m)
}

func (f *FakeAPI) bulkImport(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	pages, _ := strconv.Atoi(r.URL.Query().Get("pages"))
	f.bulkPages = append(f.bulkPages, pages)
	writeData(w, http.StatusOK, nil)
}

func (f *FakeAPI) analytics(w http.ResponseWriter, _ *http.Request, _ *fakeAccount) {
	var sum float64
	for _, r := range f.ratings {
		sum += float64(r.Value)
	}
	avg := 0.0
	if len(f.ratings) > 0 {
		avg = sum / float64(len(f.ratings))
	}
	writeData(w, http.StatusOK, models.Analytics{
		TotalUsers: int64(len(f.accounts)), TotalMovies: int64(len(f.movies)), TotalRatings: int64(len(f.ratings)),
		TotalWatchlists: int64(len(f.watchlists)), AverageRating: avg,
	})
}

func (f *FakeAPI) ask(w http.ResponseWriter, r *http.Request, _ *fakeAccount) {
	var req models.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	conversation := req.ConversationID
	if conversation == "" {
		conversation = fmt.Sprintf("conv-%d", f.nextID())
	}
	writeData(w, http.StatusOK, models.ChatResponse{
		Answer:          "You asked: " + req.Question,
		ConversationID:  conversation,
		ResponseTime:    12,
		SuggestedMovies: []models.MovieSuggestion{{ID: 1, Title: "Alien", Rating: 8.5, ReleaseYear: 1979}},
	})
}

func paginate[T any](items []T, r *http.Request, defaultSize int) models.Page[T] {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size <= 0 {
		size = defaultSize
	}

	total := len(items)
	pages := (total + size - 1) / size
	start := min(page*size, total)
	end := min(start+size, total)

	content := append([]T{}, items[start:end]...)
	return models.Page[T]{
		Content: content, TotalPages: pages, TotalElements: int64(total),
		Last: page >= pages-1, Number: page, Size: size,
	}
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func nopBody(b []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(b))
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

func bearer(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return token
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Envelope[any]{Success: true, Message: "OK", Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Envelope[any]{Success: false, Message: message})
}
