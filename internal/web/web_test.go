package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/session"
	tu "github.com/desertthunder/roamly/internal/testing"
	"github.com/desertthunder/roamly/internal/tokens"
)

type harness struct {
	app     *App
	api     *tu.FakeAPI
	session *session.Store
	flash   *session.Recorder
}

func newHarness(t *testing.T, hydrate bool) *harness {
	t.Helper()
	api := tu.NewFakeAPI(t)
	store := tokens.NewStorageStore(tokens.NewMemoryStorage())
	client := services.NewClient(services.ClientOpts{BaseURL: api.URL(), Tokens: store})
	flash := &session.Recorder{}
	sess := session.New(session.Opts{Auth: client.Auth, Profile: client.Profile, Tokens: store, Notifier: flash})

	app, err := New(Opts{Session: sess, Actions: actions.New(client, flash, nil), Flash: flash})
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	if hydrate {
		sess.Hydrate(context.Background())
	}
	return &harness{app: app, api: api, session: sess, flash: flash}
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.app.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(t *testing.T, username, password string) {
	t.Helper()
	rec := h.post("/login", url.Values{"username": {username}, "password": {password}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login as %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, parts ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Errorf("expected body to contain %q", p)
		}
	}
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, status int, location string) {
	t.Helper()
	expectStatus(t, rec, status)
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}

func TestGuards(t *testing.T) {
	t.Run("Loading Session", func(t *testing.T) {
		h := newHarness(t, false)

		rec := h.get("/watchlists")
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, "Loading")

		home := h.get("/")
		expectStatus(t, home, http.StatusOK)
		expectBody(t, home, "Alien", "Arrival")
	})

	t.Run("Anonymous", func(t *testing.T) {
		h := newHarness(t, true)

		expectRedirect(t, h.get("/watchlists"), http.StatusFound, "/login?next=%2Fwatchlists")
		expectRedirect(t, h.get("/admin/users"), http.StatusFound, "/login?next=%2Fadmin%2Fusers")
		expectRedirect(t, h.post("/chat", url.Values{"question": {"hi"}}), http.StatusFound, "/login")
		expectStatus(t, h.get("/browse"), http.StatusOK)
	})

	t.Run("Non-Admin", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		expectRedirect(t, h.get("/admin"), http.StatusFound, "/")
		expectStatus(t, h.get("/watchlists"), http.StatusOK)
	})

	t.Run("Routes", func(t *testing.T) {
		h := newHarness(t, true)
		routes := h.app.Routes()
		for _, want := range []string{"GET /browse", "POST /login", "GET /admin/import"} {
			if !slices.Contains(routes, want) {
				t.Errorf("expected route %q", want)
			}
		}
	})
}

func TestAccount(t *testing.T) {
	t.Run("Login Redirects To Next", func(t *testing.T) {
		h := newHarness(t, true)
		rec := h.post("/login", url.Values{
			"username": {tu.UserName}, "password": {tu.UserPassword}, "next": {"/watchlists"},
		})
		expectRedirect(t, rec, http.StatusSeeOther, "/watchlists")

		page := h.get("/")
		expectBody(t, page, "Login successful!", "Ana Lima")
		if page := h.get("/"); strings.Contains(page.Body.String(), "Login successful!") {
			t.Error("flash should only render once")
		}
	})

	t.Run("Login Ignores Offsite Next", func(t *testing.T) {
		h := newHarness(t, true)
		rec := h.post("/login", url.Values{
			"username": {tu.UserName}, "password": {tu.UserPassword}, "next": {"//evil.example"},
		})
		expectRedirect(t, rec, http.StatusSeeOther, "/")
	})

	t.Run("Login Failure", func(t *testing.T) {
		h := newHarness(t, true)
		rec := h.post("/login", url.Values{"username": {tu.UserName}, "password": {"wrong"}})
		expectStatus(t, rec, http.StatusUnauthorized)
		expectBody(t, rec, "Invalid username or password", `value="ana"`)
		if h.session.Snapshot().IsAuthenticated() {
			t.Error("expected anonymous session")
		}
	})

	t.Run("Register Password Mismatch", func(t *testing.T) {
		h := newHarness(t, true)
		rec := h.post("/register", url.Values{
			"username": {"bo"}, "email": {"bo@example.com"}, "password": {"secret1"}, "confirm_password": {"secret2"},
		})
		expectStatus(t, rec, http.StatusBadRequest)
		expectBody(t, rec, "Passwords do not match")
		if len(h.api.Requests()) != 0 {
			t.Error("expected no requests for a mismatched password")
		}
	})

	t.Run("Register", func(t *testing.T) {
		h := newHarness(t, true)
		rec := h.post("/register", url.Values{
			"username": {"bo"}, "email": {"bo@example.com"}, "password": {"secret1"}, "confirm_password": {"secret1"},
		})
		expectRedirect(t, rec, http.StatusSeeOther, "/")
		if snap := h.session.Snapshot(); snap.User == nil || snap.User.Username != "bo" {
			t.Errorf("expected bo to be logged in, got %+v", snap.User)
		}
	})

	t.Run("Profile Update", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		rec := h.post("/profile", url.Values{"first_name": {"Ana"}, "last_name": {"Souza"}, "favorite_genres": {"Drama, Horror"}})
		expectRedirect(t, rec, http.StatusSeeOther, "/profile")

		page := h.get("/profile")
		expectBody(t, page, "Profile updated!", "Ana Souza", "Drama, Horror")
	})

	t.Run("Logout", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		expectRedirect(t, h.post("/logout", nil), http.StatusSeeOther, "/")
		if h.session.Snapshot().IsAuthenticated() {
			t.Error("expected logout")
		}
		expectBody(t, h.get("/"), "Logged out successfully", "Log in")
	})
}

func TestMoviePages(t *testing.T) {
	t.Run("Browse", func(t *testing.T) {
		h := newHarness(t, true)

		rec := h.get("/browse?genre=Crime")
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, "Heat", "2h 50m")
		if strings.Contains(rec.Body.String(), "Paddington 2") {
			t.Error("genre filter ignored")
		}

		search := h.get("/browse?q=arr")
		expectBody(t, search, "Arrival")
	})

	t.Run("Details Anonymous", func(t *testing.T) {
		h := newHarness(t, true)
		rec := h.get("/movie/1")
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, "Alien", "Lead Actor", "Streamly", "to rate this movie")
	})

	t.Run("Missing Movie", func(t *testing.T) {
		h := newHarness(t, true)
		expectStatus(t, h.get("/movie/999"), http.StatusNotFound)
		expectStatus(t, h.get("/movie/abc"), http.StatusNotFound)
	})

	t.Run("Rate Then Update", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)
		h.flash.Drain()

		expectRedirect(t, h.post("/movie/2/rating", url.Values{"value": {"8"}, "review": {"Tense"}}), http.StatusSeeOther, "/movie/2")
		page := h.get("/movie/2")
		expectBody(t, page, "Rating submitted!", "Update rating", "Tense")

		h.post("/movie/2/rating", url.Values{"value": {"9"}})
		expectBody(t, h.get("/movie/2"), "Rating updated!")
	})

	t.Run("Rate Without Value", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		h.post("/movie/2/rating", url.Values{"value": {"0"}})
		expectBody(t, h.get("/movie/2"), "Please select a rating")
	})
}

func TestWatchlistPages(t *testing.T) {
	t.Run("Create Add Remove", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		rec := h.post("/watchlists", url.Values{"name": {"Weekend"}, "public": {"on"}})
		expectStatus(t, rec, http.StatusSeeOther)
		location := rec.Header().Get("Location")
		if !strings.HasPrefix(location, "/watchlist/") {
			t.Fatalf("unexpected redirect %q", location)
		}
		id := strings.TrimPrefix(location, "/watchlist/")

		h.post("/movie/4/watchlist", url.Values{"watchlist_id": {id}})
		page := h.get(location)
		expectBody(t, page, "Watchlist created!", "Added to watchlist!", "Paddington 2", "Remove")

		h.post(location+"/movies/4/remove", nil)
		expectBody(t, h.get(location), "Movie removed from watchlist", "This watchlist is empty.")

		expectRedirect(t, h.post(location+"/delete", nil), http.StatusSeeOther, "/watchlists")
	})

	t.Run("Blank Name", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		expectRedirect(t, h.post("/watchlists", url.Values{"name": {" "}}), http.StatusSeeOther, "/watchlists")
		expectBody(t, h.get("/watchlists"), "Please enter a name")
	})

	t.Run("QR Code", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.AdminName, tu.AdminPassword)

		rec := h.get("/watchlist/10?qr=1")
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, `src="data:image/png;base64,`)

		h.api.SetQRCode(10, "")
		expectBody(t, h.get("/watchlist/10?qr=1"), "QR code generation is not available for this watchlist.")
	})

	t.Run("Someone Else's Watchlist", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		expectRedirect(t, h.get("/watchlist/10"), http.StatusSeeOther, "/watchlists")
		expectBody(t, h.get("/watchlists"), "You don&#39;t have access to this watchlist")
	})

	t.Run("Discover", func(t *testing.T) {
		h := newHarness(t, true)

		expectBody(t, h.get("/discover/watchlists"), "Space Nights")
		expectBody(t, h.get("/discover/watchlists?q=nothing"), "No public watchlists found.")

		rec := h.get("/discover/watchlists/10")
		expectStatus(t, rec, http.StatusOK)
		expectBody(t, rec, "Space Nights", "by root", "Alien", "Arrival")

		expectStatus(t, h.get("/discover/watchlists/99"), http.StatusNotFound)
	})
}

func TestAdminPages(t *testing.T) {
	t.Run("Overview And Users", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.AdminName, tu.AdminPassword)

		expectBody(t, h.get("/admin"), "Average rating")
		expectBody(t, h.get("/admin/users"), "ana@example.com")

		expectRedirect(t, h.post("/admin/users/1/ban", url.Values{"reason": {"spam"}}), http.StatusSeeOther, "/admin/users")
		if u, _ := h.api.User(1); !u.Banned() {
			t.Error("expected ana to be banned")
		}
		expectBody(t, h.get("/admin/users"), "User banned successfully", "Banned: spam", "Unban")

		h.post("/admin/users/1/unban", nil)
		if u, _ := h.api.User(1); u.Banned() {
			t.Error("expected ana to be unbanned")
		}
	})

	t.Run("Movies", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.AdminName, tu.AdminPassword)

		expectBody(t, h.get("/admin/movies"), "Heat")
		h.post("/admin/movies/2/feature", nil)
		expectBody(t, h.get("/admin/movies"), "Added to featured")

		h.post("/admin/movies/4/delete", nil)
		page := h.get("/admin/movies")
		expectBody(t, page, "Movie deleted")
		if strings.Contains(page.Body.String(), "Paddington 2") {
			t.Error("deleted movie still listed")
		}
	})

	t.Run("Import", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.AdminName, tu.AdminPassword)

		expectBody(t, h.get("/admin/import?q=Matrix"), "Matrix One", "Matrix Two")

		rec := h.post("/admin/import/603", url.Values{"q": {"Matrix"}})
		expectRedirect(t, rec, http.StatusSeeOther, "/admin/import?q=Matrix")
		if got := h.api.Imported(); len(got) != 1 || got[0] != 603 {
			t.Errorf("imported = %v", got)
		}

		h.post("/admin/import/bulk", url.Values{"pages": {"2"}})
		expectBody(t, h.get("/admin/import"), "Bulk import started!")
		if got := h.api.BulkImports(); len(got) != 1 || got[0] != 2 {
			t.Errorf("bulk imports = %v", got)
		}
	})
}

func TestCrossSiteForms(t *testing.T) {
	crossSite := func(h *harness, path string, form url.Values, site, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if site != "" {
			req.Header.Set("Sec-Fetch-Site", site)
		}
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.app.ServeHTTP(rec, req)
		return rec
	}

	t.Run("Rejected Without Calling The API", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.AdminName, tu.AdminPassword)
		before := len(h.api.Requests())

		expectStatus(t, crossSite(h, "/admin/users/1/delete", nil, "cross-site", "https://evil.example"), http.StatusForbidden)
		expectStatus(t, crossSite(h, "/admin/users/1/ban", url.Values{"reason": {"x"}}, "", "https://evil.example"), http.StatusForbidden)
		expectStatus(t, crossSite(h, "/watchlists", url.Values{"name": {"Pwned"}}, "same-site", "http://other.example.com"), http.StatusForbidden)

		if after := len(h.api.Requests()); after != before {
			t.Errorf("expected no API calls, got %d", after-before)
		}
		if u, ok := h.api.User(1); !ok || u.Banned() {
			t.Errorf("user 1 should be untouched, got %+v (exists=%v)", u, ok)
		}
		if h.session.Snapshot().User == nil {
			t.Error("session should survive rejected requests")
		}
	})

	t.Run("Same Origin Allowed", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.AdminName, tu.AdminPassword)

		rec := crossSite(h, "/admin/users/1/ban", url.Values{"reason": {"spam"}}, "same-origin", "http://example.com")
		expectRedirect(t, rec, http.StatusSeeOther, "/admin/users")
		if u, _ := h.api.User(1); !u.Banned() {
			t.Error("expected ana to be banned")
		}
	})

	t.Run("Cross Site Logout Rejected", func(t *testing.T) {
		h := newHarness(t, true)
		h.login(t, tu.UserName, tu.UserPassword)

		expectStatus(t, crossSite(h, "/logout", nil, "cross-site", "https://evil.example"), http.StatusForbidden)
		if h.session.Snapshot().User == nil {
			t.Error("cross-site logout should not end the session")
		}
	})
}

func TestChat(t *testing.T) {
	h := newHarness(t, true)
	h.login(t, tu.UserName, tu.UserPassword)

	expectBody(t, h.get("/chat"), "Ask for a recommendation")

	h.post("/chat", url.Values{"question": {"Something like Alien?"}})
	page := h.get("/chat")
	expectBody(t, page, "You asked: Something like Alien?", "New conversation")

	h.post("/chat", url.Values{"question": {"Lighter?"}})
	reqs := h.api.Requests()
	if last := reqs[len(reqs)-1]; !strings.Contains(last.Body, "conv-") {
		t.Errorf("follow-up should carry the conversation id: %s", last.Body)
	}

	h.post("/chat/reset", nil)
	expectBody(t, h.get("/chat"), "Ask for a recommendation")

	h.api.Fail(http.MethodPost, "/chatbot/ask", http.StatusInternalServerError, "")
	h.post("/chat", url.Values{"question": {"hello"}})
	expectBody(t, h.get("/chat"), "Failed to get response. Please try again.", "No answer.")
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/watchlists", "/watchlists"},
		{"/movie/1?tab=reviews", "/movie/1?tab=reviews"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"https://evil.example", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			if got := safeNext(tt.next); got != tt.want {
				t.Errorf("safeNext(%q) = %q, want %q", tt.next, got, tt.want)
			}
		})
	}
}

func TestQRImage(t *testing.T) {
	if got := qrImage(tu.TinyPNGDataURL()); got == "" {
		t.Error("expected PNG data URL to pass")
	}
	if got := qrImage("javascript:alert(1)"); got != "" {
		t.Errorf("expected rejection, got %q", got)
	}
}
