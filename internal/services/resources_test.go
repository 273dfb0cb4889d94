package services

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
	tu "github.com/desertthunder/roamly/internal/testing"
)

func newFakeClient(t *testing.T, token string) (*Client, *tu.FakeAPI, *mutableTokens) {
	t.Helper()
	api := tu.NewFakeAPI(t)
	tokens := &mutableTokens{token: token}
	return NewClient(ClientOpts{BaseURL: api.URL(), Tokens: tokens}), api, tokens
}

func lastQuery(t *testing.T, api *tu.FakeAPI) url.Values {
	t.Helper()
	reqs := api.Requests()
	if len(reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	q, err := url.ParseQuery(reqs[len(reqs)-1].Query)
	if err != nil {
		t.Fatalf("bad query: %v", err)
	}
	return q
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()

	t.Run("Login", func(t *testing.T) {
		c, _, _ := newFakeClient(t, "")
		resp, err := c.Auth.Login(ctx, models.LoginRequest{UsernameOrEmail: tu.UserEmail, Password: tu.UserPassword})
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if resp.AccessToken == "" || resp.RefreshToken == "" || resp.User.Username != tu.UserName {
			t.Errorf("unexpected auth response %+v", resp)
		}
	})

	t.Run("Login Invalid Credentials", func(t *testing.T) {
		c, _, _ := newFakeClient(t, "")
		_, err := c.Auth.Login(ctx, models.LoginRequest{UsernameOrEmail: tu.UserName, Password: "wrong"})
		if !IsStatus(err, http.StatusUnauthorized) {
			t.Fatalf("expected 401, got %v", err)
		}
		if MessageOf(err, "Login failed") != "Invalid username or password" {
			t.Errorf("unexpected message %q", MessageOf(err, "Login failed"))
		}
	})

	t.Run("Register", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		resp, err := c.Auth.Register(ctx, models.RegisterRequest{Username: "bo", Email: "bo@example.com", Password: "secret1", ConfirmPassword: "secret1"})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if resp.User.Username != "bo" {
			t.Errorf("unexpected user %+v", resp.User)
		}
		body := api.Requests()[0].Body
		if strings.Contains(body, "onfirm") {
			t.Errorf("confirm password should not be sent: %s", body)
		}
	})

	t.Run("Register Duplicate", func(t *testing.T) {
		c, _, _ := newFakeClient(t, "")
		_, err := c.Auth.Register(ctx, models.RegisterRequest{Username: tu.UserName, Email: "new@example.com", Password: "secret1"})
		if MessageOf(err, "") != "Username already exists" {
			t.Errorf("expected duplicate username message, got %v", err)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		pair := api.IssueToken(tu.UserName)

		resp, err := c.Auth.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh() error = %v", err)
		}
		if resp.AccessToken == pair.AccessToken {
			t.Error("expected a new access token")
		}

		if _, err := c.Auth.Refresh(ctx, pair.RefreshToken); !errors.Is(err, shared.ErrRefreshFailed) {
			t.Errorf("reusing a refresh token should fail with ErrRefreshFailed, got %v", err)
		}
		if _, err := c.Auth.Refresh(ctx, ""); !errors.Is(err, shared.ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})

	t.Run("Logout Sends Token", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken
		if err := c.Auth.Logout(ctx); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if got := api.Requests()[0].Authorization; got != "Bearer "+tokens.token {
			t.Errorf("unexpected Authorization %q", got)
		}
	})
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()

	t.Run("Get Requires Token", func(t *testing.T) {
		c, _, _ := newFakeClient(t, "")
		if _, err := c.Profile.Get(ctx); !IsStatus(err, http.StatusUnauthorized) {
			t.Errorf("expected 401, got %v", err)
		}
	})

	t.Run("Get And Update", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken

		user, err := c.Profile.Get(ctx)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if user.Username != tu.UserName || user.IsAdmin() {
			t.Errorf("unexpected user %+v", user)
		}

		updated, err := c.Profile.Update(ctx, models.UpdateProfileRequest{FirstName: "Anabel", LastName: "L", FavoriteGenres: []string{"Drama"}})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.FirstName != "Anabel" || len(updated.FavoriteGenres) != 1 {
			t.Errorf("unexpected updated user %+v", updated)
		}
	})
}

func TestMovieService(t *testing.T) {
	ctx := context.Background()

	t.Run("List Defaults", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		page, err := c.Movies.List(ctx, 0, 0, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(page.Content) != 4 || page.TotalElements != 4 {
			t.Errorf("unexpected page %+v", page)
		}
		q := lastQuery(t, api)
		if q.Get("page") != "0" || q.Get("size") != "20" || q.Get("sortBy") != "rating" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Has("genre") {
			t.Error("genre should be omitted when empty")
		}
	})

	t.Run("Page Values Pass Through", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		tests := []struct {
			page, size         int
			wantPage, wantSize string
		}{
			{page: 2, size: 5, wantPage: "2", wantSize: "5"},
			{page: -1, size: 5, wantPage: "-1", wantSize: "5"},
			{page: 0, size: -3, wantPage: "0", wantSize: "-3"},
			{page: 1, size: 0, wantPage: "1", wantSize: "20"},
		}
		for _, tt := range tests {
			if _, err := c.Movies.Search(ctx, "alien", tt.page, tt.size); err != nil {
				t.Fatalf("Search(%d, %d) error = %v", tt.page, tt.size, err)
			}
			q := lastQuery(t, api)
			if q.Get("page") != tt.wantPage || q.Get("size") != tt.wantSize {
				t.Errorf("Search(%d, %d) sent page=%s size=%s, want page=%s size=%s",
					tt.page, tt.size, q.Get("page"), q.Get("size"), tt.wantPage, tt.wantSize)
			}
		}
	})

	t.Run("Browse With Genre", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		page, err := c.Movies.Browse(ctx, 0, 1, "Drama", "title")
		if err != nil {
			t.Fatalf("Browse() error = %v", err)
		}
		if len(page.Content) != 1 || page.TotalPages != 2 || page.Last || !page.HasNext() {
			t.Errorf("unexpected page %+v", page)
		}
		q := lastQuery(t, api)
		if q.Get("genre") != "Drama" || q.Get("sortBy") != "title" {
			t.Errorf("unexpected query %v", q)
		}
	})

	t.Run("Get And Details", func(t *testing.T) {
		c, _, _ := newFakeClient(t, "")
		m, err := c.Movies.Get(ctx, 1)
		if err != nil || m.Title != "Alien" {
			t.Fatalf("Get() = %+v, %v", m, err)
		}
		d, err := c.Movies.Details(ctx, 1)
		if err != nil {
			t.Fatalf("Details() error = %v", err)
		}
		if len(d.Cast) == 0 || len(d.StreamingProviders) == 0 || d.WatchLink == "" {
			t.Errorf("expected enriched details, got %+v", d)
		}
		if _, err := c.Movies.Get(ctx, 999); !IsStatus(err, http.StatusNotFound) {
			t.Errorf("expected 404, got %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		page, err := c.Movies.Search(ctx, "ali", 0, 0)
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(page.Content) != 1 || page.Content[0].Title != "Alien" {
			t.Errorf("unexpected results %+v", page.Content)
		}
		q := lastQuery(t, api)
		if q.Get("query") != "ali" || q.Get("size") != "20" {
			t.Errorf("unexpected query %v", q)
		}
	})

	t.Run("Featured Popular Stats", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		featured, err := c.Movies.Featured(ctx)
		if err != nil || len(featured) != 2 {
			t.Fatalf("Featured() = %d, %v", len(featured), err)
		}

		if _, err := c.Movies.Popular(ctx, 0); err != nil {
			t.Fatalf("Popular() error = %v", err)
		}
		if q := lastQuery(t, api); q.Get("limit") != "10" {
			t.Errorf("expected default limit 10, got %v", q)
		}

		stats, err := c.Movies.Stats(ctx)
		if err != nil || stats.TotalMovies != 4 {
			t.Errorf("Stats() = %+v, %v", stats, err)
		}
	})

	t.Run("Recommendations Need Token", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		if _, err := c.Movies.Recommendations(ctx); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		tokens.token = api.IssueToken(tu.UserName).AccessToken
		if recs, err := c.Movies.Recommendations(ctx); err != nil || len(recs) == 0 {
			t.Errorf("Recommendations() = %v, %v", recs, err)
		}
	})
}

func TestRatingService(t *testing.T) {
	ctx := context.Background()

	t.Run("MyRatingForMovie Not Rated", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken

		rating, err := c.Ratings.MyRatingForMovie(ctx, 1)
		if err != nil || rating != nil {
			t.Errorf("expected (nil, nil) on 404, got %+v, %v", rating, err)
		}
	})

	t.Run("MyRatingForMovie Unauthenticated", func(t *testing.T) {
		c, _, _ := newFakeClient(t, "")
		rating, err := c.Ratings.MyRatingForMovie(ctx, 1)
		if err != nil || rating != nil {
			t.Errorf("expected (nil, nil) on 401, got %+v, %v", rating, err)
		}
	})

	t.Run("MyRatingForMovie Other Failures Propagate", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")
		api.Fail(http.MethodGet, "/ratings/movie/1/my-rating", http.StatusInternalServerError, "boom")
		if _, err := c.Ratings.MyRatingForMovie(ctx, 1); !IsStatus(err, http.StatusInternalServerError) {
			t.Errorf("expected 500 to propagate, got %v", err)
		}

		api.Fail(http.MethodGet, "/ratings/movie/1/my-rating", http.StatusForbidden, "nope")
		if _, err := c.Ratings.MyRatingForMovie(ctx, 1); !IsStatus(err, http.StatusForbidden) {
			t.Errorf("expected 403 to propagate, got %v", err)
		}
	})

	t.Run("Create Update Delete", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken

		created, err := c.Ratings.Create(ctx, models.CreateRatingRequest{MovieID: 2, Value: 9, ReviewText: "tense"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		mine, err := c.Ratings.MyRatingForMovie(ctx, 2)
		if err != nil || mine == nil || mine.ID != created.ID {
			t.Fatalf("MyRatingForMovie() = %+v, %v", mine, err)
		}

		updated, err := c.Ratings.Update(ctx, created.ID, models.UpdateRatingRequest{Value: 7})
		if err != nil || updated.Value != 7 {
			t.Fatalf("Update() = %+v, %v", updated, err)
		}

		all, err := c.Ratings.Mine(ctx)
		if err != nil || len(all) != 1 {
			t.Fatalf("Mine() = %v, %v", all, err)
		}

		page, err := c.Ratings.ForMovie(ctx, 2, 0, 0)
		if err != nil || page.TotalElements != 1 {
			t.Fatalf("ForMovie() = %+v, %v", page, err)
		}
		if q := lastQuery(t, api); q.Get("size") != "10" {
			t.Errorf("expected default size 10, got %v", q)
		}

		if err := c.Ratings.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if mine, _ := c.Ratings.MyRatingForMovie(ctx, 2); mine != nil {
			t.Error("rating should be gone after delete")
		}
	})
}

func TestWatchlistService(t *testing.T) {
	ctx := context.Background()

	t.Run("CRUD And Movies", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken

		created, err := c.Watchlists.Create(ctx, models.CreateWatchlistRequest{Name: "Weekend", IsPublic: true})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := c.Watchlists.AddMovie(ctx, created.ID, 2); err != nil {
			t.Fatalf("AddMovie() error = %v", err)
		}
		if got := api.Requests()[len(api.Requests())-1].Path; got != "/watchlists/"+itoa(created.ID)+"/movies/2" {
			t.Errorf("unexpected path %s", got)
		}

		detail, err := c.Watchlists.Get(ctx, created.ID)
		if err != nil || !detail.Contains(2) {
			t.Fatalf("Get() = %+v, %v", detail, err)
		}

		if _, err := c.Watchlists.Update(ctx, created.ID, models.UpdateWatchlistRequest{Name: "Weeknight"}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if err := c.Watchlists.RemoveMovie(ctx, created.ID, 2); err != nil {
			t.Fatalf("RemoveMovie() error = %v", err)
		}

		mine, err := c.Watchlists.Mine(ctx)
		if err != nil || len(mine) != 1 || mine[0].Name != "Weeknight" || mine[0].MovieCount != 0 {
			t.Fatalf("Mine() = %+v, %v", mine, err)
		}

		if err := c.Watchlists.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})

	t.Run("Get Someone Elses", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken
		if _, err := c.Watchlists.Get(ctx, 10); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("QRCode", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.AdminName).AccessToken

		code, err := c.Watchlists.QRCode(ctx, 10)
		if err != nil || !strings.HasPrefix(code, "data:image/png;base64,") {
			t.Errorf("QRCode() = %q, %v", code, err)
		}
	})

	t.Run("QRCode Failure Is Empty", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.AdminName).AccessToken
		api.SetQRCode(10, "")

		code, err := c.Watchlists.QRCode(ctx, 10)
		if err != nil || code != "" {
			t.Errorf("expected (\"\", nil) on failure, got %q, %v", code, err)
		}

		tokens.token = ""
		if code, err := c.Watchlists.QRCode(ctx, 10); err != nil || code != "" {
			t.Errorf("expected (\"\", nil) when unauthenticated, got %q, %v", code, err)
		}
	})

	t.Run("QRCode Transport Failure Is Empty", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(nil, errors.New("dial failed"))
		c := NewClient(ClientOpts{BaseURL: "http://roamly.invalid/api", HTTPClient: &http.Client{Transport: rt}})
		if code, err := c.Watchlists.QRCode(ctx, 10); err != nil || code != "" {
			t.Errorf("expected (\"\", nil), got %q, %v", code, err)
		}
	})

	t.Run("Public Discovery", func(t *testing.T) {
		c, api, _ := newFakeClient(t, "")

		page, err := c.Watchlists.Public(ctx, 0, 0)
		if err != nil || len(page.Content) != 1 {
			t.Fatalf("Public() = %+v, %v", page, err)
		}
		if q := lastQuery(t, api); q.Get("size") != "12" || q.Get("page") != "0" {
			t.Errorf("unexpected query %v", q)
		}

		found, err := c.Watchlists.SearchPublic(ctx, "space", 0, 0)
		if err != nil || len(found.Content) != 1 {
			t.Fatalf("SearchPublic() = %+v, %v", found, err)
		}
		if q := lastQuery(t, api); q.Get("query") != "space" {
			t.Errorf("unexpected query %v", q)
		}

		if _, err := c.Watchlists.Popular(ctx, 1, 5); err != nil {
			t.Fatalf("Popular() error = %v", err)
		}

		detail, err := c.Watchlists.PublicByID(ctx, 10)
		if err != nil || detail.Username != tu.AdminName || len(detail.Movies) != 2 {
			t.Fatalf("PublicByID() = %+v, %v", detail, err)
		}
	})
}

func TestAdminService(t *testing.T) {
	ctx := context.Background()

	t.Run("Forbidden For Users", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.UserName).AccessToken
		if _, err := c.Admin.Users(ctx, 0, 0); !errors.Is(err, shared.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Users", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.AdminName).AccessToken

		page, err := c.Admin.Users(ctx, 0, 0)
		if err != nil || page.TotalElements != 2 {
			t.Fatalf("Users() = %+v, %v", page, err)
		}
		if q := lastQuery(t, api); q.Get("size") != "20" {
			t.Errorf("expected default size 20, got %v", q)
		}

		if err := c.Admin.Ban(ctx, 1, "spam"); err != nil {
			t.Fatalf("Ban() error = %v", err)
		}
		u, err := c.Admin.User(ctx, 1)
		if err != nil || !u.Banned() || u.BanReason != "spam" {
			t.Fatalf("User() after ban = %+v, %v", u, err)
		}
		if err := c.Admin.Unban(ctx, 1); err != nil {
			t.Fatalf("Unban() error = %v", err)
		}
		if u, _ := c.Admin.User(ctx, 1); u.Banned() {
			t.Error("user should be unbanned")
		}
		if err := c.Admin.DeleteUser(ctx, 1); err != nil {
			t.Fatalf("DeleteUser() error = %v", err)
		}
		if _, ok := api.User(1); ok {
			t.Error("user should be deleted")
		}
	})

	t.Run("Movies", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.AdminName).AccessToken

		created, err := c.Admin.CreateMovie(ctx, models.CreateMovieRequest{Title: "Sunshine", Runtime: 107})
		if err != nil {
			t.Fatalf("CreateMovie() error = %v", err)
		}
		updated, err := c.Admin.UpdateMovie(ctx, created.ID, models.UpdateMovieRequest{Title: "Sunshine (2007)", Runtime: 107})
		if err != nil || updated.Title != "Sunshine (2007)" {
			t.Fatalf("UpdateMovie() = %+v, %v", updated, err)
		}

		toggled, err := c.Admin.ToggleFeatured(ctx, created.ID)
		if err != nil || !toggled.IsFeatured {
			t.Fatalf("ToggleFeatured() = %+v, %v", toggled, err)
		}
		reqs := api.Requests()
		if last := reqs[len(reqs)-1]; last.Method != http.MethodPatch || last.Path != "/movies/"+itoa(created.ID)+"/featured" {
			t.Errorf("unexpected toggle request %s %s", last.Method, last.Path)
		}

		if err := c.Admin.DeleteMovie(ctx, created.ID); err != nil {
			t.Fatalf("DeleteMovie() error = %v", err)
		}
	})

	t.Run("External Catalog", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.AdminName).AccessToken

		result, err := c.Admin.SearchExternal(ctx, "Matrix", 0)
		if err != nil || len(result.Movies()) != 2 {
			t.Fatalf("SearchExternal() = %+v, %v", result, err)
		}
		if q := lastQuery(t, api); q.Get("page") != "1" || q.Get("query") != "Matrix" {
			t.Errorf("unexpected query %v", q)
		}

		m, err := c.Admin.Import(ctx, 603)
		if err != nil || m.ExternalID != 603 {
			t.Fatalf("Import() = %+v, %v", m, err)
		}

		if err := c.Admin.BulkImport(ctx, 0); err != nil {
			t.Fatalf("BulkImport() error = %v", err)
		}
		if got := api.BulkImports(); len(got) != 1 || got[0] != 5 {
			t.Errorf("expected default of 5 pages, got %v", got)
		}
	})

	t.Run("Analytics", func(t *testing.T) {
		c, api, tokens := newFakeClient(t, "")
		tokens.token = api.IssueToken(tu.AdminName).AccessToken
		a, err := c.Admin.Analytics(ctx)
		if err != nil || a.TotalUsers != 2 || a.TotalWatchlists != 1 {
			t.Errorf("Analytics() = %+v, %v", a, err)
		}
	})
}

func TestChatService(t *testing.T) {
	ctx := context.Background()
	c, api, _ := newFakeClient(t, "")

	first, err := c.Chat.Ask(ctx, "something like Alien?", "")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if first.ConversationID == "" || len(first.SuggestedMovies) == 0 {
		t.Fatalf("unexpected response %+v", first)
	}

	second, err := c.Chat.Ask(ctx, "and older?", first.ConversationID)
	if err != nil || second.ConversationID != first.ConversationID {
		t.Fatalf("follow-up lost the conversation: %+v, %v", second, err)
	}
	if !strings.Contains(api.Requests()[1].Body, first.ConversationID) {
		t.Error("expected conversation id in follow-up body")
	}

	if _, err := c.Chat.Ask(ctx, "  ", ""); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank question, got %v", err)
	}
	if n := api.CountRequests(http.MethodPost, "/chatbot/ask"); n != 2 {
		t.Errorf("blank question should not reach the server, saw %d requests", n)
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
