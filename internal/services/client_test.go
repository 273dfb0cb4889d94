package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
	tu "github.com/desertthunder/roamly/internal/testing"
)

type staticTokens string

func (s staticTokens) AccessToken() (string, bool) { return string(s), s != "" }

// mutableTokens lets a test change the token between requests.
type mutableTokens struct{ token string }

func (m *mutableTokens) AccessToken() (string, bool) { return m.token, m.token != "" }

func envelope(t *testing.T, w http.ResponseWriter, status int, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": status < 300, "message": message, "data": data})
}

func TestNewClient(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		c := NewClient(ClientOpts{})
		if c.BaseURL() != DefaultBaseURL {
			t.Errorf("expected default base url, got %s", c.BaseURL())
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", c.httpClient.Timeout)
		}
		if c.Auth == nil || c.Profile == nil || c.Movies == nil || c.Ratings == nil || c.Watchlists == nil || c.Admin == nil || c.Chat == nil {
			t.Error("expected every resource group to be set")
		}
	})

	t.Run("Trims Trailing Slash", func(t *testing.T) {
		c := NewClient(ClientOpts{BaseURL: "https://api.roamly.test/api/"})
		if c.BaseURL() != "https://api.roamly.test/api" {
			t.Errorf("unexpected base url %s", c.BaseURL())
		}
	})

	t.Run("Does Not Mutate Caller Client", func(t *testing.T) {
		hc := &http.Client{}
		NewClient(ClientOpts{HTTPClient: hc, Tokens: staticTokens("a1"), Timeout: time.Second})
		if hc.Transport != nil || hc.Timeout != 0 {
			t.Error("caller's http.Client should not be modified")
		}
	})
}

func TestBearerTransport(t *testing.T) {
	var gotAuth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		envelope(t, w, http.StatusOK, "", nil)
	}))
	defer server.Close()

	tokens := &mutableTokens{}
	c := NewClient(ClientOpts{BaseURL: server.URL, Tokens: tokens})

	t.Run("No Token No Header", func(t *testing.T) {
		if err := c.Auth.Logout(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotAuth[len(gotAuth)-1] != "" {
			t.Errorf("expected no Authorization header, got %q", gotAuth[len(gotAuth)-1])
		}
	})

	t.Run("Token Read Per Request", func(t *testing.T) {
		tokens.token = "a1"
		c.Auth.Logout(context.Background())
		tokens.token = "a2"
		c.Auth.Logout(context.Background())

		n := len(gotAuth)
		if gotAuth[n-2] != "Bearer a1" || gotAuth[n-1] != "Bearer a2" {
			t.Errorf("expected current token on each request, got %q then %q", gotAuth[n-2], gotAuth[n-1])
		}
	})

	t.Run("Without Token Source", func(t *testing.T) {
		plain := NewClient(ClientOpts{BaseURL: server.URL})
		plain.Auth.Logout(context.Background())
		if gotAuth[len(gotAuth)-1] != "" {
			t.Error("client without token source should not send Authorization")
		}
	})
}

func TestClientDo(t *testing.T) {
	t.Run("Sets Request Headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(RequestIDHeader) == "" {
				t.Error("expected X-Request-ID header")
			}
			if r.Header.Get("User-Agent") != "roamly-test" {
				t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
			}
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
			}
			envelope(t, w, http.StatusOK, "", map[string]any{"id": 1, "username": "ana", "role": "USER"})
		}))
		defer server.Close()

		c := NewClient(ClientOpts{BaseURL: server.URL, UserAgent: "roamly-test"})
		if _, err := c.Profile.Update(context.Background(), models.UpdateProfileRequest{FirstName: "Ana"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("API Error Carries Server Message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			envelope(t, w, http.StatusBadRequest, "Username already exists", nil)
		}))
		defer server.Close()

		c := NewClient(ClientOpts{BaseURL: server.URL})
		_, err := c.Movies.Get(context.Background(), 1)

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected *APIError, got %T: %v", err, err)
		}
		if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Username already exists" {
			t.Errorf("unexpected api error: %+v", apiErr)
		}
		if apiErr.Method != http.MethodGet || apiErr.Path != "/movies/1" {
			t.Errorf("unexpected method/path: %s %s", apiErr.Method, apiErr.Path)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Error("expected error to match ErrAPIRequest")
		}
		if MessageOf(err, "fallback") != "Username already exists" {
			t.Errorf("MessageOf() = %q", MessageOf(err, "fallback"))
		}
	})

	t.Run("Status Sentinels", func(t *testing.T) {
		tests := []struct {
			status int
			want   error
		}{
			{http.StatusUnauthorized, shared.ErrNotAuthenticated},
			{http.StatusForbidden, shared.ErrForbidden},
			{http.StatusBadGateway, shared.ErrServiceUnavailable},
		}
		for _, tt := range tests {
			err := &APIError{Status: tt.status}
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d should match %v", tt.status, tt.want)
			}
		}
	})

	t.Run("Non JSON Error Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
		}))
		defer server.Close()

		c := NewClient(ClientOpts{BaseURL: server.URL})
		_, err := c.Movies.Featured(context.Background())
		if !IsStatus(err, http.StatusBadGateway) {
			t.Fatalf("expected 502 api error, got %v", err)
		}
		if MessageOf(err, "fallback") != "fallback" {
			t.Error("expected fallback message for non-JSON error body")
		}
	})

	t.Run("Malformed Success Body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		c := NewClient(ClientOpts{BaseURL: server.URL})
		if _, err := c.Movies.Stats(context.Background()); !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(nil, errors.New("connection refused"))
		c := NewClient(ClientOpts{BaseURL: "http://roamly.invalid/api", HTTPClient: &http.Client{Transport: rt}})

		_, err := c.Movies.Featured(context.Background())
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if IsStatus(err, http.StatusNotFound) {
			t.Error("transport failure should not look like an API status")
		}
	})

	t.Run("Mock Round Tripper Response", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(tu.JSONResponse(http.StatusOK, `{"success":true,"data":{"totalMovies":3,"totalUsers":2,"totalRatings":1}}`), nil)
		c := NewClient(ClientOpts{BaseURL: "http://roamly.invalid/api", HTTPClient: &http.Client{Transport: rt}, Tokens: staticTokens("a1")})

		stats, err := c.Movies.Stats(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.TotalMovies != 3 {
			t.Errorf("unexpected stats %+v", stats)
		}
		if rt.Last.Header.Get("Authorization") != "Bearer a1" {
			t.Errorf("expected bearer header on outgoing request, got %q", rt.Last.Header.Get("Authorization"))
		}
		if rt.Last.URL.String() != "http://roamly.invalid/api/movies/stats" {
			t.Errorf("unexpected url %s", rt.Last.URL)
		}
	})

	t.Run("Body Read Failure", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: &tu.FCloser{}}
		c := NewClient(ClientOpts{BaseURL: "http://roamly.invalid/api", HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}})

		_, err := c.Movies.Stats(context.Background())
		if err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read failure, got %v", err)
		}
	})

	t.Run("Context Cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			envelope(t, w, http.StatusOK, "", nil)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := NewClient(ClientOpts{BaseURL: server.URL})
		if _, err := c.Movies.Featured(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
