package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

const (
	DefaultBaseURL   = "http://localhost:8080/api"
	DefaultUserAgent = "roamly-cli"
	defaultTimeout   = 30 * time.Second

	// RequestIDHeader correlates a client request with server logs.
	RequestIDHeader = "X-Request-ID"
)

// TokenSource supplies the current access token. tokens.Store satisfies it.
type TokenSource interface {
	AccessToken() (string, bool)
}

// ClientOpts configures [NewClient]. Zero values select defaults.
type ClientOpts struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *log.Logger
	UserAgent  string
	Timeout    time.Duration
}

// Client talks to the Roamly API. Each resource group is a field.
//
// The client never retries, refreshes tokens or queues requests.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *log.Logger

	Auth       *AuthService
	Profile    *ProfileService
	Movies     *MovieService
	Ratings    *RatingService
	Watchlists *WatchlistService
	Admin      *AdminService
	Chat       *ChatService
}

// NewClient creates a Client. When opts.Tokens is set, every request carries the stored access token.
func NewClient(opts ClientOpts) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	var hc http.Client
	if opts.HTTPClient != nil {
		hc = *opts.HTTPClient
	}
	if hc.Timeout == 0 {
		hc.Timeout = defaultTimeout
		if opts.Timeout > 0 {
			hc.Timeout = opts.Timeout
		}
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if opts.Tokens != nil {
		hc.Transport = &bearerTransport{base: base, tokens: opts.Tokens}
	}

	c := &Client{
		baseURL:    baseURL,
		userAgent:  opts.UserAgent,
		httpClient: &hc,
		logger:     opts.Logger,
	}
	c.Auth = &AuthService{c: c}
	c.Profile = &ProfileService{c: c}
	c.Movies = &MovieService{c: c}
	c.Ratings = &RatingService{c: c}
	c.Watchlists = &WatchlistService{c: c}
	c.Admin = &AdminService{c: c}
	c.Chat = &ChatService{c: c}
	return c
}

// BaseURL returns the API root every path is joined to.
func (c *Client) BaseURL() string { return c.baseURL }

// bearerTransport attaches the stored access token, read per request, as a Bearer Authorization header.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	access, ok := t.tokens.AccessToken()
	if !ok {
		return t.base.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(authed)
	return t.base.RoundTrip(authed)
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status    int
	Message   string // server "message" field, if any
	Method    string
	Path      string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api error: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Unwrap lets callers match API failures against the shared sentinels.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	switch {
	case e.Status == http.StatusUnauthorized:
		errs = append(errs, shared.ErrNotAuthenticated)
	case e.Status == http.StatusForbidden:
		errs = append(errs, shared.ErrForbidden)
	case e.Status >= 500:
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// IsStatus reports whether err is an [APIError] with one of codes.
func IsStatus(err error, codes ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.Status == code {
			return true
		}
	}
	return false
}

// MessageOf returns the server's message carried by err, or fallback when there is none.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}

// do performs a request against path and decodes the envelope's data into out (which may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %s %s: %w", shared.ErrServiceUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: path, RequestID: requestID}
		var env models.Envelope[json.RawMessage]
		if json.Unmarshal(raw, &env) == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	env := models.Envelope[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrMalformedResponse, method, path, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrMalformedResponse, method, path, err)
	}
	return nil
}

// pageQuery sends page and size as given. A zero size means the caller left it
// unset and becomes defaultSize; the server answers anything else it dislikes.
func pageQuery(page, size, defaultSize int) url.Values {
	if size == 0 {
		size = defaultSize
	}
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("size", fmt.Sprint(size))
	return q
}
