package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type staticHandler struct{ body string }

func (h staticHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, h.body) }
func (h staticHandler) Routes() []string                                 { return []string{"/static/", "/assets/"} }

func tag(name string, order *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestBasicRouter(t *testing.T) {
	t.Run("Method Patterns", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/login", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "form") })
		r.HandleFunc(http.MethodPost, "/login", func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "submit") })

		for method, want := range map[string]string{http.MethodGet: "form", http.MethodPost: "submit"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(method, "/login", nil))
			if rec.Body.String() != want {
				t.Errorf("%s /login = %q, want %q", method, rec.Body.String(), want)
			}
		}

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/login", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("Path Values", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/movie/{id}", func(w http.ResponseWriter, req *http.Request) {
			_, _ = io.WriteString(w, req.PathValue("id"))
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movie/42", nil))
		if rec.Body.String() != "42" {
			t.Errorf("PathValue = %q", rec.Body.String())
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		r := NewBasicRouter()
		r.Use(tag("first", &order), tag("second", &order))
		r.HandleFunc(http.MethodGet, "/", func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }, tag("route", &order))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,route,handler" {
			t.Errorf("order = %s", got)
		}
	})

	t.Run("Handler Routes", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handler(staticHandler{body: "asset"})

		for _, path := range []string{"/static/app.css", "/assets/logo.png"} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Body.String() != "asset" {
				t.Errorf("%s = %q", path, rec.Body.String())
			}
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RequestID Generated", func(t *testing.T) {
		var seen string
		h := WithRequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { seen = RequestID(r.Context()) }))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
			t.Errorf("request id %q, header %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("RequestID Reused", func(t *testing.T) {
		h := WithRequestID()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Header().Get(RequestIDHeader) != "abc" {
			t.Errorf("header = %q", rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		h := Logging(log.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/browse", nil))

		out := buf.String()
		if !strings.Contains(out, "/browse") || !strings.Contains(out, "418") {
			t.Errorf("log line %q", out)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		h := Recover(log.New(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestCrossOrigin(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		site    string
		origin  string
		allowed bool
	}{
		{name: "Safe Method From Another Site", method: http.MethodGet, site: "cross-site", origin: "https://evil.example", allowed: true},
		{name: "Same Origin Fetch", method: http.MethodPost, site: "same-origin", allowed: true},
		{name: "Typed Into Address Bar", method: http.MethodPost, site: "none", allowed: true},
		{name: "Cross Site Fetch", method: http.MethodPost, site: "cross-site"},
		{name: "Same Site Fetch", method: http.MethodPost, site: "same-site"},
		{name: "Cross Site Wins Over Matching Origin", method: http.MethodPost, site: "cross-site", origin: "http://example.com"},
		{name: "Matching Origin", method: http.MethodPost, origin: "http://example.com", allowed: true},
		{name: "Foreign Origin", method: http.MethodDelete, origin: "https://evil.example"},
		{name: "Opaque Origin", method: http.MethodPost, origin: "null"},
		{name: "No Browser Headers", method: http.MethodPost, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := CrossOrigin(log.New(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))

			req := httptest.NewRequest(tt.method, "/admin/users/1/delete", nil)
			if tt.site != "" {
				req.Header.Set("Sec-Fetch-Site", tt.site)
			}
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if called != tt.allowed {
				t.Errorf("handler called = %v, want %v", called, tt.allowed)
			}
			if !tt.allowed && rec.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", rec.Code)
			}
		})
	}
}

func TestListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- ListenAndServe(ctx, "127.0.0.1:0", staticHandler{body: "up"}, log.New(io.Discard), ready)
	}()

	addr := <-ready
	resp, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if string(body) != "up" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
