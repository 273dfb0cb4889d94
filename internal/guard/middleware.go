package guard

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/desertthunder/roamly/internal/server"
)

// Paths are the redirect targets used by [Middleware].
type Paths struct {
	Login string
	Home  string
}

// DefaultPaths redirects to /login and /.
var DefaultPaths = Paths{Login: "/login", Home: "/"}

var loadingPage = template.Must(template.New("loading").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><meta http-equiv="refresh" content="1"><title>Loading…</title></head>
<body><p class="loading">Loading…</p></body>
</html>
`))

// Middleware gates every request through [Evaluate].
//
// While the session is loading it serves a self-refreshing placeholder page.
// Login redirects carry the original path as ?next= so the login form can
// return there.
func Middleware(src SnapshotSource, req Requirement, paths Paths) server.Middleware {
	if paths.Login == "" {
		paths.Login = DefaultPaths.Login
	}
	if paths.Home == "" {
		paths.Home = DefaultPaths.Home
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch Evaluate(src.Snapshot(), req) {
			case Wait:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				w.WriteHeader(http.StatusOK)
				_ = loadingPage.Execute(w, nil)
			case RedirectLogin:
				target := paths.Login
				if r.Method == http.MethodGet && r.URL.Path != paths.Login {
					target += "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
				}
				http.Redirect(w, r, target, http.StatusFound)
			case RedirectHome:
				http.Redirect(w, r, paths.Home, http.StatusFound)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
