package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var assetFS embed.FS

func staticFS() fs.FS {
	sub, err := fs.Sub(assetFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// pages holds one template set per page, each combined with the layout.
type pages struct {
	sets map[string]*template.Template
}

var pageNames = []string{
	"home", "browse", "movie", "login", "register", "discover", "public_watchlist",
	"profile", "watchlists", "watchlist", "chat",
	"admin", "admin_users", "admin_movies", "admin_import", "error",
}

func parsePages() (*pages, error) {
	p := &pages{sets: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		p.sets[name] = t
	}
	return p, nil
}

func (p *pages) execute(w io.Writer, name string, v view) error {
	t, ok := p.sets[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", v)
}

var funcs = template.FuncMap{
	"runtime":    shared.FormatRuntime,
	"visibility": shared.VisibilityString,
	"join":       strings.Join,
	"add":        func(a, b int) int { return a + b },
	"rating":     func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"qrImage":    qrImage,
	"year": func(m models.Movie) string {
		if y := m.Year(); y > 0 {
			return fmt.Sprint(y)
		}
		return ""
	},
	"ownedBy": func(w *models.WatchlistDetail, u *models.User) bool { return w.OwnedBy(u) },
}

// qrImage marks a PNG data URL as safe for an img src. Anything else renders empty.
func qrImage(dataURL string) template.URL {
	if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		return ""
	}
	return template.URL(dataURL)
}
