package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/shared"
	tu "github.com/desertthunder/roamly/internal/testing"
)

type mockWatchlists struct {
	mu       sync.Mutex
	lists    map[int64]*models.WatchlistDetail
	qr       map[int64]string
	mineErr  error
	getCalls int
}

func (m *mockWatchlists) Mine(context.Context) ([]models.Watchlist, error) {
	if m.mineErr != nil {
		return nil, m.mineErr
	}
	var out []models.Watchlist
	for _, w := range m.lists {
		out = append(out, models.Watchlist{ID: w.ID, Name: w.Name})
	}
	return out, nil
}

func (m *mockWatchlists) Get(_ context.Context, id int64) (*models.WatchlistDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if w, ok := m.lists[id]; ok {
		return w, nil
	}
	return nil, &services.APIError{Status: 404, Message: "Watchlist not found"}
}

func (m *mockWatchlists) QRCode(_ context.Context, id int64) (string, error) {
	return m.qr[id], nil
}

type mockImporter struct {
	mu    sync.Mutex
	fail  map[int64]error
	calls []int64
}

func (m *mockImporter) Import(_ context.Context, id int64) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, id)
	if err := m.fail[id]; err != nil {
		return nil, err
	}
	return &models.Movie{ID: id + 1000, ExternalID: id, Title: fmt.Sprintf("Imported %d", id)}, nil
}

func newMockWatchlists() *mockWatchlists {
	return &mockWatchlists{
		lists: map[int64]*models.WatchlistDetail{
			1: {ID: 1, Name: "Favourites", Movies: []models.Movie{{ID: 1, Title: "Alien", ReleaseDate: "1979-05-25"}}},
			2: {ID: 2, Name: "Later", Movies: []models.Movie{{ID: 2, Title: "Heat"}, {ID: 3, Title: "Arrival"}}},
		},
		qr: map[int64]string{1: tu.TinyPNGDataURL()},
	}
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	close(ch)
	var out []ProgressUpdate
	for u := range ch {
		out = append(out, u)
	}
	return out
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		format    string
		filesEach map[int64]int
	}{
		{name: "JSON", format: FormatJSON, filesEach: map[int64]int{1: 1, 2: 1}},
		{name: "CSV", format: FormatCSV, filesEach: map[int64]int{1: 2, 2: 2}},
		{name: "Text", format: FormatText, filesEach: map[int64]int{1: 1, 2: 1}},
		{name: "Markdown With QR", format: FormatMarkdown, filesEach: map[int64]int{1: 2, 2: 1}},
		{name: "Default Format", format: "", filesEach: map[int64]int{1: 1, 2: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			e := NewEngine(EngineOpts{Watchlists: newMockWatchlists()})
			prog := make(chan ProgressUpdate, 32)

			res, err := e.BulkExport(ctx, prog, nil, BulkExportOpts{Format: tt.format, OutputDir: dir, RateLimit: 1000})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if res.Total != 2 || res.Successful != 2 || res.Failed != 0 {
				t.Errorf("summary = %+v", res)
			}
			for _, r := range res.Results {
				if len(r.Files) != tt.filesEach[r.ID] {
					t.Errorf("watchlist %d wrote %d files, want %d", r.ID, len(r.Files), tt.filesEach[r.ID])
				}
				for _, f := range r.Files {
					tu.AssertFileExists(t, f)
				}
			}
			tu.AssertFileExists(t, res.ManifestPath)

			updates := drain(prog)
			if len(updates) == 0 || updates[len(updates)-1].Phase != WriteManifest {
				t.Errorf("expected manifest update last, got %+v", updates)
			}
		})
	}

	t.Run("Partial Failure", func(t *testing.T) {
		dir := t.TempDir()
		src := newMockWatchlists()
		e := NewEngine(EngineOpts{Watchlists: src})

		res, err := e.BulkExport(ctx, nil, []int64{1, 99, 2}, BulkExportOpts{OutputDir: dir, RateLimit: 1000})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if res.Successful != 2 || res.Failed != 1 {
			t.Errorf("summary = %+v", res)
		}
		if res.Results[2].ID != 99 || !strings.Contains(res.Results[2].Name, "Unknown (99)") {
			t.Errorf("failed entry = %+v", res.Results[2])
		}

		var manifest struct {
			Failed int `json:"failed_exports"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, res.ManifestPath)), &manifest); err != nil {
			t.Fatalf("bad manifest: %v", err)
		}
		if manifest.Failed != 1 {
			t.Errorf("manifest failed_exports = %d", manifest.Failed)
		}
	})

	t.Run("List Failure", func(t *testing.T) {
		src := newMockWatchlists()
		src.mineErr = shared.ErrNotAuthenticated
		e := NewEngine(EngineOpts{Watchlists: src})

		if _, err := e.BulkExport(ctx, nil, nil, BulkExportOpts{OutputDir: t.TempDir()}); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		e := NewEngine(EngineOpts{Watchlists: newMockWatchlists()})
		if _, err := e.BulkExport(ctx, nil, nil, BulkExportOpts{Format: "xml"}); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("Missing Service", func(t *testing.T) {
		e := NewEngine(EngineOpts{})
		if _, err := e.BulkExport(ctx, nil, nil, BulkExportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		e := NewEngine(EngineOpts{Watchlists: newMockWatchlists()})

		_, err := e.BulkExport(cctx, nil, []int64{1, 2}, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Default Output Dir", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		tu.MustChdir(t, t.TempDir())
		defer tu.MustChdir(t, wd)

		e := NewEngine(EngineOpts{Watchlists: newMockWatchlists()})
		res, err := e.BulkExport(ctx, nil, []int64{1}, BulkExportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if !strings.HasPrefix(res.OutputDirectory, "watchlists_export_") {
			t.Errorf("unexpected output directory %q", res.OutputDirectory)
		}
		tu.AssertFileExists(t, res.OutputDirectory)
	})

	t.Run("Output Dir Is A File", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		e := NewEngine(EngineOpts{Watchlists: newMockWatchlists()})
		if _, err := e.BulkExport(ctx, nil, []int64{1}, BulkExportOpts{OutputDir: file}); err == nil {
			t.Error("expected error")
		}
	})
}

func TestImportMovies(t *testing.T) {
	ctx := context.Background()

	t.Run("Imports And Dedupes", func(t *testing.T) {
		imp := &mockImporter{}
		e := NewEngine(EngineOpts{Importer: imp, Config: shared.TasksConfig{Workers: 2, RateLimit: 1000}})
		prog := make(chan ProgressUpdate, 16)

		res, err := e.ImportMovies(ctx, prog, []int64{603, 550, 603, 0, 13}, ImportOpts{})
		if err != nil {
			t.Fatalf("ImportMovies failed: %v", err)
		}
		if res.Total != 3 || res.Successful != 3 {
			t.Errorf("summary = %+v", res)
		}
		if len(imp.calls) != 3 {
			t.Errorf("expected 3 import calls, got %v", imp.calls)
		}
		if res.Results[0].ExternalID != 13 || res.Results[2].ExternalID != 603 {
			t.Errorf("results not ordered: %+v", res.Results)
		}
		if updates := drain(prog); len(updates) != 3 {
			t.Errorf("expected 3 progress updates, got %d", len(updates))
		}
	})

	t.Run("Failures Do Not Stop The Run", func(t *testing.T) {
		imp := &mockImporter{fail: map[int64]error{550: &services.APIError{Status: 409, Message: "Movie already exists"}}}
		e := NewEngine(EngineOpts{Importer: imp})

		res, err := e.ImportMovies(ctx, nil, []int64{550, 603}, ImportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("ImportMovies failed: %v", err)
		}
		if res.Successful != 1 || res.Failed != 1 {
			t.Errorf("summary = %+v", res)
		}
		if services.MessageOf(res.Results[0].Error, "") != "Movie already exists" {
			t.Errorf("error = %v", res.Results[0].Error)
		}
	})

	t.Run("No IDs", func(t *testing.T) {
		e := NewEngine(EngineOpts{Importer: &mockImporter{}})
		if _, err := e.ImportMovies(ctx, nil, []int64{0, -1}, ImportOpts{}); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Against Fake API", func(t *testing.T) {
		api := tu.NewFakeAPI(t)
		pair := api.IssueToken(tu.AdminName)
		client := services.NewClient(services.ClientOpts{BaseURL: api.URL(), Tokens: staticToken(pair.AccessToken)})
		e := NewEngine(EngineOpts{Importer: client.Admin})

		res, err := e.ImportMovies(ctx, nil, []int64{101, 102}, ImportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("ImportMovies failed: %v", err)
		}
		if res.Successful != 2 {
			t.Errorf("summary = %+v", res)
		}
		if got := api.Imported(); len(got) != 2 {
			t.Errorf("fake recorded imports %v", got)
		}
	})
}

type staticToken string

func (s staticToken) AccessToken() (string, bool) { return string(s), s != "" }

func TestPoolSize(t *testing.T) {
	tests := []struct {
		name      string
		config    int
		requested int
		want      int
	}{
		{"Default", 0, 0, defaultWorkers},
		{"Config", 4, 0, 4},
		{"Requested Wins", 4, 2, 2},
		{"Capped", 0, 50, maxWorkers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(EngineOpts{Config: shared.TasksConfig{Workers: tt.config}})
			if got := e.poolSize(tt.requested); got != tt.want {
				t.Errorf("poolSize() = %d, want %d", got, tt.want)
			}
		})
	}
}
