package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/roamly/internal/models"
)

const (
	DefaultAdminUserPageSize = 20
	DefaultBulkImportPages   = 5
)

// AdminService covers /admin and the featured toggle. The server rejects non-admin callers.
type AdminService struct{ c *Client }

func (s *AdminService) Users(ctx context.Context, page, size int) (*models.Page[models.User], error) {
	var out models.Page[models.User]
	if err := s.c.do(ctx, http.MethodGet, "/admin/users", pageQuery(page, size, DefaultAdminUserPageSize), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) User(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/users/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) Ban(ctx context.Context, id int64, reason string) error {
	return s.c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/ban", id), nil, models.BanRequest{Reason: reason}, nil)
}

func (s *AdminService) Unban(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/users/%d/unban", id), nil, nil, nil)
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil, nil)
}

func (s *AdminService) CreateMovie(ctx context.Context, req models.CreateMovieRequest) (*models.Movie, error) {
	var out models.Movie
	if err := s.c.do(ctx, http.MethodPost, "/admin/movies", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) UpdateMovie(ctx context.Context, id int64, req models.UpdateMovieRequest) (*models.Movie, error) {
	var out models.Movie
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/admin/movies/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) DeleteMovie(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/movies/%d", id), nil, nil, nil)
}

// ToggleFeatured flips the movie's featured flag and returns the updated movie.
func (s *AdminService) ToggleFeatured(ctx context.Context, id int64) (*models.Movie, error) {
	var out *models.Movie
	if err := s.c.do(ctx, http.MethodPatch, fmt.Sprintf("/movies/%d/featured", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchExternal searches the external catalog. Pages start at 1.
func (s *AdminService) SearchExternal(ctx context.Context, query string, page int) (*models.ExternalSearchResult, error) {
	if page <= 0 {
		page = 1
	}
	q := url.Values{"query": {query}, "page": {fmt.Sprint(page)}}

	var out models.ExternalSearchResult
	if err := s.c.do(ctx, http.MethodGet, "/admin/tmdb/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Import copies one external catalog entry into the local catalog.
func (s *AdminService) Import(ctx context.Context, externalID int64) (*models.Movie, error) {
	var out *models.Movie
	if err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/tmdb/import/%d", externalID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkImport asks the server to import pages of popular external titles (5 when pages <= 0).
func (s *AdminService) BulkImport(ctx context.Context, pages int) error {
	if pages <= 0 {
		pages = DefaultBulkImportPages
	}
	return s.c.do(ctx, http.MethodPost, "/admin/tmdb/bulk-import", url.Values{"pages": {fmt.Sprint(pages)}}, nil, nil)
}

func (s *AdminService) Analytics(ctx context.Context) (*models.Analytics, error) {
	var out models.Analytics
	if err := s.c.do(ctx, http.MethodGet, "/admin/analytics/overview", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
