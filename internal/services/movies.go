package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/roamly/internal/models"
)

const (
	DefaultMoviePageSize = 20
	DefaultMovieSort     = "rating"
	DefaultPopularLimit  = 10
)

// MovieService covers /movies.
type MovieService struct{ c *Client }

// List returns a page of the catalog ordered by sort ("rating" when empty).
func (s *MovieService) List(ctx context.Context, page, size int, sort string) (*models.Page[models.Movie], error) {
	return s.Browse(ctx, page, size, "", sort)
}

// Browse is List with an optional genre filter; the genre parameter is omitted when empty.
func (s *MovieService) Browse(ctx context.Context, page, size int, genre, sort string) (*models.Page[models.Movie], error) {
	q := pageQuery(page, size, DefaultMoviePageSize)
	if genre = strings.TrimSpace(genre); genre != "" {
		q.Set("genre", genre)
	}
	if sort == "" {
		sort = DefaultMovieSort
	}
	q.Set("sortBy", sort)

	var out models.Page[models.Movie]
	if err := s.c.do(ctx, http.MethodGet, "/movies", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MovieService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	var out models.Movie
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/movies/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search performs a free-text catalog search.
func (s *MovieService) Search(ctx context.Context, query string, page, size int) (*models.Page[models.Movie], error) {
	q := pageQuery(page, size, DefaultMoviePageSize)
	q.Set("query", query)

	var out models.Page[models.Movie]
	if err := s.c.do(ctx, http.MethodGet, "/movies/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MovieService) Featured(ctx context.Context) ([]models.Movie, error) {
	return s.list(ctx, "/movies/featured", nil)
}

// Popular returns up to limit movies. A zero limit means 10.
func (s *MovieService) Popular(ctx context.Context, limit int) ([]models.Movie, error) {
	if limit == 0 {
		limit = DefaultPopularLimit
	}
	return s.list(ctx, "/movies/popular", url.Values{"limit": {fmt.Sprint(limit)}})
}

// Recommendations are personalised and require a stored token.
func (s *MovieService) Recommendations(ctx context.Context) ([]models.Movie, error) {
	return s.list(ctx, "/movies/recommendations", nil)
}

// Details returns the movie with cast, streaming providers and a watch link.
func (s *MovieService) Details(ctx context.Context, id int64) (*models.MovieDetails, error) {
	var out models.MovieDetails
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/movies/%d/details", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MovieService) Stats(ctx context.Context) (*models.PublicStats, error) {
	var out models.PublicStats
	if err := s.c.do(ctx, http.MethodGet, "/movies/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MovieService) list(ctx context.Context, path string, q url.Values) ([]models.Movie, error) {
	var out []models.Movie
	if err := s.c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
