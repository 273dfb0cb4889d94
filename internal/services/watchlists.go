package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/roamly/internal/models"
)

const DefaultWatchlistPageSize = 12

// WatchlistService covers /watchlists.
type WatchlistService struct{ c *Client }

// Mine lists the caller's watchlists.
func (s *WatchlistService) Mine(ctx context.Context) ([]models.Watchlist, error) {
	var out []models.Watchlist
	if err := s.c.do(ctx, http.MethodGet, "/watchlists", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *WatchlistService) Get(ctx context.Context, id int64) (*models.WatchlistDetail, error) {
	return s.detail(ctx, fmt.Sprintf("/watchlists/%d", id))
}

func (s *WatchlistService) Create(ctx context.Context, req models.CreateWatchlistRequest) (*models.Watchlist, error) {
	var out models.Watchlist
	if err := s.c.do(ctx, http.MethodPost, "/watchlists", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WatchlistService) Update(ctx context.Context, id int64, req models.UpdateWatchlistRequest) (*models.Watchlist, error) {
	var out models.Watchlist
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/watchlists/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WatchlistService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/watchlists/%d", id), nil, nil, nil)
}

func (s *WatchlistService) AddMovie(ctx context.Context, watchlistID, movieID int64) error {
	return s.c.do(ctx, http.MethodPost, fmt.Sprintf("/watchlists/%d/movies/%d", watchlistID, movieID), nil, nil, nil)
}

func (s *WatchlistService) RemoveMovie(ctx context.Context, watchlistID, movieID int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/watchlists/%d/movies/%d", watchlistID, movieID), nil, nil, nil)
}

// QRCode returns the watchlist's QR code as a data URL ("data:image/png;base64,...").
//
// QR codes are optional: any failure yields ("", nil) and views show a
// not-available notice instead of an error.
func (s *WatchlistService) QRCode(ctx context.Context, id int64) (string, error) {
	var out string
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/watchlists/%d/qr-code", id), nil, nil, &out); err != nil {
		s.c.logger.Debug("qr code unavailable", "watchlist", id, "error", err)
		return "", nil
	}
	return out, nil
}

// Public lists public watchlists.
func (s *WatchlistService) Public(ctx context.Context, page, size int) (*models.Page[models.Watchlist], error) {
	return s.page(ctx, "/watchlists/public", "", page, size)
}

func (s *WatchlistService) SearchPublic(ctx context.Context, query string, page, size int) (*models.Page[models.Watchlist], error) {
	return s.page(ctx, "/watchlists/public/search", query, page, size)
}

func (s *WatchlistService) Popular(ctx context.Context, page, size int) (*models.Page[models.Watchlist], error) {
	return s.page(ctx, "/watchlists/public/popular", "", page, size)
}

// PublicByID fetches a public watchlist without requiring ownership.
func (s *WatchlistService) PublicByID(ctx context.Context, id int64) (*models.WatchlistDetail, error) {
	return s.detail(ctx, fmt.Sprintf("/watchlists/public/%d", id))
}

func (s *WatchlistService) detail(ctx context.Context, path string) (*models.WatchlistDetail, error) {
	var out models.WatchlistDetail
	if err := s.c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *WatchlistService) page(ctx context.Context, path, query string, page, size int) (*models.Page[models.Watchlist], error) {
	q := pageQuery(page, size, DefaultWatchlistPageSize)
	if query != "" {
		q.Set("query", query)
	}

	var out models.Page[models.Watchlist]
	if err := s.c.do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
