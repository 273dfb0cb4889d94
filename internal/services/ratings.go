package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/roamly/internal/models"
)

const DefaultRatingPageSize = 10

// RatingService covers /ratings.
type RatingService struct{ c *Client }

func (s *RatingService) Create(ctx context.Context, req models.CreateRatingRequest) (*models.Rating, error) {
	var out models.Rating
	if err := s.c.do(ctx, http.MethodPost, "/ratings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RatingService) Update(ctx context.Context, id int64, req models.UpdateRatingRequest) (*models.Rating, error) {
	var out models.Rating
	if err := s.c.do(ctx, http.MethodPut, fmt.Sprintf("/ratings/%d", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RatingService) Delete(ctx context.Context, id int64) error {
	return s.c.do(ctx, http.MethodDelete, fmt.Sprintf("/ratings/%d", id), nil, nil, nil)
}

// MyRatingForMovie returns the caller's rating for a movie.
//
// Not having rated the movie is expected: a 404 or 401 yields (nil, nil).
// Every other failure is returned.
func (s *RatingService) MyRatingForMovie(ctx context.Context, movieID int64) (*models.Rating, error) {
	var out *models.Rating
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/ratings/movie/%d/my-rating", movieID), nil, nil, &out)
	if IsStatus(err, http.StatusNotFound, http.StatusUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ForMovie returns a page of every user's ratings for a movie.
func (s *RatingService) ForMovie(ctx context.Context, movieID int64, page, size int) (*models.Page[models.Rating], error) {
	var out models.Page[models.Rating]
	q := pageQuery(page, size, DefaultRatingPageSize)
	if err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/ratings/movie/%d", movieID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RatingService) Mine(ctx context.Context) ([]models.Rating, error) {
	var out []models.Rating
	if err := s.c.do(ctx, http.MethodGet, "/ratings/my-ratings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
