package models

import (
	"fmt"
	"unicode/utf8"

	"github.com/desertthunder/roamly/internal/shared"
)

const (
	MinRatingValue  = 1
	MaxRatingValue  = 10
	MaxReviewLength = 2000
)

// Rating is a user's score and optional review for a movie.
type Rating struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"userId"`
	Username      string `json:"username"`
	MovieID       int64  `json:"movieId"`
	MovieTitle    string `json:"movieTitle,omitempty"`
	Value         int    `json:"ratingValue"`
	ReviewText    string `json:"reviewText,omitempty"`
	SpoilerTagged bool   `json:"spoilerTagged"`
	Sentiment     string `json:"sentiment,omitempty"`
	HelpfulCount  int    `json:"helpfulCount"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// CreateRatingRequest is the body of POST /ratings.
type CreateRatingRequest struct {
	MovieID       int64  `json:"movieId"`
	Value         int    `json:"ratingValue"`
	ReviewText    string `json:"reviewText,omitempty"`
	SpoilerTagged bool   `json:"spoilerTagged"`
}

func (r CreateRatingRequest) Validate() error {
	if r.MovieID <= 0 {
		return fmt.Errorf("%w: movie id is required", shared.ErrInvalidInput)
	}
	return validateRating(r.Value, r.ReviewText)
}

// UpdateRatingRequest is the body of PUT /ratings/{id}.
type UpdateRatingRequest struct {
	Value         int    `json:"ratingValue"`
	ReviewText    string `json:"reviewText,omitempty"`
	SpoilerTagged bool   `json:"spoilerTagged"`
}

func (r UpdateRatingRequest) Validate() error {
	return validateRating(r.Value, r.ReviewText)
}

func validateRating(value int, review string) error {
	if value < MinRatingValue || value > MaxRatingValue {
		return fmt.Errorf("%w: rating must be between %d and %d", shared.ErrInvalidInput, MinRatingValue, MaxRatingValue)
	}
	if utf8.RuneCountInString(review) > MaxReviewLength {
		return fmt.Errorf("%w: review must be at most %d characters", shared.ErrInvalidInput, MaxReviewLength)
	}
	return nil
}
