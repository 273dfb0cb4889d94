package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/roamly/internal/shared"
)

const (
	MaxWatchlistNameLength        = 100
	MaxWatchlistDescriptionLength = 500
)

// Watchlist is the summary form returned by list endpoints.
type Watchlist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
	MovieCount  int    `json:"movieCount"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// WatchlistDetail is a watchlist with its movies and owner.
type WatchlistDetail struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	IsPublic    bool    `json:"isPublic"`
	Movies      []Movie `json:"movies"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UserID      int64   `json:"userId,omitempty"`
	Username    string  `json:"username,omitempty"`
}

// OwnedBy reports whether u owns the watchlist.
func (w *WatchlistDetail) OwnedBy(u *User) bool {
	return w != nil && u != nil && w.UserID != 0 && w.UserID == u.ID
}

// Contains reports whether the movie is already in the watchlist.
func (w *WatchlistDetail) Contains(movieID int64) bool {
	if w == nil {
		return false
	}
	for _, m := range w.Movies {
		if m.ID == movieID {
			return true
		}
	}
	return false
}

// WatchlistRequest is the create/update body for a watchlist.
type WatchlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
}

type (
	CreateWatchlistRequest = WatchlistRequest
	UpdateWatchlistRequest = WatchlistRequest
)

func (r WatchlistRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return fmt.Errorf("%w: watchlist name is required", shared.ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > MaxWatchlistNameLength {
		return fmt.Errorf("%w: watchlist name must be at most %d characters", shared.ErrInvalidInput, MaxWatchlistNameLength)
	}
	if utf8.RuneCountInString(r.Description) > MaxWatchlistDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", shared.ErrInvalidInput, MaxWatchlistDescriptionLength)
	}
	return nil
}
