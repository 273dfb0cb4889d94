package models

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/roamly/internal/shared"
)

// Validator is implemented by request bodies that can be checked before sending.
type Validator interface {
	Validate() error // Validate reports the first client-side rule the value breaks
}

// Envelope is the wrapper every API response carries.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Last          bool  `json:"last"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// HasNext reports whether another page follows this one.
func (p *Page[T]) HasNext() bool {
	return p != nil && !p.Last && p.Number+1 < p.TotalPages
}

// CredentialPair holds the opaque access and refresh tokens issued by the API.
type CredentialPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether the pair carries an access token.
func (c CredentialPair) Valid() bool {
	return c.AccessToken != ""
}

// AuthResponse is the payload of login, register and refresh.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	User         *User  `json:"user"`
}

// Pair extracts the credential pair.
func (a *AuthResponse) Pair() CredentialPair {
	if a == nil {
		return CredentialPair{}
	}
	return CredentialPair{AccessToken: a.AccessToken, RefreshToken: a.RefreshToken}
}

// Validate checks that the response carries an access token and a user.
func (a *AuthResponse) Validate() error {
	if a == nil || a.AccessToken == "" {
		return fmt.Errorf("%w: auth response has no access token", shared.ErrMalformedResponse)
	}
	if a.User == nil {
		return fmt.Errorf("%w: auth response has no user", shared.ErrMalformedResponse)
	}
	return nil
}

// Analytics is the admin overview.
type Analytics struct {
	TotalUsers      int64   `json:"totalUsers"`
	TotalMovies     int64   `json:"totalMovies"`
	TotalRatings    int64   `json:"totalRatings"`
	TotalWatchlists int64   `json:"totalWatchlists"`
	AverageRating   float64 `json:"averageRating"`
}

// ExternalSearchResult is a page of raw external catalog search results.
//
// Results are kept as loosely typed maps; [ExternalMovie] reads the fields views need.
type ExternalSearchResult struct {
	Results      []map[string]any `json:"results"`
	Page         int              `json:"page"`
	TotalPages   int              `json:"totalPages"`
	TotalResults int              `json:"totalResults"`
}

// ExternalMovie is a typed view over one external search result.
type ExternalMovie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
}

// Movies converts the raw results to [ExternalMovie] values, skipping entries without an id.
func (r *ExternalSearchResult) Movies() []ExternalMovie {
	if r == nil {
		return nil
	}
	movies := make([]ExternalMovie, 0, len(r.Results))
	for _, raw := range r.Results {
		b, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		var m ExternalMovie
		if err := json.Unmarshal(b, &m); err != nil || m.ID == 0 {
			continue
		}
		movies = append(movies, m)
	}
	return movies
}
