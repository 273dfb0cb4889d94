package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/roamly/internal/shared"
)

// Movie is a catalog entry.
type Movie struct {
	ID           int64    `json:"id"`
	ExternalID   int64    `json:"tmdbId,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	Runtime      int      `json:"runtime,omitempty"` // minutes
	PosterPath   string   `json:"posterPath,omitempty"`
	BackdropPath string   `json:"backdropPath,omitempty"`
	TrailerURL   string   `json:"trailerUrl,omitempty"`
	Rating       float64  `json:"rating"`
	VoteCount    int      `json:"voteCount"`
	IsFeatured   bool     `json:"isFeatured"`
	Genres       []string `json:"genres,omitempty"`
	Cast         []string `json:"cast,omitempty"`
	Directors    []string `json:"directors,omitempty"`
}

// Year returns the release year, or 0 when the date is missing or malformed.
func (m *Movie) Year() int {
	if m == nil || len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Label renders "Title (Year)".
func (m *Movie) Label() string {
	if y := m.Year(); y > 0 {
		return fmt.Sprintf("%s (%d)", m.Title, y)
	}
	return m.Title
}

// Actor is a cast member in [MovieDetails].
type Actor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
	Order       int    `json:"order"`
}

// StreamingProvider is a place to watch a movie. Type is one of "flatrate", "rent" or "buy".
type StreamingProvider struct {
	ProviderName string `json:"providerName"`
	LogoPath     string `json:"logoPath,omitempty"`
	Type         string `json:"type"`
}

// MovieDetails extends a movie with cast, providers and a watch link.
type MovieDetails struct {
	ID                 int64               `json:"id"`
	ExternalID         int64               `json:"tmdbId,omitempty"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	ReleaseDate        string              `json:"releaseDate,omitempty"`
	Runtime            int                 `json:"runtime,omitempty"`
	PosterPath         string              `json:"posterPath,omitempty"`
	BackdropPath       string              `json:"backdropPath,omitempty"`
	TrailerURL         string              `json:"trailerUrl,omitempty"`
	Rating             float64             `json:"rating"`
	VoteCount          int                 `json:"voteCount"`
	IsFeatured         bool                `json:"isFeatured"`
	Genres             []string            `json:"genres,omitempty"`
	Directors          []string            `json:"directors,omitempty"`
	Cast               []Actor             `json:"cast,omitempty"`
	StreamingProviders []StreamingProvider `json:"streamingProviders,omitempty"`
	WatchLink          string              `json:"watchLink,omitempty"`
}

// Movie projects the details onto the plain [Movie] shape.
func (d *MovieDetails) Movie() Movie {
	cast := make([]string, 0, len(d.Cast))
	for _, a := range d.Cast {
		cast = append(cast, a.Name)
	}
	return Movie{
		ID: d.ID, ExternalID: d.ExternalID, Title: d.Title, Description: d.Description,
		ReleaseDate: d.ReleaseDate, Runtime: d.Runtime, PosterPath: d.PosterPath,
		BackdropPath: d.BackdropPath, TrailerURL: d.TrailerURL, Rating: d.Rating,
		VoteCount: d.VoteCount, IsFeatured: d.IsFeatured, Genres: d.Genres,
		Cast: cast, Directors: d.Directors,
	}
}

// ProvidersByType groups streaming providers by their offer type.
func (d *MovieDetails) ProvidersByType() map[string][]StreamingProvider {
	out := make(map[string][]StreamingProvider)
	for _, p := range d.StreamingProviders {
		out[p.Type] = append(out[p.Type], p)
	}
	return out
}

// PublicStats are the catalog counts shown on the home page.
type PublicStats struct {
	TotalMovies  int64 `json:"totalMovies"`
	TotalUsers   int64 `json:"totalUsers"`
	TotalRatings int64 `json:"totalRatings"`
}

// MovieRequest is the admin create/update body for a movie.
type MovieRequest struct {
	ExternalID   int64    `json:"tmdbId,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	Runtime      int      `json:"runtime,omitempty"`
	PosterPath   string   `json:"posterPath,omitempty"`
	BackdropPath string   `json:"backdropPath,omitempty"`
	TrailerURL   string   `json:"trailerUrl,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	Cast         []string `json:"cast,omitempty"`
	Directors    []string `json:"directors,omitempty"`
}

// CreateMovieRequest and UpdateMovieRequest share one shape.
type (
	CreateMovieRequest = MovieRequest
	UpdateMovieRequest = MovieRequest
)

func (r MovieRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: title is required", shared.ErrInvalidInput)
	}
	if r.Runtime < 0 {
		return fmt.Errorf("%w: runtime cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}
