package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = watchlistItem{}
	_ list.Item = userItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string       { return i.movie.Label() }
func (i movieItem) Description() string {
	desc := fmt.Sprintf("★ %.1f • %s", i.movie.Rating, shared.FormatRuntime(i.movie.Runtime))
	if len(i.movie.Genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(i.movie.Genres, ", "))
	}
	return desc
}

// watchlistItem wraps [models.Watchlist] to implement [list.Item].
type watchlistItem struct {
	watchlist models.Watchlist
}

func (i watchlistItem) FilterValue() string { return i.watchlist.Name }
func (i watchlistItem) Title() string       { return i.watchlist.Name }
func (i watchlistItem) Description() string {
	desc := fmt.Sprintf("%d movies • %s", i.watchlist.MovieCount, shared.VisibilityString(i.watchlist.IsPublic))
	if i.watchlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.watchlist.Description)
	}
	return desc
}

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user models.User
}

func (i userItem) FilterValue() string { return i.user.Username }
func (i userItem) Title() string       { return i.user.Username }
func (i userItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.user.Email, i.user.Role)
	if i.user.Banned() {
		desc += " • banned"
		if i.user.BanReason != "" {
			desc += ": " + i.user.BanReason
		}
	}
	return desc
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}

func watchlistItems(lists []models.Watchlist) []list.Item {
	items := make([]list.Item, len(lists))
	for i, w := range lists {
		items[i] = watchlistItem{watchlist: w}
	}
	return items
}

func userItems(users []models.User) []list.Item {
	items := make([]list.Item, len(users))
	for i, u := range users {
		items[i] = userItem{user: u}
	}
	return items
}
