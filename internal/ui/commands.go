package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

const (
	moviePageSize = 20
	userPageSize  = 20
)

func (m *Model) hydrate() tea.Cmd {
	return func() tea.Msg {
		m.session.Hydrate(m.ctx)
		return hydratedMsg{}
	}
}

func (m *Model) submitLogin() tea.Cmd {
	req := models.LoginRequest{
		UsernameOrEmail: strings.TrimSpace(m.username.Value()),
		Password:        m.password.Value(),
	}
	return func() tea.Msg {
		return loginResultMsg{ok: m.session.Login(m.ctx, req)}
	}
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.session.Logout(m.ctx)
		return loggedOutMsg{}
	}
}

func (m *Model) fetchMovies(page int) tea.Cmd {
	return func() tea.Msg {
		p, err := m.actions.Client().Movies.List(m.ctx, page, moviePageSize, "")
		return moviesFetchedMsg{page: p, err: err}
	}
}

func (m *Model) fetchDetail(id int64) tea.Cmd {
	authed := m.session.Snapshot().IsAuthenticated()
	return func() tea.Msg {
		client := m.actions.Client()
		details, err := client.Movies.Details(m.ctx, id)
		if err != nil {
			return detailFetchedMsg{err: err}
		}
		var mine *models.Rating
		if authed {
			mine, _ = client.Ratings.MyRatingForMovie(m.ctx, id)
		}
		return detailFetchedMsg{details: details, myRating: mine}
	}
}

func (m *Model) submitRating() tea.Cmd {
	if m.detail == nil {
		return nil
	}
	movieID := m.detail.ID
	value, _ := strconv.Atoi(strings.TrimSpace(m.rateValue.Value()))
	review := m.rateReview.Value()
	return func() tea.Msg {
		r, err := m.actions.SubmitRating(m.ctx, movieID, value, review, false)
		return ratingSavedMsg{rating: r, err: err}
	}
}

func (m *Model) openTrailer() tea.Cmd {
	if m.detail == nil {
		return nil
	}
	url := m.detail.TrailerURL
	return func() tea.Msg {
		if url == "" {
			return actionDoneMsg{err: m.actions.Fail(shared.ErrInvalidInput, "No trailer available")}
		}
		if err := shared.OpenBrowser(url); err != nil {
			return actionDoneMsg{err: m.actions.Fail(err, "Failed to open trailer")}
		}
		return nil
	}
}

func (m *Model) fetchWatchlists() tea.Cmd {
	return func() tea.Msg {
		lists, err := m.actions.Client().Watchlists.Mine(m.ctx)
		return watchlistsFetchedMsg{watchlists: lists, err: err}
	}
}

func (m *Model) fetchWatchlist(id int64) tea.Cmd {
	return func() tea.Msg {
		w, err := m.actions.Client().Watchlists.Get(m.ctx, id)
		return watchlistFetchedMsg{watchlist: w, err: err}
	}
}

func (m *Model) checkQRCode(id int64) tea.Cmd {
	return func() tea.Msg {
		return qrFetchedMsg{watchlistID: id, available: m.actions.QRCode(m.ctx, id) != ""}
	}
}

func (m *Model) removeMovie(w *models.WatchlistDetail, movieID int64) tea.Cmd {
	user := m.session.Snapshot().User
	return func() tea.Msg {
		return actionDoneMsg{err: m.actions.RemoveFromWatchlist(m.ctx, w, user, movieID)}
	}
}

func (m *Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.chat.Ask(m.ctx, question)
		return chatAnsweredMsg{question: question, answer: resp, err: err}
	}
}

func (m *Model) fetchUsers() tea.Cmd {
	return func() tea.Msg {
		p, err := m.actions.Client().Admin.Users(m.ctx, 0, userPageSize)
		return usersFetchedMsg{page: p, err: err}
	}
}

func (m *Model) banUser(id int64, reason string) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.actions.BanUser(m.ctx, id, reason)}
	}
}

func (m *Model) unbanUser(id int64) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{err: m.actions.UnbanUser(m.ctx, id)}
	}
}
