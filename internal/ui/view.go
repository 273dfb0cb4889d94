package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// View renders the current view followed by the status bar.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoadingView:
		body = styles.help.Render("Loading session…")
	case LoginView:
		body = m.renderLogin()
	case BrowseView:
		body = m.movies.View()
	case DetailView:
		body = m.renderDetail()
	case RateView:
		body = m.renderRate()
	case WatchlistsView:
		body = m.watchlists.View()
	case WatchlistView:
		body = m.renderWatchlist()
	case ChatView:
		body = m.renderChat()
	case AdminUsersView:
		body = m.users.View()
	case BanView:
		body = m.renderBan()
	}
	return body + "\n\n" + m.renderStatus()
}

func (m *Model) renderStatus() string {
	var b strings.Builder
	if n, ok := m.notes.Last(); ok {
		b.WriteString(styles.notice(n))
		b.WriteString("\n")
	}
	if u := m.session.Snapshot().User; u != nil {
		b.WriteString(styles.help.Render("signed in as " + u.DisplayName()))
		b.WriteString("  ")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Log in to Roamly"))
	b.WriteString("\n")
	b.WriteString(styles.label.Render("Username") + "\n" + m.username.View() + "\n\n")
	b.WriteString(styles.label.Render("Password") + "\n" + m.password.View() + "\n\n")
	b.WriteString(styles.help.Render("tab: switch field • enter: submit • esc: cancel"))
	return b.String()
}

func (m *Model) renderDetail() string {
	d := m.detail
	if d == nil {
		return styles.help.Render("No movie selected.")
	}
	mv := d.Movie()

	var b strings.Builder
	b.WriteString(styles.title.Render(mv.Label()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "★ %.1f (%d votes) • %s\n", d.Rating, d.VoteCount, shared.FormatRuntime(d.Runtime))
	if len(d.Genres) > 0 {
		b.WriteString(strings.Join(d.Genres, ", ") + "\n")
	}
	if len(d.Directors) > 0 {
		b.WriteString(styles.label.Render("Directed by ") + strings.Join(d.Directors, ", ") + "\n")
	}
	if d.Description != "" {
		b.WriteString("\n" + d.Description + "\n")
	}
	if len(d.Cast) > 0 {
		names := make([]string, 0, min(len(d.Cast), 5))
		for _, a := range d.Cast[:min(len(d.Cast), 5)] {
			names = append(names, a.Name)
		}
		b.WriteString("\n" + styles.label.Render("Cast ") + strings.Join(names, ", ") + "\n")
	}
	byType := d.ProvidersByType()
	for _, kind := range slices.Sorted(maps.Keys(byType)) {
		providers := byType[kind]
		names := make([]string, len(providers))
		for i, p := range providers {
			names[i] = p.ProviderName
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(strings.ToLower(kind)+":"), strings.Join(names, ", "))
	}

	b.WriteString("\n")
	switch {
	case m.myRating != nil:
		fmt.Fprintf(&b, "Your rating: %d/10", m.myRating.Value)
		if m.myRating.ReviewText != "" {
			b.WriteString(" • " + m.myRating.ReviewText)
		}
	case m.session.Snapshot().IsAuthenticated():
		b.WriteString(styles.help.Render("You haven't rated this movie yet."))
	default:
		b.WriteString(styles.help.Render("Log in to rate this movie."))
	}
	b.WriteString("\n\n" + styles.help.Render("r: rate • t: trailer • esc: back"))
	return b.String()
}

func (m *Model) renderRate() string {
	title := "Rate movie"
	if m.detail != nil {
		title = "Rate " + m.detail.Title
	}
	var b strings.Builder
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n%s\n\n", styles.label.Render(fmt.Sprintf("Score (%d-%d)", models.MinRatingValue, models.MaxRatingValue)), m.rateValue.View())
	fmt.Fprintf(&b, "%s\n%s\n\n", styles.label.Render("Review"), m.rateReview.View())
	b.WriteString(styles.help.Render("tab: switch field • enter: save • esc: cancel"))
	return b.String()
}

func (m *Model) renderWatchlist() string {
	w := m.watchlist
	if w == nil {
		return styles.help.Render("No watchlist selected.")
	}
	var b strings.Builder
	b.WriteString(styles.title.Render(w.Name))
	b.WriteString("\n")
	b.WriteString(shared.VisibilityString(w.IsPublic))
	if w.Description != "" {
		b.WriteString(" • " + w.Description)
	}
	b.WriteString("\n\n")

	if len(w.Movies) == 0 {
		b.WriteString(styles.help.Render("This watchlist is empty.") + "\n")
	}
	for i, mv := range w.Movies {
		cursor := "  "
		line := mv.Label()
		if i == m.watchlistCursor {
			cursor = "> "
			line = styles.label.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	if available, checked := m.qr[w.ID]; checked {
		b.WriteString("\n")
		if available {
			b.WriteString(styles.ok.Render("QR code available; export it with `roamly watchlists qr`."))
		} else {
			b.WriteString(styles.warn.Render("No QR code for this watchlist."))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + styles.help.Render("enter: open • x: remove • Q: qr code • esc: back"))
	return b.String()
}

func (m *Model) renderChat() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Ask Roamly"))
	b.WriteString("\n")
	if len(m.transcript) == 0 {
		b.WriteString(styles.help.Render("Ask for a recommendation to get started.") + "\n")
	}
	for _, line := range m.transcript {
		b.WriteString(styles.label.Render("you: ") + line.question + "\n")
		if line.answer == nil {
			b.WriteString(styles.err.Render("No answer.") + "\n\n")
			continue
		}
		b.WriteString(line.answer.Answer + "\n")
		for _, s := range line.answer.SuggestedMovies {
			fmt.Fprintf(&b, "  • %s", s.Title)
			if s.ReleaseYear > 0 {
				fmt.Fprintf(&b, " (%d)", s.ReleaseYear)
			}
			fmt.Fprintf(&b, " ★ %.1f\n", s.Rating)
		}
		b.WriteString("\n")
	}
	b.WriteString(m.chatInput.View() + "\n")
	b.WriteString(styles.help.Render("enter: ask • ctrl+n: new conversation • esc: back"))
	return b.String()
}

func (m *Model) renderBan() string {
	name := ""
	if m.banTarget != nil {
		name = m.banTarget.Username
	}
	var b strings.Builder
	b.WriteString(styles.title.Render("Ban " + name))
	b.WriteString("\n")
	b.WriteString(styles.label.Render("Reason") + "\n" + m.banReason.View() + "\n\n")
	b.WriteString(styles.help.Render("enter: ban • esc: cancel"))
	return b.String()
}
