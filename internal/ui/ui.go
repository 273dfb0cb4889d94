package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/roamly/internal/actions"
	"github.com/desertthunder/roamly/internal/guard"
	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/session"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	LoginView
	BrowseView
	DetailView
	RateView
	WatchlistsView
	WatchlistView
	ChatView
	AdminUsersView
	BanView
)

func (v ViewState) String() string {
	switch v {
	case LoadingView:
		return "loading"
	case LoginView:
		return "login"
	case BrowseView:
		return "browse"
	case DetailView:
		return "detail"
	case RateView:
		return "rate"
	case WatchlistsView:
		return "watchlists"
	case WatchlistView:
		return "watchlist"
	case ChatView:
		return "chat"
	case AdminUsersView:
		return "admin users"
	case BanView:
		return "ban"
	default:
		return "unknown"
	}
}

// Requirement is the guard requirement for entering the view.
func (v ViewState) Requirement() guard.Requirement {
	switch v {
	case LoadingView, LoginView, BrowseView, DetailView:
		return guard.Public
	case AdminUsersView, BanView:
		return guard.Admin
	default:
		return guard.Authenticated
	}
}

// chatLine is one exchange shown in the chat view.
type chatLine struct {
	question string
	answer   *models.ChatResponse
}

// Opts configures [NewModel].
type Opts struct {
	Session *session.Store
	Actions *actions.Actions
	Notes   *session.Recorder // must also be the notifier of Session and Actions
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session *session.Store
	actions *actions.Actions
	notes   *session.Recorder

	view    ViewState
	pending ViewState
	width   int
	height  int
	help    help.Model
	keys    keyMap

	movies  list.Model
	page    *models.Page[models.Movie]
	pageNum int

	detail   *models.MovieDetails
	myRating *models.Rating

	rateValue  textinput.Model
	rateReview textinput.Model

	username textinput.Model
	password textinput.Model

	watchlists      list.Model
	watchlist       *models.WatchlistDetail
	watchlistCursor int
	qr              map[int64]bool

	chat       *actions.Conversation
	chatInput  textinput.Model
	transcript []chatLine

	users     list.Model
	banReason textinput.Model
	banTarget *models.User
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	if opts.Notes == nil {
		opts.Notes = &session.Recorder{}
	}
	m := &Model{
		ctx:        ctx,
		session:    opts.Session,
		actions:    opts.Actions,
		notes:      opts.Notes,
		view:       LoadingView,
		pending:    BrowseView,
		help:       help.New(),
		keys:       newKeyMap(),
		movies:     newList("Movies"),
		watchlists: newList("My watchlists"),
		users:      newList("Users"),
		qr:         make(map[int64]bool),
		chat:       opts.Actions.NewConversation(),
		username:   newInput("username or email", false),
		password:   newInput("password", true),
		rateValue:  newInput("1-10", false),
		rateReview: newInput("review (optional)", false),
		chatInput:  newInput("ask for a recommendation", false),
		banReason:  newInput("reason", false),
	}
	m.rateValue.CharLimit = 2
	m.rateReview.CharLimit = models.MaxReviewLength
	return m
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
	}
	return ti
}

// State returns the view currently shown.
func (m *Model) State() ViewState { return m.view }

// Init hydrates the session; navigation starts once it resolves.
func (m *Model) Init() tea.Cmd {
	return m.hydrate()
}

// navigate moves to target through the guard.
func (m *Model) navigate(target ViewState) tea.Cmd {
	switch guard.Evaluate(m.session.Snapshot(), target.Requirement()) {
	case guard.Wait:
		m.pending = target
		m.view = LoadingView
		return nil
	case guard.RedirectLogin:
		m.pending = target
		return m.showLogin()
	case guard.RedirectHome:
		m.notes.Notify(session.Error("Admin access required"))
		target = BrowseView
	}
	m.view = target
	return m.enter(target)
}

func (m *Model) enter(v ViewState) tea.Cmd {
	switch v {
	case BrowseView:
		if m.page == nil {
			return m.fetchMovies(m.pageNum)
		}
	case WatchlistsView:
		return m.fetchWatchlists()
	case AdminUsersView:
		return m.fetchUsers()
	case ChatView:
		m.chatInput.Reset()
		return m.chatInput.Focus()
	case RateView:
		m.rateValue.Reset()
		m.rateReview.Reset()
		if m.myRating != nil {
			m.rateValue.SetValue(fmt.Sprint(m.myRating.Value))
			m.rateReview.SetValue(m.myRating.ReviewText)
		}
		m.rateReview.Blur()
		return m.rateValue.Focus()
	case BanView:
		m.banReason.Reset()
		return m.banReason.Focus()
	}
	return nil
}

func (m *Model) showLogin() tea.Cmd {
	m.view = LoginView
	m.username.Reset()
	m.password.Reset()
	m.password.Blur()
	return m.username.Focus()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.movies, &m.watchlists, &m.users} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, m.handleKey(msg)

	case hydratedMsg:
		return m, m.navigate(m.pending)

	case loginResultMsg:
		if !msg.ok {
			m.password.Reset()
			return m, nil
		}
		target := m.pending
		m.pending = BrowseView
		m.page = nil
		return m, m.navigate(target)

	case loggedOutMsg:
		m.chat.Reset()
		m.transcript = nil
		m.myRating = nil
		m.watchlist = nil
		return m, m.navigate(BrowseView)

	case moviesFetchedMsg:
		if msg.err != nil {
			m.actions.Fail(msg.err, actions.MsgLoadMoviesFailed)
			return m, nil
		}
		m.page = msg.page
		m.pageNum = msg.page.Number
		m.movies.Title = fmt.Sprintf("Movies · page %d of %d", msg.page.Number+1, max(msg.page.TotalPages, 1))
		return m, m.movies.SetItems(movieItems(msg.page.Content))

	case detailFetchedMsg:
		if msg.err != nil {
			m.actions.Fail(msg.err, actions.MsgLoadMovieFailed)
			return m, nil
		}
		m.detail = msg.details
		m.myRating = msg.myRating
		return m, m.navigate(DetailView)

	case ratingSavedMsg:
		if msg.err != nil {
			return m, nil
		}
		m.myRating = msg.rating
		m.view = DetailView
		return m, nil

	case watchlistsFetchedMsg:
		if msg.err != nil {
			m.actions.Fail(msg.err, actions.MsgLoadWatchlistsFailed)
			return m, nil
		}
		return m, m.watchlists.SetItems(watchlistItems(msg.watchlists))

	case watchlistFetchedMsg:
		if msg.err != nil {
			m.actions.Fail(msg.err, actions.MsgLoadWatchlistFailed)
			return m, nil
		}
		m.watchlist = msg.watchlist
		if m.watchlistCursor >= len(msg.watchlist.Movies) {
			m.watchlistCursor = max(len(msg.watchlist.Movies)-1, 0)
		}
		return m, m.navigate(WatchlistView)

	case qrFetchedMsg:
		m.qr[msg.watchlistID] = msg.available
		return m, nil

	case chatAnsweredMsg:
		line := chatLine{question: msg.question}
		if msg.err == nil {
			line.answer = msg.answer
		}
		m.transcript = append(m.transcript, line)
		return m, nil

	case usersFetchedMsg:
		if msg.err != nil {
			m.actions.Fail(msg.err, actions.MsgLoadUsersFailed)
			return m, nil
		}
		return m, m.users.SetItems(userItems(msg.page.Content))

	case actionDoneMsg:
		if msg.err != nil && m.view == BanView {
			return m, nil
		}
		return m, m.reload()
	}

	return m.updateLists(msg)
}

// reload refreshes the data behind the current view after a mutation.
func (m *Model) reload() tea.Cmd {
	switch m.view {
	case WatchlistView:
		if m.watchlist != nil {
			return m.fetchWatchlist(m.watchlist.ID)
		}
	case AdminUsersView, BanView:
		m.view = AdminUsersView
		return m.fetchUsers()
	}
	return nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case BrowseView:
		m.movies, cmd = m.movies.Update(msg)
	case WatchlistsView:
		m.watchlists, cmd = m.watchlists.Update(msg)
	case AdminUsersView:
		m.users, cmd = m.users.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch m.view {
	case LoadingView:
		if key.Matches(msg, m.keys.quit) {
			return tea.Quit
		}
	case LoginView:
		return m.handleLoginKeys(msg)
	case BrowseView:
		return m.handleBrowseKeys(msg)
	case DetailView:
		return m.handleDetailKeys(msg)
	case RateView:
		return m.handleRateKeys(msg)
	case WatchlistsView:
		return m.handleWatchlistsKeys(msg)
	case WatchlistView:
		return m.handleWatchlistKeys(msg)
	case ChatView:
		return m.handleChatKeys(msg)
	case AdminUsersView:
		return m.handleUsersKeys(msg)
	case BanView:
		return m.handleBanKeys(msg)
	}
	return nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.pending = BrowseView
		return m.navigate(BrowseView)
	case key.Matches(msg, m.keys.tab):
		return m.toggleFocus(&m.username, &m.password)
	case key.Matches(msg, m.keys.enter):
		if m.username.Focused() {
			return m.toggleFocus(&m.username, &m.password)
		}
		return m.submitLogin()
	}
	return m.updateFocused(msg, &m.username, &m.password)
}

func (m *Model) handleBrowseKeys(msg tea.KeyMsg) tea.Cmd {
	if m.movies.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.movies, cmd = m.movies.Update(msg)
		return cmd
	}

	authed := m.session.Snapshot().IsAuthenticated()
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.movies.SelectedItem().(movieItem); ok {
			return m.fetchDetail(it.movie.ID)
		}
		return nil
	case key.Matches(msg, m.keys.next):
		if m.page.HasNext() {
			return m.fetchMovies(m.pageNum + 1)
		}
		return nil
	case key.Matches(msg, m.keys.prev):
		if m.pageNum > 0 {
			return m.fetchMovies(m.pageNum - 1)
		}
		return nil
	case key.Matches(msg, m.keys.watchlists):
		return m.navigate(WatchlistsView)
	case key.Matches(msg, m.keys.chat):
		return m.navigate(ChatView)
	case key.Matches(msg, m.keys.admin):
		return m.navigate(AdminUsersView)
	case key.Matches(msg, m.keys.login) && !authed:
		m.pending = BrowseView
		return m.showLogin()
	case key.Matches(msg, m.keys.logout) && authed:
		return m.logout()
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		return m.navigate(BrowseView)
	case key.Matches(msg, m.keys.rate):
		return m.navigate(RateView)
	case key.Matches(msg, m.keys.trailer):
		return m.openTrailer()
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	}
	return nil
}

func (m *Model) handleRateKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = DetailView
		return nil
	case key.Matches(msg, m.keys.tab):
		return m.toggleFocus(&m.rateValue, &m.rateReview)
	case key.Matches(msg, m.keys.enter):
		return m.submitRating()
	}
	return m.updateFocused(msg, &m.rateValue, &m.rateReview)
}

func (m *Model) handleWatchlistsKeys(msg tea.KeyMsg) tea.Cmd {
	if m.watchlists.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.watchlists, cmd = m.watchlists.Update(msg)
		return cmd
	}
	switch {
	case key.Matches(msg, m.keys.back):
		return m.navigate(BrowseView)
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.watchlists.SelectedItem().(watchlistItem); ok {
			m.watchlistCursor = 0
			return m.fetchWatchlist(it.watchlist.ID)
		}
		return nil
	}
	var cmd tea.Cmd
	m.watchlists, cmd = m.watchlists.Update(msg)
	return cmd
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) tea.Cmd {
	if m.watchlist == nil {
		return m.navigate(WatchlistsView)
	}
	switch {
	case key.Matches(msg, m.keys.back):
		return m.navigate(WatchlistsView)
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.up):
		if m.watchlistCursor > 0 {
			m.watchlistCursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.watchlistCursor < len(m.watchlist.Movies)-1 {
			m.watchlistCursor++
		}
	case key.Matches(msg, m.keys.qr):
		return m.checkQRCode(m.watchlist.ID)
	case key.Matches(msg, m.keys.remove):
		if len(m.watchlist.Movies) == 0 {
			return nil
		}
		return m.removeMovie(m.watchlist, m.watchlist.Movies[m.watchlistCursor].ID)
	case key.Matches(msg, m.keys.enter):
		if len(m.watchlist.Movies) > 0 {
			return m.fetchDetail(m.watchlist.Movies[m.watchlistCursor].ID)
		}
	}
	return nil
}

func (m *Model) handleChatKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.chatInput.Blur()
		return m.navigate(BrowseView)
	case key.Matches(msg, m.keys.reset):
		m.chat.Reset()
		m.transcript = nil
		return nil
	case key.Matches(msg, m.keys.enter):
		q := strings.TrimSpace(m.chatInput.Value())
		if q == "" {
			return nil
		}
		m.chatInput.Reset()
		return m.ask(q)
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return cmd
}

func (m *Model) handleUsersKeys(msg tea.KeyMsg) tea.Cmd {
	if m.users.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.users, cmd = m.users.Update(msg)
		return cmd
	}
	it, selected := m.users.SelectedItem().(userItem)
	switch {
	case key.Matches(msg, m.keys.back):
		return m.navigate(BrowseView)
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.ban) && selected:
		u := it.user
		m.banTarget = &u
		return m.navigate(BanView)
	case key.Matches(msg, m.keys.unban) && selected:
		return m.unbanUser(it.user.ID)
	}
	var cmd tea.Cmd
	m.users, cmd = m.users.Update(msg)
	return cmd
}

func (m *Model) handleBanKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = AdminUsersView
		return nil
	case key.Matches(msg, m.keys.enter):
		if m.banTarget == nil {
			return nil
		}
		return m.banUser(m.banTarget.ID, strings.TrimSpace(m.banReason.Value()))
	}
	var cmd tea.Cmd
	m.banReason, cmd = m.banReason.Update(msg)
	return cmd
}

func (m *Model) toggleFocus(a, b *textinput.Model) tea.Cmd {
	if a.Focused() {
		a.Blur()
		return b.Focus()
	}
	b.Blur()
	return a.Focus()
}

func (m *Model) updateFocused(msg tea.Msg, inputs ...*textinput.Model) tea.Cmd {
	for _, in := range inputs {
		if in.Focused() {
			var cmd tea.Cmd
			*in, cmd = in.Update(msg)
			return cmd
		}
	}
	return nil
}
