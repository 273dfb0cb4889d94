// Package actions performs the user-triggered mutations shared by the CLI, the TUI and the web front.
//
// Each action calls the API, reports the outcome through a [session.Notifier]
// and returns the error to the caller. Messages prefer the server's text and
// fall back to a fixed phrase per action.
package actions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/services"
	"github.com/desertthunder/roamly/internal/session"
	"github.com/desertthunder/roamly/internal/shared"
)

// Messages shown for loads that fail. Views use these directly.
const (
	MsgLoadMoviesFailed     = "Failed to load movies"
	MsgLoadMovieFailed      = "Failed to load movie"
	MsgLoadWatchlistsFailed = "Failed to load watchlists"
	MsgLoadWatchlistFailed  = "Failed to load watchlist"
	MsgLoadUsersFailed      = "Failed to load users"
	MsgSearchFailed         = "Search failed"
	MsgChatFailed           = "Failed to get response. Please try again."
	MsgQRUnavailable        = "QR code generation is not available for this watchlist."
)

// Actions binds a client to a notifier.
type Actions struct {
	client *services.Client
	notify session.Notifier
	logger *log.Logger
}

// New creates an [Actions]. A nil logger discards.
func New(client *services.Client, notifier session.Notifier, logger *log.Logger) *Actions {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if notifier == nil {
		notifier = session.NotifierFunc(func(session.Notification) {})
	}
	return &Actions{client: client, notify: notifier, logger: logger}
}

// Client exposes the underlying client for read-only views.
func (a *Actions) Client() *services.Client { return a.client }

// Fail notifies err with fallback and returns err, for views reporting their own load failures.
func (a *Actions) Fail(err error, fallback string) error {
	a.logger.Debug(fallback, "error", err)
	session.NotifyError(a.notify, err, fallback)
	return err
}

func (a *Actions) ok(msg string) {
	a.notify.Notify(session.Success(msg))
}

func (a *Actions) reject(msg string) error {
	a.notify.Notify(session.Error(msg))
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, msg)
}

// SubmitRating creates the user's rating for a movie, or updates it when one exists.
func (a *Actions) SubmitRating(ctx context.Context, movieID int64, value int, review string, spoiler bool) (*models.Rating, error) {
	if value == 0 {
		return nil, a.reject("Please select a rating")
	}
	review = strings.TrimSpace(review)

	existing, err := a.client.Ratings.MyRatingForMovie(ctx, movieID)
	if err != nil {
		return nil, a.Fail(err, "Failed to submit rating")
	}

	if existing != nil {
		req := models.UpdateRatingRequest{Value: value, ReviewText: review, SpoilerTagged: spoiler}
		if err := req.Validate(); err != nil {
			return nil, a.Fail(err, "Failed to submit rating")
		}
		r, err := a.client.Ratings.Update(ctx, existing.ID, req)
		if err != nil {
			return nil, a.Fail(err, "Failed to submit rating")
		}
		a.ok("Rating updated!")
		return r, nil
	}

	req := models.CreateRatingRequest{MovieID: movieID, Value: value, ReviewText: review, SpoilerTagged: spoiler}
	if err := req.Validate(); err != nil {
		return nil, a.Fail(err, "Failed to submit rating")
	}
	r, err := a.client.Ratings.Create(ctx, req)
	if err != nil {
		return nil, a.Fail(err, "Failed to submit rating")
	}
	a.ok("Rating submitted!")
	return r, nil
}

func (a *Actions) DeleteRating(ctx context.Context, id int64) error {
	if err := a.client.Ratings.Delete(ctx, id); err != nil {
		return a.Fail(err, "Failed to delete rating")
	}
	a.ok("Rating deleted")
	return nil
}

func (a *Actions) CreateWatchlist(ctx context.Context, req models.CreateWatchlistRequest) (*models.Watchlist, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, a.reject("Please enter a name")
	}
	if err := req.Validate(); err != nil {
		return nil, a.Fail(err, "Failed to create watchlist")
	}
	w, err := a.client.Watchlists.Create(ctx, req)
	if err != nil {
		return nil, a.Fail(err, "Failed to create watchlist")
	}
	a.ok("Watchlist created!")
	return w, nil
}

func (a *Actions) UpdateWatchlist(ctx context.Context, id int64, req models.UpdateWatchlistRequest) (*models.Watchlist, error) {
	if err := req.Validate(); err != nil {
		return nil, a.Fail(err, "Failed to update watchlist")
	}
	w, err := a.client.Watchlists.Update(ctx, id, req)
	if err != nil {
		return nil, a.Fail(err, "Failed to update watchlist")
	}
	a.ok("Watchlist updated!")
	return w, nil
}

func (a *Actions) DeleteWatchlist(ctx context.Context, id int64) error {
	if err := a.client.Watchlists.Delete(ctx, id); err != nil {
		return a.Fail(err, "Failed to delete watchlist")
	}
	a.ok("Watchlist deleted!")
	return nil
}

func (a *Actions) AddToWatchlist(ctx context.Context, watchlistID, movieID int64) error {
	if err := a.client.Watchlists.AddMovie(ctx, watchlistID, movieID); err != nil {
		return a.Fail(err, "Failed to add to watchlist")
	}
	a.ok("Added to watchlist!")
	return nil
}

// RemoveFromWatchlist removes a movie after checking that user owns w.
// The check is advisory; the server enforces ownership regardless.
func (a *Actions) RemoveFromWatchlist(ctx context.Context, w *models.WatchlistDetail, user *models.User, movieID int64) error {
	if w.UserID != 0 && !w.OwnedBy(user) {
		a.notify.Notify(session.Error("You can only modify your own watchlists"))
		return shared.ErrForbidden
	}
	if err := a.client.Watchlists.RemoveMovie(ctx, w.ID, movieID); err != nil {
		return a.Fail(err, "Failed to remove movie")
	}
	a.ok("Movie removed from watchlist")
	return nil
}

// QRCode fetches a watchlist's QR data URL. An unavailable code is reported as info, never as an error.
func (a *Actions) QRCode(ctx context.Context, id int64) string {
	qr, _ := a.client.Watchlists.QRCode(ctx, id)
	if qr == "" {
		a.notify.Notify(session.Info(MsgQRUnavailable))
	}
	return qr
}

func (a *Actions) BanUser(ctx context.Context, id int64, reason string) error {
	req := models.BanRequest{Reason: reason}
	if err := req.Validate(); err != nil {
		return a.Fail(err, "Failed to ban user")
	}
	if err := a.client.Admin.Ban(ctx, id, reason); err != nil {
		return a.Fail(err, "Failed to ban user")
	}
	a.ok("User banned successfully")
	return nil
}

func (a *Actions) UnbanUser(ctx context.Context, id int64) error {
	if err := a.client.Admin.Unban(ctx, id); err != nil {
		return a.Fail(err, "Failed to unban user")
	}
	a.ok("User unbanned successfully")
	return nil
}

func (a *Actions) DeleteUser(ctx context.Context, id int64) error {
	if err := a.client.Admin.DeleteUser(ctx, id); err != nil {
		return a.Fail(err, "Failed to delete user")
	}
	a.ok("User deleted successfully")
	return nil
}

func (a *Actions) CreateMovie(ctx context.Context, req models.CreateMovieRequest) (*models.Movie, error) {
	if err := req.Validate(); err != nil {
		return nil, a.Fail(err, "Failed to create movie")
	}
	m, err := a.client.Admin.CreateMovie(ctx, req)
	if err != nil {
		return nil, a.Fail(err, "Failed to create movie")
	}
	a.ok("Movie created!")
	return m, nil
}

func (a *Actions) UpdateMovie(ctx context.Context, id int64, req models.UpdateMovieRequest) (*models.Movie, error) {
	if err := req.Validate(); err != nil {
		return nil, a.Fail(err, "Failed to update movie")
	}
	m, err := a.client.Admin.UpdateMovie(ctx, id, req)
	if err != nil {
		return nil, a.Fail(err, "Failed to update movie")
	}
	a.ok("Movie updated!")
	return m, nil
}

func (a *Actions) DeleteMovie(ctx context.Context, id int64) error {
	if err := a.client.Admin.DeleteMovie(ctx, id); err != nil {
		return a.Fail(err, "Failed to delete")
	}
	a.ok("Movie deleted")
	return nil
}

// ToggleFeatured flips the flag and reports the new state.
func (a *Actions) ToggleFeatured(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := a.client.Admin.ToggleFeatured(ctx, id)
	if err != nil {
		return nil, a.Fail(err, "Failed to update featured status")
	}
	if m != nil && m.IsFeatured {
		a.ok("Added to featured")
	} else {
		a.ok("Removed from featured")
	}
	return m, nil
}

func (a *Actions) SearchExternal(ctx context.Context, query string, page int) (*models.ExternalSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, a.reject("Please enter a search query")
	}
	res, err := a.client.Admin.SearchExternal(ctx, query, page)
	if err != nil {
		return nil, a.Fail(err, MsgSearchFailed)
	}
	return res, nil
}

func (a *Actions) ImportMovie(ctx context.Context, externalID int64) (*models.Movie, error) {
	m, err := a.client.Admin.Import(ctx, externalID)
	if err != nil {
		return nil, a.Fail(err, "Import failed")
	}
	a.ok("Movie imported successfully!")
	return m, nil
}

func (a *Actions) BulkImport(ctx context.Context, pages int) error {
	if err := a.client.Admin.BulkImport(ctx, pages); err != nil {
		return a.Fail(err, "Bulk import failed")
	}
	a.ok("Bulk import started!")
	return nil
}

// Conversation carries the chat conversation id between questions.
type Conversation struct {
	actions *Actions
	mu      sync.Mutex
	id      string
}

// NewConversation starts an empty conversation; the server assigns the id on the first answer.
func (a *Actions) NewConversation() *Conversation {
	return &Conversation{actions: a}
}

// ID returns the current conversation id, "" before the first answer.
func (c *Conversation) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Reset forgets the conversation id.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.id = ""
	c.mu.Unlock()
}

// Ask sends question within the conversation.
func (c *Conversation) Ask(ctx context.Context, question string) (*models.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.actions.client.Chat.Ask(ctx, question, c.id)
	if err != nil {
		return nil, c.actions.Fail(err, MsgChatFailed)
	}
	if resp.ConversationID != "" {
		c.id = resp.ConversationID
	}
	return resp, nil
}
