// Package session holds the current user for one client (one process, or one browser-like tab).
//
// A [Store] is built once at start-up and injected into every view. Its
// state is a nullable user plus a loading flag that is true until the first
// [Store.Hydrate] finishes. The operations are linear: hydrate, login,
// register, logout and profile update. Each ends in a notification.
//
// Network calls run outside the store's lock. Every state-replacing
// operation bumps a generation counter, and a hydration whose generation is
// no longer current discards its result, so a slow profile fetch cannot
// overwrite a logout or login that finished first.
package session

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
	"github.com/desertthunder/roamly/internal/tokens"
)

// User-visible messages.
const (
	MsgLoginSuccess    = "Login successful!"
	MsgLoginFailed     = "Login failed"
	MsgRegisterSuccess = "Registration successful!"
	MsgRegisterFailed  = "Registration failed"
	MsgLoggedOut       = "Logged out successfully"
	MsgProfileUpdated  = "Profile updated!"
	MsgProfileFailed   = "Failed to update profile"
	MsgTokensRefreshed = "Session refreshed"
	MsgRefreshFailed   = "Session refresh failed"
)

// AuthAPI is the subset of the auth endpoints the store drives. *services.AuthService satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
}

// ProfileAPI is the subset of the profile endpoints the store drives. *services.ProfileService satisfies it.
type ProfileAPI interface {
	Get(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error)
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	User    *models.User
	Loading bool
}

// IsAuthenticated reports whether a user is present.
func (s Snapshot) IsAuthenticated() bool { return IsAuthenticated(s) }

// IsAdmin reports whether the user has the admin role.
func (s Snapshot) IsAdmin() bool { return IsAdmin(s) }

func IsAuthenticated(s Snapshot) bool { return s.User != nil }

func IsAdmin(s Snapshot) bool { return s.User.IsAdmin() }

// Opts configures [New]. Auth, Profile and Tokens are required.
type Opts struct {
	Auth     AuthAPI
	Profile  ProfileAPI
	Tokens   tokens.Store
	Notifier Notifier
	Logger   *log.Logger
}

// Store owns the session state.
type Store struct {
	auth     AuthAPI
	profile  ProfileAPI
	tokens   tokens.Store
	notifier Notifier
	logger   *log.Logger

	mu      sync.RWMutex
	user    *models.User
	loading bool
	gen     uint64
}

// New builds a Store in the loading state.
func New(opts Opts) *Store {
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(Notification) {})
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Store{
		auth:     opts.Auth,
		profile:  opts.Profile,
		tokens:   opts.Tokens,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		loading:  true,
	}
}

// Snapshot returns a copy of the current state. The user is copied too.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{User: cloneUser(s.user), Loading: s.loading}
}

// Hydrate resolves the session from the stored access token. It never fails:
// with no token the user stays nil and no request is made; a rejected
// profile fetch clears the stored tokens. Only the initial hydration shows as
// loading; later calls keep the current user visible until they resolve.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	if _, ok := s.tokens.AccessToken(); !ok {
		s.mu.Lock()
		if gen == s.gen {
			s.user = nil
			s.loading = false
		}
		s.mu.Unlock()
		return
	}

	user, err := s.profile.Get(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding stale hydration", "generation", gen, "current", s.gen)
		return
	}
	if err != nil {
		s.logger.Debug("hydration failed, clearing stored tokens", "error", err)
		if clearErr := s.tokens.Clear(); clearErr != nil {
			s.logger.Error("failed to clear tokens", "error", clearErr)
		}
		s.user = nil
	} else {
		s.user = user
	}
	s.loading = false
}

// Login authenticates, stores the returned tokens and sets the user. The user is untouched on failure.
func (s *Store) Login(ctx context.Context, req models.LoginRequest) bool {
	if err := req.Validate(); err != nil {
		NotifyError(s.notifier, err, MsgLoginFailed)
		return false
	}
	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		s.logger.Debug("login failed", "error", err)
		NotifyError(s.notifier, err, MsgLoginFailed)
		return false
	}
	return s.establish(resp, MsgLoginSuccess, MsgLoginFailed)
}

// Register creates an account and signs in. Client-side validation failures are reported without a request.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) bool {
	if err := req.Validate(); err != nil {
		NotifyError(s.notifier, err, MsgRegisterFailed)
		return false
	}
	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		s.logger.Debug("registration failed", "error", err)
		NotifyError(s.notifier, err, MsgRegisterFailed)
		return false
	}
	return s.establish(resp, MsgRegisterSuccess, MsgRegisterFailed)
}

func (s *Store) establish(resp *models.AuthResponse, success, failure string) bool {
	if resp == nil {
		s.notifier.Notify(Error(failure))
		return false
	}

	s.mu.Lock()
	if err := s.tokens.Save(resp.Pair()); err != nil {
		s.mu.Unlock()
		s.logger.Error("failed to store credentials", "error", err)
		NotifyError(s.notifier, err, failure)
		return false
	}
	s.gen++
	s.user = cloneUser(resp.User)
	s.loading = false
	s.mu.Unlock()

	s.notifier.Notify(Success(success))
	return true
}

// Logout tells the server (best effort), then always clears the tokens and the user.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}

	s.mu.Lock()
	s.gen++
	if err := s.tokens.Clear(); err != nil {
		s.logger.Error("failed to clear tokens", "error", err)
	}
	s.user = nil
	s.loading = false
	s.mu.Unlock()

	s.notifier.Notify(Info(MsgLoggedOut))
}

// UpdateProfile replaces the user with the server's updated representation.
// A result that arrives after a login or logout is dropped.
func (s *Store) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) bool {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	user, err := s.profile.Update(ctx, req)
	if err != nil {
		s.logger.Debug("profile update failed", "error", err)
		s.notifier.Notify(Error(MsgProfileFailed))
		return false
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarding stale profile update", "generation", gen)
		return false
	}
	s.user = cloneUser(user)
	s.mu.Unlock()

	s.notifier.Notify(Success(MsgProfileUpdated))
	return true
}

// RefreshTokens exchanges the stored refresh token for a new pair. Nothing calls it automatically.
func (s *Store) RefreshTokens(ctx context.Context) error {
	refresh, ok := s.tokens.RefreshToken()
	if !ok {
		NotifyError(s.notifier, shared.ErrNoRefreshToken, MsgRefreshFailed)
		return shared.ErrNoRefreshToken
	}

	resp, err := s.auth.Refresh(ctx, refresh)
	if err != nil {
		NotifyError(s.notifier, err, MsgRefreshFailed)
		return err
	}

	pair := resp.Pair()
	if pair.RefreshToken == "" {
		pair.RefreshToken = refresh
	}

	s.mu.Lock()
	err = s.tokens.Save(pair)
	if err == nil && resp.User != nil {
		s.gen++
		s.user = cloneUser(resp.User)
		s.loading = false
	}
	s.mu.Unlock()

	if err != nil {
		NotifyError(s.notifier, err, MsgRefreshFailed)
		return err
	}
	s.notifier.Notify(Success(MsgTokensRefreshed))
	return nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	c.FavoriteGenres = append([]string(nil), u.FavoriteGenres...)
	if u.IsBanned != nil {
		b := *u.IsBanned
		c.IsBanned = &b
	}
	return &c
}
