package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// AuthService covers /auth.
type AuthService struct{ c *Client }

// Register creates an account and returns its tokens and user.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return s.authenticate(ctx, "/auth/register", req, true)
}

// Login exchanges credentials for tokens and the user.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return s.authenticate(ctx, "/auth/login", req, true)
}

// Refresh exchanges a refresh token for a new pair. Nothing calls it automatically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}
	resp, err := s.authenticate(ctx, "/auth/refresh", models.RefreshRequest{RefreshToken: refreshToken}, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	return resp, nil
}

// Logout invalidates the session server-side.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// authenticate posts body to path and checks the returned tokens; withUser also requires the user.
func (s *AuthService) authenticate(ctx context.Context, path string, body any, withUser bool) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := s.c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if withUser {
		if err := resp.Validate(); err != nil {
			return nil, err
		}
	} else if resp.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s response has no access token", shared.ErrMalformedResponse, path)
	}
	return &resp, nil
}

// ProfileService covers /profile.
type ProfileService struct{ c *Client }

// Get returns the user the stored token belongs to.
func (s *ProfileService) Get(ctx context.Context) (*models.User, error) {
	var user *models.User
	if err := s.c.do(ctx, http.MethodGet, "/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: profile response has no user", shared.ErrMalformedResponse)
	}
	return user, nil
}

// Update replaces the editable profile fields and returns the server's representation.
func (s *ProfileService) Update(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	var user *models.User
	if err := s.c.do(ctx, http.MethodPut, "/profile", nil, req, &user); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: profile response has no user", shared.ErrMalformedResponse)
	}
	return user, nil
}
