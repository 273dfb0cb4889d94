package models

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/desertthunder/roamly/internal/shared"
)

// Role is the user's authorization role.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// MinPasswordLength is the shortest password the register form accepts.
const MinPasswordLength = 6

// User is the server's representation of an account.
type User struct {
	ID             int64    `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName,omitempty"`
	LastName       string   `json:"lastName,omitempty"`
	Role           Role     `json:"role"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	FavoriteGenres []string `json:"favoriteGenres,omitempty"`
	IsBanned       *bool    `json:"isBanned,omitempty"`
	BanReason      string   `json:"banReason,omitempty"`
	CreatedAt      string   `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user has the ADMIN role. A nil user is not an admin.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Banned reports whether the server flagged the account as banned.
func (u *User) Banned() bool {
	return u != nil && u.IsBanned != nil && *u.IsBanned
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}
	return u.Username
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.UsernameOrEmail) == "" {
		return fmt.Errorf("%w: username or email is required", shared.ErrInvalidInput)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrInvalidInput)
	}
	return nil
}

// RegisterRequest is the body of POST /auth/register.
//
// ConfirmPassword is checked locally and never sent.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username is required", shared.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: a valid email is required", shared.ErrInvalidInput)
	}
	if r.ConfirmPassword != "" && r.Password != r.ConfirmPassword {
		return shared.ErrPasswordMismatch
	}
	if len(r.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest is the body of PUT /profile.
type UpdateProfileRequest struct {
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	FavoriteGenres []string `json:"favoriteGenres,omitempty"`
}

// BanRequest is the body of POST /admin/users/{id}/ban.
type BanRequest struct {
	Reason string `json:"reason"`
}

func (r BanRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return fmt.Errorf("%w: ban reason is required", shared.ErrInvalidInput)
	}
	return nil
}
