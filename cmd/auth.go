package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/models"
	"github.com/desertthunder/roamly/internal/shared"
)

// AuthLogin signs in and stores the returned tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.String("username"))
	var err error
	if username == "" {
		if username, err = r.prompt("Username or email"); err != nil {
			return err
		}
	}
	password := cmd.String("password")
	if password == "" {
		if password, err = r.prompt("Password"); err != nil {
			return err
		}
	}

	r.logger.Debug("logging in", "user", username)
	if !r.session.Login(ctx, models.LoginRequest{UsernameOrEmail: username, Password: password}) {
		return shared.ErrAuthFailed
	}

	if u := r.session.Snapshot().User; u != nil {
		return r.writePlain("Signed in as %s (%s)\n", u.DisplayName(), u.Role)
	}
	return nil
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	req := models.RegisterRequest{
		Username:        strings.TrimSpace(cmd.String("username")),
		Email:           strings.TrimSpace(cmd.String("email")),
		Password:        cmd.String("password"),
		ConfirmPassword: cmd.String("confirm"),
		FirstName:       cmd.String("first-name"),
		LastName:        cmd.String("last-name"),
	}

	var err error
	if req.Password == "" {
		if req.Password, err = r.prompt("Password"); err != nil {
			return err
		}
		if req.ConfirmPassword, err = r.prompt("Confirm password"); err != nil {
			return err
		}
	}

	if !r.session.Register(ctx, req) {
		return shared.ErrAuthFailed
	}
	return nil
}

// AuthLogout signs out. The local tokens are cleared even when the server call fails.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout(ctx)
	return nil
}

// AuthStatus hydrates the session from the stored token and reports the user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.session.Hydrate(ctx)
	snap := r.session.Snapshot()

	status := struct {
		Authenticated bool         `json:"authenticated"`
		Admin         bool         `json:"admin"`
		User          *models.User `json:"user,omitempty"`
		API           string       `json:"api"`
	}{
		Authenticated: snap.IsAuthenticated(),
		Admin:         snap.IsAdmin(),
		User:          snap.User,
		API:           r.client.BaseURL(),
	}

	return r.emit(cmd, status, func() error {
		r.writePlain("API: %s\n", status.API)
		if !status.Authenticated {
			return r.writePlain("Authentication: ✗ Not signed in\n")
		}
		r.writePlain("Authentication: ✓ %s <%s>\n", snap.User.DisplayName(), snap.User.Email)
		r.writePlain("Role: %s\n", snap.User.Role)
		if snap.User.Banned() {
			r.writePlain("Banned: %s\n", snap.User.BanReason)
		}
		return nil
	})
}

// AuthRefresh exchanges the stored refresh token for a new pair.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	return r.session.RefreshTokens(ctx)
}

// AuthImport lifts the bearer token out of a browser request copied as cURL.
//
// Only the access token is imported; without a refresh token the session ends when it expires.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var req *shared.CurlRequest
	var err error
	if curlFile != "" {
		req, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		req, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
	}

	token, ok := req.BearerToken()
	if !ok {
		return fmt.Errorf("%w: no bearer token in the Authorization header", shared.ErrInvalidInput)
	}
	if req.URL != "" && !strings.HasPrefix(req.URL, r.client.BaseURL()) {
		r.logger.Warn("request was sent to a different API", "url", req.URL, "api", r.client.BaseURL())
	}

	if err := r.tokens.Save(models.CredentialPair{AccessToken: token}); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	r.session.Hydrate(ctx)
	u := r.session.Snapshot().User
	if u == nil {
		return fmt.Errorf("%w: the imported token was rejected", shared.ErrAuthFailed)
	}
	return r.writePlain("✓ Token imported; signed in as %s\n", u.DisplayName())
}

// ProfileShow prints the signed-in user.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	u := r.session.Snapshot().User
	return r.emit(cmd, u, func() error {
		r.writePlainHeader(u.DisplayName())
		r.writePlain("Username: %s\n", u.Username)
		r.writePlain("Email:    %s\n", u.Email)
		r.writePlain("Role:     %s\n", u.Role)
		if len(u.FavoriteGenres) > 0 {
			r.writePlain("Genres:   %s\n", strings.Join(u.FavoriteGenres, ", "))
		}
		if u.CreatedAt != "" {
			r.writePlain("Joined:   %s\n", u.CreatedAt)
		}
		return nil
	})
}

// ProfileUpdate changes the fields given on the command line and keeps the rest.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	u := r.session.Snapshot().User
	req := models.UpdateProfileRequest{
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		ProfilePicture: u.ProfilePicture,
		FavoriteGenres: u.FavoriteGenres,
	}
	if cmd.IsSet("first-name") {
		req.FirstName = cmd.String("first-name")
	}
	if cmd.IsSet("last-name") {
		req.LastName = cmd.String("last-name")
	}
	if cmd.IsSet("picture") {
		req.ProfilePicture = cmd.String("picture")
	}
	if cmd.IsSet("genre") {
		req.FavoriteGenres = cmd.StringSlice("genre")
	}

	if !r.session.UpdateProfile(ctx, req) {
		return fmt.Errorf("%w: profile update failed", shared.ErrAPIRequest)
	}
	return nil
}
