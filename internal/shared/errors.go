package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("admin access required")
	ErrSessionLoading   = fmt.Errorf("session is still loading")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMalformedResponse  = fmt.Errorf("malformed response envelope")
	ErrWatchlistNotFound  = fmt.Errorf("watchlist not found")
	ErrQRCodeUnavailable  = fmt.Errorf("QR code generation is not available for this watchlist")

	// Storage errors
	ErrStorage = fmt.Errorf("local storage failure")

	// Input validation errors
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrPasswordMismatch = fmt.Errorf("passwords do not match")
	ErrMissingArgument  = fmt.Errorf("missing required argument")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrInvalidFlag      = fmt.Errorf("invalid flag value")
)
