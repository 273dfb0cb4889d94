// Package services is the HTTP client for the Roamly API.
//
// # Client
//
// [Client] exposes one field per resource group ([AuthService],
// [ProfileService], [MovieService], [RatingService], [WatchlistService],
// [AdminService], [ChatService]). Every method maps to exactly one request.
//
// When built with a [TokenSource], a round tripper reads the stored access
// token on every request and sets "Authorization: Bearer <token>" through
// [oauth2.Token.SetAuthHeader]. No token means no header. Each request also
// carries an X-Request-ID.
//
// # Responses
//
// Every response body is an {success, message, data} envelope; methods
// return the decoded data. There are no retries and no automatic token
// refresh.
//
// # Error Handling
//
// Non-2xx responses become [*APIError] carrying the status and the server's
// message. It matches the shared sentinels:
//   - [shared.ErrAPIRequest] : any non-2xx response
//   - [shared.ErrNotAuthenticated] : 401
//   - [shared.ErrForbidden] : 403
//   - [shared.ErrServiceUnavailable] : 5xx and transport failures
//
// Two absences are expected and are not errors: [RatingService.MyRatingForMovie]
// returns (nil, nil) on 404/401, and [WatchlistService.QRCode] returns ("", nil)
// on any failure.
package services
