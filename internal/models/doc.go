// Package models defines the wire types exchanged with the Roamly API.
//
// The package contains three categories of types:
//
// 1. Envelopes: generic wrappers every response carries
//   - [Envelope] : the {success, message, data} wrapper
//   - [Page] : paginated list content
//
// 2. Resources: server representations rendered by the views
//   - [User] : account with [Role] and ban state
//   - [Movie], [MovieDetails], [PublicStats] : catalog entries and counts
//   - [Rating] : a user's score and review for a movie
//   - [Watchlist], [WatchlistDetail] : named movie collections
//   - [ChatResponse] : assistant answer with suggested movies
//   - [Analytics], [ExternalSearchResult] : admin views
//
// 3. Requests: bodies sent to the API, most with a Validate method that
// performs cheap client-side checks before a network call. The server
// remains the authority on every rule.
//
// Dates are kept as the strings the server sends (ISO-8601 without zone).
package models
