// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a second view layer over the same session and actions the web front uses:
//  1. [BrowseView] : Page through the catalog
//  2. [DetailView] and [RateView] : Read a movie and submit a rating
//  3. [WatchlistsView] and [WatchlistView] : Manage the signed-in user's lists
//  4. [ChatView] : Ask the recommendation assistant
//  5. [AdminUsersView] and [BanView] : Moderate accounts
//
// Every view declares a [guard.Requirement]. Navigation goes through [guard.Evaluate]:
// a loading session parks on [LoadingView], an anonymous user lands on [LoginView]
// and resumes the requested view after signing in, and a non-admin is sent back to browsing.
//
// Commands call the API synchronously inside [tea.Cmd] closures and report back with typed messages.
// Notifications raised by the session and actions are read from a [session.Recorder] and shown in the status bar.
package ui
