// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roamly/internal/guard"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func pageFlags(size int) []cli.Flag {
	return append(jsonFlags(),
		&cli.IntFlag{
			Name:  "page",
			Usage: "Zero-based page number",
		},
		&cli.IntFlag{
			Name:  "size",
			Usage: "Page size",
			Value: size,
		},
	)
}

func withFlags(base []cli.Flag, extra ...cli.Flag) []cli.Flag {
	return append(base, extra...)
}

// setupCommand creates the config file and the token database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml and initialize the token database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the signed-in session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with a username or email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username or email"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
				},
				Action: r.guarded(guard.Public, r.AuthLogin),
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (prompted when omitted)"},
					&cli.StringFlag{Name: "confirm", Usage: "Password confirmation"},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: r.guarded(guard.Public, r.AuthRegister),
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the stored tokens",
				Action: r.guarded(guard.Public, r.AuthLogout),
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Public, r.AuthStatus),
			},
			{
				Name:   "refresh",
				Usage:  "Exchange the stored refresh token for a new pair",
				Action: r.guarded(guard.Public, r.AuthRefresh),
			},
			{
				Name:  "import",
				Usage: "Import a bearer token from a browser request (Copy as cURL)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "curl", Usage: "cURL command from browser DevTools"},
					&cli.StringFlag{Name: "curl-file", Usage: "Path to .sh file containing the cURL command"},
				},
				Action: r.guarded(guard.Public, r.AuthImport),
			},
		},
	}
}

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Authenticated, r.ProfileShow),
			},
			{
				Name:  "update",
				Usage: "Update names, picture and favorite genres",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
					&cli.StringFlag{Name: "picture", Usage: "Profile picture URL"},
					&cli.StringSliceFlag{Name: "genre", Usage: "Favorite genre (repeatable)"},
				},
				Action: r.guarded(guard.Authenticated, r.ProfileUpdate),
			},
		},
	}
}

func moviesCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the catalog",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List movies",
				Flags:  withFlags(pageFlags(20), &cli.StringFlag{Name: "sort", Usage: "rating, title or releaseDate", Value: "rating"}),
				Action: r.guarded(guard.Public, r.MoviesList),
			},
			{
				Name:  "browse",
				Usage: "Browse movies by genre",
				Flags: withFlags(pageFlags(20),
					&cli.StringFlag{Name: "genre"},
					&cli.StringFlag{Name: "sort", Value: "rating"},
				),
				Action: r.guarded(guard.Public, r.MoviesBrowse),
			},
			{
				Name:      "get",
				Usage:     "Show one movie",
				Arguments: idArg,
				Flags:     jsonFlags(),
				Action:    r.guarded(guard.Public, r.MoviesGet),
			},
			{
				Name:      "details",
				Usage:     "Show cast, providers and trailer for a movie",
				Arguments: idArg,
				Flags:     jsonFlags(),
				Action:    r.guarded(guard.Public, r.MoviesDetails),
			},
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     pageFlags(20),
				Action:    r.guarded(guard.Public, r.MoviesSearch),
			},
			{
				Name:   "featured",
				Usage:  "List featured movies",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Public, r.MoviesFeatured),
			},
			{
				Name:   "popular",
				Usage:  "List popular movies",
				Flags:  withFlags(jsonFlags(), &cli.IntFlag{Name: "limit", Value: 10}),
				Action: r.guarded(guard.Public, r.MoviesPopular),
			},
			{
				Name:   "recommendations",
				Usage:  "List movies recommended for you",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Authenticated, r.MoviesRecommendations),
			},
			{
				Name:   "stats",
				Usage:  "Show catalog totals",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Public, r.MoviesStats),
			},
			{
				Name:      "trailer",
				Usage:     "Open a movie's trailer in the browser",
				Arguments: idArg,
				Action:    r.guarded(guard.Public, r.MoviesTrailer),
			},
		},
	}
}

func ratingsCommand(r *Runner) *cli.Command {
	reviewFlags := []cli.Flag{
		&cli.IntFlag{Name: "value", Usage: "Score from 1 to 10", Required: true},
		&cli.StringFlag{Name: "review", Usage: "Review text"},
		&cli.BoolFlag{Name: "spoiler", Usage: "Mark the review as containing spoilers"},
	}
	return &cli.Command{
		Name:  "ratings",
		Usage: "Rate movies and read reviews",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Rate a movie (updates your rating when one exists)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie"}},
				Flags:     withFlags(jsonFlags(), reviewFlags...),
				Action:    r.guarded(guard.Authenticated, r.RatingsCreate),
			},
			{
				Name:      "update",
				Usage:     "Update a rating by id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     withFlags(jsonFlags(), reviewFlags...),
				Action:    r.guarded(guard.Authenticated, r.RatingsUpdate),
			},
			{
				Name:      "delete",
				Usage:     "Delete a rating by id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.guarded(guard.Authenticated, r.RatingsDelete),
			},
			{
				Name:   "mine",
				Usage:  "List your ratings",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Authenticated, r.RatingsMine),
			},
			{
				Name:      "movie",
				Usage:     "List the ratings for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie"}},
				Flags:     pageFlags(10),
				Action:    r.guarded(guard.Public, r.RatingsForMovie),
			},
			{
				Name:      "my-rating",
				Usage:     "Show your rating for a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie"}},
				Flags:     jsonFlags(),
				Action:    r.guarded(guard.Authenticated, r.RatingsMyRating),
			},
		},
	}
}

func watchlistsCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}
	editFlags := []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}},
		&cli.BoolFlag{Name: "public", Usage: "Make the watchlist public"},
	}
	return &cli.Command{
		Name:    "watchlists",
		Aliases: []string{"wl"},
		Usage:   "Manage and discover watchlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your watchlists",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Authenticated, r.WatchlistsList),
			},
			{
				Name:      "get",
				Usage:     "Show one of your watchlists",
				Arguments: idArg,
				Flags:     jsonFlags(),
				Action:    r.guarded(guard.Authenticated, r.WatchlistsGet),
			},
			{
				Name:   "create",
				Usage:  "Create a watchlist",
				Flags:  withFlags(jsonFlags(), editFlags...),
				Action: r.guarded(guard.Authenticated, r.WatchlistsCreate),
			},
			{
				Name:      "update",
				Usage:     "Rename or describe a watchlist",
				Arguments: idArg,
				Flags:     withFlags(jsonFlags(), editFlags...),
				Action:    r.guarded(guard.Authenticated, r.WatchlistsUpdate),
			},
			{
				Name:      "delete",
				Usage:     "Delete a watchlist",
				Arguments: idArg,
				Action:    r.guarded(guard.Authenticated, r.WatchlistsDelete),
			},
			{
				Name:      "add",
				Usage:     "Add a movie to a watchlist",
				Arguments: idArg,
				Flags:     []cli.Flag{&cli.Int64Flag{Name: "movie", Required: true}},
				Action:    r.guarded(guard.Authenticated, r.WatchlistsAdd),
			},
			{
				Name:      "remove",
				Usage:     "Remove a movie from a watchlist",
				Arguments: idArg,
				Flags:     []cli.Flag{&cli.Int64Flag{Name: "movie", Required: true}},
				Action:    r.guarded(guard.Authenticated, r.WatchlistsRemove),
			},
			{
				Name:      "qr",
				Usage:     "Fetch a watchlist's QR code",
				Arguments: idArg,
				Flags: withFlags(jsonFlags(),
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the decoded PNG to this path"},
				),
				Action: r.guarded(guard.Authenticated, r.WatchlistsQR),
			},
			{
				Name:   "public",
				Usage:  "List public watchlists",
				Flags:  pageFlags(12),
				Action: r.guarded(guard.Public, r.WatchlistsPublic),
			},
			{
				Name:      "search",
				Usage:     "Search public watchlists",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     pageFlags(12),
				Action:    r.guarded(guard.Public, r.WatchlistsSearch),
			},
			{
				Name:   "popular",
				Usage:  "List popular public watchlists",
				Flags:  pageFlags(12),
				Action: r.guarded(guard.Public, r.WatchlistsPopular),
			},
			{
				Name:      "public-get",
				Usage:     "Show a public watchlist",
				Arguments: idArg,
				Flags:     jsonFlags(),
				Action:    r.guarded(guard.Public, r.WatchlistsPublicGet),
			},
			{
				Name:      "export",
				Usage:     "Export one watchlist to a file",
				Arguments: idArg,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, csv, markdown or txt", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory", Value: "."},
				},
				Action: r.guarded(guard.Authenticated, r.WatchlistsExport),
			},
			{
				Name:  "export-all",
				Usage: "Export all of your watchlists with a manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json, csv, markdown or txt", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (default: watchlists_export_{epoch})"},
					&cli.Int64SliceFlag{Name: "id", Usage: "Only export these watchlists (repeatable)"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers (default from config)"},
					&cli.Float64Flag{Name: "rate-limit", Usage: "API requests per second (default from config)"},
				},
				Action: r.guarded(guard.Authenticated, r.WatchlistsExportAll),
			},
		},
	}
}

func adminCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}
	movieFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "release-date", Usage: "YYYY-MM-DD"},
		&cli.IntFlag{Name: "runtime", Usage: "Minutes"},
		&cli.StringFlag{Name: "poster"},
		&cli.StringFlag{Name: "trailer"},
		&cli.StringSliceFlag{Name: "genre"},
		&cli.StringSliceFlag{Name: "cast"},
		&cli.StringSliceFlag{Name: "director"},
	}
	return &cli.Command{
		Name:  "admin",
		Usage: "Administration (admin accounts only)",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "Moderate accounts",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List users",
						Flags:  pageFlags(20),
						Action: r.guarded(guard.Admin, r.AdminUsersList),
					},
					{
						Name:      "get",
						Usage:     "Show one user",
						Arguments: idArg,
						Flags:     jsonFlags(),
						Action:    r.guarded(guard.Admin, r.AdminUsersGet),
					},
					{
						Name:      "ban",
						Usage:     "Ban a user",
						Arguments: idArg,
						Flags:     []cli.Flag{&cli.StringFlag{Name: "reason", Aliases: []string{"r"}, Required: true}},
						Action:    r.guarded(guard.Admin, r.AdminUsersBan),
					},
					{
						Name:      "unban",
						Usage:     "Lift a ban",
						Arguments: idArg,
						Action:    r.guarded(guard.Admin, r.AdminUsersUnban),
					},
					{
						Name:      "delete",
						Usage:     "Delete a user",
						Arguments: idArg,
						Action:    r.guarded(guard.Admin, r.AdminUsersDelete),
					},
				},
			},
			{
				Name:  "movies",
				Usage: "Edit the catalog",
				Commands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a movie",
						Flags:  withFlags(jsonFlags(), movieFlags...),
						Action: r.guarded(guard.Admin, r.AdminMoviesCreate),
					},
					{
						Name:      "update",
						Usage:     "Update a movie",
						Arguments: idArg,
						Flags:     withFlags(jsonFlags(), movieFlags...),
						Action:    r.guarded(guard.Admin, r.AdminMoviesUpdate),
					},
					{
						Name:      "delete",
						Usage:     "Delete a movie",
						Arguments: idArg,
						Action:    r.guarded(guard.Admin, r.AdminMoviesDelete),
					},
					{
						Name:      "feature",
						Usage:     "Toggle a movie's featured flag",
						Arguments: idArg,
						Action:    r.guarded(guard.Admin, r.AdminMoviesFeature),
					},
				},
			},
			{
				Name:  "tmdb",
				Usage: "Import from the external catalog",
				Commands: []*cli.Command{
					{
						Name:      "search",
						Usage:     "Search the external catalog",
						Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
						Flags:     withFlags(jsonFlags(), &cli.IntFlag{Name: "page", Value: 1}),
						Action:    r.guarded(guard.Admin, r.AdminTMDBSearch),
					},
					{
						Name:  "import",
						Usage: "Import one or more external ids",
						Flags: []cli.Flag{
							&cli.Int64SliceFlag{Name: "id", Usage: "External id (repeatable)", Required: true},
							&cli.IntFlag{Name: "workers", Usage: "Concurrent imports (default from config)"},
							&cli.Float64Flag{Name: "rate-limit", Usage: "Requests per second (default from config)"},
						},
						Action: r.guarded(guard.Admin, r.AdminTMDBImport),
					},
					{
						Name:   "bulk-import",
						Usage:  "Start a server-side bulk import of popular titles",
						Flags:  []cli.Flag{&cli.IntFlag{Name: "pages", Value: 1}},
						Action: r.guarded(guard.Admin, r.AdminTMDBBulkImport),
					},
				},
			},
			{
				Name:   "analytics",
				Usage:  "Show platform totals",
				Flags:  jsonFlags(),
				Action: r.guarded(guard.Admin, r.AdminAnalytics),
			},
		},
	}
}

func chatCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Ask the recommendation assistant",
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Ask one question",
				Arguments: []cli.Argument{&cli.StringArg{Name: "question"}},
				Flags: withFlags(jsonFlags(),
					&cli.StringFlag{Name: "conversation", Usage: "Continue a conversation by id"},
				),
				Action: r.guarded(guard.Authenticated, r.ChatAsk),
			},
			{
				Name:   "repl",
				Usage:  "Ask follow-up questions in one conversation",
				Action: r.guarded(guard.Authenticated, r.ChatREPL),
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal client",
		Action:  r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the local web front",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the front in the browser"},
		},
		Action: r.Serve,
	}
}
