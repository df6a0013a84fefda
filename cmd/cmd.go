// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{Name: "page", Usage: "Result page", Value: 1}
}

// setupCommand handles setup operations for the configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create config.toml if missing, initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "seed",
						Usage: "Create the demo accounts",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	remote := func() cli.Flag {
		return &cli.BoolFlag{
			Name:  "remote",
			Usage: "Authenticate against a running cineflix server instead of the local database",
		}
	}

	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account and session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (defaults to the email name)"},
					remote(),
				},
				Action: r.AuthSignup,
			},
			{
				Name:  "login",
				Usage: "Sign in and start a session",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
					remote(),
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "End the session and clear favorites and continue watching",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in viewer and session expiry",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:  "subscribe",
				Usage: "Subscribe the signed-in viewer to a plan",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "plan", Usage: "Plan id or name (basic, standard, premium)", Required: true},
					&cli.StringFlag{Name: "payment", Usage: "Payment method: credit-card, paypal or upi", Value: "credit-card"},
					remote(),
				},
				Action: r.AuthSubscribe,
			},
		},
	}
}

// plansCommand lists subscription plans
func plansCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "plans",
		Usage:  "List subscription plans",
		Flags:  []cli.Flag{jsonFlag()},
		Action: r.Plans,
	}
}

// favoritesCommand handles the signed-in viewer's favorites
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav", "list"},
		Usage:   "Manage favorites (My List)",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List favorites in the order they were added",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add movies by TMDB id or title",
				ArgsUsage: "<id|title>...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Add a single catalog item with this title without a TMDB lookup"},
					&cli.StringFlag{Name: "image", Usage: "Image URL for --title"},
					&cli.StringFlag{Name: "year", Usage: "Release year for --title"},
				},
				Action: r.FavoritesAdd,
			},
			{
				Name:      "import",
				Usage:     "Add every movie listed in a file (one id or title per line)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Usage: "Concurrent lookups", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Lookups per second", Value: 4},
				},
				Action: r.FavoritesImport,
			},
			{
				Name:      "remove",
				Usage:     "Remove a favorite",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesRemove,
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie if absent, otherwise remove it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Title to save without a TMDB lookup"},
				},
				Action: r.FavoritesToggle,
			},
			{
				Name:   "clear",
				Usage:  "Remove every favorite",
				Action: r.FavoritesClear,
			},
			{
				Name:  "export",
				Usage: "Export favorites and continue watching",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv, markdown, text or json", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (directory for markdown)"},
					&cli.BoolFlag{Name: "cover", Usage: "Download the first favorite's poster into a markdown export"},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// watchingCommand handles the continue-watching list
func watchingCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "id"}} }

	return &cli.Command{
		Name:    "watching",
		Aliases: []string{"cw"},
		Usage:   "Manage continue watching",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List in-progress movies, most recent first",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.WatchingList,
			},
			{
				Name:      "play",
				Usage:     "Record playback progress for a movie",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "progress", Aliases: []string{"p"}, Usage: "Position in seconds", Required: true},
					&cli.FloatFlag{Name: "duration", Aliases: []string{"d"}, Usage: "Length in seconds", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Title to save without a TMDB lookup"},
				},
				Action: r.WatchingPlay,
			},
			{
				Name:      "progress",
				Usage:     "Show the saved position for a movie",
				Arguments: idArg(),
				Action:    r.WatchingProgress,
			},
			{
				Name:      "remove",
				Usage:     "Remove a movie from continue watching",
				Arguments: idArg(),
				Action:    r.WatchingRemove,
			},
			{
				Name:   "clear",
				Usage:  "Clear continue watching",
				Action: r.WatchingClear,
			},
		},
	}
}

// moviesCommand browses the TMDB catalog
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the TMDB catalog",
		Commands: []*cli.Command{
			{
				Name:   "popular",
				Usage:  "Popular movies",
				Flags:  []cli.Flag{pageFlag(), jsonFlag()},
				Action: r.MoviesPopular,
			},
			{
				Name:   "trending",
				Usage:  "Movies trending this week",
				Flags:  []cli.Flag{pageFlag(), jsonFlag()},
				Action: r.MoviesTrending,
			},
			{
				Name:   "top-rated",
				Usage:  "Highest rated movies",
				Flags:  []cli.Flag{pageFlag(), jsonFlag()},
				Action: r.MoviesTopRated,
			},
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{pageFlag(), jsonFlag()},
				Action:    r.MoviesSearch,
			},
			{
				Name:      "details",
				Usage:     "Show a movie with trailer, cast and recommendations",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.MoviesDetails,
			},
			{
				Name:   "genres",
				Usage:  "List movie genres",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.MoviesGenres,
			},
			{
				Name:  "discover",
				Usage: "Filter movies by genre, year and rating",
				Flags: []cli.Flag{
					pageFlag(),
					jsonFlag(),
					&cli.IntFlag{Name: "genre", Usage: "Genre id (see 'movies genres')"},
					&cli.IntFlag{Name: "year", Usage: "Primary release year"},
					&cli.FloatFlag{Name: "min-rating", Usage: "Minimum vote average"},
					&cli.StringFlag{Name: "sort", Usage: "Sort order", Value: "popularity.desc"},
				},
				Action: r.MoviesDiscover,
			},
		},
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the auth and subscription HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (defaults to server.host:server.port)"},
			&cli.BoolFlag{Name: "seed", Usage: "Create the demo accounts before serving", Value: true},
		},
		Action: r.Serve,
	}
}

// apiCommand makes direct calls to a running cineflix server
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to a running cineflix server",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Direct GET, prints the JSON response",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output compact JSON"},
				},
				Action: r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "Direct POST with JSON body",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:   "health",
				Usage:  "Check that the server is up",
				Action: r.APIHealth,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive library management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive library browser",
		Action:  r.TUI,
	}
}
