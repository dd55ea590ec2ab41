// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags are shared by every command that prints API data.
func outputFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}, extra...)
}

// setupCommand handles setup operations for the config file and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize the cache database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent cache database migration",
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml populated with the defaults",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create (default: the active config path)",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles account operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log in, register and manage your account",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with your username or email",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Username or email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password",
						Sources:  cli.EnvVars("MUSICX_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and log in",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Usage:    "Username (3 to 50 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Password (at least 6 characters)",
						Sources:  cli.EnvVars("MUSICX_PASSWORD"),
						Required: true,
					},
					&cli.StringFlag{
						Name:  "full-name",
						Usage: "Display name",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Log out and forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the logged in user",
				Flags:  outputFlags(),
				Action: r.AuthWhoami,
			},
			{
				Name:   "status",
				Usage:  "Check the API health and the stored session",
				Action: r.AuthStatus,
			},
			{
				Name:  "import",
				Usage: "Store the session of a browser request copied as cURL from DevTools",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.AuthImport,
			},
			{
				Name:  "forgot",
				Usage: "Request a password reset token",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "copy",
						Usage: "Copy the reset token to the clipboard",
					},
				},
				Action: r.AuthForgot,
			},
			{
				Name:  "verify",
				Usage: "Check whether a reset token is still valid",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "token"},
				},
				Action: r.AuthVerify,
			},
			{
				Name:  "reset",
				Usage: "Set a new password with a reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Reset token from 'musicx auth forgot'",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "New password (at least 6 characters)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "confirm",
						Usage:    "New password again",
						Required: true,
					},
				},
				Action: r.AuthReset,
			},
		},
	}
}

// songsCommand handles catalogue browsing
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songs",
		Aliases: []string{"song"},
		Usage:   "Browse and search the song catalogue",
		Commands: []*cli.Command{
			{
				Name:  "recent",
				Usage: "List the newest songs",
				Flags: outputFlags(
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs (0 lists all)",
					},
				),
				Action: r.SongsRecent,
			},
			{
				Name:   "featured",
				Usage:  "List featured songs",
				Flags:  outputFlags(),
				Action: r.SongsFeatured,
			},
			{
				Name:  "search",
				Usage: "Search songs by title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  outputFlags(),
				Action: r.SongsSearch,
			},
			{
				Name:  "artist",
				Usage: "Search songs by artist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "artist"},
				},
				Flags:  outputFlags(),
				Action: r.SongsArtist,
			},
			{
				Name:  "genre",
				Usage: "List songs of a genre",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "genre"},
				},
				Flags:  outputFlags(),
				Action: r.SongsGenre,
			},
			{
				Name:  "get",
				Usage: "Show a single song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.SongsGet,
			},
			{
				Name:   "audio",
				Usage:  "List songs that can be played",
				Flags:  outputFlags(),
				Action: r.SongsAudio,
			},
			{
				Name:  "upload",
				Usage: "Upload an audio file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: outputFlags(
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Artist name",
					},
					&cli.StringFlag{
						Name:  "album",
						Usage: "Album name",
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Genre",
					},
				),
				Action: r.SongsUpload,
			},
			{
				Name:  "recommend",
				Usage: "Recommend songs similar to a song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.SongsRecommend,
			},
			{
				Name:   "trending",
				Usage:  "List trending songs",
				Flags:  outputFlags(),
				Action: r.SongsTrending,
			},
			{
				Name:   "for-me",
				Usage:  "Recommendations for the logged in user",
				Flags:  outputFlags(),
				Action: r.SongsForMe,
			},
		},
	}
}

// playlistsCommand handles playlist management
func playlistsCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "id"}} }
	songArgs := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "id"}, &cli.StringArg{Name: "song"}}
	}

	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"playlist", "pl"},
		Usage:   "Manage your playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your playlists",
				Flags:  outputFlags(),
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its songs",
				Arguments: idArg(),
				Flags:     outputFlags(),
				Action:    r.PlaylistsShow,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  outputFlags(),
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "name"},
				},
				Action: r.PlaylistsRename,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				Arguments: idArg(),
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "add",
				Usage:     "Add a song to a playlist",
				Arguments: songArgs(),
				Action:    r.PlaylistsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a song from a playlist",
				Arguments: songArgs(),
				Action:    r.PlaylistsRemove,
			},
			{
				Name:      "share",
				Usage:     "Show the share link of a playlist",
				Arguments: idArg(),
				Flags: outputFlags(
					&cli.BoolFlag{
						Name:  "copy",
						Usage: "Copy the share link to the clipboard",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the share link in the browser",
					},
				),
				Action: r.PlaylistsShare,
			},
			{
				Name:  "search",
				Usage: "Search playlists by name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  outputFlags(),
				Action: r.PlaylistsSearch,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files",
				ArgsUsage: "[playlist ids...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export all of your playlists",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: musicx_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: 5,
					},
				},
				Action: r.PlaylistsExport,
			},
			{
				Name:  "import",
				Usage: "Create a playlist from a CSV export",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "file"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Name of the playlist to create",
						Required: true,
					},
				},
				Action: r.PlaylistsImport,
			},
		},
	}
}

// historyCommand handles the local play history
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Recently played songs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recently played songs, newest first",
				Flags:  outputFlags(),
				Action: r.HistoryList,
			},
			{
				Name:   "clear",
				Usage:  "Clear the play history",
				Action: r.HistoryClear,
			},
		},
	}
}

// playCommand plays songs through the configured audio player.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play songs by id, a playlist, or search results",
		ArgsUsage: "[song ids...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "playlist",
				Usage: "Play the songs of a playlist",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "Play the songs matching a title",
			},
			&cli.BoolFlag{
				Name:  "featured",
				Usage: "Play the featured songs",
			},
			&cli.BoolFlag{
				Name:  "shuffle",
				Usage: "Shuffle the queue",
			},
			&cli.BoolFlag{
				Name:  "repeat",
				Usage: "Repeat the queue",
			},
		},
		Action: r.Play,
	}
}

func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show catalogue statistics",
		Flags:  outputFlags(),
		Action: r.Stats,
	}
}

// adminCommand handles admin-only endpoints
func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Admin dashboard",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show dashboard statistics (admin only)",
				Flags:  outputFlags(),
				Action: r.AdminStats,
			},
		},
	}
}

// cacheCommand handles the local SQLite cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Cache songs and playlists locally",
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Fetch songs, playlists and stats and cache them",
				Action: r.CacheSync,
			},
			{
				Name:  "songs",
				Usage: "List cached songs",
				Flags: outputFlags(
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only songs by this artist",
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Only songs of this genre",
					},
				),
				Action: r.CacheSongs,
			},
			{
				Name:   "playlists",
				Usage:  "List cached playlists",
				Flags:  outputFlags(),
				Action: r.CachePlaylists,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls for debugging",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Bearer token to send instead of the stored session",
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
						Value:   "{}",
					},
					&cli.StringFlag{
						Name:  "token",
						Usage: "Bearer token to send instead of the stored session",
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive player",
		Action:  r.TUI,
	}
}
