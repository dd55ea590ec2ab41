package main

import (
	"context"

	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/repositories"
	"github.com/desertthunder/musicx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheSync snapshots the catalogue into the local database.
//
// Playlists are only fetched when logged in. Failed endpoints are reported without aborting the sync.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	var userID int64
	if session, err := r.session(); err == nil {
		userID = session.User.ID
	} else {
		r.logger.Warn("not logged in, skipping playlists")
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	r.writePlain("Syncing %s into %s...\n\n", r.client.BaseURL(), r.config.Database.Path)
	progress, wait := r.progress(func(u tasks.ProgressUpdate) {
		switch u.Phase {
		case tasks.CacheSongs, tasks.CachePlaylists:
			if u.Step == u.Total {
				r.writePlain("💾 %s\n", u.Message)
			}
		default:
			r.writePlain("📥 %s\n", u.Message)
		}
	})
	result, err := engine.Snapshot(ctx, progress, userID)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.writePlain("Recent songs:    %d\n", len(result.Recent))
	r.writePlain("Featured songs:  %d\n", len(result.Featured))
	r.writePlain("Playlists:       %d\n", len(result.Playlists))
	r.writePlain("Cached songs:    %d\n", result.CachedSongs)
	r.writePlain("Cached playlists: %d\n", result.CachedPlaylists)
	if result.Stats != nil {
		r.writePlain("\n%s\n", formatter.AppStatsTable(*result.Stats))
	}

	if len(result.Errors) > 0 {
		r.writePlain("\n⚠ %d step(s) failed:\n", len(result.Errors))
		for _, e := range result.Errors {
			r.writePlain("  - %s: %v\n", e.Endpoint, e.Error)
		}
	}
	return nil
}

// CacheSongs lists cached songs, optionally filtered by artist or genre.
func (r *Runner) CacheSongs(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	criteria := map[string]any{"artist": cmd.String("artist"), "genre": cmd.String("genre")}
	persisted, err := repositories.NewSongRepository(db).List(criteria)
	if err != nil {
		return err
	}

	songs := make([]models.Song, 0, len(persisted))
	for _, p := range persisted {
		songs = append(songs, p.Song())
	}
	return r.writeSongs(cmd, "Cached songs", songs)
}

func (r *Runner) CachePlaylists(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	persisted, err := repositories.NewPlaylistRepository(db).List(nil)
	if err != nil {
		return err
	}

	playlists := make([]models.Playlist, 0, len(persisted))
	for _, p := range persisted {
		playlists = append(playlists, p.Playlist())
	}
	return r.writePlaylists(cmd, "Cached playlists", playlists)
}
