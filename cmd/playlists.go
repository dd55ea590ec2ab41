package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/desertthunder/musicx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistsList lists the playlists of the logged in user.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	playlists, err := r.client.UserPlaylists(ctx, session.User.ID)
	if err != nil {
		return err
	}
	return r.writePlaylists(cmd, "Your playlists", playlists)
}

func (r *Runner) writePlaylists(cmd *cli.Command, title string, playlists []models.Playlist) error {
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists found.\n")
	}
	r.writePlain("%s (%d)\n", title, len(playlists))
	return r.writePlain("%s\n", formatter.PlaylistTable(playlists))
}

// PlaylistsShow prints a playlist with its songs.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"), "playlist id")
	if err != nil {
		return err
	}

	playlist, err := r.client.Playlist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}
	r.writePlain("%s\n\n", formatter.PlaylistDetails(*playlist))
	if len(playlist.Songs) == 0 {
		return r.writePlain("This playlist is empty.\n")
	}
	return r.writePlain("%s\n", formatter.SongTable(playlist.Songs))
}

// PlaylistsCreate creates a playlist owned by the logged in user, or an anonymous one for guests.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	var userID int64
	if session, err := r.session(); err == nil {
		userID = session.User.ID
	} else {
		r.logger.Warn("not logged in, creating playlist without owner")
	}

	playlist, err := r.client.CreatePlaylist(ctx, cmd.StringArg("name"), userID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Created playlist %s (id %d)\n", playlist.Name, playlist.ID)
}

func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"), "playlist id")
	if err != nil {
		return err
	}

	var userID int64
	if session, err := r.session(); err == nil {
		userID = session.User.ID
	}

	playlist, err := r.client.RenamePlaylist(ctx, id, cmd.StringArg("name"), userID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Playlist %d renamed to %s\n", id, playlist.Name)
}

func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"), "playlist id")
	if err != nil {
		return err
	}

	if err := r.client.DeletePlaylist(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Playlist %d deleted\n", id)
}

// playlistSongArgs parses the <id> <song> arguments shared by add and remove.
func playlistSongArgs(cmd *cli.Command) (int64, int64, error) {
	id, err := parseID(cmd.StringArg("id"), "playlist id")
	if err != nil {
		return 0, 0, err
	}
	songID, err := parseID(cmd.StringArg("song"), "song id")
	if err != nil {
		return 0, 0, err
	}
	return id, songID, nil
}

func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	id, songID, err := playlistSongArgs(cmd)
	if err != nil {
		return err
	}

	playlist, err := r.client.AddSongByID(ctx, id, songID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Song %d added to %s (%d songs)\n", songID, nameOr(playlist, id), playlist.Count())
}

func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	id, songID, err := playlistSongArgs(cmd)
	if err != nil {
		return err
	}

	playlist, err := r.client.RemoveSong(ctx, id, songID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Song %d removed from %s (%d songs)\n", songID, nameOr(playlist, id), playlist.Count())
}

func nameOr(p *models.Playlist, id int64) string {
	if p != nil && p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("playlist %d", id)
}

// PlaylistsShare prints the share link, optionally copying or opening it.
func (r *Runner) PlaylistsShare(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"), "playlist id")
	if err != nil {
		return err
	}

	info, err := r.client.ShareInfo(ctx, id)
	if err != nil {
		return err
	}
	if err := r.render(cmd, info, formatter.ShareDetails(*info)); err != nil {
		return err
	}

	if !info.Shareable || info.ShareURL == "" {
		r.logger.Warn("playlist is not shareable", "id", id)
		return nil
	}
	if cmd.Bool("copy") {
		if err := shared.CopyToClipboard(info.ShareURL); err != nil {
			r.logger.Warn("could not copy share link", "error", err)
		} else if !cmd.Bool("json") {
			r.writePlain("✓ Link copied to clipboard\n")
		}
	}
	if cmd.Bool("open") {
		if err := shared.OpenBrowser(info.ShareURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}
	return nil
}

func (r *Runner) PlaylistsSearch(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	playlists, err := r.client.SearchPlaylists(ctx, name)
	if err != nil {
		return err
	}
	return r.writePlaylists(cmd, fmt.Sprintf("Playlists matching %q", name), playlists)
}

// PlaylistsExport writes playlists to files with a bounded worker pool.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	ids := []int64{}
	for _, arg := range cmd.Args().Slice() {
		id, err := parseID(arg, "playlist id")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if cmd.Bool("all") {
		session, err := r.session()
		if err != nil {
			return err
		}
		playlists, err := r.client.UserPlaylists(ctx, session.User.ID)
		if err != nil {
			return err
		}
		for _, p := range playlists {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: pass playlist ids or --all", shared.ErrMissingArgument)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}
	r.logger.Info("exporting playlists", "count", len(ids), "format", opts.Format)

	progress, wait := r.progress(func(u tasks.ProgressUpdate) {
		r.writePlain("%s\n", u.Message)
	})
	result, err := engine.BulkExport(ctx, progress, ids, opts)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	if result.FailedExports > 0 {
		r.writePlain("\nFailed:\n")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.PlaylistName, res.Error)
			}
		}
	}
	return nil
}

// PlaylistsImport creates a playlist from a CSV export, matching each row against the catalogue.
func (r *Runner) PlaylistsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: CSV file", shared.ErrMissingArgument)
	}

	var userID int64
	if session, err := r.session(); err == nil {
		userID = session.User.ID
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	engine, err := r.engine()
	if err != nil {
		return err
	}

	r.writePlain("Importing %s...\n\n", path)
	progress, wait := r.progress(func(u tasks.ProgressUpdate) {
		switch u.Phase {
		case tasks.ReadCSV:
			r.writePlain("📥 %s\n", u.Message)
		case tasks.SearchSongs:
			if u.Step == 0 {
				r.writePlain("\n🔍 %s\n", u.Message)
			} else {
				r.writePlain("   %s\n", u.Message)
			}
		case tasks.CreatePlaylist:
			r.writePlain("\n📝 %s\n", u.Message)
		case tasks.AddSongs:
			r.writePlain("   %s\n", u.Message)
		}
	})
	result, err := engine.ImportPlaylist(ctx, progress, f, cmd.String("name"), userID)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Playlist: %s (id %d)\n", result.Playlist.Name, result.Playlist.ID)
	r.writePlain("Matched: %d/%d (%.1f%%)\n", result.SuccessCount, result.TotalSongs, result.MatchPercentage)
	r.writePlain("Added: %d\n", result.AddedCount)

	if result.FailedCount > 0 {
		r.writePlain("\nNo match for %d songs:\n", result.FailedCount)
		for _, match := range result.Matches {
			if match.Matched == nil {
				r.writePlain("  - %s\n", match.Original.Label())
			}
		}
	}
	return nil
}
