package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/services"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) writeSongs(cmd *cli.Command, title string, songs []models.Song) error {
	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}
	if len(songs) == 0 {
		return r.writePlain("No songs found.\n")
	}
	r.writePlain("%s (%d)\n", title, len(songs))
	return r.writePlain("%s\n", formatter.SongTable(songs))
}

func (r *Runner) writeRecommendations(cmd *cli.Command, title string, recs []models.Recommendation) error {
	if cmd.Bool("json") {
		return r.writeJSON(recs, cmd.Bool("pretty"))
	}
	if len(recs) == 0 {
		return r.writePlain("No recommendations.\n")
	}
	r.writePlain("%s\n", title)
	return r.writePlain("%s\n", formatter.RecommendationTable(recs))
}

// SongsRecent lists the newest songs, all of them unless --limit is set.
func (r *Runner) SongsRecent(ctx context.Context, cmd *cli.Command) error {
	var songs []models.Song
	var err error
	if limit := cmd.Int("limit"); limit > 0 {
		songs, err = r.client.RecentSongsLimited(ctx, limit)
	} else {
		songs, err = r.client.RecentSongs(ctx)
	}
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, "Recent songs", songs)
}

func (r *Runner) SongsFeatured(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.client.FeaturedSongs(ctx)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, "Featured songs", songs)
}

// SongsSearch searches by title.
func (r *Runner) SongsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	r.logger.Info("searching songs", "title", query)

	songs, err := r.client.SearchByTitle(ctx, query)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, fmt.Sprintf("Results for %q", query), songs)
}

func (r *Runner) SongsArtist(ctx context.Context, cmd *cli.Command) error {
	artist := cmd.StringArg("artist")
	songs, err := r.client.SearchByArtist(ctx, artist)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, "Songs by "+artist, songs)
}

func (r *Runner) SongsGenre(ctx context.Context, cmd *cli.Command) error {
	genre := cmd.StringArg("genre")
	songs, err := r.client.SongsByGenre(ctx, genre)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, "Genre "+genre, songs)
}

// SongsGet shows one song.
func (r *Runner) SongsGet(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"), "song id")
	if err != nil {
		return err
	}

	song, err := r.client.Song(ctx, id)
	if err != nil {
		return err
	}
	return r.render(cmd, song, formatter.SongDetails(*song))
}

func (r *Runner) SongsAudio(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.client.SongsWithAudio(ctx)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, "Playable songs", songs)
}

// SongsUpload uploads an audio file with its metadata.
func (r *Runner) SongsUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: audio file", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r.logger.Info("uploading song", "file", path, "title", cmd.String("title"))
	song, err := r.client.UploadSong(ctx, services.Upload{
		Filename: filepath.Base(path),
		File:     f,
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Album:    cmd.String("album"),
		Genre:    cmd.String("genre"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, cmd.Bool("pretty"))
	}
	r.writePlain("✓ Uploaded %s (id %d)\n", song.Label(), song.ID)
	return nil
}

// SongsRecommend lists songs similar to the given one.
func (r *Runner) SongsRecommend(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"), "song id")
	if err != nil {
		return err
	}

	recs, err := r.client.Recommendations(ctx, id)
	if err != nil {
		return err
	}
	return r.writeRecommendations(cmd, fmt.Sprintf("Because you listened to song %d", id), recs)
}

func (r *Runner) SongsTrending(ctx context.Context, cmd *cli.Command) error {
	recs, err := r.client.Trending(ctx)
	if err != nil {
		return err
	}
	return r.writeRecommendations(cmd, "Trending now", recs)
}

// SongsForMe lists recommendations for the logged in user.
func (r *Runner) SongsForMe(ctx context.Context, cmd *cli.Command) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	recs, err := r.client.RecommendationsForUser(ctx, session.User.ID)
	if err != nil {
		return err
	}
	return r.writeRecommendations(cmd, "Picked for "+session.User.Username, recs)
}
