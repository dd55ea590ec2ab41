package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/desertthunder/musicx/internal/storage"
	"github.com/urfave/cli/v3"
)

// history opens the store and returns the history bucket of the current user, or the guest bucket.
func (r *Runner) history() (*storage.Store, string, error) {
	store, err := r.storage()
	if err != nil {
		return nil, "", err
	}
	session, _ := store.Session()
	return store, session.HistoryKey(), nil
}

// HistoryList prints the play history, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	store, key, err := r.history()
	if err != nil {
		return err
	}
	entries, err := store.History(key)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	if len(entries) == 0 {
		return r.writePlain("Nothing played yet.\n")
	}
	r.writePlain("Recently played (%d of at most %d)\n", len(entries), store.Limit())
	return r.writePlain("%s\n", formatter.HistoryTable(entries))
}

func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	store, key, err := r.history()
	if err != nil {
		return err
	}
	if err := store.ClearHistory(key); err != nil {
		return err
	}
	return r.writePlain("✓ History cleared\n")
}

// queueSongs builds the play queue from the command's arguments and flags.
func (r *Runner) queueSongs(ctx context.Context, cmd *cli.Command) ([]models.Song, error) {
	switch {
	case cmd.String("playlist") != "":
		id, err := parseID(cmd.String("playlist"), "playlist id")
		if err != nil {
			return nil, err
		}
		return r.client.AutoplayPlaylist(ctx, id), nil
	case cmd.String("search") != "":
		return r.client.SearchByTitle(ctx, cmd.String("search"))
	case cmd.Bool("featured"):
		return r.client.FeaturedSongs(ctx)
	}

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: song ids, --playlist, --search or --featured", shared.ErrMissingArgument)
	}

	songs := make([]models.Song, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, "song id")
		if err != nil {
			return nil, err
		}
		song, err := r.client.Song(ctx, id)
		if err != nil {
			return nil, err
		}
		songs = append(songs, *song)
	}
	return songs, nil
}

// Play plays the queue to the end, skipping songs without audio. Interrupting stops playback.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	songs, err := r.queueSongs(ctx, cmd)
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		return fmt.Errorf("%w: nothing to play", shared.ErrEmptyQueue)
	}

	p, err := r.player()
	if err != nil {
		return err
	}
	defer p.Stop()

	if cmd.Bool("shuffle") {
		p.ToggleShuffle()
	}
	if cmd.Bool("repeat") {
		p.CycleRepeat()
	}

	start := 0
	if cmd.Bool("shuffle") {
		start = -1
	}

	song, err := p.Play(ctx, songs, start)
	skipped := 0
	for {
		switch {
		case errors.Is(err, shared.ErrEmptyQueue):
			return r.writePlain("End of queue.\n")
		case errors.Is(err, shared.ErrNoAudio):
			r.logger.Warn("skipping song without audio", "song", song.Label())
			if skipped++; skipped >= len(songs) {
				return fmt.Errorf("%w: no song in the queue is playable", shared.ErrNoAudio)
			}
			song, err = p.Next(ctx)
			continue
		case err != nil:
			return err
		default:
			skipped = 0
			i, n := p.Position()
			r.writePlain("▶ [%d/%d] %s\n", i+1, n, song.Label())

			select {
			case <-ctx.Done():
				return nil
			case err := <-p.Done():
				if err != nil {
					r.logger.Warn("player exited with error", "song", song.Label(), "error", err)
				}
			}
		}
		song, err = p.Advance(ctx)
	}
}
