package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

// SongCacheAdapter implements tasks.SongCacher using SongRepository.
//
// Songs are deduplicated by their API id: a song seen again refreshes the cached row instead of adding one.
type SongCacheAdapter struct {
	repo *SongRepository
}

// NewSongCacheAdapter creates a new SongCacheAdapter with the given repository
func NewSongCacheAdapter(repo *SongRepository) *SongCacheAdapter {
	return &SongCacheAdapter{repo: repo}
}

// CacheSong inserts or refreshes song. Songs without an API id are ignored.
func (a *SongCacheAdapter) CacheSong(song models.Song) error {
	if song.ID <= 0 {
		return nil
	}

	existing, err := a.repo.GetByRemoteID(song.ID)
	if errors.Is(err, shared.ErrNotFound) {
		existing, err = a.repo.Restore(song.ID)
		if errors.Is(err, shared.ErrNotFound) {
			if err := a.repo.Create(models.NewPersistedSong(0, song)); err != nil {
				return fmt.Errorf("failed to cache song: %w", err)
			}
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to cache song: %w", err)
	}

	existing.SetSong(song)
	return a.repo.Update(existing)
}

// PlaylistCacheAdapter implements tasks.PlaylistCacher using PlaylistRepository and caches embedded songs as well.
type PlaylistCacheAdapter struct {
	repo  *PlaylistRepository
	songs *SongCacheAdapter
}

// NewPlaylistCacheAdapter creates a new PlaylistCacheAdapter
func NewPlaylistCacheAdapter(repo *PlaylistRepository, songs *SongCacheAdapter) *PlaylistCacheAdapter {
	return &PlaylistCacheAdapter{repo: repo, songs: songs}
}

// CachePlaylist inserts or refreshes playlist. Song ids are only replaced when the playlist carries its songs.
func (a *PlaylistCacheAdapter) CachePlaylist(playlist models.Playlist) error {
	if playlist.ID <= 0 {
		return nil
	}

	if a.songs != nil {
		for _, s := range playlist.Songs {
			if err := a.songs.CacheSong(s); err != nil {
				return err
			}
		}
	}

	existing, err := a.repo.GetByRemoteID(playlist.ID)
	if errors.Is(err, shared.ErrNotFound) {
		existing, err = a.repo.Restore(playlist.ID)
		if errors.Is(err, shared.ErrNotFound) {
			if err := a.repo.Create(models.NewPersistedPlaylist(0, playlist)); err != nil {
				return fmt.Errorf("failed to cache playlist: %w", err)
			}
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("failed to cache playlist: %w", err)
	}

	existing.SetPlaylist(playlist)
	return a.repo.Update(existing)
}
