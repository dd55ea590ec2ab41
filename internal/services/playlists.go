package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

func id64(id int64) string { return strconv.FormatInt(id, 10) }

func playlistNotFound(id int64, err error) error {
	if StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %d: %w", shared.ErrPlaylistNotFound, id, err)
	}
	return err
}

// CreatePlaylist calls POST /api/playlists/create?name=&userId=.
func (c *Client) CreatePlaylist(ctx context.Context, name string, userID int64) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	req.SetQueryParam("name", name)
	if userID > 0 {
		req.SetQueryParam("userId", id64(userID))
	}

	var playlist models.Playlist
	if err := c.do(req, http.MethodPost, "/api/playlists/create", &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// UserPlaylists calls GET /api/playlists/user/{userId}/all.
func (c *Client) UserPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("%w: user id", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	playlists := []models.Playlist{}
	req.SetPathParam("userId", id64(userID))
	if err := c.do(req, http.MethodGet, "/api/playlists/user/{userId}/all", &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// Playlist calls GET /api/playlists/{id}; the result includes its songs.
func (c *Client) Playlist(ctx context.Context, id int64) (*models.Playlist, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var playlist models.Playlist
	req.SetPathParam("id", id64(id))
	if err := c.do(req, http.MethodGet, "/api/playlists/{id}", &playlist); err != nil {
		return nil, playlistNotFound(id, err)
	}
	return &playlist, nil
}

// AutoplayPlaylist returns the songs of a playlist. Any failure yields an empty list.
func (c *Client) AutoplayPlaylist(ctx context.Context, id int64) []models.Song {
	playlist, err := c.Playlist(ctx, id)
	if err != nil {
		c.logger.Warn("autoplay failed", "playlist", id, "error", err)
		return []models.Song{}
	}
	if playlist.Songs == nil {
		return []models.Song{}
	}
	return playlist.Songs
}

// AddSong calls POST /api/playlists/{id}/songs with the song as JSON body.
//
// Used for songs that only exist outside the catalogue (imported entries).
func (c *Client) AddSong(ctx context.Context, playlistID int64, song models.Song) (*models.Playlist, error) {
	if strings.TrimSpace(song.Title) == "" {
		return nil, fmt.Errorf("%w: song title", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var playlist models.Playlist
	req.SetPathParam("id", id64(playlistID)).SetBody(song)
	if err := c.do(req, http.MethodPost, "/api/playlists/{id}/songs", &playlist); err != nil {
		return nil, playlistNotFound(playlistID, err)
	}
	return &playlist, nil
}

// AddSongByID calls POST /api/playlists/{id}/songs/{songId}.
func (c *Client) AddSongByID(ctx context.Context, playlistID, songID int64) (*models.Playlist, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var playlist models.Playlist
	req.SetPathParams(map[string]string{"id": id64(playlistID), "songId": id64(songID)})
	if err := c.do(req, http.MethodPost, "/api/playlists/{id}/songs/{songId}", &playlist); err != nil {
		return nil, playlistNotFound(playlistID, err)
	}
	return &playlist, nil
}

// RemoveSong calls DELETE /api/playlists/{id}/songs/{songId}.
func (c *Client) RemoveSong(ctx context.Context, playlistID, songID int64) (*models.Playlist, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var playlist models.Playlist
	req.SetPathParams(map[string]string{"id": id64(playlistID), "songId": id64(songID)})
	if err := c.do(req, http.MethodDelete, "/api/playlists/{id}/songs/{songId}", &playlist); err != nil {
		return nil, playlistNotFound(playlistID, err)
	}
	return &playlist, nil
}

// DeletePlaylist calls DELETE /api/playlists/{id}.
func (c *Client) DeletePlaylist(ctx context.Context, id int64) error {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return err
	}

	req.SetPathParam("id", id64(id))
	return playlistNotFound(id, c.do(req, http.MethodDelete, "/api/playlists/{id}", nil))
}

// RenamePlaylist calls PUT /api/playlists/{id}?name= with the X-User-Id header when userID is set.
func (c *Client) RenamePlaylist(ctx context.Context, id int64, name string, userID int64) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	req.SetPathParam("id", id64(id)).SetQueryParam("name", name)
	if userID > 0 {
		req.SetHeader("X-User-Id", id64(userID))
	}

	var playlist models.Playlist
	if err := c.do(req, http.MethodPut, "/api/playlists/{id}", &playlist); err != nil {
		return nil, playlistNotFound(id, err)
	}
	return &playlist, nil
}

// ShareInfo calls GET /api/playlists/{id}/share.
func (c *Client) ShareInfo(ctx context.Context, id int64) (*models.ShareInfo, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var info models.ShareInfo
	req.SetPathParam("id", id64(id))
	if err := c.do(req, http.MethodGet, "/api/playlists/{id}/share", &info); err != nil {
		return nil, playlistNotFound(id, err)
	}
	return &info, nil
}

// SearchPlaylists calls GET /api/playlists/search?name=.
func (c *Client) SearchPlaylists(ctx context.Context, name string) ([]models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	playlists := []models.Playlist{}
	req.SetQueryParam("name", name)
	if err := c.do(req, http.MethodGet, "/api/playlists/search", &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}
