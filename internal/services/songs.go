package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

// RecentSongs lists every song, newest first as ordered by the server.
//
// Calls GET /api/songs/all.
func (c *Client) RecentSongs(ctx context.Context) ([]models.Song, error) {
	return c.songList(ctx, "/api/songs/all", nil)
}

// FeaturedSongs calls GET /api/songs/featured.
func (c *Client) FeaturedSongs(ctx context.Context) ([]models.Song, error) {
	return c.songList(ctx, "/api/songs/featured", nil)
}

// SearchByTitle calls GET /api/songs/search/title?title=.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]models.Song, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return c.songList(ctx, "/api/songs/search/title", map[string]string{"title": title})
}

// SearchByArtist calls GET /api/songs/search/artist?artist=.
func (c *Client) SearchByArtist(ctx context.Context, artist string) ([]models.Song, error) {
	artist = strings.TrimSpace(artist)
	if artist == "" {
		return nil, fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}
	return c.songList(ctx, "/api/songs/search/artist", map[string]string{"artist": artist})
}

// SongsByGenre calls GET /api/songs/genre/{genre}.
func (c *Client) SongsByGenre(ctx context.Context, genre string) ([]models.Song, error) {
	genre = strings.TrimSpace(genre)
	if genre == "" {
		return nil, fmt.Errorf("%w: genre", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var songs []models.Song
	req.SetPathParam("genre", genre)
	if err := c.do(req, http.MethodGet, "/api/songs/genre/{genre}", &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// RecentSongsLimited calls GET /api/songs/recent?limit=.
func (c *Client) RecentSongsLimited(ctx context.Context, limit int) ([]models.Song, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", shared.ErrInvalidArgument)
	}
	return c.songList(ctx, "/api/songs/recent", map[string]string{"limit": strconv.Itoa(limit)})
}

// SongsWithAudio calls GET /api/songs/with-audio.
func (c *Client) SongsWithAudio(ctx context.Context) ([]models.Song, error) {
	return c.songList(ctx, "/api/songs/with-audio", nil)
}

// Song calls GET /api/songs/{id}.
func (c *Client) Song(ctx context.Context, id int64) (*models.Song, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var song models.Song
	req.SetPathParam("id", strconv.FormatInt(id, 10))
	if err := c.do(req, http.MethodGet, "/api/songs/{id}", &song); err != nil {
		if StatusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d: %w", shared.ErrSongNotFound, id, err)
		}
		return nil, err
	}
	return &song, nil
}

// Upload describes a song file sent to POST /api/songs/upload.
type Upload struct {
	Filename string
	File     io.Reader
	Title    string
	Artist   string
	Album    string
	Genre    string
}

// UploadSong posts a multipart form with the audio file and its metadata.
func (c *Client) UploadSong(ctx context.Context, up Upload) (*models.Song, error) {
	if up.File == nil || up.Filename == "" {
		return nil, fmt.Errorf("%w: audio file", shared.ErrMissingArgument)
	}
	if strings.TrimSpace(up.Title) == "" {
		return nil, fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{"title": up.Title}
	for k, v := range map[string]string{"artist": up.Artist, "album": up.Album, "genre": up.Genre} {
		if v != "" {
			fields[k] = v
		}
	}

	var song models.Song
	req.SetFileReader("file", up.Filename, up.File).SetMultipartFormData(fields)
	if err := c.do(req, http.MethodPost, "/api/songs/upload", &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// Recommendations calls GET /api/songs/recommendations/{id}, falling back to
// GET /api/recommendations/similar/{id} when the server lacks the first route.
func (c *Client) Recommendations(ctx context.Context, songID int64) ([]models.Recommendation, error) {
	recs, err := c.recommendations(ctx, "/api/songs/recommendations/{id}", songID)
	if StatusCode(err) == http.StatusNotFound {
		return c.recommendations(ctx, "/api/recommendations/similar/{id}", songID)
	}
	return recs, err
}

// RecommendationsForUser calls GET /api/recommendations/for-user/{userId}.
func (c *Client) RecommendationsForUser(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	return c.recommendations(ctx, "/api/recommendations/for-user/{id}", userID)
}

// Trending calls GET /api/recommendations/trending.
func (c *Client) Trending(ctx context.Context) ([]models.Recommendation, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	if err := c.do(req, http.MethodGet, "/api/recommendations/trending", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) recommendations(ctx context.Context, path string, id int64) ([]models.Recommendation, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var recs []models.Recommendation
	req.SetPathParam("id", strconv.FormatInt(id, 10))
	if err := c.do(req, http.MethodGet, path, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (c *Client) songList(ctx context.Context, path string, query map[string]string) ([]models.Song, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}
	if query != nil {
		req.SetQueryParams(query)
	}

	songs := []models.Song{}
	if err := c.do(req, http.MethodGet, path, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}
