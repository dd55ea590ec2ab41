package models

import (
	"fmt"
	"strings"
)

// Song represents a song as returned by the /api/songs endpoints.
//
// Entity responses carry duration while DTO responses carry durationSeconds; use [Song.Length].
type Song struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	Genre           string `json:"genre,omitempty"`
	Duration        int    `json:"duration,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	AudioURL        string `json:"audioUrl,omitempty"`
	AlbumArtURL     string `json:"albumArtUrl,omitempty"`
	ReleaseYear     int    `json:"releaseYear,omitempty"`
	Source          string `json:"source,omitempty"`
	ExternalID      string `json:"externalId,omitempty"`
	PlayCount       int    `json:"playCount,omitempty"`
	LikeCount       int    `json:"likeCount,omitempty"`
	UploadedAt      string `json:"uploadedAt,omitempty"`
}

// Length returns the song length in seconds.
func (s Song) Length() int {
	if s.Duration > 0 {
		return s.Duration
	}
	return s.DurationSeconds
}

// Playable reports whether the song has an audio link.
func (s Song) Playable() bool {
	return strings.TrimSpace(s.AudioURL) != ""
}

// Label renders "Title - Artist".
func (s Song) Label() string {
	if s.Artist == "" {
		return s.Title
	}
	return s.Title + " - " + s.Artist
}

// Recommendation is a song suggested by the /api/recommendations endpoints.
//
// Trending entries carry rank and plays; per-user entries carry a reason.
type Recommendation struct {
	Song
	Rank   int    `json:"rank,omitempty"`
	Plays  int64  `json:"plays,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// PersistedSong is a cached copy of a [Song] keyed by its remote id.
type PersistedSong struct {
	entity
	song Song
}

// NewPersistedSong wraps song for the cache with the given sequence number.
func NewPersistedSong(sequence int, song Song) *PersistedSong {
	return &PersistedSong{entity: newEntity(sequence), song: song}
}

func (s *PersistedSong) RemoteID() int64 { return s.song.ID }
func (s *PersistedSong) Title() string { return s.song.Title }
func (s *PersistedSong) Artist() string { return s.song.Artist }
func (s *PersistedSong) Album() string { return s.song.Album }
func (s *PersistedSong) Genre() string { return s.song.Genre }
func (s *PersistedSong) Duration() int { return s.song.Length() }
func (s *PersistedSong) AudioURL() string { return s.song.AudioURL }
func (s *PersistedSong) AlbumArtURL() string { return s.song.AlbumArtURL }
func (s *PersistedSong) PlayCount() int { return s.song.PlayCount }

// Song returns the DTO view of the cached row.
func (s *PersistedSong) Song() Song { return s.song }

// SetSong replaces the cached fields with a fresher copy from the API. The remote id is kept.
func (s *PersistedSong) SetSong(song Song) {
	song.ID = s.song.ID
	s.song = song
}

// Validate checks required fields.
func (s *PersistedSong) Validate() error {
	if s.song.ID <= 0 {
		return fmt.Errorf("song remote id is required")
	}
	if strings.TrimSpace(s.song.Title) == "" {
		return fmt.Errorf("song title is required")
	}
	return nil
}
