package models

import (
	"fmt"
	"strings"
)

// Playlist represents a playlist as returned by the /api/playlists endpoints.
type Playlist struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Username    string `json:"username,omitempty"`
	UserID      int64  `json:"userId,omitempty"`
	Public      bool   `json:"public"`
	Songs       []Song `json:"songs,omitempty"`
	SongCount   int    `json:"songCount"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Count returns songCount, or the number of embedded songs when the server omits it.
func (p Playlist) Count() int {
	if p.SongCount > 0 {
		return p.SongCount
	}
	return len(p.Songs)
}

// ShareInfo is the body of GET /api/playlists/{id}/share.
type ShareInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsPublic    bool   `json:"isPublic"`
	SongCount   int    `json:"songCount"`
	CreatedBy   string `json:"createdBy,omitempty"`
	ShareURL    string `json:"shareUrl"`
	QRCode      string `json:"qrCode,omitempty"`
	Shareable   bool   `json:"shareable"`
}

// PersistedPlaylist is a cached copy of a [Playlist] keyed by its remote id.
type PersistedPlaylist struct {
	entity
	playlist Playlist
	songIDs  []int64
}

// NewPersistedPlaylist wraps playlist for the cache with the given sequence number.
func NewPersistedPlaylist(sequence int, playlist Playlist) *PersistedPlaylist {
	ids := make([]int64, 0, len(playlist.Songs))
	for _, s := range playlist.Songs {
		ids = append(ids, s.ID)
	}
	playlist.Songs = nil
	return &PersistedPlaylist{entity: newEntity(sequence), playlist: playlist, songIDs: ids}
}

func (p *PersistedPlaylist) RemoteID() int64 { return p.playlist.ID }
func (p *PersistedPlaylist) UserID() int64 { return p.playlist.UserID }
func (p *PersistedPlaylist) Name() string { return p.playlist.Name }
func (p *PersistedPlaylist) Description() string { return p.playlist.Description }
func (p *PersistedPlaylist) Public() bool { return p.playlist.Public }
func (p *PersistedPlaylist) SongCount() int { return max(p.playlist.SongCount, len(p.songIDs)) }

// SongIDs returns the remote ids of the playlist's songs in order.
func (p *PersistedPlaylist) SongIDs() []int64 { return p.songIDs }

func (p *PersistedPlaylist) SetSongIDs(ids []int64) { p.songIDs = ids }

// Playlist returns the DTO view of the cached row, without songs.
func (p *PersistedPlaylist) Playlist() Playlist {
	pl := p.playlist
	pl.SongCount = p.SongCount()
	return pl
}

// SetPlaylist replaces the cached fields with a fresher copy from the API. The remote id is kept.
func (p *PersistedPlaylist) SetPlaylist(playlist Playlist) {
	playlist.ID = p.playlist.ID
	if playlist.Songs != nil {
		ids := make([]int64, 0, len(playlist.Songs))
		for _, s := range playlist.Songs {
			ids = append(ids, s.ID)
		}
		p.songIDs = ids
	}
	playlist.Songs = nil
	p.playlist = playlist
}

// Validate checks required fields.
func (p *PersistedPlaylist) Validate() error {
	if p.playlist.ID <= 0 {
		return fmt.Errorf("playlist remote id is required")
	}
	if strings.TrimSpace(p.playlist.Name) == "" {
		return fmt.Errorf("playlist name is required")
	}
	return nil
}
