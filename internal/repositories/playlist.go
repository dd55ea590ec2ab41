package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

const playlistColumns = `id, sequence, remote_id, user_id, name, description, song_count, public, created_at, updated_at, deleted_at`

// PlaylistRepository implements models.Repository[*models.PersistedPlaylist] for the playlist cache.
//
// Song membership lives in playlist_songs as ordered API song ids and is written together with the playlist row.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist and its song ids with generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)
	playlist.SetSequence(sequence)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO playlists (id, sequence, remote_id, user_id, name, description, song_count, public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		id,
		sequence,
		playlist.RemoteID(),
		playlist.UserID(),
		playlist.Name(),
		playlist.Description(),
		playlist.SongCount(),
		playlist.Public(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	if err := writeSongIDs(tx, id, playlist.SongIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}
	return nil
}

// Get retrieves a playlist by local ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves a playlist by its API id
func (r *PlaylistRepository) GetByRemoteID(remoteID int64) (*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE remote_id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, remoteID))
}

// Update refreshes the cached fields and replaces the song ids of an existing playlist
func (r *PlaylistRepository) Update(playlist *models.PersistedPlaylist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	playlist.SetUpdatedAt(now)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE playlists
		SET user_id = ?, name = ?, description = ?, song_count = ?, public = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := tx.Exec(query,
		playlist.UserID(),
		playlist.Name(),
		playlist.Description(),
		playlist.SongCount(),
		playlist.Public(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	if err := affected(result, "playlist", playlist.ID()); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM playlist_songs WHERE playlist_id = ?`, playlist.ID()); err != nil {
		return fmt.Errorf("failed to clear playlist songs: %w", err)
	}
	if err := writeSongIDs(tx, playlist.ID(), playlist.SongIDs()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit playlist: %w", err)
	}
	return nil
}

// Delete soft-deletes a playlist by local ID
func (r *PlaylistRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return affected(result, "playlist", id)
}

// Restore clears the soft delete of the playlist with the given API id and returns it
func (r *PlaylistRepository) Restore(remoteID int64) (*models.PersistedPlaylist, error) {
	if _, err := r.db.Exec(`UPDATE playlists SET deleted_at = NULL WHERE remote_id = ?`, remoteID); err != nil {
		return nil, fmt.Errorf("failed to restore playlist: %w", err)
	}
	return r.GetByRemoteID(remoteID)
}

// List retrieves cached playlists, excluding soft-deleted ones.
//
// Supported criteria: "user_id" (int64) and "name" (substring).
func (r *PlaylistRepository) List(criteria map[string]any) ([]*models.PersistedPlaylist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`
	args := []any{}

	if userID, ok := criteria["user_id"].(int64); ok && userID > 0 {
		query += " AND user_id = ?"
		args = append(args, userID)
	}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name LIKE ?"
		args = append(args, "%"+name+"%")
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	var playlists []*models.PersistedPlaylist
	for rows.Next() {
		playlist, err := r.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, p := range playlists {
		if err := r.loadSongIDs(p); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// Songs returns the cached songs of a playlist in playlist order. Songs missing from the cache are skipped.
func (r *PlaylistRepository) Songs(playlistID string) ([]models.Song, error) {
	query := `
		SELECT s.remote_id, s.title, s.artist, s.album, s.genre, s.duration, s.audio_url, s.album_art_url, s.play_count
		FROM playlist_songs ps
		JOIN songs s ON s.remote_id = ps.song_remote_id AND s.deleted_at IS NULL
		WHERE ps.playlist_id = ?
		ORDER BY ps.position ASC
	`

	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.Title, &s.Artist, &s.Album, &s.Genre, &s.Duration, &s.AudioURL, &s.AlbumArtURL, &s.PlayCount); err != nil {
			return nil, fmt.Errorf("failed to scan playlist song: %w", err)
		}
		songs = append(songs, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

func writeSongIDs(tx *sql.Tx, playlistID string, ids []int64) error {
	seen := make(map[int64]bool, len(ids))
	position := 0
	for _, songID := range ids {
		if seen[songID] {
			continue
		}
		seen[songID] = true
		if _, err := tx.Exec(`INSERT INTO playlist_songs (playlist_id, song_remote_id, position) VALUES (?, ?, ?)`,
			playlistID, songID, position); err != nil {
			return fmt.Errorf("failed to insert playlist song: %w", err)
		}
		position++
	}
	return nil
}

func (r *PlaylistRepository) loadSongIDs(p *models.PersistedPlaylist) error {
	rows, err := r.db.Query(`SELECT song_remote_id FROM playlist_songs WHERE playlist_id = ? ORDER BY position ASC`, p.ID())
	if err != nil {
		return fmt.Errorf("failed to query playlist songs: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan playlist song: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}

	p.SetSongIDs(ids)
	return nil
}

// scanOne scans a single row into a [models.PersistedPlaylist] along with its song ids
func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.PersistedPlaylist, error) {
	playlist, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist", shared.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadSongIDs(playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (r *PlaylistRepository) scan(row scanner) (*models.PersistedPlaylist, error) {
	var (
		id        string
		sequence  int
		dto       models.Playlist
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &dto.ID, &dto.UserID, &dto.Name, &dto.Description, &dto.SongCount, &dto.Public,
		&createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist := models.NewPersistedPlaylist(sequence, dto)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
