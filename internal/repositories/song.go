package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

const songColumns = `id, sequence, remote_id, title, artist, album, genre, duration, audio_url, album_art_url, play_count, created_at, updated_at, deleted_at`

// SongRepository implements models.Repository[*models.PersistedSong] for the song cache.
//
// Rows are keyed by a local UUID and unique on the API's song id.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new [models.PersistedSong] with generated ID and sequence
func (r *SongRepository) Create(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)
	song.SetSequence(sequence)

	query := `
		INSERT INTO songs (id, sequence, remote_id, title, artist, album, genre, duration, audio_url, album_art_url, play_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		song.RemoteID(),
		song.Title(),
		song.Artist(),
		song.Album(),
		song.Genre(),
		song.Duration(),
		song.AudioURL(),
		song.AlbumArtURL(),
		song.PlayCount(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by local ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves a song by its API id
func (r *SongRepository) GetByRemoteID(remoteID int64) (*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE remote_id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, remoteID))
}

// Update refreshes the cached fields of an existing song
func (r *SongRepository) Update(song *models.PersistedSong) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, album = ?, genre = ?, duration = ?, audio_url = ?, album_art_url = ?, play_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		song.Title(),
		song.Artist(),
		song.Album(),
		song.Genre(),
		song.Duration(),
		song.AudioURL(),
		song.AlbumArtURL(),
		song.PlayCount(),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	return affected(result, "song", song.ID())
}

// Delete soft-deletes a song by local ID
func (r *SongRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE songs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return affected(result, "song", id)
}

// Restore clears the soft delete of the song with the given API id and returns it
func (r *SongRepository) Restore(remoteID int64) (*models.PersistedSong, error) {
	if _, err := r.db.Exec(`UPDATE songs SET deleted_at = NULL WHERE remote_id = ?`, remoteID); err != nil {
		return nil, fmt.Errorf("failed to restore song: %w", err)
	}
	return r.GetByRemoteID(remoteID)
}

// List retrieves cached songs, excluding soft-deleted ones.
//
// Supported criteria: "query" (title or artist substring), "artist", "genre" and "limit" (int).
func (r *SongRepository) List(criteria map[string]any) ([]*models.PersistedSong, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE deleted_at IS NULL`
	args := []any{}

	if q, ok := criteria["query"].(string); ok && q != "" {
		query += " AND (title LIKE ? OR artist LIKE ?)"
		args = append(args, "%"+q+"%", "%"+q+"%")
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, artist)
	}

	if genre, ok := criteria["genre"].(string); ok && genre != "" {
		query += " AND genre = ? COLLATE NOCASE"
		args = append(args, genre)
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.PersistedSong
	for rows.Next() {
		song, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Count returns the number of cached songs
func (r *SongRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM songs WHERE deleted_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedSong]
func (r *SongRepository) scanOne(row *sql.Row) (*models.PersistedSong, error) {
	song, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: song", shared.ErrNotFound)
	}
	return song, err
}

func (r *SongRepository) scan(row scanner) (*models.PersistedSong, error) {
	var (
		id        string
		sequence  int
		dto       models.Song
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &dto.ID, &dto.Title, &dto.Artist, &dto.Album, &dto.Genre, &dto.Duration,
		&dto.AudioURL, &dto.AlbumArtURL, &dto.PlayCount, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewPersistedSong(sequence, dto)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
