package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if _, err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testSong(id int64, title, artist string) models.Song {
	return models.Song{ID: id, Title: title, Artist: artist, Genre: "Rock", DurationSeconds: 200, AudioURL: "http://audio/" + title}
}

func TestSongRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, testSong(7, "Clocks", "Coldplay"))

		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}
		if song.ID() == "" {
			t.Error("song ID should be set after creation")
		}
		if song.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", song.Sequence())
		}

		retrieved, err := repo.Get(song.ID())
		if err != nil {
			t.Fatalf("failed to get song: %v", err)
		}
		if retrieved.RemoteID() != 7 {
			t.Errorf("expected remote id 7, got %d", retrieved.RemoteID())
		}
		if retrieved.Duration() != 200 {
			t.Errorf("expected duration 200, got %d", retrieved.Duration())
		}

		byRemote, err := repo.GetByRemoteID(7)
		if err != nil {
			t.Fatalf("failed to get song by remote id: %v", err)
		}
		if byRemote.ID() != song.ID() {
			t.Errorf("expected ID %s, got %s", song.ID(), byRemote.ID())
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, testSong(1, "Yellow", "Coldplay"))
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		updated := testSong(1, "Yellow", "Coldplay")
		updated.PlayCount = 42
		song.SetSong(updated)
		if err := repo.Update(song); err != nil {
			t.Fatalf("failed to update song: %v", err)
		}

		retrieved, _ := repo.Get(song.ID())
		if retrieved.PlayCount() != 42 {
			t.Errorf("expected play count 42, got %d", retrieved.PlayCount())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		song := models.NewPersistedSong(0, testSong(1, "Yellow", "Coldplay"))
		if err := repo.Create(song); err != nil {
			t.Fatalf("failed to create song: %v", err)
		}

		if err := repo.Delete(song.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}
		if _, err := repo.Get(song.ID()); err == nil {
			t.Error("expected error when getting deleted song")
		}

		restored, err := repo.Restore(1)
		if err != nil {
			t.Fatalf("failed to restore song: %v", err)
		}
		if restored.DeletedAt() != nil {
			t.Error("restored song should not be deleted")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		for i, s := range []models.Song{
			testSong(1, "Yellow", "Coldplay"),
			testSong(2, "Clocks", "Coldplay"),
			testSong(3, "Creep", "Radiohead"),
		} {
			if err := repo.Create(models.NewPersistedSong(0, s)); err != nil {
				t.Fatalf("failed to create song %d: %v", i, err)
			}
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{"all", nil, 3},
			{"artist", map[string]any{"artist": "coldplay"}, 2},
			{"query", map[string]any{"query": "cre"}, 1},
			{"limit", map[string]any{"limit": 2}, 2},
			{"genre", map[string]any{"genre": "jazz"}, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				songs, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list songs: %v", err)
				}
				if len(songs) != tt.want {
					t.Errorf("expected %d songs, got %d", tt.want, len(songs))
				}
			})
		}

		songs, _ := repo.List(nil)
		if songs[0].Title() != "Yellow" {
			t.Errorf("expected songs in insertion order, first is %s", songs[0].Title())
		}

		n, err := repo.Count()
		if err != nil || n != 3 {
			t.Errorf("expected count 3, got %d (%v)", n, err)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewPersistedPlaylist(0, models.Playlist{
			ID:     10,
			Name:   "Road Trip",
			UserID: 3,
			Public: true,
			Songs:  []models.Song{{ID: 2}, {ID: 1}, {ID: 2}},
		})

		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		retrieved, err := repo.GetByRemoteID(10)
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		if retrieved.Name() != "Road Trip" || !retrieved.Public() {
			t.Errorf("unexpected playlist: %+v", retrieved.Playlist())
		}

		ids := retrieved.SongIDs()
		if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
			t.Errorf("expected song ids [2 1], got %v", ids)
		}
	})

	t.Run("Update Replaces Songs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewPlaylistRepository(db)
		playlist := models.NewPersistedPlaylist(0, models.Playlist{ID: 1, Name: "Mix", Songs: []models.Song{{ID: 1}, {ID: 2}}})
		if err := repo.Create(playlist); err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}

		playlist.SetPlaylist(models.Playlist{Name: "Mix v2", Songs: []models.Song{{ID: 3}}})
		if err := repo.Update(playlist); err != nil {
			t.Fatalf("failed to update playlist: %v", err)
		}

		retrieved, _ := repo.Get(playlist.ID())
		if retrieved.Name() != "Mix v2" {
			t.Errorf("expected name 'Mix v2', got %s", retrieved.Name())
		}
		if ids := retrieved.SongIDs(); len(ids) != 1 || ids[0] != 3 {
			t.Errorf("expected song ids [3], got %v", ids)
		}
	})

	t.Run("List & Songs", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongRepository(db)
		for _, s := range []models.Song{testSong(1, "Yellow", "Coldplay"), testSong(2, "Creep", "Radiohead")} {
			if err := songs.Create(models.NewPersistedSong(0, s)); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
		}

		repo := NewPlaylistRepository(db)
		for _, p := range []models.Playlist{
			{ID: 1, Name: "Mine", UserID: 5, Songs: []models.Song{{ID: 2}, {ID: 99}, {ID: 1}}},
			{ID: 2, Name: "Theirs", UserID: 6},
		} {
			if err := repo.Create(models.NewPersistedPlaylist(0, p)); err != nil {
				t.Fatalf("failed to create playlist: %v", err)
			}
		}

		mine, err := repo.List(map[string]any{"user_id": int64(5)})
		if err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}
		if len(mine) != 1 || mine[0].Name() != "Mine" {
			t.Fatalf("expected only 'Mine', got %d playlists", len(mine))
		}
		if mine[0].SongCount() != 3 {
			t.Errorf("expected song count 3, got %d", mine[0].SongCount())
		}

		cached, err := repo.Songs(mine[0].ID())
		if err != nil {
			t.Fatalf("failed to get playlist songs: %v", err)
		}
		if len(cached) != 2 || cached[0].Title != "Creep" || cached[1].Title != "Yellow" {
			t.Errorf("expected [Creep Yellow] skipping uncached songs, got %+v", cached)
		}
	})
}

func TestCacheAdapters(t *testing.T) {
	t.Run("CacheSong Deduplicates By Remote ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		adapter := NewSongCacheAdapter(repo)

		if err := adapter.CacheSong(testSong(1, "Yellow", "Coldplay")); err != nil {
			t.Fatalf("failed to cache song: %v", err)
		}

		again := testSong(1, "Yellow", "Coldplay")
		again.PlayCount = 9
		if err := adapter.CacheSong(again); err != nil {
			t.Fatalf("failed to cache song again: %v", err)
		}
		if err := adapter.CacheSong(models.Song{Title: "no id"}); err != nil {
			t.Fatalf("songs without id should be ignored: %v", err)
		}

		songs, _ := repo.List(nil)
		if len(songs) != 1 {
			t.Fatalf("expected 1 cached song, got %d", len(songs))
		}
		if songs[0].PlayCount() != 9 {
			t.Errorf("expected refreshed play count 9, got %d", songs[0].PlayCount())
		}
	})

	t.Run("CacheSong Restores Deleted", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewSongRepository(db)
		adapter := NewSongCacheAdapter(repo)

		if err := adapter.CacheSong(testSong(1, "Yellow", "Coldplay")); err != nil {
			t.Fatalf("failed to cache song: %v", err)
		}
		existing, _ := repo.GetByRemoteID(1)
		if err := repo.Delete(existing.ID()); err != nil {
			t.Fatalf("failed to delete song: %v", err)
		}

		if err := adapter.CacheSong(testSong(1, "Yellow", "Coldplay")); err != nil {
			t.Fatalf("failed to re-cache song: %v", err)
		}
		if _, err := repo.GetByRemoteID(1); err != nil {
			t.Errorf("expected song to be restored: %v", err)
		}
	})

	t.Run("CachePlaylist", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		songs := NewSongRepository(db)
		playlists := NewPlaylistRepository(db)
		adapter := NewPlaylistCacheAdapter(playlists, NewSongCacheAdapter(songs))

		pl := models.Playlist{ID: 4, Name: "Chill", Songs: []models.Song{testSong(1, "Yellow", "Coldplay")}}
		if err := adapter.CachePlaylist(pl); err != nil {
			t.Fatalf("failed to cache playlist: %v", err)
		}

		pl.Name = "Chill Out"
		pl.Songs = nil
		if err := adapter.CachePlaylist(pl); err != nil {
			t.Fatalf("failed to refresh playlist: %v", err)
		}

		cached, err := playlists.GetByRemoteID(4)
		if err != nil {
			t.Fatalf("failed to get cached playlist: %v", err)
		}
		if cached.Name() != "Chill Out" {
			t.Errorf("expected name 'Chill Out', got %s", cached.Name())
		}
		if ids := cached.SongIDs(); len(ids) != 1 || ids[0] != 1 {
			t.Errorf("song ids should survive a refresh without songs, got %v", ids)
		}
		if n, _ := songs.Count(); n != 1 {
			t.Errorf("expected embedded song to be cached, got %d songs", n)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seq1, err := NextSequence(db, "songs")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}

	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "songs")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}

	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	playlistSeq, err := NextSequence(db, "playlists")
	if err != nil {
		t.Fatalf("failed to get playlist sequence: %v", err)
	}

	if playlistSeq != 1 {
		t.Errorf("expected first playlist sequence to be 1, got %d", playlistSeq)
	}
}
