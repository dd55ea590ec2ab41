package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/repositories"
	"github.com/desertthunder/musicx/internal/shared"
	th "github.com/desertthunder/musicx/internal/testing"
)

type fakeCache struct {
	mu        sync.Mutex
	songs     []models.Song
	playlists []models.Playlist
	err       error
}

func (f *fakeCache) CacheSong(song models.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.songs = append(f.songs, song)
	return nil
}

func (f *fakeCache) CachePlaylist(playlist models.Playlist) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.playlists = append(f.playlists, playlist)
	return nil
}

func catalogue() []models.Song {
	return []models.Song{
		{ID: 1, Title: "Yellow", Artist: "Coldplay"},
		{ID: 2, Title: "Clocks", Artist: "Coldplay"},
		{ID: 3, Title: "Creep", Artist: "Radiohead"},
		{ID: 4, Title: "Yellow", Artist: "Yellow Tribute Band"},
	}
}

func TestEngine_Snapshot(t *testing.T) {
	tests := []struct {
		name          string
		api           *th.MockAPI
		userID        int64
		cacheErr      error
		wantErr       bool
		wantErrors    []string
		wantSongs     int
		wantPlaylists int
	}{
		{
			name: "every endpoint succeeds",
			api: &th.MockAPI{
				Songs:     catalogue(),
				Playlists: []models.Playlist{{ID: 7, Name: "Mix", Songs: catalogue()[:2]}},
				App:       &models.AppStats{TotalSongs: 4},
			},
			userID:        1,
			wantSongs:     4,
			wantPlaylists: 1,
		},
		{
			name:      "anonymous user skips playlists",
			api:       &th.MockAPI{Songs: catalogue(), Playlists: []models.Playlist{{ID: 7, Name: "Mix"}}},
			wantSongs: 4,
		},
		{
			name: "failed endpoint is collected",
			api: &th.MockAPI{
				Songs: catalogue(),
				Fail:  map[string]error{"FeaturedSongs": errors.New("boom"), "AppStats": errors.New("down")},
			},
			userID:     1,
			wantErrors: []string{"featured", "stats"},
			wantSongs:  4,
		},
		{
			name:       "every endpoint fails",
			api:        &th.MockAPI{Err: shared.ErrServiceUnavailable},
			userID:     1,
			wantErr:    true,
			wantErrors: []string{"featured", "playlists", "songs", "stats"},
		},
		{
			name:       "cache failures are collected",
			api:        &th.MockAPI{Songs: catalogue()[:1]},
			cacheErr:   errors.New("disk full"),
			wantErrors: []string{"cache:song"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &fakeCache{err: tt.cacheErr}
			engine := NewEngine(tt.api, cache, cache, nil)

			result, err := engine.Snapshot(context.Background(), drain(t), tt.userID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Snapshot() error = %v, wantErr %v", err, tt.wantErr)
			}

			var got []string
			for _, e := range result.Errors {
				got = append(got, e.Endpoint)
			}
			if !sameSet(got, tt.wantErrors) {
				t.Errorf("expected errors from %v, got %v", tt.wantErrors, got)
			}

			if result.CachedSongs != tt.wantSongs || len(cache.songs) != tt.wantSongs {
				t.Errorf("expected %d cached songs, got %d (%d in cache)", tt.wantSongs, result.CachedSongs, len(cache.songs))
			}
			if result.CachedPlaylists != tt.wantPlaylists {
				t.Errorf("expected %d cached playlists, got %d", tt.wantPlaylists, result.CachedPlaylists)
			}
		})
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := map[string]int{}
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}

func TestEngine_SnapshotIntoSQLite(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()
	if _, err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	songRepo := repositories.NewSongRepository(db)
	playlistRepo := repositories.NewPlaylistRepository(db)
	songs := repositories.NewSongCacheAdapter(songRepo)
	playlists := repositories.NewPlaylistCacheAdapter(playlistRepo, songs)

	api := &th.MockAPI{
		Songs:     catalogue(),
		Playlists: []models.Playlist{{ID: 7, Name: "Mix", Songs: []models.Song{catalogue()[2], catalogue()[0]}}},
	}
	engine := NewEngine(api, songs, playlists, nil)

	for range 2 {
		if _, err := engine.Snapshot(context.Background(), nil, 1); err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
	}

	count, err := songRepo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 4 {
		t.Errorf("repeated snapshots should not duplicate songs, got %d", count)
	}

	cached, err := playlistRepo.GetByRemoteID(7)
	if err != nil {
		t.Fatalf("playlist not cached: %v", err)
	}
	ordered, err := playlistRepo.Songs(cached.ID())
	if err != nil {
		t.Fatalf("Songs failed: %v", err)
	}
	if len(ordered) != 2 || ordered[0].Title != "Creep" || ordered[1].Title != "Yellow" {
		t.Errorf("unexpected cached playlist songs: %+v", ordered)
	}
}

func TestEngine_ImportPlaylist(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		api         *th.MockAPI
		wantErr     error
		wantAdded   []int64
		wantMatched int
		wantFailed  int
	}{
		{
			name:        "matches by artist",
			csv:         "Title,Artist\nYellow,Coldplay\nCreep,Radiohead\nUnknown Song,Nobody\n",
			api:         &th.MockAPI{Songs: catalogue()},
			wantAdded:   []int64{1, 3},
			wantMatched: 2,
			wantFailed:  1,
		},
		{
			name:        "duplicate rows are added once",
			csv:         "title,artist\nClocks,Coldplay\nclocks,COLDPLAY\n",
			api:         &th.MockAPI{Songs: catalogue()},
			wantAdded:   []int64{2},
			wantMatched: 2,
		},
		{
			name:       "nothing matched",
			csv:        "Title,Artist\nUnknown,Nobody\n",
			api:        &th.MockAPI{Songs: catalogue()},
			wantErr:    shared.ErrSongNotFound,
			wantFailed: 1,
		},
		{
			name:    "empty csv",
			csv:     "Title,Artist\n",
			api:     &th.MockAPI{Songs: catalogue()},
			wantErr: shared.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.api, nil, nil, nil)
			result, err := engine.ImportPlaylist(context.Background(), drain(t), strings.NewReader(tt.csv), "Imported", 1)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("ImportPlaylist failed: %v", err)
			}

			if result == nil {
				return
			}
			if result.SuccessCount != tt.wantMatched || result.FailedCount != tt.wantFailed {
				t.Errorf("expected %d matched / %d failed, got %d / %d",
					tt.wantMatched, tt.wantFailed, result.SuccessCount, result.FailedCount)
			}

			if tt.wantErr != nil {
				if result.Playlist != nil {
					t.Error("no playlist should be created on failure")
				}
				return
			}

			added := tt.api.Added(result.Playlist.ID)
			if len(added) != len(tt.wantAdded) {
				t.Fatalf("expected %v added, got %v", tt.wantAdded, added)
			}
			for i := range added {
				if added[i] != tt.wantAdded[i] {
					t.Errorf("expected %v added, got %v", tt.wantAdded, added)
				}
			}
			if result.Playlist.Name != "Imported" {
				t.Errorf("unexpected playlist name %q", result.Playlist.Name)
			}
		})
	}

	t.Run("missing name", func(t *testing.T) {
		_, err := NewEngine(&th.MockAPI{}, nil, nil, nil).ImportPlaylist(context.Background(), nil, strings.NewReader("a"), " ", 1)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("progress is reported", func(t *testing.T) {
		progress := make(chan ProgressUpdate, 100)
		api := &th.MockAPI{Songs: catalogue()}
		if _, err := NewEngine(api, nil, nil, nil).ImportPlaylist(context.Background(), progress, strings.NewReader("Creep,Radiohead\n"), "P", 1); err != nil {
			t.Fatalf("ImportPlaylist failed: %v", err)
		}
		close(progress)

		phases := map[Phase]bool{}
		for u := range progress {
			phases[u.Phase] = true
		}
		for _, p := range []Phase{ReadCSV, SearchSongs, CreatePlaylist, AddSongs} {
			if !phases[p] {
				t.Errorf("missing %s progress", p)
			}
		}
	})
}

func TestBestMatch(t *testing.T) {
	songs := catalogue()
	tests := []struct {
		name string
		want models.Song
		id   int64
	}{
		{"exact", models.Song{Title: "Yellow", Artist: "Coldplay"}, 1},
		{"case and spacing", models.Song{Title: " yellow ", Artist: "YELLOW  tribute band"}, 4},
		{"artist only", models.Song{Title: "Yellow (Live)", Artist: "Coldplay"}, 1},
		{"partial artist", models.Song{Title: "Yellow", Artist: "Tribute"}, 4},
		{"no artist", models.Song{Title: "Creep"}, 3},
		{"wrong artist", models.Song{Title: "Yellow", Artist: "Muse"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BestMatch(songs, tt.want)
			if tt.id == 0 {
				if got != nil {
					t.Errorf("expected no match, got %+v", got)
				}
				return
			}
			if got == nil || got.ID != tt.id {
				t.Errorf("expected song %d, got %+v", tt.id, got)
			}
		})
	}

	if BestMatch(nil, models.Song{Title: "x"}) != nil {
		t.Error("expected nil for no candidates")
	}
}

func TestPhaseString(t *testing.T) {
	if FetchSongs.String() != "fetch_songs" || ExportPlaylist.String() != "export_playlist" {
		t.Error("unexpected phase names")
	}
	if Phase(99).String() != "" {
		t.Error("unknown phase should be empty")
	}
}
