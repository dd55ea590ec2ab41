// package tasks implements multi-step operations against the music API.
//
// The core abstraction is [Engine], which snapshots the catalogue into the local cache, imports playlists from CSV
// and exports playlists in bulk. Operations emit progress updates via channels for non-blocking status reporting to
// CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Catalog is the subset of the API client the engine needs. services.Client implements it.
type Catalog interface {
	RecentSongs(ctx context.Context) ([]models.Song, error)
	FeaturedSongs(ctx context.Context) ([]models.Song, error)
	SearchByTitle(ctx context.Context, title string) ([]models.Song, error)
	UserPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error)
	Playlist(ctx context.Context, id int64) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, name string, userID int64) (*models.Playlist, error)
	AddSongByID(ctx context.Context, playlistID, songID int64) (*models.Playlist, error)
	AppStats(ctx context.Context) (*models.AppStats, error)
}

// SongCacher persists songs locally. repositories.SongCacheAdapter implements it.
type SongCacher interface {
	CacheSong(song models.Song) error
}

// PlaylistCacher persists playlists locally. repositories.PlaylistCacheAdapter implements it.
type PlaylistCacher interface {
	CachePlaylist(playlist models.Playlist) error
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Error    error
}

// SnapshotResult contains everything fetched by [Engine.Snapshot].
type SnapshotResult struct {
	Recent          []models.Song
	Featured        []models.Song
	Playlists       []models.Playlist
	Stats           *models.AppStats
	CachedSongs     int
	CachedPlaylists int
	Errors          []EndpointResult // Failed endpoint fetches and cache writes
}

// SongMatchResult represents the result of matching a single CSV row against the catalogue.
type SongMatchResult struct {
	Original models.Song  // Row read from the CSV file
	Matched  *models.Song // Catalogue song (nil if not found)
	Error    error        // Error if the search failed
}

// ImportResult contains all data from a CSV import.
type ImportResult struct {
	Playlist        *models.Playlist
	Matches         []SongMatchResult
	SuccessCount    int     // Rows matched to a catalogue song
	FailedCount     int     // Rows without a match
	AddedCount      int     // Songs added to the playlist
	TotalSongs      int     // Rows processed
	MatchPercentage float64 // Success rate as percentage
}

type endpointOperation struct {
	name    string
	phase   Phase
	message string
	fetch   func(ctx context.Context) error
}

// Engine runs snapshot, import and export tasks.
type Engine struct {
	api       Catalog
	songs     SongCacher
	playlists PlaylistCacher
	logger    *log.Logger
}

// NewEngine creates an engine. songs and playlists may be nil, which disables caching.
func NewEngine(api Catalog, songs SongCacher, playlists PlaylistCacher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{api: api, songs: songs, playlists: playlists, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Snapshot fetches recent songs, featured songs, the user's playlists and app stats concurrently, then caches the
// songs and playlists.
//
// A failing endpoint is recorded in [SnapshotResult.Errors] and does not stop the others. Playlists are skipped when
// userID is not positive. An error is returned only when every endpoint failed or ctx was cancelled.
func (e *Engine) Snapshot(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SnapshotResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &SnapshotResult{Errors: []EndpointResult{}}

	endpoints := []endpointOperation{
		{name: "songs", phase: FetchSongs, message: "Fetching recent songs...", fetch: func(ctx context.Context) (err error) {
			result.Recent, err = e.api.RecentSongs(ctx)
			return err
		}},
		{name: "featured", phase: FetchFeatured, message: "Fetching featured songs...", fetch: func(ctx context.Context) (err error) {
			result.Featured, err = e.api.FeaturedSongs(ctx)
			return err
		}},
		{name: "stats", phase: FetchStats, message: "Fetching app stats...", fetch: func(ctx context.Context) (err error) {
			result.Stats, err = e.api.AppStats(ctx)
			return err
		}},
	}
	if userID > 0 {
		endpoints = append(endpoints, endpointOperation{
			name: "playlists", phase: FetchPlaylists, message: "Fetching playlists...",
			fetch: func(ctx context.Context) error {
				playlists, err := e.api.UserPlaylists(ctx, userID)
				if err != nil {
					return err
				}
				result.Playlists = make([]models.Playlist, 0, len(playlists))
				for _, pl := range playlists {
					// list entries omit songs
					full, err := e.api.Playlist(ctx, pl.ID)
					if err != nil {
						e.logger.Warn("playlist fetch failed", "playlist", pl.ID, "error", err)
						full = &pl
					}
					result.Playlists = append(result.Playlists, *full)
				}
				return nil
			},
		})
	}

	var mu sync.Mutex
	total := len(endpoints)
	g, gctx := errgroup.WithContext(ctx)
	for i, endpoint := range endpoints {
		g.Go(func() error {
			e.sendProgress(progress, operationUpdate(endpoint, i+1, total))
			if err := endpoint.fetch(gctx); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, EndpointResult{Endpoint: endpoint.name, Error: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if len(result.Errors) == total {
		return result, fmt.Errorf("%w: every snapshot endpoint failed: %w", shared.ErrAPIRequest, result.Errors[0].Error)
	}

	e.cache(progress, result)
	return result, nil
}

// cache writes the snapshot sequentially; the SQLite connection is not shared across goroutines.
func (e *Engine) cache(progress chan<- ProgressUpdate, result *SnapshotResult) {
	if e.songs != nil {
		songs := uniqueSongs(result.Recent, result.Featured)
		for i, song := range songs {
			e.sendProgress(progress, cacheUpdate(CacheSongs, i+1, len(songs), song.Label()))
			if err := e.songs.CacheSong(song); err != nil {
				result.Errors = append(result.Errors, EndpointResult{Endpoint: "cache:song", Error: err})
				continue
			}
			result.CachedSongs++
		}
	}

	if e.playlists != nil {
		for i, pl := range result.Playlists {
			e.sendProgress(progress, cacheUpdate(CachePlaylists, i+1, len(result.Playlists), pl.Name))
			if err := e.playlists.CachePlaylist(pl); err != nil {
				result.Errors = append(result.Errors, EndpointResult{Endpoint: "cache:playlist", Error: err})
				continue
			}
			result.CachedPlaylists++
		}
	}
}

func uniqueSongs(lists ...[]models.Song) []models.Song {
	seen := map[int64]bool{}
	out := []models.Song{}
	for _, list := range lists {
		for _, s := range list {
			if s.ID <= 0 || seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}

// ImportPlaylist reads songs (title, artist) from a CSV file, searches each title in the catalogue, creates a
// playlist named name and adds every matched song to it.
//
// Rows are matched to the search result whose artist matches best; see [BestMatch].
// No playlist is created when nothing matched.
func (e *Engine) ImportPlaylist(ctx context.Context, progress chan<- ProgressUpdate, r io.Reader, name string, userID int64) (*ImportResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	rows, err := formatter.ReadCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no songs found in CSV", shared.ErrInvalidInput)
	}

	total := len(rows)
	result := &ImportResult{TotalSongs: total}
	e.sendProgress(progress, readCSVUpdate(total, rows))
	e.sendProgress(progress, searchSongsUpdate(0, total, nil))

	matches := make([]SongMatchResult, total)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.sendProgress(progress, searchSongsUpdate(i+1, total, &row))

		candidates, err := e.api.SearchByTitle(ctx, row.Title)
		matches[i] = SongMatchResult{Original: row, Error: err}
		if err != nil {
			continue
		}
		if m := BestMatch(candidates, row); m != nil {
			matches[i].Matched = m
			result.SuccessCount++
		} else {
			matches[i].Error = fmt.Errorf("%w: %s", shared.ErrSongNotFound, row.Label())
		}
	}

	result.Matches = matches
	result.FailedCount = total - result.SuccessCount
	result.MatchPercentage = float64(result.SuccessCount) / float64(total) * 100

	if result.SuccessCount == 0 {
		return result, fmt.Errorf("%w: no songs were matched - cannot create empty playlist", shared.ErrSongNotFound)
	}

	e.sendProgress(progress, createPlaylistUpdate(1, 1, nil))
	pl, err := e.api.CreatePlaylist(ctx, name, userID)
	if err != nil {
		return result, fmt.Errorf("failed to create playlist: %w", err)
	}
	result.Playlist = pl
	e.sendProgress(progress, createPlaylistUpdate(1, 1, pl))

	added := map[int64]bool{}
	step := 0
	for _, m := range matches {
		if m.Matched == nil || added[m.Matched.ID] {
			continue
		}
		step++
		e.sendProgress(progress, addSongUpdate(step, result.SuccessCount, *m.Matched))
		if _, err := e.api.AddSongByID(ctx, pl.ID, m.Matched.ID); err != nil {
			e.logger.Warn("add song failed", "playlist", pl.ID, "song", m.Matched.ID, "error", err)
			continue
		}
		added[m.Matched.ID] = true
		result.AddedCount++
	}

	if result.AddedCount == 0 {
		return result, errors.New("playlist created but no songs could be added")
	}
	return result, nil
}

// BestMatch picks the candidate that best matches want.
//
// An exact title and artist match wins, then an exact artist, then an artist containing the wanted one. When want has
// no artist the first candidate with an equal title (or the first candidate) is used. Returns nil otherwise.
func BestMatch(candidates []models.Song, want models.Song) *models.Song {
	if len(candidates) == 0 {
		return nil
	}

	key := shared.NormalizeSongKey(want.Title, want.Artist)
	_, wantArtist, _ := strings.Cut(key, "|")
	wantTitle, _, _ := strings.Cut(key, "|")

	var artistMatch, partial, titleMatch *models.Song
	for i := range candidates {
		c := &candidates[i]
		ckey := shared.NormalizeSongKey(c.Title, c.Artist)
		if ckey == key {
			return c
		}
		ctitle, cartist, _ := strings.Cut(ckey, "|")
		switch {
		case wantArtist != "" && cartist == wantArtist && artistMatch == nil:
			artistMatch = c
		case wantArtist != "" && strings.Contains(cartist, wantArtist) && partial == nil:
			partial = c
		}
		if ctitle == wantTitle && titleMatch == nil {
			titleMatch = c
		}
	}

	switch {
	case artistMatch != nil:
		return artistMatch
	case partial != nil:
		return partial
	case wantArtist != "":
		return nil
	case titleMatch != nil:
		return titleMatch
	default:
		return &candidates[0]
	}
}

func newExport(pl *models.Playlist) *models.PlaylistExport {
	songs := pl.Songs
	if songs == nil {
		songs = []models.Song{}
	}
	return &models.PlaylistExport{Playlist: *pl, Songs: songs, ExportedAt: time.Now()}
}
