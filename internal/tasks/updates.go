package tasks

import (
	"fmt"

	"github.com/desertthunder/musicx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchSongs Phase = iota
	FetchFeatured
	FetchPlaylists
	FetchStats
	CacheSongs
	CachePlaylists
	ReadCSV
	SearchSongs
	CreatePlaylist
	AddSongs
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchSongs:
		return "fetch_songs"
	case FetchFeatured:
		return "fetch_featured"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchStats:
		return "fetch_stats"
	case CacheSongs:
		return "cache_songs"
	case CachePlaylists:
		return "cache_playlists"
	case ReadCSV:
		return "read_csv"
	case SearchSongs:
		return "search_songs"
	case CreatePlaylist:
		return "create_playlist"
	case AddSongs:
		return "add_songs"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func cacheUpdate(phase Phase, step, total int, label string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Caching %s", step, total, label),
	}
}

func readCSVUpdate(count int, songs []models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadCSV,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Read %d songs from CSV", count),
		Data:    songs,
	}
}

func searchSongsUpdate(step, total int, song *models.Song) ProgressUpdate {
	if song == nil {
		return ProgressUpdate{
			Phase:   SearchSongs,
			Step:    step,
			Total:   total,
			Message: "Searching the catalogue...",
		}
	}
	return ProgressUpdate{
		Phase:   SearchSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, song.Label()),
	}
}

func createPlaylistUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	if pl == nil {
		return ProgressUpdate{
			Phase:   CreatePlaylist,
			Step:    step,
			Total:   total,
			Message: "Creating playlist...",
		}
	}
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Playlist created: %s (ID: %d)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func addSongUpdate(step, total int, song models.Song) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddSongs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %s", step, total, song.Label()),
	}
}

func fetchingPlaylistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    1,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d playlists...", total),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
