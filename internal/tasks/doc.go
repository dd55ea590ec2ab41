// Package tasks runs multi-step operations against the music API with real-time progress reporting.
//
// # Operations
//
//  1. [Engine.Snapshot] : Refresh the local cache
//     - Fetches recent songs, featured songs, app stats and (when logged in) the user's playlists concurrently
//     - Caches every song and playlist into SQLite
//     - Collects per-endpoint failures instead of aborting
//
//  2. [Engine.ImportPlaylist] : Build a playlist from a CSV file
//     - Reads title/artist rows (see formatter.ReadCSV)
//     - Searches each title and keeps the result whose artist matches best ([BestMatch])
//     - Creates the playlist and adds every matched song once
//
//  3. [Engine.BulkExport] : Export many playlists to files
//     - Fetches playlists under a rate limit and writes them with a worker pool
//     - Writes export_manifest.json summarizing successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking, so a nil or full channel only drops updates.
//
// # Caching
//
// The optional [SongCacher] and [PlaylistCacher] interfaces are implemented by the repositories cache adapters.
// Cache writes happen after the concurrent fetches, one at a time.
package tasks
