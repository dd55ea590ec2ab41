// Package repositories implements the SQLite cache of API data.
//
// Key Implementations:
//   - [SongRepository] : songs keyed by a local UUID and unique on the API song id
//   - [PlaylistRepository] : playlists plus their ordered song ids in playlist_songs
//   - [SongCacheAdapter] and [PlaylistCacheAdapter] : insert-or-refresh helpers used by the sync task
//
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
