// Package models defines the records exchanged with the music API and the entities kept in the local cache.
//
// The package contains three categories of types:
//
// 1. Data Transfer Objects (DTOs): mirrors of API response bodies
//   - [Song] : Song metadata including the audio and album art links
//   - [Playlist] : Playlist metadata with its ordered songs
//   - [User] : Account returned by login, register and /me
//   - [AdminStats], [AppStats], [ShareInfo], [ResetRequest], [ResetTokenStatus]
//
// 2. Client state: records owned by this program
//   - [Session] : Bearer token, user and token expiry kept in local storage
//   - [HistoryEntry] : One play history item
//
// 3. Persistent Entities: rows in the SQLite cache
//   - [PersistedSong] : Cached song keyed by its remote id
//   - [PersistedPlaylist] : Cached playlist keyed by its remote id
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
package models
