// Package storage keeps client state between runs in a bbolt file: the authenticated session and the
// per-user play history. It plays the role local storage plays for the browser client.
//
// Buckets:
//   - session : a single JSON encoded [models.Session] under the "current" key
//   - history : one nested bucket per user key ("guest" for anonymous listeners), holding
//     [models.HistoryEntry] values keyed by play time so a reverse cursor walk yields most-recent-first
package storage
