// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is organised in tabs:
//  1. [SongsView] : Recent and featured songs, search by title or artist
//  2. [QueueView] : The play queue; songs are added with e from any list
//  3. [PlaylistsView] : The user's playlists, opening into [PlaylistSongsView]
//  4. [HistoryView] : Locally recorded play history
//  5. [AdminView] : Dashboard statistics, shown to admins only
//  6. [AccountView] : Login, password recovery and logout
//
// [RecommendationsView] opens from any song list. Selecting a song queues the whole list and plays from it;
// the now-playing bar tracks the [player.Player], which advances when a song finishes.
//
// The [Model] implements bubbletea's Init/Update/View, receiving API results via the Msg union type.
// Every API call runs inside a tea.Cmd so the interface never blocks on the network.
package ui
