package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

var (
	_ list.Item = songItem{}
	_ list.Item = playlistItem{}
	_ list.Item = historyItem{}
	_ list.Item = recommendationItem{}
)

// songer is implemented by every item that can be queued for playback.
type songer interface {
	Song() models.Song
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) Song() models.Song   { return i.song }
func (i songItem) FilterValue() string { return i.song.Title }
func (i songItem) Title() string {
	if !i.song.Playable() {
		return i.song.Title + " (no audio)"
	}
	return i.song.Title
}
func (i songItem) Description() string {
	desc := i.song.Artist
	if i.song.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Album)
	}
	if n := i.song.Length(); n > 0 {
		desc = fmt.Sprintf("%s • %s", desc, shared.FormatDuration(n))
	}
	return desc
}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d songs • %s", i.playlist.Count(), shared.VisibilityString(i.playlist.Public))
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// historyItem wraps [models.HistoryEntry] to implement [list.Item].
type historyItem struct {
	entry models.HistoryEntry
}

func (i historyItem) Song() models.Song   { return i.entry.Song }
func (i historyItem) FilterValue() string { return i.entry.Song.Title }
func (i historyItem) Title() string       { return i.entry.Song.Title }
func (i historyItem) Description() string {
	return fmt.Sprintf("%s • played %s", i.entry.Song.Artist, i.entry.PlayedAt.Local().Format("Jan 2 15:04"))
}

// recommendationItem wraps [models.Recommendation] to implement [list.Item].
type recommendationItem struct {
	rec models.Recommendation
}

func (i recommendationItem) Song() models.Song   { return i.rec.Song }
func (i recommendationItem) FilterValue() string { return i.rec.Title }
func (i recommendationItem) Title() string       { return i.rec.Title }
func (i recommendationItem) Description() string {
	if i.rec.Reason != "" {
		return fmt.Sprintf("%s • %s", i.rec.Artist, i.rec.Reason)
	}
	return i.rec.Artist
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, s := range songs {
		items[i] = songItem{song: s}
	}
	return items
}

// songsOf returns the songs of every playable-item in l, in list order.
func songsOf(l list.Model) []models.Song {
	songs := []models.Song{}
	for _, item := range l.Items() {
		if s, ok := item.(songer); ok {
			songs = append(songs, s.Song())
		}
	}
	return songs
}

func newList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}
