package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/musicx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsFetched MsgKind = iota
	MsgPlaylistsFetched
	MsgPlaylistFetched
	MsgRecommendationsFetched
	MsgHistoryLoaded
	MsgAdminStatsFetched
	MsgPlaybackStarted
	MsgPlaybackFinished
	MsgSongAdded
	MsgLoggedIn
	MsgResetRequested
	MsgResetTokenVerified
	MsgPasswordReset
)

type songsData struct {
	title string
	songs []models.Song
	err   error
}

// songsFetchedMsg is the constructor for [MsgSongsFetched]
func songsFetchedMsg(title string, songs []models.Song, err error) Msg {
	return Msg{kind: MsgSongsFetched, data: songsData{title, songs, err}}
}

type playlistsData struct {
	playlists []models.Playlist
	err       error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsData{playlists, err}}
}

type playlistData struct {
	playlist *models.Playlist
	err      error
}

// playlistFetchedMsg is the constructor for [MsgPlaylistFetched]
func playlistFetchedMsg(playlist *models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistFetched, data: playlistData{playlist, err}}
}

type recommendationsData struct {
	song models.Song
	recs []models.Recommendation
	err  error
}

// recommendationsFetchedMsg is the constructor for [MsgRecommendationsFetched]
func recommendationsFetchedMsg(song models.Song, recs []models.Recommendation, err error) Msg {
	return Msg{kind: MsgRecommendationsFetched, data: recommendationsData{song, recs, err}}
}

type historyData struct {
	entries []models.HistoryEntry
	err     error
}

// historyLoadedMsg is the constructor for [MsgHistoryLoaded]
func historyLoadedMsg(entries []models.HistoryEntry, err error) Msg {
	return Msg{kind: MsgHistoryLoaded, data: historyData{entries, err}}
}

type adminStatsData struct {
	stats *models.AdminStats
	err   error
}

// adminStatsFetchedMsg is the constructor for [MsgAdminStatsFetched]
func adminStatsFetchedMsg(stats *models.AdminStats, err error) Msg {
	return Msg{kind: MsgAdminStatsFetched, data: adminStatsData{stats, err}}
}

type playbackData struct {
	song models.Song
	done <-chan error
	err  error
}

// playbackStartedMsg is the constructor for [MsgPlaybackStarted]
func playbackStartedMsg(song models.Song, done <-chan error, err error) Msg {
	return Msg{kind: MsgPlaybackStarted, data: playbackData{song: song, done: done, err: err}}
}

// playbackFinishedMsg is the constructor for [MsgPlaybackFinished]. done identifies the finished process.
func playbackFinishedMsg(done <-chan error, err error) Msg {
	return Msg{kind: MsgPlaybackFinished, data: playbackData{done: done, err: err}}
}

type songAddedData struct {
	playlist *models.Playlist
	song     models.Song
	err      error
}

// songAddedMsg is the constructor for [MsgSongAdded]
func songAddedMsg(playlist *models.Playlist, song models.Song, err error) Msg {
	return Msg{kind: MsgSongAdded, data: songAddedData{playlist, song, err}}
}

type loginData struct {
	session *models.Session
	err     error
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(session *models.Session, err error) Msg {
	return Msg{kind: MsgLoggedIn, data: loginData{session, err}}
}

type resetData struct {
	reset *models.ResetRequest
	err   error
}

// resetRequestedMsg is the constructor for [MsgResetRequested]
func resetRequestedMsg(reset *models.ResetRequest, err error) Msg {
	return Msg{kind: MsgResetRequested, data: resetData{reset, err}}
}

type tokenData struct {
	token  string
	status *models.ResetTokenStatus
	err    error
}

// resetTokenVerifiedMsg is the constructor for [MsgResetTokenVerified]
func resetTokenVerifiedMsg(token string, status *models.ResetTokenStatus, err error) Msg {
	return Msg{kind: MsgResetTokenVerified, data: tokenData{token, status, err}}
}

// passwordResetMsg is the constructor for [MsgPasswordReset]
func passwordResetMsg(err error) Msg {
	return Msg{kind: MsgPasswordReset, data: err}
}
