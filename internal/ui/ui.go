package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/player"
	"github.com/desertthunder/musicx/internal/services"
	"github.com/desertthunder/musicx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongsView ViewState = iota
	PlaylistsView
	PlaylistSongsView
	RecommendationsView
	HistoryView
	AdminView
	AccountView
	QueueView
)

func (v ViewState) String() string {
	switch v {
	case SongsView:
		return "Songs"
	case PlaylistsView, PlaylistSongsView:
		return "Playlists"
	case RecommendationsView:
		return "For you"
	case HistoryView:
		return "History"
	case AdminView:
		return "Admin"
	case AccountView:
		return "Account"
	case QueueView:
		return "Queue"
	default:
		return ""
	}
}

// Store is the local storage read by the TUI; storage.Store implements it.
type Store interface {
	Session() (*models.Session, error)
	SaveSession(session *models.Session) error
	ClearSession() error
	History(userKey string) ([]models.HistoryEntry, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	api    services.API
	player *player.Player
	store  Store
	logger *log.Logger

	session *models.Session
	view    ViewState
	width   int
	height  int

	songs         list.Model
	playlists     list.Model
	playlistSongs list.Model
	queue         list.Model
	recs          list.Model
	history       list.Model
	playlist      *models.Playlist
	adminStats    *models.AdminStats
	search        textinput.Model
	account       accountForm

	adding   *models.Song // song waiting for a playlist to be picked
	addFrom  ViewState
	recsFrom ViewState

	loading   bool
	spinner   spinner.Model
	status    string
	statusErr bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model. The stored session, when valid, logs the user in.
func NewModel(ctx context.Context, api services.API, p *player.Player, store Store, logger *log.Logger) *Model {
	ctx, cancel := context.WithCancel(ctx)
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	search := textinput.New()
	search.Placeholder = "Search by title, or artist:name"
	search.CharLimit = 156
	search.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:           ctx,
		cancel:        cancel,
		api:           api,
		player:        p,
		store:         store,
		logger:        logger,
		view:          SongsView,
		songs:         newList("Recent songs", nil),
		playlists:     newList("Your playlists", nil),
		playlistSongs: newList("Playlist", nil),
		queue:         newList("Queue", nil),
		recs:          newList("Recommendations", nil),
		history:       newList("Recently played", nil),
		search:        search,
		account:       newAccountForm(loginForm),
		loading:       true,
		spinner:       sp,
		help:          help.New(),
		keys:          newKeyMap(),
	}

	if session, err := store.Session(); err == nil {
		m.session = session
	} else if errors.Is(err, shared.ErrTokenExpired) {
		m.setStatus("Your session expired, log in again from the Account view.", true)
	}
	p.SetUser(m.session.HistoryKey())
	return m
}

// Init fetches the recent songs.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSongs("Recent songs", m.api.RecentSongs))
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		wasLoading := m.loading
		model, cmd := m.handleKey(msg)
		if m.loading && !wasLoading {
			cmd = tea.Batch(cmd, m.spinner.Tick)
		}
		return model, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

// View renders the tabs, the active view, the now-playing bar, the status line and help.
func (m *Model) View() string {
	var body string
	switch m.view {
	case SongsView:
		body = m.search.View() + "\n" + m.listView(m.songs)
	case PlaylistsView:
		if m.session == nil {
			body = styles.warn.Render("Log in from the Account view to see your playlists.")
		} else {
			body = m.listView(m.playlists)
		}
	case PlaylistSongsView:
		body = m.listView(m.playlistSongs)
	case RecommendationsView:
		body = m.listView(m.recs)
	case HistoryView:
		body = m.listView(m.history)
	case QueueView:
		if len(m.queue.Items()) == 0 {
			body = styles.warn.Render("The queue is empty. Press e on a song to queue it.")
		} else {
			body = m.listView(m.queue)
		}
	case AdminView:
		body = m.renderAdmin()
	case AccountView:
		body = m.renderAccount()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(),
		body,
		m.renderNowPlaying(),
		m.renderStatus(),
		m.help.ShortHelpView(m.helpKeys()),
	)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.search.Focused() {
		switch msg.String() {
		case "enter":
			m.search.Blur()
			return m, m.runSearch(m.search.Value())
		case "esc":
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	if m.view == AccountView && m.session == nil {
		switch {
		case key.Matches(msg, m.keys.tab):
			return m, m.nextView()
		case key.Matches(msg, m.keys.forgot):
			if m.account.mode == loginForm {
				m.account = newAccountForm(forgotForm)
			} else {
				m.account = newAccountForm(loginForm)
			}
			return m, textinput.Blink
		case key.Matches(msg, m.keys.back):
			if m.account.mode != loginForm {
				m.account = newAccountForm(loginForm)
			}
			return m, nil
		}
		submit, cmd := m.account.Update(msg)
		if submit {
			return m, m.submitAccount()
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.tab):
		return m, m.nextView()
	case key.Matches(msg, m.keys.back):
		return m, m.goBack()
	case key.Matches(msg, m.keys.search):
		m.cancelAdding()
		m.view = SongsView
		m.search.SetValue("")
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.featured):
		m.cancelAdding()
		m.view = SongsView
		return m, m.fetchSongs("Featured songs", m.api.FeaturedSongs)
	case key.Matches(msg, m.keys.recommend):
		if song, ok := m.selectedSong(); ok {
			m.recsFrom = m.view
			return m, m.fetchRecommendations(song)
		}
		return m, nil
	case key.Matches(msg, m.keys.pause):
		return m, m.togglePause()
	case key.Matches(msg, m.keys.next):
		return m, m.skip(m.player.Next)
	case key.Matches(msg, m.keys.prev):
		return m, m.skip(m.player.Prev)
	case key.Matches(msg, m.keys.shuffle):
		if m.player.ToggleShuffle() {
			m.setStatus("Shuffle on", false)
		} else {
			m.setStatus("Shuffle off", false)
		}
		return m, nil
	case key.Matches(msg, m.keys.repeat):
		m.setStatus("Repeat "+m.player.CycleRepeat().String(), false)
		return m, nil
	case key.Matches(msg, m.keys.add):
		return m, m.startAdding()
	case key.Matches(msg, m.keys.enqueue) && m.view != QueueView:
		m.enqueue()
		return m, nil
	case key.Matches(msg, m.keys.remove) && m.view == QueueView:
		m.removeFromQueue()
		return m, nil
	case key.Matches(msg, m.keys.clear) && m.view == QueueView:
		if err := m.player.Clear(); err != nil {
			m.fail(err)
		} else {
			m.setStatus("Queue cleared.", false)
		}
		m.refreshQueue()
		return m, nil
	case key.Matches(msg, m.keys.logout) && m.view == AccountView:
		return m, m.logout()
	case key.Matches(msg, m.keys.enter):
		return m, m.selectItem()
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSongsFetched:
		d := msg.data.(songsData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.songs.SetItems(songItems(d.songs))
		m.songs.Title = fmt.Sprintf("%s (%d)", d.title, len(d.songs))
		m.songs.ResetSelected()
		if len(d.songs) == 0 {
			m.setStatus("No songs found.", false)
		}

	case MsgPlaylistsFetched:
		d := msg.data.(playlistsData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		items := make([]list.Item, len(d.playlists))
		for i, pl := range d.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlists.SetItems(items)
		if len(d.playlists) == 0 {
			m.setStatus("You have no playlists yet.", false)
		}

	case MsgPlaylistFetched:
		d := msg.data.(playlistData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.playlist = d.playlist
		m.playlistSongs.SetItems(songItems(d.playlist.Songs))
		m.playlistSongs.Title = fmt.Sprintf("%s (%d songs)", d.playlist.Name, len(d.playlist.Songs))
		m.playlistSongs.ResetSelected()
		m.view = PlaylistSongsView

	case MsgRecommendationsFetched:
		d := msg.data.(recommendationsData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		if len(d.recs) == 0 {
			m.setStatus(fmt.Sprintf("No recommendations for %s.", d.song.Label()), false)
			return m, nil
		}
		items := make([]list.Item, len(d.recs))
		for i, r := range d.recs {
			items[i] = recommendationItem{rec: r}
		}
		m.recs.SetItems(items)
		m.recs.Title = "More like " + d.song.Title
		m.recs.ResetSelected()
		m.view = RecommendationsView

	case MsgHistoryLoaded:
		d := msg.data.(historyData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		items := make([]list.Item, len(d.entries))
		for i, e := range d.entries {
			items[i] = historyItem{entry: e}
		}
		m.history.SetItems(items)
		if len(d.entries) == 0 {
			m.setStatus("No listening history yet.", false)
		}

	case MsgAdminStatsFetched:
		d := msg.data.(adminStatsData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.adminStats = d.stats

	case MsgPlaybackStarted:
		d := msg.data.(playbackData)
		m.refreshQueue()
		if d.err != nil {
			if errors.Is(d.err, shared.ErrEmptyQueue) {
				m.setStatus("End of queue.", false)
				return m, nil
			}
			m.fail(d.err)
			return m, nil
		}
		m.setStatus("Playing "+d.song.Label(), false)
		return m, waitForPlayback(d.done)

	case MsgPlaybackFinished:
		d := msg.data.(playbackData)
		if d.done == nil || d.done != m.player.Done() {
			return m, nil
		}
		return m, m.advance()

	case MsgSongAdded:
		d := msg.data.(songAddedData)
		m.loading = false
		m.adding = nil
		m.view = m.addFrom
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Added %s to %s.", d.song.Label(), d.playlist.Name), false)

	case MsgLoggedIn:
		d := msg.data.(loginData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		m.session = d.session
		m.player.SetUser(d.session.HistoryKey())
		m.account = newAccountForm(loginForm)
		m.setStatus("Welcome, "+d.session.User.Username+"!", false)

	case MsgResetRequested:
		d := msg.data.(resetData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		text := fmt.Sprintf("Reset token for %s: %s", d.reset.Email, d.reset.Token)
		if d.reset.ExpiresIn != "" {
			text += " (expires in " + d.reset.ExpiresIn + ")"
		}
		m.setStatus(text+".", false)
		m.account = newAccountForm(verifyForm)
		m.account.inputs[0].SetValue(d.reset.Token)

	case MsgResetTokenVerified:
		d := msg.data.(tokenData)
		m.loading = false
		if d.err != nil {
			m.fail(d.err)
			return m, nil
		}
		if !d.status.Valid {
			m.setStatus("This reset token is invalid or has expired.", true)
			return m, nil
		}
		m.account = newAccountForm(resetForm)
		m.account.token = d.token
		m.setStatus("Token accepted for "+d.status.Email+". Choose a new password.", false)

	case MsgPasswordReset:
		m.loading = false
		if err, _ := msg.data.(error); err != nil {
			m.fail(err)
			return m, nil
		}
		m.account = newAccountForm(loginForm)
		m.setStatus("Password updated. Log in with your new password.", false)
	}

	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	if err := m.player.Stop(); err != nil {
		m.logger.Warn("stop player", "error", err)
	}
	m.cancel()
	return m, tea.Quit
}

// tabs returns the top-level views in tab order. Admin is shown to admins only.
func (m *Model) tabs() []ViewState {
	views := []ViewState{SongsView, QueueView, PlaylistsView, HistoryView}
	if m.session != nil && m.session.User.IsAdmin() {
		views = append(views, AdminView)
	}
	return append(views, AccountView)
}

// topLevel maps sub-views to the tab they belong to.
func (m *Model) topLevel() ViewState {
	switch m.view {
	case PlaylistSongsView:
		return PlaylistsView
	case RecommendationsView:
		return m.recsFrom
	}
	return m.view
}

func (m *Model) nextView() tea.Cmd {
	m.cancelAdding()
	tabs := m.tabs()
	current := m.topLevel()
	next := tabs[0]
	for i, v := range tabs {
		if v == current {
			next = tabs[(i+1)%len(tabs)]
			break
		}
	}
	return m.enterView(next)
}

// enterView switches to v and loads its data.
func (m *Model) enterView(v ViewState) tea.Cmd {
	m.view = v
	switch v {
	case PlaylistsView:
		return m.fetchPlaylists()
	case HistoryView:
		return m.loadHistory()
	case AdminView:
		return m.fetchAdminStats()
	case QueueView:
		m.refreshQueue()
	case AccountView:
		if m.session == nil {
			return textinput.Blink
		}
	}
	return nil
}

func (m *Model) goBack() tea.Cmd {
	switch {
	case m.adding != nil:
		m.cancelAdding()
		m.setStatus("Cancelled.", false)
	case m.view == PlaylistSongsView:
		m.view = PlaylistsView
	case m.view == RecommendationsView:
		m.view = m.recsFrom
	default:
		m.status, m.statusErr = "", false
	}
	return nil
}

func (m *Model) cancelAdding() {
	if m.adding == nil {
		return
	}
	m.adding = nil
	m.view = m.addFrom
}

func (m *Model) currentList() *list.Model {
	switch m.view {
	case SongsView:
		return &m.songs
	case PlaylistsView:
		return &m.playlists
	case PlaylistSongsView:
		return &m.playlistSongs
	case RecommendationsView:
		return &m.recs
	case HistoryView:
		return &m.history
	case QueueView:
		return &m.queue
	}
	return nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := m.currentList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) selectedSong() (models.Song, bool) {
	l := m.currentList()
	if l == nil {
		return models.Song{}, false
	}
	if s, ok := l.SelectedItem().(songer); ok {
		return s.Song(), true
	}
	return models.Song{}, false
}

// selectItem plays the selected song with the rest of its list as the queue, or opens the selected playlist.
// In the queue view it jumps to the selected song.
func (m *Model) selectItem() tea.Cmd {
	if m.view == QueueView {
		if len(m.queue.Items()) == 0 {
			return nil
		}
		i := m.queue.Index()
		return m.skip(func(ctx context.Context) (models.Song, error) {
			return m.player.Jump(ctx, i)
		})
	}

	if m.view == PlaylistsView {
		item, ok := m.playlists.SelectedItem().(playlistItem)
		if !ok {
			return nil
		}
		if m.adding != nil {
			return m.addSong(item.playlist, *m.adding)
		}
		return m.fetchPlaylist(item.playlist.ID)
	}

	l := m.currentList()
	if l == nil || len(l.Items()) == 0 {
		return nil
	}
	return m.play(songsOf(*l), l.Index())
}

func (m *Model) enqueue() {
	song, ok := m.selectedSong()
	if !ok {
		return
	}
	m.player.Enqueue(song)
	m.refreshQueue()
	m.setStatus(fmt.Sprintf("Queued %s (%d in queue).", song.Label(), len(m.queue.Items())), false)
}

func (m *Model) removeFromQueue() {
	item, ok := m.queue.SelectedItem().(songItem)
	if !ok {
		return
	}
	if err := m.player.Remove(m.queue.Index()); err != nil {
		m.fail(err)
		return
	}
	m.refreshQueue()
	m.setStatus(fmt.Sprintf("Removed %s from the queue.", item.song.Label()), false)
}

// refreshQueue mirrors the player's queue into the queue list with the current song selected.
func (m *Model) refreshQueue() {
	songs := m.player.Songs()
	m.queue.SetItems(songItems(songs))
	m.queue.Title = fmt.Sprintf("Queue (%d)", len(songs))
	if i, _ := m.player.Position(); i >= 0 {
		m.queue.Select(i)
	}
}

func (m *Model) startAdding() tea.Cmd {
	song, ok := m.selectedSong()
	if !ok {
		return nil
	}
	if m.session == nil {
		m.setStatus("Log in to add songs to playlists.", true)
		return nil
	}
	m.adding = &song
	m.addFrom = m.view
	m.view = PlaylistsView
	m.setStatus(fmt.Sprintf("Pick a playlist for %s (esc to cancel).", song.Label()), false)
	return m.fetchPlaylists()
}

func (m *Model) submitAccount() tea.Cmd {
	values := m.account.values()
	switch m.account.mode {
	case forgotForm:
		if !services.ValidEmail(values[0]) {
			m.setStatus("Please enter a valid email address.", true)
			return nil
		}
		return m.requestReset(values[0])
	case verifyForm:
		if values[0] == "" {
			m.setStatus("Please enter the reset token.", true)
			return nil
		}
		return m.verifyToken(values[0])
	case resetForm:
		switch {
		case len(values[0]) < services.MinPasswordLength:
			m.setStatus(fmt.Sprintf("Password must be at least %d characters.", services.MinPasswordLength), true)
			return nil
		case values[0] != values[1]:
			m.setStatus("Passwords do not match.", true)
			return nil
		}
		return m.resetPassword(m.account.token, values[0], values[1])
	default:
		if values[0] == "" || values[1] == "" {
			m.setStatus("Please enter your username or email and password.", true)
			return nil
		}
		return m.login(models.Credentials{UsernameOrEmail: values[0], Password: values[1]})
	}
}

func (m *Model) logout() tea.Cmd {
	if m.session == nil {
		return nil
	}
	if err := m.store.ClearSession(); err != nil {
		m.fail(err)
		return nil
	}
	m.session = nil
	m.player.SetUser(models.GuestKey)
	m.playlists.SetItems(nil)
	m.setStatus("Logged out.", false)
	return textinput.Blink
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status, m.statusErr = text, isErr
}

// fail reports err in the status line. Authentication failures also drop the session.
func (m *Model) fail(err error) {
	m.logger.Error("tui", "view", m.view, "error", err)
	if errors.Is(err, shared.ErrNotAuthenticated) && !errors.Is(err, shared.ErrAuthFailed) {
		m.session = nil
		m.player.SetUser(models.GuestKey)
		m.setStatus("You are not logged in: "+err.Error(), true)
		return
	}
	m.setStatus("Error: "+err.Error(), true)
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.help.Width = w
	listHeight := max(h-12, 3)
	for _, l := range []*list.Model{&m.songs, &m.playlists, &m.playlistSongs, &m.queue, &m.recs, &m.history} {
		l.SetSize(w-4, listHeight)
	}
}

func (m *Model) fetchSongs(title string, fetch func(context.Context) ([]models.Song, error)) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		songs, err := fetch(m.ctx)
		return songsFetchedMsg(title, songs, err)
	}
}

// runSearch searches by title, or by artist when the query starts with "artist:".
func (m *Model) runSearch(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" {
		m.setStatus("Type something to search for.", true)
		return nil
	}

	if artist, ok := strings.CutPrefix(query, "artist:"); ok {
		artist = strings.TrimSpace(artist)
		return m.fetchSongs("Songs by "+artist, func(ctx context.Context) ([]models.Song, error) {
			return m.api.SearchByArtist(ctx, artist)
		})
	}
	return m.fetchSongs(fmt.Sprintf("Results for %q", query), func(ctx context.Context) ([]models.Song, error) {
		return m.api.SearchByTitle(ctx, query)
	})
}

func (m *Model) fetchPlaylists() tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.loading = true
	userID := m.session.User.ID
	return func() tea.Msg {
		playlists, err := m.api.UserPlaylists(m.ctx, userID)
		return playlistsFetchedMsg(playlists, err)
	}
}

func (m *Model) fetchPlaylist(id int64) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		playlist, err := m.api.Playlist(m.ctx, id)
		return playlistFetchedMsg(playlist, err)
	}
}

func (m *Model) fetchRecommendations(song models.Song) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		recs, err := m.api.Recommendations(m.ctx, song.ID)
		return recommendationsFetchedMsg(song, recs, err)
	}
}

func (m *Model) loadHistory() tea.Cmd {
	userKey := m.session.HistoryKey()
	return func() tea.Msg {
		entries, err := m.store.History(userKey)
		return historyLoadedMsg(entries, err)
	}
}

func (m *Model) fetchAdminStats() tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		stats, err := m.api.AdminStats(m.ctx)
		return adminStatsFetchedMsg(stats, err)
	}
}

func (m *Model) addSong(pl models.Playlist, song models.Song) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		_, err := m.api.AddSongByID(m.ctx, pl.ID, song.ID)
		return songAddedMsg(&pl, song, err)
	}
}

func (m *Model) login(creds models.Credentials) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		result, err := m.api.Login(m.ctx, creds)
		if err != nil {
			return loggedInMsg(nil, err)
		}
		session := services.NewSession(result, time.Now())
		if err := m.store.SaveSession(session); err != nil {
			return loggedInMsg(nil, err)
		}
		return loggedInMsg(session, nil)
	}
}

func (m *Model) requestReset(email string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		reset, err := m.api.RequestPasswordReset(m.ctx, email)
		if err == nil && reset.Token != "" {
			if cerr := shared.CopyToClipboard(reset.Token); cerr != nil {
				m.logger.Debug("clipboard unavailable", "error", cerr)
			}
		}
		return resetRequestedMsg(reset, err)
	}
}

func (m *Model) verifyToken(token string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		status, err := m.api.VerifyResetToken(m.ctx, token)
		return resetTokenVerifiedMsg(token, status, err)
	}
}

func (m *Model) resetPassword(token, password, confirm string) tea.Cmd {
	m.loading = true
	return func() tea.Msg {
		return passwordResetMsg(m.api.ResetPassword(m.ctx, token, password, confirm))
	}
}

func (m *Model) play(songs []models.Song, start int) tea.Cmd {
	return func() tea.Msg {
		song, err := m.player.Play(m.ctx, songs, start)
		return playbackStartedMsg(song, m.player.Done(), err)
	}
}

func (m *Model) skip(move func(context.Context) (models.Song, error)) tea.Cmd {
	return func() tea.Msg {
		song, err := move(m.ctx)
		return playbackStartedMsg(song, m.player.Done(), err)
	}
}

// advance starts the next song after the current one finished; at the end of the queue playback stops.
func (m *Model) advance() tea.Cmd {
	return func() tea.Msg {
		song, err := m.player.Advance(m.ctx)
		if errors.Is(err, shared.ErrEmptyQueue) {
			if serr := m.player.Stop(); serr != nil {
				m.logger.Warn("stop player", "error", serr)
			}
		}
		return playbackStartedMsg(song, m.player.Done(), err)
	}
}

func (m *Model) togglePause() tea.Cmd {
	paused, err := m.player.TogglePause()
	switch {
	case err != nil:
		m.fail(err)
	case paused:
		m.setStatus("Paused", false)
	default:
		if song, ok := m.player.Current(); ok {
			m.setStatus("Playing "+song.Label(), false)
		}
	}
	return nil
}

func waitForPlayback(done <-chan error) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		err := <-done
		return playbackFinishedMsg(done, err)
	}
}

func (m *Model) listView(l list.Model) string {
	if m.loading {
		return fmt.Sprintf("%s Loading...", m.spinner.View())
	}
	return l.View()
}

func (m *Model) renderTabs() string {
	current := m.topLevel()
	rendered := []string{}
	for _, v := range m.tabs() {
		style := styles.tab
		if v == current {
			style = styles.activeTab
		}
		rendered = append(rendered, style.Render(v.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderNowPlaying() string {
	content := styles.help.Render("Nothing playing")
	if song, ok := m.player.Current(); ok {
		icon := "▶"
		if m.player.Paused() {
			icon = "⏸"
		}
		content = styles.nowPlay.Render(fmt.Sprintf("%s %s", icon, song.Label()))
	}

	shuffle, repeat := m.player.Modes()
	modes := fmt.Sprintf("shuffle: %s  repeat: %s", onOff(shuffle), repeat)
	if i, n := m.player.Position(); n > 0 {
		modes = fmt.Sprintf("%d/%d  %s", i+1, n, modes)
	}

	width := max(m.width-4, 20)
	return styles.box.Width(width).Render(content + "  " + styles.help.Render(modes))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (m *Model) renderStatus() string {
	switch {
	case m.status == "":
		return ""
	case m.statusErr:
		return styles.err.Render(m.status)
	default:
		return styles.ok.Render(m.status)
	}
}

func (m *Model) renderAdmin() string {
	if m.adminStats == nil {
		if m.loading {
			return fmt.Sprintf("%s Loading...", m.spinner.View())
		}
		return styles.warn.Render("No statistics loaded.")
	}
	return styles.title.Render("Admin dashboard") + "\n" + formatter.AdminStatsTable(*m.adminStats)
}

func (m *Model) renderAccount() string {
	if m.session == nil {
		hint := styles.help.Render("enter: next/submit • ctrl+f: forgot password • esc: back to login")
		return m.account.View() + "\n" + hint
	}
	return styles.title.Render("Account") + "\n" + formatter.UserDetails(m.session.User) +
		"\n" + styles.help.Render("x: log out")
}

func (m *Model) helpKeys() []key.Binding {
	switch m.view {
	case PlaylistsView:
		return []key.Binding{m.keys.enter, m.keys.back, m.keys.tab, m.keys.quit}
	case AccountView:
		if m.session != nil {
			return []key.Binding{m.keys.logout, m.keys.tab, m.keys.quit}
		}
		return []key.Binding{m.keys.forgot, m.keys.tab}
	case AdminView:
		return []key.Binding{m.keys.tab, m.keys.quit}
	case QueueView:
		return []key.Binding{m.keys.enter, m.keys.remove, m.keys.clear, m.keys.pause,
			m.keys.next, m.keys.prev, m.keys.tab, m.keys.quit}
	}
	return []key.Binding{m.keys.enter, m.keys.search, m.keys.recommend, m.keys.add, m.keys.enqueue, m.keys.pause,
		m.keys.next, m.keys.prev, m.keys.shuffle, m.keys.repeat, m.keys.tab, m.keys.quit}
}
