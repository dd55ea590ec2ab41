// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
)

// MockAPI is an in-memory stand-in for the music API used by UI and command tests.
//
// Songs and Playlists are returned as configured; Err, when set, fails every call.
// Safe for concurrent use.
type MockAPI struct {
	Songs     []models.Song
	Playlists []models.Playlist
	Recs      []models.Recommendation
	Stats     *models.AdminStats
	App       *models.AppStats
	Err       error

	// Fail fails only the named calls (without arguments), e.g. "FeaturedSongs".
	Fail map[string]error

	mu    sync.Mutex
	calls []string
	added map[int64][]int64
}

func (m *MockAPI) record(call string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	name, _, _ := strings.Cut(call, ":")
	if err, ok := m.Fail[name]; ok {
		return err
	}
	return m.Err
}

// Calls returns the recorded calls in order. Calls taking a string argument are recorded as "Name:arg".
func (m *MockAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockAPI) RecentSongs(ctx context.Context) ([]models.Song, error) {
	if err := m.record("RecentSongs"); err != nil {
		return nil, err
	}
	return m.Songs, nil
}

func (m *MockAPI) FeaturedSongs(ctx context.Context) ([]models.Song, error) {
	if err := m.record("FeaturedSongs"); err != nil {
		return nil, err
	}
	return m.Songs, nil
}

func (m *MockAPI) SearchByTitle(ctx context.Context, title string) ([]models.Song, error) {
	if err := m.record("SearchByTitle:" + title); err != nil {
		return nil, err
	}
	return m.filter(func(s models.Song) bool { return strings.Contains(strings.ToLower(s.Title), strings.ToLower(title)) }), nil
}

func (m *MockAPI) SearchByArtist(ctx context.Context, artist string) ([]models.Song, error) {
	if err := m.record("SearchByArtist:" + artist); err != nil {
		return nil, err
	}
	return m.filter(func(s models.Song) bool { return strings.Contains(strings.ToLower(s.Artist), strings.ToLower(artist)) }), nil
}

func (m *MockAPI) Song(ctx context.Context, id int64) (*models.Song, error) {
	if err := m.record("Song"); err != nil {
		return nil, err
	}
	for _, s := range m.Songs {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, errors.New("song not found")
}

func (m *MockAPI) Recommendations(ctx context.Context, songID int64) ([]models.Recommendation, error) {
	if err := m.record("Recommendations"); err != nil {
		return nil, err
	}
	return m.Recs, nil
}

func (m *MockAPI) UserPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error) {
	if err := m.record("UserPlaylists"); err != nil {
		return nil, err
	}
	return m.Playlists, nil
}

func (m *MockAPI) Playlist(ctx context.Context, id int64) (*models.Playlist, error) {
	if err := m.record("Playlist"); err != nil {
		return nil, err
	}
	for _, p := range m.Playlists {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("playlist not found")
}

func (m *MockAPI) CreatePlaylist(ctx context.Context, name string, userID int64) (*models.Playlist, error) {
	if err := m.record("CreatePlaylist:" + name); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := models.Playlist{ID: int64(len(m.Playlists) + 1), Name: name, UserID: userID}
	m.Playlists = append(m.Playlists, p)
	return &p, nil
}

func (m *MockAPI) AddSongByID(ctx context.Context, playlistID, songID int64) (*models.Playlist, error) {
	if err := m.record("AddSongByID"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.added == nil {
		m.added = map[int64][]int64{}
	}
	m.added[playlistID] = append(m.added[playlistID], songID)
	return &models.Playlist{ID: playlistID}, nil
}

// Added returns the song ids added to a playlist through AddSongByID.
func (m *MockAPI) Added(playlistID int64) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.added[playlistID]...)
}

func (m *MockAPI) AutoplayPlaylist(ctx context.Context, id int64) []models.Song {
	p, err := m.Playlist(ctx, id)
	if err != nil || p.Songs == nil {
		return []models.Song{}
	}
	return p.Songs
}

func (m *MockAPI) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	if err := m.record("Login"); err != nil {
		return nil, err
	}
	return &models.AuthResult{Token: "token", User: models.User{ID: 1, Username: creds.UsernameOrEmail}}, nil
}

func (m *MockAPI) RequestPasswordReset(ctx context.Context, email string) (*models.ResetRequest, error) {
	if err := m.record("RequestPasswordReset"); err != nil {
		return nil, err
	}
	return &models.ResetRequest{Email: email, Token: "reset", ExpiresIn: "24 hours"}, nil
}

// VerifyResetToken accepts only the token handed out by RequestPasswordReset.
func (m *MockAPI) VerifyResetToken(ctx context.Context, token string) (*models.ResetTokenStatus, error) {
	if err := m.record("VerifyResetToken:" + token); err != nil {
		return nil, err
	}
	if token != "reset" {
		return &models.ResetTokenStatus{}, nil
	}
	return &models.ResetTokenStatus{Valid: true, Email: "ada@example.com"}, nil
}

func (m *MockAPI) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if err := m.record("ResetPassword:" + token); err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", shared.ErrInvalidInput)
	}
	return nil
}

func (m *MockAPI) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	if err := m.record("AdminStats"); err != nil {
		return nil, err
	}
	if m.Stats == nil {
		return &models.AdminStats{}, nil
	}
	return m.Stats, nil
}

func (m *MockAPI) AppStats(ctx context.Context) (*models.AppStats, error) {
	if err := m.record("AppStats"); err != nil {
		return nil, err
	}
	if m.App == nil {
		return &models.AppStats{}, nil
	}
	return m.App, nil
}

func (m *MockAPI) filter(keep func(models.Song) bool) []models.Song {
	out := []models.Song{}
	for _, s := range m.Songs {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
