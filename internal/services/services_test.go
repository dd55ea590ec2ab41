package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// envelope writes a success envelope around data.
func envelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": "success", "message": "ok", "data": data})
}

func failure(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": message})
}

func newTestClient(t *testing.T, h http.HandlerFunc, tokens oauth2.TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second, Tokens: tokens})
}

type fakeSessions struct {
	session *models.Session
	err     error
}

func (f *fakeSessions) Session() (*models.Session, error) { return f.session, f.err }

func TestClientRequest(t *testing.T) {
	t.Run("attaches bearer token and request id", func(t *testing.T) {
		var auth, requestID string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			requestID = r.Header.Get("X-Request-Id")
			envelope(w, http.StatusOK, []models.Song{})
		}, StaticToken("abc"))

		_, err := c.RecentSongs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", auth)
		assert.Len(t, requestID, 36)
	})

	t.Run("anonymous request when session is missing", func(t *testing.T) {
		var auth string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			envelope(w, http.StatusOK, []models.Song{})
		}, NewSessionTokenSource(&fakeSessions{err: shared.ErrNotAuthenticated}))

		_, err := c.FeaturedSongs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, auth)
	})

	t.Run("required auth fails fast", func(t *testing.T) {
		called := false
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		}, NewSessionTokenSource(&fakeSessions{err: shared.ErrNotAuthenticated}))

		_, err := c.AdminStats(context.Background())
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		assert.False(t, called, "no request should be sent without a token")
	})

	t.Run("canceled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			envelope(w, http.StatusOK, nil)
		}, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.RecentSongs(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rate limited requests wait their turn", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			envelope(w, http.StatusOK, []models.Song{})
		}))
		defer srv.Close()

		c := NewClient(ClientConfig{BaseURL: srv.URL, RateLimit: 20, Burst: 1})

		start := time.Now()
		for range 3 {
			_, err := c.RecentSongs(context.Background())
			require.NoError(t, err)
		}
		assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	})

	t.Run("connection failure", func(t *testing.T) {
		c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		_, err := c.RecentSongs(context.Background())
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}

func TestStatusErrors(t *testing.T) {
	tc := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: shared.ErrNotAuthenticated},
		{name: "forbidden", status: http.StatusForbidden, want: shared.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, want: shared.ErrNotFound},
		{name: "unavailable", status: http.StatusServiceUnavailable, want: shared.ErrServiceUnavailable},
		{name: "bad request", status: http.StatusBadRequest, want: shared.ErrAPIRequest},
		{name: "server error", status: http.StatusInternalServerError, want: shared.ErrAPIRequest},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				failure(w, tt.status, "nope")
			}, nil)

			_, err := c.RecentSongs(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.status, StatusCode(err))
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestDecodeBody(t *testing.T) {
	t.Run("envelope", func(t *testing.T) {
		var songs []models.Song
		err := decodeBody([]byte(`{"status":"success","data":[{"id":1,"title":"a"}]}`), &songs)
		require.NoError(t, err)
		require.Len(t, songs, 1)
		assert.Equal(t, "a", songs[0].Title)
	})

	t.Run("error envelope with 200", func(t *testing.T) {
		var songs []models.Song
		err := decodeBody([]byte(`{"status":"error","message":"Song not found"}`), &songs)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.Contains(t, err.Error(), "Song not found")
	})

	t.Run("bare object", func(t *testing.T) {
		var stats models.AppStats
		err := decodeBody([]byte(`{"totalSongs":5,"totalPlaylists":2,"totalUsers":3}`), &stats)
		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.TotalSongs)
	})

	t.Run("bare array", func(t *testing.T) {
		var recs []models.Recommendation
		err := decodeBody([]byte(`[{"rank":1,"title":"Stay","artist":"x","plays":1000}]`), &recs)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 1, recs[0].Rank)
		assert.Equal(t, "Stay", recs[0].Title)
	})

	t.Run("nil output and null data", func(t *testing.T) {
		assert.NoError(t, decodeBody([]byte(`{"status":"success","data":null}`), nil))
		assert.NoError(t, decodeBody(nil, nil))
	})

	t.Run("malformed", func(t *testing.T) {
		var songs []models.Song
		err := decodeBody([]byte(`{"status":"success","data":{"id":1}}`), &songs)
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
	})
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, StatusCode(nil))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}
