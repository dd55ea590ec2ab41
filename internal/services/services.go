// package services wraps the music REST API (songs, playlists, auth and admin)
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://localhost:8080"

// SongService lists, searches and uploads songs.
type SongService interface {
	RecentSongs(ctx context.Context) ([]models.Song, error)
	FeaturedSongs(ctx context.Context) ([]models.Song, error)
	SearchByTitle(ctx context.Context, title string) ([]models.Song, error)
	SearchByArtist(ctx context.Context, artist string) ([]models.Song, error)
	Song(ctx context.Context, id int64) (*models.Song, error)
	Recommendations(ctx context.Context, songID int64) ([]models.Recommendation, error)
}

// PlaylistService manages the user's playlists.
type PlaylistService interface {
	UserPlaylists(ctx context.Context, userID int64) ([]models.Playlist, error)
	Playlist(ctx context.Context, id int64) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, name string, userID int64) (*models.Playlist, error)
	AddSongByID(ctx context.Context, playlistID, songID int64) (*models.Playlist, error)
	AutoplayPlaylist(ctx context.Context, id int64) []models.Song
}

// AuthService performs the account flows.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) (*models.ResetRequest, error)
	VerifyResetToken(ctx context.Context, token string) (*models.ResetTokenStatus, error)
	ResetPassword(ctx context.Context, token, password, confirm string) error
	AdminStats(ctx context.Context) (*models.AdminStats, error)
}

// API is everything the interactive client needs from the backend.
type API interface {
	SongService
	PlaylistService
	AuthService
}

// ClientConfig configures a [Client].
type ClientConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	Tokens    oauth2.TokenSource // bearer credentials, may be nil
	Logger    *log.Logger
	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client talks to the music API.
//
// Every request waits on the rate limiter, carries an X-Request-Id and, when Tokens yields one, a bearer token.
// Requests are never retried.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	tokens  oauth2.TokenSource
	logger  *log.Logger
}

// NewClient creates a client for the API at cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	c := &Client{http: rc, limiter: limiter, tokens: cfg.Tokens, logger: cfg.Logger}

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if err := c.limiter.Wait(r.Context()); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		r.SetHeader("X-Request-Id", shared.GenerateID())
		return nil
	})
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("api", "method", resp.Request.Method, "url", resp.Request.URL,
			"status", resp.StatusCode(), "took", resp.Time())
		return nil
	})

	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// SetLogger replaces the logger. Not safe to call while requests are in flight.
func (c *Client) SetLogger(l *log.Logger) {
	c.logger = l
}

type authMode int

const (
	authOptional authMode = iota // attach a token when one is available
	authRequired                 // fail with ErrNotAuthenticated when no token is available
	authNone
)

// request starts a request bound to ctx with credentials applied per mode.
func (c *Client) request(ctx context.Context, mode authMode) (*resty.Request, error) {
	req := c.http.R().SetContext(ctx)
	if mode == authNone {
		return req, nil
	}

	if c.tokens == nil {
		if mode == authRequired {
			return nil, shared.ErrNotAuthenticated
		}
		return req, nil
	}

	tok, err := c.tokens.Token()
	if err != nil || tok == nil || tok.AccessToken == "" {
		if mode == authRequired {
			if err == nil {
				err = shared.ErrNotAuthenticated
			}
			return nil, err
		}
		return req, nil
	}

	return req.SetAuthToken(tok.AccessToken), nil
}

// execute sends req and maps transport failures and non-2xx statuses to shared errors.
func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s %s: %w", shared.ErrAPIRequest, method, path, ctxErr)
		}
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrServiceUnavailable, method, path, err)
	}

	if resp.IsError() {
		return resp, statusError(resp)
	}
	return resp, nil
}

// do executes the request and decodes the response into out, unwrapping the {status, message, data} envelope when present.
func (c *Client) do(req *resty.Request, method, path string, out any) error {
	resp, err := c.execute(req, method, path)
	if err != nil {
		return err
	}
	return decodeBody(resp.Body(), out)
}

// statusError maps an HTTP error status to a shared sentinel, keeping the server's message.
func statusError(resp *resty.Response) error {
	msg := errorMessage(resp.Body())
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}

	var sentinel error
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		sentinel = shared.ErrNotAuthenticated
	case http.StatusForbidden:
		sentinel = shared.ErrForbidden
	case http.StatusNotFound:
		sentinel = shared.ErrNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}

	return &StatusError{Code: resp.StatusCode(), Message: msg, err: sentinel}
}

// StatusError is returned for non-2xx responses. It unwraps to the matching shared sentinel.
type StatusError struct {
	Code    int
	Message string
	err     error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (status %d): %s", e.err, e.Code, e.Message)
}

func (e *StatusError) Unwrap() error { return e.err }

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

// decodeBody decodes an enveloped or bare JSON body into out.
//
// A body whose status is not "success" is an application error carrying the message.
func decodeBody(body []byte, out any) error {
	body = bytes.TrimSpace(body)

	var fields map[string]json.RawMessage
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &fields) == nil {
		if _, ok := fields["status"]; ok {
			var env models.Envelope
			if err := json.Unmarshal(body, &env); err != nil {
				return fmt.Errorf("%w: failed to decode envelope: %v", shared.ErrAPIRequest, err)
			}
			if !env.OK() {
				return fmt.Errorf("%w: %s", shared.ErrAPIRequest, env.Message)
			}
			body = env.Data
		}
	}

	if out == nil || len(body) == 0 || string(body) == "null" {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}
