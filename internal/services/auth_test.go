package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims TokenClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/login", r.URL.Path)
			var creds models.Credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "ada", creds.UsernameOrEmail)
			assert.Empty(t, r.Header.Get("Authorization"))

			envelope(w, http.StatusOK, models.AuthResult{Token: "jwt", User: models.User{ID: 1, Username: "ada", Role: "USER"}})
		}, StaticToken("stale"))

		result, err := c.Login(context.Background(), models.Credentials{UsernameOrEmail: " ada ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "jwt", result.Token)
		assert.Equal(t, int64(1), result.User.ID)
	})

	t.Run("missing fields", func(t *testing.T) {
		c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := c.Login(context.Background(), models.Credentials{UsernameOrEmail: "ada"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	for _, status := range []int{http.StatusUnauthorized, http.StatusNotFound} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				failure(w, status, "Invalid password")
			}, nil)

			_, err := c.Login(context.Background(), models.Credentials{UsernameOrEmail: "ada", Password: "wrong"})
			assert.ErrorIs(t, err, shared.ErrAuthFailed)
			assert.Contains(t, err.Error(), "Invalid password")
		})
	}
}

func TestRegister(t *testing.T) {
	tc := []struct {
		name    string
		reg     models.Registration
		wantErr string
	}{
		{name: "short username", reg: models.Registration{Username: "ab", Email: "a@b.co", Password: "secret"}, wantErr: "username"},
		{name: "bad email", reg: models.Registration{Username: "ada", Email: "nope", Password: "secret"}, wantErr: "email"},
		{name: "short password", reg: models.Registration{Username: "ada", Email: "a@b.co", Password: "123"}, wantErr: "password"},
	}

	c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Register(context.Background(), tt.reg)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/register", r.URL.Path)
			envelope(w, http.StatusOK, models.AuthResult{Token: "jwt", User: models.User{ID: 2, Username: "ada"}})
		}, nil)

		result, err := c.Register(context.Background(), models.Registration{Username: "ada", Email: "ada@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "ada", result.User.Username)
	})
}

func TestCurrentUserAndLogout(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path+" "+r.Header.Get("X-User-Id"))
		if r.URL.Path == "/api/auth/me" {
			envelope(w, http.StatusOK, models.User{ID: 3, Username: "ada"})
			return
		}
		envelope(w, http.StatusOK, nil)
	}, nil)

	user, err := c.CurrentUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	require.NoError(t, c.Logout(context.Background(), 3))
	assert.Equal(t, []string{"GET /api/auth/me 3", "POST /api/auth/logout 3"}, seen)

	_, err = c.CurrentUser(context.Background(), 0)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestPasswordRecovery(t *testing.T) {
	t.Run("request rejects bad email", func(t *testing.T) {
		c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
		_, err := c.RequestPasswordReset(context.Background(), "not-an-email")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("request", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/forgot-password", r.URL.Path)
			assert.Equal(t, "ada@example.com", r.URL.Query().Get("email"))
			envelope(w, http.StatusOK, models.ResetRequest{Message: "sent", Token: "reset-123", ExpiresIn: "24 hours"})
		}, nil)

		reset, err := c.RequestPasswordReset(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "reset-123", reset.Token)
		assert.Equal(t, "ada@example.com", reset.Email)
	})

	t.Run("reset verifies token first", func(t *testing.T) {
		var calls []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, r.URL.Path)
			switch r.URL.Path {
			case "/api/auth/verify-reset-token/reset-123":
				envelope(w, http.StatusOK, models.ResetTokenStatus{Valid: true, Email: "ada@example.com"})
			case "/api/auth/reset-password":
				q := r.URL.Query()
				assert.Equal(t, "reset-123", q.Get("token"))
				assert.Equal(t, "newpass", q.Get("newPassword"))
				assert.Equal(t, "newpass", q.Get("confirmPassword"))
				envelope(w, http.StatusOK, nil)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}, nil)

		require.NoError(t, c.ResetPassword(context.Background(), "reset-123", "newpass", "newpass"))
		assert.Equal(t, []string{"/api/auth/verify-reset-token/reset-123", "/api/auth/reset-password"}, calls)
	})

	t.Run("invalid token stops reset", func(t *testing.T) {
		var calls int
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			failure(w, http.StatusBadRequest, "Invalid reset token")
		}, nil)

		err := c.ResetPassword(context.Background(), "bad", "newpass", "newpass")
		assert.ErrorIs(t, err, shared.ErrAPIRequest)
		assert.Equal(t, 1, calls)
	})

	t.Run("local password checks", func(t *testing.T) {
		c := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"})
		assert.ErrorIs(t, c.ResetPassword(context.Background(), "t", "short", "short"), shared.ErrInvalidInput)
		assert.ErrorIs(t, c.ResetPassword(context.Background(), "t", "longenough", "different"), shared.ErrInvalidInput)
	})
}

func TestAdminStats(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
			envelope(w, http.StatusOK, models.AdminStats{TotalUsers: 3, TotalSongs: 10, PopularSongs: []models.Song{{ID: 1, Title: "Hit", PlayCount: 99}}})
		}, StaticToken("admin-token"))

		stats, err := c.AdminStats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(10), stats.TotalSongs)
		assert.Equal(t, 99, stats.PopularSongs[0].PlayCount)
	})

	t.Run("not admin", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			failure(w, http.StatusForbidden, "Access denied! Admin only.")
		}, StaticToken("user-token"))

		_, err := c.AdminStats(context.Background())
		assert.ErrorIs(t, err, shared.ErrForbidden)
		assert.Contains(t, err.Error(), "admin only")
	})
}

func TestAppStatsAndHealth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/stats":
			w.Write([]byte(`{"totalSongs":12,"totalPlaylists":4,"totalUsers":2}`))
		case "/api/auth/health":
			w.Write([]byte("Auth service is running\n"))
		}
	}, nil)

	stats, err := c.AppStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.TotalSongs)

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Auth service is running", health)
}

func TestTokens(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "ada", ExpiresAt: jwt.NewNumericDate(exp)},
		Role:             "ADMIN",
	})

	t.Run("ParseToken", func(t *testing.T) {
		claims, err := ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, "ada", claims.Subject)
		assert.Equal(t, "ADMIN", claims.Role)

		_, err = ParseToken("not-a-jwt")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("NewSession", func(t *testing.T) {
		session := NewSession(&models.AuthResult{Token: token, User: models.User{ID: 4}}, time.Now())
		assert.True(t, session.ExpiresAt.Equal(exp))
		assert.Equal(t, "ADMIN", session.User.Role)
		assert.Equal(t, "ada", session.User.Username)

		opaque := NewSession(&models.AuthResult{Token: "opaque"}, time.Now())
		assert.True(t, opaque.ExpiresAt.IsZero())
	})

	t.Run("session token source", func(t *testing.T) {
		src := NewSessionTokenSource(&fakeSessions{session: &models.Session{Token: token, ExpiresAt: exp}})
		tok, err := src.Token()
		require.NoError(t, err)
		assert.Equal(t, token, tok.AccessToken)
		assert.Equal(t, "Bearer", tok.TokenType)

		_, err = NewSessionTokenSource(&fakeSessions{err: shared.ErrNotAuthenticated}).Token()
		assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	})
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("a@b"))
	assert.False(t, ValidEmail("plain"))
}
