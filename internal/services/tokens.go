package services

import (
	"fmt"
	"time"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
)

// SessionReader yields the stored session; storage.Store implements it.
type SessionReader interface {
	Session() (*models.Session, error)
}

type sessionTokenSource struct {
	store SessionReader
}

// NewSessionTokenSource returns an [oauth2.TokenSource] reading the bearer token from local storage on every call,
// so a login or logout saved to the same store applies to the next request.
func NewSessionTokenSource(store SessionReader) oauth2.TokenSource {
	return &sessionTokenSource{store: store}
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	session, err := s.store.Session()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: session.Token, TokenType: "Bearer", Expiry: session.ExpiresAt}, nil
}

// StaticToken wraps a raw token, used by `api` commands given --token.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// TokenClaims are the claims the backend puts in its JWTs.
type TokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// ParseToken decodes the claims of a JWT without verifying its signature; the client never holds the signing key.
func ParseToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: token is not a JWT: %v", shared.ErrInvalidInput, err)
	}
	return claims, nil
}

// NewSession builds a session from an auth result, taking the expiry from the JWT exp claim when present.
func NewSession(result *models.AuthResult, now time.Time) *models.Session {
	session := &models.Session{Token: result.Token, User: result.User, SavedAt: now}
	if claims, err := ParseToken(result.Token); err == nil {
		if claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
		if session.User.Role == "" {
			session.User.Role = claims.Role
		}
		if session.User.Username == "" {
			session.User.Username = claims.Subject
		}
	}
	return session
}
