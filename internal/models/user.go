package models

import (
	"strconv"
	"time"
)

// User is the account returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// IsAdmin reports whether the user has the ADMIN role.
func (u User) IsAdmin() bool {
	return u.Role == "ADMIN" || u.Role == "ROLE_ADMIN"
}

// AuthResult is the data of a successful login or register call.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials is the login request body.
type Credentials struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

// Registration is the register request body.
type Registration struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName,omitempty"`
}

// Session is the authenticated state kept in local storage.
//
// A session without a token, or with an expired one, is treated as logged out.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
	SavedAt   time.Time `json:"savedAt"`
}

// Valid reports whether the session carries a token that has not expired at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// HistoryKey returns the per-user key for play history.
func (s *Session) HistoryKey() string {
	if s == nil || s.User.ID == 0 {
		return GuestKey
	}
	return strconv.FormatInt(s.User.ID, 10)
}

// GuestKey is the history key shared by anonymous listeners.
const GuestKey = "guest"

// HistoryEntry is one item of the play history.
type HistoryEntry struct {
	Song     Song      `json:"song"`
	PlayedAt time.Time `json:"playedAt"`
}
