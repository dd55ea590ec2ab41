package models

import "encoding/json"

// Envelope is the standard {status, message, data} response wrapper.
type Envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// OK reports whether the server marked the response as a success.
func (e Envelope) OK() bool {
	return e.Status == "success"
}

// AdminStats is the data of GET /api/admin/stats.
type AdminStats struct {
	TotalUsers     int64  `json:"totalUsers"`
	TotalSongs     int64  `json:"totalSongs"`
	TotalPlaylists int64  `json:"totalPlaylists"`
	RecentUsers    []User `json:"recentUsers"`
	PopularSongs   []Song `json:"popularSongs"`
}

// AppStats is the unenveloped body of GET /api/auth/stats.
type AppStats struct {
	TotalSongs     int64 `json:"totalSongs"`
	TotalPlaylists int64 `json:"totalPlaylists"`
	TotalUsers     int64 `json:"totalUsers"`
}

// ResetRequest is the data of POST /api/auth/forgot-password.
//
// Token is a demo affordance of the backend; a real deployment would email it instead.
type ResetRequest struct {
	Message   string `json:"message"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
	Email     string `json:"email"`
}

// ResetTokenStatus is the data of GET /api/auth/verify-reset-token/{token}.
type ResetTokenStatus struct {
	Valid     bool   `json:"valid"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expiresAt"`
}
