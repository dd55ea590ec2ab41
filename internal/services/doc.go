// Package services is the API gateway: a [Client] wrapping HTTP calls to the remote music service.
//
// # Resource groups
//
// Songs (/api/songs, /api/recommendations), playlists (/api/playlists) and auth/admin (/api/auth, /api/admin).
// Each method validates its input, issues one request and decodes the result.
//
// # Responses
//
// Most endpoints answer with an envelope:
//
//	{"status": "success", "message": "...", "data": ...}
//
// A status other than "success" becomes an error carrying the message. Endpoints returning bare JSON
// (stats, recommendations) are decoded directly.
//
// # Credentials
//
// The bearer token comes from an [oauth2.TokenSource]. [NewSessionTokenSource] reads it from local storage on every
// request; [ParseToken] decodes the JWT claims (expiry, role) without verifying the signature.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : no token, or HTTP 401
//   - [shared.ErrForbidden] : HTTP 403 (admin endpoints)
//   - [shared.ErrNotFound] : HTTP 404
//   - [shared.ErrAuthFailed] : login rejected
//   - [shared.ErrServiceUnavailable] : connection failures and 502/503/504
//   - [shared.ErrAPIRequest] : anything else, including non-success envelopes
//
// Nothing is retried.
package services
