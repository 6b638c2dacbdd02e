// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session manages the signed session cookie. The cookie payload
// is the explicit identity value handed to handlers; there is no ambient
// current-user global.
package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// Identity is the authenticated identity carried by the session cookie.
// SessionID correlates log lines for one login.
type Identity struct {
	UserID    int64  `json:"uid"`
	Username  string `json:"username"`
	SessionID string `json:"sid"`
}

// Manager creates, parses, and clears session cookies.
type Manager struct {
	sc     *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager builds a Manager. blockKey may be nil to disable payload
// encryption (the cookie is still tamper-proof via the hash key).
// maxAge bounds how long an encoded cookie stays decodable and is the
// cookie lifetime for remember-me sessions.
func NewManager(hashKey, blockKey []byte, name string, maxAge int, secure bool) *Manager {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(maxAge)

	return &Manager{
		sc:     sc,
		name:   name,
		maxAge: maxAge,
		secure: secure,
	}
}

// Create issues a session cookie for the user. Without remember the
// cookie is session-scoped and dies with the browser; with remember it
// persists for the configured max age.
func (m *Manager) Create(userID int64, username string, remember bool) (*http.Cookie, error) {
	identity := Identity{
		UserID:    userID,
		Username:  username,
		SessionID: uuid.NewString(),
	}

	encoded, err := m.sc.Encode(m.name, identity)
	if err != nil {
		return nil, err
	}

	cookie := &http.Cookie{
		Name:     m.name,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = m.maxAge
	}
	return cookie, nil
}

// Parse extracts the identity from the request's session cookie. A
// missing, tampered, or outdated cookie returns an error.
func (m *Manager) Parse(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := m.sc.Decode(m.name, cookie.Value, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Clear returns a cookie that terminates the session.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
