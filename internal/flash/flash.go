// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package flash implements one-shot messages carried in a signed cookie:
// set on one response, shown on the next page, then gone.
package flash

import (
	"net/http"

	"github.com/gorilla/securecookie"
)

// Message categories used across the app.
const (
	Success = "success"
	Error   = "error"
	Info    = "info"
)

const cookieName = "_flash"

// maxAge bounds how long a flash survives if it is never displayed.
const maxAge = 300

// Message is one flash entry.
type Message struct {
	Category string `json:"c"`
	Text     string `json:"t"`
}

// Manager signs and reads the flash cookie.
type Manager struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewManager builds a Manager signing with the given hash key, typically
// the session hash key.
func NewManager(hashKey []byte, secure bool) *Manager {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(maxAge)

	return &Manager{sc: sc, secure: secure}
}

// Add appends a message to the pending flash cookie.
func (m *Manager) Add(w http.ResponseWriter, r *http.Request, category, text string) {
	messages := append(m.peek(r), Message{Category: category, Text: text})

	encoded, err := m.sc.Encode(cookieName, messages)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears the cookie.
func (m *Manager) Pop(w http.ResponseWriter, r *http.Request) []Message {
	messages := m.peek(r)
	if len(messages) == 0 {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return messages
}

func (m *Manager) peek(r *http.Request) []Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil
	}

	var messages []Message
	if err := m.sc.Decode(cookieName, cookie.Value, &messages); err != nil {
		return nil
	}
	return messages
}
