// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers.
package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/auth"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/session"
	"codeberg.org/oliverandrich/digitalnomads/internal/views"
	"github.com/labstack/echo/v4"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	auth     *auth.Service
	sessions *session.Manager
	flash    *flash.Manager
	views    *views.Views
}

// New creates a new Handlers instance.
func New(authService *auth.Service, sessions *session.Manager, flashes *flash.Manager, v *views.Views) *Handlers {
	return &Handlers{
		auth:     authService,
		sessions: sessions,
		flash:    flashes,
		views:    v,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return h.render(c, http.StatusOK, "home.html", &views.Data{})
}
