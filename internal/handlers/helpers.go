// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"net/http"

	"codeberg.org/oliverandrich/digitalnomads/internal/appcontext"
	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/i18n"
	"codeberg.org/oliverandrich/digitalnomads/internal/views"
	"github.com/labstack/echo/v4"
)

// render fills in the request-scoped page data (current user, CSRF token,
// pending flash messages) and writes the page.
func (h *Handlers) render(c echo.Context, status int, page string, data *views.Data) error {
	if data == nil {
		data = &views.Data{}
	}

	data.User = appcontext.CurrentUser(c.Request().Context())
	if token, ok := c.Get("csrf").(string); ok {
		data.CSRFToken = token
	}
	data.Flash = append(h.flash.Pop(c.Response(), c.Request()), data.Flash...)

	var buf bytes.Buffer
	if err := h.views.Render(&buf, page, data); err != nil {
		return err
	}
	return c.HTML(status, buf.String())
}

// addFlash queues a localized message for the next page view.
func (h *Handlers) addFlash(c echo.Context, category, messageID string) {
	text := i18n.T(c.Request().Context(), messageID)
	h.flash.Add(c.Response(), c.Request(), category, text)
}

// addFlashData queues a localized message with template data.
func (h *Handlers) addFlashData(c echo.Context, category, messageID string, data map[string]any) {
	text := i18n.TData(c.Request().Context(), messageID, data)
	h.flash.Add(c.Response(), c.Request(), category, text)
}

// flashNow returns a message for inclusion in the current render, used
// when a form is re-rendered instead of redirected to.
func flashNow(c echo.Context, category, messageID string) []flash.Message {
	text := i18n.T(c.Request().Context(), messageID)
	return []flash.Message{{Category: category, Text: text}}
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}
