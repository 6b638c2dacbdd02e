// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/digitalnomads/internal/views"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders the error page for failed requests. It plugs into
// Echo as the central HTTP error handler.
func (h *Handlers) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	title := http.StatusText(code)
	if title == "" {
		title = "Error"
	}

	renderErr := h.render(c, code, "error.html", &views.Data{
		Title:   title,
		Message: message,
	})
	if renderErr != nil {
		_ = c.NoContent(code)
	}
}
