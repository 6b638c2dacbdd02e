// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package views renders the HTML pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/forms"
	"codeberg.org/oliverandrich/digitalnomads/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages lists every renderable page template.
var pages = []string{
	"home.html",
	"signup.html",
	"login.html",
	"dashboard.html",
	"profile.html",
	"profile_edit.html",
	"settings.html",
	"resend_confirmation.html",
	"error.html",
}

// Data is the payload every page receives.
type Data struct { //nolint:govet // fieldalignment not critical here
	Title     string
	User      *models.User
	Flash     []flash.Message
	CSRFToken string
	Form      any
	Errors    forms.Errors
	Message   string
}

// Views holds the parsed page templates.
type Views struct {
	pages map[string]*template.Template
}

// New parses all embedded templates.
func New() (*Views, error) {
	parsed := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		tpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		parsed[page] = tpl
	}

	return &Views{pages: parsed}, nil
}

// Render writes the page to w.
func (v *Views) Render(w io.Writer, page string, data *Data) error {
	tpl, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if data == nil {
		data = &Data{}
	}
	return tpl.ExecuteTemplate(w, "base", data)
}
