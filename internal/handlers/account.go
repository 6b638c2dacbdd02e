// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"codeberg.org/oliverandrich/digitalnomads/internal/appcontext"
	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/forms"
	"codeberg.org/oliverandrich/digitalnomads/internal/repository"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/auth"
	"codeberg.org/oliverandrich/digitalnomads/internal/views"
	"github.com/labstack/echo/v4"
)

// Dashboard renders the dashboard for the signed-in user.
func (h *Handlers) Dashboard(c echo.Context) error {
	return h.render(c, http.StatusOK, "dashboard.html", &views.Data{Title: "Dashboard"})
}

// Profile renders the profile page.
func (h *Handlers) Profile(c echo.Context) error {
	return h.render(c, http.StatusOK, "profile.html", &views.Data{Title: "Profile"})
}

// Settings renders the settings page.
func (h *Handlers) Settings(c echo.Context) error {
	return h.render(c, http.StatusOK, "settings.html", &views.Data{Title: "Settings"})
}

// ProfileEditPage renders the edit form prefilled with the current values.
func (h *Handlers) ProfileEditPage(c echo.Context) error {
	user := appcontext.CurrentUser(c.Request().Context())
	form := &forms.ProfileForm{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Country:   user.Country,
	}
	return h.render(c, http.StatusOK, "profile_edit.html", &views.Data{
		Title: "Edit profile",
		Form:  form,
	})
}

// ProfileEdit applies the submitted profile changes.
func (h *Handlers) ProfileEdit(c echo.Context) error {
	user := appcontext.CurrentUser(c.Request().Context())

	form := &forms.ProfileForm{
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Bio:       c.FormValue("bio"),
		Country:   c.FormValue("country"),
	}
	data := &views.Data{Title: "Edit profile", Form: form}

	if errs := form.Validate(); len(errs) > 0 {
		data.Errors = errs
		return h.render(c, http.StatusOK, "profile_edit.html", data)
	}

	_, err := h.auth.UpdateProfile(c.Request().Context(), user.ID, auth.ProfileParams{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Bio:       form.Bio,
		Country:   form.Country,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		data.Errors = forms.Errors{{Field: "username", Message: "Username already exists. Please choose a different one."}}
		return h.render(c, http.StatusOK, "profile_edit.html", data)
	case errors.Is(err, repository.ErrDuplicateEmail):
		data.Errors = forms.Errors{{Field: "email", Message: "Email already registered. Please use a different one or log in."}}
		return h.render(c, http.StatusOK, "profile_edit.html", data)
	case err != nil:
		return err
	}

	h.addFlash(c, flash.Success, "flash_profile_updated")
	return redirect(c, "/profile")
}
