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

// SignupPage renders the registration form.
func (h *Handlers) SignupPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "signup.html", &views.Data{
		Title: "Sign up",
		Form:  &forms.SignupForm{},
	})
}

// Signup creates a new account and redirects to the login page.
func (h *Handlers) Signup(c echo.Context) error {
	form := &forms.SignupForm{
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		PasswordConfirm: c.FormValue("password_confirm"),
	}
	data := &views.Data{Title: "Sign up", Form: form}

	if errs := form.Validate(); len(errs) > 0 {
		data.Errors = errs
		return h.render(c, http.StatusOK, "signup.html", data)
	}

	_, err := h.auth.Signup(c.Request().Context(), auth.SignupParams{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		data.Errors = forms.Errors{{Field: "username", Message: "Username already exists. Please choose a different one."}}
		return h.render(c, http.StatusOK, "signup.html", data)
	case errors.Is(err, repository.ErrDuplicateEmail):
		data.Errors = forms.Errors{{Field: "email", Message: "Email already registered. Please use a different one or log in."}}
		return h.render(c, http.StatusOK, "signup.html", data)
	case err != nil:
		return err
	}

	h.addFlash(c, flash.Success, "flash_signup_success")
	return redirect(c, "/login")
}

// LoginPage renders the login form.
func (h *Handlers) LoginPage(c echo.Context) error {
	return h.render(c, http.StatusOK, "login.html", &views.Data{
		Title: "Log in",
		Form:  &forms.LoginForm{},
	})
}

// Login authenticates the user and establishes a session.
func (h *Handlers) Login(c echo.Context) error {
	form := &forms.LoginForm{
		Identifier: c.FormValue("identifier"),
		Password:   c.FormValue("password"),
		RememberMe: c.FormValue("remember_me") != "",
	}
	data := &views.Data{Title: "Log in", Form: form}

	if errs := form.Validate(); len(errs) > 0 {
		data.Errors = errs
		return h.render(c, http.StatusOK, "login.html", data)
	}

	user, err := h.auth.Login(c.Request().Context(), form.Identifier, form.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		data.Flash = flashNow(c, flash.Error, "flash_invalid_credentials")
		return h.render(c, http.StatusOK, "login.html", data)
	case errors.Is(err, auth.ErrAccountDisabled):
		data.Flash = flashNow(c, flash.Error, "flash_account_disabled")
		return h.render(c, http.StatusOK, "login.html", data)
	case errors.Is(err, auth.ErrEmailNotVerified):
		h.addFlash(c, flash.Info, "flash_email_not_verified")
		return redirect(c, "/login")
	case err != nil:
		return err
	}

	cookie, err := h.sessions.Create(user.ID, user.Username, form.RememberMe)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	h.addFlashData(c, flash.Success, "flash_login_welcome", map[string]any{"Name": user.DisplayName()})
	return redirect(c, "/dashboard")
}

// Logout terminates the session.
func (h *Handlers) Logout(c echo.Context) error {
	c.SetCookie(h.sessions.Clear())
	h.addFlash(c, flash.Info, "flash_logged_out")
	return redirect(c, "/")
}

// Confirm handles the confirmation link from the email.
func (h *Handlers) Confirm(c echo.Context) error {
	_, already, err := h.auth.Confirm(c.Request().Context(), c.Param("token"))
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		h.addFlash(c, flash.Error, "flash_confirm_invalid")
		return redirect(c, "/resend-confirmation")
	case errors.Is(err, auth.ErrUnknownUser):
		h.addFlash(c, flash.Error, "flash_confirm_unknown")
		return redirect(c, "/signup")
	case err != nil:
		return err
	}

	if already {
		h.addFlash(c, flash.Info, "flash_confirm_already")
	} else {
		h.addFlash(c, flash.Success, "flash_confirm_success")
	}
	return redirect(c, "/login")
}

// ResendConfirmationPage renders the resend form, prefilled for
// authenticated users.
func (h *Handlers) ResendConfirmationPage(c echo.Context) error {
	form := &forms.ResendForm{}
	if user := appcontext.CurrentUser(c.Request().Context()); user != nil {
		form.Email = user.Email
	}
	return h.render(c, http.StatusOK, "resend_confirmation.html", &views.Data{
		Title: "Resend confirmation",
		Form:  form,
	})
}

// ResendConfirmation re-sends the confirmation link. Unauthenticated
// callers always get the generic success message so the endpoint cannot
// be used to probe which emails have accounts.
func (h *Handlers) ResendConfirmation(c echo.Context) error {
	user := appcontext.CurrentUser(c.Request().Context())

	email := c.FormValue("email")
	if user != nil {
		email = user.Email
	} else {
		form := &forms.ResendForm{Email: email}
		if errs := form.Validate(); len(errs) > 0 {
			return h.render(c, http.StatusOK, "resend_confirmation.html", &views.Data{
				Title:  "Resend confirmation",
				Form:   form,
				Errors: errs,
			})
		}
	}

	already, err := h.auth.ResendConfirmation(c.Request().Context(), email)
	if err != nil {
		return err
	}

	if user != nil && already {
		h.addFlash(c, flash.Info, "flash_resend_already")
		return redirect(c, "/dashboard")
	}

	h.addFlash(c, flash.Success, "flash_resend_sent")
	if user != nil {
		return redirect(c, "/settings")
	}
	return redirect(c, "/login")
}
