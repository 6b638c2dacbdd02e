// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package forms holds the submitted form values and their validation.
// Validation is decoupled from rendering: each form returns a structured
// list of field errors the templates surface inline.
package forms

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Field limits, matching the users table.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 80
	EmailMaxLength    = 120
	PasswordMinLength = 8
	NameMaxLength     = 120
	BioMaxLength      = 500
)

// FieldError is a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the result of validating a form.
type Errors []FieldError

// Has reports whether the field has an error.
func (e Errors) Has(field string) bool {
	return e.Get(field) != ""
}

// Get returns the first error message for the field, or "".
func (e Errors) Get(field string) string {
	for _, err := range e {
		if err.Field == field {
			return err.Message
		}
	}
	return ""
}

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// SignupForm holds the registration fields.
type SignupForm struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
}

// Validate checks the signup fields. Values are validated as submitted;
// nothing is trimmed or lowercased.
func (f *SignupForm) Validate() Errors {
	var errs Errors

	validateUsername(&errs, f.Username)
	validateEmail(&errs, f.Email)

	if f.Password == "" {
		errs.add("password", "Password is required.")
	} else if utf8.RuneCountInString(f.Password) < PasswordMinLength {
		errs.add("password", fmt.Sprintf("Password must be at least %d characters long.", PasswordMinLength))
	}

	if f.PasswordConfirm != f.Password {
		errs.add("password_confirm", "Passwords must match.")
	}

	return errs
}

// LoginForm holds the login fields. The identifier is a username or an
// email address.
type LoginForm struct {
	Identifier string
	Password   string
	RememberMe bool
}

// Validate checks that both fields are present.
func (f *LoginForm) Validate() Errors {
	var errs Errors

	if f.Identifier == "" {
		errs.add("identifier", "Please enter your username or email.")
	}
	if f.Password == "" {
		errs.add("password", "Password is required.")
	}

	return errs
}

// ProfileForm holds the editable identity and profile fields.
type ProfileForm struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Country   string
}

// Validate checks the profile fields.
func (f *ProfileForm) Validate() Errors {
	var errs Errors

	validateUsername(&errs, f.Username)
	validateEmail(&errs, f.Email)

	if utf8.RuneCountInString(f.FirstName) > NameMaxLength {
		errs.add("first_name", fmt.Sprintf("First name must be at most %d characters.", NameMaxLength))
	}
	if utf8.RuneCountInString(f.LastName) > NameMaxLength {
		errs.add("last_name", fmt.Sprintf("Last name must be at most %d characters.", NameMaxLength))
	}
	if utf8.RuneCountInString(f.Bio) > BioMaxLength {
		errs.add("bio", fmt.Sprintf("Bio must be at most %d characters.", BioMaxLength))
	}
	if utf8.RuneCountInString(f.Country) > NameMaxLength {
		errs.add("country", fmt.Sprintf("Country must be at most %d characters.", NameMaxLength))
	}

	return errs
}

// ResendForm holds the resend-confirmation field.
type ResendForm struct {
	Email string
}

// Validate checks the email field.
func (f *ResendForm) Validate() Errors {
	var errs Errors
	validateEmail(&errs, f.Email)
	return errs
}

func validateUsername(errs *Errors, username string) {
	switch {
	case username == "":
		errs.add("username", "Username is required.")
	case utf8.RuneCountInString(username) < UsernameMinLength || utf8.RuneCountInString(username) > UsernameMaxLength:
		errs.add("username", fmt.Sprintf("Username must be between %d and %d characters.", UsernameMinLength, UsernameMaxLength))
	}
}

func validateEmail(errs *Errors, email string) {
	switch {
	case email == "":
		errs.add("email", "Email is required.")
	case utf8.RuneCountInString(email) > EmailMaxLength:
		errs.add("email", fmt.Sprintf("Email must be at most %d characters.", EmailMaxLength))
	default:
		addr, err := mail.ParseAddress(email)
		// Reject the name-addr form; only a bare address is a valid input.
		if err != nil || addr.Address != email || strings.ContainsAny(email, " <>") {
			errs.add("email", "Invalid email address.")
		}
	}
}
