// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"codeberg.org/oliverandrich/digitalnomads/internal/database"
	"codeberg.org/oliverandrich/digitalnomads/internal/models"
	"codeberg.org/oliverandrich/digitalnomads/internal/repository"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// Password is the password used for all fixture users.
const Password = "password123"

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates an unverified, active test user with Password.
func NewTestUser(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	ctx := context.Background()

	hash, err := auth.HashPassword(Password)
	require.NoError(t, err)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, repo.CreateUser(ctx, user))
	return user
}

// NewVerifiedUser creates a test user whose email is already confirmed.
func NewVerifiedUser(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	ctx := context.Background()

	user := NewTestUser(t, repo, username, email)
	verifiedAt := user.CreatedAt
	require.NoError(t, repo.MarkEmailVerified(ctx, user.ID, verifiedAt))

	user, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	return user
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewFormContext creates an Echo context carrying form-encoded values,
// the shape every POST handler in this app consumes.
func NewFormContext(e *echo.Echo, method, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
