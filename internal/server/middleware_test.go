// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"codeberg.org/oliverandrich/digitalnomads/internal/appcontext"
	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/i18n"
	"codeberg.org/oliverandrich/digitalnomads/internal/models"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/session"
	"codeberg.org/oliverandrich/digitalnomads/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func init() {
	_ = i18n.Init()
}

var testHashKey = []byte("0123456789abcdef0123456789abcdef")

func newTestSessionManager() *session.Manager {
	return session.NewManager(testHashKey, nil, "_test_session", 3600, false)
}

// currentUserHandler echoes the username resolved by loadUser, or 204.
func currentUserHandler(c echo.Context) error {
	if user := appcontext.CurrentUser(c.Request().Context()); user != nil {
		return c.String(http.StatusOK, user.Username)
	}
	return c.NoContent(http.StatusNoContent)
}

func TestLoadUser_ValidCookie(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewVerifiedUser(t, repo, "alice", "alice@example.com")
	sessions := newTestSessionManager()

	cookie, err := sessions.Create(user.ID, user.Username, false)
	require.NoError(t, err)

	e := echo.New()
	e.Use(loadUser(sessions, repo))
	e.GET("/", currentUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestLoadUser_NoCookie(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	sessions := newTestSessionManager()

	e := echo.New()
	e.Use(loadUser(sessions, repo))
	e.GET("/", currentUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoadUser_TamperedCookie(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	user := testutil.NewVerifiedUser(t, repo, "alice", "alice@example.com")
	sessions := newTestSessionManager()

	cookie, err := sessions.Create(user.ID, user.Username, false)
	require.NoError(t, err)
	cookie.Value += "x"

	e := echo.New()
	e.Use(loadUser(sessions, repo))
	e.GET("/", currentUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoadUser_DeactivatedAccount(t *testing.T) {
	db, repo := testutil.NewTestDB(t)
	user := testutil.NewVerifiedUser(t, repo, "alice", "alice@example.com")
	sessions := newTestSessionManager()

	cookie, err := sessions.Create(user.ID, user.Username, false)
	require.NoError(t, err)

	_, err = db.ExecContext(context.Background(),
		`UPDATE users SET is_active = 0 WHERE id = ?`, user.ID)
	require.NoError(t, err)

	e := echo.New()
	e.Use(loadUser(sessions, repo))
	e.GET("/", currentUserHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireAuth_RedirectsGuests(t *testing.T) {
	flashes := flash.NewManager(testHashKey, false)

	e := echo.New()
	e.GET("/dashboard", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, requireAuth(flashes))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req = req.WithContext(i18n.WithLocale(req.Context(), language.English))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuth_PassesUsers(t *testing.T) {
	flashes := flash.NewManager(testHashKey, false)

	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := appcontext.WithUser(c.Request().Context(), &models.User{ID: 1, Username: "alice"})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.GET("/dashboard", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, requireAuth(flashes))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAnonymous_RedirectsUsers(t *testing.T) {
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := appcontext.WithUser(c.Request().Context(), &models.User{ID: 1, Username: "alice"})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	e.GET("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, requireAnonymous())

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRequireAnonymous_PassesGuests(t *testing.T) {
	e := echo.New()
	e.GET("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, requireAnonymous())

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestI18nMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(i18nMiddleware())
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, i18n.GetLocale(c.Request().Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "de", rec.Body.String())
}
