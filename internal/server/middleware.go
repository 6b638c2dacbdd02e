// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/digitalnomads/internal/appcontext"
	"codeberg.org/oliverandrich/digitalnomads/internal/config"
	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/i18n"
	"codeberg.org/oliverandrich/digitalnomads/internal/repository"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, sessions *session.Manager, repo *repository.Repository) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.Gzip())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(csrfMiddleware(cfg))
	e.Use(i18nMiddleware())
	e.Use(loadUser(sessions, repo))
}

// csrfMiddleware configures CSRF protection.
func csrfMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")

	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	})
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// loadUser resolves the session cookie to a user record and stores it in
// the request context. An invalid or stale cookie means no user; it never
// fails the request. Deactivated accounts are treated as signed out.
func loadUser(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := sessions.Parse(c.Request())
			if err != nil || identity == nil {
				return next(c)
			}

			user, err := repo.GetUserByID(c.Request().Context(), identity.UserID)
			if err != nil || !user.IsActive {
				return next(c)
			}

			ctx := appcontext.WithUser(c.Request().Context(), user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// requireAuth redirects guests to the login page.
func requireAuth(flashes *flash.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !appcontext.IsAuthenticated(c.Request().Context()) {
				text := i18n.T(c.Request().Context(), "flash_login_required")
				flashes.Add(c.Response(), c.Request(), flash.Info, text)
				return c.Redirect(http.StatusSeeOther, "/login")
			}
			return next(c)
		}
	}
}

// requireAnonymous sends signed-in users to the dashboard.
func requireAnonymous() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if appcontext.IsAuthenticated(c.Request().Context()) {
				return c.Redirect(http.StatusSeeOther, "/dashboard")
			}
			return next(c)
		}
	}
}
