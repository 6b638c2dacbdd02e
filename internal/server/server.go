// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires the application together and runs the HTTP server.
package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/oliverandrich/digitalnomads/internal/config"
	"codeberg.org/oliverandrich/digitalnomads/internal/database"
	"codeberg.org/oliverandrich/digitalnomads/internal/flash"
	"codeberg.org/oliverandrich/digitalnomads/internal/handlers"
	"codeberg.org/oliverandrich/digitalnomads/internal/i18n"
	"codeberg.org/oliverandrich/digitalnomads/internal/repository"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/auth"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/mailer"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/session"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/token"
	"codeberg.org/oliverandrich/digitalnomads/internal/views"
	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
		"environment", cfg.Environment,
	)

	if cfg.IsProduction() && cfg.Security.SecretKey == config.DefaultSecretKey {
		return errors.New("refusing to start in production with the default secret key")
	}

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository and services
	repo := repository.New(db)
	tokens := token.NewService(cfg.Security.SecretKey, cfg.Security.Salt)

	var notifier mailer.Notifier
	if cfg.Mail.Host == "" {
		slog.Warn("no mail host configured, confirmation links are logged instead of sent")
		notifier = mailer.NewLogOnly()
	} else {
		notifier, err = mailer.NewSMTP(&cfg.Mail)
		if err != nil {
			return fmt.Errorf("failed to set up mailer: %w", err)
		}
	}

	authService := auth.NewService(repo, tokens, notifier, cfg.Server.BaseURL)

	// Cookie keys
	hashKey, blockKey, err := cookieKeys(cfg)
	if err != nil {
		return err
	}

	secure := strings.HasPrefix(cfg.Server.BaseURL, "https://")
	sessions := session.NewManager(hashKey, blockKey, cfg.Session.CookieName, cfg.Session.MaxAge, secure)
	flashes := flash.NewManager(hashKey, secure)

	// Views
	v, err := views.New()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg, sessions, repo)
	h := setupRoutes(e, authService, sessions, flashes, v)
	e.HTTPErrorHandler = h.ErrorHandler

	return startWithGracefulShutdown(e, cfg)
}

// cookieKeys decodes the configured session keys. In development missing
// keys fall back to random ones, which invalidates sessions on restart.
func cookieKeys(cfg *config.Config) (hashKey, blockKey []byte, err error) {
	if cfg.Session.HashKey == "" {
		if cfg.IsProduction() {
			return nil, nil, errors.New("session-hash-key must be set in production")
		}
		slog.Warn("no session hash key configured, using a random key")
		return securecookie.GenerateRandomKey(32), nil, nil
	}

	hashKey, err = hex.DecodeString(cfg.Session.HashKey)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid session-hash-key: %w", err)
	}

	if cfg.Session.BlockKey != "" {
		blockKey, err = hex.DecodeString(cfg.Session.BlockKey)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid session-block-key: %w", err)
		}
	}

	return hashKey, blockKey, nil
}

func setupRoutes(e *echo.Echo, authService *auth.Service, sessions *session.Manager, flashes *flash.Manager, v *views.Views) *handlers.Handlers {
	h := handlers.New(authService, sessions, flashes, v)

	// Static files
	e.Static("/static", "static")

	e.GET("/health", h.Health)
	e.GET("/", h.Home)

	// Guest-only pages
	anonymous := requireAnonymous()
	e.GET("/signup", h.SignupPage, anonymous)
	e.POST("/signup", h.Signup, anonymous)
	e.GET("/login", h.LoginPage, anonymous)
	e.POST("/login", h.Login, anonymous)

	// Email confirmation
	e.GET("/confirm/:token", h.Confirm)
	e.GET("/resend-confirmation", h.ResendConfirmationPage)
	e.POST("/resend-confirmation", h.ResendConfirmation)

	// Signed-in pages
	authed := requireAuth(flashes)
	e.GET("/logout", h.Logout, authed)
	e.GET("/dashboard", h.Dashboard, authed)
	e.GET("/profile", h.Profile, authed)
	e.GET("/profile/edit", h.ProfileEditPage, authed)
	e.POST("/profile/edit", h.ProfileEdit, authed)
	e.GET("/settings", h.Settings, authed)

	return h
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
