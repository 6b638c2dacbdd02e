// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/digitalnomads/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func buildConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()

	var cfg *config.Config
	cmd := &cli.Command{
		Name:  "app",
		Flags: config.Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg = config.NewFromCLI(cmd)
			return nil
		},
	}

	err := cmd.Run(context.Background(), append([]string{"app"}, args...))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := buildConfig(t)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "./data/app.db", cfg.Database.DSN)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.True(t, cfg.Mail.TLS)
	assert.Equal(t, "email-confirm-salt", cfg.Security.Salt)
	assert.Equal(t, "_session", cfg.Session.CookieName)
	assert.Equal(t, 604800, cfg.Session.MaxAge)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
}

func TestBaseURLHidesPort80(t *testing.T) {
	cfg := buildConfig(t, "--host", "nomads.example.com", "--port", "80")

	assert.Equal(t, "http://nomads.example.com", cfg.Server.BaseURL)
}

func TestExplicitBaseURL(t *testing.T) {
	cfg := buildConfig(t, "--base-url", "https://nomads.example.com")

	assert.Equal(t, "https://nomads.example.com", cfg.Server.BaseURL)
}

func TestMailFromDefaultsToUsername(t *testing.T) {
	cfg := buildConfig(t, "--mail-username", "mailer@nomads.example.com")

	assert.Equal(t, "mailer@nomads.example.com", cfg.Mail.From)
}

func TestProductionEnvironment(t *testing.T) {
	cfg := buildConfig(t, "--environment", "production")

	assert.True(t, cfg.IsProduction())
}
