// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"

	"codeberg.org/oliverandrich/digitalnomads/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	err := i18n.Init()
	require.NoError(t, err)
}

func TestT_English(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	msg := i18n.T(ctx, "flash_logged_out")

	assert.Equal(t, "You have been logged out.", msg)
}

func TestT_German(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.German)

	msg := i18n.T(ctx, "flash_logged_out")

	assert.Equal(t, "Du wurdest abgemeldet.", msg)
}

func TestT_UnknownMessageID(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	msg := i18n.T(ctx, "does_not_exist")

	assert.Equal(t, "does_not_exist", msg)
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())
	ctx := i18n.WithLocale(context.Background(), language.English)

	msg := i18n.TData(ctx, "flash_login_welcome", map[string]any{"Name": "nomad1"})

	assert.Equal(t, "Welcome back, nomad1!", msg)
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		header   string
		expected language.Tag
	}{
		{"de-DE,de;q=0.9", language.German},
		{"en-US,en;q=0.9", language.English},
		{"fr-FR", language.English},
		{"", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			tag := i18n.MatchLanguage(tt.header)
			base, _ := tag.Base()
			expectedBase, _ := tt.expected.Base()
			assert.Equal(t, expectedBase, base)
		})
	}
}
