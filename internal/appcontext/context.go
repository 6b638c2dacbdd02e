// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext defines typed context keys used across packages.
package appcontext

import (
	"context"

	"codeberg.org/oliverandrich/digitalnomads/internal/models"
)

type userKey struct{}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// CurrentUser returns the authenticated user from the context, or nil if
// not authenticated.
func CurrentUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userKey{}).(*models.User); ok {
		return user
	}
	return nil
}

// IsAuthenticated returns true if the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return CurrentUser(ctx) != nil
}
