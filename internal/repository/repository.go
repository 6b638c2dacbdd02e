// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package repository provides database access for the account service.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/vinovest/sqlx"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateUsername is returned when the username unique index rejects a write.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail is returned when the email unique index rejects a write.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Repository wraps sqlx for database operations.
type Repository struct {
	db *sqlx.DB
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying sqlx DB for direct access.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// wrapError converts database errors to repository errors. Unique
// constraint violations from the users table map to the duplicate-field
// errors so callers get the authoritative uniqueness verdict.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "users.username"):
			return ErrDuplicateUsername
		case strings.Contains(msg, "users.email"):
			return ErrDuplicateEmail
		}
	}
	return err
}
