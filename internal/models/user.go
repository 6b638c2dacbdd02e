// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models defines the persisted records.
package models

import (
	"strings"
	"time"
)

// User is one account record. Username and email are globally unique;
// the unique indexes on the users table are the authoritative guard.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`

	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Bio       string `db:"bio" json:"bio"`
	Country   string `db:"country" json:"country"`

	EmailVerified   bool       `db:"email_verified" json:"email_verified"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at"`

	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VerifyEmail marks the email as verified. EmailVerifiedAt is set if and
// only if EmailVerified is true.
func (u *User) VerifyEmail(now time.Time) {
	u.EmailVerified = true
	verifiedAt := now.UTC()
	u.EmailVerifiedAt = &verifiedAt
}

// DisplayName returns the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
