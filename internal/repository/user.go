// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/digitalnomads/internal/models"
)

// CreateUser inserts a new user and fills in ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, first_name, last_name, bio, country,
		                    email_verified, email_verified_at, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.Bio, user.Country,
		user.EmailVerified, user.EmailVerifiedAt, user.IsActive,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return wrapError(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUser persists identity and profile fields and refreshes updated_at.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET username = ?, email = ?, first_name = ?, last_name = ?, bio = ?, country = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username, user.Email,
		user.FirstName, user.LastName, user.Bio, user.Country,
		user.UpdatedAt, user.ID)
	return wrapError(err)
}

// MarkEmailVerified stamps the verification fields. It touches nothing else
// besides updated_at.
func (r *Repository) MarkEmailVerified(ctx context.Context, id int64, verifiedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, email_verified_at = ?, updated_at = ? WHERE id = ?`,
		verifiedAt, time.Now().UTC(), id)
	return wrapError(err)
}

// UsernameTaken reports whether another user already holds the username.
// excludeID skips the given user (0 to check against everyone). The check
// is advisory; the unique index is the authoritative guard.
func (r *Repository) UsernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE username = ? AND id != ?`, username, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// EmailTaken reports whether another user already holds the email address.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, excludeID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
