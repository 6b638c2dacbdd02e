// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth implements the account state machine: signup, login,
// email confirmation, resend, and profile updates.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/oliverandrich/digitalnomads/internal/models"
	"codeberg.org/oliverandrich/digitalnomads/internal/repository"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/mailer"
	"codeberg.org/oliverandrich/digitalnomads/internal/services/token"
)

var (
	// ErrInvalidCredentials is returned for both unknown identifiers and
	// wrong passwords; callers must not be able to tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned when is_active is false.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrEmailNotVerified is returned on login before confirmation. A fresh
	// confirmation link has already been sent when this is returned.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrInvalidToken covers both bad signatures and expired tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUnknownUser is returned when a valid token names an email no
	// account holds.
	ErrUnknownUser = errors.New("unknown user")
)

// Service orchestrates the account transitions. All persistence goes
// through the repository; notification is best-effort and never blocks a
// state change.
type Service struct {
	repo     *repository.Repository
	tokens   *token.Service
	notifier mailer.Notifier
	baseURL  string
}

// NewService wires the account service.
func NewService(repo *repository.Repository, tokens *token.Service, notifier mailer.Notifier, baseURL string) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// SignupParams holds the parameters for account creation. Username and
// email are stored exactly as submitted.
type SignupParams struct {
	Username string
	Email    string
	Password string
}

// Signup creates an unverified, active account and sends a confirmation
// link. Delivery failures are logged and do not fail the signup.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	// Advisory pre-checks for friendlier field errors; the unique indexes
	// remain the authoritative guard on the insert below.
	if taken, err := s.repo.UsernameTaken(ctx, params.Username, 0); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, repository.ErrDuplicateUsername
	}
	if taken, err := s.repo.EmailTaken(ctx, params.Email, 0); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, repository.ErrDuplicateEmail
	}

	passwordHash, err := HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, user.Email)

	slog.Info("signup_success", "user_id", user.ID, "username", user.Username)

	return user, nil
}

// Login authenticates by username or email. An unverified account gets a
// fresh confirmation link and ErrEmailNotVerified; no session is
// established for it.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.lookup(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform a bcrypt comparison so an
			// unknown identifier is indistinguishable from a wrong password.
			compareDummy(password)
			slog.Warn("login_failed", "identifier", identifier, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		slog.Warn("login_failed", "identifier", identifier, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Warn("login_failed", "user_id", user.ID, "reason", "account_disabled")
		return nil, ErrAccountDisabled
	}

	if !user.EmailVerified {
		s.sendConfirmation(ctx, user.Email)
		slog.Info("login_blocked_unverified", "user_id", user.ID)
		return nil, ErrEmailNotVerified
	}

	slog.Info("login_success", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// lookup resolves an identifier as a username first, then as an email.
func (s *Service) lookup(ctx context.Context, identifier string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return s.repo.GetUserByEmail(ctx, identifier)
	}
	return user, err
}

// Confirm verifies a token and marks the matching account as verified.
// already is true when the account was verified before this call; that is
// a success, not an error.
func (s *Service) Confirm(ctx context.Context, tokenString string) (user *models.User, already bool, err error) {
	email, err := s.tokens.Verify(tokenString, token.DefaultMaxAge)
	if err != nil {
		slog.Warn("confirm_failed", "reason", "bad_token", "error", err)
		return nil, false, ErrInvalidToken
	}

	user, err = s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("confirm_failed", "reason", "unknown_email")
			return nil, false, ErrUnknownUser
		}
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.EmailVerified {
		return user, true, nil
	}

	user.VerifyEmail(time.Now())
	if err := s.repo.MarkEmailVerified(ctx, user.ID, *user.EmailVerifiedAt); err != nil {
		return nil, false, fmt.Errorf("failed to mark email verified: %w", err)
	}

	slog.Info("email_confirmed", "user_id", user.ID)
	return user, false, nil
}

// ResendConfirmation re-issues and resends a confirmation link.
// Unknown emails return success without sending anything so the endpoint
// cannot be used to probe which addresses have accounts. already is true
// when the account is verified and nothing was sent.
func (s *Service) ResendConfirmation(ctx context.Context, email string) (already bool, err error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Debug("resend_skipped", "reason", "unknown_email")
			return false, nil
		}
		return false, fmt.Errorf("failed to get user: %w", err)
	}

	if user.EmailVerified {
		return true, nil
	}

	s.sendConfirmation(ctx, user.Email)
	slog.Info("confirmation_resent", "user_id", user.ID)
	return false, nil
}

// ProfileParams holds the editable identity and profile fields.
type ProfileParams struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Country   string
}

// UpdateProfile applies the fields to the given account. Username and
// email collisions with other accounts fail with the duplicate errors.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, params ProfileParams) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if taken, err := s.repo.UsernameTaken(ctx, params.Username, userID); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, repository.ErrDuplicateUsername
	}
	if taken, err := s.repo.EmailTaken(ctx, params.Email, userID); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, repository.ErrDuplicateEmail
	}

	user.Username = params.Username
	user.Email = params.Email
	user.FirstName = params.FirstName
	user.LastName = params.LastName
	user.Bio = params.Bio
	user.Country = params.Country

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("profile_updated", "user_id", user.ID)
	return user, nil
}

// sendConfirmation issues a token and delivers the link, best-effort.
func (s *Service) sendConfirmation(ctx context.Context, email string) {
	tok, err := s.tokens.Issue(email)
	if err != nil {
		slog.Error("failed to issue confirmation token", "error", err)
		return
	}

	link := fmt.Sprintf("%s/confirm/%s", s.baseURL, tok)
	if err := s.notifier.SendConfirmation(ctx, email, link); err != nil {
		slog.Warn("confirmation email delivery failed", "email", email, "error", err)
	}
}
