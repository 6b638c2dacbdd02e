// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and verifies stateless email-confirmation tokens.
//
// A token is a signed payload of the email address and the issue time.
// Validity is proven by the signature and the embedded timestamp alone;
// nothing is stored server-side, so a token stays valid until its window
// elapses regardless of later account changes.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultMaxAge is the validity window for confirmation tokens.
const DefaultMaxAge = 24 * time.Hour

var (
	// ErrInvalid is returned when the signature or structure is wrong.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned when the issue time plus the max age has passed.
	ErrExpired = errors.New("token expired")
)

// Service signs and verifies confirmation tokens. The signing key is
// derived from the application secret and a salt so that tokens from this
// service never verify against any other use of the same secret.
type Service struct {
	key []byte
	now func() time.Time
}

// NewService derives the signing key from the secret and salt.
func NewService(secret, salt string) *Service {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))

	return &Service{
		key: mac.Sum(nil),
		now: time.Now,
	}
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issue produces an opaque token binding the email to the current time.
func (s *Service) Issue(email string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now().UTC()),
		},
	})

	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify recomputes the signature and checks the validity window. It
// returns the embedded email on success, ErrInvalid on a signature or
// structure failure, and ErrExpired once issue time + maxAge has passed.
func (s *Service) Verify(tokenString string, maxAge time.Duration) (string, error) {
	var cl claims

	parsed, err := jwt.ParseWithClaims(tokenString, &cl, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalid
	}

	if cl.Email == "" || cl.IssuedAt == nil {
		return "", ErrInvalid
	}

	if s.now().After(cl.IssuedAt.Time.Add(maxAge)) {
		return "", ErrExpired
	}

	return cl.Email, nil
}
