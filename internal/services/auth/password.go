// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// HashPassword produces a salted bcrypt digest. Plaintext is never stored.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the password matches the digest.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// compareDummy burns a bcrypt comparison so that an unknown identifier
// takes the same time as a wrong password.
func compareDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
