package auth

import (
	"github.com/devtrail/devtrail-be/internal/apperr"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted raw password length.
const MinPasswordLength = 6

// bcrypt cost 10, matching the adaptive cost the rest of the stack assumes.
const hashCost = 10

// HashPassword derives a salted bcrypt hash from a raw password. The caller
// is responsible for only invoking it when the password actually changed;
// hashing is never triggered implicitly.
func HashPassword(raw string) (string, error) {
	if len(raw) < MinPasswordLength {
		return "", apperr.Validationf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a raw password against a stored bcrypt hash.
// Returns false on any mismatch; never returns an error to the caller.
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}
