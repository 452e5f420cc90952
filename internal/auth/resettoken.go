package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ResetTokenTTL is how long a password-reset token stays valid.
const ResetTokenTTL = 10 * time.Minute

const tokenBytes = 20 // 160 bits of entropy, hex-encoded to 40 chars

// GenerateToken produces a high-entropy single-use token. The raw token is
// returned for out-of-band delivery and never stored; only the sha256 digest
// is persisted. These tokens are short-lived, so a fast digest is used
// rather than the adaptive password hash.
func GenerateToken() (raw, hashed string, err error) {
	buf := make([]byte, tokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), nil
}

// HashToken computes the digest stored and compared for a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TokenMatches reports whether a presented raw token corresponds to a stored
// digest. Callers must check expiry before calling this.
func TokenMatches(raw, storedHash string) bool {
	return storedHash != "" && HashToken(raw) == storedHash
}
