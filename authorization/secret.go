// Package authorization verifies the single shared admin secret protecting
// mutating endpoints. There are no accounts, tokens, or roles: this is a
// single-owner page and the secret is compared directly.
package authorization

import (
	"crypto/subtle"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Secret holds the configured admin credential. Exactly one of plain or
// hash is set; when neither is configured every check fails.
type Secret struct {
	plain string
	hash  []byte
}

// SecretFromEnv reads ADMIN_PASSWORD_HASH (a bcrypt hash, preferred) or
// ADMIN_PASSWORD (the plain secret).
func SecretFromEnv() *Secret {
	if hash := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")); hash != "" {
		return &Secret{hash: []byte(hash)}
	}
	return &Secret{plain: os.Getenv("ADMIN_PASSWORD")}
}

// PlainSecret builds a Secret from a literal password. Mainly useful for
// tests.
func PlainSecret(password string) *Secret {
	return &Secret{plain: password}
}

// HashedSecret builds a Secret from a bcrypt hash.
func HashedSecret(hash string) *Secret {
	return &Secret{hash: []byte(hash)}
}

// Verify reports whether the candidate matches the configured secret. An
// unconfigured secret never matches.
func (s *Secret) Verify(candidate string) bool {
	if s == nil {
		return false
	}
	if len(s.hash) > 0 {
		return bcrypt.CompareHashAndPassword(s.hash, []byte(candidate)) == nil
	}
	if s.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.plain), []byte(candidate)) == 1
}
