// Package service defines interfaces for stateless domain collaborators.
package service

// PasswordHasher generates salts and derives stored password digests.
type PasswordHasher interface {
	// NewNonce returns length characters drawn from [A-Za-z0-9] using a secure source.
	NewNonce(length int) (string, error)

	// HashPassword returns the uppercase hex digest of name||salt||cleartext.
	HashPassword(name, salt, cleartext string) string

	// Check reports whether cleartext matches a digest produced by HashPassword.
	Check(name, salt, cleartext, hash string) bool
}
