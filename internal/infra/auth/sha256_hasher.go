// Package auth provides concrete implementations for credential-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"peerbackup/internal/domain/service"
	"peerbackup/internal/errors"
)

// nonceAlphabet holds the 62 symbols a nonce is drawn from.
const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz1234567890"

// sha256Hasher implements service.PasswordHasher with salted SHA-256.
type sha256Hasher struct{}

// NewSHA256Hasher is the constructor for sha256Hasher.
func NewSHA256Hasher() service.PasswordHasher {
	return &sha256Hasher{}
}

// NewNonce draws four random bytes per character and reduces them modulo 62.
// 2^32 is not a multiple of 62, so the first 2^32 mod 62 symbols are favoured
// by about one part in 2^26; that bias is accepted.
func (h *sha256Hasher) NewNonce(length int) (string, error) {
	if length < 0 {
		return "", errors.Errorf("nonce length must not be negative, got %d", length)
	}

	data := make([]byte, 4*length)
	if _, err := rand.Read(data); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	var sb strings.Builder
	sb.Grow(length)
	for i := range length {
		idx := binary.LittleEndian.Uint32(data[i*4:]) % uint32(len(nonceAlphabet))
		sb.WriteByte(nonceAlphabet[idx])
	}

	return sb.String(), nil
}

// HashPassword is deterministic: equal inputs always give equal output.
func (h *sha256Hasher) HashPassword(name, salt, cleartext string) string {
	sum := sha256.Sum256([]byte(name + salt + cleartext))

	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Check compares in constant time so timing does not reveal a partial match.
func (h *sha256Hasher) Check(name, salt, cleartext, hash string) bool {
	want := h.HashPassword(name, salt, cleartext)

	return subtle.ConstantTimeCompare([]byte(want), []byte(hash)) == 1
}
