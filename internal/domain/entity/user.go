// Package entity contains the core business objects of the credential service.
package entity

const (
	// SystemUserID identifies the hidden system account. It is never stored.
	SystemUserID = -1

	// ReservedUserName is the name of the hidden system account and may never be persisted.
	ReservedUserName = "sys"
)

// User is an account in the credential store.
type User struct {
	UserID   int    // Storage identity; SystemUserID for the hidden account.
	Name     string // Unique, case-sensitive login name.
	Email    string // Contact address, may be empty.
	Enabled  bool   // Whether the account may act at all.
	IsAdmin  bool   // Whether the account may use admin operations.
	Salt     string // Per-account nonce mixed into the password hash.
	Password string // Uppercase hex digest of Name||Salt||cleartext, never the cleartext.
}

// SystemUser returns the hidden system account used for bootstrap operations.
// It is always enabled and admin, and has no usable credentials.
func SystemUser() *User {
	return &User{
		UserID:  SystemUserID,
		Name:    ReservedUserName,
		Enabled: true,
		IsAdmin: true,
	}
}

// IsSystem reports whether u is the hidden system account.
func (u *User) IsSystem() bool {
	return u != nil && u.UserID == SystemUserID
}
