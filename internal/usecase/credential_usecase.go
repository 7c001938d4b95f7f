// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"peerbackup/internal/domain/entity"
)

// --- Input DTOs ---

// CreateUserInput defines the data required to create an account.
type CreateUserInput struct {
	ActingUserID int    // Account performing the operation; entity.SystemUserID for bootstrap.
	Name         string // New, unique account name.
	Email        string
	Enabled      bool
	IsAdmin      bool
	Password     string // Cleartext; only its salted digest is stored.
}

// StoreInitializer is the part of the credential store the service worker
// needs to bring the store up.
type StoreInitializer interface {
	// IsFormatted reports whether the store schema exists.
	IsFormatted(ctx context.Context) (bool, error)

	// FormatNewDatabase creates the schema, default settings and the bootstrap admin in one transaction.
	FormatNewDatabase(ctx context.Context) error

	// InitDatabase verifies that the store carries the supported version.
	InitDatabase(ctx context.Context) error
}

// CredentialUsecase defines the credential store operations.
type CredentialUsecase interface {
	StoreInitializer

	// CreateUser creates an account on behalf of an enabled admin.
	CreateUser(ctx context.Context, input CreateUserInput) error

	// GetUserByID resolves id; entity.SystemUserID is synthesized without touching storage.
	GetUserByID(ctx context.Context, id int) (*entity.User, error)

	// GetUserByName resolves a stored account by exact name.
	GetUserByName(ctx context.Context, name string) (*entity.User, error)

	// Authenticate checks a cleartext password against the stored digest.
	Authenticate(ctx context.Context, name, password string) (*entity.User, error)

	WriteSystemSetting(ctx context.Context, category, setting, value string) error
	ReadSystemSetting(ctx context.Context, category, setting string) (string, error)

	// AppendAudit appends one immutable row stamped with the current UTC time.
	AppendAudit(ctx context.Context, actorID int, action, details string) error
	ListAudit(ctx context.Context) ([]*entity.AuditEntry, error)
}
