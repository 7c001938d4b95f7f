// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the credential service and the storage engine.
package repository

import (
	"context"

	"peerbackup/internal/domain/entity"
)

// UserRepository defines the standard operations for user persistence.
type UserRepository interface {
	// FindByID retrieves a stored user. The hidden system account is not stored.
	FindByID(ctx context.Context, id int) (*entity.User, error)

	// FindByName retrieves a stored user by exact, case-sensitive name.
	FindByName(ctx context.Context, name string) (*entity.User, error)

	// Create inserts user and sets its generated UserID.
	Create(ctx context.Context, user *entity.User) error

	// Note: Update and Delete are not part of the current account lifecycle.
}
