package repository

import (
	"context"

	"peerbackup/internal/domain/entity"
)

// SystemRepository manages the schema and the System settings table.
type SystemRepository interface {
	// HasSchema reports whether the store has been formatted.
	HasSchema(ctx context.Context) (bool, error)

	// CreateSchema materializes the System, User and Audit tables.
	CreateSchema(ctx context.Context) error

	// InsertSetting always inserts a fresh row; callers must not duplicate (Category, Setting).
	InsertSetting(ctx context.Context, setting *entity.SystemSetting) error

	// FindSetting returns the value of (category, setting).
	FindSetting(ctx context.Context, category, setting string) (string, error)
}
