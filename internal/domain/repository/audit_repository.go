package repository

import (
	"context"

	"peerbackup/internal/domain/entity"
)

// AuditRepository appends to and reads the audit trail. Rows are never modified.
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error

	// List returns every entry in insertion order.
	List(ctx context.Context) ([]*entity.AuditEntry, error)
}
