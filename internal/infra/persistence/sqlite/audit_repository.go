package sqlite

import (
	"context"

	"peerbackup/internal/domain/entity"
	domainerrors "peerbackup/internal/domain/errors"
	"peerbackup/internal/domain/repository"
	"peerbackup/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository builds an AuditRepository on db.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	row := &model.AuditModel{
		UserID:   entry.ActorUserID,
		DateTime: entity.FormatAuditTime(entry.Timestamp),
		Action:   entry.Action,
		Details:  entry.Details,
	}
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		return domainerrors.NewStorageError(err, "failed to append audit entry")
	}

	return nil
}

// List orders by rowid, which follows insertion order for an append-only table.
func (repo *auditRepository) List(ctx context.Context) ([]*entity.AuditEntry, error) {
	var rows []model.AuditModel
	if err := repo.db.WithContext(ctx).Order("rowid").Find(&rows).Error; err != nil {
		return nil, domainerrors.NewStorageError(err, "failed to list audit entries")
	}

	entries := make([]*entity.AuditEntry, 0, len(rows))
	for _, row := range rows {
		ts, err := entity.ParseAuditTime(row.DateTime)
		if err != nil {
			return nil, domainerrors.NewStorageError(err, "malformed audit timestamp")
		}
		entries = append(entries, &entity.AuditEntry{
			ActorUserID: row.UserID,
			Timestamp:   ts,
			Action:      row.Action,
			Details:     row.Details,
		})
	}

	return entries, nil
}
