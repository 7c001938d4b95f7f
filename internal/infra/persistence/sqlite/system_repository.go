package sqlite

import (
	"context"

	"peerbackup/internal/domain/entity"
	domainerrors "peerbackup/internal/domain/errors"
	"peerbackup/internal/domain/repository"
	"peerbackup/internal/errors"
	"peerbackup/internal/infra/persistence/model"

	"gorm.io/gorm"
)

type systemRepository struct {
	db *gorm.DB
}

// NewSystemRepository builds a SystemRepository on db.
func NewSystemRepository(db *gorm.DB) repository.SystemRepository {
	return &systemRepository{db: db}
}

// HasSchema uses the System table as the marker of a formatted store.
func (repo *systemRepository) HasSchema(ctx context.Context) (bool, error) {
	return repo.db.WithContext(ctx).Migrator().HasTable(&model.SystemModel{}), nil
}

func (repo *systemRepository) CreateSchema(ctx context.Context) error {
	if err := repo.db.WithContext(ctx).Migrator().CreateTable(model.All()...); err != nil {
		return domainerrors.NewStorageError(err, "failed to create schema")
	}

	return nil
}

func (repo *systemRepository) InsertSetting(ctx context.Context, setting *entity.SystemSetting) error {
	row := &model.SystemModel{
		Category: setting.Category,
		Setting:  setting.Setting,
		Value:    setting.Value,
	}
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		return domainerrors.NewStorageError(err, "failed to write system setting")
	}

	return nil
}

func (repo *systemRepository) FindSetting(ctx context.Context, category, setting string) (string, error) {
	var row model.SystemModel
	err := repo.db.WithContext(ctx).
		Where("Category = ? AND Setting = ?", category, setting).
		Order("rowid").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrSettingNotFound
		}

		return "", domainerrors.NewStorageError(err, "failed to read system setting")
	}

	return row.Value, nil
}
