package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"peerbackup/config"
	"peerbackup/internal/domain/entity"
	domainerrors "peerbackup/internal/domain/errors"
	"peerbackup/internal/domain/repository"
	"peerbackup/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestStore(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Store.Path = filepath.Join(t.TempDir(), "store.db")

	db, err := Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func openFormattedStore(t *testing.T) *gorm.DB {
	t.Helper()

	db := openTestStore(t)
	require.NoError(t, NewSystemRepository(db).CreateSchema(context.Background()))

	return db
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(config.StoreConfig{Path: "/var/lib/peerbackup.db", BusyTimeout: 2 * time.Second})
	assert.Equal(t, "/var/lib/peerbackup.db?_pragma=busy_timeout%282000%29", dsn)
}

func TestSystemRepository_Schema(t *testing.T) {
	db := openTestStore(t)
	repo := NewSystemRepository(db)
	ctx := context.Background()

	has, err := repo.HasSchema(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.CreateSchema(ctx))

	has, err = repo.HasSchema(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	assert.Error(t, repo.CreateSchema(ctx), "creating the schema twice must fail")
}

func TestSystemRepository_Settings(t *testing.T) {
	repo := NewSystemRepository(openFormattedStore(t))
	ctx := context.Background()

	_, err := repo.FindSetting(ctx, entity.SettingCategorySystem, entity.SettingVersion)
	assert.ErrorIs(t, err, domainerrors.ErrSettingNotFound)

	require.NoError(t, repo.InsertSetting(ctx, &entity.SystemSetting{
		Category: entity.SettingCategorySystem,
		Setting:  entity.SettingVersion,
		Value:    "1.0",
	}))
	// Lookups return the first row written for a key.
	require.NoError(t, repo.InsertSetting(ctx, &entity.SystemSetting{
		Category: entity.SettingCategorySystem,
		Setting:  entity.SettingVersion,
		Value:    "9.9",
	}))

	value, err := repo.FindSetting(ctx, entity.SettingCategorySystem, entity.SettingVersion)
	require.NoError(t, err)
	assert.Equal(t, "1.0", value)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(openFormattedStore(t))
	ctx := context.Background()

	user := &entity.User{
		Name:     "alice",
		Email:    "alice@example.com",
		Enabled:  true,
		IsAdmin:  false,
		Salt:     "Ab3dEf9h",
		Password: "DEADBEEF",
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.Positive(t, user.UserID)

	byName, err := repo.FindByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user, byName)

	byID, err := repo.FindByID(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, user, byID)

	_, err = repo.FindByName(ctx, "ALICE")
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	_, err = repo.FindByID(ctx, user.UserID+100)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestUserRepository_CreateDuplicateName(t *testing.T) {
	repo := NewUserRepository(openFormattedStore(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Name: "bob"}))

	err := repo.Create(ctx, &entity.User{Name: "bob"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAccountExists)
}

func TestUserRepository_IgnoresCallerID(t *testing.T) {
	repo := NewUserRepository(openFormattedStore(t))
	ctx := context.Background()

	user := &entity.User{UserID: entity.SystemUserID, Name: "carol"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, entity.SystemUserID, user.UserID)
}

func TestAuditRepository_AppendAndList(t *testing.T) {
	repo := NewAuditRepository(openFormattedStore(t))
	ctx := context.Background()

	first := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, &entity.AuditEntry{ActorUserID: -1, Timestamp: first, Action: "Create Account", Details: "admin as enabled admin"}))
	require.NoError(t, repo.Append(ctx, &entity.AuditEntry{ActorUserID: 1, Timestamp: first.Add(-time.Hour), Action: "Create Account", Details: "bob as disabled user"}))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "admin as enabled admin", entries[0].Details)
	assert.Equal(t, first, entries[0].Timestamp)
	assert.Equal(t, "bob as disabled user", entries[1].Details)
}

func TestTransactionManager_Execute(t *testing.T) {
	db := openFormattedStore(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
			return repos.UserRepo().Create(ctx, &entity.User{Name: "committed"})
		})
		require.NoError(t, err)

		_, err = NewUserRepository(db).FindByName(ctx, "committed")
		require.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
			if err := repos.UserRepo().Create(ctx, &entity.User{Name: "rolled-back"}); err != nil {
				return err
			}

			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = NewUserRepository(db).FindByName(ctx, "rolled-back")
		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})

	t.Run("panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = tm.Execute(ctx, func(repos repository.RepositoryFactory) error {
				_ = repos.UserRepo().Create(ctx, &entity.User{Name: "panicked"})
				panic("boom")
			})
		})

		// The single connection must have been released.
		_, err := NewUserRepository(db).FindByName(ctx, "panicked")
		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}
