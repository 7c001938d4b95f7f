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

// userRepository implements repository.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns the repository as an interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID never resolves the hidden system account; callers synthesize it.
func (repo *userRepository) FindByID(ctx context.Context, id int) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).Where("UserID = ?", id).Take(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, domainerrors.NewStorageError(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByName matches the name exactly; SQLite's default BINARY collation is case-sensitive.
func (repo *userRepository) FindByName(ctx context.Context, name string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).Where("Name = ?", name).Take(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, domainerrors.NewStorageError(err, "failed to find user by name")
	}

	return toUserDomain(&userM), nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)
	// Let SQLite assign the identity.
	userM.UserID = 0

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrAccountExists.WrapMessage("user name already stored")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewStorageError(err, "missing required user information")
		}

		return domainerrors.NewStorageError(err, "failed to create user")
	}

	user.UserID = userM.UserID

	return nil
}

// --- Mapper Functions ---

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		UserID:   data.UserID,
		Name:     data.Name,
		Email:    data.Email,
		Enabled:  intToBool(data.Enabled),
		IsAdmin:  intToBool(data.IsAdmin),
		Salt:     data.Salt,
		Password: data.Password,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		UserID:   data.UserID,
		Name:     data.Name,
		Email:    data.Email,
		Enabled:  boolToInt(data.Enabled),
		IsAdmin:  boolToInt(data.IsAdmin),
		Salt:     data.Salt,
		Password: data.Password,
	}
}

// Only 1 is true; any other stored value reads as false.
func intToBool(i int) bool {
	return i == 1
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
