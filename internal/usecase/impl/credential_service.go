// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"peerbackup/config"
	deliverycontext "peerbackup/internal/delivery/context"
	"peerbackup/internal/domain/entity"
	domainerrors "peerbackup/internal/domain/errors"
	"peerbackup/internal/domain/repository"
	"peerbackup/internal/domain/service"
	"peerbackup/internal/errors"
	"peerbackup/internal/usecase"

	"go.uber.org/fx"
)

// adminPipeNonceLength is the length of the random part of a generated admin channel name.
const adminPipeNonceLength = 56

// credentialService implements usecase.CredentialUsecase.
type credentialService struct {
	txManager  repository.TransactionManager
	userRepo   repository.UserRepository
	auditRepo  repository.AuditRepository
	systemRepo repository.SystemRepository
	hasher     service.PasswordHasher
	bootstrap  config.BootstrapConfig
	logger     *slog.Logger
	now        func() time.Time

	// writeMu serializes every check-then-write sequence against the store.
	writeMu sync.Mutex
}

// CredentialServiceParams holds dependencies for the credential service, injected by Fx.
type CredentialServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	UserRepo   repository.UserRepository
	AuditRepo  repository.AuditRepository
	SystemRepo repository.SystemRepository
	Hasher     service.PasswordHasher
	Config     *config.Config
	Logger     *slog.Logger
}

// NewCredentialService is the constructor for credentialService.
func NewCredentialService(params CredentialServiceParams) usecase.CredentialUsecase {
	return newCredentialService(params, time.Now)
}

func newCredentialService(params CredentialServiceParams, now func() time.Time) *credentialService {
	bootstrap := config.BootstrapConfig{}
	if params.Config != nil {
		bootstrap = params.Config.Bootstrap
	}
	if bootstrap.NonceLength <= 0 {
		bootstrap.NonceLength = 8
	}

	return &credentialService{
		txManager:  params.TxManager,
		userRepo:   params.UserRepo,
		auditRepo:  params.AuditRepo,
		systemRepo: params.SystemRepo,
		hasher:     params.Hasher,
		bootstrap:  bootstrap,
		logger:     params.Logger,
		now:        now,
	}
}

// log returns the run-scoped logger if available, otherwise the service's logger.
func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *credentialService) IsFormatted(ctx context.Context) (bool, error) {
	formatted, err := srv.systemRepo.HasSchema(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to inspect store schema")
	}

	return formatted, nil
}

// FormatNewDatabase never formats over an existing schema, and leaves nothing
// behind when any step fails.
func (srv *credentialService) FormatNewDatabase(ctx context.Context) error {
	srv.writeMu.Lock()
	defer srv.writeMu.Unlock()

	pipeName, err := srv.adminPipeName()
	if err != nil {
		return errors.Wrap(err, "failed to generate admin pipe name")
	}

	defaults := []*entity.SystemSetting{
		{Category: entity.SettingCategorySystem, Setting: entity.SettingVersion, Value: entity.CurrentStoreVersion},
		{Category: entity.SettingCategorySystem, Setting: entity.SettingAdminPipeName, Value: pipeName},
	}

	err = srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		systemRepo := repos.SystemRepo()

		formatted, err := systemRepo.HasSchema(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to inspect store schema")
		}
		if formatted {
			return errors.WithStack(domainerrors.ErrAlreadyFormatted)
		}

		if err := systemRepo.CreateSchema(ctx); err != nil {
			return err
		}

		for _, setting := range defaults {
			if err := systemRepo.InsertSetting(ctx, setting); err != nil {
				return errors.Wrapf(err, "failed to write default setting %s/%s", setting.Category, setting.Setting)
			}
		}

		admin := usecase.CreateUserInput{
			ActingUserID: entity.SystemUserID,
			Name:         srv.bootstrap.AdminName,
			Email:        srv.bootstrap.AdminEmail,
			Enabled:      true,
			IsAdmin:      true,
			Password:     srv.bootstrap.AdminPassword,
		}
		if err := srv.createUserLocked(ctx, repos.UserRepo(), repos.AuditRepo(), admin); err != nil {
			return errors.Join(domainerrors.ErrAdminBootstrapFailed, err)
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to format credential store", slog.Any("error", err))

		return errors.Wrap(err, "failed to format database")
	}

	srv.log(ctx).Info("Credential store formatted",
		slog.String("version", entity.CurrentStoreVersion),
		slog.String("admin", srv.bootstrap.AdminName),
	)

	return nil
}

// InitDatabase accepts exactly one store version. There is no upgrade path, so
// any other value, or no value at all, is fatal for startup.
func (srv *credentialService) InitDatabase(ctx context.Context) error {
	version, err := srv.systemRepo.FindSetting(ctx, entity.SettingCategorySystem, entity.SettingVersion)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSettingNotFound) {
			return errors.Wrap(domainerrors.ErrIncompatibleVersion, "store has no version setting")
		}

		return errors.Wrap(err, "failed to read store version")
	}

	switch version {
	case entity.CurrentStoreVersion:
		srv.log(ctx).Debug("Credential store version accepted", slog.String("version", version))

		return nil
	default:
		return errors.Wrapf(domainerrors.ErrIncompatibleVersion, "store version %q", version)
	}
}

// CreateUser checks, in order: the reserved name, the acting user's admin
// rights, then name uniqueness. A caller without admin rights therefore never
// learns whether a name is taken.
func (srv *credentialService) CreateUser(ctx context.Context, input usecase.CreateUserInput) error {
	srv.writeMu.Lock()
	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		return srv.insertUser(ctx, repos.UserRepo(), input)
	})
	srv.writeMu.Unlock()

	if err != nil {
		srv.log(ctx).Warn("Account creation rejected",
			slog.Int("actingUserID", input.ActingUserID),
			slog.String("name", input.Name),
			slog.String("reason", domainerrors.MessageOf(err)),
		)

		return errors.Wrap(err, "failed to create user")
	}

	srv.auditAccountCreated(ctx, srv.auditRepo, input)

	return nil
}

// createUserLocked is CreateUser for callers that already hold writeMu and a transaction.
func (srv *credentialService) createUserLocked(
	ctx context.Context,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	input usecase.CreateUserInput,
) error {
	if err := srv.insertUser(ctx, userRepo, input); err != nil {
		return err
	}

	srv.auditAccountCreated(ctx, auditRepo, input)

	return nil
}

func (srv *credentialService) insertUser(ctx context.Context, userRepo repository.UserRepository, input usecase.CreateUserInput) error {
	if input.Name == entity.ReservedUserName {
		return errors.WithStack(domainerrors.ErrAccountExists)
	}

	if _, err := srv.authorizeAdmin(ctx, userRepo, input.ActingUserID); err != nil {
		return err
	}

	_, err := userRepo.FindByName(ctx, input.Name)
	switch {
	case err == nil:
		return errors.WithStack(domainerrors.ErrAccountExists)
	case !errors.Is(err, domainerrors.ErrUserNotFound):
		return errors.Wrap(err, "failed to check existing account")
	}

	salt, err := srv.hasher.NewNonce(srv.bootstrap.NonceLength)
	if err != nil {
		return domainerrors.NewStorageError(err, "failed to generate salt")
	}

	user := &entity.User{
		Name:     input.Name,
		Email:    input.Email,
		Enabled:  input.Enabled,
		IsAdmin:  input.IsAdmin,
		Salt:     salt,
		Password: srv.hasher.HashPassword(input.Name, salt, input.Password),
	}

	return userRepo.Create(ctx, user)
}

// authorizeAdmin returns the acting user when it exists, is enabled and is an admin.
// The hidden system account always passes without a lookup.
func (srv *credentialService) authorizeAdmin(ctx context.Context, userRepo repository.UserRepository, actingUserID int) (*entity.User, error) {
	if actingUserID == entity.SystemUserID {
		return entity.SystemUser(), nil
	}

	actor, err := userRepo.FindByID(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return nil, errors.WithStack(domainerrors.ErrNoSuchUser)
		}

		return nil, errors.Wrap(err, "failed to resolve acting user")
	}

	if !actor.Enabled {
		return nil, errors.WithStack(domainerrors.ErrUserDisabled)
	}
	if !actor.IsAdmin {
		return nil, errors.WithStack(domainerrors.ErrUserNotAdmin)
	}

	return actor, nil
}

// auditAccountCreated is best-effort: a failed audit write is logged and the
// account it describes stays created.
func (srv *credentialService) auditAccountCreated(ctx context.Context, auditRepo repository.AuditRepository, input usecase.CreateUserInput) {
	entry := &entity.AuditEntry{
		ActorUserID: input.ActingUserID,
		Timestamp:   srv.now(),
		Action:      entity.AuditActionCreateAccount,
		Details:     describeAccount(input),
	}

	if err := auditRepo.Append(ctx, entry); err != nil {
		srv.log(ctx).Error("Failed to audit account creation",
			slog.Int("actingUserID", input.ActingUserID),
			slog.String("name", input.Name),
			slog.Any("error", err),
		)

		return
	}

	srv.log(ctx).Info("Account created",
		slog.Int("actingUserID", input.ActingUserID),
		slog.String("name", input.Name),
		slog.Bool("enabled", input.Enabled),
		slog.Bool("isAdmin", input.IsAdmin),
	)
}

// describeAccount renders "<name> as enabled|disabled admin|user".
func describeAccount(input usecase.CreateUserInput) string {
	state := "disabled"
	if input.Enabled {
		state = "enabled"
	}
	role := "user"
	if input.IsAdmin {
		role = "admin"
	}

	return fmt.Sprintf("%s as %s %s", input.Name, state, role)
}

func (srv *credentialService) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	if id == entity.SystemUserID {
		return entity.SystemUser(), nil
	}

	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %d", id)
	}

	return user, nil
}

func (srv *credentialService) GetUserByName(ctx context.Context, name string) (*entity.User, error) {
	user, err := srv.userRepo.FindByName(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user %q", name)
	}

	return user, nil
}

// Authenticate reports every rejection as ErrInvalidCredentials so callers
// cannot probe which names exist. The hidden system account cannot log in.
func (srv *credentialService) Authenticate(ctx context.Context, name, password string) (*entity.User, error) {
	if name == entity.ReservedUserName {
		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	user, err := srv.userRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
		}

		return nil, errors.Wrap(err, "failed to authenticate")
	}

	if !user.Enabled || !srv.hasher.Check(user.Name, user.Salt, password, user.Password) {
		srv.log(ctx).Warn("Authentication rejected", slog.String("name", name))

		return nil, errors.WithStack(domainerrors.ErrInvalidCredentials)
	}

	return user, nil
}

func (srv *credentialService) WriteSystemSetting(ctx context.Context, category, setting, value string) error {
	srv.writeMu.Lock()
	defer srv.writeMu.Unlock()

	err := srv.systemRepo.InsertSetting(ctx, &entity.SystemSetting{
		Category: category,
		Setting:  setting,
		Value:    value,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to write setting %s/%s", category, setting)
	}

	return nil
}

func (srv *credentialService) ReadSystemSetting(ctx context.Context, category, setting string) (string, error) {
	value, err := srv.systemRepo.FindSetting(ctx, category, setting)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read setting %s/%s", category, setting)
	}

	return value, nil
}

func (srv *credentialService) AppendAudit(ctx context.Context, actorID int, action, details string) error {
	err := srv.auditRepo.Append(ctx, &entity.AuditEntry{
		ActorUserID: actorID,
		Timestamp:   srv.now(),
		Action:      action,
		Details:     details,
	})
	if err != nil {
		return errors.Wrap(err, "failed to append audit entry")
	}

	return nil
}

func (srv *credentialService) ListAudit(ctx context.Context) ([]*entity.AuditEntry, error) {
	entries, err := srv.auditRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list audit entries")
	}

	return entries, nil
}

func (srv *credentialService) adminPipeName() (string, error) {
	if srv.bootstrap.AdminPipeName != "" {
		return srv.bootstrap.AdminPipeName, nil
	}

	nonce, err := srv.hasher.NewNonce(adminPipeNonceLength)
	if err != nil {
		return "", err
	}

	return entity.AdminPipeNamePrefix + nonce, nil
}
