package errors

import (
	"peerbackup/internal/errors"
)

// Kind classifies a failure for callers that need to branch on it.
type Kind string

const (
	KindAccessDenied        Kind = "ACCESS_DENIED"
	KindAlreadyExists       Kind = "ALREADY_EXISTS"
	KindNotFound            Kind = "NOT_FOUND"
	KindStorageFailure      Kind = "STORAGE_FAILURE"
	KindIncompatibleVersion Kind = "INCOMPATIBLE_VERSION"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	Kind() Kind        // Failure class
	ErrorCode() string // Stable code for logs
	Message() string   // Human readable message, safe to show to an operator
	Details() string   // Extra context (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	kind      Kind
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(kind Kind, errorCode, message, details string) *BaseError {
	return &BaseError{
		kind:      kind,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

func (e *BaseError) Kind() Kind {
	return e.kind
}

func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

func (e *BaseError) Message() string {
	return e.message
}

func (e *BaseError) Details() string {
	return e.details
}

// Predefined error types
var (
	// Admin gate. The three reasons stay distinct for the audit trail but share a kind.
	ErrNoSuchUser = NewBaseError(
		KindAccessDenied,
		"NO_SUCH_USER",
		"Access Denied: no such user.",
		"",
	)

	ErrUserDisabled = NewBaseError(
		KindAccessDenied,
		"USER_DISABLED",
		"Access Denied: user is disabled.",
		"",
	)

	ErrUserNotAdmin = NewBaseError(
		KindAccessDenied,
		"USER_NOT_ADMIN",
		"Access Denied: user is not admin.",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		KindAccessDenied,
		"INVALID_CREDENTIALS",
		"Access Denied: invalid user name or password.",
		"",
	)

	// Returned for the reserved name and for real duplicates alike.
	ErrAccountExists = NewBaseError(
		KindAlreadyExists,
		"ACCOUNT_EXISTS",
		"Error: account already exists.",
		"",
	)

	ErrUserNotFound = NewBaseError(
		KindNotFound,
		"USER_NOT_FOUND",
		"Error: no such user.",
		"",
	)

	ErrSettingNotFound = NewBaseError(
		KindNotFound,
		"SETTING_NOT_FOUND",
		"Error: no such system setting.",
		"",
	)

	ErrIncompatibleVersion = NewBaseError(
		KindIncompatibleVersion,
		"INCOMPATIBLE_VERSION",
		"Incompatible database version.",
		"",
	)

	ErrAlreadyFormatted = NewBaseError(
		KindStorageFailure,
		"ALREADY_FORMATTED",
		"Error: the database is already formatted.",
		"",
	)

	ErrAdminBootstrapFailed = NewBaseError(
		KindStorageFailure,
		"ADMIN_BOOTSTRAP_FAILED",
		"Failed to create default admin account.",
		"",
	)
)

// StorageError represents a database execution error, implementing the AppError interface
type StorageError struct {
	err     error
	details string
}

// NewStorageError wraps a driver or ORM failure.
func NewStorageError(err error, details string) AppError {
	return &StorageError{
		err:     err,
		details: details,
	}
}

func (e *StorageError) Error() string {
	return errors.Wrap(e.err, e.details).Error()
}

// Unwrap exposes the driver error to errors.Is / errors.As.
func (e *StorageError) Unwrap() error {
	return e.err
}

func (e *StorageError) Kind() Kind {
	return KindStorageFailure
}

func (e *StorageError) ErrorCode() string {
	return "STORAGE_FAILURE"
}

func (e *StorageError) Message() string {
	return "Error: the database operation failed."
}

func (e *StorageError) Details() string {
	return e.details
}

// KindOf returns the kind of the first AppError in err's chain.
// Errors with no AppError in the chain are storage failures; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindStorageFailure
}

// MessageOf returns the operator-facing message of err without internal detail.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}

	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Message()
	}

	return err.Error()
}
