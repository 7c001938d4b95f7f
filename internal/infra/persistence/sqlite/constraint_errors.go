package sqlite

import (
	"strings"

	"peerbackup/internal/errors"

	"gorm.io/gorm"
)

// isUniqueConstraintViolation recognises a duplicate key, translated or not.
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// SQLite error text when the dialector does not translate the code.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotNullConstraintViolation(err error) bool {
	return strings.Contains(err.Error(), "NOT NULL constraint failed")
}
