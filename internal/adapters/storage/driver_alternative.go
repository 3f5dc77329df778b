//go:build alternative_driver

package storage

import (
	"errors"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// openDialector returns the pure-Go SQLite dialector with per-connection pragmas
func openDialector(dbPath string) gorm.Dialector {
	return sqlite.Open(dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)")
}

// isBusy reports whether err is SQLITE_BUSY or SQLITE_LOCKED
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_LOCKED")
}

// isConstraintViolation reports whether err is a unique or primary key violation
func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
