//go:build !alternative_driver

package storage

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openDialector returns the cgo SQLite dialector with per-connection pragmas
func openDialector(dbPath string) gorm.Dialector {
	return sqlite.Open(dbPath + "?_foreign_keys=on&_busy_timeout=5000&_synchronous=NORMAL")
}

// isBusy reports whether err is SQLITE_BUSY or SQLITE_LOCKED
func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && (sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked)
}

// isConstraintViolation reports whether err is a unique or primary key violation
func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique)
}
