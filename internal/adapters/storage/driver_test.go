//go:build !alternative_driver

package storage

import "github.com/mattn/go-sqlite3"

func busyError() error {
	return sqlite3.Error{Code: sqlite3.ErrBusy}
}
