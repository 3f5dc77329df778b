//go:build alternative_driver

package storage

import "errors"

var errBusy = errors.New("database is locked (5) (SQLITE_BUSY)")

func busyError() error {
	return errBusy
}
