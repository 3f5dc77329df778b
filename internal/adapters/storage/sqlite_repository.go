package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cytodash/internal/config"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

var errStoreClosed = errors.New("store handle is closed")

// SQLiteRepository implements ports.StoreRepository using GORM
type SQLiteRepository struct {
	db   *gorm.DB
	path string
}

// Verify interface compliance at compile time
var _ ports.StoreRepository = (*SQLiteRepository)(nil)

// gormLogger wraps the cytodash logger for GORM
type gormLogger struct {
	level logger.LogLevel
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{level: level}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Info {
		logging.Logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Warn {
		logging.Logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= logger.Error {
		logging.Logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level < logger.Info {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logging.Logger.Error("gorm query error",
			"error", err,
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else if elapsed > 200*time.Millisecond {
		logging.Logger.Warn("slow query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	} else {
		logging.Logger.Debug("gorm query",
			"duration", elapsed,
			"sql", sql,
			"rows", rows,
		)
	}
}

func newGormLogger() logger.Interface {
	if os.Getenv("CYTODASH_DEBUG") == "1" {
		return (&gormLogger{}).LogMode(logger.Info)
	}
	return (&gormLogger{}).LogMode(logger.Silent)
}

// NewSQLiteRepository opens (creating if needed) the store file at dbPath.
// It does not create the schema; see InitStore and EnsureSchema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dbPath = config.ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	r := &SQLiteRepository{path: dbPath}
	if err := r.Reopen(); err != nil {
		return nil, err
	}
	return r, nil
}

// Path implements StoreFile.Path
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Reopen implements StoreFile.Reopen
func (r *SQLiteRepository) Reopen() error {
	if r.db != nil {
		return nil
	}

	db, err := gorm.Open(openDialector(r.path), &gorm.Config{
		PrepareStmt:    false,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         newGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Rollback journal keeps the store a single file, which is the unit of checkpointing
	if err := db.Exec("PRAGMA journal_mode=DELETE").Error; err != nil {
		return fmt.Errorf("failed to set journal mode: %w", err)
	}

	// Single writer, single connection
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	r.db = db
	logging.Logger.Debug("Store opened", "path", r.path)
	return nil
}

// Release implements StoreFile.Release
func (r *SQLiteRepository) Release() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	r.db = nil
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	logging.Logger.Debug("Store released", "path", r.path)
	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.Release()
}

func (r *SQLiteRepository) handle() (*gorm.DB, error) {
	if r.db == nil {
		return nil, errStoreClosed
	}
	return r.db, nil
}

// hasTable reports whether the named table exists
func (r *SQLiteRepository) hasTable(ctx context.Context, table string) (bool, error) {
	db, err := r.handle()
	if err != nil {
		return false, err
	}
	return db.WithContext(ctx).Migrator().HasTable(table), nil
}

// withRetry retries operations on SQLITE_BUSY with exponential backoff.
// The last busy error is wrapped once retries run out.
func withRetry(fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isBusy(lastErr) {
			return lastErr
		}
		time.Sleep(time.Millisecond * time.Duration(50*(i+1)))
	}
	return fmt.Errorf("operation failed after %d retries: %w", maxRetries, lastErr)
}
