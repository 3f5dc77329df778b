package logging

import (
	"cmp"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Logger is shared by every package. It discards everything until Initialize
// enables debug output.
var Logger = discard()

// DefaultMaxLogFiles is the rotation limit used when none is configured
const DefaultMaxLogFiles = 1000

const logExt = ".log"

// Options controls debug logging
type Options struct {
	Debug bool
	// File is a fixed log file; it is appended to and never rotated
	File string
	// MaxFiles bounds the files kept in the log dir, 0 keeps all of them
	MaxFiles int
}

// applyEnv fills options from CYTODASH_DEBUG, CYTODASH_DEBUG_FILE and
// CYTODASH_MAX_LOG_FILES where the caller left defaults
func (o Options) applyEnv() Options {
	if os.Getenv("CYTODASH_DEBUG") == "1" {
		o.Debug = true
	}
	if f := os.Getenv("CYTODASH_DEBUG_FILE"); f != "" && o.File == "" {
		o.File = f
	}
	if v := os.Getenv("CYTODASH_MAX_LOG_FILES"); v != "" && o.MaxFiles == DefaultMaxLogFiles {
		if n, err := strconv.Atoi(v); err == nil {
			o.MaxFiles = n
		}
	}
	return o
}

// Initialize points Logger at a JSON log file when debugging is enabled and
// returns the file path, or "" when logs are discarded
func Initialize(opts Options) (string, error) {
	opts = opts.applyEnv()
	if !opts.Debug && opts.File == "" {
		Logger = discard()
		return "", nil
	}

	path, err := logFilePath(opts)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open log file: %w", err)
	}

	Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("pid", os.Getpid())
	Logger.Info("Debug logging initialized", "log_file", path)
	fmt.Fprintf(os.Stderr, "Debug mode enabled. Logs: %s\n", path)

	return path, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// logFilePath returns the fixed file, or a fresh timestamped file in the log
// dir after rotating old ones
func logFilePath(opts Options) (string, error) {
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return "", fmt.Errorf("failed to create log directory: %w", err)
		}
		return opts.File, nil
	}

	dir, err := logDir()
	if err != nil {
		return "", fmt.Errorf("failed to get log directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	if opts.MaxFiles > 0 {
		if err := rotateLogs(dir, opts.MaxFiles); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: log rotation failed: %v\n", err)
		}
	}

	name := time.Now().Format("20060102-150405") + "-" + uuid.NewString()[:8] + logExt
	return filepath.Join(dir, name), nil
}

// rotateLogs deletes the oldest .log files so that a new one fits under keep
func rotateLogs(dir string, keep int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFile struct {
		modTime time.Time
		path    string
	}
	var files []logFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != logExt {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{modTime: info.ModTime(), path: filepath.Join(dir, e.Name())})
	}

	excess := len(files) - keep + 1
	if excess <= 0 {
		return nil
	}

	slices.SortFunc(files, func(a, b logFile) int {
		return cmp.Or(a.modTime.Compare(b.modTime), cmp.Compare(a.path, b.path))
	})
	for _, f := range files[:min(excess, len(files))] {
		if err := os.Remove(f.path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to delete old log file %s: %v\n", f.path, err)
		}
	}
	return nil
}

// logDir returns the per-OS state directory for cytodash logs
func logDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "cytodash"), nil
	case "windows":
		base := cmp.Or(os.Getenv("LOCALAPPDATA"), filepath.Join(home, "AppData", "Local"))
		return filepath.Join(base, "cytodash", "logs"), nil
	default:
		base := cmp.Or(os.Getenv("XDG_STATE_HOME"), filepath.Join(home, ".local", "state"))
		return filepath.Join(base, "cytodash"), nil
	}
}
