package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"cytodash/internal/config"
	"cytodash/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	DB          string           `help:"Path to the SQLite store file (overrides $CYTODASH_DB)" placeholder:"PATH"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"1000"`
	NoCache     bool             `help:"Disable the query result cache"`

	Init        InitCmd        `cmd:"init" help:"Create the store schema (destructive with --force)"`
	Load        LoadCmd        `cmd:"load" help:"Bulk load a CSV file, replacing existing samples"`
	Append      AppendCmd      `cmd:"append" help:"Append a CSV file, keeping existing samples"`
	Samples     SamplesCmd     `cmd:"samples" help:"Manage samples (add, remove, list, show, browse)"`
	Query       QueryCmd       `cmd:"query" help:"Query the store (distinct, view, ids)"`
	Analyze     AnalyzeCmd     `cmd:"analyze" help:"Run analyses (frequency, treatment-response, baseline, report)"`
	Export      ExportCmd      `cmd:"export" help:"Export views and analysis results to a file"`
	Checkpoints CheckpointsCmd `cmd:"checkpoints" help:"Manage store checkpoints (create, list, revert)"`
	Log         LogCmd         `cmd:"log" help:"Show the operation log"`
	Settings    SettingsCmd    `cmd:"settings" help:"Manage settings (meta)"`

	// Internal fields (not flags)
	Container *Container       `kong:"-"`
	settings  *config.Settings `kong:"-"`
}

// SetSettings sets the settings on the CLI struct
func (c *CLI) SetSettings(settings *config.Settings) {
	c.settings = settings
}

// AfterApply initializes logging after CLI parsing and applies settings
func (c *CLI) AfterApply(kctx *kong.Context) error {
	// Apply settings with proper precedence: CLI flags > env vars > settings.json > defaults
	// Only apply if flag is at default value and env var is not set

	if c.settings != nil {
		// Apply MaxLogFiles setting
		if c.MaxLogFiles == logging.DefaultMaxLogFiles {
			if _, hasEnv := os.LookupEnv("CYTODASH_MAX_LOG_FILES"); !hasEnv {
				if c.settings.MaxLogFiles != nil {
					c.MaxLogFiles = *c.settings.MaxLogFiles
				}
			}
		}

		// Apply Debug setting
		if !c.Debug {
			if _, hasEnv := os.LookupEnv("CYTODASH_DEBUG"); !hasEnv {
				if c.settings.Debug != nil && *c.settings.Debug {
					c.Debug = true
				}
			}
		}
	}

	c.DB = c.resolveDBPath()

	if _, err := logging.Initialize(logging.Options{Debug: c.Debug, File: c.DebugFile, MaxFiles: c.MaxLogFiles}); err != nil {
		return err
	}
	logging.Logger.Debug("Command line parsed", "command", kctx.Command(), "db", c.DB)

	// settings meta never touches the store
	if strings.HasPrefix(kctx.Command(), "settings") {
		return nil
	}

	// Create container AFTER logging is initialized so the GORM logger has a target
	container, err := NewContainer(context.Background(), c.containerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	c.Container = container

	return nil
}

// resolveDBPath applies flag > CYTODASH_DB > settings.json > default
func (c *CLI) resolveDBPath() string {
	if c.DB != "" {
		return config.ExpandPath(c.DB)
	}
	if _, hasEnv := os.LookupEnv("CYTODASH_DB"); !hasEnv {
		if c.settings != nil && c.settings.DBPath != "" {
			return config.ExpandPath(c.settings.DBPath)
		}
	}
	return config.GetDBPath()
}

func (c *CLI) containerConfig() ContainerConfig {
	backend := c.settings.CacheBackend()
	if c.NoCache {
		backend = config.CacheBackendNone
	}

	cfg := ContainerConfig{
		CacheBackend: backend,
		CacheTTL:     c.settings.CacheTTL(),
		Cohort:       c.settings.GetCohort(),
		DBPath:       c.DB,
		RedisAddr:    c.settings.RedisAddr(),
	}
	if c.settings != nil {
		cfg.MetricsFile = c.settings.MetricsFile
		cfg.Mirror = c.settings.CheckpointMirror
	}
	return cfg
}

// chunkSize returns the configured ingestion chunk size
func (c *CLI) chunkSize() int {
	return c.settings.GetChunkSize()
}

// Close closes all resources held by the CLI
func (c *CLI) Close() error {
	if c.Container != nil {
		return c.Container.Close()
	}
	return nil
}
