package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cytodash/internal/domain"
)

// Cache backends
const (
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
	CacheBackendRedis  = "redis"
)

// Defaults applied when neither flag, env var nor settings.json provide a value
const (
	DefaultCacheBackend = CacheBackendMemory
	DefaultCacheTTL     = 10 * time.Minute
	DefaultRedisAddr    = "localhost:6379"
)

// Settings represents the structure of ~/.cytodash/settings.json
type Settings struct {
	Cache                    *CacheSettings  `json:"cache,omitempty"`
	CheckpointMirror         *MirrorSettings `json:"checkpoint_mirror,omitempty"`
	ChunkSize                *int            `json:"chunk_size,omitempty"`
	Cohort                   *CohortSettings `json:"cohort,omitempty"`
	DBPath                   string          `json:"db_path,omitempty"`
	Debug                    *bool           `json:"debug,omitempty"`
	MaxLogFiles              *int            `json:"max_log_files,omitempty"`
	MetricsFile              string          `json:"metrics_file,omitempty"`
	SafetyCheckpointOnRevert *bool           `json:"safety_checkpoint_on_revert,omitempty"`
}

// CacheSettings configures the query result cache
type CacheSettings struct {
	Backend    string `json:"backend,omitempty"`
	RedisAddr  string `json:"redis_addr,omitempty"`
	TTLSeconds *int   `json:"ttl_seconds,omitempty"`
}

// CohortSettings overrides the fixed report cohort
type CohortSettings struct {
	Condition  string `json:"condition,omitempty"`
	SampleType string `json:"sample_type,omitempty"`
	Treatment  string `json:"treatment,omitempty"`
}

// MirrorSettings configures uploading checkpoints to S3-compatible storage
type MirrorSettings struct {
	Bucket    string `json:"s3_bucket,omitempty"`
	Endpoint  string `json:"s3_endpoint,omitempty"`
	PathStyle *bool  `json:"path_style,omitempty"`
	Prefix    string `json:"s3_prefix,omitempty"`
	Region    string `json:"s3_region,omitempty"`
}

// Enabled reports whether a mirror bucket is configured
func (m *MirrorSettings) Enabled() bool {
	return m != nil && m.Bucket != ""
}

// LoadSettings loads settings from $CYTODASH_HOME/settings.json.
// Returns empty Settings if file doesn't exist (not an error)
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from an explicit path
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	if settings.DBPath != "" {
		settings.DBPath = ExpandPath(settings.DBPath)
	}
	if settings.MetricsFile != "" {
		settings.MetricsFile = ExpandPath(settings.MetricsFile)
	}

	if settings.ChunkSize != nil && *settings.ChunkSize <= 0 {
		return nil, fmt.Errorf("invalid settings.json: chunk_size must be positive, got %d", *settings.ChunkSize)
	}
	if settings.Cache != nil {
		switch settings.Cache.Backend {
		case "", CacheBackendMemory, CacheBackendNone, CacheBackendRedis:
		default:
			return nil, fmt.Errorf("invalid settings.json: unknown cache backend '%s'", settings.Cache.Backend)
		}
	}

	return &settings, nil
}

// SaveSettings saves settings to $CYTODASH_HOME/settings.json
func SaveSettings(settings *Settings) error {
	path := GetSettingsPath()
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// CacheTTL returns the configured cache TTL or the default
func (s *Settings) CacheTTL() time.Duration {
	if s == nil || s.Cache == nil || s.Cache.TTLSeconds == nil {
		return DefaultCacheTTL
	}
	return time.Duration(*s.Cache.TTLSeconds) * time.Second
}

// CacheBackend returns the configured cache backend or the default
func (s *Settings) CacheBackend() string {
	if s == nil || s.Cache == nil || s.Cache.Backend == "" {
		return DefaultCacheBackend
	}
	return s.Cache.Backend
}

// RedisAddr returns CYTODASH_REDIS_ADDR, the configured address, or the default
func (s *Settings) RedisAddr() string {
	if env := os.Getenv("CYTODASH_REDIS_ADDR"); env != "" {
		return env
	}
	if s != nil && s.Cache != nil && s.Cache.RedisAddr != "" {
		return s.Cache.RedisAddr
	}
	return DefaultRedisAddr
}

// GetChunkSize returns the configured ingestion chunk size or the default
func (s *Settings) GetChunkSize() int {
	if s == nil || s.ChunkSize == nil {
		return domain.DefaultChunkSize
	}
	return *s.ChunkSize
}

// GetCohort returns the report cohort with any configured overrides applied
func (s *Settings) GetCohort() domain.Cohort {
	cohort := domain.DefaultCohort
	if s == nil || s.Cohort == nil {
		return cohort
	}
	if s.Cohort.Condition != "" {
		cohort.Condition = s.Cohort.Condition
	}
	if s.Cohort.SampleType != "" {
		cohort.SampleType = s.Cohort.SampleType
	}
	if s.Cohort.Treatment != "" {
		cohort.Treatment = s.Cohort.Treatment
	}
	return cohort
}

// SafetyCheckpointOnRevertEnabled reports whether revert takes a safety
// checkpoint first. Defaults to true.
func (s *Settings) SafetyCheckpointOnRevertEnabled() bool {
	if s == nil || s.SafetyCheckpointOnRevert == nil {
		return true
	}
	return *s.SafetyCheckpointOnRevert
}
