package config

import (
	"os"
	"path/filepath"
)

// GetCytodashHome returns CYTODASH_HOME or ~/.cytodash default
func GetCytodashHome() string {
	home := os.Getenv("CYTODASH_HOME")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".cytodash"
		}
		return filepath.Join(homeDir, ".cytodash")
	}
	return ExpandPath(home)
}

// GetDBPath returns CYTODASH_DB or $CYTODASH_HOME/cell-count.db
func GetDBPath() string {
	if db := os.Getenv("CYTODASH_DB"); db != "" {
		return ExpandPath(db)
	}
	return filepath.Join(GetCytodashHome(), "cell-count.db")
}

// GetSettingsPath returns $CYTODASH_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetCytodashHome(), "settings.json")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
