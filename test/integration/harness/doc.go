// Package harness provides utilities for integration testing the cytodash CLI.
// It handles binary compilation, environment isolation, and command execution.
//
// Environment variables managed:
//   - CYTODASH_HOME: Isolated per test (temp directory)
//   - CYTODASH_DB: Cleared so the store lives under CYTODASH_HOME
//   - CYTODASH_DEBUG: Disabled to reduce noise
package harness
