package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// ingestion and plotting of the fixture stay well under this
const defaultTimeout = 60 * time.Second

var (
	binaryPath string
	buildErr   error
	buildOnce  sync.Once
)

// CommandResult holds the outcome of one cytodash invocation
type CommandResult struct {
	Args     []string
	ExitCode int
	Stderr   string
	Stdout   string
}

// BuildBinary compiles cytodash once per test run. Set CYTODASH_TEST_TAGS
// (e.g. alternative_driver) to build with extra tags.
func BuildBinary() (string, error) {
	buildOnce.Do(func() {
		root, err := moduleRoot()
		if err != nil {
			buildErr = err
			return
		}

		dir, err := os.MkdirTemp("", "cytodash-integration-*")
		if err != nil {
			buildErr = fmt.Errorf("failed to create build dir: %w", err)
			return
		}
		binaryPath = filepath.Join(dir, "cytodash")

		args := []string{"build", "-o", binaryPath}
		if tags := os.Getenv("CYTODASH_TEST_TAGS"); tags != "" {
			args = append(args, "-tags", tags)
		}
		cmd := exec.Command("go", append(args, ".")...)
		cmd.Dir = root
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			buildErr = fmt.Errorf("go build failed: %w", err)
		}
	})

	return binaryPath, buildErr
}

// CleanupBinary removes the compiled binary and its build dir
func CleanupBinary() {
	if binaryPath == "" {
		return
	}
	if err := os.RemoveAll(filepath.Dir(binaryPath)); err != nil {
		log.Printf("Warning: failed to remove %s: %v", filepath.Dir(binaryPath), err)
	}
}

// RunCommand runs cytodash inside env with the default timeout
func RunCommand(tb testing.TB, env *TestEnvironment, args ...string) CommandResult {
	tb.Helper()
	return RunCommandWithTimeout(tb, env, defaultTimeout, args...)
}

// RunCommandWithTimeout runs cytodash inside env. The working directory is
// env.Home so relative file arguments resolve against the test home.
func RunCommandWithTimeout(tb testing.TB, env *TestEnvironment, timeout time.Duration, args ...string) CommandResult {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binaryPath, args...)
	cmd.Dir = env.Home
	cmd.Env = env.Environ()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := CommandResult{Args: args}
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		tb.Logf("cytodash %v timed out after %v", args, timeout)
		result.ExitCode = -1
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		tb.Logf("cytodash %v failed to start: %v", args, err)
		result.ExitCode = -1
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result
}

// moduleRoot walks up from the working directory to the directory holding go.mod
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the test directory")
		}
		dir = parent
	}
}
