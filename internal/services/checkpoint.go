package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"cytodash/internal/domain"
	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// maxCheckpointsPerSecond bounds the _N suffix search for names in the same second
const maxCheckpointsPerSecond = 1000

// RevertOptions tunes a revert
type RevertOptions struct {
	// SafetyCheckpoint takes a checkpoint of the current store before overwriting it
	SafetyCheckpoint bool
}

// RevertResult describes a completed revert
type RevertResult struct {
	RevertedFrom     string
	SafetyCheckpoint *domain.Checkpoint
}

// CheckpointService creates, lists and restores full copies of the store file
type CheckpointService struct {
	audit   *AuditService
	cache   ports.QueryCache
	metrics ports.MetricsRecorder
	mirror  ports.CheckpointMirror
	now     func() time.Time
	store   ports.StoreFile
}

// NewCheckpointService creates a new CheckpointService. mirror may be nil.
func NewCheckpointService(
	store ports.StoreFile,
	audit *AuditService,
	cache ports.QueryCache,
	mirror ports.CheckpointMirror,
	metrics ports.MetricsRecorder,
) *CheckpointService {
	return &CheckpointService{
		audit:   audit,
		cache:   cache,
		metrics: metricsOrNop(metrics),
		mirror:  mirror,
		now:     time.Now,
		store:   store,
	}
}

// Create copies the store file into the checkpoint directory and records
// the copy's BLAKE2b-512 checksum in the operation log
func (s *CheckpointService) Create(ctx context.Context) (domain.Checkpoint, error) {
	cp, err := s.create(ctx)
	if err != nil {
		s.metrics.RecordCheckpoint("create", "error")
		return domain.Checkpoint{}, err
	}
	s.metrics.RecordCheckpoint("create", "success")

	details := map[string]any{
		"checkpoint_path":  cp.Path,
		"checksum_blake2b": cp.Checksum,
		"size_bytes":       cp.SizeBytes,
	}
	if key := s.mirrorCheckpoint(ctx, cp); key != "" {
		details["mirror_key"] = key
	}

	return cp, s.audit.LogOperation(ctx, domain.OpCreateCheckpoint, nil, details)
}

func (s *CheckpointService) create(ctx context.Context) (domain.Checkpoint, error) {
	storePath := s.store.Path()
	info, err := os.Stat(storePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Checkpoint{}, fmt.Errorf("%w: %s", domain.ErrStoreNotInitialized, storePath)
		}
		return domain.Checkpoint{}, fmt.Errorf("failed to stat store: %w", err)
	}

	dir := domain.CheckpointDir(storePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.Checkpoint{}, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	at := s.now().Truncate(time.Second)
	for seq := 0; seq < maxCheckpointsPerSecond; seq++ {
		if err := ctx.Err(); err != nil {
			return domain.Checkpoint{}, err
		}

		name := domain.CheckpointFileName(storePath, at, seq)
		dst := filepath.Join(dir, name)
		checksum, size, err := copyFile(storePath, dst, info, true)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return domain.Checkpoint{}, err
		}

		logging.Logger.Info("Checkpoint created", "path", dst, "size", size)
		return domain.Checkpoint{
			Checksum:  checksum,
			CreatedAt: at,
			Name:      name,
			Path:      dst,
			Seq:       seq,
			SizeBytes: size,
		}, nil
	}
	return domain.Checkpoint{}, fmt.Errorf("too many checkpoints created at %s", at.Format(domain.CheckpointTimeLayout))
}

// mirrorCheckpoint uploads cp when a mirror is configured. Failures are
// logged and do not fail the checkpoint.
func (s *CheckpointService) mirrorCheckpoint(ctx context.Context, cp domain.Checkpoint) string {
	if s.mirror == nil {
		return ""
	}

	f, err := os.Open(cp.Path)
	if err != nil {
		logging.Logger.Warn("Failed to open checkpoint for mirroring", "path", cp.Path, "error", err)
		s.metrics.RecordCheckpoint("mirror", "error")
		return ""
	}
	defer f.Close()

	key, err := s.mirror.Upload(ctx, cp.Name, f, cp.SizeBytes, cp.Checksum)
	if err != nil {
		logging.Logger.Warn("Failed to mirror checkpoint", "path", cp.Path, "error", err)
		s.metrics.RecordCheckpoint("mirror", "error")
		return ""
	}
	s.metrics.RecordCheckpoint("mirror", "success")
	return key
}

// List returns the store's checkpoints, newest first. A missing checkpoint
// directory yields an empty list.
func (s *CheckpointService) List(ctx context.Context) ([]domain.Checkpoint, error) {
	storePath := s.store.Path()
	dir := domain.CheckpointDir(storePath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Checkpoint{}, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	type listed struct {
		cp    domain.Checkpoint
		mtime time.Time
	}
	var found []listed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		at, seq, ok := domain.ParseCheckpointName(storePath, e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			logging.Logger.Warn("Skipping unreadable checkpoint", "name", e.Name(), "error", err)
			continue
		}
		found = append(found, listed{
			cp: domain.Checkpoint{
				CreatedAt: at,
				Name:      e.Name(),
				Path:      filepath.Join(dir, e.Name()),
				Seq:       seq,
				SizeBytes: info.Size(),
			},
			mtime: info.ModTime(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if !a.cp.CreatedAt.Equal(b.cp.CreatedAt) {
			return a.cp.CreatedAt.After(b.cp.CreatedAt)
		}
		if a.cp.Seq != b.cp.Seq {
			return a.cp.Seq > b.cp.Seq
		}
		return a.mtime.After(b.mtime)
	})

	result := make([]domain.Checkpoint, len(found))
	for i, l := range found {
		result[i] = l.cp
	}
	return result, nil
}

// ErrMirrorDisabled is returned by MirroredCheckpoints when no mirror is configured
var ErrMirrorDisabled = errors.New("checkpoint mirror not configured")

// MirroredCheckpoints lists the object keys held by the checkpoint mirror
func (s *CheckpointService) MirroredCheckpoints(ctx context.Context) ([]string, error) {
	if s.mirror == nil {
		return nil, ErrMirrorDisabled
	}
	keys, err := s.mirror.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mirrored checkpoints: %w", err)
	}
	return keys, nil
}

// Resolve maps a checkpoint name or path to an existing file path
func (s *CheckpointService) Resolve(nameOrPath string) (string, error) {
	candidate := nameOrPath
	if !strings.ContainsRune(nameOrPath, os.PathSeparator) {
		candidate = filepath.Join(domain.CheckpointDir(s.store.Path()), nameOrPath)
	}
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", domain.ErrCheckpointNotFound, nameOrPath)
	}
	return candidate, nil
}

// Revert replaces the live store with a checkpoint. The store handle is
// released for the copy and reopened afterwards, the revert is logged into
// the reverted store and the query cache is dropped.
func (s *CheckpointService) Revert(ctx context.Context, checkpoint string, opts RevertOptions) (RevertResult, error) {
	start := time.Now()

	src, err := s.Resolve(checkpoint)
	if err != nil {
		return RevertResult{}, err
	}
	result := RevertResult{RevertedFrom: src}

	if opts.SafetyCheckpoint {
		safety, err := s.create(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to create safety checkpoint: %w", err)
		}
		result.SafetyCheckpoint = &safety
		logging.Logger.Info("Safety checkpoint created", "path", safety.Path)
	}

	if err := s.restore(src); err != nil {
		s.metrics.RecordCheckpoint("revert", "error")
		observe(s.metrics, string(domain.OpRevertCheckpoint), start, err)
		return result, err
	}
	s.metrics.RecordCheckpoint("revert", "success")
	observe(s.metrics, string(domain.OpRevertCheckpoint), start, nil)

	if err := s.cache.Invalidate(ctx); err != nil {
		logging.Logger.Warn("Failed to invalidate query cache", "error", err)
	}

	logging.Logger.Info("Store reverted", "checkpoint", src, "store", s.store.Path())

	details := map[string]any{"reverted_from": src}
	if result.SafetyCheckpoint != nil {
		details["safety_checkpoint"] = result.SafetyCheckpoint.Path
	}
	return result, s.audit.LogOperation(ctx, domain.OpRevertCheckpoint, nil, details)
}

// restore copies src over the store file with the handle released
func (s *CheckpointService) restore(src string) (err error) {
	storePath := s.store.Path()

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat checkpoint: %w", err)
	}

	if err := s.store.Release(); err != nil {
		return fmt.Errorf("failed to release store: %w", err)
	}
	defer func() {
		if reopenErr := s.store.Reopen(); reopenErr != nil && err == nil {
			err = fmt.Errorf("failed to reopen store: %w", reopenErr)
		}
	}()

	// A leftover rollback journal would be replayed against the restored file
	if err := os.Remove(storePath + "-journal"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale journal: %w", err)
	}

	if _, _, err := copyFile(src, storePath, info, false); err != nil {
		return fmt.Errorf("failed to restore checkpoint: %w", err)
	}
	return nil
}

// copyFile copies src to dst preserving mode and modification time and
// returns the hex BLAKE2b-512 checksum and size of the copy. With exclusive
// set an existing dst yields an error matching os.ErrExist.
func copyFile(src, dst string, srcInfo os.FileInfo, exclusive bool) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if exclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := os.OpenFile(dst, flags, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	hasher, err := blake2b.New512(nil)
	if err != nil {
		out.Close()
		return "", 0, err
	}

	size, err := io.Copy(io.MultiWriter(out, hasher), in)
	if err != nil {
		out.Close()
		return "", 0, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return "", 0, fmt.Errorf("failed to sync %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return "", 0, fmt.Errorf("failed to set mode on %s: %w", dst, err)
	}
	if err := os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return "", 0, fmt.Errorf("failed to set times on %s: %w", dst, err)
	}

	if size != srcInfo.Size() {
		return "", 0, fmt.Errorf("copy size mismatch for %s: got %d, expected %d", dst, size, srcInfo.Size())
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
