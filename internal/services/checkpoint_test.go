package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cytodash/internal/domain"
)

type fakeMirror struct {
	checksum string
	err      error
	uploaded map[string][]byte
}

func (m *fakeMirror) Upload(ctx context.Context, name string, body io.Reader, size int64, checksum string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.uploaded == nil {
		m.uploaded = map[string][]byte{}
	}
	m.uploaded[name] = data
	m.checksum = checksum
	return "mirror/" + name, nil
}

func (m *fakeMirror) List(ctx context.Context) ([]string, error) {
	var keys []string
	for k := range m.uploaded {
		keys = append(keys, "mirror/"+k)
	}
	return keys, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestCheckpoint_CreateAndList(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)
	env.checkpoints.now = fixedClock(at)

	first, err := env.checkpoints.Create(ctx)
	require.NoError(t, err)
	second, err := env.checkpoints.Create(ctx)
	require.NoError(t, err)

	assert.Equal(t, "cell-count_checkpoint_20260304_050607.db", first.Name)
	assert.Equal(t, "cell-count_checkpoint_20260304_050607_1.db", second.Name)
	assert.Len(t, first.Checksum, 128)
	assert.Equal(t, filepath.Join(filepath.Dir(env.repo.Path()), "checkpoints", first.Name), first.Path)

	info, err := os.Stat(first.Path)
	require.NoError(t, err)
	assert.Equal(t, first.SizeBytes, info.Size())

	env.checkpoints.now = fixedClock(at.Add(-time.Hour))
	older, err := env.checkpoints.Create(ctx)
	require.NoError(t, err)

	// foreign files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(first.Path), "notes.txt"), nil, 0644))

	list, err := env.checkpoints.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, second.Name, list[0].Name)
	assert.Equal(t, first.Name, list[1].Name)
	assert.Equal(t, older.Name, list[2].Name)

	entries, err := env.audit.OperationLog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.OpCreateCheckpoint, entries[0].OperationType)
	details := entries[0].Details.(map[string]any)
	assert.Equal(t, older.Checksum, details["checksum_blake2b"])
}

func TestCheckpoint_ListMissingDir(t *testing.T) {
	env := newTestEnv(t)

	list, err := env.checkpoints.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCheckpoint_Revert(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.loadCohort(t)

	cp, err := env.checkpoints.Create(ctx)
	require.NoError(t, err)

	_, err = env.samples.RemoveSample(ctx, "s1")
	require.NoError(t, err)
	view, err := env.queries.AllSamplesView(ctx)
	require.NoError(t, err)
	require.Len(t, view, 5)

	env.checkpoints.now = fixedClock(time.Now().Add(time.Minute))
	result, err := env.checkpoints.Revert(ctx, cp.Name, RevertOptions{SafetyCheckpoint: true})
	require.NoError(t, err)
	assert.Equal(t, cp.Path, result.RevertedFrom)
	require.NotNil(t, result.SafetyCheckpoint)

	view, err = env.queries.AllSamplesView(ctx)
	require.NoError(t, err)
	assert.Len(t, view, 6)

	// the revert is logged into the restored store, after its own history
	types := operationTypes(t, env.audit)
	assert.Equal(t, domain.OpRevertCheckpoint, types[0])
	assert.NotContains(t, types, domain.OpRemoveSample)

	// the safety checkpoint still holds the pre-revert state
	list, err := env.checkpoints.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, result.SafetyCheckpoint.Name, list[0].Name)
}

func TestCheckpoint_RevertMissing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.checkpoints.Revert(ctx, "cell-count_checkpoint_19990101_000000.db", RevertOptions{})
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	_, err = env.checkpoints.Revert(ctx, filepath.Join(t.TempDir(), "nope.db"), RevertOptions{})
	assert.ErrorIs(t, err, domain.ErrCheckpointNotFound)

	// the store is still usable
	_, err = env.samples.CountSamples(ctx)
	assert.NoError(t, err)
}

func TestCheckpoint_Mirror(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	mirror := &fakeMirror{}
	svc := NewCheckpointService(env.repo, env.audit, env.cache, mirror, nil)

	cp, err := svc.Create(ctx)
	require.NoError(t, err)

	data, err := os.ReadFile(cp.Path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, mirror.uploaded[cp.Name]))
	assert.Equal(t, cp.Checksum, mirror.checksum)

	entries, err := env.audit.OperationLog(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "mirror/"+cp.Name, entries[0].Details.(map[string]any)["mirror_key"])
}

func TestCheckpoint_MirrorFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCheckpointService(env.repo, env.audit, env.cache, &fakeMirror{err: errors.New("offline")}, nil)

	cp, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, cp.Path)
}

func TestCheckpoint_MirroredCheckpoints(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.checkpoints.MirroredCheckpoints(ctx)
	assert.ErrorIs(t, err, ErrMirrorDisabled)

	svc := NewCheckpointService(env.repo, env.audit, env.cache, &fakeMirror{}, nil)
	cp, err := svc.Create(ctx)
	require.NoError(t, err)

	keys, err := svc.MirroredCheckpoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"mirror/" + cp.Name}, keys)
}
