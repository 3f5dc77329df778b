package domain

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckpointFileName(t *testing.T) {
	at := time.Date(2026, 3, 9, 14, 5, 7, 0, time.Local)

	assert.Equal(t, "cell-count_checkpoint_20260309_140507.db", CheckpointFileName("/data/cell-count.db", at, 0))
	assert.Equal(t, "cell-count_checkpoint_20260309_140507_2.db", CheckpointFileName("/data/cell-count.db", at, 2))
	assert.Equal(t, filepath.Join("/data", "checkpoints"), CheckpointDir("/data/cell-count.db"))
}

func TestParseCheckpointName(t *testing.T) {
	store := "/data/cell-count.db"

	at, seq, ok := ParseCheckpointName(store, "cell-count_checkpoint_20260309_140507.db")
	assert.True(t, ok)
	assert.Equal(t, 0, seq)
	assert.Equal(t, 2026, at.Year())
	assert.Equal(t, 7, at.Second())

	_, seq, ok = ParseCheckpointName(store, "cell-count_checkpoint_20260309_140507_3.db")
	assert.True(t, ok)
	assert.Equal(t, 3, seq)

	for _, name := range []string{
		"other_checkpoint_20260309_140507.db",
		"cell-count_checkpoint_20260309.db",
		"cell-count_checkpoint_20260309_140507.sqlite",
		"cell-count.db",
	} {
		_, _, ok := ParseCheckpointName(store, name)
		assert.False(t, ok, name)
	}
}
