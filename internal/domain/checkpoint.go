package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CheckpointDirName is the directory, relative to the store file, holding checkpoints
const CheckpointDirName = "checkpoints"

// CheckpointTimeLayout encodes the checkpoint creation time in its file name
const CheckpointTimeLayout = "20060102_150405"

// Checkpoint is a timestamped full copy of the store file
type Checkpoint struct {
	Checksum  string    `json:"checksum_blake2b,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Seq       int       `json:"seq"`
	SizeBytes int64     `json:"size_bytes"`
}

// CheckpointDir returns the checkpoint directory for a store path
func CheckpointDir(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), CheckpointDirName)
}

// CheckpointFileName builds <stem>_checkpoint_<YYYYMMDD_HHMMSS>[_seq]<ext>
func CheckpointFileName(storePath string, at time.Time, seq int) string {
	stem, ext := storeStem(storePath)
	name := fmt.Sprintf("%s_checkpoint_%s", stem, at.Format(CheckpointTimeLayout))
	if seq > 0 {
		name = fmt.Sprintf("%s_%d", name, seq)
	}
	return name + ext
}

// ParseCheckpointName reports whether name follows the naming convention for
// storePath and, if so, returns the encoded timestamp and sequence
func ParseCheckpointName(storePath, name string) (time.Time, int, bool) {
	stem, ext := storeStem(storePath)
	re := regexp.MustCompile("^" + regexp.QuoteMeta(stem) + `_checkpoint_(\d{8}_\d{6})(?:_(\d+))?` + regexp.QuoteMeta(ext) + "$")
	m := re.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, 0, false
	}
	at, err := time.ParseInLocation(CheckpointTimeLayout, m[1], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	seq := 0
	if m[2] != "" {
		seq, _ = strconv.Atoi(m[2])
	}
	return at, seq, true
}

func storeStem(storePath string) (string, string) {
	base := filepath.Base(storePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
