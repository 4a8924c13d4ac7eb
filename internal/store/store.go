// Package store persists the manifest and checkpoint that let the
// indexer resume incremental runs instead of reprocessing a project from
// scratch (spec §4.4.6).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knitli/codeweaver/internal/types"
)

// MaxCheckpointAge is how stale a checkpoint may be before a non-force
// run discards it and starts fresh (spec §4.4.6).
const MaxCheckpointAge = 24 * time.Hour

const (
	manifestFileName   = "manifest.json"
	checkpointFileName = "checkpoint.json"
)

// SaveManifest and SaveCheckpoint persist m/c to dir using the teacher's
// atomic-write pattern (internal/cache/metadata.go Save): marshal, write
// to a ".tmp" sibling, then rename over the target so a reader never
// observes a partially written file.
func SaveManifest(dir string, m *types.IndexFileManifest) error {
	return atomicWriteJSON(filepath.Join(dir, manifestFileName), m)
}

func SaveCheckpoint(dir string, c *types.IndexingCheckpoint) error {
	return atomicWriteJSON(filepath.Join(dir, checkpointFileName), c)
}

func atomicWriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s: %w", tmpPath, err)
	}
	return nil
}

// LoadManifest reads a persisted manifest, returning a fresh empty one if
// none exists yet.
func LoadManifest(dir, projectPath string) (*types.IndexFileManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return types.NewIndexFileManifest(projectPath), nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m types.IndexFileManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// LoadCheckpoint reads a persisted checkpoint and returns it only if its
// SettingsHash matches settingsHash and it is no older than
// MaxCheckpointAge; otherwise it returns nil, nil (caller starts fresh),
// matching the spec's "loaded if settings_hash matches ... and age <= 24h".
func LoadCheckpoint(dir, settingsHash string, now time.Time) (*types.IndexingCheckpoint, error) {
	data, err := os.ReadFile(filepath.Join(dir, checkpointFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading checkpoint: %w", err)
	}
	var c types.IndexingCheckpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing checkpoint: %w", err)
	}
	if c.SettingsHash != settingsHash {
		return nil, nil
	}
	if now.Sub(c.Timestamp) > MaxCheckpointAge {
		return nil, nil
	}
	return &c, nil
}
