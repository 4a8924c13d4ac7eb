package indexer

import (
	"encoding/hex"

	"github.com/knitli/codeweaver/internal/types"
)

// ChangeSet is the result of comparing a fresh file discovery against
// the persisted manifest: which files are new, changed, untouched, or
// gone. Grounded on the teacher's internal/indexer/change_detector.go
// ChangeSet, generalized from SHA-256 to BLAKE3-256 content hashing
// (SPEC_FULL.md §4.4.2) and from mtime-fast-path comparison to a direct
// hash comparison, since Discover already computes each file's BLAKE3
// digest while reading it for chunking.
type ChangeSet struct {
	Added     []types.DiscoveredFile
	Modified  []types.DiscoveredFile
	Unchanged []types.DiscoveredFile
	Deleted   []string // relative paths present in the manifest but not on disk
}

// DetectChanges classifies discovered against manifest's recorded
// state. Deletions are reported so callers can process them before any
// new or modified file, per the spec's deletions-first ordering.
func DetectChanges(discovered []types.DiscoveredFile, manifest *types.IndexFileManifest) ChangeSet {
	var changes ChangeSet

	seen := make(map[string]bool, len(discovered))
	for _, file := range discovered {
		seen[file.Path] = true

		entry, existed := manifest.Files[file.Path]
		if !existed {
			changes.Added = append(changes.Added, file)
			continue
		}

		if hex.EncodeToString(file.ContentHash[:]) == entry.ContentHash {
			changes.Unchanged = append(changes.Unchanged, file)
		} else {
			changes.Modified = append(changes.Modified, file)
		}
	}

	for path := range manifest.Files {
		if !seen[path] {
			changes.Deleted = append(changes.Deleted, path)
		}
	}

	return changes
}
