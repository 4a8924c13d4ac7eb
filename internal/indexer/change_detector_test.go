package indexer

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knitli/codeweaver/internal/types"
)

func hashOf(b byte) [32]byte {
	var h [32]byte
	h[0] = b
	return h
}

func TestDetectChanges_ClassifiesAddedModifiedUnchangedDeleted(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	manifest.Files["unchanged.go"] = types.FileEntry{ContentHash: hex.EncodeToString(hashOf(1)[:])}
	manifest.Files["modified.go"] = types.FileEntry{ContentHash: hex.EncodeToString(hashOf(2)[:])}
	manifest.Files["removed.go"] = types.FileEntry{ContentHash: hex.EncodeToString(hashOf(3)[:])}

	discovered := []types.DiscoveredFile{
		types.NewDiscoveredFile("unchanged.go", 10, hashOf(1), types.ExtKind{Language: "go"}),
		types.NewDiscoveredFile("modified.go", 10, hashOf(9), types.ExtKind{Language: "go"}),
		types.NewDiscoveredFile("new.go", 10, hashOf(4), types.ExtKind{Language: "go"}),
	}

	changes := DetectChanges(discovered, manifest)

	assert.Len(t, changes.Added, 1)
	assert.Equal(t, "new.go", changes.Added[0].Path)

	assert.Len(t, changes.Modified, 1)
	assert.Equal(t, "modified.go", changes.Modified[0].Path)

	assert.Len(t, changes.Unchanged, 1)
	assert.Equal(t, "unchanged.go", changes.Unchanged[0].Path)

	assert.Equal(t, []string{"removed.go"}, changes.Deleted)
}

func TestDetectChanges_EmptyManifestMarksEverythingAdded(t *testing.T) {
	manifest := types.NewIndexFileManifest("/project")
	discovered := []types.DiscoveredFile{
		types.NewDiscoveredFile("a.go", 1, hashOf(1), types.ExtKind{Language: "go"}),
		types.NewDiscoveredFile("b.go", 1, hashOf(2), types.ExtKind{Language: "go"}),
	}

	changes := DetectChanges(discovered, manifest)

	assert.Len(t, changes.Added, 2)
	assert.Empty(t, changes.Modified)
	assert.Empty(t, changes.Unchanged)
	assert.Empty(t, changes.Deleted)
}
