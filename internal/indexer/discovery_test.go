package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestFileDiscovery_AppliesIncludeAndExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")
	writeFile(t, root, "main_test.go", "package main\n")
	writeFile(t, root, "README.md", "# hi\n")

	fd, err := NewFileDiscovery(DiscoveryConfig{
		RootDir:      root,
		IncludeGlobs: []string{"**/*.go"},
		ExcludeGlobs: []string{"**/*_test.go"},
	})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}

func TestFileDiscovery_SkipsHiddenExceptForcedIncludeDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "SECRET=1\n")
	writeFile(t, root, ".github/workflows/ci.yml", "name: ci\n")
	writeFile(t, root, "main.go", "package main\n")

	fd, err := NewFileDiscovery(DiscoveryConfig{RootDir: root})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "main.go")
	assert.Contains(t, paths, ".github/workflows/ci.yml")
	assert.NotContains(t, paths, ".env")
}

func TestFileDiscovery_HonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "build/\nsecrets.txt\n")
	writeFile(t, root, "build/output.go", "package build\n")
	writeFile(t, root, "secrets.txt", "token\n")
	writeFile(t, root, "main.go", "package main\n")

	fd, err := NewFileDiscovery(DiscoveryConfig{RootDir: root, HonorGitignore: true})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"main.go"}, paths)
}

func TestFileDiscovery_EnforcesMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.go", "package main\n")
	writeFile(t, root, "large.go", "package main\n// padding padding padding\n")

	fd, err := NewFileDiscovery(DiscoveryConfig{RootDir: root, MaxFileSize: 20})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "small.go", files[0].Path)
}

func TestFileDiscovery_AlwaysIgnoresDotGit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main\n")
	writeFile(t, root, "main.go", "package main\n")

	fd, err := NewFileDiscovery(DiscoveryConfig{RootDir: root})
	require.NoError(t, err)

	files, err := fd.Discover()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)
}
