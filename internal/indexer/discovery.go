package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/zeebo/blake3"

	"github.com/knitli/codeweaver/internal/grammar"
	"github.com/knitli/codeweaver/internal/types"
)

// forcedIncludeDirs are tooling directories indexed regardless of the
// hidden-file rule (they start with "."), but never regardless of
// .gitignore — a .gitignore'd .github directory stays ignored.
var forcedIncludeDirs = map[string]bool{
	".github":   true,
	".circleci": true,
}

// DiscoveryConfig controls FileDiscovery's walk.
type DiscoveryConfig struct {
	RootDir        string
	IncludeGlobs   []string
	ExcludeGlobs   []string
	MaxFileSize    int64 // bytes; 0 means no cap
	HonorGitignore bool
}

// FileDiscovery walks a project tree and returns the set of files
// eligible for indexing, applying include/exclude glob patterns,
// .gitignore rules, hidden-file filtering (with forced-include
// exceptions), and a per-file size cap.
//
// Grounded on the teacher's internal/indexer/discovery.go FileDiscovery,
// extended with .gitignore honoring and forced-include tooling
// directories per SPEC_FULL.md §4.4.1.
type FileDiscovery struct {
	rootDir      string
	includeGlobs []glob.Glob
	excludeGlobs []glob.Glob
	gitignore    []glob.Glob
	maxFileSize  int64
}

// NewFileDiscovery compiles cfg's glob patterns and, if HonorGitignore
// is set, the project root's .gitignore.
func NewFileDiscovery(cfg DiscoveryConfig) (*FileDiscovery, error) {
	fd := &FileDiscovery{rootDir: cfg.RootDir, maxFileSize: cfg.MaxFileSize}

	compileAll := func(patterns []string) ([]glob.Glob, error) {
		var out []glob.Glob
		for _, p := range patterns {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		}
		return out, nil
	}

	var err error
	if fd.includeGlobs, err = compileAll(cfg.IncludeGlobs); err != nil {
		return nil, err
	}
	if fd.excludeGlobs, err = compileAll(cfg.ExcludeGlobs); err != nil {
		return nil, err
	}

	if cfg.HonorGitignore {
		patterns, err := readGitignore(cfg.RootDir)
		if err != nil {
			return nil, err
		}
		if fd.gitignore, err = compileAll(patterns); err != nil {
			return nil, err
		}
	}

	return fd, nil
}

// readGitignore reads .gitignore at root, if present, returning its
// non-blank, non-comment lines converted to "**"-anchored glob patterns.
func readGitignore(root string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(line, "/")
		if strings.Contains(line, "/") {
			// A slash other than a trailing one anchors the pattern at root.
			line = strings.TrimPrefix(line, "/")
			patterns = append(patterns, line, line+"/**")
		} else {
			patterns = append(patterns, "**/"+line, "**/"+line+"/**")
		}
	}
	return patterns, nil
}

// Discover walks rootDir and returns every eligible file as a
// types.DiscoveredFile, its ContentHash computed with BLAKE3-256.
func (fd *FileDiscovery) Discover() ([]types.DiscoveredFile, error) {
	var files []types.DiscoveredFile

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if fd.isGitignored(relPath) {
			return nil
		}
		if fd.isHidden(relPath) && !fd.isForcedInclude(relPath) {
			return nil
		}
		if !fd.isIncluded(relPath) {
			return nil
		}
		if fd.maxFileSize > 0 && info.Size() > fd.maxFileSize {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		hash := blake3.Sum256(data)

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		lang := grammar.IdentifyLanguage(path, firstLineOf(data))
		extKind := types.ExtKind{Language: lang, Category: categoryFor(ext, lang)}

		files = append(files, types.NewDiscoveredFile(relPath, info.Size(), hash, extKind))
		return nil
	})

	return files, err
}

// isIncluded reports whether relPath matches an include pattern (or no
// include patterns were configured, meaning everything not excluded is
// eligible) and does not match any exclude pattern.
func (fd *FileDiscovery) isIncluded(relPath string) bool {
	if matchesAny(relPath, fd.excludeGlobs) {
		return false
	}
	if len(fd.includeGlobs) == 0 {
		return true
	}
	return matchesAny(relPath, fd.includeGlobs)
}

// isGitignored reports whether relPath, or relPath as a directory
// prefix, matches a compiled .gitignore pattern.
func (fd *FileDiscovery) isGitignored(relPath string) bool {
	if strings.HasPrefix(relPath, ".git/") || relPath == ".git" {
		return true
	}
	return matchesAny(relPath, fd.gitignore)
}

// isHidden reports whether any path segment of relPath starts with ".".
func (fd *FileDiscovery) isHidden(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// isForcedInclude reports whether relPath falls under one of
// forcedIncludeDirs, overriding the hidden-file rule but not
// .gitignore (checked separately, and first, by the caller).
func (fd *FileDiscovery) isForcedInclude(relPath string) bool {
	for dir := range forcedIncludeDirs {
		if relPath == dir || strings.HasPrefix(relPath, dir+"/") {
			return true
		}
	}
	return false
}

// matchesAny also tries "/"+path so that a leading "**/" matches files
// at the root too; the glob library's "**/" needs a literal slash.
func matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) || p.Match("/"+path) {
			return true
		}
	}
	return false
}

func firstLineOf(data []byte) string {
	if i := strings.IndexByte(string(data), '\n'); i >= 0 {
		return string(data[:i])
	}
	if len(data) > 200 {
		return string(data[:200])
	}
	return string(data)
}

func categoryFor(ext, language string) string {
	switch ext {
	case "md", "mdx", "rst", "txt":
		return "documentation"
	}
	if language == "" {
		return "unknown"
	}
	return "code"
}
