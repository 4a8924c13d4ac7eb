// Package config loads CodeWeaver's settings through an eight-level
// precedence chain (spec §6.4) and derives the BLAKE3 settings hash that
// invalidates a stale indexing checkpoint.
//
// Grounded on the teacher's internal/config package: the project/global
// config split and the viper-based env-prefix/defaults/unmarshal shape
// of loader.go and global_loader.go carry over directly, generalized
// from a two-tier (project, global) precedence into the spec's full
// eight-tier chain.
package config

// Settings is CodeWeaver's complete runtime configuration.
type Settings struct {
	Discovery DiscoverySettings `yaml:"discovery" mapstructure:"discovery"`
	Chunking  ChunkingSettings  `yaml:"chunking" mapstructure:"chunking"`
	Providers ProviderSettings  `yaml:"providers" mapstructure:"providers"`

	// CacheDir is where manifest.json/checkpoint.json are persisted.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// ForceReindex discards any existing manifest/checkpoint and
	// recomputes every file from scratch.
	ForceReindex bool `yaml:"force_reindex" mapstructure:"force_reindex"`
}

// DiscoverySettings configures the file walker (spec §4.4.1).
type DiscoverySettings struct {
	IncludeGlobs   []string `yaml:"include_globs" mapstructure:"include_globs"`
	ExcludeGlobs   []string `yaml:"exclude_globs" mapstructure:"exclude_globs"`
	MaxFileSizeKB  int64    `yaml:"max_file_size_kb" mapstructure:"max_file_size_kb"`
	HonorGitignore bool     `yaml:"honor_gitignore" mapstructure:"honor_gitignore"`
}

// ChunkingSettings holds the chunk size/overlap knobs. They are
// validated and feed SettingsHash; the chunker chain does not read them
// (its RECURSIVE tier uses fixed DefaultMaxChunkLines windows with no
// overlap).
type ChunkingSettings struct {
	CodeChunkSize int `yaml:"code_chunk_size" mapstructure:"code_chunk_size"`
	DocChunkSize  int `yaml:"doc_chunk_size" mapstructure:"doc_chunk_size"`
	Overlap       int `yaml:"overlap" mapstructure:"overlap"`
}

// ProviderSettings names which Provider Registry entries to bind for
// each role (spec §4.2). Empty string means "not configured" rather
// than an invalid selection — the registry and query pipeline treat an
// unconfigured role as absent, not an error, except where the role is
// required (dense or sparse embeddings for indexing).
type ProviderSettings struct {
	DenseProvider  string `yaml:"dense_provider" mapstructure:"dense_provider"`
	DenseModel     string `yaml:"dense_model" mapstructure:"dense_model"`
	SparseProvider string `yaml:"sparse_provider" mapstructure:"sparse_provider"`
	SparseModel    string `yaml:"sparse_model" mapstructure:"sparse_model"`
	VectorStore    string `yaml:"vector_store" mapstructure:"vector_store"`
	Reranker       string `yaml:"reranker" mapstructure:"reranker"` // optional
}

// Default returns CodeWeaver's built-in configuration (precedence tier
// 8, the lowest).
func Default() *Settings {
	return &Settings{
		Discovery: DiscoverySettings{
			IncludeGlobs: []string{
				"**/*.go", "**/*.py", "**/*.rb", "**/*.rs", "**/*.java",
				"**/*.c", "**/*.h", "**/*.cpp", "**/*.hpp", "**/*.ts",
				"**/*.tsx", "**/*.js", "**/*.jsx", "**/*.php",
				"**/*.md", "**/*.rst",
			},
			ExcludeGlobs: []string{
				"**/node_modules/**", "**/vendor/**", "**/.git/**",
				"**/dist/**", "**/build/**", "**/target/**",
				"**/__pycache__/**", "**/*.pyc",
			},
			MaxFileSizeKB:  1024,
			HonorGitignore: true,
		},
		Chunking: ChunkingSettings{
			CodeChunkSize: 2000,
			DocChunkSize:  800,
			Overlap:       100,
		},
		Providers: ProviderSettings{
			DenseProvider:  "local",
			SparseProvider: "bm25",
			VectorStore:    "chromem",
		},
		CacheDir:     ".codeweaver/cache",
		ForceReindex: false,
	}
}
