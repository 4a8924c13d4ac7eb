package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// configFileNames are tried, in order, within each directory tier.
var configFileNames = []string{"config.yaml", "config.yml", "config.json", "config.toml"}

// Load builds Settings from the eight-level precedence chain (spec
// §6.4), listed from highest to lowest priority:
//
//  1. overrides (direct constructor args)
//  2. CODEWEAVER_-prefixed environment variables ("__" nested delimiter)
//  3. a local env file (.env.local, then .env) in projectPath
//  4. a local config file (.codeweaver.{yaml,yml,json,toml}) in the
//     current working directory
//  5. a project config file (<projectPath>/.codeweaver/config.yaml)
//  6. a user-home config file (~/.codeweaver/config.yaml)
//  7. a global config file (/etc/codeweaver/config.yaml)
//  8. Default()
//
// A missing file at any tier is not an error; it is simply skipped.
func Load(projectPath string, overrides *Settings) (*Settings, error) {
	v := viper.New()
	setDefaults(v, Default())

	for _, dir := range globalConfigDirs() {
		mergeConfigDir(v, dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		mergeConfigDir(v, filepath.Join(home, ".codeweaver"))
	}
	mergeConfigDir(v, filepath.Join(projectPath, ".codeweaver"))

	cwd, err := os.Getwd()
	if err == nil {
		mergeLocalConfigFile(v, cwd)
	}

	if err := loadLocalEnvFile(projectPath); err != nil {
		return nil, fmt.Errorf("%w: reading local env file: %v", ErrConfigLoad, err)
	}

	v.SetEnvPrefix("CODEWEAVER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling settings: %v", ErrConfigLoad, err)
	}

	applyOverrides(settings, overrides)

	if err := Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// globalConfigDirs returns the machine-wide config directory to search,
// honoring $CODEWEAVER_GLOBAL_CONFIG_DIR for tests and non-standard
// installs before falling back to the conventional /etc path.
func globalConfigDirs() []string {
	if dir := os.Getenv("CODEWEAVER_GLOBAL_CONFIG_DIR"); dir != "" {
		return []string{dir}
	}
	return []string{"/etc/codeweaver"}
}

// mergeConfigDir merges the first matching config file found in dir, if
// any, into v. Later calls override earlier ones for overlapping keys,
// which is how the tier ordering above is realized.
func mergeConfigDir(v *viper.Viper, dir string) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			continue
		}
		return
	}
}

// mergeLocalConfigFile merges a dotfile-style config (.codeweaver.yaml
// etc.) directly in dir, the "local config in CWD" tier (spec tier 4),
// distinct from the directory-based project/user/global tiers above.
func mergeLocalConfigFile(v *viper.Viper, dir string) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, ".codeweaver"+filepath.Ext(name))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			continue
		}
		return
	}
}

// loadLocalEnvFile reads KEY=VALUE lines from .env.local or .env in dir
// and sets them in the process environment, without overwriting a
// variable that is already set (so real environment variables, tier 2,
// still outrank this tier-3 file).
func loadLocalEnvFile(dir string) error {
	for _, name := range []string{".env.local", ".env"} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if _, set := os.LookupEnv(key); set {
				continue
			}
			os.Setenv(key, strings.Trim(strings.TrimSpace(value), `"'`))
		}
		return scanner.Err()
	}
	return nil
}

// setDefaults installs defaults' fields into v as viper's lowest-priority
// layer (tier 8).
func setDefaults(v *viper.Viper, defaults *Settings) {
	v.SetDefault("discovery.include_globs", defaults.Discovery.IncludeGlobs)
	v.SetDefault("discovery.exclude_globs", defaults.Discovery.ExcludeGlobs)
	v.SetDefault("discovery.max_file_size_kb", defaults.Discovery.MaxFileSizeKB)
	v.SetDefault("discovery.honor_gitignore", defaults.Discovery.HonorGitignore)

	v.SetDefault("chunking.code_chunk_size", defaults.Chunking.CodeChunkSize)
	v.SetDefault("chunking.doc_chunk_size", defaults.Chunking.DocChunkSize)
	v.SetDefault("chunking.overlap", defaults.Chunking.Overlap)

	v.SetDefault("providers.dense_provider", defaults.Providers.DenseProvider)
	v.SetDefault("providers.dense_model", defaults.Providers.DenseModel)
	v.SetDefault("providers.sparse_provider", defaults.Providers.SparseProvider)
	v.SetDefault("providers.sparse_model", defaults.Providers.SparseModel)
	v.SetDefault("providers.vector_store", defaults.Providers.VectorStore)
	v.SetDefault("providers.reranker", defaults.Providers.Reranker)

	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("force_reindex", defaults.ForceReindex)
}

// applyOverrides overlays non-zero-valued fields of overrides onto
// settings — the highest-priority tier (direct constructor args).
func applyOverrides(settings *Settings, overrides *Settings) {
	if overrides == nil {
		return
	}
	if len(overrides.Discovery.IncludeGlobs) > 0 {
		settings.Discovery.IncludeGlobs = overrides.Discovery.IncludeGlobs
	}
	if len(overrides.Discovery.ExcludeGlobs) > 0 {
		settings.Discovery.ExcludeGlobs = overrides.Discovery.ExcludeGlobs
	}
	if overrides.Discovery.MaxFileSizeKB != 0 {
		settings.Discovery.MaxFileSizeKB = overrides.Discovery.MaxFileSizeKB
	}
	if overrides.Chunking.CodeChunkSize != 0 {
		settings.Chunking.CodeChunkSize = overrides.Chunking.CodeChunkSize
	}
	if overrides.Chunking.DocChunkSize != 0 {
		settings.Chunking.DocChunkSize = overrides.Chunking.DocChunkSize
	}
	if overrides.Chunking.Overlap != 0 {
		settings.Chunking.Overlap = overrides.Chunking.Overlap
	}
	if overrides.Providers.DenseProvider != "" {
		settings.Providers.DenseProvider = overrides.Providers.DenseProvider
	}
	if overrides.Providers.DenseModel != "" {
		settings.Providers.DenseModel = overrides.Providers.DenseModel
	}
	if overrides.Providers.SparseProvider != "" {
		settings.Providers.SparseProvider = overrides.Providers.SparseProvider
	}
	if overrides.Providers.SparseModel != "" {
		settings.Providers.SparseModel = overrides.Providers.SparseModel
	}
	if overrides.Providers.VectorStore != "" {
		settings.Providers.VectorStore = overrides.Providers.VectorStore
	}
	if overrides.Providers.Reranker != "" {
		settings.Providers.Reranker = overrides.Providers.Reranker
	}
	if overrides.CacheDir != "" {
		settings.CacheDir = overrides.CacheDir
	}
	if overrides.ForceReindex {
		settings.ForceReindex = overrides.ForceReindex
	}
}
