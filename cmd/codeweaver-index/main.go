// Command codeweaver-index is CodeWeaver's one-shot/incremental indexing
// and ad-hoc query CLI. Grounded on the teacher's internal/cli/root.go
// Cobra bootstrap and internal/cli/index.go's indexing command, adapted
// from the teacher's JSON-chunk-file output and SQLite branch cache to
// CodeWeaver's Provider Registry and query pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/knitli/codeweaver/internal/bootstrap"
	"github.com/knitli/codeweaver/internal/chunker"
	"github.com/knitli/codeweaver/internal/config"
	"github.com/knitli/codeweaver/internal/grammar"
	"github.com/knitli/codeweaver/internal/indexer"
	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/query"
	"github.com/knitli/codeweaver/internal/types"
)

var (
	projectPath string
	quiet       bool
	force       bool
)

var rootCmd = &cobra.Command{
	Use:   "codeweaver-index",
	Short: "Index a project and query it for code-intelligence agents",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&projectPath, "project", ".", "project root to index/query")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	rootCmd.AddCommand(indexCmd, queryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index (or re-index) the project at --project",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(projectPath, &config.Settings{ForceReindex: force})
		if err != nil {
			return err
		}

		registry := providers.NewRegistry()
		providers.RegisterBuiltins(registry)

		p, err := bootstrap.BuildProviders(registry, settings)
		if err != nil {
			return err
		}
		defer p.Close()

		grammarRegistry := grammar.NewRegistry()
		chain := chunker.NewChain(grammarRegistry)

		var progress indexer.ProgressReporter = indexer.NoOpProgressReporter{}
		if !quiet {
			progress = newBarProgressReporter(false)
		}
		pipeline := indexer.NewPipeline(chain, p.Dense, p.Sparse, p.Store, progress)
		idx := indexer.NewIndexer(pipeline, p.Dense, p.Sparse, p.Store)

		hash, err := config.SettingsHash(settings)
		if err != nil {
			return fmt.Errorf("computing settings hash: %w", err)
		}

		abs, err := filepath.Abs(projectPath)
		if err != nil {
			return err
		}
		cacheDir := settings.CacheDir
		if !filepath.IsAbs(cacheDir) {
			cacheDir = filepath.Join(abs, cacheDir)
		}

		opts := indexer.Options{
			ProjectPath:  abs,
			CacheDir:     cacheDir,
			SettingsHash: hash,
			ForceReindex: settings.ForceReindex,
			Discovery: indexer.DiscoveryConfig{
				RootDir:        abs,
				IncludeGlobs:   settings.Discovery.IncludeGlobs,
				ExcludeGlobs:   settings.Discovery.ExcludeGlobs,
				MaxFileSize:    settings.Discovery.MaxFileSizeKB * 1024,
				HonorGitignore: settings.Discovery.HonorGitignore,
			},
			Progress: progress,
		}

		ctx := context.Background()
		result, err := indexer.PrimeIndex(ctx, idx, opts, os.ReadFile)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("indexed %d files, %d files with errors\n", result.Stats.FilesProcessed, len(result.FilesWithErrors))
		}
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Run a single find_code query against the indexed project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(projectPath, nil)
		if err != nil {
			return err
		}

		registry := providers.NewRegistry()
		providers.RegisterBuiltins(registry)

		p, err := bootstrap.BuildProviders(registry, settings)
		if err != nil {
			return err
		}
		defer p.Close()

		pipeline := query.NewPipeline(p.Dense, p.Sparse, p.Store, p.Reranker, settings.Discovery.IncludeGlobs)

		req := types.DefaultFindCodeRequest(args[0])
		resp, err := pipeline.FindCode(context.Background(), req)
		if err != nil {
			return err
		}

		fmt.Println(resp.Summary)
		for _, m := range resp.Matches {
			fmt.Printf("  %-60s %.3f\n", m.File.Path, m.RelevanceScore)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&force, "force", false, "discard any existing manifest/checkpoint and reindex from scratch")
}
