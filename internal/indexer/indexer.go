// Package indexer implements CodeWeaver's indexing pipeline: discovery,
// incremental change detection, chunking, embedding, vector upsert,
// reconciliation, and checkpointed/resumable runs.
//
// Grounded end to end on the teacher's internal/indexer package, the
// largest subsystem in both repos. Where the teacher indexes into a
// SQLite-backed cache keyed by git branch, CodeWeaver indexes into a
// Provider Registry VectorStoreProvider keyed by content hash — the
// orchestration shape (discover, diff against a manifest, chunk+embed
// in batches, checkpoint, report statistics) carries over directly.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/store"
	"github.com/knitli/codeweaver/internal/types"
)

// Options configures one PrimeIndex run.
type Options struct {
	ProjectPath  string
	CacheDir     string // where manifest.json/checkpoint.json live
	SettingsHash string
	ForceReindex bool
	Discovery    DiscoveryConfig
	Progress     ProgressReporter
}

// Indexer orchestrates discovery, incremental diffing, chunking,
// embedding, upsert, reconciliation, and checkpointing for one project.
type Indexer struct {
	dense    providers.EmbeddingProvider
	sparse   providers.SparseEmbeddingProvider
	store    providers.VectorStoreProvider
	pipeline *Pipeline
}

// NewIndexer builds an Indexer over the given providers and chunker chain.
func NewIndexer(pipeline *Pipeline, dense providers.EmbeddingProvider, sparse providers.SparseEmbeddingProvider, store providers.VectorStoreProvider) *Indexer {
	return &Indexer{pipeline: pipeline, dense: dense, sparse: sparse, store: store}
}

// Result is PrimeIndex's return value: the final statistics plus
// whichever files failed (spec §4.4.8's files_with_errors).
type Result struct {
	Stats          Stats
	FilesWithErrors []string
}

// PrimeIndex runs one full indexing pass: discover files, diff against
// the persisted manifest, process deletions before new/modified files,
// chunk+embed+upsert the rest, reconcile any missing dense/sparse
// vectors (skipped when ForceReindex is true, since a forced run
// recomputes everything), and save the manifest and checkpoint once, at
// the end of the run. The saver's Due and ShutdownRequested triggers are
// not consulted, so nothing is saved mid-run.
//
// A manifest/checkpoint write failure is fatal (spec §4.4.8), and so are
// the failures that come before any file is processed: reading the
// manifest, compiling the discovery patterns, walking the tree. Every
// other failure is recorded in Result.FilesWithErrors and the run
// continues; when the IndexFiles call fails as a whole (an embedding
// batch or the upsert), every file it was given is recorded.
func PrimeIndex(ctx context.Context, idx *Indexer, opts Options, read ReadFile) (*Result, error) {
	now := time.Now()
	progress := opts.Progress
	if progress == nil {
		progress = NoOpProgressReporter{}
	}
	stats := NewStats(now)

	manifest, err := store.LoadManifest(opts.CacheDir, opts.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexing, err)
	}
	if opts.ForceReindex {
		manifest = types.NewIndexFileManifest(opts.ProjectPath)
	}

	saver := NewCheckpointSaver(opts.CacheDir, now)
	defer saver.Stop()

	checkpoint := &types.IndexingCheckpoint{
		ProjectPath:  opts.ProjectPath,
		SettingsHash: opts.SettingsHash,
	}

	progress.OnPhase(PhaseDiscovery, opts.ProjectPath)
	discovery, err := NewFileDiscovery(opts.Discovery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
	}
	discovered, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrIndexing, err)
	}
	stats.FilesDiscovered = len(discovered)
	checkpoint.FilesDiscovered = len(discovered)

	changes := DetectChanges(discovered, manifest)

	progress.OnPhase(PhaseStorage, "processing deletions")
	if len(changes.Deleted) > 0 {
		if err := idx.pipeline.DeleteFiles(ctx, changes.Deleted); err != nil {
			stats.FilesWithErrors = append(stats.FilesWithErrors, changes.Deleted...)
		} else {
			for _, path := range changes.Deleted {
				delete(manifest.Files, path)
			}
		}
	}

	// A modified file's chunks are re-generated from scratch with fresh
	// chunk IDs, so its previous store points must be dropped first —
	// otherwise the old chunks orphan alongside the new ones instead of
	// being replaced (spec §4.4.2).
	if len(changes.Modified) > 0 {
		modifiedPaths := make([]string, len(changes.Modified))
		for i, f := range changes.Modified {
			modifiedPaths[i] = f.Path
		}
		if err := idx.pipeline.DeleteFiles(ctx, modifiedPaths); err != nil {
			stats.FilesWithErrors = append(stats.FilesWithErrors, modifiedPaths...)
		}
	}

	toProcess := append(append([]types.DiscoveredFile{}, changes.Added...), changes.Modified...)

	progress.OnPhase(PhaseChunking, fmt.Sprintf("%d files", len(toProcess)))
	if len(toProcess) > 0 {
		result, err := idx.pipeline.IndexFiles(ctx, toProcess, read)
		if err != nil {
			// Not fatal: every file of the call is recorded as failed and
			// gets no new manifest entry.
			for _, f := range toProcess {
				stats.FilesWithErrors = append(stats.FilesWithErrors, f.Path)
			}
			result = &ProcessResult{}
		}
		for path, entry := range result.Entries {
			manifest.Files[path] = entry
		}
		for _, fe := range result.Errors {
			stats.FilesWithErrors = append(stats.FilesWithErrors, fe.Path)
		}
		stats.FilesProcessed += result.Stats.CodeFilesProcessed
		stats.ChunksCreated += result.Stats.TotalCodeChunks
		stats.ChunksEmbedded += result.Stats.TotalCodeChunks
		stats.ChunksIndexed += result.Stats.TotalCodeChunks

		for range toProcess {
			saver.OnFileProcessed()
		}
	}

	if !opts.ForceReindex && idx.store != nil {
		updated, chunksUpdated := ReconcileMissingEmbeddings(ctx, manifest, idx.store, idx.dense, idx.sparse, true, true)
		for path, entry := range updated {
			manifest.Files[path] = entry
		}
		checkpoint.ChunksEmbedded += chunksUpdated
	}

	checkpoint.FilesEmbedded = stats.FilesProcessed
	checkpoint.FilesIndexed = stats.FilesProcessed
	checkpoint.ChunksCreated = stats.ChunksCreated
	checkpoint.ChunksIndexed = stats.ChunksIndexed
	checkpoint.FilesWithErrors = stats.FilesWithErrors

	if err := saver.Save(manifest, checkpoint, time.Now()); err != nil {
		return nil, err
	}

	progress.OnComplete(stats)
	return &Result{Stats: *stats, FilesWithErrors: stats.FilesWithErrors}, nil
}
