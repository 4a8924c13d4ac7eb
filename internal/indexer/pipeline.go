package indexer

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/knitli/codeweaver/internal/chunker"
	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

// maxConcurrentBatches bounds how many embedding batches run at once,
// the per-indexer worker pool the concurrency model calls for (spec §5),
// implemented with errgroup plus its own concurrency limit rather than a
// hand-rolled semaphore channel.
const maxConcurrentBatches = 4

// retryProvider wraps a provider call with the spec's backoff policy:
// exponential starting at 1s, factor 2, capped at 60s, up to 5 attempts.
func retryProvider[T any](ctx context.Context, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.Multiplier = 2
	bo.MaxInterval = 60 * time.Second
	return backoff.Retry(ctx, func() (T, error) { return op() },
		backoff.WithBackOff(bo), backoff.WithMaxTries(5))
}

// embeddingBatchSize is the spec's default batch size for dense/sparse
// embedding calls (spec §4.4.3).
const embeddingBatchSize = 100

// Pipeline turns discovered files into stored, embedded chunks: chunk,
// embed (dense and sparse, batched), and upsert into the vector store.
// Grounded on the teacher's internal/indexer/impl.go
// processCodeFiles/embedChunks (batch size, progress reporting,
// per-file error accumulation without aborting the run), generalized
// from the teacher's fixed three-tier extraction to the Chunker chain
// and from a single local embedder to the Provider Registry's
// EmbeddingProvider/SparseEmbeddingProvider/VectorStoreProvider.
type Pipeline struct {
	chunks   *chunker.Chain
	dense    providers.EmbeddingProvider
	sparse   providers.SparseEmbeddingProvider
	store    providers.VectorStoreProvider
	progress ProgressReporter
}

// NewPipeline builds a Pipeline. progress may be nil, in which case a
// NoOpProgressReporter is used.
func NewPipeline(chunks *chunker.Chain, dense providers.EmbeddingProvider, sparse providers.SparseEmbeddingProvider, store providers.VectorStoreProvider, progress ProgressReporter) *Pipeline {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Pipeline{chunks: chunks, dense: dense, sparse: sparse, store: store, progress: progress}
}

// FileError records a per-file failure that did not abort the batch
// (spec §4.4.8's failure semantics: file-scope errors never abort a run).
type FileError struct {
	Path string
	Err  error
}

// ProcessingStats tallies one IndexFiles call's throughput, distinct
// from the run-wide Stats in progress.go (which also tracks discovery
// and embedding-progress fields IndexFiles never touches).
type ProcessingStats struct {
	CodeFilesProcessed int
	TotalCodeChunks    int
}

// ProcessResult summarizes one IndexFiles call.
type ProcessResult struct {
	Entries map[string]types.FileEntry // relative path -> manifest entry
	Errors  []FileError
	Stats   ProcessingStats
}

// ReadFile abstracts file content access so callers can supply cached
// content (e.g. from the discovery walk) instead of re-reading disk.
type ReadFile func(path string) ([]byte, error)

// IndexFiles chunks, embeds, and upserts each file in files. A file
// that cannot be read or chunked is recorded in Errors and skipped; the
// call continues with the remaining files. A failed embedding batch or
// upsert ends the whole call with an error and no Entries.
func (p *Pipeline) IndexFiles(ctx context.Context, files []types.DiscoveredFile, read ReadFile) (*ProcessResult, error) {
	result := &ProcessResult{Entries: make(map[string]types.FileEntry)}

	var allChunks []types.CodeChunk
	chunksByFile := make(map[string][]int) // file path -> indices into allChunks

	for _, file := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		content, err := read(file.Path)
		if err != nil {
			result.Errors = append(result.Errors, FileError{Path: file.Path, Err: fmt.Errorf("%w: reading %s: %v", types.ErrIndexing, file.Path, err)})
			continue
		}

		fileChunks, err := p.chunks.Chunk(ctx, file, content)
		if err != nil {
			log.Printf("warning: chunking %s: %v", file.Path, err)
			result.Errors = append(result.Errors, FileError{Path: file.Path, Err: fmt.Errorf("%w: chunking %s: %v", types.ErrIndexing, file.Path, err)})
			continue
		}

		start := len(allChunks)
		allChunks = append(allChunks, fileChunks...)
		indices := make([]int, len(fileChunks))
		for i := range fileChunks {
			indices[i] = start + i
		}
		chunksByFile[file.Path] = indices

		result.Stats.CodeFilesProcessed++
		p.progress.OnFileProcessed(file.Path)
	}

	p.progress.OnEmbeddingStart(len(allChunks))
	if err := p.embedBatched(ctx, allChunks); err != nil {
		return result, fmt.Errorf("%w: embedding: %v", types.ErrProvider, err)
	}

	if p.store != nil && len(allChunks) > 0 {
		if err := p.store.Upsert(ctx, allChunks); err != nil {
			return result, fmt.Errorf("%w: upserting chunks: %v", types.ErrIndexing, err)
		}
	}

	for _, file := range files {
		indices, ok := chunksByFile[file.Path]
		if !ok {
			continue
		}
		entry := types.FileEntry{
			ContentHash: hex.EncodeToString(file.ContentHash[:]),
			ChunkCount:  len(indices),
		}
		for _, i := range indices {
			c := allChunks[i]
			entry.ChunkIDs = append(entry.ChunkIDs, c.ChunkID.String())
			entry.HasDenseEmbedding = entry.HasDenseEmbedding || c.HasDense()
			entry.HasSparseEmbedding = entry.HasSparseEmbedding || c.HasSparse()
		}
		result.Entries[file.Path] = entry
		result.Stats.TotalCodeChunks += len(indices)
	}

	return result, nil
}

// embedBatched requests dense and sparse embeddings in batches of
// embeddingBatchSize, attaching results back onto chunks in place.
// After embedding, chunks reflect the embedding registry's output
// directly — the single source of truth for per-chunk vectors, per
// spec §4.4.3.
func (p *Pipeline) embedBatched(ctx context.Context, chunks []types.CodeChunk) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentBatches)

	var processed int32
	for start := 0; start < len(chunks); start += embeddingBatchSize {
		start := start
		end := start + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		group.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}

			if p.dense != nil {
				vectors, err := retryProvider(gctx, func() ([][]float32, error) {
					return p.dense.Embed(gctx, texts, false)
				})
				if err != nil {
					return fmt.Errorf("%w: dense embedding batch: %v", types.ErrProvider, err)
				}
				for i := range batch {
					if i < len(vectors) {
						chunks[start+i].DenseEmbedding = vectors[i]
					}
				}
			}

			if p.sparse != nil {
				vecs, err := retryProvider(gctx, func() ([]types.SparseVec, error) {
					return p.sparse.EmbedSparse(gctx, texts)
				})
				if err != nil {
					return fmt.Errorf("%w: sparse embedding batch: %v", types.ErrProvider, err)
				}
				for i := range batch {
					if i < len(vecs) {
						v := vecs[i]
						chunks[start+i].SparseEmbedding = &v
					}
				}
			}

			n := atomic.AddInt32(&processed, int32(len(batch)))
			p.progress.OnEmbeddingProgress(int(n))
			return nil
		})
	}

	return group.Wait()
}

// DeleteFiles removes all stored chunks for each path in paths, used to
// process Deleted entries before Added/Modified in a batch (spec
// §4.4.2's deletions-first ordering, avoiding chunk-ID reuse collision).
func (p *Pipeline) DeleteFiles(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := p.store.DeleteByFile(ctx, path); err != nil {
			return fmt.Errorf("%w: deleting chunks for %s: %v", types.ErrIndexing, path, err)
		}
	}
	return nil
}
