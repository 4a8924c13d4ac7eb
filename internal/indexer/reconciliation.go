package indexer

import (
	"context"
	"log"

	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

// ReconcileMissingEmbeddings backfills a dense or sparse vector that the
// manifest says a file's chunks are missing, without a full re-index.
// Grounded on the teacher's internal/indexer/eviction.go
// PostIndexEviction for the "runs once per indexing call, failures
// logged and non-fatal" shape, reworked from cache-eviction bookkeeping
// to spec §4.4.5's add_missing_embeddings_to_existing_chunks:
//
//  1. Select files where the requested vector kind is absent in the
//     manifest (addDense/addSparse).
//  2. For each such file's chunks, retrieve the stored point and inspect
//     its HasDense/HasSparse state — the manifest can lag behind a prior
//     partial write. This relies on Retrieve returning the stored
//     vectors: the chromem backend's does; the qdrant backend's fetches
//     the payload only, so there every retrieved chunk reads as missing
//     both vectors and the requested kinds are re-embedded.
//  3. Generate the missing embedding from the chunk's text and
//     UpdateVectors in one batch per file.
//  4. Report updated manifest entries to the caller.
//
// Reconciliation never aborts indexing: a provider or store error for
// one file is logged and reconciliation continues with the next file.
func ReconcileMissingEmbeddings(
	ctx context.Context,
	manifest *types.IndexFileManifest,
	store providers.VectorStoreProvider,
	dense providers.EmbeddingProvider,
	sparse providers.SparseEmbeddingProvider,
	addDense, addSparse bool,
) (updatedEntries map[string]types.FileEntry, chunksUpdated int) {
	updatedEntries = make(map[string]types.FileEntry)
	if !addDense && !addSparse {
		return updatedEntries, 0
	}

	for path, entry := range manifest.Files {
		needDense := addDense && !entry.HasDenseEmbedding
		needSparse := addSparse && !entry.HasSparseEmbedding
		if !needDense && !needSparse {
			continue
		}

		chunks, err := store.Retrieve(ctx, entry.ChunkIDs)
		if err != nil {
			log.Printf("warning: reconciliation retrieve failed for %s: %v", path, err)
			continue
		}

		var updates []providers.VectorUpdate
		for i, chunk := range chunks {
			if i >= len(entry.ChunkIDs) {
				break
			}
			chunkID := entry.ChunkIDs[i]

			wantDense := needDense && !chunk.HasDense()
			wantSparse := needSparse && !chunk.HasSparse()
			if !wantDense && !wantSparse {
				continue
			}

			update := providers.VectorUpdate{ChunkID: chunkID}
			if wantDense && dense != nil {
				vecs, err := dense.Embed(ctx, []string{chunk.Content}, false)
				if err != nil {
					log.Printf("warning: reconciliation dense embed failed for %s: %v", path, err)
					continue
				}
				if len(vecs) > 0 {
					update.Dense = vecs[0]
				}
			}
			if wantSparse && sparse != nil {
				vecs, err := sparse.EmbedSparse(ctx, []string{chunk.Content})
				if err != nil {
					log.Printf("warning: reconciliation sparse embed failed for %s: %v", path, err)
					continue
				}
				if len(vecs) > 0 {
					update.Sparse = &vecs[0]
				}
			}
			if update.Dense != nil || update.Sparse != nil {
				updates = append(updates, update)
			}
		}

		if len(updates) == 0 {
			continue
		}

		if err := store.UpdateVectors(ctx, updates); err != nil {
			log.Printf("warning: reconciliation update failed for %s: %v", path, err)
			continue
		}

		for _, u := range updates {
			if u.Dense != nil {
				entry.HasDenseEmbedding = true
			}
			if u.Sparse != nil {
				entry.HasSparseEmbedding = true
			}
		}
		updatedEntries[path] = entry
		chunksUpdated += len(updates)
	}

	return updatedEntries, chunksUpdated
}
