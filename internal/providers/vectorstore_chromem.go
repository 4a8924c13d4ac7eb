package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/knitli/codeweaver/internal/types"
)

// serializeSparseVec encodes a SparseVec as "idx:val,idx:val,..." since
// chromem's Document.Metadata only holds string values.
func serializeSparseVec(v types.SparseVec) string {
	parts := make([]string, v.Len())
	for i := range v.Indices {
		parts[i] = strconv.FormatUint(uint64(v.Indices[i]), 10) + ":" + strconv.FormatFloat(float64(v.Values[i]), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}

// chromemVectorStoreProvider is the embedded, single-process
// VectorStoreProvider backend, used for Scenario B (a project small
// enough to run entirely in-process with no external vector service).
// Grounded directly on the teacher's internal/mcp.chromemSearcher:
// same chromem.DB/Collection/Document shapes, with the collection
// pointer read under an RWMutex (it is set once at construction and
// never reloaded), adapted from ContextChunk/SearchOptions to
// types.CodeChunk/types.SearchResult.
type chromemVectorStoreProvider struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
}

const chromemCollectionName = "codeweaver"

func newChromemVectorStoreProvider(ProviderConfig) (AnyProvider, error) {
	db := chromem.NewDB()
	collection, err := db.CreateCollection(chromemCollectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating chromem collection: %w", err)
	}
	return &chromemVectorStoreProvider{db: db, collection: collection}, nil
}

func (s *chromemVectorStoreProvider) Upsert(ctx context.Context, chunks []types.CodeChunk) error {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	for _, chunk := range chunks {
		if !chunk.HasDense() {
			continue
		}
		doc := chromem.Document{
			ID:        chunk.ChunkID.String(),
			Content:   chunk.Content,
			Embedding: chunk.DenseEmbedding,
			Metadata:  chunkMetadata(chunk),
		}
		_ = collection.Delete(ctx, nil, nil, doc.ID)
		if err := collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", chunk.ChunkID, err)
		}
	}
	return nil
}

func chunkMetadata(chunk types.CodeChunk) map[string]string {
	return map[string]string{
		"file_path": chunk.FilePath,
		"language":  chunk.Language,
		"source":    string(chunk.Source),
	}
}

func (s *chromemVectorStoreProvider) Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error) {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()

	if collection == nil {
		return nil, fmt.Errorf("chromem collection not initialized")
	}
	if len(dense) == 0 {
		return nil, fmt.Errorf("chromem vector store requires a dense query vector")
	}

	n := limit
	if count := collection.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	docs, err := collection.QueryEmbedding(ctx, dense, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem vector search: %w", err)
	}

	out := make([]types.SearchResult, 0, len(docs))
	for _, doc := range docs {
		score := doc.Similarity
		out = append(out, types.SearchResult{
			Content: types.CodeChunk{
				Content:  doc.Content,
				FilePath: doc.Metadata["file_path"],
				Language: doc.Metadata["language"],
			},
			Score:    score,
			FilePath: doc.Metadata["file_path"],
		})
	}
	return out, nil
}

func (s *chromemVectorStoreProvider) DeleteByFile(ctx context.Context, filePath string) error {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()
	if collection == nil {
		return nil
	}
	return collection.Delete(ctx, map[string]string{"file_path": filePath}, nil)
}

func (s *chromemVectorStoreProvider) Retrieve(ctx context.Context, chunkIDs []string) ([]types.CodeChunk, error) {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()
	if collection == nil {
		return nil, nil
	}

	out := make([]types.CodeChunk, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		doc, err := collection.GetByID(ctx, id)
		if err != nil {
			continue
		}
		chunk := types.CodeChunk{
			Content:        doc.Content,
			FilePath:       doc.Metadata["file_path"],
			Language:       doc.Metadata["language"],
			DenseEmbedding: doc.Embedding,
		}
		if raw, ok := doc.Metadata["sparse"]; ok && raw != "" {
			if sv, err := deserializeSparseVec(raw); err == nil {
				chunk.SparseEmbedding = &sv
			}
		}
		out = append(out, chunk)
	}
	return out, nil
}

// deserializeSparseVec parses the "idx:val,idx:val,..." encoding
// produced by serializeSparseVec.
func deserializeSparseVec(raw string) (types.SparseVec, error) {
	parts := strings.Split(raw, ",")
	indices := make([]uint32, 0, len(parts))
	values := make([]float32, 0, len(parts))
	for _, part := range parts {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		idx, err := strconv.ParseUint(kv[0], 10, 32)
		if err != nil {
			continue
		}
		val, err := strconv.ParseFloat(kv[1], 32)
		if err != nil {
			continue
		}
		indices = append(indices, uint32(idx))
		values = append(values, float32(val))
	}
	return types.NewSparseVec(indices, values)
}

// UpdateVectors re-adds each point with the supplied embedding merged
// in. chromem has no named-vector storage, so a reconciled sparse
// vector is serialized into the document's string metadata under the
// "sparse" key rather than stored as a second embedding slot.
func (s *chromemVectorStoreProvider) UpdateVectors(ctx context.Context, updates []VectorUpdate) error {
	s.mu.RLock()
	collection := s.collection
	s.mu.RUnlock()
	if collection == nil {
		return fmt.Errorf("chromem collection not initialized")
	}

	for _, u := range updates {
		existing, err := collection.GetByID(ctx, u.ChunkID)
		if err != nil {
			continue
		}
		embedding := existing.Embedding
		if len(u.Dense) > 0 {
			embedding = u.Dense
		}
		metadata := existing.Metadata
		if u.Sparse != nil {
			if metadata == nil {
				metadata = make(map[string]string)
			}
			metadata["sparse"] = serializeSparseVec(*u.Sparse)
		}
		doc := chromem.Document{
			ID:        u.ChunkID,
			Content:   existing.Content,
			Embedding: embedding,
			Metadata:  metadata,
		}
		_ = collection.Delete(ctx, nil, nil, u.ChunkID)
		if err := collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("reconciling chunk %s: %w", u.ChunkID, err)
		}
	}
	return nil
}

func (s *chromemVectorStoreProvider) Close() error { return nil }
