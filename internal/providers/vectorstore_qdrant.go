package providers

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/knitli/codeweaver/internal/types"
)

// qdrantVectorStoreProvider is the remote VectorStoreProvider backend,
// used when a project's corpus is large enough to warrant an external
// service. Grounded on hector's pkg/databases/qdrant.go client
// construction and point/payload conversion helpers, extended here with
// named dense+sparse vectors (hector's client only wires a single dense
// vector per point) to satisfy the hybrid search stage (SPEC_FULL.md
// §4.5).
type qdrantVectorStoreProvider struct {
	client         *qdrant.Client
	collectionName string
}

const (
	qdrantDenseVectorName  = "dense"
	qdrantSparseVectorName = "sparse"
)

func newQdrantVectorStoreProvider(cfg ProviderConfig) (AnyProvider, error) {
	host := cfg.Endpoint
	if host == "" {
		host = "localhost"
	}
	collection := cfg.Extra["collection"]
	if collection == "" {
		collection = "codeweaver"
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   6334,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating qdrant client: %v", types.ErrConfiguration, err)
	}
	return &qdrantVectorStoreProvider{client: client, collectionName: collection}, nil
}

func (s *qdrantVectorStoreProvider) ensureCollection(ctx context.Context, denseSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collectionName)
	if err != nil {
		return fmt.Errorf("checking qdrant collection: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			qdrantDenseVectorName: {Size: denseSize, Distance: qdrant.Distance_Cosine},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			qdrantSparseVectorName: {},
		}),
	})
}

func (s *qdrantVectorStoreProvider) Upsert(ctx context.Context, chunks []types.CodeChunk) error {
	var points []*qdrant.PointStruct
	for _, chunk := range chunks {
		if !chunk.HasDense() {
			continue
		}
		if err := s.ensureCollection(ctx, uint64(len(chunk.DenseEmbedding))); err != nil {
			return err
		}

		vectors := map[string]*qdrant.Vector{
			qdrantDenseVectorName: qdrant.NewVectorDense(chunk.DenseEmbedding),
		}
		if chunk.HasSparse() {
			vectors[qdrantSparseVectorName] = qdrant.NewVectorSparse(
				chunk.SparseEmbedding.Indices, chunk.SparseEmbedding.Values)
		}

		payload := map[string]*qdrant.Value{
			"content":   qdrant.NewValueString(chunk.Content),
			"file_path": qdrant.NewValueString(chunk.FilePath),
			"language":  qdrant.NewValueString(chunk.Language),
			"source":    qdrant.NewValueString(string(chunk.Source)),
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkID.String()),
			Vectors: qdrant.NewVectorsMap(vectors),
			Payload: payload,
		})
	}
	if len(points) == 0 {
		return nil
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

func (s *qdrantVectorStoreProvider) Search(ctx context.Context, dense []float32, sparse *types.SparseVec, limit int) ([]types.SearchResult, error) {
	if len(dense) == 0 {
		return nil, fmt.Errorf("qdrant vector store requires a dense query vector")
	}

	query := &qdrant.QueryPoints{
		CollectionName: s.collectionName,
		Query:          qdrant.NewQueryDense(dense),
		Using:          qdrant.PtrOf(qdrantDenseVectorName),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	points, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("qdrant dense search: %w", err)
	}

	out := make([]types.SearchResult, 0, len(points))
	for _, p := range points {
		out = append(out, types.SearchResult{
			Content: types.CodeChunk{
				Content:  stringPayload(p.Payload, "content"),
				FilePath: stringPayload(p.Payload, "file_path"),
				Language: stringPayload(p.Payload, "language"),
			},
			Score:    p.Score,
			FilePath: stringPayload(p.Payload, "file_path"),
		})
	}
	return out, nil
}

func stringPayload(payload map[string]*qdrant.Value, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

func (s *qdrantVectorStoreProvider) DeleteByFile(ctx context.Context, filePath string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						{
							ConditionOneOf: &qdrant.Condition_Field{
								Field: &qdrant.FieldCondition{
									Key:   "file_path",
									Match: qdrant.NewMatch(filePath),
								},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant delete by file: %w", err)
	}
	return nil
}

func (s *qdrantVectorStoreProvider) Retrieve(ctx context.Context, chunkIDs []string) ([]types.CodeChunk, error) {
	ids := make([]*qdrant.PointId, len(chunkIDs))
	for i, id := range chunkIDs {
		ids[i] = qdrant.NewID(id)
	}

	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collectionName,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant retrieve: %w", err)
	}

	out := make([]types.CodeChunk, 0, len(points))
	for _, p := range points {
		out = append(out, types.CodeChunk{
			Content:  stringPayload(p.Payload, "content"),
			FilePath: stringPayload(p.Payload, "file_path"),
			Language: stringPayload(p.Payload, "language"),
		})
	}
	return out, nil
}

// UpdateVectors patches the named vector slot(s) on already-stored
// points, used by the indexer's reconciliation pass to backfill a
// missing dense or sparse vector (spec §4.4.5) without a full re-upsert.
func (s *qdrantVectorStoreProvider) UpdateVectors(ctx context.Context, updates []VectorUpdate) error {
	var points []*qdrant.PointVectors
	for _, u := range updates {
		vectors := map[string]*qdrant.Vector{}
		if len(u.Dense) > 0 {
			vectors[qdrantDenseVectorName] = qdrant.NewVectorDense(u.Dense)
		}
		if u.Sparse != nil {
			vectors[qdrantSparseVectorName] = qdrant.NewVectorSparse(u.Sparse.Indices, u.Sparse.Values)
		}
		if len(vectors) == 0 {
			continue
		}
		points = append(points, &qdrant.PointVectors{
			Id:      qdrant.NewID(u.ChunkID),
			Vectors: qdrant.NewVectorsMap(vectors),
		})
	}
	if len(points) == 0 {
		return nil
	}

	_, err := s.client.UpdateVectors(ctx, &qdrant.UpdatePointVectors{
		CollectionName: s.collectionName,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant update vectors: %w", err)
	}
	return nil
}

func (s *qdrantVectorStoreProvider) Close() error {
	return s.client.Close()
}
