package types

import "github.com/google/uuid"

// ChunkSource records which chunking strategy produced a CodeChunk.
type ChunkSource string

const (
	ChunkSourceSemanticAST ChunkSource = "SEMANTIC_AST"
	ChunkSourceDelimiter   ChunkSource = "DELIMITER"
	ChunkSourceRecursive   ChunkSource = "RECURSIVE"
	ChunkSourceTextBlock   ChunkSource = "TEXT_BLOCK"
)

// SemanticClass tags a chunk with one or more semantic roles, each
// carrying per-intent importance scores used by the query pipeline's
// rescoring stage.
type SemanticClass struct {
	Tags             []string
	ImportanceScores ImportanceScores
}

// ImportanceScores are the per-intent boost inputs used in query
// rescoring (spec §4.5 stage 7).
type ImportanceScores struct {
	Debugging     float32
	Discovery     float32
	Modification  float32
	Comprehension float32
}

// CodeChunk is a contiguous fragment of source text with its span,
// language, optional embeddings, and best-effort semantic classification.
// A chunk is owned by exactly one file; chunks within a file are totally
// ordered by Span.StartLine.
type CodeChunk struct {
	ChunkID         uuid.UUID
	Content         string
	LineRange       Span
	FilePath        string
	Language        string // empty string means "unknown" (Language|None)
	ExtKind         ExtKind
	Source          ChunkSource
	SemanticClass   *SemanticClass
	DenseEmbedding  []float32
	SparseEmbedding *SparseVec
	Metadata        map[string]any
}

// HasDense reports whether a dense embedding has been attached.
func (c CodeChunk) HasDense() bool {
	return len(c.DenseEmbedding) > 0
}

// HasSparse reports whether a sparse embedding has been attached.
func (c CodeChunk) HasSparse() bool {
	return c.SparseEmbedding != nil && !c.SparseEmbedding.IsEmpty()
}
