package chunker

import (
	"context"
	"strings"

	"github.com/knitli/codeweaver/internal/types"
)

// DefaultMaxChunkLines bounds a recursive chunk's size when no other
// tier handled the file. It is the last, always-applicable tier: any
// file, regardless of language or content shape, gets chunked this way.
const DefaultMaxChunkLines = 80

// RecursiveChunker splits content into fixed-size line windows, the
// RECURSIVE tier's fallback for files with no grammar, no matching
// delimiter, and no special-cased format.
type RecursiveChunker struct {
	maxLines int
}

// NewRecursiveChunker builds a RecursiveChunker with the given window size.
func NewRecursiveChunker(maxLines int) *RecursiveChunker {
	if maxLines <= 0 {
		maxLines = DefaultMaxChunkLines
	}
	return &RecursiveChunker{maxLines: maxLines}
}

func (r *RecursiveChunker) Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) == 0 {
		return nil, nil
	}

	// A file that fits in a single window needs no recursive splitting
	// at all — it is one opaque TEXT_BLOCK rather than a one-element
	// RECURSIVE split, since RECURSIVE implies the splitter actually
	// had to cut the content somewhere.
	if len(lines) <= r.maxLines {
		return segmentsToChunks([]string{string(content)}, file, types.ChunkSourceTextBlock)
	}

	var segments []string
	for start := 0; start < len(lines); start += r.maxLines {
		end := start + r.maxLines
		if end > len(lines) {
			end = len(lines)
		}
		segments = append(segments, strings.Join(lines[start:end], "\n"))
	}

	return segmentsToChunks(segments, file, types.ChunkSourceRecursive)
}
