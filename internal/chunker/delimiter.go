package chunker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/knitli/codeweaver/internal/types"
)

// builtinDelimiters are the BUILTIN_DELIMITER tier's default split
// points: common section/boundary markers for languages that have no
// tree-sitter grammar in this build (e.g. shell, plain config files).
var builtinDelimiters = []string{
	"\n\n\n", // blank-line-delimited section breaks
	"\n# ",   // shell/ini-style top-level comment headers
}

// DelimiterChunker splits content on the first delimiter (from
// delimiters, in order) that actually occurs in the text, producing one
// chunk per segment. A nil or empty delimiters set means this tier
// declines (returns no chunks), letting the chain fall through.
type DelimiterChunker struct {
	delimiters []string
}

// NewDelimiterChunker builds a DelimiterChunker over delimiters, tried
// in the given order.
func NewDelimiterChunker(delimiters []string) *DelimiterChunker {
	return &DelimiterChunker{delimiters: delimiters}
}

func (d *DelimiterChunker) Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	if len(d.delimiters) == 0 {
		return nil, nil
	}

	text := string(content)
	var delim string
	for _, candidate := range d.delimiters {
		if strings.Contains(text, candidate) {
			delim = candidate
			break
		}
	}
	if delim == "" {
		return nil, nil
	}

	segments := strings.Split(text, delim)
	return segmentsToChunks(segments, file, types.ChunkSourceDelimiter)
}

// segmentsToChunks converts a slice of raw text segments (already split
// by some chunker-specific rule) into line-ordered CodeChunks, tracking
// cumulative line offsets across segments so each chunk's LineRange
// reflects its true position in the original file.
func segmentsToChunks(segments []string, file types.DiscoveredFile, source types.ChunkSource) ([]types.CodeChunk, error) {
	var chunks []types.CodeChunk
	line := 1
	for _, seg := range segments {
		lineCount := strings.Count(seg, "\n") + 1
		if strings.TrimSpace(seg) == "" {
			line += lineCount
			continue
		}

		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		endLine := line + lineCount - 1
		span, err := types.NewSpan(line, endLine, id)
		if err != nil {
			line += lineCount
			continue
		}

		chunks = append(chunks, types.CodeChunk{
			ChunkID:   id,
			Content:   seg,
			LineRange: span,
			FilePath:  file.Path,
			Language:  file.ExtKind.Language,
			ExtKind:   file.ExtKind,
			Source:    source,
		})
		line += lineCount
	}
	return chunks, nil
}
