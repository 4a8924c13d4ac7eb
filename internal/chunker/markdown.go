package chunker

import (
	"context"
	"regexp"
	"strings"

	"github.com/knitli/codeweaver/internal/types"
)

// markdownHeadingPattern matches ATX-style Markdown headings ("# ", "##
// ", ...) at the start of a line, the LANGCHAIN_SPECIAL tier's split
// point — named for the langchain text-splitter family's
// MarkdownHeaderTextSplitter, which original_source's chunking ladder
// names explicitly for this special case.
var markdownHeadingPattern = regexp.MustCompile(`(?m)^#{1,6} .*$`)

// MarkdownChunker splits Markdown content on heading boundaries, one
// chunk per section (heading line plus the body text up to the next
// heading of equal or shallower depth, approximated here as up to the
// next heading of any depth).
type MarkdownChunker struct{}

// NewMarkdownChunker constructs a MarkdownChunker.
func NewMarkdownChunker() *MarkdownChunker { return &MarkdownChunker{} }

func (m *MarkdownChunker) Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	text := string(content)
	locs := markdownHeadingPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	// Each section drops its final newline: segmentsToChunks counts a
	// segment as its newlines plus one line, so a kept trailing newline
	// would push every later section one line down.
	var segments []string
	if locs[0][0] > 0 {
		segments = append(segments, strings.TrimSuffix(text[:locs[0][0]], "\n"))
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segments = append(segments, strings.TrimSuffix(text[loc[0]:end], "\n"))
	}

	return segmentsToChunks(segments, file, types.ChunkSourceDelimiter)
}
