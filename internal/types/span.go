// Package types holds the entities shared across CodeWeaver's grammar,
// provider, chunker, indexer, and query subsystems.
package types

import (
	"fmt"

	"github.com/google/uuid"
)

// Span is a closed-closed line range bound to a source identifier.
//
// Convention: both start_line and end_line are inclusive and 1-indexed,
// matching how function/type ranges are represented throughout the code
// graph this was distilled from (StartLine/EndLine pairs used directly
// when slicing source text). Span has a single constructor; there is no
// positional-vs-keyword ambiguity to resolve at call sites.
type Span struct {
	StartLine int
	EndLine   int
	SourceID  uuid.UUID
}

// NewSpan validates and constructs a Span. startLine must be >= 1 and
// endLine must be >= startLine.
func NewSpan(startLine, endLine int, sourceID uuid.UUID) (Span, error) {
	if startLine < 1 {
		return Span{}, fmt.Errorf("%w: start_line must be >= 1, got %d", ErrValidation, startLine)
	}
	if endLine < startLine {
		return Span{}, fmt.Errorf("%w: end_line (%d) must be >= start_line (%d)", ErrValidation, endLine, startLine)
	}
	return Span{StartLine: startLine, EndLine: endLine, SourceID: sourceID}, nil
}

// Lines returns the inclusive line count covered by the span.
func (s Span) Lines() int {
	return s.EndLine - s.StartLine + 1
}

// Within reports whether the span lies entirely inside [1, lineCount].
func (s Span) Within(lineCount int) bool {
	return s.StartLine >= 1 && s.EndLine <= lineCount
}
