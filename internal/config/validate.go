package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfigLoad wraps any I/O or parse failure encountered while
	// merging a config tier.
	ErrConfigLoad = errors.New("config load error")

	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidOverlap indicates an overlap that is negative or not
	// smaller than the chunk size it applies within.
	ErrInvalidOverlap = errors.New("invalid overlap")

	// ErrMissingVectorStore indicates no vector store provider was
	// configured at any precedence tier.
	ErrMissingVectorStore = errors.New("missing vector store provider")
)

// Validate checks settings for internal consistency, independent of
// which precedence tier supplied each value.
func Validate(s *Settings) error {
	var errs []error

	if s.Chunking.CodeChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: code_chunk_size must be positive, got %d", ErrInvalidChunkSize, s.Chunking.CodeChunkSize))
	}
	if s.Chunking.DocChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: doc_chunk_size must be positive, got %d", ErrInvalidChunkSize, s.Chunking.DocChunkSize))
	}
	if s.Chunking.Overlap < 0 {
		errs = append(errs, fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidOverlap, s.Chunking.Overlap))
	}
	if s.Chunking.CodeChunkSize > 0 && s.Chunking.Overlap >= s.Chunking.CodeChunkSize {
		errs = append(errs, fmt.Errorf("%w: overlap (%d) must be less than code_chunk_size (%d)", ErrInvalidOverlap, s.Chunking.Overlap, s.Chunking.CodeChunkSize))
	}
	if s.Providers.VectorStore == "" {
		errs = append(errs, ErrMissingVectorStore)
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into one with each on its own
// line, matching the teacher's accumulate-then-report validation style.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
