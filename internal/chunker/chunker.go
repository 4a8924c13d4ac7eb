// Package chunker transforms a discovered file into an ordered sequence
// of types.CodeChunk, preserving line ranges and attaching best-effort
// semantic classification.
//
// The strategy chain — SEMANTIC, USER_DELIMITER, BUILTIN_DELIMITER,
// LANGCHAIN_SPECIAL, RECURSIVE — is grounded on the teacher's
// per-language parser selection in internal/indexer/parsers (one
// treeSitterParser per language, chosen by extension) and on
// original_source's chunking fallback ladder. Custom extension points
// (RegisterCustomChunker, RegisterCustomDelimiter) resolve Open
// Question 2: they are different extension points, not variants of one
// mechanism — see SPEC_FULL.md §4.3.1.
package chunker

import (
	"context"

	"github.com/knitli/codeweaver/internal/grammar"
	"github.com/knitli/codeweaver/internal/types"
)

// Chunker produces an ordered, line-disjoint-or-nested sequence of
// CodeChunk from file content. Implementations must satisfy
// SPEC_FULL.md §4.3's invariants: chunks are totally orderable by start
// line, every chunk's range lies within the file, and semantic
// classification is best-effort (a nil SemanticClass is valid).
type Chunker interface {
	Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error)
}

// Strategy names the five-tier chunking strategy chain, tried in order
// until one produces a non-empty result.
type Strategy string

const (
	StrategySemantic         Strategy = "SEMANTIC"
	StrategyUserDelimiter     Strategy = "USER_DELIMITER"
	StrategyBuiltinDelimiter  Strategy = "BUILTIN_DELIMITER"
	StrategyLangchainSpecial  Strategy = "LANGCHAIN_SPECIAL"
	StrategyRecursive         Strategy = "RECURSIVE"
)

// strategyOrder is the fixed tier order; chainChunker.Chunk walks this slice.
var strategyOrder = []Strategy{
	StrategySemantic,
	StrategyUserDelimiter,
	StrategyBuiltinDelimiter,
	StrategyLangchainSpecial,
	StrategyRecursive,
}

// Chain selects and runs the appropriate chunker for a file, falling
// back down the strategy tiers when an earlier tier declines (returns
// zero chunks, not an error) to handle the input.
type Chain struct {
	registry        *grammar.Registry
	customChunkers  map[string]Chunker // language -> whole-strategy override (RegisterCustomChunker)
	customDelimiters map[string][]string // language -> extra delimiters, added to USER_DELIMITER tier only
	semantic        *SemanticChunker
	userDelimiter   *DelimiterChunker
	builtin         *DelimiterChunker
	langchain       *MarkdownChunker
	recursive       *RecursiveChunker
}

// NewChain builds the default strategy chain over reg.
func NewChain(reg *grammar.Registry) *Chain {
	return &Chain{
		registry:         reg,
		customChunkers:   make(map[string]Chunker),
		customDelimiters: make(map[string][]string),
		semantic:         NewSemanticChunker(reg),
		userDelimiter:    NewDelimiterChunker(nil),
		builtin:          NewDelimiterChunker(builtinDelimiters),
		langchain:        NewMarkdownChunker(),
		recursive:        NewRecursiveChunker(DefaultMaxChunkLines),
	}
}

// RegisterCustomChunker overrides the ENTIRE strategy chain for
// language with c: no tier in strategyOrder runs for this language
// again. This is the coarse extension point (Open Question 2).
func (ch *Chain) RegisterCustomChunker(language string, c Chunker) {
	ch.customChunkers[language] = c
}

// RegisterCustomDelimiter adds extra delimiter strings to the
// USER_DELIMITER tier for language, without touching any other tier.
// This is the fine-grained extension point (Open Question 2): it never
// replaces semantic or recursive chunking, only augments the delimiter
// set consulted before BUILTIN_DELIMITER.
func (ch *Chain) RegisterCustomDelimiter(language string, delimiters ...string) {
	ch.customDelimiters[language] = append(ch.customDelimiters[language], delimiters...)
}

// ForLanguage returns the chunker chain appropriate for language,
// honoring a RegisterCustomChunker override if one is registered.
func (ch *Chain) ForLanguage(language string) Chunker {
	if custom, ok := ch.customChunkers[language]; ok {
		return custom
	}
	return chainChunker{chain: ch, language: language}
}

// Chunk runs file through the strategy chain for its language.
func (ch *Chain) Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	return ch.ForLanguage(file.ExtKind.Language).Chunk(ctx, file, content)
}

// chainChunker implements Chunker by walking strategyOrder for one
// chain+language pair.
type chainChunker struct {
	chain    *Chain
	language string
}

func (c chainChunker) Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	for _, tier := range strategyOrder {
		chunks, err := c.chain.runTier(ctx, tier, c.language, file, content)
		if err != nil {
			return nil, err
		}
		if len(chunks) > 0 {
			return chunks, nil
		}
	}
	return nil, nil
}

// runTier dispatches one strategy tier. NextChunker (the public name
// for this dispatch, spec §4.3) is exposed via Chain.Chunk/ForLanguage
// rather than as a standalone method, since a tier's applicability
// depends on both the chain's configuration and the language.
func (ch *Chain) runTier(ctx context.Context, tier Strategy, language string, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	switch tier {
	case StrategySemantic:
		if !isSemanticLanguage(language) {
			return nil, nil
		}
		return ch.semantic.Chunk(ctx, file, content)
	case StrategyUserDelimiter:
		delims := ch.customDelimiters[language]
		if len(delims) == 0 {
			return nil, nil
		}
		return NewDelimiterChunker(delims).Chunk(ctx, file, content)
	case StrategyBuiltinDelimiter:
		return ch.builtin.Chunk(ctx, file, content)
	case StrategyLangchainSpecial:
		if language != "markdown" {
			return nil, nil
		}
		return ch.langchain.Chunk(ctx, file, content)
	case StrategyRecursive:
		return ch.recursive.Chunk(ctx, file, content)
	default:
		return nil, nil
	}
}

func isSemanticLanguage(language string) bool {
	for _, l := range grammar.SupportedLanguages() {
		if l == language {
			return true
		}
	}
	return false
}
