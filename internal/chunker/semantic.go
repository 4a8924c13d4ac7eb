package chunker

import (
	"context"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/google/uuid"

	"github.com/knitli/codeweaver/internal/grammar"
	"github.com/knitli/codeweaver/internal/types"
)

// languageGrammar resolves the tree-sitter *Language for one of
// grammar.SupportedLanguages. Grounded on the per-language constructors
// in the teacher's internal/indexer/parsers/*.go (one *sitter.Language
// per file, built from the corresponding bindings/go package).
func languageGrammar(language string) (*sitter.Language, bool) {
	switch language {
	case "python":
		return sitter.NewLanguage(python.Language()), true
	case "ruby":
		return sitter.NewLanguage(ruby.Language()), true
	case "rust":
		return sitter.NewLanguage(rust.Language()), true
	case "java":
		return sitter.NewLanguage(java.Language()), true
	case "c":
		return sitter.NewLanguage(c.Language()), true
	case "typescript":
		return sitter.NewLanguage(typescript.LanguageTypescript()), true
	case "php":
		return sitter.NewLanguage(php.LanguagePHP()), true
	default:
		return nil, false
	}
}

// SemanticChunker walks a tree-sitter parse tree and emits one
// CodeChunk per node whose kind is in chunkBoundaryKinds (definitions,
// not every statement), nested ones included, attaching Classify's
// semantic tags when the grammar registry knows the node kind. Grounded on the
// tree-walking shape of the teacher's internal/indexer/parsers
// treeSitterParser.ParseFile + walkTree, generalized from symbol
// extraction to chunk emission.
type SemanticChunker struct {
	registry *grammar.Registry
}

// NewSemanticChunker constructs a SemanticChunker bound to reg.
func NewSemanticChunker(reg *grammar.Registry) *SemanticChunker {
	return &SemanticChunker{registry: reg}
}

// chunkBoundaryKinds are the node kinds treated as chunk boundaries:
// emit a chunk for the whole subtree, then keep descending, so a nested
// definition (e.g. a method inside a class body) gets its own chunk in
// addition to its parent's.
var chunkBoundaryKinds = map[string]bool{
	"function_declaration": true, "function_definition": true, "function_item": true,
	"method_declaration": true, "method_definition": true,
	"class_declaration": true, "class_definition": true, "class": true,
	"struct_item": true, "struct_specifier": true,
	"enum_item": true, "enum_declaration": true, "enum_specifier": true,
	"interface_declaration": true, "trait_item": true,
	"module": true, "impl_item": true,
}

func (s *SemanticChunker) Chunk(ctx context.Context, file types.DiscoveredFile, content []byte) ([]types.CodeChunk, error) {
	lang, ok := languageGrammar(file.ExtKind.Language)
	if !ok {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", file.ExtKind.Language, file.Path)
	}
	defer tree.Close()

	var chunks []types.CodeChunk
	s.walkNode(tree.RootNode(), content, file, &chunks)
	return chunks, nil
}

func (s *SemanticChunker) walkNode(node *sitter.Node, source []byte, file types.DiscoveredFile, out *[]types.CodeChunk) {
	if node == nil {
		return
	}

	if chunkBoundaryKinds[node.Kind()] {
		chunk, ok := s.buildChunk(node, source, file)
		if ok {
			*out = append(*out, chunk)
		}
		// Still descend to pick up nested definitions (e.g. methods
		// inside a class), each becoming its own chunk in addition to
		// the parent's.
	}

	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		s.walkNode(node.Child(i), source, file, out)
	}
}

func (s *SemanticChunker) buildChunk(node *sitter.Node, source []byte, file types.DiscoveredFile) (types.CodeChunk, bool) {
	startLine := int(node.StartPosition().Row) + 1
	endLine := int(node.EndPosition().Row) + 1

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	span, err := types.NewSpan(startLine, endLine, id)
	if err != nil {
		return types.CodeChunk{}, false
	}

	thing, hasThing := s.registry.GetThingByName(node.Kind(), file.ExtKind.Language)
	var semClass *types.SemanticClass
	if hasThing {
		if tags := grammar.Classify(thing); len(tags) > 0 {
			semClass = &types.SemanticClass{Tags: tags, ImportanceScores: importanceFor(tags)}
		}
	}

	return types.CodeChunk{
		ChunkID:       id,
		Content:       string(source[node.StartByte():node.EndByte()]),
		LineRange:     span,
		FilePath:      file.Path,
		Language:      file.ExtKind.Language,
		ExtKind:       file.ExtKind,
		Source:        types.ChunkSourceSemanticAST,
		SemanticClass: semClass,
	}, true
}

// importanceFor derives per-intent importance scores from a chunk's
// semantic tags, used by the query pipeline's rescoring stage
// (SPEC_FULL.md §4.5 stage 7). Scores are additive contributions in
// [0,1], not a probability distribution.
func importanceFor(tags []string) types.ImportanceScores {
	var scores types.ImportanceScores
	for _, tag := range tags {
		switch tag {
		case grammar.TagDefinitionType, grammar.TagDefinitionFunc:
			scores.Discovery += 0.4
			scores.Comprehension += 0.3
		case grammar.TagFlowBranching, grammar.TagFlowLoop:
			scores.Debugging += 0.3
			scores.Modification += 0.2
		case grammar.TagErrorHandling:
			scores.Debugging += 0.4
		case grammar.TagBoundaryModule:
			scores.Discovery += 0.2
		case grammar.TagSyntaxIdentifier:
			scores.Comprehension += 0.1
		}
	}
	return scores
}
