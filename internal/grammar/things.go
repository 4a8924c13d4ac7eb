// Package grammar reifies tree-sitter's overloaded node vocabulary into
// a disjoint, intuitive model: Category, Thing (Token|CompositeThing),
// and Connection (Direct|Positional). Classification rules and chunkers
// are built against this model instead of raw tree-sitter node kinds.
//
// Grounded on original_source/src/codeweaver/semantic/grammar_things.py
// and, for the registry mechanics, on the teacher's
// internal/pattern.AstGrepProvider lazy-init/mutex shape.
package grammar

// ThingKind distinguishes a leaf Token from a non-leaf CompositeThing.
type ThingKind string

const (
	ThingKindToken     ThingKind = "TOKEN"
	ThingKindComposite ThingKind = "COMPOSITE"
)

// TokenPurpose classifies a leaf Token's grammatical role.
type TokenPurpose string

const (
	TokenPurposeKeyword     TokenPurpose = "KEYWORD"
	TokenPurposeIdentifier  TokenPurpose = "IDENTIFIER"
	TokenPurposeLiteral     TokenPurpose = "LITERAL"
	TokenPurposePunctuation TokenPurpose = "PUNCTUATION"
	TokenPurposeComment     TokenPurpose = "COMMENT"
)

// Category is an abstract grouping of Things (tree-sitter's
// "supertype"). A Category never appears in an actual parse tree; it is
// only referenced for polymorphic type constraints.
type Category struct {
	Name     string
	Language string
}

// Thing is the common shape of a concrete parse-tree element, either a
// Token (leaf) or a CompositeThing (non-leaf).
type Thing struct {
	Name           string
	Language       string
	Kind           ThingKind
	CategoryNames  []string
	IsExplicitRule bool
	CanBeAnywhere  bool

	// Token-only.
	Purpose TokenPurpose

	// CompositeThing-only.
	IsFile bool
}

// IsToken reports whether this Thing is a leaf.
func (t Thing) IsToken() bool { return t.Kind == ThingKindToken }

// IsComposite reports whether this Thing is a non-leaf.
func (t Thing) IsComposite() bool { return t.Kind == ThingKindComposite }

// NewToken constructs a leaf Thing.
func NewToken(name, language string, purpose TokenPurpose, explicit, anywhere bool, categories ...string) Thing {
	return Thing{
		Name:           name,
		Language:       language,
		Kind:           ThingKindToken,
		CategoryNames:  categories,
		IsExplicitRule: explicit,
		CanBeAnywhere:  anywhere,
		Purpose:        purpose,
	}
}

// NewCompositeThing constructs a non-leaf Thing.
func NewCompositeThing(name, language string, isFile, explicit, anywhere bool, categories ...string) Thing {
	return Thing{
		Name:           name,
		Language:       language,
		Kind:           ThingKindComposite,
		CategoryNames:  categories,
		IsExplicitRule: explicit,
		CanBeAnywhere:  anywhere,
		IsFile:         isFile,
	}
}

// ConnectionClass distinguishes named Direct connections from ordered,
// unnamed Positional connections.
type ConnectionClass string

const (
	ConnectionClassDirect     ConnectionClass = "DIRECT"
	ConnectionClassPositional ConnectionClass = "POSITIONAL"
)

// Cardinality is derived from (RequiresPresence, AllowsMultiple).
type Cardinality string

const (
	CardinalityZeroOrOne  Cardinality = "ZERO_OR_ONE"
	CardinalityZeroOrMany Cardinality = "ZERO_OR_MANY"
	CardinalityOnlyOne    Cardinality = "ONLY_ONE"
	CardinalityOneOrMany  Cardinality = "ONE_OR_MANY"
)

// DeriveCardinality computes the Cardinality for a connection from its
// presence/multiplicity flags.
func DeriveCardinality(requiresPresence, allowsMultiple bool) Cardinality {
	switch {
	case requiresPresence && allowsMultiple:
		return CardinalityOneOrMany
	case requiresPresence && !allowsMultiple:
		return CardinalityOnlyOne
	case !requiresPresence && allowsMultiple:
		return CardinalityZeroOrMany
	default:
		return CardinalityZeroOrOne
	}
}

// Connection is a directed edge from a parent CompositeThing to child
// target(s).
type Connection struct {
	Class            ConnectionClass
	SourceThing      string
	TargetThingNames []string // may mix concrete Thing names and Category names
	AllowsMultiple   bool
	RequiresPresence bool
	Language         string

	// DirectConnection-only: the named semantic function this edge plays
	// (e.g. "condition", "body"). Always non-empty for a DirectConnection
	// (spec §8 invariant 6).
	Role string
}

// Cardinality derives this connection's cardinality from its flags.
func (c Connection) Cardinality() Cardinality {
	return DeriveCardinality(c.RequiresPresence, c.AllowsMultiple)
}

// NewDirectConnection constructs a named Direct connection. role must be
// non-empty.
func NewDirectConnection(source, role, language string, requiresPresence, allowsMultiple bool, targets ...string) Connection {
	return Connection{
		Class:            ConnectionClassDirect,
		SourceThing:      source,
		TargetThingNames: targets,
		AllowsMultiple:   allowsMultiple,
		RequiresPresence: requiresPresence,
		Language:         language,
		Role:             role,
	}
}

// NewPositionalConnection constructs an ordered, unnamed Positional
// connection.
func NewPositionalConnection(source, language string, requiresPresence, allowsMultiple bool, targets ...string) Connection {
	return Connection{
		Class:            ConnectionClassPositional,
		SourceThing:      source,
		TargetThingNames: targets,
		AllowsMultiple:   allowsMultiple,
		RequiresPresence: requiresPresence,
		Language:         language,
	}
}
