package grammar

import "regexp"

// Semantic classification tags, spec §4.1. Each tag carries an
// ImportanceScores profile used by the query pipeline's rescoring
// stage (internal/query).
const (
	TagDefinitionType  = "DEFINITION_TYPE"
	TagDefinitionFunc  = "DEFINITION_FUNCTION"
	TagFlowBranching   = "FLOW_BRANCHING"
	TagFlowLoop        = "FLOW_LOOP"
	TagSyntaxIdentifier = "SYNTAX_IDENTIFIER"
	TagBoundaryModule  = "BOUNDARY_MODULE"
	TagErrorHandling   = "ERROR_HANDLING"
)

// classRule pairs a compiled pattern with the tags it contributes.
type classRule struct {
	pattern *regexp.Regexp
	tags    []string
}

// languageTierRules are tier-1 rules: language-specific regexes over a
// Thing's name, checked before the generic cross-language tier. Keyed by
// language.
var languageTierRules = map[string][]classRule{
	"go": {
		{regexp.MustCompile(`^type_declaration$|^type_spec$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^function_declaration$|^method_declaration$|^func_literal$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_statement$|^switch_statement$|^type_switch_statement$|^select_statement$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_statement$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^package_clause$|^import_declaration$`), []string{TagBoundaryModule}},
	},
	"python": {
		{regexp.MustCompile(`^class_definition$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^function_definition$|^lambda$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_statement$|^match_statement$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_statement$|^while_statement$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^import_statement$|^import_from_statement$`), []string{TagBoundaryModule}},
		{regexp.MustCompile(`^try_statement$|^except_clause$`), []string{TagErrorHandling}},
	},
	"rust": {
		{regexp.MustCompile(`^struct_item$|^enum_item$|^trait_item$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^function_item$|^closure_expression$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_expression$|^match_expression$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_expression$|^while_expression$|^loop_expression$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^use_declaration$|^mod_item$`), []string{TagBoundaryModule}},
	},
	"java": {
		{regexp.MustCompile(`^class_declaration$|^interface_declaration$|^enum_declaration$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^method_declaration$|^constructor_declaration$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_statement$|^switch_expression$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_statement$|^while_statement$|^enhanced_for_statement$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^import_declaration$|^package_declaration$`), []string{TagBoundaryModule}},
		{regexp.MustCompile(`^try_statement$|^catch_clause$`), []string{TagErrorHandling}},
	},
	"ruby": {
		{regexp.MustCompile(`^class$|^module$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^method$|^singleton_method$|^lambda$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if$|^unless$|^case$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for$|^while$|^until$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^begin$|^rescue$`), []string{TagErrorHandling}},
	},
	"c": {
		{regexp.MustCompile(`^struct_specifier$|^enum_specifier$|^type_definition$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^function_definition$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_statement$|^switch_statement$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_statement$|^while_statement$|^do_statement$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^preproc_include$`), []string{TagBoundaryModule}},
	},
	"typescript": {
		{regexp.MustCompile(`^class_declaration$|^interface_declaration$|^type_alias_declaration$|^enum_declaration$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^function_declaration$|^method_definition$|^arrow_function$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_statement$|^switch_statement$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_statement$|^for_in_statement$|^while_statement$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^import_statement$|^export_statement$`), []string{TagBoundaryModule}},
		{regexp.MustCompile(`^try_statement$|^catch_clause$`), []string{TagErrorHandling}},
	},
	"php": {
		{regexp.MustCompile(`^class_declaration$|^interface_declaration$|^enum_declaration$`), []string{TagDefinitionType}},
		{regexp.MustCompile(`^function_definition$|^method_declaration$`), []string{TagDefinitionFunc}},
		{regexp.MustCompile(`^if_statement$|^switch_statement$`), []string{TagFlowBranching}},
		{regexp.MustCompile(`^for_statement$|^while_statement$|^foreach_statement$`), []string{TagFlowLoop}},
		{regexp.MustCompile(`^namespace_use_declaration$`), []string{TagBoundaryModule}},
		{regexp.MustCompile(`^try_statement$|^catch_clause$`), []string{TagErrorHandling}},
	},
}

// genericTierRules are tier-2 rules: cross-language regexes applied when
// no language-specific rule matched. These cover tree-sitter grammars
// that reuse common node-name conventions across languages.
var genericTierRules = []classRule{
	{regexp.MustCompile(`(?i)^identifier$|^.*_identifier$`), []string{TagSyntaxIdentifier}},
	{regexp.MustCompile(`(?i)^comment$`), nil},
	{regexp.MustCompile(`(?i)^(if|switch|match|case)(_statement|_expression)?$`), []string{TagFlowBranching}},
	{regexp.MustCompile(`(?i)^(for|while|loop)(_statement|_expression)?$`), []string{TagFlowLoop}},
	{regexp.MustCompile(`(?i)^(import|use|require|include)(_statement|_declaration)?$`), []string{TagBoundaryModule}},
}

// Classify resolves semantic tags for a Thing name. It tries the
// language-specific tier first, falls back to the generic cross-language
// tier, then applies predicate checks that look at the Thing's own
// attributes rather than just its name. An empty result is valid:
// absence of classification is not an error (spec §4.1 invariant 3).
func Classify(t Thing) []string {
	if rules, ok := languageTierRules[t.Language]; ok {
		for _, r := range rules {
			if r.pattern.MatchString(t.Name) {
				return r.tags
			}
		}
	}
	for _, r := range genericTierRules {
		if r.pattern.MatchString(t.Name) {
			return r.tags
		}
	}
	return predicateClassify(t)
}

// predicateClassify is tier 3: checks that examine the Thing's own
// attributes to disambiguate names that regex alone cannot split, e.g.
// "constructor_invocation" (a call, syntax-identifier-like) vs
// "constructor_declaration" (a definition).
func predicateClassify(t Thing) []string {
	switch {
	case t.IsComposite() && t.IsFile:
		return []string{TagBoundaryModule}
	case t.IsToken() && t.Purpose == TokenPurposeIdentifier:
		return []string{TagSyntaxIdentifier}
	default:
		return nil
	}
}
