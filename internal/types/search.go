package types

// SearchResult is a single candidate returned by the vector store and
// progressively enriched through the query pipeline's reranking and
// rescoring stages.
type SearchResult struct {
	Content        CodeChunk
	Score          float32
	DenseScore     *float32
	SparseScore    *float32
	RerankScore    *float32
	RelevanceScore *float32
	FilePath       string
}

// EffectiveScore returns RelevanceScore if set, else Score — used by the
// sort/limit stage, which must fall back to the base score when no
// rescoring was applied.
func (r SearchResult) EffectiveScore() float32 {
	if r.RelevanceScore != nil {
		return *r.RelevanceScore
	}
	return r.Score
}

// FindCodeRequest is one find_code call's input.
type FindCodeRequest struct {
	Query          string      `json:"query"`
	Intent         *IntentType `json:"intent,omitempty"` // nil means auto-detect
	TokenLimit     uint32      `json:"token_limit"`      // 1..200_000, default 10_000
	IncludeTests   bool        `json:"include_tests"`
	FocusLanguages []string    `json:"focus_languages,omitempty"` // empty means all
	MaxResults     uint32      `json:"max_results"`               // 1..500, default 50
}

// DefaultFindCodeRequest fills in a request's zero-valued optional
// fields with spec defaults. Query, Intent, and FocusLanguages are left
// to the caller.
func DefaultFindCodeRequest(query string) FindCodeRequest {
	return FindCodeRequest{
		Query:      query,
		TokenLimit: 10_000,
		MaxResults: 50,
	}
}

// CodeMatch is one packed result in a FindCodeResponseSummary.
type CodeMatch struct {
	File           DiscoveredFile `json:"file"`
	Content        string         `json:"content"`
	Span           Span           `json:"span"`
	RelevanceScore float32        `json:"relevance_score"`
	MatchType      MatchType      `json:"match_type"`
	RelatedSymbols []string       `json:"related_symbols,omitempty"`
}

// FindCodeResponseSummary is find_code's response payload.
type FindCodeResponseSummary struct {
	Matches         []CodeMatch      `json:"matches"`
	Summary         string           `json:"summary"` // <= 1000 chars
	QueryIntent     IntentType       `json:"query_intent"`
	TotalMatches    uint32           `json:"total_matches"` // pre-limit candidate count
	TotalResults    uint32           `json:"total_results"` // returned count
	TokenCount      uint32           `json:"token_count"`   // <= TokenLimit
	ExecutionTimeMs float64          `json:"execution_time_ms"`
	SearchStrategy  []SearchStrategy `json:"search_strategy"`
	LanguagesFound  []string         `json:"languages_found"`
}
