// Package query implements the find_code pipeline: intent detection,
// parallel dense/sparse query embedding, search-strategy selection,
// vector search with post-filtering, score combination, reranking,
// semantic rescoring, sort/limit, and response packing.
//
// Grounded on the teacher's internal/mcp/searcher_coordinator.go (dual
// searcher coordination, parallel goroutines over independent backends,
// non-fatal per-backend failure) and internal/mcp/chromem_searcher.go
// (query embedding -> vector search -> option validation/clamping ->
// post-filter -> early-exit result shaping), generalized from "vector +
// keyword" to the spec's nine-stage dense+sparse+rerank+rescore
// pipeline.
package query

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/knitli/codeweaver/internal/providers"
	"github.com/knitli/codeweaver/internal/types"
)

// maxCandidates bounds how many results the vector store returns before
// post-filtering and reranking (spec §4.5 stage 4).
const maxCandidates = 100

// hybridDenseWeight and hybridSparseWeight are the static v0.1 score
// combination weights (spec §4.5 stage 5).
const (
	hybridDenseWeight  = 0.65
	hybridSparseWeight = 0.35
)

// semanticBoostWeight scales the per-intent semantic boost applied in
// stage 7.
const semanticBoostWeight = 0.20

// summaryMaxChars and failureSummaryChars bound the response summary and
// the truncated-error summary on a degraded response, respectively.
const (
	summaryMaxChars     = 1000
	failureSummaryChars = 500
)

// Pipeline runs find_code queries against a configured set of providers.
type Pipeline struct {
	Dense    providers.EmbeddingProvider
	Sparse   providers.SparseEmbeddingProvider
	Store    providers.VectorStoreProvider
	Reranker providers.RerankingProvider // optional

	// ConfigLanguages are excluded from a response's LanguagesFound, since
	// they name the project's own configuration/build files rather than
	// languages an agent would search for (spec §4.5 stage 9).
	ConfigLanguages []string
}

// NewPipeline builds a Pipeline. Reranker may be nil.
func NewPipeline(dense providers.EmbeddingProvider, sparse providers.SparseEmbeddingProvider, store providers.VectorStoreProvider, reranker providers.RerankingProvider, configLanguages []string) *Pipeline {
	return &Pipeline{Dense: dense, Sparse: sparse, Store: store, Reranker: reranker, ConfigLanguages: configLanguages}
}

// candidate threads a SearchResult through the scoring stages. The
// reranker's original_index back-pointer is the candidate's position in
// the slice passed to rerank.
type candidate struct {
	result types.SearchResult
}

// FindCode runs all nine stages against req. It never returns a
// caller-visible error: any unhandled failure from stage 2 onward —
// including both query embedders failing — yields a degraded
// KEYWORD_FALLBACK response with the detected intent preserved and the
// error folded into the summary text, per spec §4.5's final paragraph
// and §7's "errors are never raised to the agent through find_code".
func (p *Pipeline) FindCode(ctx context.Context, req types.FindCodeRequest) (*types.FindCodeResponseSummary, error) {
	start := time.Now()
	elapsedMs := func() float64 { return float64(time.Since(start)) / float64(time.Millisecond) }

	normalizeRequest(&req)

	// Stage 1: intent detection.
	intent, _ := DetectIntent(req.Query, req.Intent)

	// Stage 2: parallel dense/sparse query embedding. Errors here never
	// reach the agent either (spec §7: "Errors are never raised to the
	// agent through find_code"; a ValidationError such as "no embedding
	// providers configured" maps to a degraded KEYWORD_FALLBACK response).
	dense, sparse, err := p.embedQuery(ctx, req.Query)
	if err != nil {
		return degradedResponse(err, intent, elapsedMs), nil
	}

	resp, err := p.runStages(ctx, req, intent, dense, sparse)
	if err != nil {
		return degradedResponse(err, intent, elapsedMs), nil
	}
	resp.ExecutionTimeMs = elapsedMs()
	return resp, nil
}

// normalizeRequest fills in spec-default zero values (spec §6.1).
func normalizeRequest(req *types.FindCodeRequest) {
	if req.TokenLimit == 0 {
		req.TokenLimit = 10_000
	}
	if req.MaxResults == 0 {
		req.MaxResults = 50
	}
}

// embedQuery requests dense and sparse query embeddings in parallel
// (stage 2). Each batch is shaped as one row; the first row is unwrapped.
// A single provider's failure is logged and degrades to the other
// provider; both failing is a types.ErrValidation error.
func (p *Pipeline) embedQuery(ctx context.Context, query string) ([]float32, *types.SparseVec, error) {
	type denseResult struct {
		vec []float32
		err error
	}
	type sparseResult struct {
		vec *types.SparseVec
		err error
	}

	denseCh := make(chan denseResult, 1)
	sparseCh := make(chan sparseResult, 1)

	go func() {
		if p.Dense == nil {
			denseCh <- denseResult{nil, fmt.Errorf("no dense provider configured")}
			return
		}
		rows, err := p.Dense.Embed(ctx, []string{query}, true)
		if err != nil || len(rows) == 0 {
			denseCh <- denseResult{nil, fmt.Errorf("dense query embedding: %w", err)}
			return
		}
		denseCh <- denseResult{rows[0], nil}
	}()

	go func() {
		if p.Sparse == nil {
			sparseCh <- sparseResult{nil, fmt.Errorf("no sparse provider configured")}
			return
		}
		rows, err := p.Sparse.EmbedSparse(ctx, []string{query})
		if err != nil || len(rows) == 0 {
			sparseCh <- sparseResult{nil, fmt.Errorf("sparse query embedding: %w", err)}
			return
		}
		sparseCh <- sparseResult{&rows[0], nil}
	}()

	dr := <-denseCh
	sr := <-sparseCh

	if dr.err != nil && sr.err != nil {
		return nil, nil, fmt.Errorf("%w: no embedding providers configured", types.ErrValidation)
	}
	if dr.err != nil {
		log.Printf("warning: dense query embedding failed, continuing sparse-only: %v", dr.err)
	}
	if sr.err != nil {
		log.Printf("warning: sparse query embedding failed, continuing dense-only: %v", sr.err)
	}
	return dr.vec, sr.vec, nil
}

// runStages executes stages 3-9. Any error returned here triggers the
// degraded response at the FindCode call site.
func (p *Pipeline) runStages(ctx context.Context, req types.FindCodeRequest, intent types.IntentType, dense []float32, sparse *types.SparseVec) (*types.FindCodeResponseSummary, error) {
	// Stage 3: search strategy selection.
	strategy := selectStrategy(dense, sparse)

	// Stage 4: vector search + post-filter.
	results, err := p.Store.Search(ctx, dense, sparse, maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", types.ErrProvider, err)
	}
	results = postFilter(results, req)
	totalMatches := len(results)

	candidates := make([]candidate, len(results))
	for i, r := range results {
		candidates[i] = candidate{result: r}
	}

	// Stage 5: score combination (HYBRID_SEARCH only).
	if strategy == types.SearchStrategyHybrid {
		combineScores(candidates)
	}

	// Stage 6: reranking (non-fatal on failure).
	if p.Reranker != nil && len(candidates) > 0 {
		if err := p.rerank(ctx, req.Query, candidates); err != nil {
			log.Printf("warning: reranking failed, proceeding without it: %v", err)
		} else {
			strategy2 := append([]types.SearchStrategy{strategy}, types.SearchStrategySemanticRerank)
			return p.finish(candidates, req, intent, strategy2, totalMatches)
		}
	}

	return p.finish(candidates, req, intent, []types.SearchStrategy{strategy}, totalMatches)
}

// finish runs stages 7-9 and packs the response.
func (p *Pipeline) finish(candidates []candidate, req types.FindCodeRequest, intent types.IntentType, strategy []types.SearchStrategy, totalMatches int) (*types.FindCodeResponseSummary, error) {
	// Stage 7: semantic rescoring.
	rescore(candidates, intent)

	// Stage 8: sort & limit.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].result.EffectiveScore() > candidates[j].result.EffectiveScore()
	})
	if uint32(len(candidates)) > req.MaxResults {
		candidates = candidates[:req.MaxResults]
	}

	// Stage 9: response packing.
	return packResponse(candidates, req, intent, strategy, totalMatches, p.ConfigLanguages), nil
}

// selectStrategy picks the search strategy from which embeddings
// succeeded (stage 3).
func selectStrategy(dense []float32, sparse *types.SparseVec) types.SearchStrategy {
	switch {
	case len(dense) > 0 && sparse != nil:
		return types.SearchStrategyHybrid
	case len(dense) > 0:
		return types.SearchStrategyDenseOnly
	default:
		return types.SearchStrategySparseOnly
	}
}

// postFilter excludes test files (unless IncludeTests) and chunks
// outside FocusLanguages, when set (spec §4.5 stage 4).
func postFilter(results []types.SearchResult, req types.FindCodeRequest) []types.SearchResult {
	filtered := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if !req.IncludeTests && strings.Contains(strings.ToLower(r.FilePath), "test") {
			continue
		}
		if len(req.FocusLanguages) > 0 && !containsFold(req.FocusLanguages, r.Content.Language) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

// combineScores sets each candidate's Score (the pre-rescoring base
// EffectiveScore falls back to) to the hybrid weighted sum (stage 5).
func combineScores(candidates []candidate) {
	for i := range candidates {
		r := &candidates[i].result
		var dense, sparse float32
		if r.DenseScore != nil {
			dense = *r.DenseScore
		}
		if r.SparseScore != nil {
			sparse = *r.SparseScore
		}
		combined := float32(hybridDenseWeight)*dense + float32(hybridSparseWeight)*sparse
		r.Score = combined
	}
}

// rerank calls the configured RerankingProvider over each candidate's
// chunk content and writes RerankScore/Score back via original_index.
func (p *Pipeline) rerank(ctx context.Context, query string, candidates []candidate) error {
	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.result.Content.Content
	}
	reranked, err := p.Reranker.Rerank(ctx, query, docs)
	if err != nil {
		return err
	}
	for _, rr := range reranked {
		if rr.OriginalIndex < 0 || rr.OriginalIndex >= len(candidates) {
			continue
		}
		score := rr.Score
		candidates[rr.OriginalIndex].result.RerankScore = &score
		candidates[rr.OriginalIndex].result.Score = score
	}
	return nil
}

// rescore applies the per-intent semantic boost (stage 7) to every
// candidate whose chunk carries a SemanticClass with ImportanceScores.
func rescore(candidates []candidate, intent types.IntentType) {
	for i := range candidates {
		r := &candidates[i].result
		sc := r.Content.SemanticClass
		if sc == nil {
			continue
		}
		var boost float32
		switch intent {
		case types.IntentDebug:
			boost = sc.ImportanceScores.Debugging
		case types.IntentImplement:
			boost = (sc.ImportanceScores.Discovery + sc.ImportanceScores.Modification) / 2
		case types.IntentUnderstand:
			boost = sc.ImportanceScores.Comprehension
		default:
			boost = sc.ImportanceScores.Discovery
		}
		base := r.EffectiveScore()
		relevance := base * (1 + boost*semanticBoostWeight)
		r.RelevanceScore = &relevance
	}
}

// estimateTokens implements the spec's word-count-based token estimate:
// floor(1.3 * word_count).
func estimateTokens(text string) uint32 {
	words := len(strings.Fields(text))
	return uint32(math.Floor(1.3 * float64(words)))
}

// packResponse converts candidates to CodeMatch, truncates to fit
// TokenLimit, and builds the summary/languages_found fields (stage 9).
func packResponse(candidates []candidate, req types.FindCodeRequest, intent types.IntentType, strategy []types.SearchStrategy, totalMatches int, configLanguages []string) *types.FindCodeResponseSummary {
	matches := make([]types.CodeMatch, 0, len(candidates))
	var tokenCount uint32
	for _, c := range candidates {
		r := c.result
		tokens := estimateTokens(r.Content.Content)
		if tokenCount+tokens > req.TokenLimit {
			break
		}
		tokenCount += tokens
		matches = append(matches, types.CodeMatch{
			File:           types.DiscoveredFile{Path: r.FilePath, ExtKind: types.ExtKind{Language: r.Content.Language}},
			Content:        r.Content.Content,
			Span:           r.Content.LineRange,
			RelevanceScore: r.EffectiveScore(),
			MatchType:      types.MatchTypeSemantic,
		})
	}

	languages := dedupeLanguages(matches, configLanguages)

	topFiles := topFileNames(matches, 3)
	summary := fmt.Sprintf("Found %d relevant matches for %s query. Top results in: %s", totalMatches, intent, strings.Join(topFiles, ", "))
	if len(summary) > summaryMaxChars {
		summary = summary[:summaryMaxChars]
	}

	return &types.FindCodeResponseSummary{
		Matches:        matches,
		Summary:        summary,
		QueryIntent:    intent,
		TotalMatches:   uint32(totalMatches),
		TotalResults:   uint32(len(matches)),
		TokenCount:     tokenCount,
		SearchStrategy: strategy,
		LanguagesFound: languages,
	}
}

func dedupeLanguages(matches []types.CodeMatch, configLanguages []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		lang := m.File.ExtKind.Language
		if lang == "" || seen[lang] || containsFold(configLanguages, lang) {
			continue
		}
		seen[lang] = true
		out = append(out, lang)
	}
	return out
}

func topFileNames(matches []types.CodeMatch, n int) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if seen[m.File.Path] {
			continue
		}
		seen[m.File.Path] = true
		out = append(out, m.File.Path)
		if len(out) >= n {
			break
		}
	}
	return out
}

// degradedResponse builds the degraded failure response any unhandled
// stage-2+ error produces: empty counts, KEYWORD_FALLBACK strategy, the
// error's first 500 characters as the summary, and the intent detected
// (or explicitly requested) before the failing stage ran — spec §4.5's
// final paragraph and §8 Scenario A both require query_intent to survive
// a fully-degraded response.
func degradedResponse(err error, intent types.IntentType, elapsed func() float64) *types.FindCodeResponseSummary {
	msg := err.Error()
	if len(msg) > failureSummaryChars {
		msg = msg[:failureSummaryChars]
	}
	resp := &types.FindCodeResponseSummary{
		Summary:        fmt.Sprintf("Search failed: %s", msg),
		QueryIntent:    intent,
		SearchStrategy: []types.SearchStrategy{types.SearchStrategyKeywordFallback},
	}
	if elapsed != nil {
		resp.ExecutionTimeMs = elapsed()
	}
	return resp
}
