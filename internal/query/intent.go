package query

import (
	"strings"

	"github.com/knitli/codeweaver/internal/types"
)

// intentKeywords maps each IntentType to the lowercase words/phrases
// whose presence in a query is evidence for that intent. original_source
// did not ship the Python intent classifier this was distilled from (only
// its caller, find_code.py, was retrieved) — this table is a from-scratch
// heuristic, not a port, documented as such.
var intentKeywords = map[types.IntentType][]string{
	types.IntentDebug: {
		"bug", "error", "fix", "crash", "fail", "broken", "exception",
		"panic", "traceback", "stack trace", "why is", "why does", "not working",
	},
	types.IntentImplement: {
		"implement", "add", "create", "build", "write a", "new feature",
		"how do i add", "how to add", "support for",
	},
	types.IntentUnderstand: {
		"understand", "explain", "how does", "what is", "what does",
		"walk me through", "overview of", "how it works",
	},
	types.IntentDiscover: {
		"find", "where is", "where are", "search for", "locate", "list all",
	},
}

// detectionConfidence is the confidence assigned to a keyword-matched
// intent. It is fixed rather than scaled by match count: one matched
// keyword is as strong a signal as several from the same bucket.
const detectionConfidence = float32(0.75)

// defaultConfidence is used when no bucket matches; IntentDiscover is
// the fallback intent, mirroring AgentTask's designated-fallback pattern.
const defaultConfidence = float32(0.3)

// DetectIntent classifies a query's IntentType with a confidence in
// [0,1]. An explicit intent short-circuits detection with confidence
// 1.0 (spec §4.5 stage 1).
func DetectIntent(query string, explicit *types.IntentType) (types.IntentType, float32) {
	if explicit != nil {
		return *explicit, 1.0
	}

	lower := strings.ToLower(query)
	for _, intent := range []types.IntentType{types.IntentDebug, types.IntentImplement, types.IntentUnderstand, types.IntentDiscover} {
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(lower, kw) {
				return intent, detectionConfidence
			}
		}
	}
	return types.IntentDiscover, defaultConfidence
}
