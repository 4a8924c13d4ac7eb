package types

// IntentType classifies what an agent is trying to do with a find_code
// query, driving both search-strategy selection and semantic rescoring.
type IntentType string

const (
	IntentUnderstand IntentType = "UNDERSTAND"
	IntentImplement  IntentType = "IMPLEMENT"
	IntentDebug      IntentType = "DEBUG"
	IntentDiscover   IntentType = "DISCOVER"
)

// AgentTask is the semantic-scoring axis an IntentType maps onto
// (spec §4.2's Open Question 4, resolved in SPEC_FULL.md §4.5.1 as a
// total Go map with a designated fallback variant rather than a
// string-keyed default).
type AgentTask string

const (
	TaskComprehension AgentTask = "COMPREHENSION"
	TaskModification  AgentTask = "MODIFICATION"
	TaskDebugging     AgentTask = "DEBUGGING"
	TaskDiscovery     AgentTask = "DISCOVERY"
)

var intentToTask = map[IntentType]AgentTask{
	IntentUnderstand: TaskComprehension,
	IntentImplement:  TaskModification,
	IntentDebug:      TaskDebugging,
}

// Task returns i's AgentTask, falling back to TaskDiscovery for
// IntentDiscover and any other value outside intentToTask's domain —
// a designated enum variant, not a sentinel string, so Task is total.
func (i IntentType) Task() AgentTask {
	if t, ok := intentToTask[i]; ok {
		return t
	}
	return TaskDiscovery
}

// SearchStrategy records which retrieval path(s) a find_code call used,
// reported back in the response for observability.
type SearchStrategy string

const (
	SearchStrategyHybrid         SearchStrategy = "HYBRID_SEARCH"
	SearchStrategyDenseOnly      SearchStrategy = "DENSE_ONLY"
	SearchStrategySparseOnly     SearchStrategy = "SPARSE_ONLY"
	SearchStrategySemanticRerank SearchStrategy = "SEMANTIC_RERANK"
	SearchStrategyKeywordFallback SearchStrategy = "KEYWORD_FALLBACK"
)

// MatchType classifies how a CodeMatch was found.
type MatchType string

const (
	MatchTypeSemantic MatchType = "SEMANTIC"
)
