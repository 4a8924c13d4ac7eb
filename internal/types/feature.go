package types

// Feature is a bit-flag identifying a capability the server advertises.
type Feature uint32

const (
	FeatureFileDiscovery Feature = 1 << iota
	FeatureVectorIndexing
	FeatureSparseIndexing
	FeatureBasicSearch
	FeatureHybridSearch
	FeatureReranking
	FeatureAgent
)

// featureDeps is the static dependency closure table: each flag lists
// the flags it directly requires. ResolveAllDependencies below computes
// the full transitive closure.
var featureDeps = map[Feature]Feature{
	FeatureHybridSearch: FeatureSparseIndexing | FeatureVectorIndexing | FeatureBasicSearch,
	FeatureReranking:    FeatureBasicSearch,
	FeatureBasicSearch:  FeatureVectorIndexing,
}

// ResolveAllDependencies returns the transitive closure of f's direct
// dependencies, including f itself. Applying it twice yields the same
// result (idempotent closure, invariant 5 in spec §8).
func (f Feature) ResolveAllDependencies() Feature {
	resolved := f
	for {
		next := resolved
		for flag := Feature(1); flag != 0; flag <<= 1 {
			if resolved&flag != 0 {
				next |= featureDeps[flag]
			}
		}
		if next == resolved {
			return resolved
		}
		resolved = next
	}
}

// MissingDependencies returns the dependencies of f that are not present
// in the given enabled set.
func (f Feature) MissingDependencies(enabled Feature) Feature {
	required := f.ResolveAllDependencies()
	return required &^ enabled
}

// ValidateDependencies reports whether enabled satisfies all of f's
// transitive dependencies.
func (f Feature) ValidateDependencies(enabled Feature) bool {
	return f.MissingDependencies(enabled) == 0
}

// MinimalSetFor returns the smallest feature set (as a single bit-flag
// union) that satisfies every flag passed in, including their transitive
// dependencies.
func MinimalSetFor(flags ...Feature) Feature {
	var all Feature
	for _, f := range flags {
		all |= f
	}
	return all.ResolveAllDependencies()
}

// Has reports whether f includes every bit in sub.
func (f Feature) Has(sub Feature) bool {
	return f&sub == sub
}
