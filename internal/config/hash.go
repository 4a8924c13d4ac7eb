package config

import (
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/zeebo/blake3"
)

// indexingRelevant is the subset of Settings that affects indexing
// output (spec §6.2): provider ids/models, include/exclude patterns,
// and chunker config. CacheDir and ForceReindex are excluded since
// neither changes what gets indexed.
type indexingRelevant struct {
	Discovery DiscoverySettings `json:"discovery"`
	Chunking  ChunkingSettings  `json:"chunking"`
	Providers ProviderSettings  `json:"providers"`
}

// SettingsHash returns the BLAKE3 hex digest of a canonical
// serialization of s's indexing-relevant fields, following the
// teacher's cache/key.go hash-a-canonical-string-then-hex pattern,
// re-keyed from SHA-256 to BLAKE3 per spec §6.2's requirement. Any
// drift in the hash invalidates a persisted checkpoint (spec §4.4.6).
func SettingsHash(s *Settings) (string, error) {
	relevant := indexingRelevant{
		Discovery: s.Discovery,
		Chunking:  s.Chunking,
		Providers: s.Providers,
	}
	sortSlices(&relevant)

	data, err := json.Marshal(relevant)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// sortSlices orders glob pattern slices before marshaling so the hash
// is stable regardless of the order a config tier listed them in.
func sortSlices(r *indexingRelevant) {
	sort.Strings(r.Discovery.IncludeGlobs)
	sort.Strings(r.Discovery.ExcludeGlobs)
}
