package types

import "time"

// FileEntry is the manifest record for a single indexed file.
type FileEntry struct {
	ContentHash        string   `json:"content_hash"`
	ChunkIDs           []string `json:"chunk_ids"`
	DenseProvider      string   `json:"dense_embedding_provider"`
	DenseModel         string   `json:"dense_embedding_model"`
	SparseProvider     string   `json:"sparse_embedding_provider"`
	SparseModel        string   `json:"sparse_embedding_model"`
	HasDenseEmbedding  bool     `json:"has_dense_embeddings"`
	HasSparseEmbedding bool     `json:"has_sparse_embeddings"`
	ChunkCount         int      `json:"chunk_count"`
}

// IndexFileManifest is the persisted mapping from relative path to
// FileEntry, serialized as a single JSON document (spec §6.2).
type IndexFileManifest struct {
	SchemaVersion int                  `json:"schema_version"`
	ProjectPath   string               `json:"project_path"`
	TotalFiles    int                  `json:"total_files"`
	TotalChunks   int                  `json:"total_chunks"`
	Files         map[string]FileEntry `json:"files"`
}

// NewIndexFileManifest returns an empty manifest for projectPath.
func NewIndexFileManifest(projectPath string) *IndexFileManifest {
	return &IndexFileManifest{
		SchemaVersion: 1,
		ProjectPath:   projectPath,
		Files:         make(map[string]FileEntry),
	}
}

// Recompute updates TotalFiles/TotalChunks from the current Files map.
func (m *IndexFileManifest) Recompute() {
	m.TotalFiles = len(m.Files)
	total := 0
	for _, e := range m.Files {
		total += e.ChunkCount
	}
	m.TotalChunks = total
}

// IndexingCheckpoint records incremental-indexing progress so a run can
// resume after a restart (spec §3, §4.4.6).
type IndexingCheckpoint struct {
	ProjectPath        string    `json:"project_path"`
	SettingsHash       string    `json:"settings_hash"`
	FilesDiscovered    int       `json:"files_discovered"`
	FilesEmbedded      int       `json:"files_embedded"`
	FilesIndexed       int       `json:"files_indexed"`
	ChunksCreated      int       `json:"chunks_created"`
	ChunksEmbedded     int       `json:"chunks_embedded"`
	ChunksIndexed      int       `json:"chunks_indexed"`
	FilesWithErrors    []string  `json:"files_with_errors"`
	HasFileManifest    bool      `json:"has_file_manifest"`
	ManifestFileCount  int       `json:"manifest_file_count"`
	Timestamp          time.Time `json:"timestamp"`
}
