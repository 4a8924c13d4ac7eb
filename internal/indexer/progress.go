package indexer

import "time"

// Phase names an indexing phase boundary at which progress is reported
// (spec §4.4.7).
type Phase string

const (
	PhaseDiscovery Phase = "discovery"
	PhaseChunking  Phase = "chunking"
	PhaseEmbedding Phase = "embedding"
	PhaseStorage   Phase = "storage"
)

// ProgressReporter receives callbacks at indexing phase boundaries.
// Implementations can display progress bars, log messages, or remain
// silent. Grounded on the teacher's internal/indexer/progress.go
// ProgressReporter, generalized from a fixed discovery/file/embedding
// callback sequence to the spec's four named phases plus completion.
type ProgressReporter interface {
	OnPhase(phase Phase, detail string)
	OnFileProcessed(path string)
	OnEmbeddingStart(totalChunks int)
	OnEmbeddingProgress(processedChunks int)
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a ProgressReporter that does nothing, used
// when no reporter is supplied (PrimeIndex and NewPipeline fall back to
// it on nil).
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnPhase(Phase, string)       {}
func (NoOpProgressReporter) OnFileProcessed(string)      {}
func (NoOpProgressReporter) OnEmbeddingStart(int)        {}
func (NoOpProgressReporter) OnEmbeddingProgress(int)     {}
func (NoOpProgressReporter) OnComplete(*Stats)           {}

// Stats tracks the running counters the spec requires indexing to
// maintain (files_discovered, files_processed, chunks_created,
// chunks_embedded, chunks_indexed, files_with_errors, start_time), plus
// the derived elapsed_time/processing_rate fields computed on read.
type Stats struct {
	StartTime        time.Time
	FilesDiscovered  int
	FilesProcessed   int
	ChunksCreated    int
	ChunksEmbedded   int
	ChunksIndexed    int
	FilesWithErrors  []string
}

// NewStats starts a fresh Stats with StartTime set to now.
func NewStats(now time.Time) *Stats {
	return &Stats{StartTime: now}
}

// ElapsedTime returns the duration since StartTime, measured against now.
func (s *Stats) ElapsedTime(now time.Time) time.Duration {
	return now.Sub(s.StartTime)
}

// ProcessingRate returns files processed per second, measured against
// now. Returns 0 if no time has elapsed yet.
func (s *Stats) ProcessingRate(now time.Time) float64 {
	elapsed := s.ElapsedTime(now).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.FilesProcessed) / elapsed
}
