package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/knitli/codeweaver/internal/indexer"
)

// barProgressReporter implements indexer.ProgressReporter with
// schollz/progressbar bars, adapted from the teacher's
// internal/cli/progress.go CLIProgressReporter to the four-phase
// PhaseDiscovery/PhaseChunking/PhaseEmbedding/PhaseStorage sequence.
type barProgressReporter struct {
	quiet        bool
	fileBar      *progressbar.ProgressBar
	embeddingBar *progressbar.ProgressBar
}

func newBarProgressReporter(quiet bool) *barProgressReporter {
	return &barProgressReporter{quiet: quiet}
}

func (b *barProgressReporter) OnPhase(phase indexer.Phase, detail string) {
	if b.quiet {
		return
	}
	fmt.Printf("[%s] %s\n", phase, detail)
}

func (b *barProgressReporter) OnFileProcessed(path string) {
	if b.quiet {
		return
	}
	if b.fileBar == nil {
		b.fileBar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Indexing files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
		)
	}
	b.fileBar.Add(1)
}

func (b *barProgressReporter) OnEmbeddingStart(totalChunks int) {
	if b.quiet {
		return
	}
	b.embeddingBar = progressbar.NewOptions(totalChunks,
		progressbar.OptionSetDescription("Generating embeddings"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("emb/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
}

func (b *barProgressReporter) OnEmbeddingProgress(processedChunks int) {
	if b.quiet || b.embeddingBar == nil {
		return
	}
	b.embeddingBar.Set(processedChunks)
}

func (b *barProgressReporter) OnComplete(stats *indexer.Stats) {
	if b.quiet {
		return
	}
	fmt.Println()
	now := time.Now()
	fmt.Printf("Indexing complete: %d files, %d chunks embedded, %d chunks indexed (%.1fs, %.1f files/s)\n",
		stats.FilesProcessed, stats.ChunksEmbedded, stats.ChunksIndexed,
		stats.ElapsedTime(now).Seconds(), stats.ProcessingRate(now))
	if len(stats.FilesWithErrors) > 0 {
		fmt.Printf("%d file(s) failed: %v\n", len(stats.FilesWithErrors), stats.FilesWithErrors)
	}
}
