package indexer

import (
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/knitli/codeweaver/internal/store"
	"github.com/knitli/codeweaver/internal/types"
)

// CheckpointSaver decides when a checkpoint save is due (every 100 files
// / every 5 minutes / shutdown requested / end of run) and performs the
// save through internal/store. Grounded on internal/cache/metadata.go's
// atomic Save plus internal/mcp/server.go's signal.Notify
// graceful-shutdown pattern, generalized from a single SIGTERM/SIGINT
// handler guarding server shutdown to one guarding indexing batch
// boundaries.
type CheckpointSaver struct {
	dir            string
	filesSinceSave int32
	lastSave       time.Time
	shutdown       int32 // atomic flag, 1 once a signal has been received
	sigCh          chan os.Signal
}

// NewCheckpointSaver installs a SIGINT/SIGTERM handler chained after any
// previously registered one (signal.Notify's channel semantics deliver
// to every registered channel, so installing ours never displaces an
// existing handler).
func NewCheckpointSaver(dir string, now time.Time) *CheckpointSaver {
	cs := &CheckpointSaver{dir: dir, lastSave: now}
	cs.sigCh = make(chan os.Signal, 1)
	signal.Notify(cs.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-cs.sigCh
		atomic.StoreInt32(&cs.shutdown, 1)
	}()
	return cs
}

// Stop releases the signal handler.
func (cs *CheckpointSaver) Stop() {
	signal.Stop(cs.sigCh)
}

// ShutdownRequested reports whether SIGINT/SIGTERM has been received.
func (cs *CheckpointSaver) ShutdownRequested() bool {
	return atomic.LoadInt32(&cs.shutdown) == 1
}

// OnFileProcessed increments the since-last-save file counter; call at
// each processed file.
func (cs *CheckpointSaver) OnFileProcessed() {
	atomic.AddInt32(&cs.filesSinceSave, 1)
}

// Due reports whether a save trigger has fired: 100 files processed
// since the last save, 5 minutes elapsed, or shutdown requested.
func (cs *CheckpointSaver) Due(now time.Time) bool {
	if cs.ShutdownRequested() {
		return true
	}
	if atomic.LoadInt32(&cs.filesSinceSave) >= 100 {
		return true
	}
	return now.Sub(cs.lastSave) >= 5*time.Minute
}

// Save persists manifest and checkpoint atomically and resets the save
// triggers. Call at a batch boundary once Due reports true, and
// unconditionally at end of run.
func (cs *CheckpointSaver) Save(manifest *types.IndexFileManifest, checkpoint *types.IndexingCheckpoint, now time.Time) error {
	manifest.Recompute()
	if err := store.SaveManifest(cs.dir, manifest); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexing, err)
	}
	checkpoint.Timestamp = now
	checkpoint.HasFileManifest = true
	checkpoint.ManifestFileCount = manifest.TotalFiles
	if err := store.SaveCheckpoint(cs.dir, checkpoint); err != nil {
		return fmt.Errorf("%w: %v", types.ErrIndexing, err)
	}
	atomic.StoreInt32(&cs.filesSinceSave, 0)
	cs.lastSave = now
	return nil
}
