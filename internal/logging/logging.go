// Package logging sets up CodeWeaver's structured logger, promoting the
// teacher's scattered log.Printf calls (internal/mcp/server.go,
// searcher_coordinator.go, loader.go) to a shared logrus.Logger with the
// fields those call sites already convey as free text: phase, file_path,
// error_type.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields are the structured keys CodeWeaver's call sites attach.
const (
	FieldPhase     = "phase"
	FieldFilePath  = "file_path"
	FieldErrorType = "error_type"
)

// New builds a logrus.Logger writing JSON lines to w (stderr by
// default), matching the MCP stdio transport's requirement that nothing
// but the protocol itself touch stdout.
func New(level logrus.Level, w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}

// WithPhase returns an entry tagged with the indexing phase in progress,
// matching internal/indexer.Phase's string values.
func WithPhase(l *logrus.Logger, phase string) *logrus.Entry {
	return l.WithField(FieldPhase, phase)
}

// WithFile returns an entry tagged with the file a log line concerns,
// the structured replacement for the teacher's
// "Warning: skipping malformed chunk file %s" string interpolation.
func WithFile(l *logrus.Logger, path string) *logrus.Entry {
	return l.WithField(FieldFilePath, path)
}

// WithError returns an entry tagged with both the error and a short
// classification of it (e.g. "provider", "io", "parse"), letting log
// aggregation group failures by kind without parsing message text.
func WithError(l *logrus.Logger, err error, errorType string) *logrus.Entry {
	return l.WithError(err).WithField(FieldErrorType, errorType)
}
