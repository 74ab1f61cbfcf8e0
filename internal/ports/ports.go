// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the application to remain independent of specific
// implementations like the filesystem, SQLite, or the external compressor binary.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/calltrail/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.calltrail/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Redactor masks credential-shaped substrings in text prior to persistence.
// Implementations must be pure: no I/O, deterministic output.
type Redactor interface {
	// Redact returns the masked text and whether anything was replaced.
	Redact(text string, extraSecrets []string) (string, bool)
	// RedactMessages masks every message's content in place and reports
	// whether any replacement happened.
	RedactMessages(msgs []domain.Message, extraSecrets []string) bool
}

// CallRecorder persists one exchange as a durable, immutable record file.
// Failures are reported in the result, never raised as panics.
type CallRecorder interface {
	Record(exchange domain.CallExchange) domain.RecordResult
}

// Archiver relocates aged record files into date buckets and compacts each
// non-current bucket into one solid archive. Safe to invoke repeatedly.
type Archiver interface {
	Run(targetDir string, now time.Time) domain.ArchiveRun
}

// Compressor produces one solid archive at destPath from inputPath. The
// working directory is set so relative input paths stay stable.
type Compressor interface {
	Compress(ctx context.Context, workDir, inputPath, destPath string) error
}

// RunJournal appends and reads archive-run summaries. Journal failures are
// best-effort and must never fail the run they describe.
type RunJournal interface {
	Append(run domain.ArchiveRun) error
	Runs(limit int) ([]domain.ArchiveRun, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
