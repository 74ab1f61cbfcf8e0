// Package atomicfile provides the durable single-file write primitive:
// write-to-temp, fsync, atomic rename, bounded retry, partial-file fallback.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/calltrail/internal/domain"
)

// WriteResult reports the outcome of one atomic write. On success Path is
// the final path; on degraded failure Path is the .partial- sibling that
// still holds the written bytes.
type WriteResult struct {
	OK     bool
	Path   string
	Reason string
}

// Writer performs atomic writes with bounded rename retries.
type Writer struct {
	// Attempts bounds rename retries. Zero means domain.DefaultRenameAttempts.
	Attempts int
	// Backoff is multiplied by the attempt number between retries.
	// Zero means domain.RenameBackoffStep.
	Backoff time.Duration
}

// NewWriter returns a Writer with the default retry policy.
func NewWriter() *Writer {
	return &Writer{
		Attempts: domain.DefaultRenameAttempts,
		Backoff:  domain.RenameBackoffStep,
	}
}

// Write durably writes contents to path. The temp sibling lives in the
// target's parent directory so the final rename never crosses filesystems.
func (w *Writer) Write(path string, contents []byte) WriteResult {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return WriteResult{Reason: fmt.Sprintf("create parent dir: %v", err)}
	}

	tmp := TempSibling(path)
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, domain.RecordFilePermissions)
	if err != nil {
		return WriteResult{Reason: fmt.Sprintf("open temp file: %v", err)}
	}
	if _, err := file.Write(contents); err != nil {
		file.Close()
		os.Remove(tmp)
		return WriteResult{Reason: fmt.Sprintf("write temp file: %v", err)}
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmp)
		return WriteResult{Reason: fmt.Sprintf("sync temp file: %v", err)}
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return WriteResult{Reason: fmt.Sprintf("close temp file: %v", err)}
	}

	return w.Promote(tmp, path)
}

// Promote renames tmp to final, retrying with linear backoff. On exhaustion
// the temp file is renamed to a .partial- sibling of the target instead of
// being deleted, so written bytes are never silently lost.
func (w *Writer) Promote(tmp, final string) WriteResult {
	attempts := w.Attempts
	if attempts <= 0 {
		attempts = domain.DefaultRenameAttempts
	}
	backoff := w.Backoff
	if backoff <= 0 {
		backoff = domain.RenameBackoffStep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = os.Rename(tmp, final); lastErr == nil {
			return WriteResult{OK: true, Path: final}
		}
		if attempt < attempts {
			time.Sleep(backoff * time.Duration(attempt))
		}
	}

	partial := final + domain.PartialMarker + time.Now().UTC().Format("20060102150405")
	if err := os.Rename(tmp, partial); err != nil {
		return WriteResult{
			Path:   tmp,
			Reason: fmt.Sprintf("rename to %s failed after %d attempts (%v); temp left at %s", final, attempts, lastErr, tmp),
		}
	}
	return WriteResult{
		Path:   partial,
		Reason: fmt.Sprintf("rename to %s failed after %d attempts (%v); bytes kept at %s", final, attempts, lastErr, partial),
	}
}

// TempSibling returns a collision-free temp path next to the target.
func TempSibling(path string) string {
	return fmt.Sprintf("%s%s%d-%s",
		path,
		domain.TempMarker,
		time.Now().UnixMilli(),
		uuid.NewString()[:8],
	)
}
