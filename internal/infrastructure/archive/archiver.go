// Package archive ages and compacts the record directory: loose files are
// relocated into per-day folders, and every non-current day folder is
// compacted into one solid archive by an external compressor.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/pkg/atomicfile"
	"github.com/doeshing/calltrail/internal/ports"
)

// Archiver implements the ports.Archiver port as a two-phase sweep.
type Archiver struct {
	Compressor ports.Compressor
	Writer     *atomicfile.Writer
	Logger     ports.Logger
}

// New builds an Archiver around the given compressor.
func New(compressor ports.Compressor, log ports.Logger) *Archiver {
	return &Archiver{
		Compressor: compressor,
		Writer:     atomicfile.NewWriter(),
		Logger:     log,
	}
}

// Run sweeps targetDir once and compacts every pending day bucket. It is
// idempotent: a second run with no new files is a no-op. Failures are
// contained per item; the pass always continues to the next one.
func (a *Archiver) Run(targetDir string, now time.Time) domain.ArchiveRun {
	started := time.Now()
	run := domain.ArchiveRun{StartedAt: now}

	// The compressor subprocess runs with its cwd inside targetDir, so every
	// path handed to it must not depend on the parent's working directory.
	if abs, err := filepath.Abs(targetDir); err == nil {
		targetDir = abs
	}

	entries, err := os.ReadDir(targetDir)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing recorded yet; not an error.
			return run
		}
		a.logError("list target dir", err, map[string]interface{}{"dir": targetDir})
		run.Failures++
		return run
	}

	today := now.UTC().Format(domain.DateFolderLayout)
	pending := map[string]struct{}{}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if isDateFolder(name) && name != today {
				pending[name] = struct{}{}
			}
			continue
		}
		if skipFile(name) {
			continue
		}

		key := resolveDateKey(e, now)
		folder := key.FolderName()
		if folder == today {
			continue
		}
		if a.moveIntoBucket(targetDir, name, folder) {
			pending[folder] = struct{}{}
			run.SweptFiles++
		} else {
			run.Failures++
		}
	}

	run.BucketsPending = len(pending)

	dates := make([]string, 0, len(pending))
	for date := range pending {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		if err := a.compact(targetDir, date); err != nil {
			a.logError("compact bucket", err, map[string]interface{}{"date": date})
			run.Failures++
			continue
		}
		run.ArchivesCreated++
	}

	run.DurationMS = time.Since(started).Milliseconds()
	return run
}

// skipFile filters hidden files, finished archives and in-flight writes.
func skipFile(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, domain.ArchiveExtension) ||
		strings.Contains(name, domain.TempMarker) ||
		strings.Contains(name, domain.PartialMarker)
}

// moveIntoBucket relocates one loose file into its day folder, resolving
// destination name collisions.
func (a *Archiver) moveIntoBucket(targetDir, name, folder string) bool {
	bucketDir := filepath.Join(targetDir, folder)
	if err := os.MkdirAll(bucketDir, domain.DirectoryPermissions); err != nil {
		a.logError("create bucket dir", err, map[string]interface{}{"dir": bucketDir})
		return false
	}
	dest, err := collisionFreePath(bucketDir, name)
	if err != nil {
		a.logError("resolve destination name", err, map[string]interface{}{"name": name})
		return false
	}
	if err := os.Rename(filepath.Join(targetDir, name), dest); err != nil {
		a.logError("move into bucket", err, map[string]interface{}{"name": name})
		return false
	}
	return true
}

// collisionFreePath appends _2, _3, ... before the extension up to a bound,
// then a timestamp suffix as a last resort.
func collisionFreePath(dir, name string) (string, error) {
	dest := filepath.Join(dir, name)
	if !exists(dest) {
		return dest, nil
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; i <= domain.MaxNameCollisionAttempts; i++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
		if !exists(dest) {
			return dest, nil
		}
	}
	dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, time.Now().UnixNano(), ext))
	if exists(dest) {
		return "", fmt.Errorf("no free name for %s in %s", name, dir)
	}
	return dest, nil
}

// compact turns one day bucket into a solid archive. The compressor writes
// to a temp path which is promoted with the atomic rename discipline; the
// bucket is removed only after the archive has been durably created. There
// is deliberately no fallback container format: on any failure the bucket
// and its files stay untouched for the next run.
func (a *Archiver) compact(targetDir, date string) error {
	bucket := filepath.Join(targetDir, date)
	dest, err := archivePath(targetDir, date)
	if err != nil {
		return err
	}

	tmp := atomicfile.TempSibling(dest)
	if err := a.Compressor.Compress(context.Background(), targetDir, date, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("compress %s: %w", date, err)
	}
	info, err := os.Stat(tmp)
	if err != nil || info.Size() == 0 {
		os.Remove(tmp)
		return fmt.Errorf("compressor produced no archive for %s", date)
	}

	writer := a.Writer
	if writer == nil {
		writer = atomicfile.NewWriter()
	}
	if res := writer.Promote(tmp, dest); !res.OK {
		return fmt.Errorf("promote archive for %s: %s", date, res.Reason)
	}

	if err := os.RemoveAll(bucket); err != nil {
		return fmt.Errorf("remove compacted bucket %s: %w", date, err)
	}
	a.logInfo("bucket compacted", map[string]interface{}{
		"date":    date,
		"archive": filepath.Base(dest),
	})
	return nil
}

// archivePath picks ai-calls_<date>.7z, disambiguating with _2, _3, ...
// when an archive of that name already exists.
func archivePath(dir, date string) (string, error) {
	base := domain.ArchiveNamePrefix + date
	dest := filepath.Join(dir, base+domain.ArchiveExtension)
	if !exists(dest) {
		return dest, nil
	}
	for i := 2; i <= domain.MaxArchiveNameAttempts; i++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, domain.ArchiveExtension))
		if !exists(dest) {
			return dest, nil
		}
	}
	return "", fmt.Errorf("no free archive name for %s after %d attempts", date, domain.MaxArchiveNameAttempts)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (a *Archiver) logError(msg string, err error, fields map[string]interface{}) {
	if a.Logger != nil {
		a.Logger.Error(msg, err, fields)
	}
}

func (a *Archiver) logInfo(msg string, fields map[string]interface{}) {
	if a.Logger != nil {
		a.Logger.Info(msg, fields)
	}
}

var _ ports.Archiver = (*Archiver)(nil)
