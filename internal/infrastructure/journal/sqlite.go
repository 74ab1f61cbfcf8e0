// Package journal persists archive-run summaries in a SQLite database.
// It records runs only; record files themselves stay flat on disk and are
// never indexed here.
package journal

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/ports"
)

// SQLiteJournal implements ports.RunJournal.
type SQLiteJournal struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open creates (or opens) the journal database at path. Open never fails
// hard: with an unusable database the journal degrades to a no-op whose
// Append reports the problem.
func Open(path string) *SQLiteJournal {
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteJournal{path: path}
	}
	j := &SQLiteJournal{db: db, path: path}
	if err := j.init(); err != nil {
		db.Close()
		return &SQLiteJournal{path: path}
	}
	return j
}

func (j *SQLiteJournal) init() error {
	_, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS archive_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT,
		swept_files INTEGER,
		buckets_pending INTEGER,
		archives_created INTEGER,
		failures INTEGER,
		duration_ms INTEGER
	);`)
	return err
}

// Append inserts one run summary.
func (j *SQLiteJournal) Append(run domain.ArchiveRun) error {
	if j.db == nil {
		return os.ErrInvalid
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(`INSERT INTO archive_runs
		(started_at, swept_files, buckets_pending, archives_created, failures, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.SweptFiles,
		run.BucketsPending,
		run.ArchivesCreated,
		run.Failures,
		run.DurationMS,
	)
	return err
}

// Runs returns the most recent run summaries, newest first.
func (j *SQLiteJournal) Runs(limit int) ([]domain.ArchiveRun, error) {
	if j.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = domain.DefaultJournalRunLimit
	}
	rows, err := j.db.Query(`SELECT started_at, swept_files, buckets_pending,
		archives_created, failures, duration_ms
		FROM archive_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ArchiveRun
	for rows.Next() {
		var run domain.ArchiveRun
		var started string
		if err := rows.Scan(&started, &run.SweptFiles, &run.BucketsPending,
			&run.ArchivesCreated, &run.Failures, &run.DurationMS); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the database handle.
func (j *SQLiteJournal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the backing database path.
func (j *SQLiteJournal) Path() string {
	return j.path
}

var _ ports.RunJournal = (*SQLiteJournal)(nil)
