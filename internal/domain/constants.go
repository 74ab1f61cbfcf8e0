package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// RecordFilePermissions is the permission for record files (rw-r--r--)
	RecordFilePermissions = 0o644
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Record and archive naming conventions
const (
	// DefaultRecordNamespace prefixes every record filename
	DefaultRecordNamespace = "ai-call"
	// RecordExtension is the record file extension
	RecordExtension = ".txt"
	// ArchiveNamePrefix prefixes every day archive
	ArchiveNamePrefix = "ai-calls_"
	// ArchiveExtension is the compressed archive extension
	ArchiveExtension = ".7z"
	// DateFolderLayout names date-bucket directories
	DateFolderLayout = "2006-01-02"
	// CompactTimestampLayout is the UTC timestamp embedded in record filenames
	CompactTimestampLayout = "20060102-150405"
	// TempMarker appears in in-flight temp filenames; the sweep skips them
	TempMarker = ".tmp-"
	// PartialMarker appears in degraded leftover files; the sweep skips them
	PartialMarker = ".partial-"
	// JournalFileName is the run journal kept inside the archive dir.
	// Dot-prefixed so the sweep leaves it (and its -wal/-shm siblings) alone.
	JournalFileName = ".calltrail-journal.db"
)

// Retry and bound constants
const (
	// DefaultRenameAttempts bounds atomic rename retries
	DefaultRenameAttempts = 5
	// RenameBackoffStep is multiplied by the attempt number between retries
	RenameBackoffStep = 200 * time.Millisecond
	// MaxNameCollisionAttempts bounds the _2, _3, ... destination suffixes
	MaxNameCollisionAttempts = 99
	// MaxArchiveNameAttempts bounds the _2, _3, ... archive suffixes
	MaxArchiveNameAttempts = 99
	// MaxFenceLength bounds fence growth before switching delimiter family
	MaxFenceLength = 12
	// SanitizedComponentMaxLen caps provider/model filename components
	SanitizedComponentMaxLen = 24
)

// Defaults
const (
	// DefaultCacheTTL is how long resolved tool paths are cached
	DefaultCacheTTL = 10 * time.Minute
	// DefaultJournalRunLimit is the default number of journal rows to display
	DefaultJournalRunLimit = 10
	// TimestampFormat is the standard timestamp format for record headers
	TimestampFormat = time.RFC3339
)
