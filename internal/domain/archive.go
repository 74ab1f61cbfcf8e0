package domain

import "time"

// DateKeySource tags how a swept file's calendar date was determined.
type DateKeySource int

const (
	// DateFromModernName means the current filename timestamp convention matched.
	DateFromModernName DateKeySource = iota
	// DateFromLegacyName means an older filename convention matched.
	DateFromLegacyName
	// DateFromModTime means no convention matched and the file's
	// modification time decided the date.
	DateFromModTime
)

func (s DateKeySource) String() string {
	switch s {
	case DateFromModernName:
		return "modern-name"
	case DateFromLegacyName:
		return "legacy-name"
	default:
		return "mod-time"
	}
}

// DateKey is the resolved calendar date for one swept file, tagged with how
// it was resolved.
type DateKey struct {
	Source DateKeySource
	Date   time.Time
}

// FolderName returns the date-bucket directory name for this key.
func (k DateKey) FolderName() string {
	return k.Date.Format(DateFolderLayout)
}

// ArchiveRun summarizes one sweep+compact pass.
type ArchiveRun struct {
	StartedAt       time.Time
	SweptFiles      int
	BucketsPending  int
	ArchivesCreated int
	Failures        int
	DurationMS      int64
}
