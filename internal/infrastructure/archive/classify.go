package archive

import (
	"io/fs"
	"regexp"
	"time"

	"github.com/doeshing/calltrail/internal/domain"
)

var (
	// Current record naming: <ns>-YYYYMMDD-HHMMSS-<provider>-<model>-<unique>.txt
	modernStampRe = regexp.MustCompile(`-(\d{8})-\d{6}-`)
	// Older releases named files <ns>_YYYY-MM-DD_<rest>
	legacyStampRe = regexp.MustCompile(`_(\d{4}-\d{2}-\d{2})_`)
	// Exact YYYY-MM-DD directory names
	dateFolderRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// resolveDateKey determines the calendar day a loose file belongs to. The
// filename conventions are tried in order; modification time is the final
// fallback. Dates are resolved in UTC to match record-name timestamps.
func resolveDateKey(entry fs.DirEntry, now time.Time) domain.DateKey {
	name := entry.Name()

	if m := modernStampRe.FindStringSubmatch(name); m != nil {
		if day, err := time.ParseInLocation("20060102", m[1], time.UTC); err == nil {
			return domain.DateKey{Source: domain.DateFromModernName, Date: day}
		}
	}

	if m := legacyStampRe.FindStringSubmatch(name); m != nil {
		if day, err := time.ParseInLocation(domain.DateFolderLayout, m[1], time.UTC); err == nil {
			return domain.DateKey{Source: domain.DateFromLegacyName, Date: day}
		}
	}

	if info, err := entry.Info(); err == nil {
		return domain.DateKey{
			Source: domain.DateFromModTime,
			Date:   info.ModTime().UTC().Truncate(24 * time.Hour),
		}
	}
	// Unreadable entries count as current so they are left alone.
	return domain.DateKey{Source: domain.DateFromModTime, Date: now.UTC()}
}

// isDateFolder reports whether name is an exact YYYY-MM-DD directory name.
func isDateFolder(name string) bool {
	if !dateFolderRe.MatchString(name) {
		return false
	}
	_, err := time.Parse(domain.DateFolderLayout, name)
	return err == nil
}
