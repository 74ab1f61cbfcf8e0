// Package archive runs the aging/compaction pass and journals its outcome.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/ports"
)

// Service wraps the archiver with config resolution and run journaling.
// The archiver itself is disk- and CPU-bound; callers invoke this once per
// process start, never on a latency-sensitive path.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Archiver       ports.Archiver
	Journal        ports.RunJournal
	Logger         ports.Logger
}

// Run sweeps and compacts targetDir (the configured archive dir when
// empty). The pass itself never fails; per-item failures are counted in
// the returned summary.
func (s *Service) Run(ctx context.Context, targetDir string, now time.Time) (domain.ArchiveRun, error) {
	if s.ConfigProvider == nil || s.Archiver == nil || s.Logger == nil {
		return domain.ArchiveRun{}, errors.New("archive.Service dependencies not satisfied")
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.ArchiveRun{}, fmt.Errorf("load config: %w", err)
	}
	if targetDir == "" {
		targetDir = cfg.Archive.Dir
	}
	if now.IsZero() {
		now = time.Now()
	}

	run := s.Archiver.Run(targetDir, now)

	if cfg.Journal.On() && s.Journal != nil {
		if err := s.Journal.Append(run); err != nil {
			// Journaling is best-effort; the run's outcome stands.
			s.Logger.Warn("journal append failed", map[string]interface{}{"error": err.Error()})
		}
	}

	s.Logger.Info("archive pass finished", map[string]interface{}{
		"dir":      targetDir,
		"swept":    run.SweptFiles,
		"archives": run.ArchivesCreated,
		"failures": run.Failures,
	})
	return run, nil
}
