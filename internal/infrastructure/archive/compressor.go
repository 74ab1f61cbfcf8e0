package archive

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/doeshing/calltrail/internal/ports"
)

// SevenZip shells out to the standalone 7-Zip binary. Solid mode lets one
// compression stream span every record in the bucket, which pays off since
// exchanges on the same day are textually similar.
type SevenZip struct {
	Locator ExecutableLocator
}

// NewSevenZip builds the compressor adapter.
func NewSevenZip(locator ExecutableLocator) *SevenZip {
	return &SevenZip{Locator: locator}
}

// Compress implements ports.Compressor. Success is determined purely by the
// subprocess exit code; stdout and stderr are drained into buffers so the
// child can never block on a full pipe, and stderr is surfaced on failure.
func (s *SevenZip) Compress(ctx context.Context, workDir, inputPath, destPath string) error {
	exe, err := s.Locator.Resolve()
	if err != nil {
		return fmt.Errorf("locate compressor: %w", err)
	}

	cmd := exec.CommandContext(ctx, exe,
		"a",        // add to archive
		"-t7z",     // 7z container
		"-mx=9",    // maximum compression
		"-ms=on",   // solid mode
		"-mmt=on",  // multithreaded
		"-y",       // assume yes, overwrite without prompting
		destPath,
		inputPath,
	)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s exited %d: %s", exe, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("run %s: %w", exe, err)
	}
	return nil
}

var _ ports.Compressor = (*SevenZip)(nil)
