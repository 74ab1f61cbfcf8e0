package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/calltrail/internal/app"
	"github.com/doeshing/calltrail/internal/domain"
)

// newArchiveCommand runs one sweep+compact pass. Collaborators typically
// invoke this once per process start.
func newArchiveCommand(container *app.Container) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "archive [dir]",
		Short: "Relocate aged records into day folders and compact them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}

			now := time.Now()
			if asOf != "" {
				parsed, err := time.Parse(time.RFC3339, asOf)
				if err != nil {
					return fmt.Errorf("parse --as-of: %w", err)
				}
				now = parsed
			}

			run, err := container.ArchiveService.Run(cmd.Context(), dir, now)
			if err != nil {
				return err
			}
			printRun(cmd, run)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Reference time (RFC3339) deciding which day counts as today")
	return cmd
}

func printRun(cmd *cobra.Command, run domain.ArchiveRun) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "swept %d file(s), %d bucket(s) pending, %d archive(s) created",
		run.SweptFiles, run.BucketsPending, run.ArchivesCreated)
	if run.Failures > 0 {
		fmt.Fprintf(out, ", %d failure(s)", run.Failures)
	}
	fmt.Fprintf(out, " in %dms\n", run.DurationMS)
}
