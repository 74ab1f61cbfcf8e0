package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/calltrail/internal/app"
	"github.com/doeshing/calltrail/internal/domain"
)

// newStatsCommand summarizes the on-disk trail and recent archive runs.
func newStatsCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "stats [dir]",
		Short: "Summarize recorded calls, pending buckets and archives",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.ConfigProvider.Load(cmd.Context())
			if err != nil {
				return err
			}
			dir := cfg.Archive.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			if err := printDirStats(cmd, dir); err != nil {
				return err
			}
			return printJournal(cmd, container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "runs", domain.DefaultJournalRunLimit, "Number of recent archive runs to show")
	return cmd
}

func printDirStats(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(out, "%s: nothing recorded yet\n", dir)
			return nil
		}
		return err
	}

	var loose, buckets, archives int
	var archiveBytes int64
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			buckets++
		case strings.HasSuffix(name, domain.ArchiveExtension):
			archives++
			if info, err := e.Info(); err == nil {
				archiveBytes += info.Size()
			}
		case strings.HasPrefix(name, "."),
			strings.Contains(name, domain.TempMarker),
			strings.Contains(name, domain.PartialMarker):
			// not part of the trail
		default:
			loose++
		}
	}

	fmt.Fprintf(out, "%s\n", dir)
	fmt.Fprintf(out, "  loose records:  %d\n", loose)
	fmt.Fprintf(out, "  day buckets:    %d\n", buckets)
	fmt.Fprintf(out, "  archives:       %d (%s)\n", archives, humanize.Bytes(uint64(archiveBytes)))
	return nil
}

func printJournal(cmd *cobra.Command, container *app.Container, limit int) error {
	if container.Journal == nil {
		return nil
	}
	runs, err := container.Journal.Runs(limit)
	if err != nil || len(runs) == 0 {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "recent archive runs:")
	for _, run := range runs {
		fmt.Fprintf(out, "  %s  swept=%d archives=%d failures=%d (%dms)\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.SweptFiles, run.ArchivesCreated, run.Failures, run.DurationMS)
	}
	return nil
}
