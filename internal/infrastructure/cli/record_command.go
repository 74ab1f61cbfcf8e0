package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/calltrail/internal/app"
	"github.com/doeshing/calltrail/internal/domain"
)

// newRecordCommand reads one exchange JSON document from stdin and persists
// it as a record file.
func newRecordCommand(container *app.Container) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one provider exchange from stdin",
		Long: "Reads a single JSON exchange document from stdin:\n" +
			`  {"provider": ..., "model": ..., "request": {"messages": [...], "options": {...}}, "response": {"content": ..., "duration_ms": ...}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			var ex domain.CallExchange
			if err := json.Unmarshal(data, &ex); err != nil {
				return fmt.Errorf("parse exchange: %w", err)
			}
			if dir != "" {
				ex.DestinationDir = dir
			}

			res, err := container.RecordService.Run(cmd.Context(), ex)
			if err != nil {
				return err
			}
			if !res.OK {
				// Best-effort contract: report, exit zero.
				fmt.Fprintln(cmd.OutOrStdout(), "not recorded:", res.Reason)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.FilePath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Destination directory (default from config)")
	return cmd
}
