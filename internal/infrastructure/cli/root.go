// Package cli wires the cobra command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/calltrail/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "calltrail",
		Short: "calltrail - durable audit trail for AI call exchanges",
		Long: "calltrail records request/response exchanges with AI providers as flat\n" +
			"files, masks credential-shaped content before persistence, and ages the\n" +
			"trail into per-day compressed archives.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRecordCommand(container))
	root.AddCommand(newArchiveCommand(container))
	root.AddCommand(newStatsCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
