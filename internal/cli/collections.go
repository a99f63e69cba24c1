package cli

import (
	"github.com/spf13/cobra"
)

// NewCollectionsCommand creates the collections command.
func NewCollectionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections and their record counts",
		Long: `List every collection the configured store starts with, in name
order, with its record count.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			s, err := rootOpts.openStore(ctx, nil)
			if err != nil {
				return formatter.Fail(ErrCodeConfig, "failed to open store", err)
			}
			counts, err := countCollections(ctx, s)
			if err != nil {
				return formatter.Fail(ErrCodeOperation, "failed to count records", err)
			}

			if rootOpts.Format == "json" {
				return formatter.Success(counts)
			}
			writeCountsText(formatter.Writer, counts)
			return nil
		},
	}

	return cmd
}
