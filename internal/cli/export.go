package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sweatz/internal/snapshot"
)

// ExportResult is the export command's payload.
type ExportResult struct {
	Path        string `json:"path"`
	Database    string `json:"database"`
	Collections int    `json:"collections"`
	Records     int    `json:"records"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <snapshot-file>",
		Short: "Write the configured store to a SQLite snapshot",
		Long: `Build the configured store and write every collection to a SQLite
snapshot file. An existing snapshot at the path is replaced.

Examples:
  sweatz export ./dev.db
  sweatz --config testing.yaml export ./fixtures.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			s, err := rootOpts.openStore(ctx, nil)
			if err != nil {
				return formatter.Fail(ErrCodeConfig, "failed to open store", err)
			}

			n, err := snapshot.Export(ctx, s, args[0])
			if err != nil {
				return formatter.Fail(ErrCodeSnapshot, "export failed", err)
			}
			rootOpts.logger().Info("snapshot written", zap.String("path", args[0]), zap.Int("records", n))

			result := ExportResult{
				Path:        args[0],
				Database:    s.Name(),
				Collections: len(s.ListCollectionNames()),
				Records:     n,
			}
			if rootOpts.Format == "json" {
				return formatter.Success(result)
			}
			fmt.Fprintf(formatter.Writer, "✓ Exported %d record(s) from %d collection(s) of %s to %s\n",
				result.Records, result.Collections, result.Database, result.Path)
			return nil
		},
	}

	return cmd
}
