package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sweatz/internal/snapshot"
)

// SnapshotSummary is the inspect command's payload when no collection is
// named.
type SnapshotSummary struct {
	Path          string            `json:"path"`
	Database      string            `json:"database"`
	ServerVersion string            `json:"server_version"`
	Collections   []CollectionCount `json:"collections"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot-file> [collection] [filter-json]",
		Short: "Query a snapshot file without loading it",
		Long: `Read a SQLite snapshot written by export.

With only a path, print the database the snapshot was taken from and its
collection sizes. With a collection, print its records in insertion order,
optionally narrowed by a filter. Filters are evaluated in SQL; a filter
that compares against null, an array or an object is rejected.

Examples:
  sweatz inspect ./dev.db
  sweatz inspect ./dev.db exercises '{"difficulty": {"$in": ["beginner", "advanced"]}}'`,
		Args:          cobra.RangeArgs(1, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), rootOpts, args, cmd)
		},
	}

	return cmd
}

func runInspect(ctx context.Context, opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return formatter.Fail(ErrCodeNotFound, fmt.Sprintf("snapshot not found: %s", path), nil)
		}
		return formatter.Fail(ErrCodeSnapshot, "failed to read snapshot", err)
	}

	filter, err := parseFilterArg(args, 2)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidArgs, "invalid filter", err)
	}

	snap, err := snapshot.Open(path)
	if err != nil {
		return formatter.Fail(ErrCodeSnapshot, "failed to open snapshot", err)
	}
	defer snap.Close()

	if len(args) == 1 {
		summary, err := summarize(ctx, snap, path)
		if err != nil {
			return formatter.Fail(ErrCodeSnapshot, "failed to read snapshot", err)
		}
		if opts.Format == "json" {
			return formatter.Success(summary)
		}
		fmt.Fprintf(formatter.Writer, "Snapshot of %s (server %s)\n\n", summary.Database, summary.ServerVersion)
		writeCountsText(formatter.Writer, summary.Collections)
		return nil
	}

	records, err := snap.Find(ctx, args[1], filter)
	if err != nil {
		code := ErrCodeSnapshot
		if errors.Is(err, snapshot.ErrUnsupportedPredicate) {
			code = ErrCodeInvalidArgs
		}
		return formatter.Fail(code, "inspect failed", err)
	}
	formatter.VerboseLog("%d record(s) matched in %s", len(records), args[1])
	return formatter.Records(records)
}

func summarize(ctx context.Context, snap *snapshot.Snapshot, path string) (SnapshotSummary, error) {
	meta, err := snap.Meta(ctx)
	if err != nil {
		return SnapshotSummary{}, err
	}
	names, err := snap.Collections(ctx)
	if err != nil {
		return SnapshotSummary{}, err
	}
	counts := make([]CollectionCount, 0, len(names))
	for _, name := range names {
		n, err := snap.Count(ctx, name)
		if err != nil {
			return SnapshotSummary{}, err
		}
		counts = append(counts, CollectionCount{Name: name, Records: n})
	}
	return SnapshotSummary{
		Path:          path,
		Database:      meta.Database,
		ServerVersion: meta.ServerVersion,
		Collections:   counts,
	}, nil
}
