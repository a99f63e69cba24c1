package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/sweatz/internal/metrics"
	"github.com/roach88/sweatz/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Metrics bool // print Prometheus metrics after the summary
}

// CollectionCount is one row of the status and collections output.
type CollectionCount struct {
	Name    string `json:"name"`
	Records int64  `json:"records"`
}

// StatusResult is the status command's payload.
type StatusResult struct {
	Database        string            `json:"database"`
	ServerVersion   string            `json:"server_version"`
	Profile         string            `json:"profile"`
	DevelopmentMode bool              `json:"development_mode"`
	Connected       bool              `json:"connected"`
	Collections     []CollectionCount `json:"collections"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the store's version and collection sizes",
		Long: `Build the configured store and report its server version, the
profile in use, and the number of records in every collection.

Examples:
  sweatz status
  sweatz status --metrics
  sweatz --config sweatz.yaml status --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print store metrics in Prometheus text format")

	return cmd
}

func runStatus(ctx context.Context, opts *StatusOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	s, err := opts.openStore(ctx, metrics.New(reg))
	if err != nil {
		return formatter.Fail(ErrCodeConfig, "failed to open store", err)
	}

	hello, err := s.Command(ctx, "ismaster")
	if err != nil {
		return formatter.Fail(ErrCodeOperation, "ismaster failed", err)
	}
	status, err := s.Command(ctx, "serverStatus")
	if err != nil {
		return formatter.Fail(ErrCodeOperation, "serverStatus failed", err)
	}
	counts, err := countCollections(ctx, s)
	if err != nil {
		return formatter.Fail(ErrCodeOperation, "failed to count records", err)
	}

	result := StatusResult{
		Database:        s.Name(),
		ServerVersion:   status.StringOr("version", s.ServerVersion()),
		Profile:         opts.Config.Profile,
		DevelopmentMode: opts.Config.DevelopmentMode,
		Connected:       hello.BoolOr("ismaster", false),
		Collections:     counts,
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		writeStatusText(formatter.Writer, result)
	}

	if opts.Metrics {
		w := formatter.Writer
		if opts.Format == "json" {
			w = formatter.GetErrWriter()
		}
		if err := writeMetrics(w, reg); err != nil {
			return formatter.Fail(ErrCodeOperation, "failed to write metrics", err)
		}
	}
	return nil
}

func countCollections(ctx context.Context, db store.Database) ([]CollectionCount, error) {
	names := db.ListCollectionNames()
	counts := make([]CollectionCount, 0, len(names))
	for _, name := range names {
		n, err := db.Collection(name).CountDocuments(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts = append(counts, CollectionCount{Name: name, Records: n})
	}
	return counts, nil
}

func writeStatusText(w io.Writer, r StatusResult) {
	state := "✗ not connected"
	if r.Connected {
		state = "✓ connected"
	}
	fmt.Fprintf(w, "%s to %s (server %s)\n", state, r.Database, r.ServerVersion)
	fmt.Fprintf(w, "Profile: %s (development mode: %t)\n", r.Profile, r.DevelopmentMode)
	fmt.Fprintln(w)
	writeCountsText(w, r.Collections)
}

func writeCountsText(w io.Writer, counts []CollectionCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No collections.")
		return
	}
	width := 0
	for _, c := range counts {
		width = max(width, len(c.Name))
	}
	for _, c := range counts {
		fmt.Fprintf(w, "  %-*s %d\n", width, c.Name, c.Records)
	}
}

// writeMetrics prints every gathered family in the text exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
