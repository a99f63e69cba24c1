package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sweatz/internal/document"
)

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Sort  string // field to sort on; empty keeps insertion order
	Desc  bool
	Skip  int64
	Limit int64
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <collection> [filter-json]",
		Short: "Query a collection",
		Long: `Run a filter against a collection of the configured store and print
the matching records, one canonical JSON object per line.

The filter is extended JSON: {"$oid": "..."} and {"$date": "..."} build
identities and timestamps. Results are sorted, then skipped, then limited.

Examples:
  sweatz find exercises
  sweatz find exercises '{"muscle_group": "Legs"}' --sort name
  sweatz find users '{"_id": "6123456789abcdef01234567"}'
  sweatz find exercises --sort created_at --desc --limit 5`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort by field")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().Int64Var(&opts.Skip, "skip", 0, "skip the first n results")
	cmd.Flags().Int64Var(&opts.Limit, "limit", 0, "return at most n results (0 = no limit)")

	return cmd
}

func runFind(opts *FindOptions, args []string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Skip < 0 || opts.Limit < 0 {
		return formatter.Fail(ErrCodeInvalidArgs, "skip and limit must be non-negative", nil)
	}
	filter, err := parseFilterArg(args, 1)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidArgs, "invalid filter", err)
	}

	s, err := opts.openStore(ctx, nil)
	if err != nil {
		return formatter.Fail(ErrCodeConfig, "failed to open store", err)
	}

	cur, err := s.Collection(args[0]).Find(ctx, filter)
	if err != nil {
		return formatter.Fail(ErrCodeOperation, "find failed", err)
	}
	if opts.Sort != "" {
		dir := 1
		if opts.Desc {
			dir = -1
		}
		cur = cur.Sort(opts.Sort, dir)
	}
	records, err := cur.Skip(opts.Skip).Limit(opts.Limit).All(ctx)
	if err != nil {
		return formatter.Fail(ErrCodeOperation, "find failed", err)
	}

	formatter.VerboseLog("%d record(s) matched in %s", len(records), args[0])
	return formatter.Records(records)
}

// NewAggregateCommand creates the aggregate command.
func NewAggregateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate <collection> <pipeline-json>",
		Short: "Run an aggregation pipeline",
		Long: `Run an aggregation pipeline against a collection of the configured
store. The pipeline is a JSON array of stages: $match, $group, $sort,
$unwind, $skip, $limit and $count.

Examples:
  sweatz aggregate exercises '[{"$group": {"_id": "$muscle_group", "n": {"$sum": 1}}}]'
  sweatz aggregate users '[{"$match": {"role": "admin"}}, {"$count": "admins"}]'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			stages, err := document.ParseArray([]byte(args[1]))
			if err != nil {
				return formatter.Fail(ErrCodeInvalidArgs, "invalid pipeline", err)
			}

			s, err := rootOpts.openStore(ctx, nil)
			if err != nil {
				return formatter.Fail(ErrCodeConfig, "failed to open store", err)
			}

			out, err := s.Collection(args[0]).Aggregate(ctx, stages)
			if err != nil {
				return formatter.Fail(ErrCodeOperation, "aggregate failed", err)
			}
			return formatter.Records(out)
		},
	}

	return cmd
}
