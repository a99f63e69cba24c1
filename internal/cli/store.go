package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/sweatz/internal/clock"
	"github.com/roach88/sweatz/internal/config"
	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/fixtures"
	"github.com/roach88/sweatz/internal/metrics"
	"github.com/roach88/sweatz/internal/store"
)

// openStore builds a store from the loaded config and fills it with the
// seed and the configured fixture files. m may be nil.
func (o *RootOptions) openStore(ctx context.Context, m *metrics.Collectors) (*store.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return buildStore(ctx, cfg, o.logger(), m)
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Collectors) (*store.Store, error) {
	ids, ok := store.GeneratorFor(cfg.IDScheme)
	if !ok {
		return nil, fmt.Errorf("unknown id_scheme %q", cfg.IDScheme)
	}
	opts := []store.Option{
		store.WithName(cfg.Database),
		store.WithLogger(logger),
		store.WithIDGenerator(ids),
		store.WithMetrics(m),
	}
	if cfg.ServerVersion != "" {
		opts = append(opts, store.WithServerVersion(cfg.ServerVersion))
	}
	s := store.New(opts...)

	set := fixtures.Set{}
	if cfg.Seed {
		set.Merge(fixtures.Default(clock.System{}))
	}
	if len(cfg.Fixtures) > 0 {
		extra, err := fixtures.LoadFiles(cfg.Fixtures...)
		if err != nil {
			return nil, err
		}
		set.Merge(extra)
	}

	n, err := fixtures.Apply(ctx, s, set)
	if err != nil {
		return nil, err
	}
	logger.Debug("store ready",
		zap.Bool("seed", cfg.Seed),
		zap.Int("fixture_files", len(cfg.Fixtures)),
		zap.Int("records", n),
	)
	return s, nil
}

// parseFilterArg parses an optional extended-JSON filter argument.
func parseFilterArg(args []string, index int) (document.Object, error) {
	if len(args) <= index || args[index] == "" {
		return nil, nil
	}
	return document.ParseObject([]byte(args[index]))
}
