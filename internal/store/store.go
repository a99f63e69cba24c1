package store

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/metrics"
)

// DefaultServerVersion is the version string reported by ServerVersion and
// the serverStatus command.
const DefaultServerVersion = "5.0.0-mock"

// Store holds the collections of one emulated database.
// Create it with New; the zero value is not usable.
type Store struct {
	name        string
	collections map[string]*Collection
	logger      *zap.Logger
	metrics     *metrics.Collectors
	ids         IDGenerator
	version     string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Operations log at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics reports operations and collection sizes to m.
func WithMetrics(m *metrics.Collectors) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithIDGenerator sets the generator for records inserted without "_id".
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithServerVersion overrides the reported server version.
func WithServerVersion(version string) Option {
	return func(s *Store) {
		s.version = version
	}
}

// WithName sets the database name reported in logs.
func WithName(name string) Option {
	return func(s *Store) {
		s.name = name
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		name:        "sweatz",
		collections: make(map[string]*Collection),
		logger:      zap.NewNop(),
		ids:         ObjectIDGenerator{},
		version:     DefaultServerVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("database", s.name))
	return s
}

// Name returns the database name.
func (s *Store) Name() string {
	return s.name
}

// Collection returns the named collection, creating it on first access.
func (s *Store) Collection(name string) RecordSet {
	return s.collection(name)
}

func (s *Store) collection(name string) *Collection {
	if c, ok := s.collections[name]; ok {
		return c
	}
	c := newCollection(s, name)
	s.collections[name] = c
	s.metrics.SetRecords(name, 0)
	s.logger.Debug("collection created", zap.String("collection", name))
	return c
}

// ListCollectionNames returns the names of every collection accessed so
// far, sorted.
func (s *Store) ListCollectionNames() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ServerVersion returns the synthetic server version string.
func (s *Store) ServerVersion() string {
	return s.version
}

// Command runs an administrative command. "serverStatus" reports the
// version, "ping" and "ismaster" report liveness; any other name returns
// an empty document.
func (s *Store) Command(ctx context.Context, name string) (document.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch name {
	case "serverStatus":
		return document.Object{"version": document.String(s.version)}, nil
	case "ping":
		return document.Object{"ok": document.Float(1)}, nil
	case "ismaster", "isMaster", "hello":
		return document.Object{"ismaster": document.Bool(true), "ok": document.Float(1)}, nil
	default:
		s.logger.Debug("unknown command", zap.String("command", name))
		return document.Object{}, nil
	}
}

// Drop removes a collection and its records. Dropping an unknown
// collection is not an error.
func (s *Store) Drop(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	if _, ok := s.collections[name]; !ok {
		return nil
	}
	delete(s.collections, name)
	s.metrics.DeleteCollection(name)
	s.logger.Debug("collection dropped", zap.String("collection", name))
	return nil
}
