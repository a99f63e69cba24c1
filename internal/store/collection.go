package store

import (
	"context"
	"fmt"

	"github.com/tidwall/btree"
	"go.uber.org/zap"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/pipeline"
	"github.com/roach88/sweatz/internal/query"
)

// entry is one stored record keyed by its insertion sequence.
type entry struct {
	seq uint64
	doc document.Object
}

func entryLess(a, b entry) bool {
	return a.seq < b.seq
}

// Collection is one named record set. Records are kept in a B-tree
// ordered by insertion sequence, so scans return them in insertion order
// and deletes do not shift the remaining records.
type Collection struct {
	name    string
	store   *Store
	records *btree.BTreeG[entry]
	ids     map[string]uint64 // document.Key(_id) -> seq
	nextSeq uint64
	logger  *zap.Logger
}

func newCollection(s *Store, name string) *Collection {
	return &Collection{
		name:    name,
		store:   s,
		records: btree.NewBTreeG[entry](entryLess),
		ids:     make(map[string]uint64),
		logger:  s.logger.With(zap.String("collection", name)),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return c.records.Len()
}

// observe reports an operation to metrics. ErrNotFound is an outcome, not
// a failure.
func (c *Collection) observe(op string, err error) {
	failed := err != nil && !IsNotFound(err)
	c.store.metrics.ObserveOp(c.name, op, failed)
	if failed {
		c.logger.Debug("operation failed", zap.String("op", op), zap.Error(err))
	}
}

// predicate parses filter. An "_id" string that is not an ObjectID is
// still matched literally; it is logged because it usually means a
// caller skipped identity coercion.
func (c *Collection) predicate(op string, filter document.Object) (query.Predicate, error) {
	if s, ok := filter[document.IDField].(document.String); ok {
		if _, err := document.CoerceIdentity(s); err != nil {
			c.logger.Debug("identity is not an ObjectID, matching as string",
				zap.String("op", op), zap.String("id", string(s)))
		}
	}
	p, err := query.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, c.name, err)
	}
	return p, nil
}

// scan calls fn for each record matching p, in insertion order, until fn
// returns false. Records passed to fn are the stored values.
func (c *Collection) scan(p query.Predicate, fn func(e entry) bool) {
	c.records.Scan(func(e entry) bool {
		if !query.Match(p, e.doc) {
			return true
		}
		return fn(e)
	})
}

func (c *Collection) first(p query.Predicate) (entry, bool) {
	var (
		found entry
		ok    bool
	)
	c.scan(p, func(e entry) bool {
		found, ok = e, true
		return false
	})
	return found, ok
}

// FindOne returns a copy of the first record matching filter in insertion
// order, or ErrNotFound.
func (c *Collection) FindOne(ctx context.Context, filter document.Object) (result document.Object, err error) {
	defer func() { c.observe("find_one", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := c.predicate("find_one", filter)
	if err != nil {
		return nil, err
	}
	e, ok := c.first(p)
	c.logger.Debug("find_one", zap.Bool("found", ok))
	if !ok {
		return nil, ErrNotFound
	}
	return e.doc.Clone(), nil
}

// Find returns a cursor over the records matching filter. The filter is
// parsed immediately; matching happens when the cursor is read.
func (c *Collection) Find(ctx context.Context, filter document.Object) (result Cursor, err error) {
	defer func() { c.observe("find", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := c.predicate("find", filter)
	if err != nil {
		return nil, err
	}
	return &cursor{coll: c, pred: p}, nil
}

// CountDocuments returns the number of records matching filter.
func (c *Collection) CountDocuments(ctx context.Context, filter document.Object) (n int64, err error) {
	defer func() { c.observe("count_documents", err) }()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if len(filter) == 0 {
		return int64(c.records.Len()), nil
	}
	p, err := c.predicate("count_documents", filter)
	if err != nil {
		return 0, err
	}
	c.scan(p, func(entry) bool {
		n++
		return true
	})
	c.logger.Debug("count_documents", zap.Int64("count", n))
	return n, nil
}

// Distinct returns the unique values of field across records matching
// filter (nil matches all), in first-seen order. Array values contribute
// each element; records without the field contribute nothing.
func (c *Collection) Distinct(ctx context.Context, field string, filter document.Object) (values []document.Value, err error) {
	defer func() { c.observe("distinct", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := c.predicate("distinct", filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	add := func(v document.Value) {
		k := document.Key(v)
		if seen[k] {
			return
		}
		seen[k] = true
		values = append(values, document.Clone(v))
	}
	c.scan(p, func(e entry) bool {
		v, ok := e.doc.Get(field)
		if !ok {
			return true
		}
		if arr, isArray := v.(document.Array); isArray {
			for _, elem := range arr {
				add(elem)
			}
			return true
		}
		add(v)
		return true
	})
	if values == nil {
		values = []document.Value{}
	}
	return values, nil
}

// InsertOne stores a copy of record, assigning "_id" when absent, and
// returns the identity. The caller's map is not modified.
func (c *Collection) InsertOne(ctx context.Context, record document.Object) (result *InsertOneResult, err error) {
	defer func() { c.observe("insert_one", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := c.insert(record.Clone())
	if err != nil {
		return nil, fmt.Errorf("insert_one %s: %w", c.name, err)
	}
	c.logger.Debug("insert_one", zap.Stringer("id", idStringer{id}))
	return &InsertOneResult{InsertedID: id}, nil
}

// InsertMany inserts records in order. It stops at the first failure;
// records inserted before it remain.
func (c *Collection) InsertMany(ctx context.Context, records []document.Object) (result *InsertManyResult, err error) {
	defer func() { c.observe("insert_many", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result = &InsertManyResult{InsertedIDs: make([]document.Value, 0, len(records))}
	for i, record := range records {
		id, err := c.insert(record.Clone())
		if err != nil {
			return result, fmt.Errorf("insert_many %s: record %d: %w", c.name, i, err)
		}
		result.InsertedIDs = append(result.InsertedIDs, id)
	}
	c.logger.Debug("insert_many", zap.Int("count", len(records)))
	return result, nil
}

// insert takes ownership of doc.
func (c *Collection) insert(doc document.Object) (document.Value, error) {
	if doc == nil {
		doc = document.Object{}
	}
	id, ok := doc.ID()
	if !ok {
		id = c.store.ids.Generate()
		doc[document.IDField] = id
	}

	key := document.Key(id)
	if _, taken := c.ids[key]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentity, key)
	}

	c.nextSeq++
	c.records.Set(entry{seq: c.nextSeq, doc: doc})
	c.ids[key] = c.nextSeq
	c.store.metrics.SetRecords(c.name, c.records.Len())
	return document.Clone(id), nil
}

// UpdateOne merges update into the first record matching filter.
//
// update is {"$set": {...}} (optionally with "$setOnInsert") or a plain
// field map, which is treated as $set. Fields are replaced whole; dotted
// keys are stored literally. With Upsert(true) and no match, a new record
// is built from the filter's equality fields, then $setOnInsert, then $set.
func (c *Collection) UpdateOne(ctx context.Context, filter, update document.Object, opts ...UpdateOption) (result *UpdateResult, err error) {
	defer func() { c.observe("update_one", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var o UpdateOptions
	for _, opt := range opts {
		opt(&o)
	}

	set, setOnInsert, err := parseUpdate(update)
	if err != nil {
		return nil, fmt.Errorf("update_one %s: %w", c.name, err)
	}
	p, err := c.predicate("update_one", filter)
	if err != nil {
		return nil, err
	}

	if e, ok := c.first(p); ok {
		if newID, changes := set[document.IDField]; changes {
			oldID, _ := e.doc.ID()
			if !document.Equal(oldID, newID) || document.KindOf(oldID) != document.KindOf(newID) {
				return nil, fmt.Errorf("update_one %s: %w", c.name, ErrImmutableIdentity)
			}
		}
		for k, v := range set {
			e.doc[k] = document.Clone(v)
		}
		c.logger.Debug("update_one", zap.Int("fields", len(set)))
		return &UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}

	if !o.Upsert {
		c.logger.Debug("update_one", zap.Bool("matched", false))
		return &UpdateResult{}, nil
	}

	doc := query.Equalities(p)
	for k, v := range setOnInsert {
		doc[k] = document.Clone(v)
	}
	for k, v := range set {
		doc[k] = document.Clone(v)
	}
	id, err := c.insert(doc)
	if err != nil {
		return nil, fmt.Errorf("update_one %s: upsert: %w", c.name, err)
	}
	c.logger.Debug("update_one upserted", zap.Stringer("id", idStringer{id}))
	return &UpdateResult{UpsertedCount: 1, UpsertedID: id}, nil
}

// parseUpdate splits an update document into its $set and $setOnInsert
// parts.
func parseUpdate(update document.Object) (set, setOnInsert document.Object, err error) {
	operators := 0
	for k := range update {
		if len(k) > 0 && k[0] == '$' {
			operators++
		}
	}
	switch {
	case operators == 0:
		return update, nil, nil
	case operators != len(update):
		return nil, nil, fmt.Errorf("%w: update mixes operators and fields", query.ErrInvalidFilter)
	}

	for op, arg := range update {
		fields, ok := arg.(document.Object)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s requires an object", query.ErrInvalidFilter, op)
		}
		switch op {
		case "$set":
			set = fields
		case "$setOnInsert":
			setOnInsert = fields
		default:
			return nil, nil, fmt.Errorf("%w: update operator %s", query.ErrUnsupportedOperation, op)
		}
	}
	return set, setOnInsert, nil
}

// DeleteOne removes the first record matching filter.
func (c *Collection) DeleteOne(ctx context.Context, filter document.Object) (result *DeleteResult, err error) {
	defer func() { c.observe("delete_one", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := c.predicate("delete_one", filter)
	if err != nil {
		return nil, err
	}
	e, ok := c.first(p)
	if !ok {
		c.logger.Debug("delete_one", zap.Bool("matched", false))
		return &DeleteResult{}, nil
	}

	c.records.Delete(e)
	id, _ := e.doc.ID()
	delete(c.ids, document.Key(id))
	c.store.metrics.SetRecords(c.name, c.records.Len())
	c.logger.Debug("delete_one", zap.Stringer("id", idStringer{id}))
	return &DeleteResult{DeletedCount: 1}, nil
}

// Aggregate runs pipeline over copies of every record, in insertion
// order. The pipeline is validated before any record is read.
func (c *Collection) Aggregate(ctx context.Context, raw []document.Object) (out []document.Object, err error) {
	defer func() { c.observe("aggregate", err) }()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stages, err := pipeline.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", c.name, err)
	}

	records := make([]document.Object, 0, c.records.Len())
	c.records.Scan(func(e entry) bool {
		records = append(records, e.doc.Clone())
		return true
	})

	out, err = pipeline.Run(stages, records)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", c.name, err)
	}
	c.logger.Debug("aggregate", zap.Int("stages", len(stages)), zap.Int("results", len(out)))
	return out, nil
}

// idStringer renders an identity for logs without encoding it eagerly.
type idStringer struct {
	id document.Value
}

func (s idStringer) String() string {
	switch v := s.id.(type) {
	case document.ObjectID:
		return v.Hex()
	case document.String:
		return string(v)
	}
	return document.Key(s.id)
}
