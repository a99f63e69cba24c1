package snapshot

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/query"
	"github.com/roach88/sweatz/internal/store"
)

// named is implemented by databases that report their name.
type named interface {
	Name() string
}

// Export writes every collection of db to the snapshot at path, replacing
// whatever it held. It returns the number of records written.
func Export(ctx context.Context, db store.Database, path string) (int, error) {
	snap, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer snap.Close()
	return snap.Write(ctx, db)
}

// Write replaces the snapshot's contents with db's collections in a single
// transaction.
func (s *Snapshot) Write(ctx context.Context, db store.Database) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, stmt := range []string{"DELETE FROM records", "DELETE FROM collections", "DELETE FROM meta"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return 0, fmt.Errorf("clear snapshot: %w", err)
		}
	}

	name := ""
	if n, ok := db.(named); ok {
		name = n.Name()
	}
	meta := map[string]string{"database": name, "server_version": db.ServerVersion()}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return 0, fmt.Errorf("write meta: %w", err)
		}
	}

	total := 0
	for _, coll := range db.ListCollectionNames() {
		n, err := writeCollection(ctx, tx, db.Collection(coll))
		if err != nil {
			return 0, err
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return total, nil
}

func writeCollection(ctx context.Context, tx *sql.Tx, rs store.RecordSet) (int, error) {
	if _, err := tx.ExecContext(ctx, "INSERT INTO collections (name) VALUES (?)", rs.Name()); err != nil {
		return 0, fmt.Errorf("write collection %s: %w", rs.Name(), err)
	}

	cur, err := rs.Find(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("read collection %s: %w", rs.Name(), err)
	}
	records, err := cur.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("read collection %s: %w", rs.Name(), err)
	}

	for i, rec := range records {
		id, _ := rec.ID()
		_, err := tx.ExecContext(ctx,
			"INSERT INTO records (collection, seq, id, doc) VALUES (?, ?, ?, ?)",
			rs.Name(), i+1, document.Key(id), string(document.Canonical(rec)),
		)
		if err != nil {
			return 0, fmt.Errorf("write record %d of %s: %w", i+1, rs.Name(), err)
		}
	}
	return len(records), nil
}

// Import loads the snapshot at path into dst, collection by collection in
// insertion order. It returns the number of records inserted.
func Import(ctx context.Context, path string, dst store.Database) (int, error) {
	snap, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer snap.Close()
	return snap.Restore(ctx, dst)
}

// Restore inserts every snapshot record into dst. Empty collections are
// created so they appear in dst's collection list.
func (s *Snapshot) Restore(ctx context.Context, dst store.Database) (int, error) {
	names, err := s.Collections(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, name := range names {
		records, err := s.Find(ctx, name, nil)
		if err != nil {
			return 0, err
		}
		rs := dst.Collection(name)
		if len(records) == 0 {
			continue
		}
		if _, err := rs.InsertMany(ctx, records); err != nil {
			return 0, fmt.Errorf("restore %s: %w", name, err)
		}
		total += len(records)
	}
	return total, nil
}

// Find returns the records of collection matching filter, in insertion
// order. The filter is evaluated by SQLite. Filters on arrays or
// embedded objects as literals fail with ErrUnsupportedPredicate.
func (s *Snapshot) Find(ctx context.Context, collection string, filter document.Object) ([]document.Object, error) {
	p, err := query.Parse(filter)
	if err != nil {
		return nil, err
	}
	stmt, params, err := compileFind(collection, p)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	records := []document.Object{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := document.ParseObject([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
