package store

import (
	"context"
	"iter"

	"github.com/roach88/sweatz/internal/document"
	"github.com/roach88/sweatz/internal/pipeline"
	"github.com/roach88/sweatz/internal/query"
)

// cursor re-evaluates its predicate on every read, so it is restartable
// and reflects writes made after Find returned.
type cursor struct {
	coll  *Collection
	pred  query.Predicate
	sort  []pipeline.SortKey
	skip  int64
	limit int64
}

func (cur *cursor) Sort(field string, dir int) Cursor {
	cur.sort = []pipeline.SortKey{{Field: field, Desc: dir < 0}}
	return cur
}

func (cur *cursor) Skip(n int64) Cursor {
	cur.skip = max(n, 0)
	return cur
}

func (cur *cursor) Limit(n int64) Cursor {
	cur.limit = max(n, 0)
	return cur
}

// All applies sort, then skip, then limit, and returns copies.
func (cur *cursor) All(ctx context.Context) ([]document.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matched []document.Object
	cur.coll.scan(cur.pred, func(e entry) bool {
		matched = append(matched, e.doc)
		return true
	})

	pipeline.SortRecords(matched, cur.sort)

	if cur.skip >= int64(len(matched)) {
		matched = nil
	} else {
		matched = matched[cur.skip:]
	}
	if cur.limit > 0 && int64(len(matched)) > cur.limit {
		matched = matched[:cur.limit]
	}

	out := make([]document.Object, len(matched))
	for i, doc := range matched {
		out[i] = doc.Clone()
	}
	return out, nil
}

// Seq yields the results of All one at a time. A failed read yields a
// single error.
func (cur *cursor) Seq(ctx context.Context) iter.Seq2[document.Object, error] {
	return func(yield func(document.Object, error) bool) {
		records, err := cur.All(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
	}
}
