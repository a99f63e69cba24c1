package pipeline

import (
	"slices"

	"github.com/roach88/sweatz/internal/document"
)

// SortRecords sorts records in place by keys. The sort is stable, so ties
// keep their input order, and a missing field sorts as null.
func SortRecords(records []document.Object, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b document.Object) int {
		for _, k := range keys {
			c := document.Compare(sortValue(a, k.Field), sortValue(b, k.Field))
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

func sortValue(record document.Object, field string) document.Value {
	v, ok := record.Get(field)
	if !ok {
		return document.Null{}
	}
	return v
}
