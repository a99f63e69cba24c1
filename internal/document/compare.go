package document

import (
	"bytes"
	"cmp"
	"math"
	"strings"
)

// Compare imposes a total order on values, following the document
// database's cross-type ordering:
//
//	missing < null < numbers < strings < objects < arrays < ObjectID < bool < date
//
// Numbers compare numerically across Int and Float; NaN sorts below every
// other number and equals itself. Strings compare by bytes. Objects compare
// key by key in canonical key order, arrays element by element.
func Compare(a, b Value) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}

	switch ka {
	case KindMissing, KindNull:
		return 0
	case KindNumber:
		return compareNumbers(a, b)
	case KindString:
		return strings.Compare(string(a.(String)), string(b.(String)))
	case KindObject:
		return compareObjects(a.(Object), b.(Object))
	case KindArray:
		return compareArrays(a.(Array), b.(Array))
	case KindObjectID:
		ia, ib := a.(ObjectID), b.(ObjectID)
		return bytes.Compare(ia[:], ib[:])
	case KindBool:
		ba, bb := bool(a.(Bool)), bool(b.(Bool))
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		default:
			return 1
		}
	case KindTime:
		return a.(Time).Std().Compare(b.(Time).Std())
	}
	return 0
}

// Equal reports whether a and b are the same value under Compare.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func compareNumbers(a, b Value) int {
	if ia, ok := a.(Int); ok {
		if ib, ok := b.(Int); ok {
			return cmp.Compare(ia, ib)
		}
	}
	fa, _ := AsFloat(a)
	fb, _ := AsFloat(b)
	nanA, nanB := math.IsNaN(fa), math.IsNaN(fb)
	switch {
	case nanA && nanB:
		return 0
	case nanA:
		return -1
	case nanB:
		return 1
	}
	return cmp.Compare(fa, fb)
}

func compareObjects(a, b Object) int {
	ka, kb := a.SortedKeys(), b.SortedKeys()
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := compareKeysUTF16(ka[i], kb[i]); c != 0 {
			return c
		}
		if c := Compare(a[ka[i]], b[kb[i]]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ka), len(kb))
}

func compareArrays(a, b Array) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}
