package testutil

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/roach88/sweatz/internal/document"
)

// SequentialIDGenerator generates ObjectIDs from a counter.
//
// The first four bytes hold the base time in seconds, like a real ObjectID;
// the last eight hold the counter. The same scenario with a fresh generator
// produces byte-identical ids, which keeps golden traces stable.
//
// Thread-safety: Generate is safe for concurrent use.
type SequentialIDGenerator struct {
	mu   sync.Mutex
	base uint32
	n    uint64
}

// NewSequentialIDGenerator creates a generator stamping ids with base.
// A zero base uses DefaultBase.
func NewSequentialIDGenerator(base time.Time) *SequentialIDGenerator {
	if base.IsZero() {
		base = DefaultBase
	}
	return &SequentialIDGenerator{base: uint32(base.Unix())}
}

// Generate returns the next ObjectID. The first has counter 1.
func (g *SequentialIDGenerator) Generate() document.Value {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	var id document.ObjectID
	binary.BigEndian.PutUint32(id[0:4], g.base)
	binary.BigEndian.PutUint64(id[4:12], g.n)
	return id
}
