// Package testutil provides deterministic time and identity sources for
// tests and scenarios.
package testutil

import (
	"sync"
	"time"
)

// DefaultBase is the first instant a DeterministicClock reports.
var DefaultBase = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock is a wall clock that advances by a fixed step on every
// read, so the same scenario stamps the same times on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock starting at base and advancing by
// step. A zero base uses DefaultBase.
//
// The first call to Now() returns base.
func NewDeterministicClock(base time.Time, step time.Duration) *DeterministicClock {
	if base.IsZero() {
		base = DefaultBase
	}
	return &DeterministicClock{base: base.UTC(), step: step}
}

// Now returns the current reading and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Reads returns how many times Now has been called.
func (c *DeterministicClock) Reads() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset rewinds the clock to base.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
