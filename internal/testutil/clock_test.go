package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_StartsAtBase(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewDeterministicClock(base, time.Minute)

	assert.Equal(t, base, clock.Now())
	assert.Equal(t, base.Add(time.Minute), clock.Now())
	assert.Equal(t, int64(2), clock.Reads())
}

func TestDeterministicClock_ZeroBaseUsesDefault(t *testing.T) {
	clock := NewDeterministicClock(time.Time{}, 0)

	assert.Equal(t, DefaultBase, clock.Now())
	assert.Equal(t, DefaultBase, clock.Now())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(time.Time{}, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()

	assert.Equal(t, int64(0), clock.Reads())
	assert.Equal(t, DefaultBase, clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(time.Time{}, time.Second)
	const numGoroutines = 50
	const callsPerGoroutine = 20

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[time.Time]bool)
	)
	wg.Add(numGoroutines)
	for range numGoroutines {
		go func() {
			defer wg.Done()
			for range callsPerGoroutine {
				now := clock.Now()
				mu.Lock()
				require.False(t, seen[now], "duplicate reading %s", now)
				seen[now] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestDeterministicClock_Deterministic(t *testing.T) {
	clock1 := NewDeterministicClock(time.Time{}, time.Hour)
	clock2 := NewDeterministicClock(time.Time{}, time.Hour)

	for range 100 {
		assert.Equal(t, clock1.Now(), clock2.Now())
	}
}
