// Package testutil provides deterministic helpers for tests.
package testutil

import (
	"strconv"
	"sync"
	"time"
)

// Epoch is the fixed starting instant for deterministic clocks. Golden
// files embed timestamps derived from it, so it must never change.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a thread-safe stepping wall clock for tests.
//
// Each call to Now returns a strictly later instant (Epoch + n*step), so
// rows appended in sequence always have distinct, ordered timestamps
// regardless of scheduler timing. Reset allows the same scenario to run
// repeatedly with identical timestamps.
type DeterministicClock struct {
	mu   sync.Mutex
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock stepping one second per call.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{step: time.Second}
}

// Now returns the next instant and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return Epoch.Add(time.Duration(c.n) * c.step)
}

// Current returns the last instant handed out without advancing.
func (c *DeterministicClock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Epoch.Add(time.Duration(c.n) * c.step)
}

// Reset rewinds the clock to the epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}

// SequentialIDs returns an id generator producing "id-1", "id-2", ...
// for deterministic entity creation in tests and scenarios.
func SequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	var n int64
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.FormatInt(n, 10)
	}
}
