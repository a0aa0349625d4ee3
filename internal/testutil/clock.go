package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a fake wall clock that advances by a fixed step on
// every reading.
//
// The same sequence of Now() calls always yields the same timestamps, so
// reports that embed start and finish times stay golden-comparable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	step  time.Duration
	ticks int64
}

// NewDeterministicClock creates a clock that starts at Epoch and advances by
// one second per reading.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockStep(time.Second)
}

// NewDeterministicClockStep creates a clock with a custom step.
func NewDeterministicClockStep(step time.Duration) *DeterministicClock {
	return &DeterministicClock{step: step}
}

// Now returns Epoch + ticks*step and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.ticks) * c.step)
	c.ticks++
	return t
}

// Ticks returns how many times Now has been called since the last Reset.
func (c *DeterministicClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
