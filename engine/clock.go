package engine

import (
	"sync"
	"time"
)

// Clock supplies the simulation time read by the movement gate and instrumentation
type Clock interface {
	Now() time.Time
}

// Advancer is a clock the scheduler steps forward by one tick interval
type Advancer interface {
	Advance(d time.Duration)
}

// WallClock reads the monotonic system clock
type WallClock struct{}

// NewWallClock creates a wall clock
func NewWallClock() *WallClock {
	return &WallClock{}
}

// Now returns the current system time
func (WallClock) Now() time.Time {
	return time.Now()
}

// SimClock is a manually advanced clock, every run over it is reproducible
type SimClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewSimClock creates a clock frozen at start
func NewSimClock(start time.Time) *SimClock {
	return &SimClock{current: start}
}

// Now returns the current simulated time
func (c *SimClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Set jumps to t
func (c *SimClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance moves the clock forward by d
func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}
