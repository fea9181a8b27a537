package object

import "sync/atomic"

// Clock is a monotonic logical clock for event ordering.
//
// Every journal event is stamped with a strictly increasing seq number
// from the registry's clock. This ensures:
//   - Deterministic ordering without wall-clock race conditions
//   - Reproducible traces for golden comparison
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
