package journal

import "sync/atomic"

// Clock is a monotonic logical clock for mutation ordering. Every
// journaled row is stamped with a strictly increasing seq; wall-clock
// timestamps are recorded for inspection only and never used for
// ordering.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming from a known position. Used when
// reopening an existing journal so new rows continue the sequence.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the clock's position without advancing it.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
