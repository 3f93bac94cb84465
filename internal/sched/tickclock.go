// internal/sched/tickclock.go

package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Pacer maps virtual time onto real time. The loop calls Advance before
// jumping the clock forward by d.
type Pacer interface {
	Advance(ctx context.Context, d time.Duration) error
}

// TickClock emits ticks and counts them atomically.
type TickClock struct {
	Ch       chan struct{}
	count    atomic.Int64
	stop     chan struct{}
	once     sync.Once
	interval time.Duration
}

// NewTickClock creates a clock but does not share it.
func NewTickClock(buffer int) *TickClock {
	return &TickClock{
		Ch:   make(chan struct{}, buffer),
		stop: make(chan struct{}),
	}
}

// Start begins emitting ticks at the given interval. Ticks nobody is
// waiting for are dropped so that Advance never consumes stale ones.
// A non-positive interval leaves the clock idle and Advance returns at once.
func (c *TickClock) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}
	c.interval = interval
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.count.Add(1)
				select {
				case c.Ch <- struct{}{}:
				default:
				}
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop signals the clock to stop emitting ticks. Safe to call twice.
func (c *TickClock) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// Count returns the current tick count atomically.
func (c *TickClock) Count() int64 {
	return c.count.Load()
}

// Advance blocks for as many ticks as it takes to cover d.
func (c *TickClock) Advance(ctx context.Context, d time.Duration) error {
	if c.interval <= 0 || d <= 0 {
		return nil
	}
	n := int64((d + c.interval - 1) / c.interval)
	for i := int64(0); i < n; i++ {
		select {
		case <-c.Ch:
		case <-c.stop:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
