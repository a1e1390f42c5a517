// Package ticker drives the tracker's frame tick from a real-time clock
// for hosts that do not send :TICK: themselves.
package ticker

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// Driver calls Tick every Interval.
type Driver struct {
	Tick     func()
	Interval time.Duration
	Clock    clockwork.Clock
}

// New returns a driver on the real clock.
func New(tick func(), interval time.Duration) *Driver {
	return &Driver{Tick: tick, Interval: interval, Clock: clockwork.NewRealClock()}
}

// Run blocks, ticking until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := d.Clock
	if c == nil {
		c = clockwork.NewRealClock()
	}

	t := c.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.Chan():
			d.Tick()
		}
	}
}
