package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) clockwork.Ticker
}

// RealClock implements Clock using the system clock
type RealClock struct {
	clock clockwork.Clock
}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{clock: clockwork.NewRealClock()}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return c.clock.Now()
}

// NewTicker returns a ticker firing every d
func (c *RealClock) NewTicker(d time.Duration) clockwork.Ticker {
	return c.clock.NewTicker(d)
}
