package mocks

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// Tickers only fire when the clock is advanced.
type MockClock struct {
	fake *clockwork.FakeClock
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{fake: clockwork.NewFakeClockAt(t)}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	return c.fake.Now()
}

// NewTicker returns a ticker driven by Advance
func (c *MockClock) NewTicker(d time.Duration) clockwork.Ticker {
	return c.fake.NewTicker(d)
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.fake.Advance(d)
}
