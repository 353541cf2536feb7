// Package timer runs the per-question answer countdown shown to players.
// It never changes session state; it only decides whether the local
// player may still submit.
package timer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/clock"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

// DefaultTimeLimit is used when a question carries no time limit
const DefaultTimeLimit = 20 * time.Second

// Config holds timer settings and UI callbacks. Callbacks run on the
// timer goroutine and must not call Reset or Stop.
type Config struct {
	DefaultTimeLimit time.Duration
	OnTick           func(remaining int)
	OnExpire         func()
}

// Timer counts down once per second from the current question's limit
type Timer struct {
	clock  clock.Clock
	cfg    Config
	logger *slog.Logger

	// notifyMu is held across a tick's callbacks and by Reset and Stop,
	// so no tick of an old countdown is reported once they return
	notifyMu sync.Mutex

	mu        sync.Mutex
	remaining int
	locked    bool
	expired   bool
	stop      chan struct{}
}

// New creates a stopped timer
func New(clk clock.Clock, cfg Config, logger *slog.Logger) *Timer {
	if cfg.DefaultTimeLimit <= 0 {
		cfg.DefaultTimeLimit = DefaultTimeLimit
	}
	return &Timer{
		clock:  clk,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "timer")),
	}
}

// Reset starts a fresh countdown for q and unlocks submission
func (t *Timer) Reset(q model.Question) {
	limit := q.TimeLimit
	if limit <= 0 {
		limit = int(t.cfg.DefaultTimeLimit / time.Second)
	}

	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	t.stopLocked()
	t.remaining = limit
	t.locked = false
	t.expired = false
	stop := make(chan struct{})
	t.stop = stop
	ticker := t.clock.NewTicker(time.Second)
	t.mu.Unlock()

	t.logger.Debug("countdown started", slog.Int("seconds", limit))
	go t.run(ticker.Chan(), ticker.Stop, stop)
}

// Stop halts the countdown. Remaining time is kept.
func (t *Timer) Stop() {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

// TryLock claims the single submission allowed per question. It fails
// when an answer was already submitted or time has run out. A successful
// lock also stops the countdown.
func (t *Timer) TryLock() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.locked || t.expired {
		return false
	}
	t.locked = true
	t.stopLocked()
	return true
}

// Remaining returns the seconds left on the countdown
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Locked reports whether an answer has been submitted for this question
func (t *Timer) Locked() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.locked
}

// Expired reports whether the countdown reached zero
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

func (t *Timer) run(ticks <-chan time.Time, stopTicker func(), stop chan struct{}) {
	defer stopTicker()

	for {
		select {
		case <-stop:
			return
		case <-ticks:
			if !t.tick(stop) {
				return
			}
		}
	}
}

// tick counts one second and reports whether the countdown goes on
func (t *Timer) tick(stop chan struct{}) bool {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	if t.stop != stop {
		t.mu.Unlock()
		return false
	}
	t.remaining--
	remaining := t.remaining
	done := remaining <= 0
	if done {
		t.expired = true
		t.stop = nil
	}
	t.mu.Unlock()

	if t.cfg.OnTick != nil {
		t.cfg.OnTick(remaining)
	}
	if done {
		t.logger.Debug("countdown expired")
		if t.cfg.OnExpire != nil {
			t.cfg.OnExpire()
		}
	}
	return !done
}
