package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/mocks"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/testutil"
)

type TimerSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	timer   *Timer
	ticks   atomic.Int32
	expires atomic.Int32
}

func TestTimerSuite(t *testing.T) {
	suite.Run(t, new(TimerSuite))
}

func (s *TimerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ticks.Store(0)
	s.expires.Store(0)
	s.timer = New(s.clock, Config{
		OnTick:   func(int) { s.ticks.Add(1) },
		OnExpire: func() { s.expires.Add(1) },
	}, testutil.NopLogger())
}

func (s *TimerSuite) TearDownTest() {
	s.timer.Stop()
}

func (s *TimerSuite) question(limit int) model.Question {
	return model.Question{
		Text:      "Capital of France?",
		Options:   []model.Option{{Text: "Paris"}, {Text: "Rome"}},
		TimeLimit: limit,
	}
}

// tick advances one second and waits for the countdown to reach want
func (s *TimerSuite) tick(want int) {
	s.clock.Advance(time.Second)
	s.Require().Eventually(func() bool {
		return s.timer.Remaining() == want
	}, time.Second, 5*time.Millisecond)
}

func (s *TimerSuite) TestResetUsesQuestionLimit() {
	s.timer.Reset(s.question(10))
	s.Equal(10, s.timer.Remaining())
	s.False(s.timer.Locked())
	s.False(s.timer.Expired())
}

func (s *TimerSuite) TestResetFallsBackToDefault() {
	s.timer.Reset(s.question(0))
	s.Equal(int(DefaultTimeLimit/time.Second), s.timer.Remaining())
}

func (s *TimerSuite) TestCountsDownOncePerSecond() {
	s.timer.Reset(s.question(3))

	s.tick(2)
	s.tick(1)
	s.Eventually(func() bool { return s.ticks.Load() == 2 }, time.Second, 5*time.Millisecond)
	s.False(s.timer.Expired())
}

func (s *TimerSuite) TestExpiresAtZero() {
	s.timer.Reset(s.question(2))

	s.tick(1)
	s.tick(0)

	s.Eventually(func() bool { return s.expires.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.True(s.timer.Expired())
	s.False(s.timer.TryLock(), "no submissions after time is up")

	// no further ticks once expired
	s.clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)
	s.Equal(0, s.timer.Remaining())
	s.EqualValues(1, s.expires.Load())
}

func (s *TimerSuite) TestFirstLockWins() {
	s.timer.Reset(s.question(10))

	s.True(s.timer.TryLock())
	s.False(s.timer.TryLock())
	s.True(s.timer.Locked())
}

func (s *TimerSuite) TestLockStopsCountdown() {
	s.timer.Reset(s.question(10))
	s.tick(9)

	s.Require().True(s.timer.TryLock())
	s.clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)

	s.Equal(9, s.timer.Remaining())
}

func (s *TimerSuite) TestResetUnlocksForNextQuestion() {
	s.timer.Reset(s.question(10))
	s.Require().True(s.timer.TryLock())

	s.timer.Reset(s.question(5))

	s.False(s.timer.Locked())
	s.Equal(5, s.timer.Remaining())
	s.True(s.timer.TryLock())
}

func (s *TimerSuite) TestResetReplacesRunningCountdown() {
	s.timer.Reset(s.question(10))
	s.tick(9)

	s.timer.Reset(s.question(4))
	s.tick(3)
	s.tick(2)
}

func (s *TimerSuite) TestStopFreezesRemaining() {
	s.timer.Reset(s.question(10))
	s.tick(9)

	s.timer.Stop()
	s.clock.Advance(time.Second)
	time.Sleep(20 * time.Millisecond)

	s.Equal(9, s.timer.Remaining())
	s.False(s.timer.Expired())
}

func (s *TimerSuite) TestNoTickFromOldCountdownAfterReset() {
	var mu sync.Mutex
	var seen []int
	entered := make(chan struct{})
	release := make(chan struct{})
	s.timer = New(s.clock, Config{OnTick: func(remaining int) {
		mu.Lock()
		seen = append(seen, remaining)
		first := len(seen) == 1
		mu.Unlock()
		if first {
			close(entered)
			<-release
		}
	}}, testutil.NopLogger())

	s.timer.Reset(s.question(10))
	s.clock.Advance(time.Second)
	select {
	case <-entered:
	case <-time.After(time.Second):
		s.FailNow("first tick not delivered")
	}

	// the next question arrives while the old tick is being reported
	done := make(chan struct{})
	go func() {
		s.timer.Reset(s.question(5))
		close(done)
	}()
	s.Never(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		s.FailNow("Reset did not return")
	}
	s.Equal(5, s.timer.Remaining())

	s.tick(4)
	s.Require().Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]int{9, 4}, seen)
}
