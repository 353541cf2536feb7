package factory

import (
	"time"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/mocks"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/storage/memory"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Store      *memory.Storage

	cfg Config
}

// NewTestApp creates an App talking to serverURL with mocked dependencies
func NewTestApp(serverURL string) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg, err := Config{ServerURL: serverURL, Logger: testutil.NopLogger()}.resolve()
	if err != nil {
		panic(err)
	}
	app := newWithDependencies(cfg, store, mockClock, mockRandom)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Store:      store,
		cfg:        cfg,
	}
}

// Restart builds a second App sharing this one's storage and mocks, as if
// the process had been restarted
func (t *TestApp) Restart() *TestApp {
	return &TestApp{
		App:        newWithDependencies(t.cfg, t.Store, t.MockClock, t.MockRandom),
		MockClock:  t.MockClock,
		MockRandom: t.MockRandom,
		Store:      t.Store,
		cfg:        t.cfg,
	}
}
