package mocks

import (
	"strconv"
	"sync"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu sync.Mutex

	// IDResults is a queue of results to return from ID
	IDResults []string
	idIndex   int
	counter   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// ID returns prefix plus the next queued result. When the queue is empty
// it returns prefix plus an increasing counter so ids stay unique.
func (r *MockRandom) ID(prefix string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idIndex >= len(r.IDResults) {
		r.counter++
		return prefix + strconv.Itoa(r.counter)
	}
	result := r.IDResults[r.idIndex]
	r.idIndex++
	return prefix + result
}

// QueueID adds values to the ID result queue
func (r *MockRandom) QueueID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IDResults = append(r.IDResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IDResults = nil
	r.idIndex = 0
	r.counter = 0
}
