package channel

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

// Lease is one hold on the connection taken with Acquire
type Lease interface {
	// Release gives the lease back. It is idempotent.
	Release()
	// Active reports whether the lease still covers the open connection.
	// A Reset ends every outstanding lease.
	Active() bool
}

// Manager is the single owner of the process's Adapter. Components lease
// the connection through Acquire and never hold the Adapter itself.
type Manager struct {
	adapter *Adapter
	logger  *slog.Logger

	mu   sync.Mutex
	refs int
	gen  int // bumped by Reset so stale leases cannot release new ones
}

// NewManager wraps an Adapter
func NewManager(adapter *Adapter, logger *slog.Logger) *Manager {
	return &Manager{
		adapter: adapter,
		logger:  logger.With(slog.String("component", "channel_manager")),
	}
}

type lease struct {
	m    *Manager
	gen  int
	once sync.Once
}

func (l *lease) Release() {
	l.once.Do(func() { l.m.release(l.gen) })
}

func (l *lease) Active() bool {
	l.m.mu.Lock()
	defer l.m.mu.Unlock()
	return l.gen == l.m.gen
}

// Acquire connects if needed and returns the endpoint plus its lease.
// The connection is closed when the last lease is released.
func (m *Manager) Acquire(ctx context.Context, id *model.Identity) (Endpoint, Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.adapter.Connect(ctx, id); err != nil {
		return nil, nil, err
	}
	m.refs++
	return m.adapter, &lease{m: m, gen: m.gen}, nil
}

// Reconnect reopens a dropped connection without taking a new lease
func (m *Manager) Reconnect(ctx context.Context, id *model.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adapter.Connect(ctx, id)
}

// Reset closes the connection regardless of outstanding leases.
// Used when the identity changes.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refs = 0
	m.gen++
	m.adapter.Disconnect()
	m.logger.Debug("channel reset")
}

// Connected reports whether the underlying connection is open
func (m *Manager) Connected() bool {
	return m.adapter.Connected()
}

// Errors exposes the adapter's error signal
func (m *Manager) Errors() <-chan error {
	return m.adapter.Errors()
}

func (m *Manager) release(gen int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.refs == 0 {
		return
	}
	m.refs--
	if m.refs == 0 {
		m.adapter.Disconnect()
	}
}
