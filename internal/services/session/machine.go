// Package session mirrors the server's view of one quiz game and turns
// local intents into outbound events.
package session

import (
	"log/slog"
	"sync"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/protocol"
)

// Machine is the single source of truth for session state. Every
// transition runs under one lock, so inbound events and intents apply one
// at a time in the order they arrive.
type Machine struct {
	logger *slog.Logger

	mu      sync.Mutex
	session model.Session

	// notifyMu is taken before mu is released so listeners observe
	// transitions in the order they were applied
	notifyMu  sync.Mutex
	listeners []Listener
}

// NewMachine returns a machine in the idle state
func NewMachine(logger *slog.Logger) *Machine {
	return &Machine{
		logger:  logger.With(slog.String("component", "session")),
		session: model.NewSession(),
	}
}

// AddListener registers l for projection changes and alerts
func (m *Machine) AddListener(l Listener) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Projection returns a copy of the current state
func (m *Machine) Projection() model.Projection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Project()
}

// Status returns the current lifecycle phase
func (m *Machine) Status() model.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Status
}

// HostGame opens a lobby the local player created. The host is the only
// player until the first roster broadcast arrives.
func (m *Machine) HostGame(pin string, self model.Player) error {
	if !ValidPin(pin) {
		return model.ErrInvalidPin
	}

	m.mu.Lock()
	if m.session.Status != model.StatusIdle {
		m.mu.Unlock()
		return model.ErrSessionActive
	}
	m.session = model.Session{
		Pin:     pin,
		Status:  model.StatusLobby,
		Players: []model.Player{self},
	}
	m.commit(nil)

	m.logger.Info("hosting session", slog.String("pin", pin))
	return nil
}

// JoinGame enters the lobby of an existing session. The roster stays
// empty until the server broadcasts it.
func (m *Machine) JoinGame(pin string) error {
	if !ValidPin(pin) {
		return model.ErrInvalidPin
	}

	m.mu.Lock()
	if m.session.Status != model.StatusIdle {
		m.mu.Unlock()
		return model.ErrSessionActive
	}
	m.session = model.Session{
		Pin:     pin,
		Status:  model.StatusLobby,
		Players: []model.Player{},
	}
	m.commit(nil)

	m.logger.Info("joined session", slog.String("pin", pin))
	return nil
}

// Reset discards the session from any state
func (m *Machine) Reset() {
	m.mu.Lock()
	pin := m.session.Pin
	m.session = model.NewSession()
	m.commit(nil)

	if pin != "" {
		m.logger.Info("session reset", slog.String("pin", pin))
	}
}

// Apply runs one inbound event. It reports false when the event does not
// fit the current state and was ignored. Roster updates apply in every
// state but Idle so late joiners show up during a game.
func (m *Machine) Apply(ev protocol.Inbound) bool {
	m.mu.Lock()

	s := &m.session
	var alert *model.SessionError
	applied := true

	switch e := ev.(type) {
	case protocol.PlayersUpdated:
		if s.Status == model.StatusIdle {
			applied = false
			break
		}
		s.Players = dedupe(e.Players)

	case protocol.GameStarted:
		if s.Status != model.StatusLobby {
			applied = false
			break
		}
		q := e.Question
		s.Status = model.StatusInProgress
		s.CurrentQuestion = &q
		s.QuestionNumber = 1
		s.Results = nil

	case protocol.NextQuestion:
		if s.Status != model.StatusInProgress {
			applied = false
			break
		}
		q := e.Question
		s.CurrentQuestion = &q
		s.QuestionNumber++

	case protocol.GameOver:
		if s.Status != model.StatusInProgress {
			applied = false
			break
		}
		s.Status = model.StatusResults
		s.CurrentQuestion = nil
		s.Results = append([]model.Player{}, e.Results...)

	case protocol.GameError:
		alert = &model.SessionError{Pin: s.Pin, Message: e.Message}
		m.session = model.NewSession()

	default:
		applied = false
	}

	if !applied {
		status := s.Status
		m.mu.Unlock()
		m.logger.Debug("ignoring event",
			slog.String("event", string(ev.Name())),
			slog.String("status", string(status)))
		return false
	}

	m.commit(alert)
	return true
}

// commit must be called with mu held; it releases mu and notifies
// listeners in order.
func (m *Machine) commit(alert *model.SessionError) {
	p := m.session.Project()
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	for _, l := range m.listeners {
		l.SessionChanged(p)
	}
	if alert != nil {
		m.logger.Warn("session ended by server",
			slog.String("pin", alert.Pin),
			slog.String("message", alert.Message))
		for _, l := range m.listeners {
			l.SessionAlert(alert)
		}
	}
}

// dedupe keeps the first occurrence of every player id
func dedupe(players []model.Player) []model.Player {
	out := make([]model.Player, 0, len(players))
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// ValidPin reports whether pin is a non-empty string of digits
func ValidPin(pin string) bool {
	if pin == "" {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
