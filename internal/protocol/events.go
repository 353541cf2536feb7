// Package protocol defines the named events exchanged with the quiz server
// and the JSON envelope they travel in.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EventName identifies an event on the channel
type EventName string

const (
	// Server -> client
	EventUpdatePlayers EventName = "update-players"
	EventGameStarted   EventName = "game-started"
	EventNextQuestion  EventName = "next-question"
	EventGameOver      EventName = "game-over"
	EventGameError     EventName = "game-error"

	// Client -> server
	EventPlayerJoin   EventName = "player-join"
	EventStartGame    EventName = "start-game"
	EventSubmitAnswer EventName = "submit-answer"
)

// InboundEvents lists every server event the client understands
var InboundEvents = []EventName{
	EventUpdatePlayers,
	EventGameStarted,
	EventNextQuestion,
	EventGameOver,
	EventGameError,
}

// ErrMalformed is returned for frames or payloads that cannot be decoded
var ErrMalformed = errors.New("malformed event")

// Envelope is the frame format on the wire: {"event": "...", "data": ...}
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds a frame for the given event and payload
func Encode(name EventName, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", name, err)
	}
	return json.Marshal(Envelope{Event: name, Data: data})
}

// Decode parses a frame into its envelope
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrMalformed)
	}
	return env, nil
}
