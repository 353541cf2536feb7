package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

// Inbound is a decoded server event. The concrete types below are the
// complete set; anything else decodes to Unknown.
type Inbound interface {
	Name() EventName
}

// PlayersUpdated replaces the whole roster
type PlayersUpdated struct {
	Players []model.Player
}

// GameStarted opens the first question
type GameStarted struct {
	Question model.Question
}

// NextQuestion replaces the current question
type NextQuestion struct {
	Question model.Question
}

// GameOver carries the final ranking
type GameOver struct {
	Results []model.Player
}

// GameError terminates the session with a message for the user
type GameError struct {
	Message string
}

// Unknown is any event the client does not handle
type Unknown struct {
	Event EventName
}

func (PlayersUpdated) Name() EventName { return EventUpdatePlayers }
func (GameStarted) Name() EventName { return EventGameStarted }
func (NextQuestion) Name() EventName { return EventNextQuestion }
func (GameOver) Name() EventName { return EventGameOver }
func (GameError) Name() EventName { return EventGameError }
func (u Unknown) Name() EventName { return u.Event }

// ParseInbound decodes the payload of a named server event
func ParseInbound(name EventName, data json.RawMessage) (Inbound, error) {
	switch name {
	case EventUpdatePlayers:
		var players []model.Player
		if err := decodeRequired(data, &players); err != nil {
			return nil, wrap(name, err)
		}
		return PlayersUpdated{Players: players}, nil

	case EventGameStarted, EventNextQuestion:
		var q model.Question
		if err := decodeRequired(data, &q); err != nil {
			return nil, wrap(name, err)
		}
		if q.Text == "" || len(q.Options) == 0 {
			return nil, wrap(name, errors.New("question without text or options"))
		}
		if name == EventGameStarted {
			return GameStarted{Question: q}, nil
		}
		return NextQuestion{Question: q}, nil

	case EventGameOver:
		var results []model.Player
		if err := decodeRequired(data, &results); err != nil {
			return nil, wrap(name, err)
		}
		return GameOver{Results: results}, nil

	case EventGameError:
		return GameError{Message: decodeMessage(data)}, nil

	default:
		return Unknown{Event: name}, nil
	}
}

func decodeRequired(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("missing payload")
	}
	return json.Unmarshal(trimmed, v)
}

// decodeMessage accepts either a bare string or {"message": "..."}
func decodeMessage(data json.RawMessage) string {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		return msg
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		return obj.Message
	}
	return ""
}

func wrap(name EventName, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
}
