package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

func TestEncodeDecode(t *testing.T) {
	frame, err := Encode(EventSubmitAnswer, AnswerPayload{Pin: "482193", OptionText: "Paris"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"submit-answer","data":{"pin":"482193","optionText":"Paris"}}`, string(frame))

	env, err := Decode(frame)
	require.NoError(t, err)
	assert.Equal(t, EventSubmitAnswer, env.Event)
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode([]byte(`{"data":{}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseUpdatePlayers(t *testing.T) {
	ev, err := ParseInbound(EventUpdatePlayers, json.RawMessage(`[{"id":"a","name":"Ann","score":3},{"id":"b","name":"Bo"}]`))
	require.NoError(t, err)

	upd, ok := ev.(PlayersUpdated)
	require.True(t, ok)
	assert.Equal(t, []model.Player{{ID: "a", Name: "Ann", Score: 3}, {ID: "b", Name: "Bo"}}, upd.Players)
}

func TestParseQuestionEvents(t *testing.T) {
	raw := json.RawMessage(`{"text":"Capital of France?","options":[{"text":"Paris","isCorrect":true},{"text":"Rome"}],"timeLimit":10}`)

	ev, err := ParseInbound(EventGameStarted, raw)
	require.NoError(t, err)
	started, ok := ev.(GameStarted)
	require.True(t, ok)
	assert.Equal(t, "Capital of France?", started.Question.Text)
	assert.Equal(t, 10, started.Question.TimeLimit)
	require.Len(t, started.Question.Options, 2)
	require.NotNil(t, started.Question.Options[0].IsCorrect)
	assert.True(t, *started.Question.Options[0].IsCorrect)

	ev, err = ParseInbound(EventNextQuestion, raw)
	require.NoError(t, err)
	_, ok = ev.(NextQuestion)
	assert.True(t, ok)
}

func TestParseRejectsMalformedPayloads(t *testing.T) {
	cases := []struct {
		name EventName
		data string
	}{
		{EventUpdatePlayers, `{"id":"a"}`},
		{EventUpdatePlayers, `null`},
		{EventGameStarted, ``},
		{EventGameStarted, `{"text":"","options":[{"text":"x"}]}`},
		{EventNextQuestion, `{"text":"Q","options":[]}`},
		{EventGameOver, `"done"`},
	}
	for _, tc := range cases {
		_, err := ParseInbound(tc.name, json.RawMessage(tc.data))
		assert.ErrorIs(t, err, ErrMalformed, "%s %s", tc.name, tc.data)
	}
}

func TestParseGameError(t *testing.T) {
	ev, err := ParseInbound(EventGameError, json.RawMessage(`"Host disconnected"`))
	require.NoError(t, err)
	assert.Equal(t, GameError{Message: "Host disconnected"}, ev)

	ev, err = ParseInbound(EventGameError, json.RawMessage(`{"message":"Game not found"}`))
	require.NoError(t, err)
	assert.Equal(t, GameError{Message: "Game not found"}, ev)
}

func TestParseUnknownEvent(t *testing.T) {
	ev, err := ParseInbound("chat-message", json.RawMessage(`{"text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, Unknown{Event: "chat-message"}, ev)
	assert.Equal(t, EventName("chat-message"), ev.Name())
}
