package protocol

// JoinPayload is sent with player-join
type JoinPayload struct {
	Pin      string `json:"pin"`
	PlayerID string `json:"playerId,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

// StartPayload is sent with start-game
type StartPayload struct {
	Pin string `json:"pin"`
}

// AnswerPayload is sent with submit-answer
type AnswerPayload struct {
	Pin        string `json:"pin"`
	OptionText string `json:"optionText"`
	PlayerID   string `json:"playerId,omitempty"`
}
