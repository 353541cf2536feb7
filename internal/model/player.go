package model

// Player is a participant in a session. Score is only ever set from
// server broadcasts.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}
