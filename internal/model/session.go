package model

// SessionStatus is the lifecycle phase of a session
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusLobby      SessionStatus = "lobby"
	StatusInProgress SessionStatus = "in-progress"
	StatusResults    SessionStatus = "results"
)

// Session is the locally mirrored state of one quiz game
type Session struct {
	Pin             string
	Status          SessionStatus
	Players         []Player // arrival order
	CurrentQuestion *Question
	QuestionNumber  int      // 1 for the first question, bumped on every next-question
	Results         []Player // ranked, nil unless Status is results
}

// NewSession returns an idle session
func NewSession() Session {
	return Session{
		Status:  StatusIdle,
		Players: []Player{},
	}
}

// Projection is a read-only copy of a Session handed to the UI
type Projection struct {
	Pin             string        `json:"pin"`
	Status          SessionStatus `json:"status"`
	Players         []Player      `json:"players"`
	CurrentQuestion *Question     `json:"currentQuestion"`
	QuestionNumber  int           `json:"questionNumber,omitempty"`
	Results         []Player      `json:"results"`
}

// Project copies the session. Option correctness is stripped from the
// current question.
func (s *Session) Project() Projection {
	p := Projection{
		Pin:            s.Pin,
		Status:         s.Status,
		Players:        append([]Player{}, s.Players...),
		QuestionNumber: s.QuestionNumber,
	}
	if s.CurrentQuestion != nil {
		p.CurrentQuestion = s.CurrentQuestion.withoutAnswers()
	}
	if s.Results != nil {
		p.Results = append([]Player{}, s.Results...)
	}
	return p
}

// Player returns the player with the given id, or nil
func (p *Projection) Player(id string) *Player {
	for i := range p.Players {
		if p.Players[i].ID == id {
			return &p.Players[i]
		}
	}
	return nil
}
