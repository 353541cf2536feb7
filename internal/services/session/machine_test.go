package session

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/protocol"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/testutil"
)

type recorder struct {
	changes []model.Projection
	alerts  []*model.SessionError
}

func (r *recorder) SessionChanged(p model.Projection) { r.changes = append(r.changes, p) }
func (r *recorder) SessionAlert(err *model.SessionError) { r.alerts = append(r.alerts, err) }
func (r *recorder) last() model.Projection { return r.changes[len(r.changes)-1] }

type MachineSuite struct {
	suite.Suite
	machine *Machine
	rec     *recorder
	self    model.Player
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineSuite))
}

func (s *MachineSuite) SetupTest() {
	s.machine = NewMachine(testutil.NopLogger())
	s.rec = &recorder{}
	s.machine.AddListener(s.rec)
	s.self = model.Player{ID: "user-1", Name: "Ada"}
}

func question(text string, limit int) model.Question {
	yes, no := true, false
	return model.Question{
		Text: text,
		Options: []model.Option{
			{Text: "Paris", IsCorrect: &yes},
			{Text: "Rome", IsCorrect: &no},
		},
		TimeLimit: limit,
	}
}

func (s *MachineSuite) hostInProgress() {
	s.Require().NoError(s.machine.HostGame("482193", s.self))
	s.Require().True(s.machine.Apply(protocol.GameStarted{Question: question("Capital of France?", 10)}))
}

// assertConsistent checks the status/question/results invariant
func (s *MachineSuite) assertConsistent(p model.Projection) {
	s.Equal(p.Status == model.StatusInProgress, p.CurrentQuestion != nil, "question only while in progress")
	s.Equal(p.Status == model.StatusResults, p.Results != nil, "results only on the results screen")
	s.Equal(p.Status == model.StatusIdle, p.Pin == "", "pin empty only when idle")
}

// Host and join

func (s *MachineSuite) TestHostGameSeedsSelf() {
	err := s.machine.HostGame("482193", s.self)
	s.Require().NoError(err)

	p := s.machine.Projection()
	s.Equal("482193", p.Pin)
	s.Equal(model.StatusLobby, p.Status)
	s.Equal([]model.Player{s.self}, p.Players)
	s.Len(s.rec.changes, 1)
}

func (s *MachineSuite) TestJoinGameStartsWithEmptyRoster() {
	err := s.machine.JoinGame("112233")
	s.Require().NoError(err)

	p := s.machine.Projection()
	s.Equal(model.StatusLobby, p.Status)
	s.Equal("112233", p.Pin)
	s.Empty(p.Players)
	s.NotNil(p.Players)
}

func (s *MachineSuite) TestHostOrJoinRejectedWhenActive() {
	s.Require().NoError(s.machine.HostGame("482193", s.self))

	s.ErrorIs(s.machine.HostGame("111111", s.self), model.ErrSessionActive)
	s.ErrorIs(s.machine.JoinGame("111111"), model.ErrSessionActive)
	s.Equal("482193", s.machine.Projection().Pin)
}

func (s *MachineSuite) TestInvalidPinRejected() {
	for _, pin := range []string{"", "12a4", " 1234", "12-34"} {
		s.ErrorIs(s.machine.JoinGame(pin), model.ErrInvalidPin, pin)
		s.ErrorIs(s.machine.HostGame(pin, s.self), model.ErrInvalidPin, pin)
	}
	s.Equal(model.StatusIdle, s.machine.Status())
	s.Empty(s.rec.changes)
}

// Roster

func (s *MachineSuite) TestRosterIgnoredWhenIdle() {
	applied := s.machine.Apply(protocol.PlayersUpdated{Players: []model.Player{s.self}})

	s.False(applied)
	s.Empty(s.machine.Projection().Players)
	s.Empty(s.rec.changes)
}

func (s *MachineSuite) TestRosterReplacedWholesale() {
	s.Require().NoError(s.machine.JoinGame("112233"))

	first := []model.Player{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	second := []model.Player{{ID: "c", Name: "C"}}
	s.True(s.machine.Apply(protocol.PlayersUpdated{Players: first}))
	s.True(s.machine.Apply(protocol.PlayersUpdated{Players: second}))

	s.Equal(second, s.machine.Projection().Players)
}

func (s *MachineSuite) TestRosterDropsDuplicateIDs() {
	s.Require().NoError(s.machine.JoinGame("112233"))

	s.machine.Apply(protocol.PlayersUpdated{Players: []model.Player{
		{ID: "a", Name: "First"},
		{ID: "b", Name: "B"},
		{ID: "a", Name: "Second"},
	}})

	p := s.machine.Projection()
	s.Require().Len(p.Players, 2)
	s.Equal("First", p.Players[0].Name)
	s.Equal("b", p.Players[1].ID)
}

func (s *MachineSuite) TestRosterAcceptedDuringGame() {
	s.hostInProgress()

	s.True(s.machine.Apply(protocol.PlayersUpdated{Players: []model.Player{{ID: "a", Score: 300}}}))
	s.Equal(300, s.machine.Projection().Players[0].Score)
	s.Equal(model.StatusInProgress, s.machine.Status())
}

// Question flow

func (s *MachineSuite) TestGameStartedOnlyFromLobby() {
	s.False(s.machine.Apply(protocol.GameStarted{Question: question("q", 0)}))

	s.hostInProgress()
	s.False(s.machine.Apply(protocol.GameStarted{Question: question("again", 0)}))
	s.Equal("Capital of France?", s.machine.Projection().CurrentQuestion.Text)
}

func (s *MachineSuite) TestNextQuestionIgnoredInLobby() {
	s.Require().NoError(s.machine.HostGame("482193", s.self))

	s.False(s.machine.Apply(protocol.NextQuestion{Question: question("stray", 0)}))
	p := s.machine.Projection()
	s.Equal(model.StatusLobby, p.Status)
	s.Nil(p.CurrentQuestion)
}

func (s *MachineSuite) TestNextQuestionReplacesQuestion() {
	s.hostInProgress()

	s.True(s.machine.Apply(protocol.NextQuestion{Question: question("Capital of Italy?", 15)}))
	p := s.machine.Projection()
	s.Equal("Capital of Italy?", p.CurrentQuestion.Text)
	s.Equal(15, p.CurrentQuestion.TimeLimit)
}

func (s *MachineSuite) TestQuestionNumberCountsRepeatedQuestions() {
	s.hostInProgress()
	s.Equal(1, s.machine.Projection().QuestionNumber)

	// identical content is still a new question
	s.True(s.machine.Apply(protocol.NextQuestion{Question: question("Capital of France?", 10)}))
	s.Equal(2, s.machine.Projection().QuestionNumber)

	s.True(s.machine.Apply(protocol.PlayersUpdated{Players: []model.Player{s.self}}))
	s.Equal(2, s.machine.Projection().QuestionNumber)

	s.machine.Reset()
	s.Zero(s.machine.Projection().QuestionNumber)
}

func (s *MachineSuite) TestProjectionHidesCorrectness() {
	s.hostInProgress()

	for _, o := range s.machine.Projection().CurrentQuestion.Options {
		s.Nil(o.IsCorrect)
	}
}

func (s *MachineSuite) TestProjectionIsACopy() {
	s.hostInProgress()

	p := s.machine.Projection()
	p.Players[0].Name = "changed"
	p.CurrentQuestion.Text = "changed"

	again := s.machine.Projection()
	s.Equal("Ada", again.Players[0].Name)
	s.Equal("Capital of France?", again.CurrentQuestion.Text)
}

func (s *MachineSuite) TestGameOverShowsResults() {
	s.hostInProgress()
	ranked := []model.Player{{ID: "b", Name: "B", Score: 900}, {ID: "a", Name: "A", Score: 400}}

	s.True(s.machine.Apply(protocol.GameOver{Results: ranked}))

	p := s.machine.Projection()
	s.Equal(model.StatusResults, p.Status)
	s.Nil(p.CurrentQuestion)
	s.Equal(ranked, p.Results)
}

func (s *MachineSuite) TestGameOverWithNoResults() {
	s.hostInProgress()

	s.True(s.machine.Apply(protocol.GameOver{}))
	p := s.machine.Projection()
	s.NotNil(p.Results)
	s.Empty(p.Results)
}

func (s *MachineSuite) TestGameOverIgnoredInLobby() {
	s.Require().NoError(s.machine.HostGame("482193", s.self))

	s.False(s.machine.Apply(protocol.GameOver{Results: []model.Player{s.self}}))
	s.Equal(model.StatusLobby, s.machine.Status())
}

func (s *MachineSuite) TestUnknownEventIgnored() {
	s.Require().NoError(s.machine.HostGame("482193", s.self))

	s.False(s.machine.Apply(protocol.Unknown{Event: "chat"}))
	s.Len(s.rec.changes, 1)
}

// Errors and reset

func (s *MachineSuite) TestGameErrorResetsAndAlertsOnce() {
	s.hostInProgress()

	s.True(s.machine.Apply(protocol.GameError{Message: "Host disconnected"}))

	p := s.machine.Projection()
	s.Equal(model.StatusIdle, p.Status)
	s.Empty(p.Pin)
	s.Require().Len(s.rec.alerts, 1)
	s.Equal("Host disconnected", s.rec.alerts[0].Message)
	s.Equal("482193", s.rec.alerts[0].Pin)
	s.Equal(model.StatusIdle, s.rec.last().Status)
}

func (s *MachineSuite) TestResetFromAnyState() {
	steps := []func(){
		func() {},
		func() { _ = s.machine.JoinGame("112233") },
		s.hostInProgress,
		func() {
			s.hostInProgress()
			s.machine.Apply(protocol.GameOver{Results: []model.Player{s.self}})
		},
	}
	for _, step := range steps {
		s.machine.Reset()
		step()
		s.machine.Reset()

		p := s.machine.Projection()
		s.Equal(model.StatusIdle, p.Status)
		s.Empty(p.Pin)
		s.Empty(p.Players)
		s.Nil(p.CurrentQuestion)
		s.Nil(p.Results)
	}
}

func (s *MachineSuite) TestInvariantHoldsAcrossEvents() {
	events := []protocol.Inbound{
		protocol.NextQuestion{Question: question("stray", 0)},
		protocol.PlayersUpdated{Players: []model.Player{s.self}},
		protocol.GameStarted{Question: question("q1", 0)},
		protocol.GameStarted{Question: question("dup", 0)},
		protocol.NextQuestion{Question: question("q2", 0)},
		protocol.GameOver{Results: []model.Player{s.self}},
		protocol.NextQuestion{Question: question("late", 0)},
		protocol.GameError{Message: "bye"},
		protocol.GameOver{},
	}

	s.Require().NoError(s.machine.HostGame("482193", s.self))
	for _, ev := range events {
		s.machine.Apply(ev)
		s.assertConsistent(s.machine.Projection())
	}
	for _, p := range s.rec.changes {
		s.assertConsistent(p)
	}
}

// Scenarios

func (s *MachineSuite) TestHostScenario() {
	guest := model.Player{ID: "guest_1", Name: "Nico"}

	s.Require().NoError(s.machine.HostGame("482193", s.self))
	s.Len(s.machine.Projection().Players, 1)

	s.machine.Apply(protocol.PlayersUpdated{Players: []model.Player{s.self, guest}})
	s.Len(s.machine.Projection().Players, 2)

	s.machine.Apply(protocol.GameStarted{Question: question("Capital of France?", 10)})
	s.Equal(model.StatusInProgress, s.machine.Status())
}

func (s *MachineSuite) TestGuestScenario() {
	nico := model.Player{ID: "guest_1", Name: "Nico"}

	s.Require().NoError(s.machine.JoinGame("112233"))
	s.machine.Apply(protocol.PlayersUpdated{Players: []model.Player{s.self, nico}})
	s.machine.Apply(protocol.GameStarted{Question: question("Capital of France?", 10)})
	s.machine.Apply(protocol.GameOver{Results: []model.Player{{ID: "guest_1", Name: "Nico", Score: 1000}, s.self}})

	p := s.machine.Projection()
	s.Equal(model.StatusResults, p.Status)
	s.Equal("Nico", p.Results[0].Name)
	s.Equal(1000, p.Results[0].Score)
}

func (s *MachineSuite) TestListenersSeeTransitionsInOrder() {
	s.hostInProgress()
	s.machine.Apply(protocol.GameOver{Results: []model.Player{s.self}})

	var statuses []model.SessionStatus
	for _, p := range s.rec.changes {
		statuses = append(statuses, p.Status)
	}
	s.Equal([]model.SessionStatus{model.StatusLobby, model.StatusInProgress, model.StatusResults}, statuses)
}
