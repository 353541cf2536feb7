package session

import "github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"

// Listener observes the session. Calls arrive in transition order.
// Listeners may read state but must not call Machine or Controller
// intents from a callback.
type Listener interface {
	// SessionChanged receives the projection after every applied transition
	SessionChanged(p model.Projection)
	// SessionAlert receives each game-error once
	SessionAlert(err *model.SessionError)
}

// TickListener is optionally implemented by a Listener to follow the
// answer countdown
type TickListener interface {
	SessionTick(remaining int)
	SessionTimeUp()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Changed func(p model.Projection)
	Alert   func(err *model.SessionError)
}

func (f ListenerFuncs) SessionChanged(p model.Projection) {
	if f.Changed != nil {
		f.Changed(p)
	}
}

func (f ListenerFuncs) SessionAlert(err *model.SessionError) {
	if f.Alert != nil {
		f.Alert(err)
	}
}
