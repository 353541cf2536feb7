package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/api"
	"github.com/DianeRUT/Multiplayer-Quiz-App-sub001/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

// PrintEvent outputs one entry of a live session as a single line in
// JSON mode
func (o *Output) PrintEvent(name string, data any) {
	if o.format == "json" {
		line, _ := json.Marshal(SessionEvent{Event: name, Data: data})
		fmt.Fprintln(o.out, string(line))
		return
	}
	o.printText(data)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case IdentityView:
		o.printIdentity(v)
	case []api.Quiz:
		o.printQuizzes(v)
	case *api.HealthResponse:
		fmt.Fprintf(o.out, "Status: %s\n", v.Status)
	case SessionInfo:
		fmt.Fprintf(o.out, "Session pin: %s\n", v.Pin)
	case model.Projection:
		o.printProjection(v)
	case Countdown:
		fmt.Fprintf(o.out, "  %ds left\n", v.Remaining)
	case string:
		fmt.Fprintln(o.out, v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// IdentityView is the printable form of the active identity
type IdentityView struct {
	Role  model.Role `json:"role"`
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email,omitempty"`
}

// NewIdentityView builds the printable form of id
func NewIdentityView(id *model.Identity) IdentityView {
	return IdentityView{
		Role:  id.Role,
		ID:    id.PlayerID(),
		Name:  id.DisplayName(),
		Email: id.Profile.Email,
	}
}

// SessionInfo is printed when a session is opened
type SessionInfo struct {
	Pin string `json:"pin"`
}

// Countdown is printed while a question is open
type Countdown struct {
	Remaining int `json:"remaining"`
}

// SessionEvent is one line of a live session in JSON mode
type SessionEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func (o *Output) printIdentity(v IdentityView) {
	fmt.Fprintf(o.out, "Player: %s (%s)\n", v.Name, v.ID)
	guestStr := "no"
	if v.Role == model.RoleGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.out, "Guest: %s\n", guestStr)
	if v.Email != "" {
		fmt.Fprintf(o.out, "Email: %s\n", v.Email)
	}
}

func (o *Output) printQuizzes(quizzes []api.Quiz) {
	if len(quizzes) == 0 {
		fmt.Fprintln(o.out, "No quizzes")
		return
	}
	for _, q := range quizzes {
		fmt.Fprintf(o.out, "%s  %s (%d questions)\n", q.ID, q.Title, q.QuestionCount)
	}
}

func (o *Output) printProjection(p model.Projection) {
	switch p.Status {
	case model.StatusLobby:
		fmt.Fprintf(o.out, "Lobby %s, players (%d):\n", p.Pin, len(p.Players))
		for _, pl := range p.Players {
			fmt.Fprintf(o.out, "  - %s\n", pl.Name)
		}
	case model.StatusInProgress:
		q := p.CurrentQuestion
		fmt.Fprintf(o.out, "\nQuestion %d: %s\n", p.QuestionNumber, q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(o.out, "  %d) %s\n", i+1, opt.Text)
		}
	case model.StatusResults:
		fmt.Fprintln(o.out, "\nResults:")
		for i, pl := range p.Results {
			fmt.Fprintf(o.out, "  %d. %s: %d points\n", i+1, pl.Name, pl.Score)
		}
	default:
		fmt.Fprintln(o.out, "Not in a session")
	}
}
